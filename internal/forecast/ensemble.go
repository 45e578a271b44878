// Package forecast combines independently trained time-series models into a
// single seasonal demand curve with a confidence score. The ensemble is a
// pure function over the input series; it holds no per-workflow state and is
// safe to share across workflows.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrInsufficientData means the history is too short to train on.
	ErrInsufficientData = errors.New("insufficient sales history")

	// ErrForecastingUnavailable means every model failed to train.
	ErrForecastingUnavailable = errors.New("all forecasting models failed")
)

const (
	// MinHistoryWeeks is the smallest accepted history length.
	MinHistoryWeeks = 52

	seasonalPeriod = 52

	defaultValidationWeeks = 10
	minValidationWeeks     = 4
	minTrainingWeeks       = 40
)

// Output is the raw ensemble result prior to guardrail validation and
// persistence. Weekly values are non-negative integers and TotalDemand is
// their exact sum.
type Output struct {
	TotalDemand         int
	WeeklyDemand        []int
	Confidence          float64
	SafetyStockFraction float64
	Models              []string
	ModelScores         map[string]float64
}

// Ensemble trains the model set, weights each model by validation error and
// blends their horizon forecasts.
type Ensemble struct {
	validationWeeks int
}

// NewEnsemble uses the default trailing validation window.
func NewEnsemble() *Ensemble {
	return &Ensemble{validationWeeks: defaultValidationWeeks}
}

type trainResult struct {
	name     string
	mape     float64
	forecast []float64
	err      error
}

// Run produces a demand curve for the given horizon from weekly history.
// Models train concurrently; results are slotted by index so completion
// order cannot influence the weights.
func (e *Ensemble) Run(ctx context.Context, series []float64, horizon int) (Output, error) {
	if len(series) < MinHistoryWeeks {
		return Output{}, fmt.Errorf("%w: have %d weeks, need %d", ErrInsufficientData, len(series), MinHistoryWeeks)
	}
	if horizon < 1 || horizon > 52 {
		return Output{}, fmt.Errorf("horizon must be in [1,52], got %d", horizon)
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	valWeeks := e.validationWeeks
	if len(series)-valWeeks < minTrainingWeeks {
		valWeeks = len(series) - minTrainingWeeks
	}
	if valWeeks < minValidationWeeks {
		return Output{}, fmt.Errorf("%w: cannot reserve a %d-week validation window from %d weeks",
			ErrInsufficientData, minValidationWeeks, len(series))
	}

	train := series[:len(series)-valWeeks]
	holdout := series[len(series)-valWeeks:]

	builders := []func() model{
		func() model { return newSeasonalModel() },
		func() model { return newARModel() },
		func() model { return newHoltModel() },
	}

	results := make([]trainResult, len(builders))
	var wg sync.WaitGroup
	for i, build := range builders {
		wg.Add(1)
		go func(i int, build func() model) {
			defer wg.Done()
			results[i] = validateModel(build(), train, holdout)
		}(i, build)
	}
	wg.Wait()

	// Weights inverse to validation MAPE; a failed model contributes nothing.
	var invSum float64
	scores := make(map[string]float64)
	for i := range results {
		if results[i].err != nil {
			continue
		}
		scores[results[i].name] = results[i].mape
		invSum += 1 / (results[i].mape + 1e-9)
	}
	if invSum == 0 {
		return Output{}, ErrForecastingUnavailable
	}

	// Refit survivors on the full history and forecast the target horizon.
	finals := make([]trainResult, len(builders))
	wg = sync.WaitGroup{}
	for i, build := range builders {
		if results[i].err != nil {
			finals[i].err = results[i].err
			continue
		}
		wg.Add(1)
		go func(i int, build func() model) {
			defer wg.Done()
			m := build()
			if err := m.Fit(series); err != nil {
				finals[i] = trainResult{name: m.Name(), err: err}
				return
			}
			finals[i] = trainResult{name: m.Name(), forecast: m.Forecast(horizon)}
		}(i, build)
	}
	wg.Wait()

	weekly := make([]float64, horizon)
	var names []string
	var totals []float64
	for i := range finals {
		if finals[i].err != nil || results[i].err != nil {
			continue
		}
		w := (1 / (results[i].mape + 1e-9)) / invSum
		var modelTotal float64
		for k, v := range finals[i].forecast {
			weekly[k] += w * v
			modelTotal += math.Max(v, 0)
		}
		names = append(names, finals[i].name)
		totals = append(totals, modelTotal)
	}
	if len(names) == 0 {
		return Output{}, ErrForecastingUnavailable
	}

	out := Output{
		WeeklyDemand: make([]int, horizon),
		Models:       names,
		ModelScores:  scores,
	}
	for k, v := range weekly {
		units := int(math.Round(math.Max(v, 0)))
		out.WeeklyDemand[k] = units
		out.TotalDemand += units
	}

	out.Confidence = confidence(totals, bestScore(results))
	out.SafetyStockFraction = safetyStockFor(out.Confidence)
	return out, nil
}

func validateModel(m model, train, holdout []float64) trainResult {
	res := trainResult{name: m.Name()}
	if err := m.Fit(train); err != nil {
		res.err = err
		return res
	}
	pred := m.Forecast(len(holdout))
	mape, err := meanAbsPctError(holdout, pred)
	if err != nil {
		res.err = err
		return res
	}
	res.mape = mape
	return res
}

// meanAbsPctError skips zero-actual weeks; if every week is zero the model
// cannot be scored and is excluded.
func meanAbsPctError(actual, predicted []float64) (float64, error) {
	var sum float64
	var n int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i])
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("validation window is all zeros")
	}
	return sum / float64(n), nil
}

// confidence blends cross-model agreement with the best validation error.
// Spread is the relative gap between the largest and smallest model totals.
func confidence(totals []float64, bestMAPE float64) float64 {
	agreement := 1.0
	if len(totals) > 1 {
		lo, hi := totals[0], totals[0]
		for _, t := range totals[1:] {
			lo = math.Min(lo, t)
			hi = math.Max(hi, t)
		}
		if hi > 0 {
			agreement = 1 - (hi-lo)/hi
		}
	}
	score := 0.5*agreement + 0.5*(1-math.Min(bestMAPE, 1))
	return clip01(score)
}

func bestScore(results []trainResult) float64 {
	best := math.Inf(1)
	for _, r := range results {
		if r.err == nil && r.mape < best {
			best = r.mape
		}
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}

// safetyStockFor maps confidence to a manufacturing buffer: weak forecasts
// get more cover, strong ones the floor. Always lands in [0.1, 0.5].
func safetyStockFor(conf float64) float64 {
	frac := 0.1 + (1-conf)*0.4
	frac = math.Round(frac*100) / 100
	if frac < 0.1 {
		frac = 0.1
	}
	if frac > 0.5 {
		frac = 0.5
	}
	return frac
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

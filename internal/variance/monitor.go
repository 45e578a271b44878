// Package variance compares cumulative in-season actuals against the
// cumulative forecast. The monitor only decides whether the deviation
// exceeds tolerance; acting on that decision belongs to the orchestrator.
package variance

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingData means no forecast or no actuals cover the requested week.
// This is reported to the caller; the workflow stays where it is and waits
// for data rather than retrying.
var ErrMissingData = errors.New("missing data for variance check")

// DefaultThreshold is the tolerance fraction used when none is configured.
const DefaultThreshold = 0.20

// Report is the monitor's decision record.
//
// Fraction uses the symmetric convention |actual-forecast|/forecast (0 when
// the forecast is 0). SignedDeviation keeps (actual-forecast)/forecast so a
// reviewer can tell over- from under-performance.
type Report struct {
	Week              int
	ForecastCum       int
	ActualCum         int
	Fraction          float64
	SignedDeviation   float64
	Threshold         float64
	ThresholdExceeded bool
}

// Monitor holds the tolerance fraction.
type Monitor struct {
	threshold float64
}

// NewMonitor builds a monitor; threshold <= 0 selects DefaultThreshold.
func NewMonitor(threshold float64) *Monitor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Monitor{threshold: threshold}
}

// Check computes cumulative forecast and actuals through week (1-based) and
// flags whether the deviation exceeds tolerance.
func (m *Monitor) Check(weeklyForecast []int, weeklyActuals []int, week int) (Report, error) {
	if week < 1 {
		return Report{}, fmt.Errorf("week must be >= 1, got %d", week)
	}
	if len(weeklyForecast) < week {
		return Report{}, fmt.Errorf("%w: forecast covers %d weeks, need %d", ErrMissingData, len(weeklyForecast), week)
	}
	if len(weeklyActuals) < week {
		return Report{}, fmt.Errorf("%w: actuals cover %d weeks, need %d", ErrMissingData, len(weeklyActuals), week)
	}

	var forecastCum, actualCum int
	for i := 0; i < week; i++ {
		forecastCum += weeklyForecast[i]
		actualCum += weeklyActuals[i]
	}

	var fraction, signed float64
	if forecastCum > 0 {
		signed = float64(actualCum-forecastCum) / float64(forecastCum)
		fraction = math.Abs(signed)
	}

	return Report{
		Week:              week,
		ForecastCum:       forecastCum,
		ActualCum:         actualCum,
		Fraction:          fraction,
		SignedDeviation:   signed,
		Threshold:         m.threshold,
		ThresholdExceeded: fraction > m.threshold,
	}, nil
}

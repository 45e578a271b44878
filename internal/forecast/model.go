package forecast

import (
	"fmt"
	"math"
)

// model is one independently trained forecaster. Implementations are pure:
// Fit reads the series, Forecast extrapolates, nothing leaks between calls.
type model interface {
	Name() string
	Fit(series []float64) error
	Forecast(horizon int) []float64
}

// seasonalModel decomposes the series into a linear trend plus additive
// weekly seasonal indices over a 52-week period.
type seasonalModel struct {
	period    int
	intercept float64
	slope     float64
	indices   []float64
	n         int
}

func newSeasonalModel() *seasonalModel {
	return &seasonalModel{period: seasonalPeriod}
}

func (m *seasonalModel) Name() string { return "seasonal_decomposition" }

func (m *seasonalModel) Fit(series []float64) error {
	n := len(series)
	if n < m.period/2 {
		return fmt.Errorf("seasonal: need at least %d observations, got %d", m.period/2, n)
	}
	m.n = n
	m.intercept, m.slope = linearFit(series)

	// Additive seasonal index per phase, averaged over however many full or
	// partial cycles the training window covers. Phases never observed keep
	// index 0 (pure trend).
	sums := make([]float64, m.period)
	counts := make([]int, m.period)
	for t, y := range series {
		detr := y - (m.intercept + m.slope*float64(t))
		phase := t % m.period
		sums[phase] += detr
		counts[phase]++
	}
	m.indices = make([]float64, m.period)
	for p := range sums {
		if counts[p] > 0 {
			m.indices[p] = sums[p] / float64(counts[p])
		}
	}
	return nil
}

func (m *seasonalModel) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		t := m.n + k
		out[k] = m.intercept + m.slope*float64(t) + m.indices[t%m.period]
	}
	return out
}

// arModel is a difference-stationary autoregression: an AR(p) fit by ordinary
// least squares on the first differences of the series.
type arModel struct {
	order  int
	coeffs []float64 // intercept followed by lag coefficients
	tail   []float64 // last `order` differences, most recent last
	level  float64
}

func newARModel() *arModel {
	return &arModel{order: 4}
}

func (m *arModel) Name() string { return "autoregressive" }

func (m *arModel) Fit(series []float64) error {
	n := len(series)
	if n < m.order+8 {
		return fmt.Errorf("ar: need at least %d observations, got %d", m.order+8, n)
	}
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = series[i] - series[i-1]
	}

	// Design matrix: rows of [1, d(t-1)..d(t-p)] predicting d(t).
	p := m.order
	rows := len(diffs) - p
	cols := p + 1
	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	xty := make([]float64, cols)
	row := make([]float64, cols)
	for r := 0; r < rows; r++ {
		row[0] = 1
		for j := 1; j <= p; j++ {
			row[j] = diffs[r+p-j]
		}
		y := diffs[r+p]
		for i := 0; i < cols; i++ {
			xty[i] += row[i] * y
			for j := 0; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}
	coeffs, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return fmt.Errorf("ar: %w", err)
	}
	m.coeffs = coeffs
	m.tail = append([]float64(nil), diffs[len(diffs)-p:]...)
	m.level = series[n-1]
	return nil
}

func (m *arModel) Forecast(horizon int) []float64 {
	p := m.order
	hist := append([]float64(nil), m.tail...)
	out := make([]float64, horizon)
	level := m.level
	for k := 0; k < horizon; k++ {
		d := m.coeffs[0]
		for j := 1; j <= p; j++ {
			d += m.coeffs[j] * hist[len(hist)-j]
		}
		hist = append(hist, d)
		level += d
		out[k] = level
	}
	return out
}

// holtModel is Holt's linear exponential smoothing (level plus trend) with
// fixed smoothing constants.
type holtModel struct {
	alpha, beta  float64
	level, trend float64
}

func newHoltModel() *holtModel {
	return &holtModel{alpha: 0.3, beta: 0.1}
}

func (m *holtModel) Name() string { return "exponential_smoothing" }

func (m *holtModel) Fit(series []float64) error {
	if len(series) < 4 {
		return fmt.Errorf("holt: need at least 4 observations, got %d", len(series))
	}
	m.level = series[0]
	m.trend = series[1] - series[0]
	for _, y := range series[1:] {
		prevLevel := m.level
		m.level = m.alpha*y + (1-m.alpha)*(m.level+m.trend)
		m.trend = m.beta*(m.level-prevLevel) + (1-m.beta)*m.trend
	}
	if math.IsNaN(m.level) || math.IsNaN(m.trend) {
		return fmt.Errorf("holt: smoothing diverged")
	}
	return nil
}

func (m *holtModel) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = m.level + float64(k+1)*m.trend
	}
	return out
}

// linearFit returns the OLS intercept and slope of y over t = 0..n-1.
func linearFit(y []float64) (intercept, slope float64) {
	n := float64(len(y))
	var sumT, sumY, sumTT, sumTY float64
	for t, v := range y {
		ft := float64(t)
		sumT += ft
		sumY += v
		sumTT += ft * ft
		sumTY += ft * v
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return sumY / n, 0
	}
	slope = (n*sumTY - sumT*sumY) / denom
	intercept = (sumY - slope*sumT) / n
	return intercept, slope
}

// solveLinearSystem solves Ax=b by Gaussian elimination with partial
// pivoting. The systems here are tiny (5x5).
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system")
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := col + 1; r < n; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := m[r][n]
		for c := r + 1; c < n; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x, nil
}

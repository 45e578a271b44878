package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendSeries(weeks int, base, slope float64) []float64 {
	s := make([]float64, weeks)
	for t := range s {
		s[t] = base + slope*float64(t)
	}
	return s
}

func seasonalSeries(weeks int, base, amp float64) []float64 {
	s := make([]float64, weeks)
	for t := range s {
		s[t] = base + amp*math.Sin(2*math.Pi*float64(t)/52)
	}
	return s
}

func TestRunUpwardTrend(t *testing.T) {
	series := trendSeries(60, 100, 5)
	out, err := NewEnsemble().Run(context.Background(), series, 12)
	require.NoError(t, err)

	require.Len(t, out.WeeklyDemand, 12)
	sum := 0
	for _, w := range out.WeeklyDemand {
		assert.GreaterOrEqual(t, w, 0)
		sum += w
	}
	assert.Equal(t, out.TotalDemand, sum, "total must be the exact sum of weekly demand")

	// The series trends upward, so the forecast should beat a naive
	// carry-forward of the trailing 12 history weeks.
	var baseline float64
	for _, v := range series[48:] {
		baseline += v
	}
	assert.Greater(t, float64(out.TotalDemand), baseline)

	assert.GreaterOrEqual(t, out.Confidence, 0.0)
	assert.LessOrEqual(t, out.Confidence, 1.0)
	assert.GreaterOrEqual(t, out.SafetyStockFraction, 0.1)
	assert.LessOrEqual(t, out.SafetyStockFraction, 0.5)
	assert.NotEmpty(t, out.Models)
}

func TestRunSeasonalSeries(t *testing.T) {
	series := seasonalSeries(104, 500, 120)
	out, err := NewEnsemble().Run(context.Background(), series, 26)
	require.NoError(t, err)
	require.Len(t, out.WeeklyDemand, 26)

	sum := 0
	for _, w := range out.WeeklyDemand {
		sum += w
	}
	assert.Equal(t, out.TotalDemand, sum)
	assert.Contains(t, out.Models, "seasonal_decomposition")
}

func TestRunDeterministic(t *testing.T) {
	series := seasonalSeries(80, 300, 60)
	a, err := NewEnsemble().Run(context.Background(), series, 12)
	require.NoError(t, err)
	b, err := NewEnsemble().Run(context.Background(), series, 12)
	require.NoError(t, err)
	assert.Equal(t, a.WeeklyDemand, b.WeeklyDemand, "completion order must not change the blend")
	assert.Equal(t, a.Confidence, b.Confidence)
}

func TestRunInsufficientHistory(t *testing.T) {
	_, err := NewEnsemble().Run(context.Background(), trendSeries(40, 100, 1), 12)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRunMinimumHistory(t *testing.T) {
	out, err := NewEnsemble().Run(context.Background(), trendSeries(52, 200, 2), 8)
	require.NoError(t, err)
	assert.Len(t, out.WeeklyDemand, 8)
}

func TestRunRejectsBadHorizon(t *testing.T) {
	series := trendSeries(60, 100, 1)
	_, err := NewEnsemble().Run(context.Background(), series, 0)
	assert.Error(t, err)
	_, err = NewEnsemble().Run(context.Background(), series, 53)
	assert.Error(t, err)
}

func TestMeanAbsPctErrorSkipsZeroWeeks(t *testing.T) {
	mape, err := meanAbsPctError([]float64{0, 100, 200}, []float64{50, 110, 180})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, mape, 1e-9)

	_, err = meanAbsPctError([]float64{0, 0}, []float64{1, 2})
	assert.Error(t, err)
}

func TestSafetyStockBounds(t *testing.T) {
	assert.InDelta(t, 0.1, safetyStockFor(1.0), 1e-9)
	assert.InDelta(t, 0.5, safetyStockFor(0.0), 1e-9)
	mid := safetyStockFor(0.5)
	assert.GreaterOrEqual(t, mid, 0.1)
	assert.LessOrEqual(t, mid, 0.5)
}

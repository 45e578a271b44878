package variance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckThresholdExceeded(t *testing.T) {
	// Cumulative forecast 2550, cumulative actual 3200 through week 3:
	// variance = 650/2550 ~ 0.255, over the 0.20 tolerance.
	forecast := []int{850, 850, 850, 900}
	actuals := []int{1000, 1100, 1100}

	rep, err := NewMonitor(0.20).Check(forecast, actuals, 3)
	require.NoError(t, err)

	assert.Equal(t, 2550, rep.ForecastCum)
	assert.Equal(t, 3200, rep.ActualCum)
	assert.InDelta(t, 0.2549, rep.Fraction, 0.001)
	assert.InDelta(t, 0.2549, rep.SignedDeviation, 0.001)
	assert.True(t, rep.ThresholdExceeded)
}

func TestCheckWithinTolerance(t *testing.T) {
	rep, err := NewMonitor(0.20).Check([]int{100, 100}, []int{105, 95}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rep.Fraction, 1e-9)
	assert.False(t, rep.ThresholdExceeded)
}

func TestCheckUndersellingIsSymmetric(t *testing.T) {
	rep, err := NewMonitor(0.20).Check([]int{1000}, []int{700}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, rep.Fraction, 1e-9)
	assert.InDelta(t, -0.30, rep.SignedDeviation, 1e-9)
	assert.True(t, rep.ThresholdExceeded)
}

func TestCheckZeroForecast(t *testing.T) {
	rep, err := NewMonitor(0.20).Check([]int{0, 0}, []int{50, 50}, 2)
	require.NoError(t, err)
	assert.Zero(t, rep.Fraction)
	assert.False(t, rep.ThresholdExceeded)
}

func TestCheckMissingData(t *testing.T) {
	_, err := NewMonitor(0.20).Check([]int{100}, []int{100, 100}, 2)
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = NewMonitor(0.20).Check([]int{100, 100}, []int{100}, 2)
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestDefaultThreshold(t *testing.T) {
	rep, err := NewMonitor(0).Check([]int{100}, []int{121}, 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, rep.Threshold)
	assert.True(t, rep.ThresholdExceeded)
}

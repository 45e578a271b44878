package markdown

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendShortfall(t *testing.T) {
	// 45% vs 60% target at elasticity 2.0: gap 0.15, raw 0.30, already a
	// multiple of the 0.05 step.
	rec, err := NewCalculator(0).Recommend(0.45, 0.60, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.15, rec.Gap, 1e-9)
	assert.InDelta(t, 0.30, rec.Markdown, 1e-9)
	assert.InDelta(t, 0.60, rec.ExpectedDemandLift, 1e-9)
	assert.Contains(t, rec.Reasoning, "trails")
}

func TestRecommendAheadOfPlan(t *testing.T) {
	rec, err := NewCalculator(0).Recommend(0.70, 0.60, 2.0)
	require.NoError(t, err)
	assert.Zero(t, rec.Markdown)
	assert.Zero(t, rec.ExpectedDemandLift)
	assert.Contains(t, rec.Reasoning, "on or ahead")
}

func TestRecommendCapApplies(t *testing.T) {
	rec, err := NewCalculator(0).Recommend(0.10, 0.90, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, Cap, rec.Markdown, 1e-9)
}

func TestRecommendRoundsDownToStep(t *testing.T) {
	// gap 0.12 * 2.0 = 0.24 -> floors to 0.20 at a 0.05 step.
	rec, err := NewCalculator(0.05).Recommend(0.48, 0.60, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, rec.Markdown, 1e-9)
}

func TestRecommendMarkdownAlwaysMultipleOfStep(t *testing.T) {
	c := NewCalculator(0.05)
	for current := 0.0; current <= 1.0; current += 0.07 {
		rec, err := c.Recommend(current, 0.85, 1.7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.Markdown, 0.0)
		assert.LessOrEqual(t, rec.Markdown, Cap)
		steps := rec.Markdown / 0.05
		assert.InDelta(t, math.Round(steps), steps, 1e-6, "markdown %.4f not on step", rec.Markdown)
	}
}

func TestRecommendHonorsSubCentGranularity(t *testing.T) {
	// gap 0.14 * 2.0 = 0.28 -> floors to 0.275 at a 0.025 step. A cent
	// re-round would push this back to 0.28, off the step.
	rec, err := NewCalculator(0.025).Recommend(0.46, 0.60, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.275, rec.Markdown, 1e-9)

	c := NewCalculator(0.025)
	for current := 0.0; current <= 1.0; current += 0.03 {
		rec, err := c.Recommend(current, 0.85, 1.7)
		require.NoError(t, err)
		steps := rec.Markdown / 0.025
		assert.InDelta(t, math.Round(steps), steps, 1e-6, "markdown %.4f not on step", rec.Markdown)
	}
}

func TestRecommendZeroElasticityUsesDefault(t *testing.T) {
	rec, err := NewCalculator(0).Recommend(0.45, 0.60, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultElasticity, rec.Elasticity)
}

func TestRecommendRejectsBadInput(t *testing.T) {
	_, err := NewCalculator(0).Recommend(-0.1, 0.6, 2.0)
	assert.Error(t, err)
	_, err = NewCalculator(0).Recommend(0.5, 1.2, 2.0)
	assert.Error(t, err)
	_, err = NewCalculator(0).Recommend(0.5, 0.6, -1)
	assert.Error(t, err)
}

// Package markdown converts a sell-through shortfall into a bounded,
// granularity-rounded price markdown recommendation. The calculator is pure:
// each recompute with adjusted inputs yields a fresh candidate and never
// touches an earlier one.
package markdown

import (
	"fmt"
	"math"
)

const (
	// DefaultElasticity converts a sell-through gap into markdown points.
	DefaultElasticity = 2.0

	// Cap bounds every recommendation.
	Cap = 0.40

	// DefaultGranularity is the pricing step recommendations snap down to.
	DefaultGranularity = 0.05
)

// Recommendation is the calculator output.
type Recommendation struct {
	CurrentSellThrough float64
	TargetSellThrough  float64
	Gap                float64
	Elasticity         float64
	Markdown           float64
	ExpectedDemandLift float64
	Reasoning          string
}

// Calculator holds the pricing step; elasticity arrives per call so a
// reviewer's override flows straight through.
type Calculator struct {
	granularity float64
}

// NewCalculator builds a calculator; granularity <= 0 selects the default.
func NewCalculator(granularity float64) *Calculator {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	return &Calculator{granularity: granularity}
}

// Granularity returns the configured pricing step.
func (c *Calculator) Granularity() float64 { return c.granularity }

// Recommend computes gap = target - current, scales the shortfall by
// elasticity, caps the result and rounds it down to the pricing step. A gap
// at or below zero means the season is on or ahead of plan: no markdown.
func (c *Calculator) Recommend(current, target, elasticity float64) (Recommendation, error) {
	if current < 0 || current > 1 {
		return Recommendation{}, fmt.Errorf("current sell-through must be in [0,1], got %g", current)
	}
	if target < 0 || target > 1 {
		return Recommendation{}, fmt.Errorf("target sell-through must be in [0,1], got %g", target)
	}
	if elasticity < 0 {
		return Recommendation{}, fmt.Errorf("elasticity must be >= 0, got %g", elasticity)
	}
	if elasticity == 0 {
		elasticity = DefaultElasticity
	}

	gap := target - current
	rec := Recommendation{
		CurrentSellThrough: current,
		TargetSellThrough:  target,
		Gap:                gap,
		Elasticity:         elasticity,
	}

	if gap <= 0 {
		rec.Reasoning = fmt.Sprintf("sell-through %.0f%% is on or ahead of the %.0f%% target; no markdown needed",
			current*100, target*100)
		return rec, nil
	}

	raw := gap * elasticity
	final := floorToGranularity(math.Min(raw, Cap), c.granularity)
	rec.Markdown = final
	rec.ExpectedDemandLift = final * elasticity
	rec.Reasoning = fmt.Sprintf("sell-through %.0f%% trails the %.0f%% target by %.0f pts; recommending a %.0f%% markdown",
		current*100, target*100, gap*100, final*100)
	return rec, nil
}

// floorToGranularity rounds down to the nearest multiple of step. A small
// epsilon absorbs float noise so an exact multiple is not knocked down a step.
func floorToGranularity(v, step float64) float64 {
	n := math.Floor(v/step + 1e-9)
	return n * step
}

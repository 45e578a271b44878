// Package guardrail re-checks every produced artifact against its
// invariants before the orchestrator accepts it. Violations are collected,
// never corrected: a tripwire blocks the result from reaching a downstream
// step or a human reviewer.
package guardrail

import (
	"fmt"
	"math"
	"strings"

	"github.com/trimline/seasonplan/internal/models"
)

// Issue is one invariant violation.
type Issue struct {
	Code   string `json:"code"`
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// Tripwire is the fatal step failure raised when any check finds issues.
type Tripwire struct {
	Step   models.WorkflowStep
	Issues []Issue
}

func (t *Tripwire) Error() string {
	parts := make([]string, len(t.Issues))
	for i, is := range t.Issues {
		parts[i] = fmt.Sprintf("%s(%s): %s", is.Code, is.Field, is.Detail)
	}
	return fmt.Sprintf("guardrail tripwire on %s step: %s", t.Step, strings.Join(parts, "; "))
}

// Trip wraps issues into a Tripwire, or returns nil when there are none.
func Trip(step models.WorkflowStep, issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &Tripwire{Step: step, Issues: issues}
}

// Validator is stateless and idempotent: re-checking an already accepted
// artifact can never flip the outcome.
type Validator struct{}

func New() *Validator { return &Validator{} }

// CheckForecast enforces the forecast invariants: conservation of units,
// bounded confidence and safety stock, requested horizon honored.
func (v *Validator) CheckForecast(f models.ForecastResult, requestedHorizon int) []Issue {
	var issues []Issue
	add := func(code, field, format string, args ...interface{}) {
		issues = append(issues, Issue{Code: code, Field: field, Detail: fmt.Sprintf(format, args...)})
	}

	if len(f.Models) == 0 {
		add("forecast.models_empty", "models", "no contributing models recorded")
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		add("forecast.confidence_range", "confidence", "confidence %g outside [0,1]", f.Confidence)
	}
	if f.SafetyStockFraction < 0.1 || f.SafetyStockFraction > 0.5 {
		add("forecast.safety_stock_range", "safetyStockFraction", "safety stock %g outside [0.1,0.5]", f.SafetyStockFraction)
	}
	if len(f.WeeklyDemand) != requestedHorizon {
		add("forecast.horizon_mismatch", "weeklyDemand", "got %d weeks, requested %d", len(f.WeeklyDemand), requestedHorizon)
	}
	sum := 0
	for week, units := range f.WeeklyDemand {
		if units < 0 {
			add("forecast.negative_week", "weeklyDemand", "week %d has %d units", week+1, units)
		}
		sum += units
	}
	if sum != f.TotalDemand {
		add("forecast.conservation", "totalDemand", "weekly sum %d != total %d", sum, f.TotalDemand)
	}
	if f.TotalDemand < 0 {
		add("forecast.negative_total", "totalDemand", "total %d is negative", f.TotalDemand)
	}
	return issues
}

// clusterTolerance is the rounding slack allowed between a cluster subtotal
// and its exact proportional share.
const clusterTolerance = 1.0

// CheckAllocation enforces conservation against the manufacturing quantity,
// non-negative store allocations, and cluster subtotals within rounding
// tolerance of the cluster shares.
func (v *Validator) CheckAllocation(p models.AllocationPlan) []Issue {
	var issues []Issue
	add := func(code, field, format string, args ...interface{}) {
		issues = append(issues, Issue{Code: code, Field: field, Detail: fmt.Sprintf(format, args...)})
	}

	if p.ManufacturingQty < 0 {
		add("allocation.negative_qty", "manufacturingQty", "manufacturing qty %d is negative", p.ManufacturingQty)
	}
	var initial, holdback int
	subtotals := map[int]int{}
	for _, s := range p.Stores {
		if s.InitialUnits < 0 || s.HoldbackUnits < 0 {
			add("allocation.negative_units", "stores", "store %s has negative units", s.StoreID)
		}
		initial += s.InitialUnits
		holdback += s.HoldbackUnits
		subtotals[s.ClusterID] += s.InitialUnits
	}
	if initial+holdback != p.ManufacturingQty {
		add("allocation.conservation", "stores", "distributed %d != manufacturing qty %d", initial+holdback, p.ManufacturingQty)
	}
	if initial != p.ImmediateUnits {
		add("allocation.immediate_mismatch", "immediateUnits", "store initial sum %d != immediate pool %d", initial, p.ImmediateUnits)
	}
	if holdback != p.HoldbackUnits {
		add("allocation.holdback_mismatch", "holdbackUnits", "store holdback sum %d != holdback pool %d", holdback, p.HoldbackUnits)
	}
	for cid, share := range p.ClusterShares {
		exact := share * float64(p.ImmediateUnits)
		if math.Abs(exact-float64(subtotals[cid])) > clusterTolerance {
			add("allocation.cluster_drift", "clusterShares",
				"cluster %d subtotal %d vs expected %.1f exceeds tolerance", cid, subtotals[cid], exact)
		}
	}
	return issues
}

// CheckMarkdown enforces the markdown bounds and the pricing-step multiple.
func (v *Validator) CheckMarkdown(d models.MarkdownDecision, granularity float64) []Issue {
	var issues []Issue
	add := func(code, field, format string, args ...interface{}) {
		issues = append(issues, Issue{Code: code, Field: field, Detail: fmt.Sprintf(format, args...)})
	}

	if d.Markdown < 0 || d.Markdown > 0.40 {
		add("markdown.range", "recommendedMarkdown", "markdown %g outside [0,0.40]", d.Markdown)
	}
	if granularity > 0 {
		steps := d.Markdown / granularity
		if math.Abs(steps-math.Round(steps)) > 1e-6 {
			add("markdown.granularity", "recommendedMarkdown", "markdown %g is not a multiple of %g", d.Markdown, granularity)
		}
	}
	if d.Elasticity < 0 {
		add("markdown.elasticity", "elasticity", "elasticity %g is negative", d.Elasticity)
	}
	return issues
}

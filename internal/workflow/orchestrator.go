// Package workflow sequences forecast, allocation, variance and markdown
// into one auditable state machine with human-approval checkpoints. The
// orchestrator owns WorkflowState; every other record is produced as a side
// effect of a transition and written once to the store. Approval pauses are
// persisted suspension points, not in-memory waits: a suspended workflow is
// re-entered through Resolve or SubmitActuals and survives restarts.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/allocation"
	"github.com/trimline/seasonplan/internal/archive"
	"github.com/trimline/seasonplan/internal/cluster"
	"github.com/trimline/seasonplan/internal/forecast"
	"github.com/trimline/seasonplan/internal/guardrail"
	"github.com/trimline/seasonplan/internal/history"
	"github.com/trimline/seasonplan/internal/markdown"
	"github.com/trimline/seasonplan/internal/models"
	"github.com/trimline/seasonplan/internal/progress"
	"github.com/trimline/seasonplan/internal/store"
	"github.com/trimline/seasonplan/internal/variance"
)

var (
	// ErrInvalidState means the requested operation does not apply to the
	// workflow's current status or step.
	ErrInvalidState = errors.New("operation not valid for workflow state")

	// ErrReforecastLimit is the soft "variance persists" outcome: the
	// bounded re-forecast loop ran out of retries but the workflow
	// proceeds with the latest forecast rather than blocking.
	ErrReforecastLimit = errors.New("variance persists after re-forecast limit")
)

// DefaultMaxReforecasts bounds the variance-triggered re-forecast loop.
const DefaultMaxReforecasts = 2

// Action is a human reviewer's response at an approval checkpoint.
type Action string

const (
	ActionAccept Action = "accept"
	ActionModify Action = "modify"
)

// Decision carries a reviewer action plus any adjusted parameters for the
// modify path. Nil fields keep the current values.
type Decision struct {
	Action             Action   `json:"action"`
	SafetyStock        *float64 `json:"safetyStock,omitempty"`
	Elasticity         *float64 `json:"elasticity,omitempty"`
	CurrentSellThrough *float64 `json:"currentSellThrough,omitempty"`
	TargetSellThrough  *float64 `json:"targetSellThrough,omitempty"`
}

// Config tunes the orchestrator; zero values select defaults.
type Config struct {
	MaxReforecasts      int
	ClusterCount        int
	MarkdownGranularity float64
}

// Orchestrator wires the deterministic components to the store and sinks.
type Orchestrator struct {
	store     store.Store
	emitter   progress.Emitter
	ensemble  *forecast.Ensemble
	segmenter *cluster.Segmenter
	allocator *allocation.Allocator
	calc      *markdown.Calculator
	validator *guardrail.Validator
	source    history.Source
	catalog   []models.StoreProfile
	archiver  archive.Archiver

	maxReforecasts int
}

// New builds an orchestrator. archiver may be nil (archival disabled);
// emitter may be nil (events discarded).
func New(st store.Store, emitter progress.Emitter, source history.Source,
	catalog []models.StoreProfile, archiver archive.Archiver, cfg Config) *Orchestrator {
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	max := cfg.MaxReforecasts
	if max <= 0 {
		max = DefaultMaxReforecasts
	}
	return &Orchestrator{
		store:          st,
		emitter:        emitter,
		ensemble:       forecast.NewEnsemble(),
		segmenter:      cluster.NewSegmenter(cfg.ClusterCount),
		allocator:      allocation.New(),
		calc:           markdown.NewCalculator(cfg.MarkdownGranularity),
		validator:      guardrail.New(),
		source:         source,
		catalog:        catalog,
		archiver:       archiver,
		maxReforecasts: max,
	}
}

// Get returns the current state of a workflow.
func (o *Orchestrator) Get(ctx context.Context, id uuid.UUID) (models.WorkflowState, error) {
	return o.store.GetWorkflow(ctx, id)
}

// Start creates a workflow and drives it through forecast and allocation up
// to the manufacturing-order review checkpoint.
func (o *Orchestrator) Start(ctx context.Context, params models.SeasonParameters) (models.WorkflowState, error) {
	if err := params.Validate(); err != nil {
		return models.WorkflowState{}, fmt.Errorf("invalid season parameters: %w", err)
	}

	now := time.Now().UTC()
	w := models.WorkflowState{
		ID:          uuid.New(),
		Type:        models.WorkflowForecast,
		Params:      params,
		CurrentStep: models.StepForecast,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.store.CreateWorkflow(ctx, w); err != nil {
		return models.WorkflowState{}, fmt.Errorf("create workflow: %w", err)
	}

	if err := o.runForecast(ctx, &w, nil); err != nil {
		return o.fail(ctx, &w, models.StepForecast, err)
	}
	if err := o.checkCancelled(ctx, &w); err != nil {
		return w, err
	}
	if err := o.runAllocation(ctx, &w, nil); err != nil {
		return o.fail(ctx, &w, models.StepAllocation, err)
	}

	// Manufacturing-order review: suspend until a reviewer responds.
	return o.suspend(ctx, &w, models.StepAllocation)
}

// Resolve re-enters a suspended workflow with a reviewer decision. Modify
// re-invokes the suspended step with adjusted parameters without advancing;
// accept commits the step's result and advances the state machine.
func (o *Orchestrator) Resolve(ctx context.Context, id uuid.UUID, dec Decision) (models.WorkflowState, error) {
	w, err := o.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.WorkflowState{}, err
	}
	if w.Status != models.StatusAwaitingApproval {
		return w, fmt.Errorf("%w: status is %s", ErrInvalidState, w.Status)
	}

	switch dec.Action {
	case ActionAccept:
		return o.acceptStep(ctx, &w)
	case ActionModify:
		return o.modifyStep(ctx, &w, dec)
	default:
		return w, fmt.Errorf("%w: unknown action %q", ErrInvalidState, dec.Action)
	}
}

func (o *Orchestrator) acceptStep(ctx context.Context, w *models.WorkflowState) (models.WorkflowState, error) {
	switch w.CurrentStep {
	case models.StepAllocation:
		// Manufacturing order accepted. Without a markdown checkpoint the
		// markdown stage is skipped entirely, not deferred.
		if w.Params.MarkdownCheckpointWk == nil {
			return o.complete(ctx, w)
		}
		w.CurrentStep = models.StepVariance
		w.Status = models.StatusAwaitingData
		if err := o.persist(ctx, w); err != nil {
			return *w, err
		}
		o.emit(ctx, w, progress.StepProgress, map[string]interface{}{
			"waiting": "in-season actuals through checkpoint week",
		})
		return *w, nil

	case models.StepMarkdown:
		if w.MarkdownID != nil {
			if err := o.store.UpdateMarkdownStatus(ctx, *w.MarkdownID, models.MarkdownApproved); err != nil {
				return *w, fmt.Errorf("approve markdown: %w", err)
			}
		}
		return o.complete(ctx, w)

	default:
		return *w, fmt.Errorf("%w: cannot accept step %s", ErrInvalidState, w.CurrentStep)
	}
}

func (o *Orchestrator) modifyStep(ctx context.Context, w *models.WorkflowState, dec Decision) (models.WorkflowState, error) {
	switch w.CurrentStep {
	case models.StepAllocation:
		if err := o.runAllocation(ctx, w, dec.SafetyStock); err != nil {
			return o.fail(ctx, w, models.StepAllocation, err)
		}
		return o.suspend(ctx, w, models.StepAllocation)

	case models.StepMarkdown:
		if err := o.runMarkdown(ctx, w, dec); err != nil {
			return o.fail(ctx, w, models.StepMarkdown, err)
		}
		return o.suspend(ctx, w, models.StepMarkdown)

	default:
		return *w, fmt.Errorf("%w: cannot modify step %s", ErrInvalidState, w.CurrentStep)
	}
}

// SubmitActuals feeds in-season weekly actuals to a workflow waiting at its
// markdown checkpoint. Variance is evaluated first; when it exceeds
// tolerance a bounded re-forecast loop runs before markdown calculation
// proceeds on the revised forecast.
func (o *Orchestrator) SubmitActuals(ctx context.Context, id uuid.UUID, actuals []int) (models.WorkflowState, error) {
	w, err := o.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.WorkflowState{}, err
	}
	if w.Status != models.StatusAwaitingData || w.CurrentStep != models.StepVariance {
		return w, fmt.Errorf("%w: status %s, step %s", ErrInvalidState, w.Status, w.CurrentStep)
	}
	checkpoint := *w.Params.MarkdownCheckpointWk

	w.Status = models.StatusRunning
	if err := o.persist(ctx, &w); err != nil {
		return w, err
	}
	o.emit(ctx, &w, progress.StepStarted, nil)

	report, err := o.checkVariance(ctx, &w, actuals, checkpoint)
	if err != nil {
		if errors.Is(err, variance.ErrMissingData) {
			// Reported, not fatal: hold position and wait for data.
			w.Status = models.StatusAwaitingData
			if perr := o.persist(ctx, &w); perr != nil {
				return w, perr
			}
			return w, err
		}
		return o.fail(ctx, &w, models.StepVariance, err)
	}

	if report.ThresholdExceeded {
		if err := o.reforecastLoop(ctx, &w, actuals, checkpoint); err != nil {
			if errors.Is(err, ErrReforecastLimit) {
				w.VariancePersists = true
			} else {
				return o.fail(ctx, &w, models.StepForecast, err)
			}
		}
	}
	o.emit(ctx, &w, progress.StepCompleted, map[string]interface{}{
		"step":              string(models.StepVariance),
		"varianceFraction":  report.Fraction,
		"thresholdExceeded": report.ThresholdExceeded,
	})

	if err := o.checkCancelled(ctx, &w); err != nil {
		return w, err
	}

	sellThrough, err := o.observedSellThrough(ctx, &w, actuals)
	if err != nil {
		return o.fail(ctx, &w, models.StepMarkdown, err)
	}
	if err := o.runMarkdown(ctx, &w, Decision{CurrentSellThrough: &sellThrough}); err != nil {
		return o.fail(ctx, &w, models.StepMarkdown, err)
	}
	return o.suspend(ctx, &w, models.StepMarkdown)
}

// Cancel transitions a workflow to its terminal cancelled state. Only
// suspension points are cancellable; a step in flight always finishes.
func (o *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) (models.WorkflowState, error) {
	w, err := o.store.GetWorkflow(ctx, id)
	if err != nil {
		return models.WorkflowState{}, err
	}
	switch w.Status {
	case models.StatusPending, models.StatusAwaitingApproval, models.StatusAwaitingData:
	default:
		return w, fmt.Errorf("%w: cannot cancel in status %s", ErrInvalidState, w.Status)
	}
	w.Status = models.StatusCancelled
	if err := o.persist(ctx, &w); err != nil {
		return w, err
	}
	o.emit(ctx, &w, progress.WorkflowError, map[string]interface{}{"reason": "cancelled"})
	return w, nil
}

// ---- step runners ----

// runForecast trains the ensemble over the category history (plus any
// observed in-season actuals on the re-forecast path) and persists a new
// forecast revision. A revision stays aligned to season week 1: observed
// weeks are settled fact and carried into the curve as-is, and the models
// predict only the remaining weeks.
func (o *Orchestrator) runForecast(ctx context.Context, w *models.WorkflowState, actuals []int) error {
	w.Status = models.StatusRunning
	w.CurrentStep = models.StepForecast
	if err := o.persist(ctx, w); err != nil {
		return err
	}
	o.emit(ctx, w, progress.StepStarted, nil)

	series, err := o.source.CategorySeries(ctx, w.Params.Category)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	horizon := w.Params.HorizonWeeks
	observed := actuals
	if len(observed) >= horizon {
		// The ensemble must still predict at least the final week.
		observed = observed[:horizon-1]
	}
	for _, a := range observed {
		series = append(series, float64(a))
	}

	out, err := o.ensemble.Run(ctx, series, horizon-len(observed))
	if err != nil {
		return err
	}

	weekly := make([]int, 0, horizon)
	total := 0
	for _, a := range observed {
		weekly = append(weekly, a)
		total += a
	}
	weekly = append(weekly, out.WeeklyDemand...)
	total += out.TotalDemand

	result := models.ForecastResult{
		ID:                  uuid.New(),
		WorkflowID:          w.ID,
		Revision:            w.ReforecastCount + 1,
		TotalDemand:         total,
		WeeklyDemand:        weekly,
		Confidence:          out.Confidence,
		SafetyStockFraction: out.SafetyStockFraction,
		Models:              out.Models,
		ModelScores:         out.ModelScores,
		CreatedAt:           time.Now().UTC(),
	}
	if err := guardrail.Trip(models.StepForecast, o.validator.CheckForecast(result, w.Params.HorizonWeeks)); err != nil {
		return err
	}
	if err := o.store.InsertForecast(ctx, result); err != nil {
		return fmt.Errorf("persist forecast: %w", err)
	}
	w.ForecastID = &result.ID
	o.emit(ctx, w, progress.StepCompleted, map[string]interface{}{
		"totalDemand": result.TotalDemand,
		"confidence":  result.Confidence,
		"revision":    result.Revision,
	})
	return nil
}

// runAllocation segments stores, distributes the manufactured quantity and
// persists the plan. safetyOverride recomputes manufacturing quantity with a
// reviewer-adjusted safety stock.
func (o *Orchestrator) runAllocation(ctx context.Context, w *models.WorkflowState, safetyOverride *float64) error {
	w.Status = models.StatusRunning
	w.CurrentStep = models.StepAllocation
	if err := o.persist(ctx, w); err != nil {
		return err
	}
	o.emit(ctx, w, progress.StepStarted, nil)

	f, err := o.store.LatestForecast(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("load forecast: %w", err)
	}
	safety := f.SafetyStockFraction
	if safetyOverride != nil {
		safety = *safetyOverride
	}

	assignments, err := o.segmenter.Assign(o.catalog)
	if err != nil {
		return fmt.Errorf("cluster stores: %w", err)
	}
	shares, err := o.source.StoreShares(ctx, w.Params.Category)
	if err != nil {
		return fmt.Errorf("load store shares: %w", err)
	}

	built, err := o.allocator.Build(allocation.Input{
		TotalDemand:         f.TotalDemand,
		SafetyStockFraction: safety,
		DCHoldbackFraction:  w.Params.DCHoldbackFraction,
		Assignments:         assignments,
		StoreShares:         shares,
	})
	if err != nil {
		return err
	}

	plan := models.AllocationPlan{
		ID:                  uuid.New(),
		WorkflowID:          w.ID,
		ForecastID:          f.ID,
		ManufacturingQty:    built.ManufacturingQty,
		SafetyStockFraction: built.SafetyStockFraction,
		ImmediateUnits:      built.ImmediateUnits,
		HoldbackUnits:       built.HoldbackUnits,
		Stores:              built.Stores,
		ClusterShares:       built.ClusterShares,
		Assignments:         assignments,
		CreatedAt:           time.Now().UTC(),
	}
	if err := guardrail.Trip(models.StepAllocation, o.validator.CheckAllocation(plan)); err != nil {
		return err
	}
	if err := o.store.InsertAllocationPlan(ctx, plan); err != nil {
		return fmt.Errorf("persist allocation plan: %w", err)
	}
	w.AllocationID = &plan.ID
	o.emit(ctx, w, progress.StepCompleted, map[string]interface{}{
		"manufacturingQty": plan.ManufacturingQty,
		"immediateUnits":   plan.ImmediateUnits,
		"holdbackUnits":    plan.HoldbackUnits,
	})
	return nil
}

// checkVariance runs the monitor against the latest forecast and records
// the report.
func (o *Orchestrator) checkVariance(ctx context.Context, w *models.WorkflowState, actuals []int, week int) (variance.Report, error) {
	f, err := o.store.LatestForecast(ctx, w.ID)
	if err != nil {
		return variance.Report{}, fmt.Errorf("%w: no forecast", variance.ErrMissingData)
	}
	monitor := variance.NewMonitor(o.varianceThreshold(w))
	report, err := monitor.Check(f.WeeklyDemand, actuals, week)
	if err != nil {
		return variance.Report{}, err
	}

	action := models.VarianceActionNone
	if report.ThresholdExceeded && w.ReforecastCount < o.maxReforecasts {
		action = models.VarianceActionReforecast
	}
	rec := models.VarianceReport{
		ID:                uuid.New(),
		WorkflowID:        w.ID,
		Week:              report.Week,
		ForecastCum:       report.ForecastCum,
		ActualCum:         report.ActualCum,
		VarianceFraction:  report.Fraction,
		SignedDeviation:   report.SignedDeviation,
		Threshold:         report.Threshold,
		ThresholdExceeded: report.ThresholdExceeded,
		Action:            action,
		CreatedAt:         time.Now().UTC(),
	}
	if err := o.store.InsertVarianceReport(ctx, rec); err != nil {
		return variance.Report{}, fmt.Errorf("persist variance report: %w", err)
	}
	return report, nil
}

// reforecastLoop re-trains on history extended with observed actuals until
// variance falls inside tolerance or the bounded retry count is exhausted.
func (o *Orchestrator) reforecastLoop(ctx context.Context, w *models.WorkflowState, actuals []int, week int) error {
	for w.ReforecastCount < o.maxReforecasts {
		w.ReforecastCount++
		w.Type = models.WorkflowReforecast
		if err := o.runForecast(ctx, w, actuals); err != nil {
			return err
		}
		report, err := o.checkVariance(ctx, w, actuals, week)
		if err != nil {
			return err
		}
		if !report.ThresholdExceeded {
			return nil
		}
	}
	return ErrReforecastLimit
}

// runMarkdown computes a markdown recommendation for the checkpoint week and
// suspends for review. Reviewer overrides flow in through dec.
func (o *Orchestrator) runMarkdown(ctx context.Context, w *models.WorkflowState, dec Decision) error {
	w.Status = models.StatusRunning
	w.CurrentStep = models.StepMarkdown
	if err := o.persist(ctx, w); err != nil {
		return err
	}
	o.emit(ctx, w, progress.StepStarted, nil)

	current := 0.0
	if dec.CurrentSellThrough != nil {
		current = *dec.CurrentSellThrough
	} else if w.MarkdownID != nil {
		// Modify without an override keeps the prior observation.
		if prior, err := o.store.LatestMarkdown(ctx, w.ID); err == nil {
			current = prior.CurrentSellThrough
		}
	}
	target := w.Params.TargetSellThrough
	if dec.TargetSellThrough != nil {
		target = *dec.TargetSellThrough
	}
	elasticity := w.Params.ElasticityCoefficient
	if dec.Elasticity != nil {
		elasticity = *dec.Elasticity
	}

	rec, err := o.calc.Recommend(current, target, elasticity)
	if err != nil {
		return err
	}

	decision := models.MarkdownDecision{
		ID:                 uuid.New(),
		WorkflowID:         w.ID,
		Week:               *w.Params.MarkdownCheckpointWk,
		CurrentSellThrough: rec.CurrentSellThrough,
		TargetSellThrough:  rec.TargetSellThrough,
		Gap:                rec.Gap,
		Elasticity:         rec.Elasticity,
		Markdown:           rec.Markdown,
		ExpectedDemandLift: rec.ExpectedDemandLift,
		Reasoning:          rec.Reasoning,
		Status:             models.MarkdownPending,
		CreatedAt:          time.Now().UTC(),
	}
	if err := guardrail.Trip(models.StepMarkdown, o.validator.CheckMarkdown(decision, o.calc.Granularity())); err != nil {
		return err
	}
	if err := o.store.InsertMarkdownDecision(ctx, decision); err != nil {
		return fmt.Errorf("persist markdown decision: %w", err)
	}
	w.MarkdownID = &decision.ID
	o.emit(ctx, w, progress.StepCompleted, map[string]interface{}{
		"markdown":  decision.Markdown,
		"reasoning": decision.Reasoning,
	})
	return nil
}

// ---- transitions ----

func (o *Orchestrator) suspend(ctx context.Context, w *models.WorkflowState, step models.WorkflowStep) (models.WorkflowState, error) {
	w.CurrentStep = step
	w.Status = models.StatusAwaitingApproval
	if err := o.persist(ctx, w); err != nil {
		return *w, err
	}
	o.emit(ctx, w, progress.AwaitingApproval, nil)
	return *w, nil
}

func (o *Orchestrator) complete(ctx context.Context, w *models.WorkflowState) (models.WorkflowState, error) {
	w.CurrentStep = models.StepDone
	w.Status = models.StatusCompleted
	if err := o.persist(ctx, w); err != nil {
		return *w, err
	}
	o.emit(ctx, w, progress.WorkflowComplete, nil)
	o.archivePlan(ctx, w)
	return *w, nil
}

// fail is terminal: the originating error is attached verbatim for audit,
// and guardrail issues (when present) are kept as a structured list.
func (o *Orchestrator) fail(ctx context.Context, w *models.WorkflowState, step models.WorkflowStep, cause error) (models.WorkflowState, error) {
	w.CurrentStep = step
	w.Status = models.StatusFailed
	w.LastError = cause.Error()
	var tw *guardrail.Tripwire
	if errors.As(cause, &tw) {
		if raw, err := json.Marshal(tw.Issues); err == nil {
			w.Issues = raw
		}
	}
	if err := o.persist(ctx, w); err != nil {
		log.Printf("workflow %s: persist failure state: %v", w.ID, err)
	}
	o.emit(ctx, w, progress.WorkflowError, map[string]interface{}{"error": cause.Error()})
	return *w, cause
}

func (o *Orchestrator) persist(ctx context.Context, w *models.WorkflowState) error {
	w.UpdatedAt = time.Now().UTC()
	if err := o.store.UpdateWorkflow(ctx, *w); err != nil {
		return fmt.Errorf("persist workflow state: %w", err)
	}
	return nil
}

// checkCancelled honors an external cancellation signal at step boundaries
// only, never mid-computation.
func (o *Orchestrator) checkCancelled(ctx context.Context, w *models.WorkflowState) error {
	if err := ctx.Err(); err != nil {
		w.Status = models.StatusCancelled
		if perr := o.persist(ctx, w); perr != nil {
			log.Printf("workflow %s: persist cancelled state: %v", w.ID, perr)
		}
		return err
	}
	latest, err := o.store.GetWorkflow(ctx, w.ID)
	if err == nil && latest.Status == models.StatusCancelled {
		*w = latest
		return fmt.Errorf("%w: workflow cancelled", ErrInvalidState)
	}
	return nil
}

func (o *Orchestrator) emit(ctx context.Context, w *models.WorkflowState, t progress.EventType, detail map[string]interface{}) {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	o.emitter.Emit(ctx, progress.Event{
		WorkflowID: w.ID,
		Type:       t,
		Step:       string(w.CurrentStep),
		Detail:     detail,
		TS:         time.Now().UTC(),
	})
}

func (o *Orchestrator) archivePlan(ctx context.Context, w *models.WorkflowState) {
	if o.archiver == nil {
		return
	}
	summary := archive.PlanSummary{Workflow: *w, ArchivedAt: time.Now().UTC()}
	if f, err := o.store.LatestForecast(ctx, w.ID); err == nil {
		summary.Forecast = &f
	}
	if p, err := o.store.GetAllocationPlan(ctx, w.ID); err == nil {
		summary.Allocation = &p
	}
	if err := o.archiver.ArchivePlan(ctx, summary); err != nil {
		log.Printf("workflow %s: archive plan: %v", w.ID, err)
	}
}

func (o *Orchestrator) varianceThreshold(w *models.WorkflowState) float64 {
	if w.Params.MarkdownThreshold != nil {
		return *w.Params.MarkdownThreshold
	}
	return variance.DefaultThreshold
}

// observedSellThrough is the fraction of units allocated to stores at
// launch that have sold through the checkpoint week.
func (o *Orchestrator) observedSellThrough(ctx context.Context, w *models.WorkflowState, actuals []int) (float64, error) {
	plan, err := o.store.GetAllocationPlan(ctx, w.ID)
	if err != nil {
		return 0, fmt.Errorf("load allocation plan: %w", err)
	}
	if plan.ImmediateUnits <= 0 {
		return 0, nil
	}
	sold := 0
	for _, a := range actuals {
		sold += a
	}
	st := float64(sold) / float64(plan.ImmediateUnits)
	if st < 0 {
		st = 0
	}
	if st > 1 {
		st = 1
	}
	return st, nil
}

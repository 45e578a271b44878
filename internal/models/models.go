package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReplenishmentStrategy controls how DC holdback units are released in-season.
type ReplenishmentStrategy string

const (
	ReplenishNone     ReplenishmentStrategy = "none"
	ReplenishWeekly   ReplenishmentStrategy = "weekly"
	ReplenishBiWeekly ReplenishmentStrategy = "bi-weekly"
)

// SeasonParameters is the immutable input describing one planning season.
type SeasonParameters struct {
	Category              string                `json:"category"`
	HorizonWeeks          int                   `json:"horizonWeeks"`
	SeasonStart           time.Time             `json:"seasonStart"`
	SeasonEnd             time.Time             `json:"seasonEnd"`
	Replenishment         ReplenishmentStrategy `json:"replenishment"`
	DCHoldbackFraction    float64               `json:"dcHoldbackFraction"`
	MarkdownCheckpointWk  *int                  `json:"markdownCheckpointWeek,omitempty"`
	MarkdownThreshold     *float64              `json:"markdownThreshold,omitempty"`
	TargetSellThrough     float64               `json:"targetSellThrough"`
	ElasticityCoefficient float64               `json:"elasticityCoefficient"`
}

// Validate rejects parameter combinations the engine must never run with.
func (p SeasonParameters) Validate() error {
	if p.Category == "" {
		return fmt.Errorf("category required")
	}
	if p.HorizonWeeks < 1 || p.HorizonWeeks > 52 {
		return fmt.Errorf("horizonWeeks must be in [1,52], got %d", p.HorizonWeeks)
	}
	if p.DCHoldbackFraction < 0 || p.DCHoldbackFraction > 1 {
		return fmt.Errorf("dcHoldbackFraction must be in [0,1], got %g", p.DCHoldbackFraction)
	}
	switch p.Replenishment {
	case ReplenishNone, ReplenishWeekly, ReplenishBiWeekly:
	case "":
		return fmt.Errorf("replenishment strategy required")
	default:
		return fmt.Errorf("unknown replenishment strategy %q", p.Replenishment)
	}
	if p.MarkdownCheckpointWk != nil {
		wk := *p.MarkdownCheckpointWk
		if wk < 1 || wk > p.HorizonWeeks {
			return fmt.Errorf("markdownCheckpointWeek %d outside [1,%d]", wk, p.HorizonWeeks)
		}
	}
	if p.MarkdownThreshold != nil {
		if t := *p.MarkdownThreshold; t < 0 || t > 1 {
			return fmt.Errorf("markdownThreshold must be in [0,1], got %g", t)
		}
	}
	return nil
}

// ForecastResult is a validated, immutable seasonal demand curve. A re-forecast
// supersedes an earlier result by inserting a new record with a higher Revision;
// accepted results are never mutated.
type ForecastResult struct {
	ID                  uuid.UUID          `json:"id"`
	WorkflowID          uuid.UUID          `json:"workflowId"`
	Revision            int                `json:"revision"`
	TotalDemand         int                `json:"totalDemand"`
	WeeklyDemand        []int              `json:"weeklyDemand"`
	Confidence          float64            `json:"confidence"`
	SafetyStockFraction float64            `json:"safetyStockFraction"`
	Models              []string           `json:"models"`
	ModelScores         map[string]float64 `json:"modelScores,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
}

// ClusterAssignment maps every store to exactly one behavioral cluster.
type ClusterAssignment struct {
	StoreID   string `json:"storeId"`
	ClusterID int    `json:"clusterId"`
	TierLabel string `json:"tierLabel"`
}

// StoreAllocation is the per-store split between units shipped at season
// launch and units held back at the distribution center.
type StoreAllocation struct {
	StoreID       string `json:"storeId"`
	ClusterID     int    `json:"clusterId"`
	InitialUnits  int    `json:"initialUnits"`
	HoldbackUnits int    `json:"holdbackUnits"`
}

// AllocationPlan distributes the manufactured quantity down to store level.
// Invariant: sum over stores of InitialUnits+HoldbackUnits == ManufacturingQty.
type AllocationPlan struct {
	ID                  uuid.UUID           `json:"id"`
	WorkflowID          uuid.UUID           `json:"workflowId"`
	ForecastID          uuid.UUID           `json:"forecastId"`
	ManufacturingQty    int                 `json:"manufacturingQty"`
	SafetyStockFraction float64             `json:"safetyStockFraction"`
	ImmediateUnits      int                 `json:"immediateUnits"`
	HoldbackUnits       int                 `json:"holdbackUnits"`
	Stores              []StoreAllocation   `json:"stores"`
	ClusterShares       map[int]float64     `json:"clusterShares"`
	Assignments         []ClusterAssignment `json:"assignments"`
	CreatedAt           time.Time           `json:"createdAt"`
}

// VarianceAction records what the orchestrator did with a variance report.
type VarianceAction string

const (
	VarianceActionNone       VarianceAction = "none"
	VarianceActionReforecast VarianceAction = "reforecast_triggered"
)

// VarianceReport compares cumulative actuals against the cumulative forecast
// through a given week. VarianceFraction uses the symmetric convention
// |actual-forecast|/forecast; SignedDeviation keeps the direction for
// diagnostics.
type VarianceReport struct {
	ID                uuid.UUID      `json:"id"`
	WorkflowID        uuid.UUID      `json:"workflowId"`
	Week              int            `json:"week"`
	ForecastCum       int            `json:"forecastCumulative"`
	ActualCum         int            `json:"actualCumulative"`
	VarianceFraction  float64        `json:"varianceFraction"`
	SignedDeviation   float64        `json:"signedDeviation"`
	Threshold         float64        `json:"threshold"`
	ThresholdExceeded bool           `json:"thresholdExceeded"`
	Action            VarianceAction `json:"action"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// MarkdownStatus tracks a markdown recommendation through review.
type MarkdownStatus string

const (
	MarkdownPending  MarkdownStatus = "pending"
	MarkdownApproved MarkdownStatus = "approved"
	MarkdownApplied  MarkdownStatus = "applied"
)

// MarkdownDecision is a bounded, granularity-rounded price markdown
// recommendation for a sell-through shortfall.
type MarkdownDecision struct {
	ID                 uuid.UUID      `json:"id"`
	WorkflowID         uuid.UUID      `json:"workflowId"`
	Week               int            `json:"week"`
	CurrentSellThrough float64        `json:"currentSellThrough"`
	TargetSellThrough  float64        `json:"targetSellThrough"`
	Gap                float64        `json:"gap"`
	Elasticity         float64        `json:"elasticity"`
	Markdown           float64        `json:"recommendedMarkdown"`
	ExpectedDemandLift float64        `json:"expectedDemandLift"`
	Reasoning          string         `json:"reasoning"`
	Status             MarkdownStatus `json:"status"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// Workflow lifecycle.
type WorkflowType string

const (
	WorkflowForecast   WorkflowType = "forecast"
	WorkflowReforecast WorkflowType = "reforecast"
)

type WorkflowStatus string

const (
	StatusPending          WorkflowStatus = "pending"
	StatusRunning          WorkflowStatus = "running"
	StatusAwaitingApproval WorkflowStatus = "awaiting_approval"
	StatusAwaitingData     WorkflowStatus = "awaiting_data"
	StatusCompleted        WorkflowStatus = "completed"
	StatusFailed           WorkflowStatus = "failed"
	StatusCancelled        WorkflowStatus = "cancelled"
)

// WorkflowStep names the engine step a workflow is currently on.
type WorkflowStep string

const (
	StepForecast   WorkflowStep = "forecast"
	StepAllocation WorkflowStep = "allocation"
	StepVariance   WorkflowStep = "variance"
	StepMarkdown   WorkflowStep = "markdown"
	StepDone       WorkflowStep = "done"
)

// WorkflowState is the single source of truth for one workflow instance.
// Owned exclusively by the orchestrator; persisted on every transition so a
// suspended workflow survives process restarts.
type WorkflowState struct {
	ID               uuid.UUID        `json:"id"`
	Type             WorkflowType     `json:"type"`
	Params           SeasonParameters `json:"params"`
	CurrentStep      WorkflowStep     `json:"currentStep"`
	Status           WorkflowStatus   `json:"status"`
	ReforecastCount  int              `json:"reforecastCount"`
	ForecastID       *uuid.UUID       `json:"forecastId,omitempty"`
	AllocationID     *uuid.UUID       `json:"allocationId,omitempty"`
	MarkdownID       *uuid.UUID       `json:"markdownId,omitempty"`
	VariancePersists bool             `json:"variancePersists,omitempty"`
	LastError        string           `json:"lastError,omitempty"`
	Issues           json.RawMessage  `json:"issues,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

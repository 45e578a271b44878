// Package store is the persistence sink for the planning engine. Records
// are append-only facts keyed by workflow id: a re-forecast inserts a new
// forecast revision and supersedes the old one logically, never by
// overwrite. Workflow state rows are the one exception, updated in place on
// every transition so suspended workflows survive restarts.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

type Store interface {
	CreateWorkflow(ctx context.Context, w models.WorkflowState) error
	UpdateWorkflow(ctx context.Context, w models.WorkflowState) error
	GetWorkflow(ctx context.Context, id uuid.UUID) (models.WorkflowState, error)

	InsertForecast(ctx context.Context, f models.ForecastResult) error
	LatestForecast(ctx context.Context, workflowID uuid.UUID) (models.ForecastResult, error)

	InsertAllocationPlan(ctx context.Context, p models.AllocationPlan) error
	GetAllocationPlan(ctx context.Context, workflowID uuid.UUID) (models.AllocationPlan, error)

	InsertVarianceReport(ctx context.Context, r models.VarianceReport) error

	InsertMarkdownDecision(ctx context.Context, d models.MarkdownDecision) error
	LatestMarkdown(ctx context.Context, workflowID uuid.UUID) (models.MarkdownDecision, error)
	UpdateMarkdownStatus(ctx context.Context, id uuid.UUID, status models.MarkdownStatus) error

	Ping(ctx context.Context) error
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/models"
)

// PGStore persists engine records in Postgres via database/sql (lib/pq).
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}

func (s *PGStore) CreateWorkflow(ctx context.Context, w models.WorkflowState) error {
	query := `
		INSERT INTO workflows (id, type, params, current_step, status, reforecast_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	if _, err := s.db.ExecContext(ctx, query,
		w.ID, w.Type, mustJSON(w.Params), w.CurrentStep, w.Status, w.ReforecastCount, w.CreatedAt, w.UpdatedAt); err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

func (s *PGStore) UpdateWorkflow(ctx context.Context, w models.WorkflowState) error {
	query := `
		UPDATE workflows
		SET current_step=$2,
		    status=$3,
		    reforecast_count=$4,
		    forecast_id=$5,
		    allocation_id=$6,
		    markdown_id=$7,
		    variance_persists=$8,
		    last_error=$9,
		    issues=$10,
		    updated_at=NOW()
		WHERE id=$1
	`
	res, err := s.db.ExecContext(ctx, query,
		w.ID, w.CurrentStep, w.Status, w.ReforecastCount,
		w.ForecastID, w.AllocationID, w.MarkdownID,
		w.VariancePersists, w.LastError, []byte(w.Issues))
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) GetWorkflow(ctx context.Context, id uuid.UUID) (models.WorkflowState, error) {
	const query = `
		SELECT type, params, current_step, status, reforecast_count, forecast_id, allocation_id,
		       markdown_id, variance_persists, last_error, issues, created_at, updated_at
		FROM workflows
		WHERE id=$1
	`
	var (
		w            models.WorkflowState
		params       []byte
		forecastID   sql.NullString
		allocationID sql.NullString
		markdownID   sql.NullString
		lastError    sql.NullString
		issues       []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&w.Type, &params, &w.CurrentStep, &w.Status, &w.ReforecastCount,
		&forecastID, &allocationID, &markdownID,
		&w.VariancePersists, &lastError, &issues, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WorkflowState{}, ErrNotFound
		}
		return models.WorkflowState{}, fmt.Errorf("get workflow: %w", err)
	}
	w.ID = id
	if err := json.Unmarshal(params, &w.Params); err != nil {
		return models.WorkflowState{}, fmt.Errorf("decode workflow params: %w", err)
	}
	w.ForecastID = parseNullUUID(forecastID)
	w.AllocationID = parseNullUUID(allocationID)
	w.MarkdownID = parseNullUUID(markdownID)
	if lastError.Valid {
		w.LastError = lastError.String
	}
	if len(issues) > 0 {
		w.Issues = append(json.RawMessage(nil), issues...)
	}
	return w, nil
}

func (s *PGStore) InsertForecast(ctx context.Context, f models.ForecastResult) error {
	query := `
		INSERT INTO forecasts (id, workflow_id, revision, total_demand, weekly_demand, confidence,
		                       safety_stock, models, model_scores, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	if _, err := s.db.ExecContext(ctx, query,
		f.ID, f.WorkflowID, f.Revision, f.TotalDemand, mustJSON(f.WeeklyDemand),
		f.Confidence, f.SafetyStockFraction, mustJSON(f.Models), mustJSON(f.ModelScores), f.CreatedAt); err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

func (s *PGStore) LatestForecast(ctx context.Context, workflowID uuid.UUID) (models.ForecastResult, error) {
	const query = `
		SELECT id, revision, total_demand, weekly_demand, confidence, safety_stock, models, model_scores, created_at
		FROM forecasts
		WHERE workflow_id=$1
		ORDER BY revision DESC
		LIMIT 1
	`
	var (
		f      models.ForecastResult
		weekly []byte
		names  []byte
		scores []byte
	)
	err := s.db.QueryRowContext(ctx, query, workflowID).Scan(
		&f.ID, &f.Revision, &f.TotalDemand, &weekly, &f.Confidence, &f.SafetyStockFraction, &names, &scores, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ForecastResult{}, ErrNotFound
		}
		return models.ForecastResult{}, fmt.Errorf("latest forecast: %w", err)
	}
	f.WorkflowID = workflowID
	if err := json.Unmarshal(weekly, &f.WeeklyDemand); err != nil {
		return models.ForecastResult{}, fmt.Errorf("decode weekly demand: %w", err)
	}
	if err := json.Unmarshal(names, &f.Models); err != nil {
		return models.ForecastResult{}, fmt.Errorf("decode models: %w", err)
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &f.ModelScores); err != nil {
			return models.ForecastResult{}, fmt.Errorf("decode model scores: %w", err)
		}
	}
	return f, nil
}

func (s *PGStore) InsertAllocationPlan(ctx context.Context, p models.AllocationPlan) error {
	query := `
		INSERT INTO allocation_plans (id, workflow_id, forecast_id, manufacturing_qty, safety_stock,
		                              immediate_units, holdback_units, stores, cluster_shares, assignments, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	if _, err := s.db.ExecContext(ctx, query,
		p.ID, p.WorkflowID, p.ForecastID, p.ManufacturingQty, p.SafetyStockFraction,
		p.ImmediateUnits, p.HoldbackUnits, mustJSON(p.Stores), mustJSON(p.ClusterShares),
		mustJSON(p.Assignments), p.CreatedAt); err != nil {
		return fmt.Errorf("insert allocation plan: %w", err)
	}
	return nil
}

func (s *PGStore) GetAllocationPlan(ctx context.Context, workflowID uuid.UUID) (models.AllocationPlan, error) {
	const query = `
		SELECT id, forecast_id, manufacturing_qty, safety_stock, immediate_units, holdback_units,
		       stores, cluster_shares, assignments, created_at
		FROM allocation_plans
		WHERE workflow_id=$1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		p           models.AllocationPlan
		stores      []byte
		shares      []byte
		assignments []byte
	)
	err := s.db.QueryRowContext(ctx, query, workflowID).Scan(
		&p.ID, &p.ForecastID, &p.ManufacturingQty, &p.SafetyStockFraction,
		&p.ImmediateUnits, &p.HoldbackUnits, &stores, &shares, &assignments, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AllocationPlan{}, ErrNotFound
		}
		return models.AllocationPlan{}, fmt.Errorf("get allocation plan: %w", err)
	}
	p.WorkflowID = workflowID
	if err := json.Unmarshal(stores, &p.Stores); err != nil {
		return models.AllocationPlan{}, fmt.Errorf("decode stores: %w", err)
	}
	if err := json.Unmarshal(shares, &p.ClusterShares); err != nil {
		return models.AllocationPlan{}, fmt.Errorf("decode cluster shares: %w", err)
	}
	if len(assignments) > 0 {
		if err := json.Unmarshal(assignments, &p.Assignments); err != nil {
			return models.AllocationPlan{}, fmt.Errorf("decode assignments: %w", err)
		}
	}
	return p, nil
}

func (s *PGStore) InsertVarianceReport(ctx context.Context, r models.VarianceReport) error {
	query := `
		INSERT INTO variance_reports (id, workflow_id, week, forecast_cum, actual_cum, variance_fraction,
		                              signed_deviation, threshold, threshold_exceeded, action, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	if _, err := s.db.ExecContext(ctx, query,
		r.ID, r.WorkflowID, r.Week, r.ForecastCum, r.ActualCum, r.VarianceFraction,
		r.SignedDeviation, r.Threshold, r.ThresholdExceeded, r.Action, r.CreatedAt); err != nil {
		return fmt.Errorf("insert variance report: %w", err)
	}
	return nil
}

func (s *PGStore) InsertMarkdownDecision(ctx context.Context, d models.MarkdownDecision) error {
	query := `
		INSERT INTO markdown_decisions (id, workflow_id, week, current_sell_through, target_sell_through,
		                                gap, elasticity, markdown, expected_demand_lift, reasoning, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	if _, err := s.db.ExecContext(ctx, query,
		d.ID, d.WorkflowID, d.Week, d.CurrentSellThrough, d.TargetSellThrough,
		d.Gap, d.Elasticity, d.Markdown, d.ExpectedDemandLift, d.Reasoning, d.Status, d.CreatedAt); err != nil {
		return fmt.Errorf("insert markdown decision: %w", err)
	}
	return nil
}

func (s *PGStore) LatestMarkdown(ctx context.Context, workflowID uuid.UUID) (models.MarkdownDecision, error) {
	const query = `
		SELECT id, week, current_sell_through, target_sell_through, gap, elasticity,
		       markdown, expected_demand_lift, reasoning, status, created_at
		FROM markdown_decisions
		WHERE workflow_id=$1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var d models.MarkdownDecision
	err := s.db.QueryRowContext(ctx, query, workflowID).Scan(
		&d.ID, &d.Week, &d.CurrentSellThrough, &d.TargetSellThrough, &d.Gap, &d.Elasticity,
		&d.Markdown, &d.ExpectedDemandLift, &d.Reasoning, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MarkdownDecision{}, ErrNotFound
		}
		return models.MarkdownDecision{}, fmt.Errorf("latest markdown: %w", err)
	}
	d.WorkflowID = workflowID
	return d, nil
}

func (s *PGStore) UpdateMarkdownStatus(ctx context.Context, id uuid.UUID, status models.MarkdownStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE markdown_decisions SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update markdown status: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

func parseNullUUID(v sql.NullString) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil
	}
	return &id
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimline/seasonplan/internal/models"
)

func newMock(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func TestPGInsertForecast(t *testing.T) {
	st, mock := newMock(t)
	f := models.ForecastResult{
		ID:                  uuid.New(),
		WorkflowID:          uuid.New(),
		Revision:            1,
		TotalDemand:         300,
		WeeklyDemand:        []int{100, 100, 100},
		Confidence:          0.8,
		SafetyStockFraction: 0.2,
		Models:              []string{"seasonal_decomposition"},
		CreatedAt:           time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO forecasts").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, st.InsertForecast(context.Background(), f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGLatestForecast(t *testing.T) {
	st, mock := newMock(t)
	workflowID := uuid.New()
	forecastID := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "revision", "total_demand", "weekly_demand", "confidence",
		"safety_stock", "models", "model_scores", "created_at",
	}).AddRow(forecastID.String(), 2, 300, `[100,100,100]`, 0.8, 0.2,
		`["seasonal_decomposition","autoregressive"]`, `{"autoregressive":0.12}`, time.Now().UTC())

	mock.ExpectQuery("SELECT id, revision, total_demand").WithArgs(workflowID).WillReturnRows(rows)

	f, err := st.LatestForecast(context.Background(), workflowID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Revision)
	assert.Equal(t, []int{100, 100, 100}, f.WeeklyDemand)
	assert.Equal(t, workflowID, f.WorkflowID)
	assert.InDelta(t, 0.12, f.ModelScores["autoregressive"], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGLatestForecastNotFound(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectQuery("SELECT id, revision, total_demand").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := st.LatestForecast(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGUpdateWorkflowNotFound(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectExec("UPDATE workflows").WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateWorkflow(context.Background(), models.WorkflowState{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGGetWorkflow(t *testing.T) {
	st, mock := newMock(t)
	id := uuid.New()
	rows := sqlmock.NewRows([]string{
		"type", "params", "current_step", "status", "reforecast_count", "forecast_id",
		"allocation_id", "markdown_id", "variance_persists", "last_error", "issues",
		"created_at", "updated_at",
	}).AddRow("forecast", `{"category":"outerwear","horizonWeeks":12,"replenishment":"weekly"}`,
		"allocation", "awaiting_approval", 0, nil, nil, nil, false, nil, nil,
		time.Now().UTC(), time.Now().UTC())

	mock.ExpectQuery("SELECT type, params, current_step").WithArgs(id).WillReturnRows(rows)

	w, err := st.GetWorkflow(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, models.StatusAwaitingApproval, w.Status)
	assert.Equal(t, "outerwear", w.Params.Category)
	assert.Nil(t, w.ForecastID)
}

func TestPGInsertMarkdownAndStatus(t *testing.T) {
	st, mock := newMock(t)
	d := models.MarkdownDecision{
		ID: uuid.New(), WorkflowID: uuid.New(), Week: 8,
		CurrentSellThrough: 0.45, TargetSellThrough: 0.60,
		Gap: 0.15, Elasticity: 2.0, Markdown: 0.30,
		Status: models.MarkdownPending, CreatedAt: time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO markdown_decisions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE markdown_decisions SET status").
		WithArgs(d.ID, models.MarkdownApproved).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, st.InsertMarkdownDecision(context.Background(), d))
	require.NoError(t, st.UpdateMarkdownStatus(context.Background(), d.ID, models.MarkdownApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimline/seasonplan/internal/history"
	"github.com/trimline/seasonplan/internal/models"
	"github.com/trimline/seasonplan/internal/progress"
	"github.com/trimline/seasonplan/internal/store"
	"github.com/trimline/seasonplan/internal/workflow"
)

func newTestRouter(t *testing.T) (*store.MemoryStore, http.Handler) {
	t.Helper()
	st := store.NewMemoryStore()
	series := make([]float64, 60)
	for i := range series {
		series[i] = 500 + 2*float64(i)
	}
	source := &history.MemorySource{
		Series: map[string][]float64{"outerwear": series},
		Shares: map[string]map[string]float64{},
	}
	catalog := make([]models.StoreProfile, 0, 6)
	tiers := []models.IncomeTier{models.IncomeHigh, models.IncomeMedium, models.IncomeLow}
	for g, tier := range tiers {
		for i := 0; i < 2; i++ {
			catalog = append(catalog, models.StoreProfile{
				ID:             fmt.Sprintf("s%d%d", g, i),
				SizeSqFt:       float64(12000 - g*4000 + i*200),
				IncomeTier:     tier,
				Region:         "test",
				Format:         "mall",
				AvgWeeklySales: float64(800 - g*250 + i*20),
			})
		}
	}
	orch := workflow.New(st, progress.NewMemoryEmitter(), source, catalog, nil, workflow.Config{})
	return st, New(st, orch).Router()
}

func doRequest(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const startBody = `{
	"category": "outerwear",
	"horizonWeeks": 12,
	"seasonStart": "2026-03-01T00:00:00Z",
	"seasonEnd": "2026-05-24T00:00:00Z",
	"replenishment": "weekly",
	"dcHoldbackFraction": 0.45,
	"targetSellThrough": 0.6,
	"elasticityCoefficient": 2.0
}`

func TestStartWorkflow(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(startBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.StatusAwaitingApproval, state.Status)
	assert.Equal(t, models.StepAllocation, state.CurrentStep)
	assert.NotNil(t, state.AllocationID)
}

func TestStartRejectsBadParams(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(`{"category":"outerwear","horizonWeeks":0,"replenishment":"weekly"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestGetWorkflowNotFound(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "GET", "/workflows/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, "GET", "/workflows/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecisionAcceptCompletes(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(startBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/decision", []byte(`{"action":"accept"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.StatusCompleted, state.Status)
}

func TestDecisionOnCompletedWorkflowConflicts(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(startBody))
	require.Equal(t, http.StatusCreated, rec.Code)
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	path := "/workflows/" + state.ID.String() + "/decision"
	rec = doRequest(router, "POST", path, []byte(`{"action":"accept"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, "POST", path, []byte(`{"action":"accept"}`))
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestActualsRequireAwaitingData(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(startBody))
	require.Equal(t, http.StatusCreated, rec.Code)
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/actuals", []byte(`{"weeklyActuals":[100,120,90,110]}`))
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCheckpointRoundTripOverHTTP(t *testing.T) {
	st, router := newTestRouter(t)

	body := []byte(`{
		"category": "outerwear",
		"horizonWeeks": 12,
		"seasonStart": "2026-03-01T00:00:00Z",
		"seasonEnd": "2026-05-24T00:00:00Z",
		"replenishment": "weekly",
		"dcHoldbackFraction": 0.45,
		"markdownCheckpointWeek": 4,
		"markdownThreshold": 0.2,
		"targetSellThrough": 0.6,
		"elasticityCoefficient": 2.0
	}`)
	rec := doRequest(router, "POST", "/workflows/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/decision", []byte(`{"action":"accept"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, models.StatusAwaitingData, state.Status)

	// Two weeks short of the checkpoint.
	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/actuals", []byte(`{"weeklyActuals":[100,120]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	f, err := st.LatestForecast(context.Background(), state.ID)
	require.NoError(t, err)
	actuals, _ := json.Marshal(map[string][]int{"weeklyActuals": f.WeeklyDemand[:4]})
	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/actuals", actuals)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.StepMarkdown, state.CurrentStep)
	assert.Equal(t, models.StatusAwaitingApproval, state.Status)
}

func TestCancelWorkflow(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "POST", "/workflows/", []byte(startBody))
	require.Equal(t, http.StatusCreated, rec.Code)
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	rec = doRequest(router, "POST", "/workflows/"+state.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.StatusCancelled, state.Status)
}

func TestHealth(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doRequest(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

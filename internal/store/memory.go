package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/models"
)

// MemoryStore provides an in-memory implementation useful for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[uuid.UUID]models.WorkflowState
	forecasts map[uuid.UUID][]models.ForecastResult
	plans     map[uuid.UUID][]models.AllocationPlan
	variances map[uuid.UUID][]models.VarianceReport
	markdowns map[uuid.UUID]models.MarkdownDecision
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: map[uuid.UUID]models.WorkflowState{},
		forecasts: map[uuid.UUID][]models.ForecastResult{},
		plans:     map[uuid.UUID][]models.AllocationPlan{},
		variances: map[uuid.UUID][]models.VarianceReport{},
		markdowns: map[uuid.UUID]models.MarkdownDecision{},
	}
}

func (m *MemoryStore) CreateWorkflow(ctx context.Context, w models.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[w.ID] = w
	return nil
}

func (m *MemoryStore) UpdateWorkflow(ctx context.Context, w models.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[w.ID]; !ok {
		return ErrNotFound
	}
	w.UpdatedAt = time.Now().UTC()
	m.workflows[w.ID] = w
	return nil
}

func (m *MemoryStore) GetWorkflow(ctx context.Context, id uuid.UUID) (models.WorkflowState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workflows[id]
	if !ok {
		return models.WorkflowState{}, ErrNotFound
	}
	return w, nil
}

func (m *MemoryStore) InsertForecast(ctx context.Context, f models.ForecastResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[f.WorkflowID] = append(m.forecasts[f.WorkflowID], f)
	return nil
}

func (m *MemoryStore) LatestForecast(ctx context.Context, workflowID uuid.UUID) (models.ForecastResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.forecasts[workflowID]
	if len(list) == 0 {
		return models.ForecastResult{}, ErrNotFound
	}
	sorted := append([]models.ForecastResult(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Revision > sorted[j].Revision })
	return sorted[0], nil
}

func (m *MemoryStore) InsertAllocationPlan(ctx context.Context, p models.AllocationPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.WorkflowID] = append(m.plans[p.WorkflowID], p)
	return nil
}

func (m *MemoryStore) GetAllocationPlan(ctx context.Context, workflowID uuid.UUID) (models.AllocationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.plans[workflowID]
	if len(list) == 0 {
		return models.AllocationPlan{}, ErrNotFound
	}
	return list[len(list)-1], nil
}

func (m *MemoryStore) InsertVarianceReport(ctx context.Context, r models.VarianceReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variances[r.WorkflowID] = append(m.variances[r.WorkflowID], r)
	return nil
}

// VarianceReports returns every report for a workflow, oldest first. Test
// helper; not part of the Store interface.
func (m *MemoryStore) VarianceReports(workflowID uuid.UUID) []models.VarianceReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.VarianceReport(nil), m.variances[workflowID]...)
}

// ForecastRevisions returns every stored forecast for a workflow. Test helper.
func (m *MemoryStore) ForecastRevisions(workflowID uuid.UUID) []models.ForecastResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ForecastResult(nil), m.forecasts[workflowID]...)
}

func (m *MemoryStore) InsertMarkdownDecision(ctx context.Context, d models.MarkdownDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markdowns[d.ID] = d
	return nil
}

func (m *MemoryStore) LatestMarkdown(ctx context.Context, workflowID uuid.UUID) (models.MarkdownDecision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest models.MarkdownDecision
	found := false
	for _, d := range m.markdowns {
		if d.WorkflowID != workflowID {
			continue
		}
		if !found || d.CreatedAt.After(latest.CreatedAt) {
			latest = d
			found = true
		}
	}
	if !found {
		return models.MarkdownDecision{}, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) UpdateMarkdownStatus(ctx context.Context, id uuid.UUID, status models.MarkdownStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.markdowns[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	m.markdowns[id] = d
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

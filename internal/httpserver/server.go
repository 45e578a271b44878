// Package httpserver exposes the planning workflow over HTTP. Handlers are
// thin: decode, delegate to the orchestrator, map errors to status codes.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/trimline/seasonplan/internal/forecast"
	"github.com/trimline/seasonplan/internal/guardrail"
	"github.com/trimline/seasonplan/internal/models"
	"github.com/trimline/seasonplan/internal/store"
	"github.com/trimline/seasonplan/internal/variance"
	"github.com/trimline/seasonplan/internal/workflow"
)

type Server struct {
	db   store.Store
	orch *workflow.Orchestrator
}

func New(db store.Store, orch *workflow.Orchestrator) *Server {
	return &Server{db: db, orch: orch}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/workflows", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/decision", s.handleDecision)
		r.Post("/{id}/actuals", s.handleActuals)
		r.Post("/{id}/cancel", s.handleCancel)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.db.Ping(ctx); err != nil {
		status["ok"] = false
		status["db"] = "down"
		status["error"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["db"] = "up"
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var params models.SeasonParameters
	if err := decodeJSON(w, r, &params, 256*1024); err != nil {
		respondError(w, http.StatusBadRequest, "SEASONPLAN_BAD_REQUEST", err.Error())
		return
	}
	if err := params.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "SEASONPLAN_BAD_REQUEST", err.Error())
		return
	}
	state, err := s.orch.Start(r.Context(), params)
	if err != nil {
		s.respondWorkflowError(w, state, err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	state, err := s.orch.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "SEASONPLAN_NOT_FOUND", "workflow not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "SEASONPLAN_INTERNAL", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var dec workflow.Decision
	if err := decodeJSON(w, r, &dec, 64*1024); err != nil {
		respondError(w, http.StatusBadRequest, "SEASONPLAN_BAD_REQUEST", err.Error())
		return
	}
	state, err := s.orch.Resolve(r.Context(), id, dec)
	if err != nil {
		s.respondWorkflowError(w, state, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

type actualsRequest struct {
	WeeklyActuals []int `json:"weeklyActuals"`
}

func (s *Server) handleActuals(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req actualsRequest
	if err := decodeJSON(w, r, &req, 256*1024); err != nil {
		respondError(w, http.StatusBadRequest, "SEASONPLAN_BAD_REQUEST", err.Error())
		return
	}
	state, err := s.orch.SubmitActuals(r.Context(), id, req.WeeklyActuals)
	if err != nil {
		s.respondWorkflowError(w, state, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	state, err := s.orch.Cancel(r.Context(), id)
	if err != nil {
		s.respondWorkflowError(w, state, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// respondWorkflowError maps orchestrator outcomes onto status codes. Failed
// workflows ship their terminal state in the body so the caller sees the
// recorded error and guardrail issues without a second fetch.
func (s *Server) respondWorkflowError(w http.ResponseWriter, state models.WorkflowState, err error) {
	var tw *guardrail.Tripwire
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "SEASONPLAN_NOT_FOUND", "workflow not found")
	case errors.Is(err, workflow.ErrInvalidState):
		respondError(w, http.StatusConflict, "SEASONPLAN_INVALID_STATE", err.Error())
	case errors.Is(err, variance.ErrMissingData):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    err.Error(),
			"code":     "SEASONPLAN_MISSING_DATA",
			"workflow": state,
		})
	case errors.As(err, &tw), errors.Is(err, forecast.ErrInsufficientData):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    err.Error(),
			"code":     "SEASONPLAN_REJECTED",
			"workflow": state,
		})
	default:
		respondError(w, http.StatusInternalServerError, "SEASONPLAN_INTERNAL", err.Error())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "SEASONPLAN_BAD_REQUEST", "invalid workflow id")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) error {
	if limit <= 0 {
		limit = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
		"code":  code,
	})
}

// Package api exposes the monthly production planner over HTTP: submit a
// plan request, poll for its result, or run one synchronously.
package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moldplan/moldplan/internal/app/runner"
	"github.com/moldplan/moldplan/internal/core"
	"github.com/moldplan/moldplan/internal/domain"
	"github.com/moldplan/moldplan/internal/infra/sqlite"
)

// Server is the moldplan HTTP API server.
type Server struct {
	runner         *runner.Runner
	db             *sqlite.DB
	metricsEnabled bool
}

// NewServer creates a new API server backed by runner and db.
func NewServer(runner *runner.Runner, db *sqlite.DB) *Server {
	return &Server{runner: runner, db: db}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans/{id}", s.handleGetPlan)
		r.Get("/plans/{id}/tasks", s.handleGetPlanTasks)
		r.Post("/schedule", s.handleScheduleSync)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleCreatePlan accepts a PlanRequest and starts optimizing it in the
// background, returning the new plan's id immediately.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, err := s.runner.Submit(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// handleGetPlan reports a plan run's current status and, once completed,
// its score.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.db.GetPlanRun(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "plan not found: "+id)
		return
	}

	resp := map[string]interface{}{
		"id":     run.ID,
		"status": run.Status,
	}
	if run.Status == sqlite.PlanStatusCompleted {
		resp["score"] = run.Score
	}
	if run.Error != "" {
		resp["error"] = run.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetPlanTasks returns a completed plan's schedule and unmet demand.
func (s *Server) handleGetPlanTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.db.GetPlanRun(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "plan not found: "+id)
		return
	}
	if run.Status != sqlite.PlanStatusCompleted {
		writeError(w, http.StatusConflict, "plan "+id+" is "+run.Status+", not completed")
		return
	}

	tasks, err := s.db.ListPlanTasks(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unmet, err := s.db.ListPlanUnmet(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, domain.PlanResult{
		Assignments: tasks,
		Unmet:       unmet,
		Score:       run.Score,
	})
}

// handleScheduleSync runs one Optimize call inline and returns the result —
// convenient for small instances and for scripted/CI use, at the cost of
// blocking the request for as long as the GA takes.
func (s *Server) handleScheduleSync(w http.ResponseWriter, r *http.Request) {
	var req domain.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	result, err := core.Optimize(req, rng)
	if err != nil {
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

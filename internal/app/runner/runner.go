// Package runner manages asynchronous plan-run execution: it accepts a
// PlanRequest, persists it, runs internal/core.Optimize in the background
// under a concurrency limit, and records the result (or failure) to
// SQLite — the application-layer orchestration between the HTTP/CLI
// boundary and the pure internal/core algorithms.
package runner

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moldplan/moldplan/internal/core"
	"github.com/moldplan/moldplan/internal/domain"
	"github.com/moldplan/moldplan/internal/infra/observability"
	"github.com/moldplan/moldplan/internal/infra/sqlite"
)

// Config controls runner concurrency.
type Config struct {
	MaxConcurrent int // default 4
}

// DefaultConfig returns safe runner defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrent: 4}
}

// Runner submits plan requests for asynchronous optimization.
type Runner struct {
	mu     sync.RWMutex
	config Config
	db     *sqlite.DB
	sem    chan struct{}
	active int
}

// New creates a Runner backed by db.
func New(cfg Config, db *sqlite.DB) *Runner {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Runner{
		config: cfg,
		db:     db,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Submit persists req as a new plan run and starts optimizing it in the
// background. It returns the new plan's id immediately; callers poll
// GetPlanRun for completion.
func (r *Runner) Submit(req domain.PlanRequest) (string, error) {
	id := uuid.NewString()
	if err := r.db.InsertPlanRun(id, req); err != nil {
		return "", fmt.Errorf("persist plan run: %w", err)
	}

	select {
	case r.sem <- struct{}{}:
	default:
		// Still queued — the DB row stays PENDING until a slot frees up.
		go r.waitAndRun(id, req)
		return id, nil
	}

	go r.run(id, req)
	return id, nil
}

func (r *Runner) waitAndRun(id string, req domain.PlanRequest) {
	r.sem <- struct{}{}
	r.run(id, req)
}

func (r *Runner) run(id string, req domain.PlanRequest) {
	defer func() { <-r.sem }()

	r.mu.Lock()
	r.active++
	r.mu.Unlock()
	observability.PlanRunsInFlight.Inc()

	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
		observability.PlanRunsInFlight.Dec()
	}()

	if err := r.db.MarkPlanRunning(id); err != nil {
		log.Printf("[runner] plan %s: mark running: %v", id, err)
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	result, err := core.Optimize(req, rng)
	observability.PlanRunDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		observability.PlanRunsTotal.WithLabelValues("failed").Inc()
		log.Printf("[runner] plan %s failed: %v", id, err)
		if dbErr := r.db.MarkPlanFailed(id, err); dbErr != nil {
			log.Printf("[runner] plan %s: record failure: %v", id, dbErr)
		}
		return
	}

	if err := r.db.CompletePlanRun(id, result); err != nil {
		observability.PlanRunsTotal.WithLabelValues("failed").Inc()
		log.Printf("[runner] plan %s: record completion: %v", id, err)
		return
	}

	observability.PlanRunsTotal.WithLabelValues("completed").Inc()
	observability.GABestScore.Set(result.Score)
	unmetTotal := 0
	for _, qty := range result.Unmet {
		unmetTotal += qty
	}
	observability.UnmetDemandUnits.Set(float64(unmetTotal))

	changeoverByKind := map[string]float64{"mold": 0, "color": 0}
	waitHours := 0.0
	for _, tk := range result.Assignments {
		switch tk.TaskType {
		case domain.TaskChangeMold:
			changeoverByKind["mold"] += tk.UsedHours
		case domain.TaskChangeColor:
			changeoverByKind["color"] += tk.UsedHours
		case domain.TaskWait:
			waitHours += tk.UsedHours
		}
	}
	for kind, hours := range changeoverByKind {
		observability.ChangeoverHours.WithLabelValues(kind).Set(hours)
	}
	observability.WaitHours.Set(waitHours)

	log.Printf("[runner] plan %s completed: score=%.2f unmet=%d", id, result.Score, unmetTotal)
}

// Stats summarizes current runner activity.
type Stats struct {
	Active    int `json:"active"`
	MaxSlots  int `json:"max_slots"`
	FreeSlots int `json:"free_slots"`
}

// Stats returns current runner statistics.
func (r *Runner) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Active:    r.active,
		MaxSlots:  r.config.MaxConcurrent,
		FreeSlots: r.config.MaxConcurrent - r.active,
	}
}

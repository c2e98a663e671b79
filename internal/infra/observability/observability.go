// Package observability exposes the Prometheus metrics emitted by the
// runner and GA driver (and served by the API's /metrics endpoint) — one
// process-wide registry via promauto, in the "namespace/subsystem/name"
// convention.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Plan Run Metrics ───────────────────────────────────────────────────────

// PlanRunsTotal tracks completed plan runs by terminal status.
var PlanRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "moldplan",
	Subsystem: "plan",
	Name:      "runs_total",
	Help:      "Total plan runs by terminal status (completed, failed).",
}, []string{"status"})

// PlanRunDuration tracks wall-clock time spent in one Optimize call.
var PlanRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "moldplan",
	Subsystem: "plan",
	Name:      "run_duration_seconds",
	Help:      "Wall-clock duration of the Optimize call in a plan run (queue time excluded).",
	Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
})

// PlanRunsInFlight tracks currently executing plan runs.
var PlanRunsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "moldplan",
	Subsystem: "plan",
	Name:      "runs_in_flight",
	Help:      "Number of plan runs currently executing.",
})

// ─── GA Metrics ─────────────────────────────────────────────────────────────

// GAGenerationsRun tracks total GA generations evaluated across all runs.
var GAGenerationsRun = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "moldplan",
	Subsystem: "ga",
	Name:      "generations_total",
	Help:      "Total GA generations evaluated across all plan runs.",
})

// GABestScore tracks the best fitness score found by the most recent run.
var GABestScore = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "moldplan",
	Subsystem: "ga",
	Name:      "best_score",
	Help:      "Best fitness score found by the most recently completed plan run.",
})

// ─── Schedule Outcome Metrics ───────────────────────────────────────────────

// UnmetDemandUnits tracks unmet demand units in the most recent plan run.
var UnmetDemandUnits = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "moldplan",
	Subsystem: "schedule",
	Name:      "unmet_demand_units",
	Help:      "Total unmet demand units (summed across components) in the most recently completed plan run.",
})

// ChangeoverHours tracks total mold/color changeover hours in the most
// recent plan run.
var ChangeoverHours = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "moldplan",
	Subsystem: "schedule",
	Name:      "changeover_hours",
	Help:      "Total changeover hours in the most recently completed plan run, by kind.",
}, []string{"kind"})

// WaitHours tracks total idle-wait hours in the most recent plan run.
var WaitHours = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "moldplan",
	Subsystem: "schedule",
	Name:      "wait_hours",
	Help:      "Total WAIT task hours in the most recently completed plan run.",
})

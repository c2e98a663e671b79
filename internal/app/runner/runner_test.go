package runner

import (
	"testing"
	"time"

	"github.com/moldplan/moldplan/internal/domain"
	"github.com/moldplan/moldplan/internal/infra/sqlite"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func waitForTerminal(t *testing.T, db *sqlite.DB, id string) sqlite.PlanRun {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, err := db.GetPlanRun(id)
		if err != nil {
			t.Fatalf("GetPlanRun() error = %v", err)
		}
		if run.Status == sqlite.PlanStatusCompleted || run.Status == sqlite.PlanStatusFailed {
			return run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("plan %s did not reach a terminal state in time", id)
	return sqlite.PlanRun{}
}

func TestRunner_SubmitCompletesSatisfiableRequest(t *testing.T) {
	db := openTestDB(t)
	r := New(DefaultConfig(), db)

	req := domain.PlanRequest{
		MonthDays: 5,
		Machines: []domain.Machine{
			{ID: "M1", Name: "M1", Group: domain.GroupSmall, Tonnage: 100},
		},
		Molds: []domain.Mold{
			{ID: "m1", Name: "m1", Group: domain.GroupSmall, Tonnage: 100},
		},
		Components: []domain.Component{
			{ID: "c1", Name: "c1", Quantity: 20, CycleTimeSec: 1800, MoldID: "m1", Color: "red", DueDay: 5},
		},
		PopSize:      6,
		NGenerations: 4,
		MutationRate: domain.Ptr(0.2),
	}

	id, err := r.Submit(req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	run := waitForTerminal(t, db, id)
	if run.Status != sqlite.PlanStatusCompleted {
		t.Fatalf("run.Status = %q, want %q (error=%q)", run.Status, sqlite.PlanStatusCompleted, run.Error)
	}

	tasks, err := db.ListPlanTasks(id)
	if err != nil {
		t.Fatalf("ListPlanTasks() error = %v", err)
	}
	if len(tasks) == 0 {
		t.Error("expected at least one persisted task")
	}
}

func TestRunner_SubmitRecordsFailureOnInvalidRequest(t *testing.T) {
	db := openTestDB(t)
	r := New(DefaultConfig(), db)

	id, err := r.Submit(domain.PlanRequest{MonthDays: 0})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	run := waitForTerminal(t, db, id)
	if run.Status != sqlite.PlanStatusFailed {
		t.Fatalf("run.Status = %q, want %q", run.Status, sqlite.PlanStatusFailed)
	}
}

func TestRunner_StatsReflectActiveCount(t *testing.T) {
	db := openTestDB(t)
	r := New(Config{MaxConcurrent: 2}, db)

	stats := r.Stats()
	if stats.MaxSlots != 2 || stats.Active != 0 {
		t.Errorf("Stats() = %+v, want MaxSlots=2 Active=0", stats)
	}
}

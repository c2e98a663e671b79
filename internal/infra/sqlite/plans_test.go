package sqlite

import (
	"errors"
	"testing"

	"github.com/moldplan/moldplan/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_InsertAndGetPlanRun(t *testing.T) {
	db := openTestDB(t)
	req := domain.PlanRequest{MonthDays: 5}

	if err := db.InsertPlanRun("plan-1", req); err != nil {
		t.Fatalf("InsertPlanRun() error = %v", err)
	}

	run, err := db.GetPlanRun("plan-1")
	if err != nil {
		t.Fatalf("GetPlanRun() error = %v", err)
	}
	if run.Status != PlanStatusPending {
		t.Errorf("Status = %q, want %q", run.Status, PlanStatusPending)
	}
}

func TestDB_CompletePlanRunPersistsTasksAndUnmet(t *testing.T) {
	db := openTestDB(t)
	req := domain.PlanRequest{MonthDays: 5}
	if err := db.InsertPlanRun("plan-2", req); err != nil {
		t.Fatalf("InsertPlanRun() error = %v", err)
	}

	result := domain.PlanResult{
		Score: 42.5,
		Assignments: []domain.Task{
			{Day: 1, MachineID: "M1", MachineName: "M1", TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 10},
		},
		Unmet: map[string]int{"c2": 3},
	}
	if err := db.CompletePlanRun("plan-2", result); err != nil {
		t.Fatalf("CompletePlanRun() error = %v", err)
	}

	run, err := db.GetPlanRun("plan-2")
	if err != nil {
		t.Fatalf("GetPlanRun() error = %v", err)
	}
	if run.Status != PlanStatusCompleted {
		t.Errorf("Status = %q, want %q", run.Status, PlanStatusCompleted)
	}
	if run.Score != 42.5 {
		t.Errorf("Score = %v, want 42.5", run.Score)
	}

	tasks, err := db.ListPlanTasks("plan-2")
	if err != nil {
		t.Fatalf("ListPlanTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ComponentID != "c1" {
		t.Errorf("tasks = %+v, want one PRODUCE task for c1", tasks)
	}

	unmet, err := db.ListPlanUnmet("plan-2")
	if err != nil {
		t.Fatalf("ListPlanUnmet() error = %v", err)
	}
	if unmet["c2"] != 3 {
		t.Errorf("unmet[c2] = %d, want 3", unmet["c2"])
	}
}

func TestDB_MarkPlanFailed(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertPlanRun("plan-3", domain.PlanRequest{}); err != nil {
		t.Fatalf("InsertPlanRun() error = %v", err)
	}
	if err := db.MarkPlanFailed("plan-3", errors.New("boom")); err != nil {
		t.Fatalf("MarkPlanFailed() error = %v", err)
	}

	run, err := db.GetPlanRun("plan-3")
	if err != nil {
		t.Fatalf("GetPlanRun() error = %v", err)
	}
	if run.Status != PlanStatusFailed || run.Error != "boom" {
		t.Errorf("run = %+v, want FAILED/boom", run)
	}
}

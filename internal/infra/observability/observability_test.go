package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPlanRunsTotal_IncrementsByStatus(t *testing.T) {
	PlanRunsTotal.Reset()
	PlanRunsTotal.WithLabelValues("completed").Inc()
	PlanRunsTotal.WithLabelValues("completed").Inc()
	PlanRunsTotal.WithLabelValues("failed").Inc()

	if got := testutil.ToFloat64(PlanRunsTotal.WithLabelValues("completed")); got != 2 {
		t.Errorf("completed count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PlanRunsTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
}

func TestGABestScore_ReflectsLastSet(t *testing.T) {
	GABestScore.Set(123.5)
	if got := testutil.ToFloat64(GABestScore); got != 123.5 {
		t.Errorf("GABestScore = %v, want 123.5", got)
	}
}

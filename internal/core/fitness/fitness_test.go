package fitness

import (
	"testing"

	"github.com/moldplan/moldplan/internal/domain"
)

func TestScore_ProducedOnlyIsPositive(t *testing.T) {
	components := []domain.Component{{ID: "c1", DueDay: 10}}
	tasks := []domain.Task{
		{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 10, Day: 1},
	}
	got := Score(tasks, nil, components)
	if got != 10.0 {
		t.Errorf("Score() = %v, want 10.0", got)
	}
}

func TestScore_UnmetDominatesEverythingElse(t *testing.T) {
	components := []domain.Component{{ID: "c1", DueDay: 10}}
	tasks := []domain.Task{
		{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 999_999, Day: 1},
	}
	unmet := map[string]int{"c1": 1}
	got := Score(tasks, unmet, components)
	if got >= 0 {
		t.Errorf("Score() = %v, want negative (one unmet unit outweighs 999,999 produced)", got)
	}
}

func TestScore_LateStartPenalty(t *testing.T) {
	components := []domain.Component{{ID: "c1", DueDay: 10}} // latest_start = 8
	onTime := Score(
		[]domain.Task{{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 1, Day: 8}},
		nil, components,
	)
	late := Score(
		[]domain.Task{{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 1, Day: 10}},
		nil, components,
	)
	if late >= onTime {
		t.Errorf("late start score %v should be less than on-time score %v", late, onTime)
	}
}

func TestScore_ExplicitZeroLeadTimeHonored(t *testing.T) {
	// DueDay=10 with an explicit lead_time_days=0 gives latest_start=10, two
	// days later than the nil-default's latest_start=8 — production on day 9
	// must be penalized against the default but on-time against an explicit 0.
	withDefault := []domain.Component{{ID: "c1", DueDay: 10}}
	withExplicitZero := []domain.Component{{ID: "c1", DueDay: 10, LeadTimeDays: domain.Ptr(0)}}
	tasks := []domain.Task{{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 1, Day: 9}}

	penalized := Score(tasks, nil, withDefault)
	onTime := Score(tasks, nil, withExplicitZero)
	if onTime <= penalized {
		t.Errorf("Score() with explicit lead=0 = %v, want greater than default-lead score %v", onTime, penalized)
	}
	if onTime != 1.0 {
		t.Errorf("Score() with explicit lead=0 = %v, want 1.0 (no late-start penalty)", onTime)
	}
}

func TestScore_ChangeoverAndWaitPenalties(t *testing.T) {
	components := []domain.Component{{ID: "c1", DueDay: 10}}
	base := []domain.Task{{TaskType: domain.TaskProduce, ComponentID: "c1", ProducedQty: 5, Day: 1}}
	withChangeover := append(append([]domain.Task{}, base...), domain.Task{TaskType: domain.TaskChangeMold, UsedHours: 1})
	withWait := append(append([]domain.Task{}, base...), domain.Task{TaskType: domain.TaskWait, UsedHours: 1})

	plain := Score(base, nil, components)
	if got := Score(withChangeover, nil, components); got != plain-50.0 {
		t.Errorf("changeover penalty: got %v, want %v", got, plain-50.0)
	}
	if got := Score(withWait, nil, components); got != plain-5.0 {
		t.Errorf("wait penalty: got %v, want %v", got, plain-5.0)
	}
}

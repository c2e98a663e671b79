package ga

import (
	"math/rand"
	"testing"

	"github.com/moldplan/moldplan/internal/domain"
)

func testComponents() []domain.Component {
	return []domain.Component{
		{ID: "c1", Name: "c1", Quantity: 10, CycleTimeSec: 1800, MoldID: "m1", Color: "red", DueDay: 15},
		{ID: "c2", Name: "c2", Quantity: 10, CycleTimeSec: 1800, MoldID: "m1", Color: "blue", DueDay: 15},
		{ID: "c3", Name: "c3", Quantity: 10, CycleTimeSec: 1800, MoldID: "m2", Color: "red", DueDay: 20},
	}
}

func testMachines() []domain.Machine {
	return []domain.Machine{
		{ID: "M1", Name: "M1", Group: domain.GroupSmall, Tonnage: 100, HoursPerDay: 10, Efficiency: 1.0},
		{ID: "M2", Name: "M2", Group: domain.GroupSmall, Tonnage: 100, HoursPerDay: 10, Efficiency: 1.0},
	}
}

func testMolds() []domain.Mold {
	return []domain.Mold{
		{ID: "m1", Name: "m1", Group: domain.GroupSmall, Tonnage: 100},
		{ID: "m2", Name: "m2", Group: domain.GroupSmall, Tonnage: 100},
	}
}

func TestOptimize_DeterministicGivenSeed(t *testing.T) {
	run := func(seed int64) Result {
		rng := rand.New(rand.NewSource(seed))
		res, err := Optimize(testComponents(), testMachines(), testMolds(), 5, 0.1, 0.1,
			Params{PopSize: 8, NGenerations: 6, MutationRate: 0.3}, rng)
		if err != nil {
			t.Fatalf("Optimize() error = %v", err)
		}
		return res
	}

	a := run(42)
	b := run(42)
	if a.Score != b.Score {
		t.Errorf("scores differ across identical seeds: %v vs %v", a.Score, b.Score)
	}
	if len(a.Genome) != len(b.Genome) {
		t.Fatalf("genome lengths differ: %d vs %d", len(a.Genome), len(b.Genome))
	}
	for i := range a.Genome {
		if a.Genome[i] != b.Genome[i] {
			t.Errorf("genome differs at %d: %q vs %q", i, a.Genome[i], b.Genome[i])
		}
	}
}

func TestOptimize_RejectsInvalidParams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := Optimize(testComponents(), testMachines(), testMolds(), 5, 0, 0,
		Params{PopSize: 1, NGenerations: 1, MutationRate: 0.1}, rng); err == nil {
		t.Error("expected error for pop_size < 2")
	}
	if _, err := Optimize(testComponents(), testMachines(), testMolds(), 5, 0, 0,
		Params{PopSize: 4, NGenerations: 0, MutationRate: 0.1}, rng); err == nil {
		t.Error("expected error for n_generations < 1")
	}
	if _, err := Optimize(testComponents(), testMachines(), testMolds(), 5, 0, 0,
		Params{PopSize: 4, NGenerations: 1, MutationRate: 1.5}, rng); err == nil {
		t.Error("expected error for mutation_rate out of range")
	}
}

func TestDistinctPair_NeverReturnsEqualIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		a, b := distinctPair(5, rng)
		if a == b {
			t.Fatalf("distinctPair(5) returned equal indices on iteration %d: a=b=%d", i, a)
		}
		if a < 0 || a >= 5 || b < 0 || b >= 5 {
			t.Fatalf("distinctPair(5) out of range: a=%d b=%d", a, b)
		}
	}
}

func TestCrossoverOX_ProducesValidPermutation(t *testing.T) {
	p1 := []string{"a", "b", "c", "d", "e"}
	p2 := []string{"e", "d", "c", "b", "a"}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		child := crossoverOX(p1, p2, rng)
		if len(child) != len(p1) {
			t.Fatalf("crossoverOX produced length %d, want %d", len(child), len(p1))
		}
		seen := make(map[string]bool, len(child))
		for _, id := range child {
			if seen[id] {
				t.Fatalf("crossoverOX produced duplicate id %q: %v", id, child)
			}
			seen[id] = true
		}
	}
}

func TestOptimize_SatisfiableInstanceFullyMet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	res, err := Optimize(testComponents(), testMachines(), testMolds(), 5, 0.1, 0.1,
		Params{PopSize: 10, NGenerations: 10, MutationRate: 0.25}, rng)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if res.Score <= 0 {
		t.Errorf("Score() = %v, want a positive score for a satisfiable instance", res.Score)
	}
	if len(res.Unmet) != 0 {
		t.Errorf("unmet = %v, want empty for a satisfiable instance", res.Unmet)
	}
}

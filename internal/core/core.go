// Package core wires the decoder, GA driver, and fitness evaluator behind
// one entry point: Optimize turns a PlanRequest into a PlanResult.
package core

import (
	"math/rand"

	"github.com/moldplan/moldplan/internal/core/ga"
	"github.com/moldplan/moldplan/internal/domain"
)

const (
	DefaultPopSize      = 30
	DefaultNGenerations = 80
	DefaultMutationRate = 0.25
)

// Optimize is the sole entry point callers outside internal/core use. It
// applies request-level defaults, normalizes machines, and delegates to the
// GA driver. rng drives every random choice the GA makes; callers control
// determinism by seeding it themselves.
func Optimize(req domain.PlanRequest, rng *rand.Rand) (domain.PlanResult, error) {
	if req.MonthDays < 1 {
		return domain.PlanResult{}, domain.NewOutOfRangeParameter("month_days", "must be >= 1")
	}

	params := ga.Params{
		PopSize:      req.PopSize,
		NGenerations: req.NGenerations,
		MutationRate: DefaultMutationRate,
	}
	if req.MutationRate != nil {
		params.MutationRate = *req.MutationRate
	}
	if params.PopSize == 0 {
		params.PopSize = DefaultPopSize
	}
	if params.NGenerations == 0 {
		params.NGenerations = DefaultNGenerations
	}

	normalizedMachines := make([]domain.Machine, len(req.Machines))
	for i, m := range req.Machines {
		normalizedMachines[i] = m.Normalized()
	}

	result, err := ga.Optimize(
		req.Components,
		normalizedMachines,
		req.Molds,
		req.MonthDays,
		req.MoldChangeTimeHours,
		req.ColorChangeTimeHours,
		params,
		rng,
	)
	if err != nil {
		return domain.PlanResult{}, err
	}

	return domain.PlanResult{
		Assignments: result.Tasks,
		Unmet:       result.Unmet,
		Score:       result.Score,
	}, nil
}

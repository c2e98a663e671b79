// Package ga implements the genetic algorithm driver: it searches over
// permutations of component identifiers (genomes), using the decoder and
// fitness packages as its simulation and objective, and returns the
// best-scoring genome found along with its decoded schedule.
package ga

import (
	"math/rand"

	"github.com/moldplan/moldplan/internal/core/decode"
	"github.com/moldplan/moldplan/internal/core/fitness"
	"github.com/moldplan/moldplan/internal/domain"
	"github.com/moldplan/moldplan/internal/infra/observability"
)

// Params controls population size, generation count, and mutation rate for
// one Optimize run.
type Params struct {
	PopSize      int
	NGenerations int
	MutationRate float64
}

// Validate mirrors the guard clauses of the reference GA driver.
func (p Params) Validate() error {
	if p.PopSize < 2 {
		return domain.NewOutOfRangeParameter("pop_size", "must be >= 2")
	}
	if p.NGenerations < 1 {
		return domain.NewOutOfRangeParameter("n_generations", "must be >= 1")
	}
	if p.MutationRate < 0.0 || p.MutationRate > 1.0 {
		return domain.NewOutOfRangeParameter("mutation_rate", "must be between 0 and 1")
	}
	return nil
}

// Result is the best genome Optimize found, already decoded and scored.
type Result struct {
	Genome []string
	Tasks  []domain.Task
	Unmet  map[string]int
	Score  float64
}

type scored struct {
	genome []string
	score  float64
}

// Optimize runs the generational loop: uniform random initial population,
// fitness-ranked selection with elitism, order crossover, swap mutation,
// repeated for NGenerations, returning the best genome seen across all
// generations (not just the final one).
func Optimize(
	components []domain.Component,
	machines []domain.Machine,
	molds []domain.Mold,
	monthDays int,
	moldChangeHours, colorChangeHours float64,
	params Params,
	rng *rand.Rand,
) (Result, error) {
	if monthDays < 1 {
		return Result{}, domain.NewOutOfRangeParameter("month_days", "must be >= 1")
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	decodeGenome := func(g []string) ([]domain.Task, map[string]int, error) {
		return decode.Decode(g, components, machines, molds, monthDays, moldChangeHours, colorChangeHours)
	}

	population := make([][]string, params.PopSize)
	for i := range population {
		population[i] = randomGenome(components, rng)
	}

	var bestGenome []string
	bestScore := 0.0
	haveBest := false

	eliteK := params.PopSize / 5
	if eliteK < 2 {
		eliteK = 2
	}

	for genIdx := 0; genIdx < params.NGenerations; genIdx++ {
		observability.GAGenerationsRun.Inc()
		ranked := make([]scored, params.PopSize)
		for i, g := range population {
			tasks, unmet, err := decodeGenome(g)
			if err != nil {
				return Result{}, err
			}
			ranked[i] = scored{genome: g, score: fitness.Score(tasks, unmet, components)}
		}

		sortDescending(ranked)

		if !haveBest || ranked[0].score > bestScore {
			bestScore = ranked[0].score
			bestGenome = append([]string(nil), ranked[0].genome...)
			haveBest = true
		}

		newPop := make([][]string, 0, params.PopSize)
		for i := 0; i < eliteK; i++ {
			newPop = append(newPop, append([]string(nil), ranked[i].genome...))
		}
		for len(newPop) < params.PopSize {
			i, j := distinctPair(params.PopSize, rng)
			parent := ranked[i].genome
			if ranked[j].score > ranked[i].score {
				parent = ranked[j].genome
			}
			newPop = append(newPop, append([]string(nil), parent...))
		}

		children := make([][]string, 0, params.PopSize)
		for i := 0; i+1 < params.PopSize; i += 2 {
			children = append(children, crossoverOX(newPop[i], newPop[i+1], rng))
			children = append(children, crossoverOX(newPop[i+1], newPop[i], rng))
		}
		if params.PopSize%2 == 1 {
			children = append(children, append([]string(nil), newPop[params.PopSize-1]...))
		}

		for i := range children {
			if rng.Float64() < params.MutationRate {
				mutateSwap(children[i], rng)
			}
		}
		if len(children) > params.PopSize {
			children = children[:params.PopSize]
		}
		population = children
	}

	finalTasks, finalUnmet, err := decodeGenome(bestGenome)
	if err != nil {
		return Result{}, err
	}
	finalScore := fitness.Score(finalTasks, finalUnmet, components)

	return Result{Genome: bestGenome, Tasks: finalTasks, Unmet: finalUnmet, Score: finalScore}, nil
}

func sortDescending(s []scored) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score > s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func randomGenome(components []domain.Component, rng *rand.Rand) []string {
	ids := make([]string, len(components))
	for i, c := range components {
		ids[i] = c.ID
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// distinctPair draws two distinct integers in [0,n), in no particular
// order (callers that need i < j sort them), without the reject-and-retry a
// naive two-Intn-calls-and-compare approach would need.
func distinctPair(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

func mutateSwap(genome []string, rng *rand.Rand) {
	if len(genome) < 2 {
		return
	}
	i, j := distinctPair(len(genome), rng)
	genome[i], genome[j] = genome[j], genome[i]
}

// crossoverOX implements order crossover: a contiguous slice from p1 is kept
// verbatim, the remaining positions are filled with p2's genes in their
// original relative order, skipping anything already placed.
func crossoverOX(p1, p2 []string, rng *rand.Rand) []string {
	n := len(p1)
	if n < 2 {
		return append([]string(nil), p1...)
	}
	a, b := distinctPair(n, rng)
	if a > b {
		a, b = b, a
	}

	mid := p1[a:b]
	inMid := make(map[string]bool, len(mid))
	for _, id := range mid {
		inMid[id] = true
	}

	rest := make([]string, 0, n-len(mid))
	for _, id := range p2 {
		if !inMid[id] {
			rest = append(rest, id)
		}
	}

	child := make([]string, 0, n)
	child = append(child, rest[:a]...)
	child = append(child, mid...)
	child = append(child, rest[a:]...)
	return child
}

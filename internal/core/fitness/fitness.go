// Package fitness scores a decoded schedule so the GA driver can rank
// competing genomes.
package fitness

import "github.com/moldplan/moldplan/internal/domain"

const (
	unmetPenaltyPerUnit      = 1_000_000.0
	lateStartPenaltyPerDay   = 10_000.0
	changeoverPenaltyPerHour = 50.0
	waitPenaltyPerHour       = 5.0
)

// Score implements the weighted-penalty objective:
// produced_total − 1,000,000·Σunmet − 10,000·late_start_penalty −
// 50·changeover_hours − 5·wait_hours. Higher is better; the GA maximizes it.
func Score(tasks []domain.Task, unmet map[string]int, components []domain.Component) float64 {
	compsByID := make(map[string]domain.Component, len(components))
	for _, c := range components {
		compsByID[c.ID] = c
	}

	unmetTotal := 0
	for _, qty := range unmet {
		unmetTotal += qty
	}

	producedTotal := 0
	changeoverHours := 0.0
	waitHours := 0.0
	firstProdDay := make(map[string]int, len(components))

	for _, tk := range tasks {
		switch tk.TaskType {
		case domain.TaskProduce:
			producedTotal += tk.ProducedQty
			if d, ok := firstProdDay[tk.ComponentID]; !ok || tk.Day < d {
				firstProdDay[tk.ComponentID] = tk.Day
			}
		case domain.TaskChangeMold, domain.TaskChangeColor:
			changeoverHours += tk.UsedHours
		case domain.TaskWait:
			waitHours += tk.UsedHours
		}
	}

	lateStartPenalty := 0.0
	for cid, d := range firstProdDay {
		c, ok := compsByID[cid]
		if !ok {
			continue
		}
		if d > c.LatestStart() {
			lateStartPenalty += float64(d-c.LatestStart()) * lateStartPenaltyPerDay
		}
	}

	return float64(producedTotal) -
		float64(unmetTotal)*unmetPenaltyPerUnit -
		lateStartPenalty -
		changeoverHours*changeoverPenaltyPerHour -
		waitHours*waitPenaltyPerHour
}

package decode

import "github.com/moldplan/moldplan/internal/domain"

// topologicalOrder returns components ordered so that every prerequisite
// precedes its dependents (Kahn's algorithm), or an InvalidInputError if a
// prerequisite id is unknown or the graph has a cycle.
func topologicalOrder(components []domain.Component) ([]domain.Component, error) {
	byID := make(map[string]domain.Component, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}

	indeg := make(map[string]int, len(components))
	graph := make(map[string][]string, len(components))
	for _, c := range components {
		indeg[c.ID] = 0
	}
	for _, c := range components {
		for _, pr := range c.Prerequisites {
			if _, ok := byID[pr]; !ok {
				return nil, domain.NewUnknownPrerequisite(c.ID, pr)
			}
			graph[pr] = append(graph[pr], c.ID)
			indeg[c.ID]++
		}
	}

	queue := make([]string, 0, len(components))
	for _, c := range components {
		if indeg[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}

	out := make([]domain.Component, 0, len(components))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, byID[id])
		for _, next := range graph[id] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(out) != len(components) {
		return nil, domain.NewCyclicPrerequisite()
	}
	return out, nil
}

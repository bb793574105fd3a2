package graph

import (
	"sort"

	"github.com/pkg/errors"
)

// TopologicalOrder returns the vertex ids of d sorted so that every edge
// points from an earlier id to a later one. Ties are broken lexicographically
// so the order is stable across runs, which keeps generated deployment plans
// diffable.
func (d *Directed[V]) TopologicalOrder() ([]string, error) {
	predecessors, err := d.underlying.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "getting predecessor map")
	}

	var queue []string
	for id, preds := range predecessors {
		if len(preds) == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(predecessors))
	visited := make(map[string]struct{})

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		order = append(order, current)
		visited[current] = struct{}{}

		var freed []string
		for id, preds := range predecessors {
			if _, ok := preds[current]; !ok {
				continue
			}
			delete(preds, current)
			if len(preds) == 0 {
				freed = append(freed, id)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	if len(order) != len(predecessors) {
		return nil, errors.New("graph contains a cycle")
	}
	return order, nil
}

// sorted by id, for deterministic iteration over Vertices()
func SortedIds[V Identifiable](vs []V) []string {
	ids := make([]string, len(vs))
	for i, v := range vs {
		ids[i] = v.Id()
	}
	sort.Strings(ids)
	return ids
}

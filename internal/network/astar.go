package network

// FindPath runs A* from any node in from to any node in to, returning the
// edge sequence of a lowest-cost path. Ties are broken arbitrarily. If the
// two sets overlap the empty path is returned. The search aborts with ok
// false when the cheapest open node already exceeds maxCost (nil means
// unbounded) or when no target is reachable. A nil heuristic searches as
// plain Dijkstra; a non-nil heuristic must be admissible.
func (n *Network) FindPath(from, to []int, maxCost *uint64, heuristic func(int) uint64) ([]Edge, bool) {
	toSet := make(map[int]struct{}, len(to))
	for _, t := range to {
		toSet[t] = struct{}{}
	}
	for _, f := range from {
		if _, ok := toSet[f]; ok {
			return []Edge{}, true
		}
	}
	if heuristic == nil {
		heuristic = func(int) uint64 { return 0 }
	}

	seen := make(map[int]struct{}, len(from))
	entry := make(map[int]Edge)
	h := &minHeap{}
	for _, f := range from {
		push(h, heapItem{node: f, cost: 0, priority: heuristic(f), prev: -1})
	}
	for h.Len() > 0 {
		item := pop(h)
		if maxCost != nil && item.cost > *maxCost {
			return nil, false
		}
		if _, done := seen[item.node]; done {
			continue
		}
		seen[item.node] = struct{}{}
		if item.prev != -1 {
			entry[item.node] = Edge{From: item.prev, To: item.node, Cost: item.viaCost}
		}
		if _, hit := toSet[item.node]; hit {
			return reconstructEdges(item.node, entry), true
		}
		for _, e := range n.out[item.node] {
			if _, done := seen[e.To]; done {
				continue
			}
			cost := item.cost + uint64(e.Cost)
			push(h, heapItem{
				node:     e.To,
				cost:     cost,
				priority: cost + heuristic(e.To),
				prev:     item.node,
				viaCost:  e.Cost,
			})
		}
	}
	return nil, false
}

func reconstructEdges(node int, entry map[int]Edge) []Edge {
	var path []Edge
	for {
		e, ok := entry[node]
		if !ok {
			break
		}
		path = append(path, e)
		node = e.From
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

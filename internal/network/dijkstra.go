package network

// Cost is an optional path cost; OK is false for unreachable nodes.
type Cost struct {
	Value uint64
	OK    bool
}

// Dijkstra computes, for every node, the lowest cost of reaching any source
// from that node. It traverses in-edges, so the result is a distance field
// toward the sources rather than away from them.
func (n *Network) Dijkstra(sources []int) []Cost {
	out := make([]Cost, n.nodes)
	h := &minHeap{}
	for _, s := range sources {
		push(h, heapItem{node: s, cost: 0, priority: 0})
	}
	for h.Len() > 0 {
		item := pop(h)
		if out[item.node].OK {
			continue
		}
		out[item.node] = Cost{Value: item.cost, OK: true}
		for _, e := range n.in[item.node] {
			if out[e.From].OK {
				continue
			}
			cost := item.cost + uint64(e.Cost)
			push(h, heapItem{node: e.From, cost: cost, priority: cost})
		}
	}
	return out
}

// NodeCost pairs a node with the cost of reaching it.
type NodeCost struct {
	Node int
	Cost uint64
}

// NodesWithin returns every node reachable from the sources at cost at most
// maxCost, traversing out-edges.
func (n *Network) NodesWithin(sources []int, maxCost uint64) []NodeCost {
	seen := make([]bool, n.nodes)
	var out []NodeCost
	h := &minHeap{}
	for _, s := range sources {
		push(h, heapItem{node: s, cost: 0, priority: 0})
	}
	for h.Len() > 0 {
		item := pop(h)
		if item.cost > maxCost {
			break
		}
		if seen[item.node] {
			continue
		}
		seen[item.node] = true
		out = append(out, NodeCost{Node: item.node, Cost: item.cost})
		for _, e := range n.out[item.node] {
			if seen[e.To] {
				continue
			}
			cost := item.cost + uint64(e.Cost)
			push(h, heapItem{node: e.To, cost: cost, priority: cost})
		}
	}
	return out
}

// Target is one result of a closest-target search. Path runs from a source
// node to the target inclusive.
type Target struct {
	Node int
	Path []int
	Cost uint64
}

// ClosestTargets finds the k cheapest nodes flagged in targets, reachable
// from the sources. All ties at the cut-off cost are included, so the result
// may exceed k.
func (n *Network) ClosestTargets(sources []int, targets []bool, k int) []Target {
	if k <= 0 {
		return nil
	}
	seen := make([]bool, n.nodes)
	cameFrom := make([]int, n.nodes)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	h := &minHeap{}
	for _, s := range sources {
		push(h, heapItem{node: s, cost: 0, priority: 0, prev: -1})
	}

	var out []Target
	cutoff := uint64(0)
	haveCutoff := false
	for h.Len() > 0 {
		item := pop(h)
		if haveCutoff && item.cost > cutoff {
			break
		}
		if seen[item.node] {
			continue
		}
		seen[item.node] = true
		cameFrom[item.node] = item.prev
		if targets[item.node] {
			out = append(out, Target{
				Node: item.node,
				Path: reconstruct(item.node, cameFrom),
				Cost: item.cost,
			})
			if len(out) == k {
				cutoff = item.cost
				haveCutoff = true
			}
		}
		for _, e := range n.out[item.node] {
			if seen[e.To] {
				continue
			}
			cost := item.cost + uint64(e.Cost)
			push(h, heapItem{node: e.To, cost: cost, priority: cost, prev: item.node})
		}
	}
	return out
}

func reconstruct(node int, cameFrom []int) []int {
	path := []int{node}
	for cameFrom[node] != -1 {
		node = cameFrom[node]
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

package network

import "container/heap"

type originItem[T comparable] struct {
	node   int
	cost   uint64
	origin T
}

type originHeap[T comparable] []originItem[T]

func (h originHeap[T]) Len() int            { return len(h) }
func (h originHeap[T]) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h originHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *originHeap[T]) Push(x interface{}) { *h = append(*h, x.(originItem[T])) }
func (h *originHeap[T]) Pop() interface{} {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}

// ClosestOrigins labels every node with the origins closest to it by path
// cost. A node equidistant from several origins carries all of them. Nodes
// unreachable from any origin get an empty set.
func ClosestOrigins[T comparable](n *Network, originNodes map[T][]int) []map[T]struct{} {
	out := make([]map[T]struct{}, n.Nodes())
	for i := range out {
		out[i] = map[T]struct{}{}
	}
	if len(originNodes) == 0 {
		return out
	}

	minCosts := make([]Cost, n.Nodes())
	h := &originHeap[T]{}
	for origin, nodes := range originNodes {
		for _, node := range nodes {
			heap.Push(h, originItem[T]{node: node, cost: 0, origin: origin})
		}
	}
	for h.Len() > 0 {
		item := heap.Pop(h).(originItem[T])
		if minCosts[item.node].OK {
			if item.cost != minCosts[item.node].Value {
				continue
			}
		} else {
			minCosts[item.node] = Cost{Value: item.cost, OK: true}
		}
		if _, done := out[item.node][item.origin]; done {
			continue
		}
		out[item.node][item.origin] = struct{}{}

		for _, e := range n.Out(item.node) {
			heap.Push(h, originItem[T]{
				node:   e.To,
				cost:   item.cost + uint64(e.Cost),
				origin: item.origin,
			})
		}
	}
	return out
}

// Package network implements a directed weighted multigraph over integer
// node indices, with the path queries the simulation needs: A*, bounded
// Dijkstra, nodes-within, and closest-target searches over named target
// sets.
package network

import (
	"container/heap"
	"fmt"
)

// Edge is a directed edge with an 8-bit quantised cost. Cost 0 is reserved
// for "same node" and never stored.
type Edge struct {
	From int
	To   int
	Cost uint8
}

// Network holds out- and in-adjacency so queries can traverse either
// direction. Parallel edges are permitted.
type Network struct {
	nodes   int
	out     [][]Edge
	in      [][]Edge
	targets map[string][]bool
}

func New(nodes int, edges []Edge) *Network {
	n := &Network{
		nodes:   nodes,
		out:     make([][]Edge, nodes),
		in:      make([][]Edge, nodes),
		targets: map[string][]bool{},
	}
	for _, e := range edges {
		n.AddEdge(e)
	}
	return n
}

func (n *Network) Nodes() int { return n.nodes }

func (n *Network) AddEdge(e Edge) {
	n.out[e.From] = append(n.out[e.From], e)
	n.in[e.To] = append(n.in[e.To], e)
}

// RemoveEdges drops every parallel edge from->to.
func (n *Network) RemoveEdges(from, to int) {
	n.out[from] = dropEdges(n.out[from], from, to)
	n.in[to] = dropEdges(n.in[to], from, to)
}

func dropEdges(edges []Edge, from, to int) []Edge {
	kept := edges[:0]
	for _, e := range edges {
		if e.From != from || e.To != to {
			kept = append(kept, e)
		}
	}
	return kept
}

func (n *Network) Out(node int) []Edge { return n.out[node] }
func (n *Network) In(node int) []Edge  { return n.in[node] }

// InitTargets registers an all-false target set under name, replacing any
// existing set.
func (n *Network) InitTargets(name string) {
	n.targets[name] = make([]bool, n.nodes)
}

// LoadTarget flips one node in a named target set. Unknown names are a
// programming error.
func (n *Network) LoadTarget(name string, node int, target bool) {
	set, ok := n.targets[name]
	if !ok {
		panic(fmt.Sprintf("target set %q not initialised", name))
	}
	set[node] = target
}

// ClosestLoadedTargets runs ClosestTargets against a named set.
func (n *Network) ClosestLoadedTargets(sources []int, name string, k int) ([]Target, error) {
	set, ok := n.targets[name]
	if !ok {
		return nil, fmt.Errorf("target set %q not initialised", name)
	}
	return n.ClosestTargets(sources, set, k), nil
}

type heapItem struct {
	node     int
	cost     uint64
	priority uint64
	prev     int
	viaCost  uint8
}

type minHeap []heapItem

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}

func push(h *minHeap, item heapItem) { heap.Push(h, item) }
func pop(h *minHeap) heapItem        { return heap.Pop(h).(heapItem) }

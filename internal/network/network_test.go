package network

import (
	"reflect"
	"sort"
	"testing"
)

func TestRemoveEdgesDropsAllParallel(t *testing.T) {
	n := New(3, []Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 0, To: 1, Cost: 4},
		{From: 0, To: 2, Cost: 2},
	})
	n.RemoveEdges(0, 1)
	if len(n.Out(0)) != 1 || n.Out(0)[0].To != 2 {
		t.Fatalf("unexpected out edges: %v", n.Out(0))
	}
	if len(n.In(1)) != 0 {
		t.Fatalf("expected no in edges at 1, got %v", n.In(1))
	}
}

func TestDijkstraTraversesInEdges(t *testing.T) {
	// 0 -> 1 -> 2, so the cost field toward source {2} follows the arrows.
	n := New(3, []Edge{
		{From: 0, To: 1, Cost: 3},
		{From: 1, To: 2, Cost: 4},
	})
	costs := n.Dijkstra([]int{2})
	want := []Cost{{Value: 7, OK: true}, {Value: 4, OK: true}, {Value: 0, OK: true}}
	if !reflect.DeepEqual(costs, want) {
		t.Fatalf("costs: got %v want %v", costs, want)
	}

	// Nothing reaches node 0, so from source {0} only 0 itself has a cost.
	costs = n.Dijkstra([]int{0})
	if !costs[0].OK || costs[1].OK || costs[2].OK {
		t.Fatalf("unexpected reachability: %v", costs)
	}
}

func TestFindPathOverlapReturnsEmpty(t *testing.T) {
	n := New(2, nil)
	path, ok := n.FindPath([]int{0, 1}, []int{1}, nil, nil)
	if !ok || len(path) != 0 {
		t.Fatalf("expected empty path, got %v ok=%v", path, ok)
	}
}

func TestFindPathShortest(t *testing.T) {
	n := New(4, []Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 1, To: 3, Cost: 1},
		{From: 0, To: 2, Cost: 1},
		{From: 2, To: 3, Cost: 10},
	})
	path, ok := n.FindPath([]int{0}, []int{3}, nil, nil)
	if !ok {
		t.Fatalf("expected a path")
	}
	want := []Edge{{From: 0, To: 1, Cost: 1}, {From: 1, To: 3, Cost: 1}}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("path: got %v want %v", path, want)
	}
}

func TestFindPathMaxCostAborts(t *testing.T) {
	n := New(3, []Edge{
		{From: 0, To: 1, Cost: 5},
		{From: 1, To: 2, Cost: 5},
	})
	maxCost := uint64(6)
	if _, ok := n.FindPath([]int{0}, []int{2}, &maxCost, nil); ok {
		t.Fatalf("expected abort above max cost")
	}
	maxCost = 10
	if _, ok := n.FindPath([]int{0}, []int{2}, &maxCost, nil); !ok {
		t.Fatalf("expected path at max cost")
	}
}

func TestFindPathUnreachable(t *testing.T) {
	n := New(3, []Edge{{From: 0, To: 1, Cost: 1}})
	if _, ok := n.FindPath([]int{0}, []int{2}, nil, nil); ok {
		t.Fatalf("expected no path")
	}
}

func TestNodesWithin(t *testing.T) {
	n := New(4, []Edge{
		{From: 0, To: 1, Cost: 2},
		{From: 1, To: 2, Cost: 2},
		{From: 2, To: 3, Cost: 2},
	})
	got := n.NodesWithin([]int{0}, 4)
	want := []NodeCost{{Node: 0, Cost: 0}, {Node: 1, Cost: 2}, {Node: 2, Cost: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("nodes within: got %v want %v", got, want)
	}
}

func TestClosestTargetsIncludesTies(t *testing.T) {
	// Targets 2, 3 and 4; 3 and 4 tie at cost 2 so k=2 returns all three.
	n := New(5, []Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 0, To: 2, Cost: 1},
		{From: 1, To: 3, Cost: 1},
		{From: 1, To: 4, Cost: 1},
	})
	targets := []bool{false, false, true, true, true}
	got := n.ClosestTargets([]int{0}, targets, 2)
	if len(got) != 3 {
		t.Fatalf("expected 3 results with ties, got %v", got)
	}
	if got[0].Node != 2 || got[0].Cost != 1 {
		t.Fatalf("unexpected first target %v", got[0])
	}
	rest := []int{got[1].Node, got[2].Node}
	sort.Ints(rest)
	if rest[0] != 3 || rest[1] != 4 || got[1].Cost != 2 || got[2].Cost != 2 {
		t.Fatalf("unexpected tied targets %v", got[1:])
	}
	if !reflect.DeepEqual(got[0].Path, []int{0, 2}) {
		t.Fatalf("unexpected path %v", got[0].Path)
	}
}

func TestClosestLoadedTargets(t *testing.T) {
	n := New(3, []Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 1, To: 2, Cost: 1},
	})
	n.InitTargets("towns")
	n.LoadTarget("towns", 2, true)
	got, err := n.ClosestLoadedTargets([]int{0}, "towns", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Node != 2 || got[0].Cost != 2 {
		t.Fatalf("unexpected targets %v", got)
	}
	if _, err := n.ClosestLoadedTargets([]int{0}, "missing", 1); err == nil {
		t.Fatalf("expected error for unknown target set")
	}
}

func TestClosestOrigins(t *testing.T) {
	n := New(9, []Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 0, To: 2, Cost: 1},
		{From: 0, To: 3, Cost: 1},
		{From: 1, To: 2, Cost: 1},
		{From: 1, To: 4, Cost: 1},
		{From: 3, To: 5, Cost: 1},
		{From: 3, To: 6, Cost: 1},
		{From: 4, To: 5, Cost: 2},
		{From: 4, To: 6, Cost: 2},
		{From: 7, To: 6, Cost: 1},
	})
	got := ClosestOrigins(n, map[string][]int{
		"a": {0},
		"b": {1, 7},
	})
	want := []map[string]struct{}{
		{"a": {}},
		{"b": {}},
		{"a": {}, "b": {}},
		{"a": {}},
		{"b": {}},
		{"a": {}},
		{"b": {}},
		{"b": {}},
		{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("closest origins: got %v want %v", got, want)
	}
}

package grid

import "fmt"

// Edge is a canonical undirected pair of adjacent cells. From is always the
// lower coordinate on the varying axis. Diagonal edges do not exist.
type Edge struct {
	From Position
	To   Position
}

// NewEdge canonicalises the pair. Diagonal or identical endpoints are a
// programming error.
func NewEdge(a, b Position) Edge {
	if a.X != b.X && a.Y != b.Y {
		panic(fmt.Sprintf("diagonal edge %v-%v", a, b))
	}
	if a == b {
		panic(fmt.Sprintf("zero-length edge at %v", a))
	}
	if b.X < a.X || b.Y < a.Y {
		a, b = b, a
	}
	return Edge{From: a, To: b}
}

func (e Edge) Horizontal() bool { return e.From.Y == e.To.Y }

// Length is the number of cells spanned on the varying axis.
func (e Edge) Length() int {
	if e.Horizontal() {
		return e.To.X - e.From.X
	}
	return e.To.Y - e.From.Y
}

func (e Edge) String() string { return fmt.Sprintf("%v-%v", e.From, e.To) }

// PathEdges converts a node path into its successive unit edges.
func PathEdges(path []Position) []Edge {
	if len(path) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		edges = append(edges, NewEdge(path[i-1], path[i]))
	}
	return edges
}

// EdgeSet is the set type used for refresh buffers.
type EdgeSet map[Edge]struct{}

func NewEdgeSet(edges ...Edge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s[e] = struct{}{}
	}
	return s
}

func (s EdgeSet) Contains(e Edge) bool {
	_, ok := s[e]
	return ok
}

func (s EdgeSet) Add(e Edge) { s[e] = struct{}{} }

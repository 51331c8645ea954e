// Package grid holds the primitive spatial types shared by the simulation:
// positions, undirected edges, rotations and per-cell junctions.
package grid

import "fmt"

// Position addresses a cell on the world grid. Coordinates are never
// negative for in-bounds cells; signed ints keep neighbour arithmetic simple.
type Position struct {
	X int
	Y int
}

func P(x, y int) Position { return Position{X: x, Y: y} }

func (p Position) Add(dx, dy int) Position { return Position{X: p.X + dx, Y: p.Y + dy} }

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Manhattan returns the L1 distance between two positions.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Corners returns the four integer corners of the tile anchored at p, in
// clockwise order starting at p itself.
func Corners(p Position) [4]Position {
	return [4]Position{
		p,
		p.Add(1, 0),
		p.Add(1, 1),
		p.Add(0, 1),
	}
}

// Neighbours returns the 4-neighbourhood of p. Callers filter for bounds.
func Neighbours(p Position) [4]Position {
	return [4]Position{
		p.Add(1, 0),
		p.Add(-1, 0),
		p.Add(0, 1),
		p.Add(0, -1),
	}
}

// PositionSet is the set type used for territory, refresh buffers and
// route gates.
type PositionSet map[Position]struct{}

func NewPositionSet(positions ...Position) PositionSet {
	s := make(PositionSet, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

func (s PositionSet) Contains(p Position) bool {
	_, ok := s[p]
	return ok
}

func (s PositionSet) Add(p Position) { s[p] = struct{}{} }

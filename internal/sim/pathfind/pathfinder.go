// Package pathfind adapts the world grid and a travel duration model into a
// weighted network, keeping edge costs current as the world mutates.
package pathfind

import (
	"fmt"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/network"
	"tradewinds.dev/internal/sim/world"
)

// Pathfinder indexes cells row-major into a network whose edge costs are
// 8-bit quantised travel durations. Two instances exist in the running
// game: one whose duration model treats planned roads as roads (route
// planning) and one that ignores them (avatar control).
type Pathfinder struct {
	width    int
	height   int
	net      *network.Network
	duration Duration
}

// Duration is the subset of the travel duration contract the pathfinder
// needs. Durations above Max are a programming error during quantisation.
type Duration interface {
	Between(w *world.World, from, to grid.Position) (time.Duration, bool)
	Min() time.Duration
	Max() time.Duration
}

// New builds the full 4-neighbour graph for w.
func New(w *world.World, duration Duration) *Pathfinder {
	p := &Pathfinder{
		width:    w.Width,
		height:   w.Height,
		net:      network.New(w.Width*w.Height, nil),
		duration: duration,
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			from := grid.P(x, y)
			for _, to := range []grid.Position{from.Add(1, 0), from.Add(0, 1)} {
				if !w.InBounds(to) {
					continue
				}
				p.setEdgeDuration(w, from, to)
				p.setEdgeDuration(w, to, from)
			}
		}
	}
	return p
}

func (p *Pathfinder) InBounds(pos grid.Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < p.width && pos.Y < p.height
}

// Index maps a position to its node. Out-of-bounds positions are a
// programming error.
func (p *Pathfinder) Index(pos grid.Position) int {
	if !p.InBounds(pos) {
		panic(fmt.Sprintf("position %v out of bounds %dx%d", pos, p.width, p.height))
	}
	return pos.Y*p.width + pos.X
}

// Position is the inverse of Index.
func (p *Pathfinder) Position(index int) grid.Position {
	return grid.P(index%p.width, index/p.width)
}

// Network exposes the underlying graph for queries that need raw node
// access, such as territory controllers.
func (p *Pathfinder) Network() *network.Network { return p.net }

// CostOf quantises a duration onto the 1..=255 cost scale. Zero is reserved
// for "same node"; durations above the model's max fail fast.
func (p *Pathfinder) CostOf(d time.Duration) uint8 {
	max := p.duration.Max()
	if d > max {
		panic(fmt.Sprintf("duration %v exceeds max duration %v", d, max))
	}
	cost := uint64(d) * 255 / uint64(max)
	if cost == 0 {
		cost = 1
	}
	return uint8(cost)
}

// DurationOf inverts CostOf's scaling for aggregate costs.
func (p *Pathfinder) DurationOf(cost uint64) time.Duration {
	return time.Duration(cost * uint64(p.duration.Max()) / 255)
}

func (p *Pathfinder) setEdgeDuration(w *world.World, from, to grid.Position) {
	fromIndex, toIndex := p.Index(from), p.Index(to)
	p.net.RemoveEdges(fromIndex, toIndex)
	if d, ok := p.duration.Between(w, from, to); ok {
		p.net.AddEdge(network.Edge{From: fromIndex, To: toIndex, Cost: p.CostOf(d)})
	}
}

// SetDuration prices a directed span between two positions outright,
// bypassing the duration model. Bridges use it: their ends need not be
// adjacent.
func (p *Pathfinder) SetDuration(from, to grid.Position, d time.Duration) {
	fromIndex, toIndex := p.Index(from), p.Index(to)
	p.net.RemoveEdges(fromIndex, toIndex)
	p.net.AddEdge(network.Edge{From: fromIndex, To: toIndex, Cost: p.CostOf(d)})
}

// UpdateEdge re-prices both directions of edge against the current world.
func (p *Pathfinder) UpdateEdge(w *world.World, edge grid.Edge) {
	p.setEdgeDuration(w, edge.From, edge.To)
	p.setEdgeDuration(w, edge.To, edge.From)
}

// UpdatePositions re-prices every edge touching the given positions.
func (p *Pathfinder) UpdatePositions(w *world.World, positions []grid.Position) {
	for _, pos := range positions {
		for _, neighbour := range grid.Neighbours(pos) {
			if !w.InBounds(neighbour) {
				continue
			}
			p.setEdgeDuration(w, pos, neighbour)
			p.setEdgeDuration(w, neighbour, pos)
		}
	}
}

// ManhattanHeuristic builds an admissible A* heuristic toward the target
// positions: minimum manhattan distance times the minimum edge cost.
func (p *Pathfinder) ManhattanHeuristic(to []grid.Position) func(int) uint64 {
	minCost := uint64(p.CostOf(p.duration.Min()))
	targets := make([]grid.Position, len(to))
	copy(targets, to)
	return func(node int) uint64 {
		pos := p.Position(node)
		best := -1
		for _, t := range targets {
			d := grid.Manhattan(pos, t)
			if best == -1 || d < best {
				best = d
			}
		}
		if best <= 0 {
			return 0
		}
		return uint64(best) * minCost
	}
}

func (p *Pathfinder) indices(positions []grid.Position) []int {
	out := make([]int, len(positions))
	for i, pos := range positions {
		out[i] = p.Index(pos)
	}
	return out
}

// FindPath runs A* between position sets, returning the node sequence of a
// lowest-cost path. An overlap returns an empty non-nil path.
func (p *Pathfinder) FindPath(from, to []grid.Position, maxCost *uint64) ([]grid.Position, bool) {
	edges, ok := p.net.FindPath(p.indices(from), p.indices(to), maxCost, p.ManhattanHeuristic(to))
	if !ok {
		return nil, false
	}
	if len(edges) == 0 {
		return []grid.Position{}, true
	}
	path := make([]grid.Position, 0, len(edges)+1)
	path = append(path, p.Position(edges[0].From))
	for _, e := range edges {
		path = append(path, p.Position(e.To))
	}
	return path, true
}

// DurationOfPath sums the real (unquantised) durations along a node path.
func (p *Pathfinder) DurationOfPath(w *world.World, path []grid.Position) (time.Duration, bool) {
	var total time.Duration
	for i := 1; i < len(path); i++ {
		d, ok := p.duration.Between(w, path[i-1], path[i])
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// PositionCost pairs a position with the travel duration to reach it.
type PositionCost struct {
	Position grid.Position
	Duration time.Duration
}

// PositionsWithin lists positions reachable from the sources within the
// duration bound.
func (p *Pathfinder) PositionsWithin(sources []grid.Position, max time.Duration) []PositionCost {
	maxCost := uint64(max) * 255 / uint64(p.duration.Max())
	nodes := p.net.NodesWithin(p.indices(sources), maxCost)
	out := make([]PositionCost, len(nodes))
	for i, nc := range nodes {
		out[i] = PositionCost{Position: p.Position(nc.Node), Duration: p.DurationOf(nc.Cost)}
	}
	return out
}

// Target is one closest-target result in position space.
type Target struct {
	Position grid.Position
	Path     []grid.Position
	Duration time.Duration
}

func (p *Pathfinder) InitTargets(name string) { p.net.InitTargets(name) }

func (p *Pathfinder) LoadTarget(name string, pos grid.Position, target bool) {
	p.net.LoadTarget(name, p.Index(pos), target)
}

// ClosestTargets finds the k closest loaded targets from the sources,
// including ties at the cut-off.
func (p *Pathfinder) ClosestTargets(sources []grid.Position, name string, k int) ([]Target, error) {
	raw, err := p.net.ClosestLoadedTargets(p.indices(sources), name, k)
	if err != nil {
		return nil, err
	}
	out := make([]Target, len(raw))
	for i, t := range raw {
		path := make([]grid.Position, len(t.Path))
		for j, node := range t.Path {
			path[j] = p.Position(node)
		}
		out[i] = Target{Position: p.Position(t.Node), Path: path, Duration: p.DurationOf(t.Cost)}
	}
	return out, nil
}

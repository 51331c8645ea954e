// Package world holds the mutable grid the simulation evolves: elevations,
// river and road junctions, visibility, and per-cell objects and resources.
package world

import (
	"fmt"

	"tradewinds.dev/internal/grid"
)

// RoadWidth is the junction width given to built roads.
const RoadWidth = 0.05

// World is row-major cell storage plus the global sea level. Fields are
// exported for the snapshot codec; mutate through the methods so junction
// symmetry holds.
type World struct {
	Width     int
	Height    int
	Cells     []Cell
	SeaLevel  float32
	MaxHeight float32
}

// New builds a world from a row-major elevation grid.
func New(width, height int, elevations []float32, seaLevel float32) *World {
	if len(elevations) != width*height {
		panic(fmt.Sprintf("elevation grid %d does not match %dx%d", len(elevations), width, height))
	}
	cells := make([]Cell, width*height)
	maxHeight := float32(0)
	for i, e := range elevations {
		cells[i].Elevation = e
		if e > maxHeight {
			maxHeight = e
		}
	}
	return &World{
		Width:     width,
		Height:    height,
		Cells:     cells,
		SeaLevel:  seaLevel,
		MaxHeight: maxHeight,
	}
}

func (w *World) InBounds(p grid.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.Width && p.Y < w.Height
}

// Cell returns the cell at p. Out-of-bounds access is a programming error.
func (w *World) Cell(p grid.Position) *Cell {
	if !w.InBounds(p) {
		panic(fmt.Sprintf("position %v out of bounds %dx%d", p, w.Width, w.Height))
	}
	return &w.Cells[p.Y*w.Width+p.X]
}

func (w *World) cellIfInBounds(p grid.Position) (*Cell, bool) {
	if !w.InBounds(p) {
		return nil, false
	}
	return &w.Cells[p.Y*w.Width+p.X], true
}

func (w *World) IsSea(p grid.Position) bool {
	cell, ok := w.cellIfInBounds(p)
	return ok && cell.Elevation <= w.SeaLevel
}

// AddRiver installs a river junction at p. Used by world generation and by
// tests building fixtures.
func (w *World) AddRiver(p grid.Position, junction grid.Junction) {
	w.Cell(p).River = junction
}

// SetRoad sets or clears the road over edge, keeping the directional flags
// of both cells in step and recomputing widths.
func (w *World) SetRoad(edge grid.Edge, state bool) {
	setWidth := func(j *grid.Junction1D) {
		if j.From || j.To {
			j.Width = RoadWidth
		} else {
			j.Width = 0
		}
	}
	from := w.Cell(edge.From).Road.Axis(edge.Horizontal())
	from.From = state
	setWidth(from)
	to := w.Cell(edge.To).Road.Axis(edge.Horizontal())
	to.To = state
	setWidth(to)
}

// PlanRoad records (or clears, with an unset PlannedAt) the scheduled build
// time of a road over edge on both cells.
func (w *World) PlanRoad(edge grid.Edge, when grid.PlannedAt) {
	w.Cell(edge.From).PlannedRoad.Axis(edge.Horizontal()).From = when
	w.Cell(edge.To).PlannedRoad.Axis(edge.Horizontal()).To = when
}

// RoadPlanned reports the scheduled build time for edge, if any.
func (w *World) RoadPlanned(edge grid.Edge) (uint64, bool) {
	cell, ok := w.cellIfInBounds(edge.From)
	if !ok {
		return 0, false
	}
	at := cell.PlannedRoad.Axis(edge.Horizontal()).From
	return at.When, at.OK
}

func (w *World) is(edge grid.Edge, junction func(*Cell) *grid.Junction) bool {
	cell, ok := w.cellIfInBounds(edge.From)
	if !ok {
		return false
	}
	return junction(cell).Axis(edge.Horizontal()).From
}

func (w *World) IsRoad(edge grid.Edge) bool {
	return w.is(edge, func(c *Cell) *grid.Junction { return &c.Road })
}

func (w *World) IsRiver(edge grid.Edge) bool {
	return w.is(edge, func(c *Cell) *grid.Junction { return &c.River })
}

// Rise is the elevation difference to minus from; ok is false when either
// endpoint is out of bounds.
func (w *World) Rise(from, to grid.Position) (float32, bool) {
	a, okA := w.cellIfInBounds(from)
	b, okB := w.cellIfInBounds(to)
	if !okA || !okB {
		return 0, false
	}
	return b.Elevation - a.Elevation, true
}

// TileBorder returns the four corner-to-corner edges of the tile at p.
func TileBorder(p grid.Position) [4]grid.Edge {
	corners := grid.Corners(p)
	var border [4]grid.Edge
	for i := 0; i < 4; i++ {
		border[i] = grid.NewEdge(corners[i], corners[(i+1)%4])
	}
	return border
}

// MaxAbsRise is the steepest absolute rise along the border of the tile at
// p, ignoring border edges that leave the grid.
func (w *World) MaxAbsRise(p grid.Position) float32 {
	max := float32(0)
	for _, edge := range TileBorder(p) {
		rise, ok := w.Rise(edge.From, edge.To)
		if !ok {
			continue
		}
		if rise < 0 {
			rise = -rise
		}
		if rise > max {
			max = rise
		}
	}
	return max
}

// LowestCorner is the lowest corner elevation of the tile at p; corners off
// the grid are ignored.
func (w *World) LowestCorner(p grid.Position) float32 {
	lowest := float32(0)
	first := true
	for _, corner := range grid.Corners(p) {
		cell, ok := w.cellIfInBounds(corner)
		if !ok {
			continue
		}
		if first || cell.Elevation < lowest {
			lowest = cell.Elevation
			first = false
		}
	}
	return lowest
}

// RevealAll marks every cell visible. Used by debug commands and tests.
func (w *World) RevealAll() {
	for i := range w.Cells {
		w.Cells[i].Visible = true
	}
}

// VisibleLandPositions counts revealed land cells; homeland population
// targets derive from it.
func (w *World) VisibleLandPositions() int {
	count := 0
	for i := range w.Cells {
		if w.Cells[i].Visible && w.Cells[i].Elevation > w.SeaLevel {
			count++
		}
	}
	return count
}

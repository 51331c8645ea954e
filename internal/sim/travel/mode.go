// Package travel classifies movement between adjacent world cells and
// prices it, independent of who is moving.
package travel

import (
	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/world"
)

// Mode is how an edge is traversed.
type Mode uint8

const (
	Walk Mode = iota
	Road
	PlannedRoad
	River
	Stream
	Sea
)

func (m Mode) String() string {
	switch m {
	case Walk:
		return "walk"
	case Road:
		return "road"
	case PlannedRoad:
		return "planned-road"
	case River:
		return "river"
	case Stream:
		return "stream"
	case Sea:
		return "sea"
	}
	return "unknown"
}

// Class groups modes by the medium travelled on.
type Class uint8

const (
	Land Class = iota
	Water
)

func (m Mode) Class() Class {
	switch m {
	case Sea, River, Stream:
		return Water
	}
	return Land
}

// ModeFn decides the travel mode between cells. IncludePlannedRoads is set
// on the route-planning instance and clear on the avatar-control instance.
type ModeFn struct {
	MinNavigableRiverWidth float32
	IncludePlannedRoads    bool
}

func (f ModeFn) navigableRiverAt(w *world.World, p grid.Position) bool {
	cell := w.Cell(p)
	return cell.River.Here() && cell.River.LongestSide() >= f.MinNavigableRiverWidth
}

// ModeBetween reports the mode for the edge from-to, or false when either
// endpoint is off the grid. Decision order: sea, road, planned road,
// navigable river, stream, walk.
func (f ModeFn) ModeBetween(w *world.World, from, to grid.Position) (Mode, bool) {
	if !w.InBounds(from) || !w.InBounds(to) {
		return 0, false
	}
	if w.IsSea(from) && w.IsSea(to) {
		return Sea, true
	}
	edge := grid.NewEdge(from, to)
	if w.IsRoad(edge) {
		return Road, true
	}
	if f.IncludePlannedRoads {
		if _, ok := w.RoadPlanned(edge); ok {
			return PlannedRoad, true
		}
	}
	if w.IsRiver(edge) {
		if f.navigableRiverAt(w, from) && f.navigableRiverAt(w, to) {
			return River, true
		}
		return Stream, true
	}
	return Walk, true
}

// ModeHere reports the dominant mode at a single cell.
func (f ModeFn) ModeHere(w *world.World, p grid.Position) (Mode, bool) {
	if !w.InBounds(p) {
		return 0, false
	}
	cell := w.Cell(p)
	switch {
	case w.IsSea(p):
		return Sea, true
	case f.navigableRiverAt(w, p):
		return River, true
	case cell.River.Here():
		return Stream, true
	case cell.Road.Here():
		return Road, true
	case f.IncludePlannedRoads && cell.PlannedRoad.Here():
		return PlannedRoad, true
	}
	return Walk, true
}

// ModesHere lists every mode present at a cell. Road and river coexist at a
// bridge.
func (f ModeFn) ModesHere(w *world.World, p grid.Position) []Mode {
	if !w.InBounds(p) {
		return nil
	}
	cell := w.Cell(p)
	if w.IsSea(p) {
		return []Mode{Sea}
	}
	var modes []Mode
	if cell.Road.Here() {
		modes = append(modes, Road)
	} else if f.IncludePlannedRoads && cell.PlannedRoad.Here() {
		modes = append(modes, PlannedRoad)
	}
	if f.navigableRiverAt(w, p) {
		modes = append(modes, River)
	} else if cell.River.Here() {
		modes = append(modes, Stream)
	}
	if len(modes) == 0 {
		modes = append(modes, Walk)
	}
	return modes
}

// Port reports the landing position when the step from-to crosses between
// land and water, which is how route gates are discovered.
func (f ModeFn) Port(w *world.World, from, to grid.Position) (grid.Position, bool) {
	fromMode, okFrom := f.ModeHere(w, from)
	toMode, okTo := f.ModeHere(w, to)
	if !okFrom || !okTo {
		return grid.Position{}, false
	}
	fromWater := fromMode.Class() == Water
	toWater := toMode.Class() == Water
	switch {
	case fromWater && !toWater:
		return to, true
	case !fromWater && toWater:
		return from, true
	}
	return grid.Position{}, false
}

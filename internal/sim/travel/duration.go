package travel

import (
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/world"
)

// Duration prices the traversal of one unit edge. Implementations return
// false for impassable edges. Min and Max bound every returned duration and
// drive cost quantisation.
type Duration interface {
	Between(w *world.World, from, to grid.Position) (time.Duration, bool)
	Min() time.Duration
	Max() time.Duration
}

// AvatarDuration prices edges for travellers: a flat per-mode duration with
// gradient limits on walking and upstream river travel.
type AvatarDuration struct {
	Modes                     ModeFn
	WalkDuration              time.Duration
	RoadDuration              time.Duration
	PlannedRoadDuration       time.Duration
	RiverDuration             time.Duration
	StreamDuration            time.Duration
	SeaDuration               time.Duration
	MaxWalkGradient           float32
	MaxNavigableRiverGradient float32
}

func (d AvatarDuration) Between(w *world.World, from, to grid.Position) (time.Duration, bool) {
	mode, ok := d.Modes.ModeBetween(w, from, to)
	if !ok {
		return 0, false
	}
	switch mode {
	case Sea:
		return d.SeaDuration, true
	case Road:
		return d.RoadDuration, true
	case PlannedRoad:
		return d.PlannedRoadDuration, true
	case River:
		rise, ok := w.Rise(from, to)
		if !ok || absf(rise) > d.MaxNavigableRiverGradient {
			return 0, false
		}
		return d.RiverDuration, true
	case Stream, Walk:
		rise, ok := w.Rise(from, to)
		if !ok || absf(rise) > d.MaxWalkGradient {
			return 0, false
		}
		if mode == Stream {
			return d.StreamDuration, true
		}
		return d.WalkDuration, true
	}
	return 0, false
}

func (d AvatarDuration) Min() time.Duration {
	min := d.WalkDuration
	for _, candidate := range []time.Duration{
		d.RoadDuration, d.PlannedRoadDuration, d.RiverDuration, d.StreamDuration, d.SeaDuration,
	} {
		if candidate < min {
			min = candidate
		}
	}
	return min
}

func (d AvatarDuration) Max() time.Duration {
	max := d.WalkDuration
	for _, candidate := range []time.Duration{
		d.RoadDuration, d.PlannedRoadDuration, d.RiverDuration, d.StreamDuration, d.SeaDuration,
	} {
		if candidate > max {
			max = candidate
		}
	}
	return max
}

// AutoRoadDuration prices edges for the road planner: an edge is a road
// candidate when both endpoints are land and the gradient is buildable.
type AutoRoadDuration struct {
	RoadDuration time.Duration
	MaxGradient  float32
}

func (d AutoRoadDuration) Between(w *world.World, from, to grid.Position) (time.Duration, bool) {
	if !w.InBounds(from) || !w.InBounds(to) {
		return 0, false
	}
	if w.IsSea(from) || w.IsSea(to) {
		return 0, false
	}
	rise, ok := w.Rise(from, to)
	if !ok || absf(rise) > d.MaxGradient {
		return 0, false
	}
	return d.RoadDuration, true
}

func (d AutoRoadDuration) Min() time.Duration { return d.RoadDuration }
func (d AutoRoadDuration) Max() time.Duration { return d.RoadDuration }

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Vehicle is what a traveller needs on an edge.
type Vehicle uint8

const (
	VehicleNone Vehicle = iota
	VehicleBoat
)

func (v Vehicle) String() string {
	if v == VehicleBoat {
		return "boat"
	}
	return "none"
}

// VehicleBetween maps the travel mode of an edge to the vehicle required.
func (f ModeFn) VehicleBetween(w *world.World, from, to grid.Position) (Vehicle, bool) {
	mode, ok := f.ModeBetween(w, from, to)
	if !ok {
		return VehicleNone, false
	}
	if mode.Class() == Water {
		return VehicleBoat, true
	}
	return VehicleNone, true
}

// Package bridge models spans over water: piers, segments, validated
// bridges, the edge-indexed store, and river pier discovery.
package bridge

import (
	"errors"
	"fmt"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/travel"
)

// Pier anchors a bridge at a cell. Piers compare and deduplicate by
// position only, so "is there a pier here?" ignores vehicle and platform.
type Pier struct {
	Position  grid.Position
	Elevation float32
	Platform  bool
	Rotation  grid.Rotation
	Vehicle   travel.Vehicle
}

// SamePosition is the pier equality the store relies on.
func (p Pier) SamePosition(other Pier) bool { return p.Position == other.Position }

// Segment joins two piers. Zero-length segments mark vehicle changes.
type Segment struct {
	From     Pier
	To       Pier
	Duration time.Duration
}

func (s Segment) reversed() Segment {
	return Segment{From: s.To, To: s.From, Duration: s.Duration}
}

// Type distinguishes discovered geometry from constructed bridges.
type Type uint8

const (
	Theoretical Type = iota
	Built
)

func (t Type) String() string {
	if t == Built {
		return "built"
	}
	return "theoretical"
}

// Bridge is a validated segment chain.
type Bridge struct {
	Segments []Segment
	Vehicle  travel.Vehicle
	Type     Type
}

var (
	ErrEmpty           = errors.New("bridge has no segments")
	ErrDiagonal        = errors.New("bridge endpoints do not share an axis")
	ErrDiagonalSegment = errors.New("bridge segment is diagonal")
	ErrDiscontinuous   = errors.New("bridge segments do not meet")
)

// New validates and returns the bridge.
func New(segments []Segment, vehicle travel.Vehicle, typ Type) (Bridge, error) {
	b := Bridge{Segments: segments, Vehicle: vehicle, Type: typ}
	if err := b.Validate(); err != nil {
		return Bridge{}, err
	}
	return b, nil
}

// Validate checks geometry: non-empty, non-diagonal overall and per
// segment, and continuous.
func (b Bridge) Validate() error {
	if len(b.Segments) == 0 {
		return ErrEmpty
	}
	start, end := b.Start().Position, b.End().Position
	if start.X != end.X && start.Y != end.Y {
		return ErrDiagonal
	}
	for _, s := range b.Segments {
		if s.From.Position.X != s.To.Position.X && s.From.Position.Y != s.To.Position.Y {
			return ErrDiagonalSegment
		}
	}
	for i := 1; i < len(b.Segments); i++ {
		if b.Segments[i-1].To.Position != b.Segments[i].From.Position {
			return ErrDiscontinuous
		}
	}
	return nil
}

func (b Bridge) Start() Pier { return b.Segments[0].From }
func (b Bridge) End() Pier   { return b.Segments[len(b.Segments)-1].To }

// TotalEdge is the canonical edge between the bridge's ends; it keys the
// store.
func (b Bridge) TotalEdge() grid.Edge {
	return grid.NewEdge(b.Start().Position, b.End().Position)
}

func (b Bridge) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range b.Segments {
		total += s.Duration
	}
	return total
}

// SegmentsOneWay yields the segments ordered for travel starting at from,
// which must be one of the bridge's ends.
func (b Bridge) SegmentsOneWay(from grid.Position) []Segment {
	switch from {
	case b.Start().Position:
		out := make([]Segment, len(b.Segments))
		copy(out, b.Segments)
		return out
	case b.End().Position:
		out := make([]Segment, 0, len(b.Segments))
		for i := len(b.Segments) - 1; i >= 0; i-- {
			out = append(out, b.Segments[i].reversed())
		}
		return out
	}
	panic(fmt.Sprintf("position %v is not an end of bridge %v", from, b.TotalEdge()))
}

// EdgeDuration prices one directed span for pathfinder updates.
type EdgeDuration struct {
	From     grid.Position
	To       grid.Position
	Duration time.Duration
}

// TotalEdgeDurations yields both directions of the bridge at its total
// duration.
func (b Bridge) TotalEdgeDurations() [2]EdgeDuration {
	d := b.TotalDuration()
	return [2]EdgeDuration{
		{From: b.Start().Position, To: b.End().Position, Duration: d},
		{From: b.End().Position, To: b.Start().Position, Duration: d},
	}
}

// Piers lists the pier chain deduplicated by position, first occurrence
// winning.
func (b Bridge) Piers() []Pier {
	seen := grid.PositionSet{}
	var piers []Pier
	add := func(p Pier) {
		if seen.Contains(p.Position) {
			return
		}
		seen.Add(p.Position)
		piers = append(piers, p)
	}
	add(b.Segments[0].From)
	for _, s := range b.Segments {
		add(s.To)
	}
	return piers
}

// Equal compares full bridge structure, not just position identity.
func (b Bridge) Equal(other Bridge) bool {
	if b.Vehicle != other.Vehicle || b.Type != other.Type || len(b.Segments) != len(other.Segments) {
		return false
	}
	for i := range b.Segments {
		if b.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// WithType clones the bridge with a new type; the edge build simulator uses
// it to promote Theoretical geometry to a Built candidate.
func (b Bridge) WithType(typ Type) Bridge {
	segments := make([]Segment, len(b.Segments))
	copy(segments, b.Segments)
	return Bridge{Segments: segments, Vehicle: b.Vehicle, Type: typ}
}

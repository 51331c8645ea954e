// Package build queues timed construction work and applies it to the
// world, bridges and settlements when due.
package build

import (
	"fmt"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/settlement"
)

// Kind discriminates a Build.
type Kind uint8

const (
	KindRoad Kind = iota
	KindBridge
	KindTown
	KindCrops
	KindRemoveRoad
	KindRemoveCrops
	KindRemoveTown
)

func (k Kind) String() string {
	switch k {
	case KindRoad:
		return "road"
	case KindBridge:
		return "bridge"
	case KindTown:
		return "town"
	case KindCrops:
		return "crops"
	case KindRemoveRoad:
		return "remove-road"
	case KindRemoveCrops:
		return "remove-crops"
	case KindRemoveTown:
		return "remove-town"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Build is one unit of construction work. Only the fields the Kind needs
// are meaningful.
type Build struct {
	Kind     Kind
	Edge     grid.Edge
	Bridge   bridge.Bridge
	Town     settlement.Settlement
	Position grid.Position
	Rotation grid.Rotation
}

func Road(edge grid.Edge) Build       { return Build{Kind: KindRoad, Edge: edge} }
func RemoveRoad(edge grid.Edge) Build { return Build{Kind: KindRemoveRoad, Edge: edge} }

func BridgeBuild(b bridge.Bridge) Build { return Build{Kind: KindBridge, Bridge: b} }

func Town(s settlement.Settlement) Build { return Build{Kind: KindTown, Town: s} }

func Crops(position grid.Position, rotation grid.Rotation) Build {
	return Build{Kind: KindCrops, Position: position, Rotation: rotation}
}

func RemoveCrops(position grid.Position) Build {
	return Build{Kind: KindRemoveCrops, Position: position}
}

func RemoveTown(position grid.Position) Build {
	return Build{Kind: KindRemoveTown, Position: position}
}

// Key identifies the subject of a build, so the queue holds at most one
// pending instruction per subject. Bridges key by their span; towns by
// their position.
type Key struct {
	Kind     Kind
	Edge     grid.Edge
	Position grid.Position
}

func (b Build) Key() Key {
	switch b.Kind {
	case KindRoad, KindRemoveRoad:
		return Key{Kind: b.Kind, Edge: b.Edge}
	case KindBridge:
		return Key{Kind: b.Kind, Edge: b.Bridge.TotalEdge()}
	case KindTown:
		return Key{Kind: b.Kind, Position: b.Town.Position}
	case KindCrops, KindRemoveCrops, KindRemoveTown:
		return Key{Kind: b.Kind, Position: b.Position}
	}
	panic(fmt.Sprintf("unknown build kind %d", b.Kind))
}

// Instruction schedules a build.
type Instruction struct {
	WhenMicros uint64
	What       Build
}

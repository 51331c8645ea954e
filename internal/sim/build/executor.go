package build

import (
	"log"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

// Target set names the executor maintains in both pathfinders.
const (
	TargetHomelands = "homelands"
	TargetTowns     = "towns"
)

// Executor applies due build instructions to the shared state. It runs on
// the builder actor, which holds the write side while applying.
type Executor struct {
	World       *world.World
	Bridges     bridge.Store
	Settlements settlement.Store
	Territory   *territory.Territory
	// Plan treats planned roads as roads; Avatar ignores them.
	Plan   *pathfind.Pathfinder
	Avatar *pathfind.Pathfinder
	Logger *log.Logger
}

// Drain applies every instruction due by nowMicros in when order.
func (e *Executor) Drain(q Queue, nowMicros uint64) []Instruction {
	due := q.TakeInstructionsBefore(nowMicros)
	for _, i := range due {
		e.Apply(i)
	}
	return due
}

// Apply dispatches one instruction to its builder.
func (e *Executor) Apply(i Instruction) {
	if e.Logger != nil {
		e.Logger.Printf("build %s at %d", i.What.Kind, i.WhenMicros)
	}
	switch i.What.Kind {
	case KindRoad:
		e.buildRoad(i.What.Edge)
	case KindRemoveRoad:
		e.removeRoad(i.What.Edge)
	case KindBridge:
		e.buildBridge(i.What.Bridge)
	case KindTown:
		e.buildTown(i.What.Town)
	case KindCrops:
		e.buildCrops(i.What.Position, i.What.Rotation)
	case KindRemoveCrops:
		e.removeCrops(i.What.Position)
	case KindRemoveTown:
		e.removeTown(i.What.Position)
	}
}

func (e *Executor) updateEdge(edge grid.Edge) {
	e.Plan.UpdateEdge(e.World, edge)
	e.Avatar.UpdateEdge(e.World, edge)
}

func (e *Executor) buildRoad(edge grid.Edge) {
	e.World.SetRoad(edge, true)
	e.World.PlanRoad(edge, grid.PlannedAt{})
	e.updateEdge(edge)
}

func (e *Executor) removeRoad(edge grid.Edge) {
	e.World.SetRoad(edge, false)
	e.updateEdge(edge)
}

func (e *Executor) buildBridge(b bridge.Bridge) {
	e.Bridges.Add(b)
	for _, d := range b.TotalEdgeDurations() {
		e.Plan.SetDuration(d.From, d.To, d.Duration)
		e.Avatar.SetDuration(d.From, d.To, d.Duration)
	}
	// A footbridge doubles as road surface; lay road junctions along it.
	if b.Vehicle == travel.VehicleNone {
		for _, segment := range b.Segments {
			for _, edge := range unitEdges(segment.From.Position, segment.To.Position) {
				e.World.SetRoad(edge, true)
				e.updateEdge(edge)
			}
		}
	}
}

func (e *Executor) buildTown(town settlement.Settlement) {
	e.Settlements.Add(town)
	e.loadTownTargets(town, true)
}

func (e *Executor) removeTown(position grid.Position) {
	town, ok := e.Settlements.Get(position)
	if !ok {
		return
	}
	e.Settlements.Remove(position)
	e.loadTownTargets(town, false)
	e.Territory.RemoveController(position)
}

func (e *Executor) loadTownTargets(town settlement.Settlement, state bool) {
	name := TargetTowns
	if town.Class == settlement.Homeland {
		name = TargetHomelands
	}
	for _, corner := range grid.Corners(town.Position) {
		if !e.Plan.InBounds(corner) {
			continue
		}
		e.Plan.LoadTarget(name, corner, state)
		e.Avatar.LoadTarget(name, corner, state)
	}
}

func (e *Executor) buildCrops(position grid.Position, rotation grid.Rotation) {
	e.World.Cell(position).Object = world.WorldObject{Kind: world.ObjectCrop, Rotation: rotation}
}

func (e *Executor) removeCrops(position grid.Position) {
	cell := e.World.Cell(position)
	if cell.Object.Kind == world.ObjectCrop {
		cell.Object = world.WorldObject{}
	}
}

func unitEdges(from, to grid.Position) []grid.Edge {
	if from == to {
		return nil
	}
	edge := grid.NewEdge(from, to)
	var out []grid.Edge
	cursor := edge.From
	for cursor != edge.To {
		var next grid.Position
		if edge.Horizontal() {
			next = cursor.Add(1, 0)
		} else {
			next = cursor.Add(0, 1)
		}
		out = append(out, grid.NewEdge(cursor, next))
		cursor = next
	}
	return out
}

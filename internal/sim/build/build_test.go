package build

import (
	"testing"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

func TestQueueSmallerWhenWins(t *testing.T) {
	q := Queue{}
	edge := grid.NewEdge(grid.P(0, 0), grid.P(1, 0))

	if !q.Insert(Instruction{WhenMicros: 10, What: Road(edge)}) {
		t.Fatalf("first insert rejected")
	}
	if q.Insert(Instruction{WhenMicros: 20, What: Road(edge)}) {
		t.Fatalf("later instruction replaced earlier")
	}
	if !q.Insert(Instruction{WhenMicros: 5, What: Road(edge)}) {
		t.Fatalf("earlier instruction rejected")
	}
	if len(q) != 1 {
		t.Fatalf("expected one instruction per key, got %d", len(q))
	}
	when, ok := q.When(Road(edge).Key())
	if !ok || when != 5 {
		t.Fatalf("when: got %d %v", when, ok)
	}
}

func TestTakeInstructionsBeforeOrdersByWhen(t *testing.T) {
	q := Queue{}
	q.Insert(Instruction{WhenMicros: 30, What: Road(grid.NewEdge(grid.P(0, 0), grid.P(1, 0)))})
	q.Insert(Instruction{WhenMicros: 10, What: Road(grid.NewEdge(grid.P(1, 0), grid.P(2, 0)))})
	q.Insert(Instruction{WhenMicros: 20, What: RemoveCrops(grid.P(3, 3))})
	q.Insert(Instruction{WhenMicros: 99, What: Road(grid.NewEdge(grid.P(5, 0), grid.P(6, 0)))})

	due := q.TakeInstructionsBefore(30)
	if len(due) != 3 {
		t.Fatalf("expected 3 due instructions, got %d", len(due))
	}
	if due[0].WhenMicros != 10 || due[1].WhenMicros != 20 || due[2].WhenMicros != 30 {
		t.Fatalf("not ordered by when: %v", due)
	}
	if len(q) != 1 {
		t.Fatalf("undue instruction drained")
	}
}

func flat(width, height int, elevation float32) *world.World {
	elevations := make([]float32, width*height)
	for i := range elevations {
		elevations[i] = elevation
	}
	return world.New(width, height, elevations, 0.5)
}

func duration(includePlanned bool) travel.AvatarDuration {
	return travel.AvatarDuration{
		Modes:                     travel.ModeFn{MinNavigableRiverWidth: 0.5, IncludePlannedRoads: includePlanned},
		WalkDuration:              4 * time.Millisecond,
		RoadDuration:              time.Millisecond,
		PlannedRoadDuration:       time.Millisecond,
		RiverDuration:             2 * time.Millisecond,
		StreamDuration:            6 * time.Millisecond,
		SeaDuration:               time.Millisecond,
		MaxWalkGradient:           0.5,
		MaxNavigableRiverGradient: 0.1,
	}
}

func executor(w *world.World) *Executor {
	plan := pathfind.New(w, duration(true))
	avatar := pathfind.New(w, duration(false))
	for _, p := range []*pathfind.Pathfinder{plan, avatar} {
		p.InitTargets(TargetHomelands)
		p.InitTargets(TargetTowns)
	}
	return &Executor{
		World:       w,
		Bridges:     bridge.Store{},
		Settlements: settlement.Store{},
		Territory:   territory.New(),
		Plan:        plan,
		Avatar:      avatar,
	}
}

func TestApplyRoadClearsPlanAndReprices(t *testing.T) {
	w := flat(3, 3, 1.0)
	e := executor(w)
	edge := grid.NewEdge(grid.P(0, 0), grid.P(1, 0))
	w.PlanRoad(edge, grid.PlannedAt{When: 10, OK: true})

	e.Apply(Instruction{WhenMicros: 10, What: Road(edge)})

	if !w.IsRoad(edge) {
		t.Fatalf("road not built")
	}
	if _, ok := w.RoadPlanned(edge); ok {
		t.Fatalf("plan not cleared")
	}
	roadCost := e.Avatar.CostOf(time.Millisecond)
	for _, out := range e.Avatar.Network().Out(e.Avatar.Index(edge.From)) {
		if out.To == e.Avatar.Index(edge.To) && out.Cost != roadCost {
			t.Fatalf("avatar pathfinder not repriced: %v", out)
		}
	}

	e.Apply(Instruction{WhenMicros: 20, What: RemoveRoad(edge)})
	if w.IsRoad(edge) {
		t.Fatalf("road not removed")
	}
}

func TestApplyBridge(t *testing.T) {
	w := flat(3, 3, 1.0)
	e := executor(w)
	b, err := bridge.New([]bridge.Segment{
		{
			From:     bridge.Pier{Position: grid.P(0, 1), Elevation: 1.0, Platform: true},
			To:       bridge.Pier{Position: grid.P(2, 1), Elevation: 1.0},
			Duration: time.Millisecond,
		},
	}, travel.VehicleNone, bridge.Built)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}

	e.Apply(Instruction{WhenMicros: 10, What: BridgeBuild(b)})

	if !e.Bridges.HasType(b.TotalEdge(), bridge.Built) {
		t.Fatalf("bridge not stored")
	}
	fromIndex := e.Plan.Index(grid.P(0, 1))
	toIndex := e.Plan.Index(grid.P(2, 1))
	found := false
	for _, out := range e.Plan.Network().Out(fromIndex) {
		if out.To == toIndex {
			found = true
		}
	}
	if !found {
		t.Fatalf("bridge span not priced in pathfinder")
	}
	// A vehicle-free bridge lays road along its span.
	if !w.IsRoad(grid.NewEdge(grid.P(0, 1), grid.P(1, 1))) {
		t.Fatalf("bridge road surface missing")
	}
}

func TestApplyTownAndRemoveTown(t *testing.T) {
	w := flat(4, 4, 1.0)
	e := executor(w)
	town := settlement.Settlement{
		Class:             settlement.Town,
		Position:          grid.P(1, 1),
		Name:              "Easthaven",
		Nation:            "A",
		CurrentPopulation: 1.1,
		TargetPopulation:  1.1,
	}

	e.Apply(Instruction{WhenMicros: 10, What: Town(town)})
	if _, ok := e.Settlements.Get(grid.P(1, 1)); !ok {
		t.Fatalf("town not added")
	}
	targets, err := e.Plan.ClosestTargets([]grid.Position{grid.P(1, 1)}, TargetTowns, 1)
	if err != nil || len(targets) == 0 {
		t.Fatalf("town corners not targeted: %v %v", targets, err)
	}

	e.Apply(Instruction{WhenMicros: 20, What: RemoveTown(grid.P(1, 1))})
	if _, ok := e.Settlements.Get(grid.P(1, 1)); ok {
		t.Fatalf("town not removed")
	}
	targets, err = e.Plan.ClosestTargets([]grid.Position{grid.P(1, 1)}, TargetTowns, 1)
	if err != nil {
		t.Fatalf("closest targets: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("town targets not cleared: %v", targets)
	}
}

func TestApplyCrops(t *testing.T) {
	w := flat(3, 3, 1.0)
	e := executor(w)
	p := grid.P(1, 1)

	e.Apply(Instruction{WhenMicros: 10, What: Crops(p, grid.Left)})
	if w.Cell(p).Object.Kind != world.ObjectCrop || w.Cell(p).Object.Rotation != grid.Left {
		t.Fatalf("crops not planted: %+v", w.Cell(p).Object)
	}
	e.Apply(Instruction{WhenMicros: 20, What: RemoveCrops(p)})
	if w.Cell(p).Object.Kind != world.ObjectNone {
		t.Fatalf("crops not removed")
	}
}

package pathfind

import (
	"reflect"
	"testing"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

func flat(width, height int, elevation float32) *world.World {
	elevations := make([]float32, width*height)
	for i := range elevations {
		elevations[i] = elevation
	}
	return world.New(width, height, elevations, 0.5)
}

func duration() travel.AvatarDuration {
	return travel.AvatarDuration{
		Modes:                     travel.ModeFn{MinNavigableRiverWidth: 0.5, IncludePlannedRoads: true},
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

func TestIndexRoundTrip(t *testing.T) {
	p := New(flat(4, 3, 1.0), duration())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			pos := grid.P(x, y)
			if got := p.Position(p.Index(pos)); got != pos {
				t.Fatalf("index round trip: %v -> %v", pos, got)
			}
		}
	}
}

func TestIndexOutOfBoundsPanics(t *testing.T) {
	p := New(flat(2, 2, 1.0), duration())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	p.Index(grid.P(2, 0))
}

func TestCostOfQuantisation(t *testing.T) {
	p := New(flat(2, 2, 1.0), duration())
	if got := p.CostOf(6 * time.Millisecond); got != 255 {
		t.Fatalf("max duration cost: got %d", got)
	}
	if got := p.CostOf(time.Nanosecond); got != 1 {
		t.Fatalf("tiny duration cost: got %d", got)
	}
}

func TestCostOfOverMaxPanics(t *testing.T) {
	p := New(flat(2, 2, 1.0), duration())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	p.CostOf(7 * time.Millisecond)
}

func TestFindPathPrefersRoads(t *testing.T) {
	w := flat(3, 3, 1.0)
	w.SetRoad(grid.NewEdge(grid.P(0, 0), grid.P(1, 0)), true)
	w.SetRoad(grid.NewEdge(grid.P(1, 0), grid.P(2, 0)), true)
	w.SetRoad(grid.NewEdge(grid.P(2, 0), grid.P(2, 1)), true)
	p := New(w, duration())

	path, ok := p.FindPath([]grid.Position{grid.P(0, 0)}, []grid.Position{grid.P(2, 1)}, nil)
	if !ok {
		t.Fatalf("expected a path")
	}
	want := []grid.Position{grid.P(0, 0), grid.P(1, 0), grid.P(2, 0), grid.P(2, 1)}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("path: got %v want %v", path, want)
	}
}

func TestFindPathOverlapReturnsEmpty(t *testing.T) {
	p := New(flat(2, 2, 1.0), duration())
	path, ok := p.FindPath([]grid.Position{grid.P(0, 0)}, []grid.Position{grid.P(0, 0)}, nil)
	if !ok || path == nil || len(path) != 0 {
		t.Fatalf("expected empty path, got %v %v", path, ok)
	}
}

func TestUpdateEdgeRepricesBothDirections(t *testing.T) {
	w := flat(2, 1, 1.0)
	p := New(w, duration())
	edge := grid.NewEdge(grid.P(0, 0), grid.P(1, 0))
	walkCost := p.CostOf(4 * time.Millisecond)
	roadCost := p.CostOf(time.Millisecond)

	for _, e := range p.Network().Out(0) {
		if e.Cost != walkCost {
			t.Fatalf("expected walk cost %d, got %d", walkCost, e.Cost)
		}
	}
	w.SetRoad(edge, true)
	p.UpdateEdge(w, edge)
	if out := p.Network().Out(0); len(out) != 1 || out[0].Cost != roadCost {
		t.Fatalf("forward edge not repriced: %v", out)
	}
	if out := p.Network().Out(1); len(out) != 1 || out[0].Cost != roadCost {
		t.Fatalf("reverse edge not repriced: %v", out)
	}
}

func TestImpassableEdgeRemoved(t *testing.T) {
	w := flat(2, 1, 1.0)
	p := New(w, duration())
	w.Cell(grid.P(1, 0)).Elevation = 5.0
	p.UpdateEdge(w, grid.NewEdge(grid.P(0, 0), grid.P(1, 0)))
	if out := p.Network().Out(0); len(out) != 0 {
		t.Fatalf("expected impassable edge removed, got %v", out)
	}
}

func TestPositionsWithin(t *testing.T) {
	w := flat(3, 1, 1.0)
	p := New(w, duration())
	got := p.PositionsWithin([]grid.Position{grid.P(0, 0)}, 4*time.Millisecond)
	if len(got) != 2 {
		t.Fatalf("expected 2 positions within one walk, got %v", got)
	}
	if got[0].Position != grid.P(0, 0) || got[1].Position != grid.P(1, 0) {
		t.Fatalf("unexpected positions %v", got)
	}
}

func TestClosestTargets(t *testing.T) {
	w := flat(4, 1, 1.0)
	p := New(w, duration())
	p.InitTargets("towns")
	p.LoadTarget("towns", grid.P(2, 0), true)
	p.LoadTarget("towns", grid.P(3, 0), true)

	got, err := p.ClosestTargets([]grid.Position{grid.P(0, 0)}, "towns", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Position != grid.P(2, 0) {
		t.Fatalf("unexpected targets %v", got)
	}
	want := []grid.Position{grid.P(0, 0), grid.P(1, 0), grid.P(2, 0)}
	if !reflect.DeepEqual(got[0].Path, want) {
		t.Fatalf("path: got %v want %v", got[0].Path, want)
	}
}

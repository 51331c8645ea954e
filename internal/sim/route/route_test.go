package route

import (
	"testing"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

func key(destination grid.Position) Key {
	return Key{
		Settlement:  grid.P(0, 0),
		Resource:    world.ResourceWood,
		Destination: destination,
	}
}

func eastRoute(traffic int, duration time.Duration) Route {
	return Route{
		Path:        []grid.Position{grid.P(0, 0), grid.P(1, 0), grid.P(2, 0)},
		StartMicros: 100,
		Duration:    duration,
		Traffic:     traffic,
	}
}

func TestChanges(t *testing.T) {
	unchanged := key(grid.P(2, 0))
	updated := key(grid.P(3, 0))
	added := key(grid.P(4, 0))
	removed := key(grid.P(5, 0))

	previous := map[Key]Route{
		unchanged: eastRoute(1, time.Millisecond),
		updated:   eastRoute(1, time.Millisecond),
		removed:   eastRoute(2, time.Millisecond),
	}
	next := map[Key]Route{
		unchanged: eastRoute(1, time.Millisecond),
		updated:   eastRoute(5, time.Millisecond),
		added:     eastRoute(3, time.Millisecond),
	}

	changes := Changes(previous, next)
	kinds := map[Key]ChangeKind{}
	for _, c := range changes {
		kinds[c.Key] = c.Kind
	}
	if kinds[unchanged] != ChangeNoChange {
		t.Fatalf("unchanged: got %v", kinds[unchanged])
	}
	if kinds[updated] != ChangeUpdated {
		t.Fatalf("updated: got %v", kinds[updated])
	}
	if kinds[added] != ChangeNew {
		t.Fatalf("added: got %v", kinds[added])
	}
	if kinds[removed] != ChangeRemoved {
		t.Fatalf("removed: got %v", kinds[removed])
	}
	// Removed entries come last.
	if changes[len(changes)-1].Kind != ChangeRemoved {
		t.Fatalf("expected removed change last, got %v", changes[len(changes)-1].Kind)
	}
}

func TestSameIgnoresStartMicros(t *testing.T) {
	a := eastRoute(1, time.Millisecond)
	b := eastRoute(1, time.Millisecond)
	b.StartMicros = 999
	if !a.Same(b) {
		t.Fatalf("routes with different start should still match")
	}
	b.Traffic = 2
	if a.Same(b) {
		t.Fatalf("routes with different traffic should differ")
	}
}

func TestApplySetStoresAndDrops(t *testing.T) {
	routes := Routes{}
	k := key(grid.P(2, 0))
	setKey := k.SetKey()

	changes := routes.ApplySet(setKey, map[Key]Route{k: eastRoute(1, time.Millisecond)})
	if len(changes) != 1 || changes[0].Kind != ChangeNew {
		t.Fatalf("first apply: got %v", changes)
	}
	if _, ok := routes.Get(k); !ok {
		t.Fatalf("route not stored")
	}

	changes = routes.ApplySet(setKey, map[Key]Route{})
	if len(changes) != 1 || changes[0].Kind != ChangeRemoved {
		t.Fatalf("second apply: got %v", changes)
	}
	if len(routes) != 0 {
		t.Fatalf("empty set not dropped")
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

func TestGeneratorRoutes(t *testing.T) {
	w := flat(5, 5, 1.0)
	w.Cell(grid.P(3, 0)).Resources.Add(world.ResourceWood)
	plan := pathfind.New(w, duration(true))
	price := pathfind.New(w, duration(false))
	plan.InitTargets(TargetSetName(world.ResourceWood))
	plan.LoadTarget(TargetSetName(world.ResourceWood), grid.P(3, 0), true)

	g := &Generator{Plan: plan, Price: price}
	setKey, routes := g.Routes(w, Demand{
		Settlement: grid.P(0, 0),
		Resource:   world.ResourceWood,
		Quantity:   4,
		Sources:    1,
	}, 1000)

	if setKey.Settlement != grid.P(0, 0) || setKey.Resource != world.ResourceWood {
		t.Fatalf("unexpected set key %v", setKey)
	}
	if len(routes) != 1 {
		t.Fatalf("expected one route, got %v", routes)
	}
	k := Key{Settlement: grid.P(0, 0), Resource: world.ResourceWood, Destination: grid.P(3, 0)}
	r, ok := routes[k]
	if !ok {
		t.Fatalf("route key missing: %v", routes)
	}
	if r.Traffic != 4 || r.StartMicros != 1000 {
		t.Fatalf("unexpected route %+v", r)
	}
	// Two walk steps from the nearest corner (1,0).
	if r.Duration != 8*time.Millisecond {
		t.Fatalf("duration: got %v", r.Duration)
	}
	if r.FirstVisitMicros() != 1000+8000 {
		t.Fatalf("first visit: got %d", r.FirstVisitMicros())
	}
}

func TestGeneratorZeroDemand(t *testing.T) {
	w := flat(3, 3, 1.0)
	plan := pathfind.New(w, duration(true))
	plan.InitTargets(TargetSetName(world.ResourceWood))
	g := &Generator{Plan: plan, Price: pathfind.New(w, duration(false))}
	_, routes := g.Routes(w, Demand{Settlement: grid.P(0, 0), Resource: world.ResourceWood}, 0)
	if len(routes) != 0 {
		t.Fatalf("expected no routes for zero demand, got %v", routes)
	}
}

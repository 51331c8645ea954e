package buildsim

import (
	"math/rand"
	"testing"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/traffic"
	"tradewinds.dev/internal/sim/world"
)

func positionSimulator(w *world.World) *PositionSimulator {
	return &PositionSimulator{
		World:                 w,
		Territory:             territory.New(),
		Traffic:               traffic.Positions{},
		Gates:                 traffic.Gates{},
		Routes:                route.Routes{},
		Settlements:           settlement.Store{},
		Nations:               settlement.Nations{},
		Queue:                 build.Queue{},
		Rng:                   rand.New(rand.NewSource(1)),
		CliffGradient:         0.3,
		InitialTownPopulation: 1.1,
		RemovalPopulation:     0.3,
	}
}

// terminatingRoute wires one route of the given traffic ending at
// destination into the simulator's stores and returns its key.
func terminatingRoute(s *PositionSimulator, origin, destination grid.Position, resource world.Resource, trafficCount int) route.Key {
	key := route.Key{Settlement: origin, Resource: resource, Destination: destination}
	r := route.Route{
		Path:        []grid.Position{origin, destination},
		StartMicros: 1,
		Duration:    10 * time.Microsecond,
		Traffic:     trafficCount,
	}
	set, ok := s.Routes[key.SetKey()]
	if !ok {
		set = map[route.Key]route.Route{}
		s.Routes[key.SetKey()] = set
	}
	set[key] = r
	for _, p := range r.Path {
		keys, ok := s.Traffic[p]
		if !ok {
			keys = traffic.KeySet{}
			s.Traffic[p] = keys
		}
		keys[key] = struct{}{}
	}
	return key
}

func TestTownFoundedOnSurroundingTiles(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	s.Settlements.Add(settlement.Settlement{
		Class: settlement.Homeland, Position: grid.P(0, 0), Nation: "norsca",
	})
	s.Nations["norsca"] = settlement.NewNation("norsca", "#804000", []string{"Skarvik"})
	terminatingRoute(s, grid.P(0, 0), grid.P(1, 1), world.ResourceGold, 1)

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	tiles := []grid.Position{grid.P(1, 1), grid.P(0, 1), grid.P(1, 0), grid.P(0, 0)}
	for _, tile := range tiles {
		i, ok := s.Queue[build.Key{Kind: build.KindTown, Position: tile}]
		if !ok {
			t.Fatalf("no town instruction for tile %v", tile)
		}
		if i.WhenMicros != 11 {
			t.Fatalf("town at %v queued for %d, want 11", tile, i.WhenMicros)
		}
		town := i.What.Town
		if town.Class != settlement.Town || town.Nation != "norsca" || town.Name != "Skarvik" {
			t.Fatalf("town fields: %+v", town)
		}
		if town.CurrentPopulation != 1.1 || town.TargetPopulation != 1.1 {
			t.Fatalf("town population: %+v", town)
		}
		if town.GapHalfLife != 0 || town.LastPopulationUpdateMicros != 11 {
			t.Fatalf("town update state: %+v", town)
		}
	}
}

func TestTownNotFoundedOnControlledPosition(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	s.Settlements.Add(settlement.Settlement{
		Class: settlement.Homeland, Position: grid.P(0, 0), Nation: "norsca",
	})
	s.Nations["norsca"] = settlement.NewNation("norsca", "#804000", []string{"Skarvik"})
	terminatingRoute(s, grid.P(0, 0), grid.P(1, 1), world.ResourceGold, 1)
	s.Territory.UpdateDurations(grid.P(0, 0), []territory.PositionDuration{
		{Position: grid.P(1, 1), Duration: time.Millisecond},
	}, 0)

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	if len(s.Queue) != 0 {
		t.Fatalf("town founded on controlled position: %v", s.Queue)
	}
}

func TestTownNotFoundedOnCliffOrHiddenTiles(t *testing.T) {
	elevations := make([]float32, 9)
	for i := range elevations {
		elevations[i] = 1.0
	}
	elevations[2*3+2] = 2.0 // corner (2,2) makes tile (1,1) a cliff
	w := testWorld(elevations)
	w.RevealAll()
	w.Cell(grid.P(0, 0)).Visible = false
	s := positionSimulator(w)
	s.Settlements.Add(settlement.Settlement{
		Class: settlement.Homeland, Position: grid.P(0, 0), Nation: "norsca",
	})
	s.Nations["norsca"] = settlement.NewNation("norsca", "#804000", []string{"Skarvik"})
	terminatingRoute(s, grid.P(0, 0), grid.P(1, 1), world.ResourceGold, 1)

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	if _, ok := s.Queue[build.Key{Kind: build.KindTown, Position: grid.P(1, 1)}]; ok {
		t.Fatalf("town founded on cliff tile")
	}
	if _, ok := s.Queue[build.Key{Kind: build.KindTown, Position: grid.P(0, 0)}]; ok {
		t.Fatalf("town founded on hidden tile")
	}
	if _, ok := s.Queue[build.Key{Kind: build.KindTown, Position: grid.P(1, 0)}]; !ok {
		t.Fatalf("flat visible tile skipped")
	}
}

func TestTownFoundedAtGate(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	s.Settlements.Add(settlement.Settlement{
		Class: settlement.Homeland, Position: grid.P(0, 0), Nation: "norsca",
	})
	s.Nations["norsca"] = settlement.NewNation("norsca", "#804000", []string{"Skarvik"})
	key := terminatingRoute(s, grid.P(0, 0), grid.P(2, 2), world.ResourceGold, 1)
	s.Traffic[grid.P(1, 1)] = traffic.KeySet{key: {}}
	s.Gates[key] = grid.NewPositionSet(grid.P(1, 1))

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	if _, ok := s.Queue[build.Key{Kind: build.KindTown, Position: grid.P(1, 1)}]; !ok {
		t.Fatalf("no town founded at gate position")
	}
}

func TestCropsPlantedOnFarmlandRoute(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	s.Territory.UpdateDurations(grid.P(0, 0), []territory.PositionDuration{
		{Position: grid.P(1, 1), Duration: time.Millisecond},
	}, 0)
	w.Cell(grid.P(1, 1)).Resources.Add(world.ResourceFarmland)
	terminatingRoute(s, grid.P(0, 0), grid.P(1, 1), world.ResourceFarmland, 1)

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	i, ok := s.Queue[build.Key{Kind: build.KindCrops, Position: grid.P(1, 1)}]
	if !ok {
		t.Fatalf("no crops instruction: %v", s.Queue)
	}
	if i.WhenMicros != 11 {
		t.Fatalf("crops queued for %d, want 11", i.WhenMicros)
	}
}

func TestCropsNotPlantedWithoutFarmlandResource(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	s.Territory.UpdateDurations(grid.P(0, 0), []territory.PositionDuration{
		{Position: grid.P(1, 1), Duration: time.Millisecond},
	}, 0)
	terminatingRoute(s, grid.P(0, 0), grid.P(1, 1), world.ResourceFarmland, 1)

	s.RefreshPositions(grid.NewPositionSet(grid.P(1, 1)), 0)

	if _, ok := s.Queue[build.Key{Kind: build.KindCrops, Position: grid.P(1, 1)}]; ok {
		t.Fatalf("crops planted without farmland resource")
	}
}

func TestCropsRemovedWhenLastRouteGone(t *testing.T) {
	w := flatWorld()
	w.RevealAll()
	s := positionSimulator(w)
	position := grid.P(1, 1)
	w.Cell(position).Resources.Add(world.ResourceFarmland)
	w.Cell(position).Object = world.WorldObject{Kind: world.ObjectCrop}
	s.Queue.Insert(build.Instruction{WhenMicros: 99, What: build.Crops(position, grid.Up)})

	s.RefreshPositions(grid.NewPositionSet(position), 50)

	if _, ok := s.Queue[build.Key{Kind: build.KindCrops, Position: position}]; ok {
		t.Fatalf("pending planting not cancelled")
	}
	i, ok := s.Queue[build.Key{Kind: build.KindRemoveCrops, Position: position}]
	if !ok || i.WhenMicros != 50 {
		t.Fatalf("remove-crops instruction: %+v %v", i, ok)
	}
}

func TestRemoveTownBelowPopulationWithNoTraffic(t *testing.T) {
	w := flatWorld()
	s := positionSimulator(w)
	town := settlement.Settlement{
		Class:             settlement.Town,
		Position:          grid.P(1, 1),
		CurrentPopulation: 0.2,
	}

	if !s.TryRemoveTown(town, nil, 42) {
		t.Fatalf("town not removed")
	}
	i, ok := s.Queue[build.Key{Kind: build.KindRemoveTown, Position: grid.P(1, 1)}]
	if !ok || i.WhenMicros != 42 {
		t.Fatalf("remove-town instruction: %+v %v", i, ok)
	}
}

func TestTownNotRemovedWithTrafficOrPopulation(t *testing.T) {
	w := flatWorld()
	s := positionSimulator(w)
	town := settlement.Settlement{Class: settlement.Town, Position: grid.P(1, 1), CurrentPopulation: 0.2}

	if s.TryRemoveTown(town, []settlement.TrafficSummary{{Nation: "norsca", TrafficShare: 1}}, 42) {
		t.Fatalf("town with traffic removed")
	}
	town.CurrentPopulation = 0.5
	if s.TryRemoveTown(town, nil, 42) {
		t.Fatalf("populous town removed")
	}
	homeland := settlement.Settlement{Class: settlement.Homeland, Position: grid.P(0, 0)}
	if s.TryRemoveTown(homeland, nil, 42) {
		t.Fatalf("homeland removed")
	}
}

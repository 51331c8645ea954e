package buildsim

import (
	"log"
	"math/rand"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/traffic"
	"tradewinds.dev/internal/sim/world"
)

// PositionSimulator turns refreshed positions into town and crop
// instructions, and tears both down when their routes disappear.
type PositionSimulator struct {
	World       *world.World
	Territory   *territory.Territory
	Traffic     traffic.Positions
	Gates       traffic.Gates
	Routes      route.Routes
	Settlements settlement.Store
	Nations     settlement.Nations
	Queue       build.Queue
	Rng         *rand.Rand

	CliffGradient         float32
	InitialTownPopulation float64
	RemovalPopulation     float64
	Logger                *log.Logger
}

// RefreshPositions re-evaluates every refreshed position.
func (s *PositionSimulator) RefreshPositions(positions grid.PositionSet, nowMicros uint64) {
	for position := range positions {
		s.tryBuildTown(position)
		s.tryBuildCrops(position)
		s.tryRemoveCrops(position, nowMicros)
	}
}

// tryBuildTown founds towns on the tiles around a position that routes
// terminate at or port through, provided nobody controls it yet.
func (s *PositionSimulator) tryBuildTown(position grid.Position) {
	keys := s.townRouteKeys(position)
	if len(keys) == 0 || s.Territory.AnyoneControls(position) {
		return
	}
	tiles := s.townTiles(position)
	if len(tiles) == 0 {
		return
	}

	var bestKey route.Key
	var best route.Route
	found := false
	totalTraffic := 0
	for _, key := range keys {
		r, ok := s.Routes.Get(key)
		if !ok {
			continue
		}
		totalTraffic += r.Traffic
		if !found || r.FirstVisitMicros() < best.FirstVisitMicros() {
			bestKey, best, found = key, r, true
		}
	}
	if !found || totalTraffic == 0 {
		return
	}

	origin, ok := s.Settlements.Get(bestKey.Settlement)
	if !ok {
		return
	}
	name, err := s.Nations.RandomTownName(origin.Nation, s.Rng)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Printf("no town name for %v: %v", position, err)
		}
		return
	}

	when := best.FirstVisitMicros()
	for _, tile := range tiles {
		town := settlement.Settlement{
			Class:                      settlement.Town,
			Position:                   tile,
			Name:                       name,
			Nation:                     origin.Nation,
			CurrentPopulation:          s.InitialTownPopulation,
			TargetPopulation:           s.InitialTownPopulation,
			GapHalfLife:                0,
			LastPopulationUpdateMicros: when,
		}
		s.Queue.Insert(build.Instruction{WhenMicros: when, What: build.Town(town)})
	}
	if s.Logger != nil {
		s.Logger.Printf("planned town %q on %d tiles around %v at %d", name, len(tiles), position, when)
	}
}

// townRouteKeys lists the routes that either terminate at the position or
// cross between land and water there.
func (s *PositionSimulator) townRouteKeys(position grid.Position) []route.Key {
	var keys []route.Key
	for key := range s.Traffic[position] {
		if key.Destination == position || s.Gates[key].Contains(position) {
			keys = append(keys, key)
		}
	}
	return keys
}

// townTiles lists the tiles cornered on position that are visible, on land
// and flat enough to settle.
func (s *PositionSimulator) townTiles(position grid.Position) []grid.Position {
	anchors := [4]grid.Position{
		position,
		position.Add(-1, 0),
		position.Add(0, -1),
		position.Add(-1, -1),
	}
	var tiles []grid.Position
	for _, anchor := range anchors {
		if !s.World.InBounds(anchor) || !s.World.InBounds(anchor.Add(1, 1)) {
			continue
		}
		if !s.World.Cell(anchor).Visible || s.World.IsSea(anchor) {
			continue
		}
		if s.World.MaxAbsRise(anchor) >= s.CliffGradient {
			continue
		}
		tiles = append(tiles, anchor)
	}
	return tiles
}

func (s *PositionSimulator) farmRouteFirstVisit(position grid.Position) (uint64, bool) {
	var earliest uint64
	found := false
	for key := range s.Traffic[position] {
		if key.Resource != world.ResourceFarmland || key.Destination != position {
			continue
		}
		r, ok := s.Routes.Get(key)
		if !ok {
			continue
		}
		if !found || r.FirstVisitMicros() < earliest {
			earliest = r.FirstVisitMicros()
			found = true
		}
	}
	return earliest, found
}

func (s *PositionSimulator) tryBuildCrops(position grid.Position) {
	cell := s.World.Cell(position)
	if !cell.Resources.Has(world.ResourceFarmland) || cell.Object.Kind != world.ObjectNone {
		return
	}
	when, ok := s.farmRouteFirstVisit(position)
	if !ok {
		return
	}
	rotations := [4]grid.Rotation{grid.Left, grid.Up, grid.Right, grid.Down}
	rotation := rotations[s.Rng.Intn(len(rotations))]
	s.Queue.Insert(build.Instruction{WhenMicros: when, What: build.Crops(position, rotation)})
}

// tryRemoveCrops clears crops once the last farmland route to the position
// is gone, cancelling any pending planting.
func (s *PositionSimulator) tryRemoveCrops(position grid.Position, nowMicros uint64) {
	for key := range s.Traffic[position] {
		if key.Resource == world.ResourceFarmland && key.Destination == position {
			return
		}
	}
	s.Queue.Remove(build.Crops(position, grid.Left).Key())
	if s.World.Cell(position).Object.Kind == world.ObjectCrop {
		s.Queue.Insert(build.Instruction{WhenMicros: nowMicros, What: build.RemoveCrops(position)})
	}
}

// TryRemoveTown queues removal of a town whose population has collapsed and
// whose traffic has dried up. The settlement step calls it with the traffic
// summaries it just computed.
func (s *PositionSimulator) TryRemoveTown(town settlement.Settlement, summaries []settlement.TrafficSummary, nowMicros uint64) bool {
	if town.Class != settlement.Town {
		return false
	}
	if town.CurrentPopulation >= s.RemovalPopulation || len(summaries) != 0 {
		return false
	}
	s.Queue.Insert(build.Instruction{WhenMicros: nowMicros, What: build.RemoveTown(town.Position)})
	if s.Logger != nil {
		s.Logger.Printf("planned removal of town %q at %v", town.Name, town.Position)
	}
	return true
}

package engine

import (
	"math/rand"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/params"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/traffic"
	"tradewinds.dev/internal/sim/world"
	"tradewinds.dev/internal/sim/worldgen"
)

// State is every persisted singleton of a running game. The snapshot codec
// serialises exactly this struct; a save and its load are equal field by
// field.
type State struct {
	World       *world.World
	Bridges     bridge.Store
	Routes      route.Routes
	Traffic     traffic.Positions
	EdgeTraffic traffic.Edges
	Gates       traffic.Gates
	Settlements settlement.Store
	Nations     settlement.Nations
	Territory   *territory.Territory
	BuildQueue  build.Queue
	// SimQueue is the shuffled remainder of settlements still to step this
	// round; persisted so a load resumes mid-round.
	SimQueue []grid.Position
	Clock    ClockState
	Revealed grid.PositionSet
}

// NewState builds an empty state with every container allocated.
func NewState() *State {
	return &State{
		Bridges:     bridge.Store{},
		Routes:      route.Routes{},
		Traffic:     traffic.Positions{},
		EdgeTraffic: traffic.Edges{},
		Gates:       traffic.Gates{},
		Settlements: settlement.Store{},
		Nations:     settlement.Nations{},
		Territory:   territory.New(),
		BuildQueue:  build.Queue{},
		Revealed:    grid.PositionSet{},
	}
}

// homelandSeedPopulation is the population a homeland starts with, enough
// to raise demand before any land has been revealed.
const homelandSeedPopulation = 8.0

// NewGame generates a fresh world, discovers its theoretical bridges and
// seeds the coast with homeland settlements.
func NewGame(p params.Parameters) *State {
	st := NewState()
	st.World = worldgen.Generate(p)
	st.Clock = ClockState{Micros: 0, Speed: p.DefaultSpeed}

	for _, n := range p.Nations {
		st.Nations[n.Name] = settlement.NewNation(n.Name, n.Colour, n.TownNames)
	}

	segmentDuration := millisDuration(p.Bridges.SegmentMillis)
	for _, b := range bridge.FindRiverPiers(st.World, p.PierParams()) {
		for i := range b.Segments {
			b.Segments[i].Duration = segmentDuration
		}
		st.Bridges.Add(b)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	homelands := worldgen.Homelands(st.World, p.Simulation.HomelandCount, rng)
	for i, position := range homelands {
		nation := p.Nations[i%len(p.Nations)]
		st.Settlements.Add(settlement.Settlement{
			Class:             settlement.Homeland,
			Position:          position,
			Name:              nation.Name,
			Nation:            nation.Name,
			CurrentPopulation: homelandSeedPopulation,
			TargetPopulation:  homelandSeedPopulation,
		})
	}
	return st
}

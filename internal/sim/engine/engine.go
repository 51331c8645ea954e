// Package engine runs the simulation: a cooperative pair of actors stepping
// settlements and applying due construction over the shared, lock-guarded
// game state.
package engine

import (
	"context"
	"log"
	"math/rand"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/buildsim"
	"tradewinds.dev/internal/sim/params"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/settlement"
	"tradewinds.dev/internal/sim/territory"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/visibility"
	"tradewinds.dev/internal/sim/world"
)

var allResources = []world.Resource{
	world.ResourceFarmland,
	world.ResourceWood,
	world.ResourceStone,
	world.ResourceIron,
	world.ResourceGold,
	world.ResourceGems,
	world.ResourceFurs,
	world.ResourceSpice,
	world.ResourcePasture,
	world.ResourceWhales,
	world.ResourceCrabs,
	world.ResourceCoal,
}

// Towns demand staples from their single closest source; homelands demand
// everything and fan out to more sources as they grow.
var townResources = []world.Resource{
	world.ResourceFarmland,
	world.ResourceWood,
	world.ResourceStone,
	world.ResourcePasture,
	world.ResourceCoal,
}

// Engine wires the clock, the actors and the simulators around the shared
// state. One step advances one settlement through its stage pipeline.
type Engine struct {
	params params.Parameters
	logger *log.Logger

	state *Guarded[*State]
	clock *Clock

	// plan treats planned roads as roads; avatar ignores them.
	plan   *pathfind.Pathfinder
	avatar *pathfind.Pathfinder
	// gateModes classifies land/water crossings when gates are recomputed.
	gateModes travel.ModeFn

	generator  *route.Generator
	edges      *buildsim.EdgeSimulator
	positions  *buildsim.PositionSimulator
	executor   *build.Executor
	visibility *visibility.Service

	rng *rand.Rand

	sim     *Actor
	builder *Actor
}

// New wires an engine over st. notify, when set, receives batches of newly
// revealed positions.
func New(p params.Parameters, st *State, logger *log.Logger, notify func(grid.PositionSet)) *Engine {
	planDuration := p.AvatarDuration(true)
	avatarDuration := p.AvatarDuration(false)
	e := &Engine{
		params:    p,
		logger:    logger,
		state:     NewGuarded(st),
		clock:     NewClock(st.Clock),
		plan:      pathfind.New(st.World, planDuration),
		avatar:    pathfind.New(st.World, avatarDuration),
		gateModes: avatarDuration.Modes,
		rng:       rand.New(rand.NewSource(p.Seed)),
		sim:       NewActor("sim", 64, logger),
		builder:   NewActor("builder", 64, logger),
	}

	e.generator = &route.Generator{Plan: e.plan, Price: e.avatar}
	e.executor = &build.Executor{
		World:       st.World,
		Bridges:     st.Bridges,
		Settlements: st.Settlements,
		Territory:   st.Territory,
		Plan:        e.plan,
		Avatar:      e.avatar,
		Logger:      logger,
	}
	e.edges = &buildsim.EdgeSimulator{
		World:       st.World,
		Bridges:     st.Bridges,
		Routes:      st.Routes,
		EdgeTraffic: st.EdgeTraffic,
		Queue:       st.BuildQueue,
		Plan:        e.plan,
		Avatar:      e.avatar,
		AutoRoad:    p.AutoRoadDuration(),
		Threshold:   p.Simulation.RoadBuildThreshold,
		DeckHeight:  p.Bridges.DeckHeight,
		Logger:      logger,
	}
	e.positions = &buildsim.PositionSimulator{
		World:                 st.World,
		Territory:             st.Territory,
		Traffic:               st.Traffic,
		Gates:                 st.Gates,
		Routes:                st.Routes,
		Settlements:           st.Settlements,
		Nations:               st.Nations,
		Queue:                 st.BuildQueue,
		Rng:                   e.rng,
		CliffGradient:         p.WorldGen.CliffGradient,
		InitialTownPopulation: p.Simulation.InitialTownPopulation,
		RemovalPopulation:     p.Simulation.TownRemovalPopulation,
		Logger:                logger,
	}
	e.visibility = visibility.New(st.World, p.VisibilityRadius, notify)

	e.initTargets(st)
	e.priceBridges(st)
	e.revealSettlements(st)
	return e
}

// initTargets loads the resource, homeland and town target sets into both
// pathfinders from the current state.
func (e *Engine) initTargets(st *State) {
	for _, pf := range []*pathfind.Pathfinder{e.plan, e.avatar} {
		for _, r := range allResources {
			pf.InitTargets(route.TargetSetName(r))
		}
		pf.InitTargets(build.TargetHomelands)
		pf.InitTargets(build.TargetTowns)
	}
	for y := 0; y < st.World.Height; y++ {
		for x := 0; x < st.World.Width; x++ {
			pos := grid.P(x, y)
			resources := st.World.Cell(pos).Resources
			for _, r := range allResources {
				if resources.Has(r) {
					e.plan.LoadTarget(route.TargetSetName(r), pos, true)
					e.avatar.LoadTarget(route.TargetSetName(r), pos, true)
				}
			}
		}
	}
	for _, s := range st.Settlements {
		name := build.TargetTowns
		if s.Class == settlement.Homeland {
			name = build.TargetHomelands
		}
		for _, corner := range grid.Corners(s.Position) {
			if !e.plan.InBounds(corner) {
				continue
			}
			e.plan.LoadTarget(name, corner, true)
			e.avatar.LoadTarget(name, corner, true)
		}
	}
}

// priceBridges re-applies the spans of built bridges, which the world's
// duration models cannot see.
func (e *Engine) priceBridges(st *State) {
	for _, bridges := range st.Bridges {
		for _, b := range bridges {
			if b.Type != bridge.Built {
				continue
			}
			for _, d := range b.TotalEdgeDurations() {
				e.plan.SetDuration(d.From, d.To, d.Duration)
				e.avatar.SetDuration(d.From, d.To, d.Duration)
			}
		}
	}
}

// revealSettlements opens the map around every settlement. Revelation is
// monotone, so on a loaded save this is a no-op beyond the existing reveal.
func (e *Engine) revealSettlements(st *State) {
	positions := grid.PositionSet{}
	for position := range st.Settlements {
		positions.Add(position)
	}
	if len(positions) > 0 {
		e.visibility.Visit(positions)
	}
}

// Run starts the actors and steps the simulation until ctx is cancelled.
// Steps fire on real time; the clock's speed only scales game time.
func (e *Engine) Run(ctx context.Context) {
	e.sim.Start(ctx)
	e.builder.Start(ctx)
	ticker := time.NewTicker(e.params.StepDuration())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.clock.Speed() == 0 {
				continue
			}
			e.sim.Send(e.step)
		}
	}
}

// step runs one settlement through the pipeline on the sim actor, then
// hands the builder the due construction.
func (e *Engine) step() {
	now := e.clock.NowMicros()
	e.state.Mut(func(st *State) {
		position, ok := nextSettlement(st, e.rng)
		if !ok {
			return
		}
		e.stepSettlement(st, position, now)
	})
	e.builder.Send(func() {
		e.state.Mut(func(st *State) {
			e.executor.Drain(st.BuildQueue, now)
		})
	})
}

// nextSettlement pops the settlement queue, reshuffling a fresh round from
// the store when it runs dry.
func nextSettlement(st *State, rng *rand.Rand) (grid.Position, bool) {
	if len(st.SimQueue) == 0 {
		st.SimQueue = st.Settlements.Positions()
		rng.Shuffle(len(st.SimQueue), func(i, j int) {
			st.SimQueue[i], st.SimQueue[j] = st.SimQueue[j], st.SimQueue[i]
		})
	}
	if len(st.SimQueue) == 0 {
		return grid.Position{}, false
	}
	position := st.SimQueue[0]
	st.SimQueue = st.SimQueue[1:]
	return position, true
}

func (e *Engine) stepSettlement(st *State, position grid.Position, now uint64) {
	s, ok := st.Settlements.Get(position)
	if !ok {
		return
	}

	refreshedPositions := grid.PositionSet{}
	refreshedEdges := grid.EdgeSet{}
	visited := grid.PositionSet{}
	for _, demand := range e.demandFor(s) {
		setKey, next := e.generator.Routes(st.World, demand, now)
		for _, change := range st.Routes.ApplySet(setKey, next) {
			for p := range st.Traffic.Apply(change) {
				refreshedPositions.Add(p)
			}
			for edge := range st.EdgeTraffic.Apply(change) {
				refreshedEdges.Add(edge)
			}
			st.Gates.Apply(st.World, e.gateModes, change)
			if change.Kind == route.ChangeNew {
				for _, p := range change.New.Path {
					visited.Add(p)
				}
			}
		}
	}

	territoryReach := e.territoryReach(position)
	st.Territory.UpdateDurations(position, territoryReach, now)
	controlled := st.Territory.Controlled(position)
	summaries := settlement.TownTraffic(
		controlled, st.Traffic, st.Routes, st.Gates, st.Settlements, settlement.PortShare)

	switch s.Class {
	case settlement.Town:
		s = settlement.UpdateTown(
			s, summaries, e.params.Simulation.TrafficToPopulation, e.params.Simulation.NationFlipTrafficPc)
	case settlement.Homeland:
		s = settlement.UpdateHomeland(
			s, st.World.VisibleLandPositions(), e.params.Simulation.HomelandCount)
	}
	s = settlement.UpdateCurrentPopulation(s, now)
	st.Settlements.Add(s)
	if s.Class == settlement.Town {
		e.positions.TryRemoveTown(s, summaries, now)
	}

	e.edges.RefreshEdges(refreshedEdges)
	e.positions.RefreshPositions(refreshedPositions, now)
	if len(visited) > 0 {
		e.visibility.Visit(visited)
	}
}

// territoryReach lists the positions the settlement can claim: reachable
// from its corners within the territory duration.
func (e *Engine) territoryReach(position grid.Position) []territory.PositionDuration {
	var corners []grid.Position
	for _, corner := range grid.Corners(position) {
		if e.plan.InBounds(corner) {
			corners = append(corners, corner)
		}
	}
	reach := e.plan.PositionsWithin(corners, e.params.TerritoryDuration())
	out := make([]territory.PositionDuration, len(reach))
	for i, pc := range reach {
		out[i] = territory.PositionDuration{Position: pc.Position, Duration: pc.Duration}
	}
	return out
}

// demandFor derives a settlement's demand from its current population.
func (e *Engine) demandFor(s settlement.Settlement) []route.Demand {
	quantity := int(s.CurrentPopulation)
	if quantity < 1 {
		return nil
	}
	resources := townResources
	sources := 1
	if s.Class == settlement.Homeland {
		resources = allResources
		sources = 1 + quantity/16
	}
	out := make([]route.Demand, 0, len(resources))
	for _, r := range resources {
		out = append(out, route.Demand{
			Settlement: s.Position,
			Resource:   r,
			Quantity:   quantity,
			Sources:    sources,
		})
	}
	return out
}

// NowMicros is the current game time.
func (e *Engine) NowMicros() uint64 { return e.clock.NowMicros() }

func (e *Engine) Speed() float32 { return e.clock.Speed() }

// SetSpeed changes the clock speed; zero pauses game time without stopping
// the actors.
func (e *Engine) SetSpeed(speed float32) {
	e.clock.SetSpeed(speed)
	if e.logger != nil {
		e.logger.Printf("clock speed set to %v", speed)
	}
}

// Pause freezes the clock and drains both actors so the state is quiescent.
// Saves happen between Pause and Resume.
func (e *Engine) Pause() {
	e.clock.SetSpeed(0)
	e.sim.Flush()
	e.builder.Flush()
}

func (e *Engine) Resume(speed float32) { e.clock.SetSpeed(speed) }

// Snapshot runs fn over the state with the clock and revealed set folded
// in. Callers pause first so no step runs mid-read.
func (e *Engine) Snapshot(fn func(*State)) {
	e.state.Mut(func(st *State) {
		st.Clock = e.clock.State()
		st.Revealed = e.visibility.Revealed()
		fn(st)
	})
}

// Execute runs fn on the sim actor with exclusive state access; command
// handlers mutate through it.
func (e *Engine) Execute(fn func(*State)) {
	e.sim.Send(func() { e.state.Mut(fn) })
}

// Visit reveals the world around avatar positions, on the sim actor.
func (e *Engine) Visit(positions grid.PositionSet) {
	e.sim.Send(func() {
		e.state.Mut(func(*State) { e.visibility.Visit(positions) })
	})
}

// RevealAll uncovers the whole map; the debug command channel calls it.
func (e *Engine) RevealAll() {
	e.sim.Send(func() {
		e.state.Mut(func(*State) { e.visibility.RevealAll() })
	})
}

func millisDuration(n int) time.Duration { return time.Duration(n) * time.Millisecond }

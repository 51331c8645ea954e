// Package buildsim decides what gets built where: it watches the edges and
// positions refreshed by route changes and turns sustained traffic into
// queued construction work.
package buildsim

import (
	"log"
	"sort"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/bridge"
	"tradewinds.dev/internal/sim/build"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/traffic"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

// routeSummary is the per-route input to threshold decisions.
type routeSummary struct {
	traffic    int
	firstVisit uint64
}

// EdgeSimulator turns refreshed edges into road and bridge instructions, and
// tears roads down when their traffic disappears.
type EdgeSimulator struct {
	World       *world.World
	Bridges     bridge.Store
	Routes      route.Routes
	EdgeTraffic traffic.Edges
	Queue       build.Queue
	// Plan treats planned roads as roads; Avatar ignores them.
	Plan   *pathfind.Pathfinder
	Avatar *pathfind.Pathfinder
	// AutoRoad decides where a road can be laid at all.
	AutoRoad   travel.Duration
	Threshold  int
	DeckHeight float32
	Logger     *log.Logger
}

// RefreshEdges re-evaluates every refreshed edge.
func (s *EdgeSimulator) RefreshEdges(edges grid.EdgeSet) {
	for edge := range edges {
		s.refreshEdge(edge)
	}
}

func (s *EdgeSimulator) refreshEdge(edge grid.Edge) {
	if len(s.EdgeTraffic[edge]) == 0 {
		s.removeRoad(edge)
		return
	}
	summaries := s.routeSummaries(edge)
	s.tryBuildRoad(edge, summaries)
	s.tryBuildBridge(edge, summaries)
}

func (s *EdgeSimulator) routeSummaries(edge grid.Edge) []routeSummary {
	var summaries []routeSummary
	for key := range s.EdgeTraffic[edge] {
		r, ok := s.Routes.Get(key)
		if !ok {
			continue
		}
		summaries = append(summaries, routeSummary{traffic: r.Traffic, firstVisit: r.FirstVisitMicros()})
	}
	return summaries
}

// whenAcrossThreshold is the build time: the first visit of the route whose
// traffic carries the cumulative sum across the threshold. ok is false when
// the total never gets there.
func whenAcrossThreshold(summaries []routeSummary, threshold int) (uint64, bool) {
	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].firstVisit < summaries[b].firstVisit
	})
	cumulative := 0
	for _, summary := range summaries {
		cumulative += summary.traffic
		if cumulative >= threshold {
			return summary.firstVisit, true
		}
	}
	return 0, false
}

func (s *EdgeSimulator) tryBuildRoad(edge grid.Edge, summaries []routeSummary) {
	if s.World.IsRoad(edge) {
		return
	}
	if _, ok := s.AutoRoad.Between(s.World, edge.From, edge.To); !ok {
		return
	}
	when, ok := whenAcrossThreshold(summaries, s.Threshold)
	if !ok {
		return
	}
	if existing, planned := s.World.RoadPlanned(edge); planned && existing <= when {
		return
	}
	s.World.PlanRoad(edge, grid.PlannedAt{When: when, OK: true})
	s.Plan.UpdateEdge(s.World, edge)
	s.Avatar.UpdateEdge(s.World, edge)
	s.Queue.Insert(build.Instruction{WhenMicros: when, What: build.Road(edge)})
	if s.Logger != nil {
		s.Logger.Printf("planned road %v-%v at %d", edge.From, edge.To, when)
	}
}

func (s *EdgeSimulator) tryBuildBridge(edge grid.Edge, summaries []routeSummary) {
	candidate, ok := s.bridgeCandidate(edge)
	if !ok {
		return
	}
	when, ok := whenAcrossThreshold(summaries, s.Threshold)
	if !ok {
		return
	}
	what := build.BridgeBuild(candidate)
	if existing, pending := s.Queue.When(what.Key()); pending && existing <= when {
		return
	}
	s.Queue.Insert(build.Instruction{WhenMicros: when, What: what})
	if s.Logger != nil {
		s.Logger.Printf("planned bridge %v-%v at %d", edge.From, edge.To, when)
	}
}

// bridgeCandidate promotes theoretical geometry on edge to a built
// candidate with its deck raised clear of the water.
func (s *EdgeSimulator) bridgeCandidate(edge grid.Edge) (bridge.Bridge, bool) {
	if s.Bridges.HasType(edge, bridge.Built) {
		return bridge.Bridge{}, false
	}
	for _, b := range s.Bridges.At(edge) {
		if b.Type != bridge.Theoretical {
			continue
		}
		built := b.WithType(bridge.Built)
		s.raiseDeck(&built)
		if err := built.Validate(); err != nil {
			if s.Logger != nil {
				s.Logger.Printf("bridge %v-%v rejected: %v", edge.From, edge.To, err)
			}
			return bridge.Bridge{}, false
		}
		return built, true
	}
	return bridge.Bridge{}, false
}

// raiseDeck lifts every pier between the ends above the water it stands in:
// deck height over sea level on sea, deck height over the bank on rivers.
func (s *EdgeSimulator) raiseDeck(b *bridge.Bridge) {
	start, end := b.Start().Position, b.End().Position
	for i := range b.Segments {
		segment := &b.Segments[i]
		for _, pier := range []*bridge.Pier{&segment.From, &segment.To} {
			if pier.Position == start || pier.Position == end {
				continue
			}
			cell := s.World.Cell(pier.Position)
			switch {
			case s.World.IsSea(pier.Position):
				pier.Elevation = s.World.SeaLevel + s.DeckHeight
			case cell.River.Here():
				pier.Elevation = cell.Elevation + s.DeckHeight
			}
		}
	}
}

// removeRoad tears down a road, or cancels a planned one, once nothing
// travels it.
func (s *EdgeSimulator) removeRoad(edge grid.Edge) {
	_, planned := s.World.RoadPlanned(edge)
	if !s.World.IsRoad(edge) && !planned {
		return
	}
	s.Queue.Remove(build.Road(edge).Key())
	s.World.SetRoad(edge, false)
	s.World.PlanRoad(edge, grid.PlannedAt{})
	s.Plan.UpdateEdge(s.World, edge)
	s.Avatar.UpdateEdge(s.World, edge)
	if s.Logger != nil {
		s.Logger.Printf("removed road %v-%v", edge.From, edge.To)
	}
}

package route

import (
	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/pathfind"
	"tradewinds.dev/internal/sim/world"
)

// Demand asks for routes from a settlement to the closest sources of a
// resource: Sources routes each carrying Quantity traffic.
type Demand struct {
	Settlement grid.Position
	Resource   world.Resource
	Quantity   int
	Sources    int
}

// TargetSetName names the pathfinder target set holding the cells where a
// resource occurs.
func TargetSetName(r world.Resource) string { return "resource-" + r.String() }

// Generator turns demand into routes. Plan includes planned roads so new
// routes pick future corridors; Price excludes them so durations reflect
// travel as it is today.
type Generator struct {
	Plan  *pathfind.Pathfinder
	Price *pathfind.Pathfinder
}

// Routes generates the route set for one demand at nowMicros. Unreachable
// or unpriceable destinations are dropped.
func (g *Generator) Routes(w *world.World, demand Demand, nowMicros uint64) (SetKey, map[Key]Route) {
	setKey := SetKey{Settlement: demand.Settlement, Resource: demand.Resource}
	out := map[Key]Route{}
	if demand.Quantity == 0 || demand.Sources == 0 {
		return setKey, out
	}

	var corners []grid.Position
	for _, corner := range grid.Corners(demand.Settlement) {
		if g.Plan.InBounds(corner) {
			corners = append(corners, corner)
		}
	}
	if len(corners) == 0 {
		return setKey, out
	}

	targets, err := g.Plan.ClosestTargets(corners, TargetSetName(demand.Resource), demand.Sources)
	if err != nil {
		return setKey, out
	}
	for _, target := range targets {
		duration, ok := g.Price.DurationOfPath(w, target.Path)
		if !ok {
			continue
		}
		key := Key{
			Settlement:  demand.Settlement,
			Resource:    demand.Resource,
			Destination: target.Position,
		}
		out[key] = Route{
			Path:        target.Path,
			StartMicros: nowMicros,
			Duration:    duration,
			Traffic:     demand.Quantity,
		}
	}
	return setKey, out
}

package settlement

import (
	"sort"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/traffic"
)

// TrafficSummary aggregates the traffic share one nation sends through a
// territory, with the share-weighted route durations.
type TrafficSummary struct {
	Nation        string
	TrafficShare  float64
	TotalDuration time.Duration
}

// ShareVariant sets the constants of the traffic apportionment formula.
// Two variants are in use at different call sites; they are kept separate
// deliberately pending consolidation.
type ShareVariant struct {
	DestWeight float64
	Denom      float64
}

var (
	// GateShare weighs destination and gates equally.
	GateShare = ShareVariant{DestWeight: 1, Denom: 1}
	// PortShare double-weighs terminating traffic; used by town updates.
	PortShare = ShareVariant{DestWeight: 2, Denom: 2}
)

// TownTraffic summarises, per nation, the route traffic crossing a town's
// territory. Routes originating inside the territory are ignored. Each
// route's share scales with how much of it terminates or lands inside:
//
//	share = traffic * (destWeight*destIn + gatesIn) / (gatesIn + gatesOut + denom)
//
// Routes or origin settlements missing from the stores contribute nothing;
// they can vanish transiently between stages.
func TownTraffic(
	territory grid.PositionSet,
	positionTraffic traffic.Positions,
	routes route.Routes,
	gates traffic.Gates,
	settlements Store,
	variant ShareVariant,
) []TrafficSummary {
	keys := map[route.Key]struct{}{}
	for position := range territory {
		for key := range positionTraffic[position] {
			keys[key] = struct{}{}
		}
	}

	shares := map[string]*TrafficSummary{}
	for key := range keys {
		if territory.Contains(key.Settlement) {
			continue
		}
		r, ok := routes.Get(key)
		if !ok {
			continue
		}
		origin, ok := settlements.Get(key.Settlement)
		if !ok {
			continue
		}

		gatesIn, gatesOut := 0.0, 0.0
		for gate := range gates[key] {
			if territory.Contains(gate) {
				gatesIn++
			} else {
				gatesOut++
			}
		}
		destIn := 0.0
		if territory.Contains(key.Destination) {
			destIn = 1
		}
		share := float64(r.Traffic) * (variant.DestWeight*destIn + gatesIn) / (gatesIn + gatesOut + variant.Denom)
		if share == 0 {
			continue
		}

		summary, ok := shares[origin.Nation]
		if !ok {
			summary = &TrafficSummary{Nation: origin.Nation}
			shares[origin.Nation] = summary
		}
		summary.TrafficShare += share
		summary.TotalDuration += time.Duration(float64(r.Duration) * share)
	}

	out := make([]TrafficSummary, 0, len(shares))
	for _, summary := range shares {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nation < out[j].Nation })
	return out
}

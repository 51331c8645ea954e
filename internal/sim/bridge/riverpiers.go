package bridge

import (
	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

// PierParams bounds river pier discovery.
type PierParams struct {
	MinNavigableRiverWidth float32
	MaxGradient            float32
	MaxLandingZoneGradient float32
}

var pierDirections = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindRiverPiers scans the world for bank-to-river pier quadruplets and
// wraps each in a Theoretical bridge. Candidates that fail validation are
// dropped.
func FindRiverPiers(w *world.World, params PierParams) []Bridge {
	var out []Bridge
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			from := grid.P(x, y)
			for _, d := range pierDirections {
				to := from.Add(d[0], d[1])
				if !w.InBounds(to) {
					continue
				}
				piers, ok := pierQuadruplet(w, from, to, params)
				if !ok {
					continue
				}
				b, err := New(segmentsOf(piers), travel.VehicleNone, Theoretical)
				if err != nil {
					continue
				}
				out = append(out, b)
			}
		}
	}
	return out
}

// pierQuadruplet accepts a landing (from) against a navigable river cell
// (to): the landing is dry land off the river, the step down to the water
// is shallow enough, and some tile touching the landing is usable as a
// launching zone.
func pierQuadruplet(w *world.World, from, to grid.Position, params PierParams) ([4]Pier, bool) {
	fromCell := w.Cell(from)
	toCell := w.Cell(to)

	if fromCell.River.Here() {
		return [4]Pier{}, false
	}
	if fromCell.Elevation <= w.SeaLevel {
		return [4]Pier{}, false
	}
	if toCell.River.LongestSide() < params.MinNavigableRiverWidth {
		return [4]Pier{}, false
	}
	rise, ok := w.Rise(from, to)
	if !ok || absf(rise) > params.MaxGradient {
		return [4]Pier{}, false
	}
	if !hasLaunchingZone(w, from, params.MaxLandingZoneGradient) {
		return [4]Pier{}, false
	}

	rotation := grid.RotationBetween(from, to)
	return [4]Pier{
		{Position: from, Elevation: fromCell.Elevation, Platform: true, Rotation: rotation, Vehicle: travel.VehicleNone},
		{Position: to, Elevation: toCell.Elevation, Rotation: rotation, Vehicle: travel.VehicleNone},
		{Position: to, Elevation: toCell.Elevation, Rotation: rotation, Vehicle: travel.VehicleBoat},
		{Position: to, Elevation: toCell.Elevation, Rotation: rotation, Vehicle: travel.VehicleBoat},
	}, true
}

// hasLaunchingZone looks for a non-sea tile cornered on position that is
// flat enough to stand on.
func hasLaunchingZone(w *world.World, position grid.Position, maxGradient float32) bool {
	tiles := [4]grid.Position{
		position,
		position.Add(-1, 0),
		position.Add(0, -1),
		position.Add(-1, -1),
	}
	for _, tile := range tiles {
		if !w.InBounds(tile) {
			continue
		}
		if w.IsSea(tile) {
			continue
		}
		if w.MaxAbsRise(tile) <= maxGradient {
			return true
		}
	}
	return false
}

func segmentsOf(piers [4]Pier) []Segment {
	segments := make([]Segment, 0, 3)
	for i := 1; i < 4; i++ {
		segments = append(segments, Segment{From: piers[i-1], To: piers[i]})
	}
	return segments
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

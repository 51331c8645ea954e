// Package territory tracks which settlement controls each cell: every
// settlement claims the cells it can reach within the territory duration,
// and the closest claimant controls.
package territory

import (
	"time"

	"tradewinds.dev/internal/grid"
)

// Claim is one settlement's reach over one position.
type Claim struct {
	DurationMicros uint64
	SinceMicros    uint64
}

// Territory stores claims per position per controlling settlement.
type Territory struct {
	Claims map[grid.Position]map[grid.Position]Claim
}

func New() *Territory {
	return &Territory{Claims: map[grid.Position]map[grid.Position]Claim{}}
}

// PositionDuration is a claim input: a reachable position and the travel
// duration to it.
type PositionDuration struct {
	Position grid.Position
	Duration time.Duration
}

// UpdateDurations replaces a controller's claims with the given reach. The
// original claim time is kept for positions already claimed, so an older
// claim still wins ties.
func (t *Territory) UpdateDurations(controller grid.Position, durations []PositionDuration, nowMicros uint64) {
	for position, claims := range t.Claims {
		delete(claims, controller)
		if len(claims) == 0 {
			delete(t.Claims, position)
		}
	}
	for _, d := range durations {
		claims, ok := t.Claims[d.Position]
		if !ok {
			claims = map[grid.Position]Claim{}
			t.Claims[d.Position] = claims
		}
		since := nowMicros
		if existing, ok := claims[controller]; ok {
			since = existing.SinceMicros
		}
		claims[controller] = Claim{
			DurationMicros: uint64(d.Duration.Microseconds()),
			SinceMicros:    since,
		}
	}
}

// RemoveController drops every claim a settlement holds; called when a town
// is removed.
func (t *Territory) RemoveController(controller grid.Position) {
	t.UpdateDurations(controller, nil, 0)
}

// Controller resolves who controls a position: the claimant with the lowest
// duration, ties broken by earliest claim, then by position order so the
// result is stable.
func (t *Territory) Controller(position grid.Position) (grid.Position, bool) {
	claims := t.Claims[position]
	if len(claims) == 0 {
		return grid.Position{}, false
	}
	var best grid.Position
	var bestClaim Claim
	first := true
	for controller, claim := range claims {
		if first || less(claim, controller, bestClaim, best) {
			best = controller
			bestClaim = claim
			first = false
		}
	}
	return best, true
}

func less(a Claim, aController grid.Position, b Claim, bController grid.Position) bool {
	if a.DurationMicros != b.DurationMicros {
		return a.DurationMicros < b.DurationMicros
	}
	if a.SinceMicros != b.SinceMicros {
		return a.SinceMicros < b.SinceMicros
	}
	if aController.Y != bController.Y {
		return aController.Y < bController.Y
	}
	return aController.X < bController.X
}

// AnyoneControls reports whether any settlement controls the position.
func (t *Territory) AnyoneControls(position grid.Position) bool {
	_, ok := t.Controller(position)
	return ok
}

// Controlled is the set of positions a settlement controls.
func (t *Territory) Controlled(controller grid.Position) grid.PositionSet {
	out := grid.PositionSet{}
	for position := range t.Claims {
		if winner, ok := t.Controller(position); ok && winner == controller {
			out.Add(position)
		}
	}
	return out
}

// Package settlement holds settlement records and the population, nation
// and traffic-share rules that evolve them.
package settlement

import (
	"time"

	"tradewinds.dev/internal/grid"
)

// Class separates permanent homelands from traffic-founded towns.
type Class uint8

const (
	Homeland Class = iota
	Town
)

func (c Class) String() string {
	if c == Town {
		return "town"
	}
	return "homeland"
}

// Settlement is one population centre, keyed by position in the store.
type Settlement struct {
	Class                      Class
	Position                   grid.Position
	Name                       string
	Nation                     string
	CurrentPopulation          float64
	TargetPopulation           float64
	GapHalfLife                time.Duration
	LastPopulationUpdateMicros uint64
}

// Store is the settlement registry. Cross-references use the position key,
// never pointers.
type Store map[grid.Position]Settlement

func (s Store) Get(position grid.Position) (Settlement, bool) {
	settlement, ok := s[position]
	return settlement, ok
}

func (s Store) Add(settlement Settlement) { s[settlement.Position] = settlement }

func (s Store) Remove(position grid.Position) { delete(s, position) }

// Positions lists every settlement position; order is unspecified.
func (s Store) Positions() []grid.Position {
	out := make([]grid.Position, 0, len(s))
	for position := range s {
		out = append(out, position)
	}
	return out
}

// CountClass counts settlements of one class.
func (s Store) CountClass(class Class) int {
	count := 0
	for _, settlement := range s {
		if settlement.Class == class {
			count++
		}
	}
	return count
}

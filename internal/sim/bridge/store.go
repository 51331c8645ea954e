package bridge

import "tradewinds.dev/internal/grid"

// Store indexes bridges by their total edge. Multiple bridges may share an
// edge (a theoretical one and its built copy, or rival geometries).
type Store map[grid.Edge][]Bridge

// Add inserts the bridge under its total edge, ignoring exact duplicates.
func (s Store) Add(b Bridge) {
	edge := b.TotalEdge()
	for _, existing := range s[edge] {
		if existing.Equal(b) {
			return
		}
	}
	s[edge] = append(s[edge], b)
}

// Remove drops the exact bridge, clearing the entry when it empties.
func (s Store) Remove(b Bridge) {
	edge := b.TotalEdge()
	kept := s[edge][:0]
	for _, existing := range s[edge] {
		if !existing.Equal(b) {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		delete(s, edge)
	} else {
		s[edge] = kept
	}
}

// At returns the bridges stored for edge.
func (s Store) At(edge grid.Edge) []Bridge { return s[edge] }

// LowestDurationBridge picks the fastest crossing of edge.
func (s Store) LowestDurationBridge(edge grid.Edge) (Bridge, bool) {
	bridges := s[edge]
	if len(bridges) == 0 {
		return Bridge{}, false
	}
	best := bridges[0]
	for _, b := range bridges[1:] {
		if b.TotalDuration() < best.TotalDuration() {
			best = b
		}
	}
	return best, true
}

// HasType reports whether edge carries a bridge of the given type.
func (s Store) HasType(edge grid.Edge, typ Type) bool {
	for _, b := range s[edge] {
		if b.Type == typ {
			return true
		}
	}
	return false
}

// CountPlatformsAt counts platform piers at position across bridges of the
// given type, at most once per bridge because piers deduplicate by
// position.
func (s Store) CountPlatformsAt(position grid.Position, typ Type) int {
	count := 0
	for _, bridges := range s {
		for _, b := range bridges {
			if b.Type != typ {
				continue
			}
			for _, pier := range b.Piers() {
				if pier.Platform && pier.Position == position {
					count++
				}
			}
		}
	}
	return count
}

// Package traffic maintains the per-position and per-edge route key sets,
// kept current by applying the route change stream.
package traffic

import (
	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/route"
	"tradewinds.dev/internal/sim/travel"
	"tradewinds.dev/internal/sim/world"
)

// KeySet is a set of route keys.
type KeySet map[route.Key]struct{}

func (s KeySet) Contains(k route.Key) bool {
	_, ok := s[k]
	return ok
}

// Positions maps each cell to the routes crossing it.
type Positions map[grid.Position]KeySet

// Edges maps each unit edge to the routes traversing it.
type Edges map[grid.Edge]KeySet

func (t Positions) add(p grid.Position, key route.Key) {
	set, ok := t[p]
	if !ok {
		set = KeySet{}
		t[p] = set
	}
	set[key] = struct{}{}
}

func (t Positions) remove(p grid.Position, key route.Key) {
	set, ok := t[p]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(t, p)
	}
}

func (t Edges) add(e grid.Edge, key route.Key) {
	set, ok := t[e]
	if !ok {
		set = KeySet{}
		t[e] = set
	}
	set[key] = struct{}{}
}

func (t Edges) remove(e grid.Edge, key route.Key) {
	set, ok := t[e]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(t, e)
	}
}

// Apply folds one route change into the position traffic, returning the
// positions downstream simulators must re-examine.
func (t Positions) Apply(change route.Change) grid.PositionSet {
	refreshed := grid.PositionSet{}
	switch change.Kind {
	case route.ChangeNew:
		for _, p := range change.New.Path {
			t.add(p, change.Key)
			refreshed.Add(p)
		}
	case route.ChangeRemoved:
		for _, p := range change.Old.Path {
			t.remove(p, change.Key)
			refreshed.Add(p)
		}
	case route.ChangeUpdated:
		oldSet := grid.NewPositionSet(change.Old.Path...)
		newSet := grid.NewPositionSet(change.New.Path...)
		for p := range oldSet {
			if !newSet.Contains(p) {
				t.remove(p, change.Key)
			}
			refreshed.Add(p)
		}
		for p := range newSet {
			if !oldSet.Contains(p) {
				t.add(p, change.Key)
			}
			refreshed.Add(p)
		}
	case route.ChangeNoChange:
		for _, p := range change.New.Path {
			refreshed.Add(p)
		}
	}
	return refreshed
}

// Apply folds one route change into the edge traffic, returning the edges
// to re-examine. Empty sets are dropped so the store never carries them.
func (t Edges) Apply(change route.Change) grid.EdgeSet {
	refreshed := grid.EdgeSet{}
	switch change.Kind {
	case route.ChangeNew:
		for _, e := range grid.PathEdges(change.New.Path) {
			t.add(e, change.Key)
			refreshed.Add(e)
		}
	case route.ChangeRemoved:
		for _, e := range grid.PathEdges(change.Old.Path) {
			t.remove(e, change.Key)
			refreshed.Add(e)
		}
	case route.ChangeUpdated:
		oldSet := grid.NewEdgeSet(grid.PathEdges(change.Old.Path)...)
		newSet := grid.NewEdgeSet(grid.PathEdges(change.New.Path)...)
		for e := range oldSet {
			if !newSet.Contains(e) {
				t.remove(e, change.Key)
			}
			refreshed.Add(e)
		}
		for e := range newSet {
			if !oldSet.Contains(e) {
				t.add(e, change.Key)
			}
			refreshed.Add(e)
		}
	case route.ChangeNoChange:
		for _, e := range grid.PathEdges(change.New.Path) {
			refreshed.Add(e)
		}
	}
	return refreshed
}

// Gates maps each route to the positions where it crosses between land and
// water; traffic apportionment weighs these crossings.
type Gates map[route.Key]grid.PositionSet

// Apply keeps the gate sets current: recomputed on New and Updated, dropped
// on Removed.
func (g Gates) Apply(w *world.World, modes travel.ModeFn, change route.Change) {
	switch change.Kind {
	case route.ChangeNew, route.ChangeUpdated:
		gates := grid.PositionSet{}
		path := change.New.Path
		for i := 1; i < len(path); i++ {
			if port, ok := modes.Port(w, path[i-1], path[i]); ok {
				gates.Add(port)
			}
		}
		if len(gates) == 0 {
			delete(g, change.Key)
		} else {
			g[change.Key] = gates
		}
	case route.ChangeRemoved:
		delete(g, change.Key)
	}
}

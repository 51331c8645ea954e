// Package route records the demand-driven trade routes of the simulation
// and diffs successive generations of them.
package route

import (
	"sort"
	"time"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/world"
)

// Key identifies one demand: a settlement wants a resource from a
// destination.
type Key struct {
	Settlement  grid.Position
	Resource    world.Resource
	Destination grid.Position
}

// SetKey groups the routes serving one (settlement, resource) demand.
type SetKey struct {
	Settlement grid.Position
	Resource   world.Resource
}

func (k Key) SetKey() SetKey {
	return SetKey{Settlement: k.Settlement, Resource: k.Resource}
}

// Route is a planned path carrying traffic.
type Route struct {
	Path        []grid.Position
	StartMicros uint64
	Duration    time.Duration
	Traffic     int
}

// FirstVisitMicros is when traffic first arrives at the far end.
func (r Route) FirstVisitMicros() uint64 {
	return r.StartMicros + uint64(r.Duration.Microseconds())
}

// Same reports whether two routes are interchangeable for traffic purposes:
// equal path, duration and traffic.
func (r Route) Same(other Route) bool {
	if r.Duration != other.Duration || r.Traffic != other.Traffic || len(r.Path) != len(other.Path) {
		return false
	}
	for i := range r.Path {
		if r.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Routes is the full route store, one map of routes per set key.
type Routes map[SetKey]map[Key]Route

// Get looks a route up by key.
func (r Routes) Get(key Key) (Route, bool) {
	set, ok := r[key.SetKey()]
	if !ok {
		return Route{}, false
	}
	route, ok := set[key]
	return route, ok
}

// ChangeKind discriminates the diff stream.
type ChangeKind uint8

const (
	ChangeNew ChangeKind = iota
	ChangeUpdated
	ChangeRemoved
	ChangeNoChange
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	}
	return "no-change"
}

// Change is one entry in the diff stream. Old is set for Updated and
// Removed; New is set for New, Updated and NoChange.
type Change struct {
	Kind ChangeKind
	Key  Key
	Old  Route
	New  Route
}

// Changes diffs two generations of a route set. Output order is stable:
// sorted by key, removed entries last.
func Changes(previous, next map[Key]Route) []Change {
	var out []Change
	for _, key := range sortedKeys(next) {
		newRoute := next[key]
		oldRoute, existed := previous[key]
		switch {
		case !existed:
			out = append(out, Change{Kind: ChangeNew, Key: key, New: newRoute})
		case oldRoute.Same(newRoute):
			out = append(out, Change{Kind: ChangeNoChange, Key: key, New: newRoute})
		default:
			out = append(out, Change{Kind: ChangeUpdated, Key: key, Old: oldRoute, New: newRoute})
		}
	}
	for _, key := range sortedKeys(previous) {
		if _, kept := next[key]; !kept {
			out = append(out, Change{Kind: ChangeRemoved, Key: key, Old: previous[key]})
		}
	}
	return out
}

// ApplySet diffs and stores the next generation for a set key, dropping
// the entry when the generation is empty.
func (r Routes) ApplySet(key SetKey, next map[Key]Route) []Change {
	changes := Changes(r[key], next)
	if len(next) == 0 {
		delete(r, key)
	} else {
		r[key] = next
	}
	return changes
}

func sortedKeys(routes map[Key]Route) []Key {
	keys := make([]Key, 0, len(routes))
	for key := range routes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys
}

func lessKey(a, b Key) bool {
	if a.Settlement != b.Settlement {
		return lessPosition(a.Settlement, b.Settlement)
	}
	if a.Resource != b.Resource {
		return a.Resource < b.Resource
	}
	return lessPosition(a.Destination, b.Destination)
}

func lessPosition(a, b grid.Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

package build

import (
	"sort"

	"tradewinds.dev/internal/grid"
)

// Queue holds at most one pending instruction per build key. When two
// insertions collide the smaller when wins.
type Queue map[Key]Instruction

// Insert adds the instruction unless an earlier one for the same key is
// already pending. It reports whether the instruction was stored.
func (q Queue) Insert(i Instruction) bool {
	key := i.What.Key()
	if existing, ok := q[key]; ok && existing.WhenMicros <= i.WhenMicros {
		return false
	}
	q[key] = i
	return true
}

// When reports the pending build time for a key.
func (q Queue) When(key Key) (uint64, bool) {
	i, ok := q[key]
	return i.WhenMicros, ok
}

// Remove drops the pending instruction for a key.
func (q Queue) Remove(key Key) { delete(q, key) }

// TakeInstructionsBefore drains every instruction due by nowMicros, in
// ascending when order.
func (q Queue) TakeInstructionsBefore(nowMicros uint64) []Instruction {
	var due []Instruction
	for key, i := range q {
		if i.WhenMicros <= nowMicros {
			due = append(due, i)
			delete(q, key)
		}
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].WhenMicros != due[b].WhenMicros {
			return due[a].WhenMicros < due[b].WhenMicros
		}
		return lessKey(due[a].What.Key(), due[b].What.Key())
	})
	return due
}

func lessKey(a, b Key) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Edge != b.Edge {
		if a.Edge.From != b.Edge.From {
			return lessPosition(a.Edge.From, b.Edge.From)
		}
		return lessPosition(a.Edge.To, b.Edge.To)
	}
	return lessPosition(a.Position, b.Position)
}

func lessPosition(a, b grid.Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

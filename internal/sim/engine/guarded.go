package engine

import "sync"

// Guarded wraps a shared singleton behind a read/write lock. Readers use
// With, writers use Mut; closures must not block on other actors.
type Guarded[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewGuarded[T any](value T) *Guarded[T] {
	return &Guarded[T]{value: value}
}

// With runs fn with shared read access.
func (g *Guarded[T]) With(fn func(T)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.value)
}

// Mut runs fn with exclusive access.
func (g *Guarded[T]) Mut(fn func(T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.value)
}

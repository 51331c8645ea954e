// Package visibility reveals the world around travelling avatars. Revelation
// is monotone: a cell once visible stays visible for the rest of the game.
package visibility

import (
	"sync"

	"tradewinds.dev/internal/grid"
	"tradewinds.dev/internal/sim/world"
)

// Service reveals cells as avatars visit positions and batches the newly
// visible cells to the artist callback.
type Service struct {
	mu sync.Mutex
	// Radius is how far an avatar sees, in cells along each axis.
	radius   int
	world    *world.World
	revealed grid.PositionSet
	notify   func(grid.PositionSet)
}

// New builds a service over w. notify may be nil; when set it receives one
// batch per Visit call containing only the newly revealed positions.
func New(w *world.World, radius int, notify func(grid.PositionSet)) *Service {
	s := &Service{
		radius:   radius,
		world:    w,
		revealed: grid.PositionSet{},
		notify:   notify,
	}
	// Cells already visible (a loaded save) seed the revealed set.
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := grid.P(x, y)
			if w.Cell(p).Visible {
				s.revealed.Add(p)
			}
		}
	}
	return s
}

// Visit marks the positions visited and reveals everything within the
// radius around them.
func (s *Service) Visit(positions grid.PositionSet) {
	s.mu.Lock()
	newlyRevealed := grid.PositionSet{}
	for p := range positions {
		if s.world.InBounds(p) {
			s.world.Cell(p).Visited = true
		}
		s.revealAround(p, newlyRevealed)
	}
	s.mu.Unlock()
	if len(newlyRevealed) > 0 && s.notify != nil {
		s.notify(newlyRevealed)
	}
}

func (s *Service) revealAround(centre grid.Position, newlyRevealed grid.PositionSet) {
	for dy := -s.radius; dy <= s.radius; dy++ {
		for dx := -s.radius; dx <= s.radius; dx++ {
			p := centre.Add(dx, dy)
			if !s.world.InBounds(p) || s.revealed.Contains(p) {
				continue
			}
			s.world.Cell(p).Visible = true
			s.revealed.Add(p)
			newlyRevealed.Add(p)
		}
	}
}

// RevealAll makes the whole grid visible; debug commands use it.
func (s *Service) RevealAll() {
	s.mu.Lock()
	newlyRevealed := grid.PositionSet{}
	for y := 0; y < s.world.Height; y++ {
		for x := 0; x < s.world.Width; x++ {
			p := grid.P(x, y)
			if s.revealed.Contains(p) {
				continue
			}
			s.world.Cell(p).Visible = true
			s.revealed.Add(p)
			newlyRevealed.Add(p)
		}
	}
	s.mu.Unlock()
	if len(newlyRevealed) > 0 && s.notify != nil {
		s.notify(newlyRevealed)
	}
}

// Revealed copies the revealed set; the snapshot codec persists it.
func (s *Service) Revealed() grid.PositionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(grid.PositionSet, len(s.revealed))
	for p := range s.revealed {
		out.Add(p)
	}
	return out
}

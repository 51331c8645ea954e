package engine

import (
	"context"
	"log"
	"sync"
)

// Actor is a mailbox of closures executed in send order on one goroutine.
// Cross-actor ordering only exists through the guarded state and through
// causally ordered sends.
type Actor struct {
	name    string
	mailbox chan func()
	logger  *log.Logger

	once sync.Once
	done chan struct{}
}

func NewActor(name string, size int, logger *log.Logger) *Actor {
	return &Actor{
		name:    name,
		mailbox: make(chan func(), size),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start runs the mailbox loop until ctx is cancelled.
func (a *Actor) Start(ctx context.Context) {
	a.once.Do(func() {
		go func() {
			defer close(a.done)
			for {
				select {
				case <-ctx.Done():
					return
				case fn := <-a.mailbox:
					fn()
				}
			}
		}()
	})
}

// Send enqueues fn, blocking while the mailbox is full.
func (a *Actor) Send(fn func()) {
	select {
	case a.mailbox <- fn:
	case <-a.done:
		if a.logger != nil {
			a.logger.Printf("actor %s stopped; message dropped", a.name)
		}
	}
}

// Flush blocks until every message sent before it has executed. Pausing
// drains the actors this way before a save.
func (a *Actor) Flush() {
	executed := make(chan struct{})
	a.Send(func() { close(executed) })
	select {
	case <-executed:
	case <-a.done:
	}
}

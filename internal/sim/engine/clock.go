package engine

import (
	"sync"
	"time"
)

// ClockState is the persisted portion of the clock.
type ClockState struct {
	Micros uint64
	Speed  float32
}

// Clock is the game clock: game micros advance at Speed times real time,
// and a speed of zero freezes it.
type Clock struct {
	mu         sync.Mutex
	now        func() time.Time
	baseMicros uint64
	baseTime   time.Time
	speed      float32
}

func NewClock(state ClockState) *Clock {
	c := &Clock{now: time.Now, speed: state.Speed, baseMicros: state.Micros}
	c.baseTime = c.now()
	return c
}

// NowMicros is the current game time.
func (c *Clock) NowMicros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowMicrosLocked()
}

func (c *Clock) nowMicrosLocked() uint64 {
	if c.speed == 0 {
		return c.baseMicros
	}
	elapsed := c.now().Sub(c.baseTime).Microseconds()
	return c.baseMicros + uint64(float64(elapsed)*float64(c.speed))
}

func (c *Clock) Speed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed rebases the clock so game time stays continuous across speed
// changes. Zero pauses.
func (c *Clock) SetSpeed(speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMicros = c.nowMicrosLocked()
	c.baseTime = c.now()
	c.speed = speed
}

// State snapshots the clock for persistence.
func (c *Clock) State() ClockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClockState{Micros: c.nowMicrosLocked(), Speed: c.speed}
}

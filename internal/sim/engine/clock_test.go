package engine

import (
	"testing"
	"time"
)

// fakeClock pins the real-time source so game time is deterministic.
func fakeClock(state ClockState) (*Clock, *time.Time) {
	current := time.Unix(1000, 0)
	c := NewClock(state)
	c.now = func() time.Time { return current }
	c.baseTime = current
	return c, &current
}

func TestClockScalesWithSpeed(t *testing.T) {
	c, current := fakeClock(ClockState{Micros: 100, Speed: 2})
	*current = current.Add(time.Second)
	if got := c.NowMicros(); got != 100+2_000_000 {
		t.Fatalf("game time %d, want %d", got, 100+2_000_000)
	}
}

func TestClockZeroSpeedFreezes(t *testing.T) {
	c, current := fakeClock(ClockState{Micros: 500, Speed: 0})
	*current = current.Add(time.Hour)
	if got := c.NowMicros(); got != 500 {
		t.Fatalf("paused clock advanced to %d", got)
	}
}

func TestClockSpeedChangeKeepsTimeContinuous(t *testing.T) {
	c, current := fakeClock(ClockState{Micros: 0, Speed: 1})
	*current = current.Add(time.Second)
	c.SetSpeed(4)
	*current = current.Add(time.Second)
	if got := c.NowMicros(); got != 1_000_000+4_000_000 {
		t.Fatalf("game time %d, want %d", got, 1_000_000+4_000_000)
	}
	c.SetSpeed(0)
	*current = current.Add(time.Hour)
	if got := c.NowMicros(); got != 5_000_000 {
		t.Fatalf("game time %d after pause, want %d", got, 5_000_000)
	}
}

func TestClockStateRoundTrips(t *testing.T) {
	c, current := fakeClock(ClockState{Micros: 10, Speed: 3})
	*current = current.Add(time.Second)
	state := c.State()
	if state.Micros != 10+3_000_000 || state.Speed != 3 {
		t.Fatalf("state %+v, want micros %d speed 3", state, 10+3_000_000)
	}
	restored, _ := fakeClock(state)
	if got := restored.NowMicros(); got != state.Micros {
		t.Fatalf("restored clock at %d, want %d", got, state.Micros)
	}
}

package engine

import "sync/atomic"

// Clock counts elapsed ticks.
//
// Ticks are logical time: the first Step is tick 1. Nothing in the engine
// reads wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), so a
// monitor goroutine may read Current while the owner steps.
type Clock struct {
	tick atomic.Int64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new tick.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the last tick without advancing.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}

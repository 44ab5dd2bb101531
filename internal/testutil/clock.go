package testutil

import (
	"sync"
	"time"
)

// FixedClock provides a deterministic time source for tests.
//
// Each call to Now advances the clock by a fixed step, so durations and
// timestamps in recorded outcomes are reproducible across runs.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedClock creates a clock starting at the given instant, advancing
// by step on every Now call. A zero step yields a frozen clock.
func NewFixedClock(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{now: start, step: step}
}

// Now returns the current instant and advances the clock by one step.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the current instant without advancing.
func (c *FixedClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

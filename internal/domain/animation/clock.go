package animation

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// DefaultFrameInterval is roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler samples an animation timeline at a fixed frame rate.
type Scheduler struct {
	clock    Clock
	interval time.Duration
}

// NewScheduler returns a scheduler reading time from clock. A nil clock
// uses the system clock and a non-positive interval uses
// DefaultFrameInterval.
func NewScheduler(clock Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Scheduler{clock: clock, interval: interval}
}

// Run calls frame with the elapsed time on every tick until total has
// elapsed, finishing with exactly one frame at total. It returns the
// context error if cancelled first.
func (s *Scheduler) Run(ctx context.Context, total time.Duration, frame func(elapsed time.Duration)) error {
	start := s.clock.Now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			elapsed := s.clock.Now().Sub(start)
			if elapsed >= total {
				frame(total)
				return nil
			}
			frame(elapsed)
		}
	}
}

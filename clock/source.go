package clock

import "time"

// Source supplies monotonic timestamps.
type Source interface {
	Now() time.Duration
}

// System reads the process monotonic clock.
type System struct {
	start time.Time
}

// NewSystem returns a System source whose zero is the moment of the call.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns the time elapsed since the source was created. time.Since
// uses the monotonic reading, so wall clock jumps do not leak in.
func (s *System) Now() time.Duration {
	return time.Since(s.start)
}

// Manual is a Source advanced by hand, for tests and deterministic replays.
type Manual struct {
	now time.Duration
}

// Now returns the current manual time.
func (m *Manual) Now() time.Duration { return m.now }

// Advance moves the time forward by d.
func (m *Manual) Advance(d time.Duration) { m.now += d }

// Set jumps to t.
func (m *Manual) Set(t time.Duration) { m.now = t }

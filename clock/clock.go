// Package clock measures frame time for a fixed-timestep loop.
//
// A Clock is ticked once per presented frame with a monotonic timestamp.
// Elapsed time accumulates as lag that the scheduler pays off in whole
// fixed steps; whatever is left over becomes the interpolation fraction
// handed to draw code. Elapsed time beyond the lag cap is dropped so a long
// pause never turns into a burst of catch-up updates.
package clock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/gogpu/ggame/internal/logging"
)

// DefaultMaxLag is the lag cap used when none is configured.
const DefaultMaxLag = 250 * time.Millisecond

// ErrInvalidStep is returned for a non-positive step or a lag cap smaller
// than one step.
var ErrInvalidStep = errors.New("clock: invalid step")

// Clock tracks accumulated lag against a fixed step. It is not safe for
// concurrent use.
type Clock struct {
	step   time.Duration
	maxLag time.Duration

	last    time.Duration
	started bool
	lag     time.Duration

	steps   uint64
	frames  uint64
	dropped time.Duration
	fps     fpsMeter

	warn *rate.Limiter
}

// New returns a clock with the given fixed step and lag cap.
func New(step, maxLag time.Duration) (*Clock, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step %v", ErrInvalidStep, step)
	}
	if maxLag < step {
		return nil, fmt.Errorf("%w: max lag %v is shorter than step %v", ErrInvalidStep, maxLag, step)
	}
	return &Clock{
		step:   step,
		maxLag: maxLag,
		warn:   rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// FromTicksPerSecond returns a clock stepping tps times per second.
func FromTicksPerSecond(tps int, maxLag time.Duration) (*Clock, error) {
	if tps <= 0 {
		return nil, fmt.Errorf("%w: %d ticks per second", ErrInvalidStep, tps)
	}
	return New(time.Second/time.Duration(tps), maxLag)
}

// Step returns the fixed step.
func (c *Clock) Step() time.Duration { return c.step }

// MaxLag returns the lag cap.
func (c *Clock) MaxLag() time.Duration { return c.maxLag }

// Lag returns the time owed to the simulation.
func (c *Clock) Lag() time.Duration { return c.lag }

// Dropped returns the total elapsed time discarded by the lag cap.
func (c *Clock) Dropped() time.Duration { return c.dropped }

// Tick records a new frame at now and returns the elapsed time discarded by
// the lag cap during this tick. The first tick only establishes the
// reference instant.
func (c *Clock) Tick(now time.Duration) time.Duration {
	if !c.started {
		c.started = true
		c.last = now
		c.frames++
		return 0
	}

	delta := now - c.last
	if delta < 0 {
		delta = 0
	}
	c.last = now
	c.frames++
	c.fps.observe(delta)

	var dropped time.Duration
	if delta > c.maxLag {
		dropped = delta - c.maxLag
		delta = c.maxLag
	}
	c.lag += delta
	if c.lag > c.maxLag {
		dropped += c.lag - c.maxLag
		c.lag = c.maxLag
	}

	if dropped > 0 {
		c.dropped += dropped
		if c.warn.Allow() {
			logging.Logger().Warn("clock: frame lag exceeded cap, dropping time",
				"dropped", dropped, "max_lag", c.maxLag)
		}
	}
	return dropped
}

// ConsumeStep pays off one fixed step of lag. It returns false when less
// than a full step is owed.
func (c *Clock) ConsumeStep() bool {
	if c.lag < c.step {
		return false
	}
	c.lag -= c.step
	c.steps++
	return true
}

// Fraction returns how far the current frame lies between the last
// completed step and the next one, in [0, 1).
func (c *Clock) Fraction() float64 {
	f := float64(c.lag) / float64(c.step)
	if f >= 1 {
		return math.Nextafter(1, 0)
	}
	return f
}

// Reset discards accumulated lag and measures the next frame from now.
func (c *Clock) Reset(now time.Duration) {
	c.last = now
	c.started = true
	c.lag = 0
	c.fps = fpsMeter{}
}

// Timer returns a snapshot for the current frame.
func (c *Clock) Timer() Timer {
	return Timer{
		Fraction: c.Fraction(),
		FPS:      c.fps.value(),
		Step:     c.step,
		Steps:    c.steps,
		Frame:    c.frames,
	}
}

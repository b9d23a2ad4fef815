package clock

import "time"

// Timer is the read-only view of the clock passed to draw code. A new value
// is produced every frame.
type Timer struct {
	// Fraction is the interpolation fraction in [0, 1).
	Fraction float64
	// FPS is a smoothed frames-per-second estimate, 0 until two frames
	// have been observed.
	FPS float64
	// Step is the fixed update step.
	Step time.Duration
	// Steps counts fixed updates run since the clock was created.
	Steps uint64
	// Frame counts ticks since the clock was created.
	Frame uint64
}

// fpsSmoothing is the weight of the newest frame in the moving average.
const fpsSmoothing = 0.1

// fpsMeter keeps an exponential moving average of frame durations.
type fpsMeter struct {
	avg     float64
	samples int
}

func (m *fpsMeter) observe(delta time.Duration) {
	if delta <= 0 {
		return
	}
	s := delta.Seconds()
	if m.samples == 0 {
		m.avg = s
	} else {
		m.avg += (s - m.avg) * fpsSmoothing
	}
	m.samples++
}

func (m *fpsMeter) value() float64 {
	if m.samples == 0 || m.avg == 0 {
		return 0
	}
	return 1 / m.avg
}

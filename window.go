package ggame

import "github.com/gogpu/ggame/input"

// Window is the event pump and surface size provider the engine polls once
// per frame. The ebiten host in backend/ebiten implements it.
type Window interface {
	// Events returns the events received since the previous call, oldest
	// first.
	Events() []input.Event
	// Size returns the current surface size in pixels.
	Size() (width, height int)
}

// HeadlessWindow is a Window without a display. Events are queued by hand,
// which makes it the window of tests and offscreen runs.
type HeadlessWindow struct {
	width, height int
	queue         []input.Event
}

// NewHeadlessWindow returns a headless window of the given size.
func NewHeadlessWindow(width, height int) *HeadlessWindow {
	return &HeadlessWindow{width: width, height: height}
}

// Push queues events for the next poll. A ResizeEvent changes the size
// reported from then on.
func (w *HeadlessWindow) Push(events ...input.Event) {
	for _, ev := range events {
		if r, ok := ev.(input.ResizeEvent); ok {
			w.width, w.height = r.Width, r.Height
		}
	}
	w.queue = append(w.queue, events...)
}

// Events drains the queue.
func (w *HeadlessWindow) Events() []input.Event {
	evs := w.queue
	w.queue = nil
	return evs
}

// Size returns the current size.
func (w *HeadlessWindow) Size() (width, height int) { return w.width, w.height }

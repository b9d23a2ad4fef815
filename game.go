package ggame

import (
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/load"
)

// Game is the application driven by an Engine. V is the state produced by
// loading and updated by the game; I is the input state the game builds
// from window events. The engine never inspects either.
type Game[V, I any] interface {
	// Load returns the task producing the initial state. It runs once,
	// before the first frame, on the engine's registry.
	Load() load.Task[V]

	// Interact folds one window event into the input state. It is called
	// for every event, in order, before the frame's updates.
	Interact(in *I, ev input.Event)

	// Update advances the simulation by one fixed step. in is a copy of
	// the input state taken when the step started.
	Update(view *V, in I) error

	// Draw renders the current state once per frame. timer.Fraction tells
	// how far the clock is between the last update and the next one.
	Draw(view *V, frame *Frame, timer clock.Timer) error
}

// transientClearer is implemented by input states with per-step data, such
// as *input.State. The engine calls it after each update step.
type transientClearer interface {
	ClearTransient()
}

// StateInteract applies ev to an input.State. Games using input.State as
// their input type can call it from Interact.
func StateInteract(in *input.State, ev input.Event) {
	in.Apply(ev)
}

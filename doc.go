// Package ggame is a 2D game engine core: a fixed timestep scheduler driving
// a batched, texture-array based sprite renderer.
//
// # Overview
//
// An Engine runs a Game in three phases. Loading runs the game's
// load.Task and draws an optional LoadingScreen on every progress
// notification. Running polls the Window, runs Update once per fixed step
// owed by the clock, then calls Draw exactly once with the interpolation
// fraction. Closing releases every resource of the registry.
//
// # Quick Start
//
//	type game struct{}
//
//	func (game) Load() load.Task[state]                       { return load.Value(state{}) }
//	func (game) Interact(in *input.State, ev input.Event)     { ggame.StateInteract(in, ev) }
//	func (game) Update(s *state, in input.State) error        { s.x += in.Axis(input.KeyLeft, input.KeyRight); return nil }
//	func (game) Draw(s *state, f *ggame.Frame, t clock.Timer) error {
//	    f.Clear(graphics.Black)
//	    return f.Target().DrawRect(graphics.R(s.x, 10, 8, 8), graphics.White)
//	}
//
//	eng, err := ggame.New[state, input.State](game{}, ggame.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = eng.Run(ctx)
//
// # Drawing
//
// Draw records commands through a Frame into a batch.Builder. Adjacent
// commands sharing target, shader, texture array and blend mode become one
// instanced draw. Commands are never reordered, so callers get larger batches
// by sorting their own draws. Off-screen targets are drawn through
// Frame.Canvas and can be sampled by later commands of the same frame.
//
// # Backends
//
// The device is picked once at startup from the backend registry, by
// Config.Backend or by priority. Backends register on import:
//
//	import _ "github.com/gogpu/ggame/backend/software"
//	import _ "github.com/gogpu/ggame/backend/wgpu"
//
// # Logging
//
// ggame is silent by default. SetLogger installs a log/slog logger shared by
// all sub-packages.
package ggame

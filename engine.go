// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ggame

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/gogpu/ggame/backend"
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/gpucore"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/internal/logging"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/render"
	"github.com/gogpu/ggame/resource"
)

// State is the lifecycle state of an Engine.
type State uint8

const (
	// StateLoading runs the game's load task.
	StateLoading State = iota
	// StateRunning drives fixed updates and draws.
	StateRunning
	// StateClosing releases resources.
	StateClosing
	// StateClosed is final.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// builtins are the resources every frame can draw with.
type builtins struct {
	sprite resource.Shader
	solid  resource.Shader
	white  resource.TextureArray
}

// Engine runs a Game: it loads it, then steps its simulation at a fixed rate
// and draws it once per frame through the batching pipeline.
//
// Engine is not safe for concurrent use, except RequestClose.
type Engine[V, I any] struct {
	game Game[V, I]
	cfg  Config

	window     Window
	source     clock.Source
	clock      *clock.Clock
	limiter    *rate.Limiter
	device     gpucore.Device
	ownsDevice bool
	registry   *resource.Registry
	executor   *render.Executor
	builtins   builtins

	screen    LoadingScreen
	observers []func(load.Progress)

	state  State
	view   V
	input  I
	frames uint64
	stop   atomic.Bool
}

// New validates cfg, opens the graphics device and returns an engine in
// StateLoading.
func New[V, I any](game Game[V, I], cfg Config, opts ...Option) (*Engine[V, I], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	clk, err := clock.FromTicksPerSecond(cfg.TicksPerSecond, cfg.MaxLag.Duration())
	if err != nil {
		return nil, fmt.Errorf("ggame: %w", err)
	}

	e := &Engine[V, I]{
		game:      game,
		cfg:       cfg,
		window:    o.window,
		source:    o.source,
		clock:     clk,
		device:    o.device,
		screen:    o.screen,
		observers: o.observers,
	}
	if e.window == nil {
		e.window = NewHeadlessWindow(cfg.Width, cfg.Height)
	}
	if e.source == nil {
		e.source = clock.NewSystem()
	}
	if cfg.MaxFPS > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.MaxFPS), 1)
	}
	if e.device == nil {
		if e.device, err = openDevice(cfg, o); err != nil {
			return nil, err
		}
		e.ownsDevice = true
	}

	e.registry = resource.NewRegistry(e.device)
	e.executor = render.NewExecutor(e.device, e.registry)
	e.executor.SetSurfaceSize(e.window.Size())
	if e.builtins, err = createBuiltins(e.registry); err != nil {
		e.registry.ReleaseAll()
		if e.ownsDevice {
			e.device.Destroy()
		}
		return nil, err
	}

	logging.Logger().Info("ggame: engine created",
		"backend", e.device.Name(),
		"ticks_per_second", cfg.TicksPerSecond,
		"max_lag", cfg.MaxLag.Duration())
	return e, nil
}

func openDevice(cfg Config, o options) (gpucore.Device, error) {
	bcfg := backend.Config{
		Width:    cfg.Width,
		Height:   cfg.Height,
		VSync:    cfg.VSync,
		Provider: o.provider,
		Label:    o.label,
	}
	var (
		d   gpucore.Device
		err error
	)
	if cfg.Backend == "" {
		d, err = backend.Default(bcfg)
	} else {
		d, err = backend.Open(cfg.Backend, bcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("ggame: open backend: %w", err)
	}
	return d, nil
}

func createBuiltins(reg *resource.Registry) (builtins, error) {
	var b builtins
	var err error
	if b.sprite, err = reg.CreateShader(gpucore.ShaderDescriptor{Label: "sprite", Builtin: gpucore.ShaderSprite}); err != nil {
		return b, fmt.Errorf("ggame: sprite shader: %w", err)
	}
	if b.solid, err = reg.CreateShader(gpucore.ShaderDescriptor{Label: "solid", Builtin: gpucore.ShaderSolid}); err != nil {
		return b, fmt.Errorf("ggame: solid shader: %w", err)
	}
	if b.white, err = reg.CreateTextureArray(1, 1, []resource.Pixels{resource.SolidPixels(1, 1, graphics.White)}); err != nil {
		return b, fmt.Errorf("ggame: white texture: %w", err)
	}
	return b, nil
}

// State returns the lifecycle state.
func (e *Engine[V, I]) State() State { return e.state }

// Config returns the configuration the engine was created with.
func (e *Engine[V, I]) Config() Config { return e.cfg }

// Registry returns the resource registry of the engine's device.
func (e *Engine[V, I]) Registry() *resource.Registry { return e.registry }

// Device returns the graphics device.
func (e *Engine[V, I]) Device() gpucore.Device { return e.device }

// Stats returns the executor statistics of the last presented frame.
func (e *Engine[V, I]) Stats() render.Stats { return e.executor.Stats() }

// Frames returns the number of frames presented while running.
func (e *Engine[V, I]) Frames() uint64 { return e.frames }

// View returns the game state. It is the zero value before loading.
func (e *Engine[V, I]) View() *V { return &e.view }

// RequestClose asks the engine to close after the current frame. It is safe
// to call from any goroutine.
func (e *Engine[V, I]) RequestClose() { e.stop.Store(true) }

// Run loads the game if needed and runs frames until the context is
// cancelled, the window or the game asks to close, or an error occurs. The
// engine is closed when Run returns, even on panic.
func (e *Engine[V, I]) Run(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			_ = e.Close()
			panic(r)
		}
	}()

	if e.state == StateLoading {
		if err := e.Load(ctx); err != nil {
			if errors.Is(err, ErrTerminated) {
				return nil
			}
			return err
		}
	}
	for {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return e.Close()
			}
		}
		err := e.Frame(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrTerminated):
			return nil
		default:
			return err
		}
	}
}

// Load runs the game's load task, drawing the loading screen on every
// progress notification. On success the engine enters StateRunning and the
// clock restarts, so load time is not simulated. On failure the engine is
// closed and the error returned; a task failure is a *load.Error.
func (e *Engine[V, I]) Load(ctx context.Context) error {
	switch e.state {
	case StateLoading:
	case StateRunning:
		return ErrAlreadyLoaded
	default:
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// A loading screen error cancels the task before its next unit.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var screenErr error
	onProgress := func(p load.Progress) {
		if screenErr != nil {
			return
		}
		if e.screen != nil {
			if screenErr = e.drawLoading(p); screenErr != nil {
				cancel(screenErr)
				return
			}
		}
		for _, fn := range e.observers {
			fn(p)
		}
	}

	view, err := e.game.Load().Run(ctx, e.registry, onProgress)
	if screenErr != nil {
		err = screenErr
	}
	if err != nil {
		if !errors.Is(err, ErrTerminated) {
			logging.Logger().Warn("ggame: load failed", "err", err)
		}
		return errors.Join(err, e.Close())
	}

	e.view = view
	e.clock.Reset(e.source.Now())
	e.setState(StateRunning)
	return nil
}

func (e *Engine[V, I]) drawLoading(p load.Progress) error {
	f := e.newFrame()
	if err := e.screen.Draw(f, p); err != nil {
		return err
	}
	return e.submit(f)
}

// Frame runs one iteration: poll the window, tick the clock, run the due
// fixed updates, draw once and present. If a close was requested, or ctx is
// done, Frame closes the engine instead and returns ErrTerminated.
//
// Any error from the game or the device closes the engine.
func (e *Engine[V, I]) Frame(ctx context.Context) (err error) {
	switch e.state {
	case StateRunning:
	case StateLoading:
		return ErrNotLoaded
	default:
		return ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			_ = e.Close()
			panic(r)
		}
	}()
	if e.closeDue(ctx) {
		return errors.Join(ErrTerminated, e.Close())
	}

	for _, ev := range e.window.Events() {
		if _, ok := ev.(input.CloseEvent); ok {
			e.RequestClose()
		}
		e.game.Interact(&e.input, ev)
	}
	e.executor.SetSurfaceSize(e.window.Size())

	e.clock.Tick(e.source.Now())
	for e.clock.ConsumeStep() {
		if err := e.game.Update(&e.view, e.input); err != nil {
			return e.abort("update", err)
		}
		if c, ok := any(&e.input).(transientClearer); ok {
			c.ClearTransient()
		}
	}

	f := e.newFrame()
	if err := e.game.Draw(&e.view, f, e.clock.Timer()); err != nil {
		return e.abort("draw", err)
	}
	if err := e.submit(f); err != nil {
		return e.abort("submit", err)
	}
	e.frames++

	s := e.executor.Stats()
	logging.Logger().Debug("ggame: frame presented",
		"frame", e.frames, "batches", s.Batches, "draw_calls", s.DrawCalls, "instances", s.Instances)
	return nil
}

func (e *Engine[V, I]) closeDue(ctx context.Context) bool {
	return e.stop.Load() || (ctx != nil && ctx.Err() != nil)
}

// abort closes the engine after a failure in phase.
func (e *Engine[V, I]) abort(phase string, err error) error {
	if !errors.Is(err, ErrTerminated) {
		logging.Logger().Warn("ggame: frame failed", "phase", phase, "err", err)
	}
	return errors.Join(err, e.Close())
}

func (e *Engine[V, I]) submit(f *Frame) error {
	batches, err := f.finish()
	if err != nil {
		return err
	}
	return e.executor.Submit(batches)
}

// Close releases every registry resource, targets first, and destroys the
// device if the engine opened it. Close is idempotent.
func (e *Engine[V, I]) Close() error {
	if e.state == StateClosing || e.state == StateClosed {
		return nil
	}
	e.setState(StateClosing)
	e.registry.ReleaseAll()
	if e.ownsDevice {
		e.device.Destroy()
	}
	e.setState(StateClosed)
	return nil
}

func (e *Engine[V, I]) setState(s State) {
	logging.Logger().Info("ggame: engine state", "from", e.state, "to", s)
	e.state = s
}

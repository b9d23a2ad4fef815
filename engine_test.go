package ggame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/recording"
	"github.com/gogpu/ggame/render"
	"github.com/gogpu/ggame/resource"
)

type testView struct {
	updates   int
	draws     int
	inputs    []input.State
	fractions []float64
	canvas    resource.RenderTarget
}

type testGame struct {
	task     load.Task[testView]
	onUpdate func(v *testView, in input.State) error
	onDraw   func(v *testView, f *Frame, timer clock.Timer) error
}

func (g *testGame) Load() load.Task[testView] { return g.task }

func (g *testGame) Interact(in *input.State, ev input.Event) { StateInteract(in, ev) }

func (g *testGame) Update(v *testView, in input.State) error {
	v.updates++
	v.inputs = append(v.inputs, in)
	if g.onUpdate != nil {
		return g.onUpdate(v, in)
	}
	return nil
}

func (g *testGame) Draw(v *testView, f *Frame, timer clock.Timer) error {
	v.draws++
	v.fractions = append(v.fractions, timer.Fraction)
	if g.onDraw != nil {
		return g.onDraw(v, f, timer)
	}
	return nil
}

type harness struct {
	engine *Engine[testView, input.State]
	device *recording.Recorder
	clock  *clock.Manual
	window *HeadlessWindow
}

func newHarness(t *testing.T, g *testGame, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		device: recording.New(nil),
		clock:  &clock.Manual{},
		window: NewHeadlessWindow(320, 240),
	}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 320, 240
	opts = append([]Option{WithDevice(h.device), WithClockSource(h.clock), WithWindow(h.window)}, opts...)
	e, err := New[testView, input.State](g, cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	h.engine = e
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	if err := h.engine.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func (h *harness) frame(t *testing.T, advance time.Duration) {
	t.Helper()
	h.clock.Advance(advance)
	if err := h.engine.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
}

func TestSixtyTicksAtSixteenMillis(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.load(t)
	v := h.engine.View()

	const frames = 600
	for i := 0; i < frames; i++ {
		before := v.updates
		h.frame(t, 16*time.Millisecond)
		if n := v.updates - before; n > 1 {
			t.Fatalf("frame %d ran %d updates, want at most 1", i, n)
		}
	}
	// 9600ms of 16.666ms steps.
	if v.updates != 576 {
		t.Errorf("updates = %d, want 576", v.updates)
	}
	if v.draws != frames || h.engine.Frames() != frames {
		t.Errorf("draws = %d, frames = %d, want %d", v.draws, h.engine.Frames(), frames)
	}
	for i, f := range v.fractions {
		if f < 0 || f >= 1 {
			t.Fatalf("frame %d fraction = %v, want [0, 1)", i, f)
		}
	}
	if h.device.Frames() != frames {
		t.Errorf("presented %d frames, want %d", h.device.Frames(), frames)
	}
}

func TestCatchUpIsCapped(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.load(t)
	h.frame(t, 5*time.Second)
	v := h.engine.View()
	// 250ms max lag, 16.666ms step.
	if v.updates != 15 {
		t.Errorf("updates = %d, want 15", v.updates)
	}
	if v.draws != 1 {
		t.Errorf("draws = %d, want 1", v.draws)
	}
}

func TestLoadTimeIsNotSimulated(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.clock.Advance(10 * time.Second)
	h.load(t)
	h.frame(t, 0)
	if v := h.engine.View(); v.updates != 0 {
		t.Errorf("updates after load = %d, want 0", v.updates)
	}
}

func TestInputSnapshotPerStep(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.load(t)
	h.window.Push(input.KeyEvent{Key: input.KeyA, Pressed: true})
	h.frame(t, 34*time.Millisecond)

	v := h.engine.View()
	if len(v.inputs) != 2 {
		t.Fatalf("updates = %d, want 2", len(v.inputs))
	}
	if !v.inputs[0].KeyPressed(input.KeyA) || v.inputs[1].KeyPressed(input.KeyA) {
		t.Error("a key press must be seen by exactly one update")
	}
	if !v.inputs[0].KeyDown(input.KeyA) || !v.inputs[1].KeyDown(input.KeyA) {
		t.Error("a held key must be down in every update")
	}
}

func TestPressWaitsForNextStep(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.load(t)
	h.window.Push(input.KeyEvent{Key: input.KeyA, Pressed: true})
	h.frame(t, time.Millisecond)
	h.frame(t, 16*time.Millisecond)

	v := h.engine.View()
	if len(v.inputs) != 1 || !v.inputs[0].KeyPressed(input.KeyA) {
		t.Errorf("press not delivered to the first step: %d updates", len(v.inputs))
	}
}

func TestLoadFailureCloses(t *testing.T) {
	boom := errors.New("boom")
	g := &testGame{task: load.Stage("assets", load.New(func() (testView, error) {
		return testView{}, boom
	}))}
	h := newHarness(t, g)

	err := h.engine.Load(context.Background())
	if !errors.Is(err, load.ErrLoad) || !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want load error wrapping boom", err)
	}
	var le *load.Error
	if !errors.As(err, &le) || le.Stage != "assets" {
		t.Errorf("load error stage = %v, want assets", le)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
	if err := h.engine.Frame(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame() after failed load = %v, want ErrClosed", err)
	}
	if tex, sh, rt := h.device.Live(); tex+sh+rt != 0 {
		t.Errorf("live objects after close = %d/%d/%d, want none", tex, sh, rt)
	}
}

func TestFrameBeforeLoad(t *testing.T) {
	h := newHarness(t, &testGame{})
	if err := h.engine.Frame(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Frame() error = %v, want ErrNotLoaded", err)
	}
	h.load(t)
	if err := h.engine.Load(context.Background()); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second Load() error = %v, want ErrAlreadyLoaded", err)
	}
}

func TestUpdateErrorCloses(t *testing.T) {
	boom := errors.New("update failed")
	h := newHarness(t, &testGame{onUpdate: func(*testView, input.State) error { return boom }})
	h.load(t)
	h.clock.Advance(20 * time.Millisecond)
	if err := h.engine.Frame(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Frame() error = %v, want %v", err, boom)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
	if v := h.engine.View(); v.draws != 0 {
		t.Errorf("draws = %d after a failed update, want 0", v.draws)
	}
}

func TestRunUntilTerminated(t *testing.T) {
	var h *harness
	g := &testGame{
		onUpdate: func(v *testView, _ input.State) error {
			if v.updates == 3 {
				return ErrTerminated
			}
			return nil
		},
		onDraw: func(*testView, *Frame, clock.Timer) error {
			h.clock.Advance(17 * time.Millisecond)
			return nil
		},
	}
	h = newHarness(t, g)
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
	if v := h.engine.View(); v.updates != 3 {
		t.Errorf("updates = %d, want 3", v.updates)
	}
}

func TestWindowCloseFinishesFrame(t *testing.T) {
	h := newHarness(t, &testGame{})
	h.load(t)
	h.window.Push(input.CloseEvent{})
	h.frame(t, 20*time.Millisecond)

	if v := h.engine.View(); v.draws != 1 {
		t.Errorf("draws = %d, want the current frame to finish", v.draws)
	}
	if err := h.engine.Frame(context.Background()); !errors.Is(err, ErrTerminated) {
		t.Errorf("next Frame() error = %v, want ErrTerminated", err)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := &testGame{onDraw: func(v *testView, _ *Frame, _ clock.Timer) error {
		if v.draws == 2 {
			cancel()
		}
		return nil
	}}
	h := newHarness(t, g)
	if err := h.engine.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v := h.engine.View(); v.draws != 2 {
		t.Errorf("draws = %d, want 2", v.draws)
	}
}

func TestPanicReleasesResources(t *testing.T) {
	h := newHarness(t, &testGame{onDraw: func(*testView, *Frame, clock.Timer) error {
		panic("draw exploded")
	}})
	h.load(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = h.engine.Frame(context.Background())
	}()
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
	if tex, sh, rt := h.device.Live(); tex+sh+rt != 0 {
		t.Errorf("live objects = %d/%d/%d, want none", tex, sh, rt)
	}
}

func TestCloseReleaseOrder(t *testing.T) {
	g := &testGame{task: load.UsingRegistry(func(r *resource.Registry) (testView, error) {
		rt, err := r.CreateRenderTarget(16, 16, false)
		return testView{canvas: rt}, err
	})}
	h := newHarness(t, g)
	h.load(t)
	h.device.Reset()
	if err := h.engine.Close(); err != nil {
		t.Fatal(err)
	}

	var order []recording.CommandType
	for _, c := range h.device.Commands() {
		if n := len(order); n == 0 || order[n-1] != c.Type() {
			order = append(order, c.Type())
		}
	}
	want := []recording.CommandType{recording.CmdDestroyRenderTarget, recording.CmdDestroyShader, recording.CmdDestroyTextureArray}
	if len(order) != len(want) {
		t.Fatalf("destroy order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("destroy order = %v, want %v", order, want)
			break
		}
	}
	if err := h.engine.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestLoadingScreen(t *testing.T) {
	var screens, observed int
	g := &testGame{task: load.Join(
		load.Stage("one", load.New(func() (int, error) { return 1, nil })),
		load.Stage("two", load.New(func() (int, error) { return 2, nil })),
		func(a, b int) testView { return testView{updates: 0} },
	)}
	screen := LoadingFunc(func(f *Frame, p load.Progress) error {
		screens++
		return f.Clear(graphics.Black)
	})
	h := newHarness(t, g, WithLoadingScreen(screen), WithProgress(func(load.Progress) { observed++ }))
	h.load(t)

	if screens == 0 || screens != observed {
		t.Errorf("screens = %d, observed = %d, want equal and non-zero", screens, observed)
	}
	if h.device.Frames() != screens {
		t.Errorf("presented %d loading frames, want %d", h.device.Frames(), screens)
	}
}

func TestLoadingScreenTerminates(t *testing.T) {
	screen := LoadingFunc(func(*Frame, load.Progress) error { return ErrTerminated })
	h := newHarness(t, &testGame{}, WithLoadingScreen(screen))
	if err := h.engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
}

func TestLoadingScreenStopsTask(t *testing.T) {
	units := 0
	unit := load.New(func() (testView, error) {
		units++
		return testView{}, nil
	})
	g := &testGame{task: load.Map(load.All(unit, unit, unit, unit), func([]testView) testView { return testView{} })}

	tests := []struct {
		name     string
		stopAt   int // notification that terminates
		maxUnits int
	}{
		{"first notification", 0, 0},
		{"after two units", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units = 0
			seen := 0
			screen := LoadingFunc(func(*Frame, load.Progress) error {
				defer func() { seen++ }()
				if seen >= tt.stopAt {
					return ErrTerminated
				}
				return nil
			})
			h := newHarness(t, g, WithLoadingScreen(screen))
			if err := h.engine.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v, want nil", err)
			}
			if units > tt.maxUnits {
				t.Errorf("%d units ran after the screen terminated, want at most %d", units, tt.maxUnits)
			}
			if h.engine.State() != StateClosed {
				t.Errorf("State() = %v, want closed", h.engine.State())
			}
		})
	}
}

func TestLoadingScreenErrorIsReturned(t *testing.T) {
	errScreen := errors.New("screen broke")
	screen := LoadingFunc(func(*Frame, load.Progress) error { return errScreen })
	h := newHarness(t, &testGame{}, WithLoadingScreen(screen))
	err := h.engine.Load(context.Background())
	if !errors.Is(err, errScreen) {
		t.Fatalf("Load() error = %v, want the screen error", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, should not expose the internal cancellation", err)
	}
}

func TestRunNilContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFPS = 1000
	n := 0
	g := &testGame{onDraw: func(*testView, *Frame, clock.Timer) error {
		if n++; n == 3 {
			return ErrTerminated
		}
		return nil
	}}
	e, err := New[testView, input.State](g, cfg, WithDevice(recording.New(nil)), WithClockSource(&clock.Manual{}))
	if err != nil {
		t.Fatal(err)
	}
	//nolint:staticcheck // a nil context is accepted like Load and Frame do
	if err := e.Run(nil); err != nil {
		t.Fatalf("Run(nil) error = %v", err)
	}
	if n != 3 {
		t.Errorf("draws = %d, want 3", n)
	}
}

func TestResizeFollowsWindow(t *testing.T) {
	var size [2]int
	h := newHarness(t, &testGame{onDraw: func(_ *testView, f *Frame, _ clock.Timer) error {
		size[0], size[1] = f.Size()
		return nil
	}})
	h.load(t)
	h.window.Push(input.ResizeEvent{Width: 640, Height: 480})
	h.frame(t, 0)
	if size != [2]int{640, 480} {
		t.Errorf("frame size = %v, want 640x480", size)
	}
	begins := h.device.CommandsOf(recording.CmdBeginFrame)
	if last := begins[len(begins)-1].(recording.BeginFrameCommand); last.Width != 640 || last.Height != 480 {
		t.Errorf("BeginFrame = %dx%d, want 640x480", last.Width, last.Height)
	}
}

func TestBackendFailureIsFatal(t *testing.T) {
	h := newHarness(t, &testGame{onDraw: func(_ *testView, f *Frame, _ clock.Timer) error {
		return f.Target().DrawRect(graphics.R(0, 0, 4, 4), graphics.Red)
	}})
	h.load(t)
	h.device.FailOn(recording.CmdDraw, errors.New("device lost"))
	err := h.engine.Frame(context.Background())
	if !errors.Is(err, render.ErrBackendSubmission) {
		t.Fatalf("Frame() error = %v, want ErrBackendSubmission", err)
	}
	if h.engine.State() != StateClosed {
		t.Errorf("State() = %v, want closed", h.engine.State())
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TicksPerSecond = 0
	if _, err := New[testView, input.State](&testGame{}, cfg, WithDevice(recording.New(nil))); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestOpenNamedBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "recording"
	e, err := New[testView, input.State](&testGame{}, cfg, WithClockSource(&clock.Manual{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()
	if e.Device().Name() != "recording" {
		t.Errorf("Device().Name() = %q, want recording", e.Device().Name())
	}

	cfg.Backend = "missing"
	if _, err := New[testView, input.State](&testGame{}, cfg); err == nil {
		t.Error("New() with an unknown backend should fail")
	}
}

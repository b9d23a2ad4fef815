package ggame

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/ggame/backend/software"
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/recording"
	"github.com/gogpu/ggame/render"
	"github.com/gogpu/ggame/resource"
	"github.com/gogpu/ggame/text"
)

func newSoftwareEngine(t *testing.T, g *testGame) (*Engine[testView, input.State], *software.Device) {
	t.Helper()
	d := software.New()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 16, 16
	e, err := New[testView, input.State](g, cfg, WithDevice(d), WithClockSource(&clock.Manual{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return e, d
}

func TestDrawRectPixels(t *testing.T) {
	e, d := newSoftwareEngine(t, &testGame{onDraw: func(_ *testView, f *Frame, _ clock.Timer) error {
		if err := f.Clear(graphics.Black); err != nil {
			return err
		}
		return f.Target().DrawRect(graphics.R(2, 2, 4, 4), graphics.Red)
	}})
	if err := e.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	img := d.Snapshot()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{3, 3, color.RGBA{R: 255, A: 255}},
		{0, 0, color.RGBA{A: 255}},
		{7, 7, color.RGBA{A: 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestTargetTransform(t *testing.T) {
	e, d := newSoftwareEngine(t, &testGame{onDraw: func(_ *testView, f *Frame, _ clock.Timer) error {
		if err := f.Clear(graphics.Transparent); err != nil {
			return err
		}
		moved := f.Target().Transform(graphics.Translate(10, 0))
		return moved.DrawRect(graphics.R(0, 0, 2, 2), graphics.Green)
	}})
	if err := e.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	img := d.Snapshot()
	if got := img.RGBAAt(10, 0); got.G != 255 {
		t.Errorf("pixel (10,0) = %v, want green", got)
	}
	if got := img.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("pixel (0,0) = %v, want untouched", got)
	}
}

func TestSpriteLocalTransform(t *testing.T) {
	s := NewSprite(resource.TextureArray{}, 0)
	s.Position = graphics.Pt(5, 5)
	s.Origin = graphics.Pt(1, 1)
	s.Scale = graphics.Pt(2, 2)
	m := s.local().Multiply(graphics.Scale(4, 4))

	tests := []struct {
		in, want graphics.Point
	}{
		{graphics.Pt(0, 0), graphics.Pt(3, 3)},
		{graphics.Pt(1, 1), graphics.Pt(11, 11)},
	}
	for _, tt := range tests {
		got := m.Apply(tt.in)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanvasComposition(t *testing.T) {
	mkGame := func(canvasFirst bool) *testGame {
		return &testGame{
			task: load.Map(CanvasTask(8, 8, false), func(rt resource.RenderTarget) testView {
				return testView{canvas: rt}
			}),
			onDraw: func(v *testView, f *Frame, _ clock.Timer) error {
				info, err := f.Registry().ResolveRenderTarget(v.canvas)
				if err != nil {
					return err
				}
				canvas, err := f.Canvas(v.canvas)
				if err != nil {
					return err
				}
				drawCanvas := func() error {
					_ = canvas.Clear(graphics.Blue)
					return canvas.DrawRect(graphics.R(0, 0, 4, 4), graphics.White)
				}
				if canvasFirst {
					if err := drawCanvas(); err != nil {
						return err
					}
				}
				_ = f.Draw(NewSprite(info.Texture, 0))
				if !canvasFirst {
					return drawCanvas()
				}
				return nil
			},
		}
	}

	e, d := newSoftwareEngine(t, mkGame(true))
	if err := e.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := d.Snapshot().RGBAAt(6, 6); got.B != 255 {
		t.Errorf("composed pixel (6,6) = %v, want the canvas clear color", got)
	}

	e, _ = newSoftwareEngine(t, mkGame(false))
	err := e.Frame(context.Background())
	if !errors.Is(err, render.ErrOrderingViolation) {
		t.Errorf("Frame() error = %v, want ErrOrderingViolation", err)
	}
}

func TestCanvasTask(t *testing.T) {
	g := &testGame{task: load.Map(CanvasTask(12, 6, true), func(rt resource.RenderTarget) testView {
		return testView{canvas: rt}
	})}
	e, _ := newSoftwareEngine(t, g)
	got, err := e.Registry().ResolveRenderTarget(e.View().canvas)
	if err != nil {
		t.Fatalf("ResolveRenderTarget() error = %v", err)
	}
	if got.Width != 12 || got.Height != 6 || !got.Depth {
		t.Errorf("render target = %+v, want 12x6 with depth", got)
	}
	if g.task.Total() != 1 {
		t.Errorf("Total() = %d, want 1", g.task.Total())
	}

	_, err = CanvasTask(0, 6, false).Run(context.Background(), e.Registry(), nil)
	if !errors.Is(err, load.ErrLoad) {
		t.Errorf("Run() with zero width error = %v, want a load error", err)
	}
}

func TestStaleSpriteTexture(t *testing.T) {
	var callErr error
	g := &testGame{}
	var released resource.TextureArray
	g.task = load.UsingRegistry(func(r *resource.Registry) (testView, error) {
		tex, err := r.CreateTextureArray(2, 2, []resource.Pixels{resource.SolidPixels(2, 2, graphics.White)})
		if err != nil {
			return testView{}, err
		}
		released = tex
		return testView{}, r.Release(tex.Handle())
	})
	g.onDraw = func(_ *testView, f *Frame, _ clock.Timer) error {
		callErr = f.Draw(NewSprite(released, 0))
		return nil
	}

	e, _ := newSoftwareEngine(t, g)
	err := e.Frame(context.Background())
	if !errors.Is(callErr, resource.ErrStaleHandle) {
		t.Errorf("Draw() error = %v, want ErrStaleHandle", callErr)
	}
	if !errors.Is(err, resource.ErrStaleHandle) {
		t.Errorf("Frame() error = %v, want the ignored draw error", err)
	}
}

func TestDrawTextSingleBatch(t *testing.T) {
	rec := recording.New(nil)
	var font *text.Font
	g := &testGame{
		task: load.Map(text.LoadTask(text.GoRegular(), 12, text.ASCII), func(f *text.Font) testView {
			font = f
			return testView{}
		}),
		onDraw: func(_ *testView, f *Frame, _ clock.Timer) error {
			return f.Target().DrawText(font, "abc", graphics.Pt(1, 1), 0, graphics.White)
		},
	}
	e, err := New[testView, input.State](g, DefaultConfig(), WithDevice(rec), WithClockSource(&clock.Manual{}))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := e.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if s := e.Stats(); s.DrawCalls != 1 || s.Instances != 3 {
		t.Errorf("Stats() = %+v, want one draw of 3 glyphs", s)
	}
}

func TestProgressBar(t *testing.T) {
	e, d := newSoftwareEngine(t, &testGame{})
	bar := NewProgressBar()
	bar.Height = 4

	f := e.newFrame()
	if err := bar.Draw(f, load.Progress{Total: 2, Completed: 1}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if err := e.submit(f); err != nil {
		t.Fatalf("submit() error = %v", err)
	}

	// 16px surface: the bar spans x 3.2..12.8 at y 6..10, half filled.
	img := d.Snapshot()
	if got := img.RGBAAt(5, 8); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("filled pixel = %v, want white", got)
	}
	if got := img.RGBAAt(11, 8); got.R == 255 || got.A != 255 {
		t.Errorf("track pixel = %v, want the track color", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("background pixel = %v, want black", got)
	}
}

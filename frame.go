package ggame

import (
	"github.com/gogpu/ggame/batch"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/resource"
	"github.com/gogpu/ggame/text"
)

// Frame is the drawing surface handed to Draw and to loading screens. It
// records into a fresh batch builder; nothing reaches the device until the
// engine submits the frame after Draw returns.
//
// Drawing methods return errors at the call site and the first one is also
// kept, so a frame with an ignored error still fails at submission.
type Frame struct {
	registry *resource.Registry
	builtins builtins
	builder  *batch.Builder
	surface  *Target
	err      error
}

func (e *Engine[V, I]) newFrame() *Frame {
	w, h := e.window.Size()
	f := &Frame{
		registry: e.registry,
		builtins: e.builtins,
		builder:  batch.NewBuilder(),
	}
	f.surface = &Target{frame: f, width: w, height: h, transform: graphics.Identity()}
	return f
}

// Target returns the presentable surface.
func (f *Frame) Target() *Target { return f.surface }

// Size returns the surface size.
func (f *Frame) Size() (width, height int) { return f.surface.width, f.surface.height }

// Registry returns the registry the frame's handles belong to.
func (f *Frame) Registry() *resource.Registry { return f.registry }

// Clear clears the surface.
func (f *Frame) Clear(c graphics.RGBA) error { return f.surface.Clear(c) }

// Draw draws a sprite on the surface.
func (f *Frame) Draw(s Sprite) error { return f.surface.Draw(s) }

// Canvas returns a target drawing into the off-screen render target rt.
// Its color texture, RenderTargetInfo.Texture, can be drawn as a sprite by
// later commands of the same frame once all drawing into rt is recorded.
func (f *Frame) Canvas(rt resource.RenderTarget) (*Target, error) {
	info, err := f.registry.ResolveRenderTarget(rt)
	if err != nil {
		return nil, f.keep(err)
	}
	return &Target{frame: f, target: rt, width: info.Width, height: info.Height, transform: graphics.Identity()}, nil
}

// CanvasTask returns a one-unit load task creating an off-screen render
// target of the given size for use with Frame.Canvas.
func CanvasTask(width, height int, depth bool) load.Task[resource.RenderTarget] {
	return load.UsingRegistry(func(r *resource.Registry) (resource.RenderTarget, error) {
		return r.CreateRenderTarget(width, height, depth)
	})
}

// Err returns the first drawing error of the frame.
func (f *Frame) Err() error { return f.err }

func (f *Frame) keep(err error) error {
	if err != nil && f.err == nil {
		f.err = err
	}
	return err
}

func (f *Frame) finish() ([]batch.Batch, error) {
	batches, err := f.builder.Finish()
	if f.err != nil {
		return nil, f.err
	}
	return batches, err
}

// Target is a render target seen through a transformation. Targets are
// cheap views: Transform returns a new one sharing the frame.
type Target struct {
	frame         *Frame
	target        resource.RenderTarget
	width, height int
	transform     graphics.Matrix
}

// Size returns the size of the underlying target in pixels.
func (t *Target) Size() (width, height int) { return t.width, t.height }

// Handle returns the underlying render target. The surface is the zero
// RenderTarget.
func (t *Target) Handle() resource.RenderTarget { return t.target }

// Transform returns a view of t where m is applied to all drawing before
// the current transformation.
func (t *Target) Transform(m graphics.Matrix) *Target {
	nt := *t
	nt.transform = t.transform.Multiply(m)
	return &nt
}

// Clear records a clear of the whole target. Clears are never implicit.
func (t *Target) Clear(c graphics.RGBA) error {
	return t.frame.keep(t.frame.builder.Clear(t.target, c))
}

// Draw records one sprite.
func (t *Target) Draw(s Sprite) error {
	info, err := t.frame.registry.ResolveTextureArray(s.Texture)
	if err != nil {
		return t.frame.keep(err)
	}
	uv := s.Source
	if uv == (graphics.Rect{}) {
		uv = graphics.FullUV
	}
	shader := s.Shader
	if shader.IsZero() {
		shader = t.frame.builtins.sprite
	}
	size := graphics.Scale(uv.W*float64(info.Width), uv.H*float64(info.Height))
	return t.record(batch.Command{
		Shader:    shader,
		Source:    batch.Slot{Array: s.Texture, Layer: s.Layer, UV: uv},
		Transform: s.local().Multiply(size),
		Tint:      s.Tint,
		Blend:     s.Blend,
	})
}

// DrawRect fills r with a solid color.
func (t *Target) DrawRect(r graphics.Rect, c graphics.RGBA) error {
	return t.record(batch.Command{
		Shader:    t.frame.builtins.solid,
		Source:    batch.FullSlot(t.frame.builtins.white, 0),
		Transform: graphics.Translate(r.X, r.Y).Multiply(graphics.Scale(r.W, r.H)),
		Tint:      c,
		Blend:     graphics.BlendAlpha,
	})
}

// DrawText draws s with its top-left corner at pos. A size <= 0 draws at
// the font's raster size. All glyphs of one call share the font texture, so
// they form a single batch.
func (t *Target) DrawText(f *text.Font, s string, pos graphics.Point, size float64, c graphics.RGBA) error {
	for _, g := range f.Layout(s, size) {
		err := t.record(batch.Command{
			Shader: t.frame.builtins.sprite,
			Source: batch.FullSlot(f.Texture(), g.Layer),
			Transform: graphics.Translate(pos.X+g.Rect.X, pos.Y+g.Rect.Y).
				Multiply(graphics.Scale(g.Rect.W, g.Rect.H)),
			Tint:  c,
			Blend: graphics.BlendAlpha,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// record applies the target transformation and appends cmd.
func (t *Target) record(cmd batch.Command) error {
	cmd.Target = t.target
	cmd.Transform = t.transform.Multiply(cmd.Transform)
	return t.frame.keep(t.frame.builder.Draw(cmd))
}

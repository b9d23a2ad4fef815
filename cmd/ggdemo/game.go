package main

import (
	"fmt"
	"math"

	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/resource"
	"github.com/gogpu/ggame/text"
	"github.com/gogpu/ggame/ui"
)

const (
	spriteSize = 16
	ballCount  = 64
	canvasSize = 128
)

type ball struct {
	pos, prev, vel graphics.Point
	layer          int
}

type assets struct {
	sprites resource.TextureArray
	canvas  resource.RenderTarget
	font    *text.Font
}

type world struct {
	assets
	balls  []ball
	width  float64
	height float64
	paused bool

	menu  *ui.Interface[menuMsg]
	pause *ui.Checkbox[menuMsg]
}

type menuMsg int

const (
	msgPause menuMsg = iota
	msgResume
	msgReverse
)

// controls is the demo input: held state plus the raw events the menu
// needs, both cleared after every update step.
type controls struct {
	input.State
	events []input.Event
}

func (c *controls) ClearTransient() {
	c.State.ClearTransient()
	c.events = nil
}

// demo bounces colored balls over a tiled background canvas.
type demo struct {
	width, height int
	// afterDraw runs at the end of every frame; headless runs advance their
	// manual clock and stop the engine from it.
	afterDraw func(frame uint64) error
}

func (d *demo) Load() load.Task[world] {
	sprites := load.Stage("sprites", load.UsingRegistry(func(r *resource.Registry) (resource.TextureArray, error) {
		colors := []graphics.RGBA{graphics.Red, graphics.Green, graphics.Blue, graphics.White}
		layers := make([]resource.Pixels, len(colors))
		for i, c := range colors {
			layers[i] = discPixels(spriteSize, c)
		}
		return r.CreateTextureArray(spriteSize, spriteSize, layers)
	}))
	canvas := load.Stage("canvas", ggame.CanvasTask(canvasSize, canvasSize, false))
	font := load.Stage("font", text.LoadTask(text.GoRegular(), 16, text.ASCII))

	a := load.Join(sprites, canvas, func(s resource.TextureArray, c resource.RenderTarget) assets {
		return assets{sprites: s, canvas: c}
	})
	a = load.Join(a, font, func(a assets, f *text.Font) assets {
		a.font = f
		return a
	})
	return load.Map(a, d.newWorld)
}

func (d *demo) newWorld(a assets) world {
	w := world{assets: a, width: float64(d.width), height: float64(d.height)}
	w.pause = ui.NewCheckbox("Paused", func(on bool) menuMsg {
		if on {
			return msgPause
		}
		return msgResume
	})
	menu := ui.NewRow[menuMsg]().Push(w.pause, ui.NewButton[menuMsg]("Reverse").OnClick(msgReverse))
	menu.Spacing, menu.Padding = 8, 4
	w.menu = ui.NewInterface[menuMsg](menu, ui.DefaultTheme(a.font))
	w.menu.Origin = graphics.Pt(8, w.height-48)
	for i := 0; i < ballCount; i++ {
		angle := float64(i) * 2.399963 // golden angle
		p := graphics.Pt(w.width/2+math.Cos(angle)*float64(i)*3, w.height/2+math.Sin(angle)*float64(i)*3)
		w.balls = append(w.balls, ball{
			pos:   p,
			prev:  p,
			vel:   graphics.Pt(math.Cos(angle)*2, math.Sin(angle)*2),
			layer: i % 4,
		})
	}
	return w
}

func (d *demo) Interact(in *controls, ev input.Event) {
	ggame.StateInteract(&in.State, ev)
	in.events = append(in.events, ev)
}

func (d *demo) Update(w *world, in controls) error {
	if in.KeyPressed(input.KeyEscape) {
		return ggame.ErrTerminated
	}
	if in.KeyPressed(input.KeySpace) {
		w.paused = !w.paused
	}
	for _, ev := range in.events {
		for _, m := range w.menu.Event(ev) {
			switch m {
			case msgPause, msgResume:
				w.paused = m == msgPause
			case msgReverse:
				for i := range w.balls {
					w.balls[i].vel = w.balls[i].vel.Mul(-1)
				}
			}
		}
	}
	w.pause.Checked = w.paused
	for i := range w.balls {
		b := &w.balls[i]
		b.prev = b.pos
		if w.paused {
			continue
		}
		b.pos = b.pos.Add(b.vel)
		if b.pos.X < 0 || b.pos.X > w.width-spriteSize {
			b.vel.X = -b.vel.X
		}
		if b.pos.Y < 0 || b.pos.Y > w.height-spriteSize {
			b.vel.Y = -b.vel.Y
		}
	}
	return nil
}

func (d *demo) Draw(w *world, f *ggame.Frame, timer clock.Timer) error {
	canvas, err := f.Canvas(w.canvas)
	if err != nil {
		return err
	}
	if err := drawCheckers(canvas); err != nil {
		return err
	}

	info, err := f.Registry().ResolveRenderTarget(w.canvas)
	if err != nil {
		return err
	}
	if err := f.Clear(graphics.RGB(0.05, 0.05, 0.1)); err != nil {
		return err
	}
	bg := ggame.NewSprite(info.Texture, 0)
	bg.Scale = graphics.Pt(float64(d.width)/canvasSize, float64(d.height)/canvasSize)
	bg.Tint = graphics.White.WithAlpha(0.5)
	if err := f.Draw(bg); err != nil {
		return err
	}

	// Balls share one texture array, so they draw as one batch.
	for _, b := range w.balls {
		s := ggame.NewSprite(w.sprites, b.layer)
		s.Position = b.prev.Lerp(b.pos, timer.Fraction)
		if err := f.Draw(s); err != nil {
			return err
		}
	}

	if _, err := w.menu.Draw(f.Target()); err != nil {
		return err
	}

	label := fmt.Sprintf("%.0f fps  %d steps", timer.FPS, timer.Steps)
	if err := f.Target().DrawText(w.font, label, graphics.Pt(8, 8), 0, graphics.White); err != nil {
		return err
	}
	if d.afterDraw != nil {
		return d.afterDraw(timer.Frame)
	}
	return nil
}

func drawCheckers(t *ggame.Target) error {
	if err := t.Clear(graphics.Black); err != nil {
		return err
	}
	const cell = canvasSize / 8
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				continue
			}
			if err := t.DrawRect(graphics.R(float64(x*cell), float64(y*cell), cell, cell), graphics.RGB(0.2, 0.2, 0.3)); err != nil {
				return err
			}
		}
	}
	return nil
}

// discPixels renders a filled disc of premultiplied color c.
func discPixels(size int, c graphics.RGBA) resource.Pixels {
	p := resource.NewPixels(size, size)
	pc := c.Premultiply().NRGBA()
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if dx*dx+dy*dy > r*r {
				continue
			}
			i := (y*size + x) * 4
			p.Pix[i], p.Pix[i+1], p.Pix[i+2], p.Pix[i+3] = pc.R, pc.G, pc.B, pc.A
		}
	}
	return p
}

package ui

import (
	"context"
	"image/color"
	"testing"

	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/backend/software"
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/text"
)

type msg int

const (
	clicked msg = iota + 1
	checked
	unchecked
	pickA
	pickB
)

// plainTheme has no font, so widget sizes come from the theme alone.
func plainTheme() Theme {
	th := DefaultTheme(nil)
	th.Padding = 2
	th.Height = 10
	th.Box = 8
	return th
}

func click(u *Interface[msg], p graphics.Point) []msg {
	var out []msg
	out = append(out, u.Event(input.CursorEvent{Position: p})...)
	out = append(out, u.Event(input.ButtonEvent{Button: input.ButtonLeft, Pressed: true})...)
	out = append(out, u.Event(input.ButtonEvent{Button: input.ButtonLeft, Pressed: false})...)
	return out
}

func TestRowLayout(t *testing.T) {
	th := plainTheme()
	a, b := NewButton[msg]("a"), NewButton[msg]("b")
	a.Width, b.Width = 30, 20
	row := NewRow[msg]().Push(a, b)
	row.Spacing, row.Padding = 4, 1

	if got, want := row.Measure(&th), graphics.Pt(1+30+4+20+1, 10+2); got != want {
		t.Errorf("Measure() = %v, want %v", got, want)
	}
	got := row.Layout(&th, graphics.R(100, 50, 200, 40))
	want := []graphics.Rect{graphics.R(101, 51, 30, 38), graphics.R(135, 51, 20, 38)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d bounds = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestColumnLayout(t *testing.T) {
	th := plainTheme()
	col := NewColumn[msg]().Push(NewButton[msg]("a"), NewCheckbox[msg]("", nil))
	col.Spacing = 3

	// A button without font is 2*padding wide and Height tall; a checkbox
	// without label is Box wide.
	if got, want := col.Measure(&th), graphics.Pt(8, 10+3+10); got != want {
		t.Errorf("Measure() = %v, want %v", got, want)
	}
	got := col.Layout(&th, graphics.R(0, 0, 50, 23))
	want := []graphics.Rect{graphics.R(0, 0, 50, 10), graphics.R(0, 13, 50, 10)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d bounds = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestButtonClick(t *testing.T) {
	b := NewButton[msg]("ok").OnClick(clicked)
	b.Width = 20
	u := NewInterface[msg](b, plainTheme())

	tests := []struct {
		name           string
		press, release graphics.Point
		want           int
	}{
		{"inside", graphics.Pt(5, 5), graphics.Pt(6, 5), 1},
		{"released outside", graphics.Pt(5, 5), graphics.Pt(50, 5), 0},
		{"pressed outside", graphics.Pt(50, 5), graphics.Pt(5, 5), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []msg
			got = append(got, u.Event(input.CursorEvent{Position: tt.press})...)
			got = append(got, u.Event(input.ButtonEvent{Button: input.ButtonLeft, Pressed: true})...)
			got = append(got, u.Event(input.CursorEvent{Position: tt.release})...)
			got = append(got, u.Event(input.ButtonEvent{Button: input.ButtonLeft, Pressed: false})...)
			if len(got) != tt.want {
				t.Errorf("messages = %v, want %d", got, tt.want)
			}
			if b.Pressed() {
				t.Error("button still pressed after release")
			}
		})
	}

	if got := click(NewInterface[msg](NewButton[msg]("silent"), plainTheme()), graphics.Pt(1, 1)); len(got) != 0 {
		t.Errorf("button without OnClick emitted %v", got)
	}
}

func TestCheckboxToggle(t *testing.T) {
	cb := NewCheckbox("", func(on bool) msg {
		if on {
			return checked
		}
		return unchecked
	})
	u := NewInterface[msg](cb, plainTheme())

	if got := click(u, graphics.Pt(2, 2)); len(got) != 1 || got[0] != checked {
		t.Fatalf("click = %v, want [checked]", got)
	}
	if cb.Checked {
		t.Error("checkbox changed its own state")
	}
	cb.Checked = true
	if got := click(u, graphics.Pt(2, 2)); len(got) != 1 || got[0] != unchecked {
		t.Errorf("click = %v, want [unchecked]", got)
	}
	if got := click(u, graphics.Pt(40, 2)); len(got) != 0 {
		t.Errorf("click outside = %v, want none", got)
	}
}

func TestRadioGroup(t *testing.T) {
	a := NewRadio("", true, pickA)
	b := NewRadio("", false, pickB)
	u := NewInterface[msg](NewColumn[msg]().Push(a, b), plainTheme())

	tests := []struct {
		name string
		at   graphics.Point
		want []msg
	}{
		{"selected option", graphics.Pt(2, 5), nil},
		{"other option", graphics.Pt(2, 15), []msg{pickB}},
	}
	for _, tt := range tests {
		got := click(u, tt.at)
		if len(got) != len(tt.want) || (len(got) == 1 && got[0] != tt.want[0]) {
			t.Errorf("%s: click = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCursorString(t *testing.T) {
	tests := []struct {
		c    Cursor
		want string
	}{
		{CursorDefault, "default"},
		{CursorPointer, "pointer"},
		{CursorGrabbing, "grabbing"},
		{Cursor(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Cursor(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

// menuGame draws an interface every frame.
type menuGame struct {
	ui     *Interface[msg]
	cursor Cursor
}

func (g *menuGame) Load() load.Task[struct{}] { return load.Value(struct{}{}) }

func (g *menuGame) Interact(in *input.State, ev input.Event) { ggame.StateInteract(in, ev) }

func (g *menuGame) Update(*struct{}, input.State) error { return nil }

func (g *menuGame) Draw(_ *struct{}, f *ggame.Frame, _ clock.Timer) error {
	if err := f.Clear(graphics.Black); err != nil {
		return err
	}
	var err error
	g.cursor, err = g.ui.Draw(f.Target())
	return err
}

func drawMenu(t *testing.T, g *menuGame) *software.Device {
	t.Helper()
	d := software.New()
	cfg := ggame.DefaultConfig()
	cfg.Width, cfg.Height = 16, 16
	e, err := ggame.New[struct{}, input.State](g, cfg, ggame.WithDevice(d), ggame.WithClockSource(&clock.Manual{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := e.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	return d
}

func TestInterfaceDrawHover(t *testing.T) {
	th := plainTheme()
	th.Idle, th.Hover = graphics.Red, graphics.Green
	b := NewButton[msg]("")
	b.Width = 8
	th.Height = 8

	tests := []struct {
		name   string
		cursor graphics.Point
		want   color.RGBA
		hint   Cursor
	}{
		{"idle", graphics.Pt(12, 12), color.RGBA{R: 255, A: 255}, CursorDefault},
		{"hovered", graphics.Pt(2, 2), color.RGBA{G: 255, A: 255}, CursorPointer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &menuGame{ui: NewInterface[msg](b, th)}
			g.ui.Event(input.CursorEvent{Position: tt.cursor})
			d := drawMenu(t, g)
			img := d.Snapshot()
			if got := img.RGBAAt(4, 4); got != tt.want {
				t.Errorf("button pixel = %v, want %v", got, tt.want)
			}
			if got := img.RGBAAt(12, 12); got != (color.RGBA{A: 255}) {
				t.Errorf("outside pixel = %v, want black", got)
			}
			if g.cursor != tt.hint {
				t.Errorf("Draw() cursor = %v, want %v", g.cursor, tt.hint)
			}
		})
	}
}

func TestLabelsUseFont(t *testing.T) {
	src := text.GoRegular()
	a, err := text.Rasterize(src, 12, text.ASCII)
	if err != nil {
		t.Fatal(err)
	}
	font := &text.Font{Atlas: a}
	th := DefaultTheme(font)
	cb := NewCheckbox[msg]("Sound", nil)

	size := cb.Measure(&th)
	label := a.Measure("Sound", 0)
	if want := th.Box + th.Padding + label.X; size.X != want {
		t.Errorf("Measure().X = %v, want %v", size.X, want)
	}
	if size.Y < label.Y {
		t.Errorf("Measure().Y = %v, shorter than the label %v", size.Y, label.Y)
	}
}

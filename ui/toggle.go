package ui

import (
	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
)

// toggle is the box-and-label shape shared by Checkbox and Radio. A press
// anywhere on the box or its label activates it.
type toggle struct {
	Label string
}

func (g *toggle) measure(th *Theme) graphics.Point {
	l := th.measureLabel(g.Label)
	w := th.Box
	if l.X > 0 {
		w += th.Padding + l.X
	}
	return graphics.Pt(w, max(th.Height, th.Box, l.Y))
}

func (g *toggle) box(th *Theme, bounds graphics.Rect) graphics.Rect {
	return graphics.R(bounds.X, bounds.Y+(bounds.H-th.Box)/2, th.Box, th.Box)
}

// draw draws the box, its marker inset by inset when marked, and the label.
func (g *toggle) draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point, marked bool, inset float64) (Cursor, error) {
	box := g.box(th, bounds)
	fill := th.Idle
	if bounds.Contains(cursor) {
		fill = th.Hover
	}
	if err := t.DrawRect(box, fill); err != nil {
		return CursorDefault, err
	}
	if marked {
		m := graphics.R(box.X+inset, box.Y+inset, box.W-2*inset, box.H-2*inset)
		if err := t.DrawRect(m, th.Accent); err != nil {
			return CursorDefault, err
		}
	}
	if err := th.drawLabel(t, g.Label, box.X+box.W+th.Padding, bounds); err != nil {
		return CursorDefault, err
	}
	return hoverCursor(bounds, cursor), nil
}

// Checkbox emits OnToggle with the opposite of Checked when clicked. The
// game stores the new value back into Checked.
type Checkbox[M any] struct {
	toggle
	Checked  bool
	OnToggle func(checked bool) M
}

// NewCheckbox returns an unchecked checkbox.
func NewCheckbox[M any](label string, onToggle func(bool) M) *Checkbox[M] {
	return &Checkbox[M]{toggle: toggle{Label: label}, OnToggle: onToggle}
}

func (c *Checkbox[M]) Measure(th *Theme) graphics.Point { return c.measure(th) }

func (c *Checkbox[M]) Event(_ *Theme, ev input.Event, bounds graphics.Rect, cursor graphics.Point, msgs []M) []M {
	if c.OnToggle != nil && leftPress(ev) && bounds.Contains(cursor) {
		msgs = append(msgs, c.OnToggle(!c.Checked))
	}
	return msgs
}

func (c *Checkbox[M]) Draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point) (Cursor, error) {
	return c.draw(t, th, bounds, cursor, c.Checked, th.Box/5)
}

// Radio emits its message when clicked while not selected. A group of
// radios shares one model value and each compares it to its own option.
type Radio[M any] struct {
	toggle
	Selected bool

	onSelect M
}

// NewRadio returns a radio emitting onSelect.
func NewRadio[M any](label string, selected bool, onSelect M) *Radio[M] {
	return &Radio[M]{toggle: toggle{Label: label}, Selected: selected, onSelect: onSelect}
}

func (r *Radio[M]) Measure(th *Theme) graphics.Point { return r.measure(th) }

func (r *Radio[M]) Event(_ *Theme, ev input.Event, bounds graphics.Rect, cursor graphics.Point, msgs []M) []M {
	if !r.Selected && leftPress(ev) && bounds.Contains(cursor) {
		msgs = append(msgs, r.onSelect)
	}
	return msgs
}

func (r *Radio[M]) Draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point) (Cursor, error) {
	return r.draw(t, th, bounds, cursor, r.Selected, th.Box/3)
}

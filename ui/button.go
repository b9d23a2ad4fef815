package ui

import (
	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
)

// Button emits its message when the left button is pressed and released
// over it.
type Button[M any] struct {
	Label string
	// Width is the minimum width; 0 fits the label.
	Width float64

	onClick  M
	hasClick bool
	pressed  bool
}

// NewButton returns a button without a click message.
func NewButton[M any](label string) *Button[M] {
	return &Button[M]{Label: label}
}

// OnClick sets the message emitted on click.
func (b *Button[M]) OnClick(m M) *Button[M] {
	b.onClick, b.hasClick = m, true
	return b
}

// Pressed reports whether a press started over the button is held.
func (b *Button[M]) Pressed() bool { return b.pressed }

func (b *Button[M]) Measure(th *Theme) graphics.Point {
	l := th.measureLabel(b.Label)
	return graphics.Pt(max(b.Width, l.X+2*th.Padding), max(th.Height, l.Y+2*th.Padding))
}

func (b *Button[M]) Event(_ *Theme, ev input.Event, bounds graphics.Rect, cursor graphics.Point, msgs []M) []M {
	switch {
	case leftPress(ev):
		b.pressed = bounds.Contains(cursor)
	case leftRelease(ev):
		if b.pressed && b.hasClick && bounds.Contains(cursor) {
			msgs = append(msgs, b.onClick)
		}
		b.pressed = false
	}
	return msgs
}

func (b *Button[M]) Draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point) (Cursor, error) {
	fill := th.Idle
	switch {
	case b.pressed:
		fill = th.Accent
	case bounds.Contains(cursor):
		fill = th.Hover
	}
	if err := t.DrawRect(bounds, fill); err != nil {
		return CursorDefault, err
	}
	l := th.measureLabel(b.Label)
	if err := th.drawLabel(t, b.Label, bounds.X+(bounds.W-l.X)/2, bounds); err != nil {
		return CursorDefault, err
	}
	return hoverCursor(bounds, cursor), nil
}

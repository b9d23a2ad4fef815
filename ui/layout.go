package ui

import (
	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
)

type axis uint8

const (
	horizontal axis = iota
	vertical
)

// Linear lays its children out one after another along one axis. Children
// keep their preferred size on the main axis and are stretched to the
// linear's inner size on the cross axis.
type Linear[M any] struct {
	Spacing float64
	Padding float64

	axis     axis
	children []Widget[M]
}

// NewRow returns a horizontal layout.
func NewRow[M any]() *Linear[M] { return &Linear[M]{axis: horizontal} }

// NewColumn returns a vertical layout.
func NewColumn[M any]() *Linear[M] { return &Linear[M]{axis: vertical} }

// Push appends children.
func (l *Linear[M]) Push(children ...Widget[M]) *Linear[M] {
	l.children = append(l.children, children...)
	return l
}

// Children returns the children in layout order.
func (l *Linear[M]) Children() []Widget[M] { return l.children }

func (l *Linear[M]) Measure(th *Theme) graphics.Point {
	var main, cross float64
	for i, c := range l.children {
		s := l.oriented(c.Measure(th))
		if i > 0 {
			main += l.Spacing
		}
		main += s.X
		cross = max(cross, s.Y)
	}
	return l.oriented(graphics.Pt(main+2*l.Padding, cross+2*l.Padding))
}

// Layout returns the bounds of every child inside bounds.
func (l *Linear[M]) Layout(th *Theme, bounds graphics.Rect) []graphics.Rect {
	origin := l.oriented(graphics.Pt(bounds.X, bounds.Y))
	size := l.oriented(graphics.Pt(bounds.W, bounds.H))
	pos := origin.X + l.Padding
	cross := max(size.Y-2*l.Padding, 0)

	out := make([]graphics.Rect, len(l.children))
	for i, c := range l.children {
		s := l.oriented(c.Measure(th))
		r := graphics.R(pos, origin.Y+l.Padding, s.X, cross)
		if l.axis == vertical {
			r = graphics.R(r.Y, r.X, r.H, r.W)
		}
		out[i] = r
		pos += s.X + l.Spacing
	}
	return out
}

func (l *Linear[M]) Event(th *Theme, ev input.Event, bounds graphics.Rect, cursor graphics.Point, msgs []M) []M {
	for i, r := range l.Layout(th, bounds) {
		msgs = l.children[i].Event(th, ev, r, cursor, msgs)
	}
	return msgs
}

// Draw draws the children; the last child asking for a cursor wins.
func (l *Linear[M]) Draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point) (Cursor, error) {
	want := CursorDefault
	for i, r := range l.Layout(th, bounds) {
		c, err := l.children[i].Draw(t, th, r, cursor)
		if err != nil {
			return CursorDefault, err
		}
		if c != CursorDefault {
			want = c
		}
	}
	return want, nil
}

// oriented swaps the coordinates of p for vertical layouts, so the code
// above can work with X as the main axis.
func (l *Linear[M]) oriented(p graphics.Point) graphics.Point {
	if l.axis == vertical {
		return graphics.Pt(p.Y, p.X)
	}
	return p
}

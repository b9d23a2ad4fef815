package ui

import (
	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
	"github.com/gogpu/ggame/text"
)

// Cursor is the mouse cursor a widget asks for while hovered.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorWorking
	CursorGrab
	CursorGrabbing
)

func (c Cursor) String() string {
	switch c {
	case CursorDefault:
		return "default"
	case CursorPointer:
		return "pointer"
	case CursorWorking:
		return "working"
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	default:
		return "unknown"
	}
}

// Theme holds the drawing parameters shared by all widgets of an Interface.
type Theme struct {
	// Font draws labels. Without a font labels take no room and are not drawn.
	Font *text.Font
	// TextSize is the label size in pixels; 0 uses the font's raster size.
	TextSize float64

	Text   graphics.RGBA
	Idle   graphics.RGBA
	Hover  graphics.RGBA
	Accent graphics.RGBA

	// Padding surrounds labels and separates boxes from their labels.
	Padding float64
	// Box is the side of checkbox and radio boxes.
	Box float64
	// Height is the minimum height of buttons, checkboxes and radios.
	Height float64
}

// DefaultTheme returns a dark theme using font for labels.
func DefaultTheme(font *text.Font) Theme {
	return Theme{
		Font:    font,
		Text:    graphics.White,
		Idle:    graphics.RGB(0.25, 0.25, 0.3),
		Hover:   graphics.RGB(0.35, 0.35, 0.45),
		Accent:  graphics.RGB(0.4, 0.7, 1),
		Padding: 6,
		Box:     16,
		Height:  28,
	}
}

func (th *Theme) measureLabel(label string) graphics.Point {
	if th.Font == nil || label == "" {
		return graphics.Point{}
	}
	return th.Font.Measure(label, th.TextSize)
}

// drawLabel draws label vertically centred in bounds, starting at x.
func (th *Theme) drawLabel(t *ggame.Target, label string, x float64, bounds graphics.Rect) error {
	if th.Font == nil || label == "" {
		return nil
	}
	size := th.measureLabel(label)
	return t.DrawText(th.Font, label, graphics.Pt(x, bounds.Y+(bounds.H-size.Y)/2), th.TextSize, th.Text)
}

// Widget is a node of a widget tree. Bounds are in target pixels and come
// from the parent layout.
type Widget[M any] interface {
	// Measure returns the preferred size.
	Measure(th *Theme) graphics.Point
	// Event handles one input event and appends resulting messages.
	Event(th *Theme, ev input.Event, bounds graphics.Rect, cursor graphics.Point, msgs []M) []M
	// Draw draws the widget and returns the cursor it wants.
	Draw(t *ggame.Target, th *Theme, bounds graphics.Rect, cursor graphics.Point) (Cursor, error)
}

// Interface places a root widget at Origin with its preferred size and
// routes events to it. It tracks the cursor from CursorEvents.
type Interface[M any] struct {
	Root   Widget[M]
	Theme  Theme
	Origin graphics.Point

	cursor graphics.Point
}

// NewInterface returns an interface drawing root at the origin.
func NewInterface[M any](root Widget[M], th Theme) *Interface[M] {
	return &Interface[M]{Root: root, Theme: th}
}

// Bounds returns the area the root widget occupies.
func (u *Interface[M]) Bounds() graphics.Rect {
	size := u.Root.Measure(&u.Theme)
	return graphics.R(u.Origin.X, u.Origin.Y, size.X, size.Y)
}

// Cursor returns the last cursor position seen by Event.
func (u *Interface[M]) Cursor() graphics.Point { return u.cursor }

// Event feeds one window event to the widget tree and returns the messages
// it produced.
func (u *Interface[M]) Event(ev input.Event) []M {
	if c, ok := ev.(input.CursorEvent); ok {
		u.cursor = c.Position
	}
	return u.Root.Event(&u.Theme, ev, u.Bounds(), u.cursor, nil)
}

// Draw draws the widget tree on t.
func (u *Interface[M]) Draw(t *ggame.Target) (Cursor, error) {
	return u.Root.Draw(t, &u.Theme, u.Bounds(), u.cursor)
}

// leftPress reports whether ev is a left button press.
func leftPress(ev input.Event) bool {
	b, ok := ev.(input.ButtonEvent)
	return ok && b.Button == input.ButtonLeft && b.Pressed
}

func leftRelease(ev input.Event) bool {
	b, ok := ev.(input.ButtonEvent)
	return ok && b.Button == input.ButtonLeft && !b.Pressed
}

func hoverCursor(bounds graphics.Rect, cursor graphics.Point) Cursor {
	if bounds.Contains(cursor) {
		return CursorPointer
	}
	return CursorDefault
}

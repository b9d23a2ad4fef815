// Package input defines window events and an accumulated input state.
//
// A window reports events once per frame. The engine feeds them, in order,
// into the game's input value before any fixed update of that frame runs;
// every update of the frame then observes the same snapshot.
package input

import "github.com/gogpu/ggame/graphics"

// Event is one window event. The concrete types below are the only
// implementations.
type Event interface {
	event()
}

// KeyEvent reports a key press or release.
type KeyEvent struct {
	Key     Key
	Pressed bool
	Mods    Mods
}

// TextEvent reports a typed character.
type TextEvent struct {
	Rune rune
}

// CursorEvent reports the cursor position in surface pixels.
type CursorEvent struct {
	Position graphics.Point
}

// ButtonEvent reports a mouse button press or release.
type ButtonEvent struct {
	Button  Button
	Pressed bool
}

// WheelEvent reports scrolling. Positive Y scrolls up.
type WheelEvent struct {
	Delta graphics.Point
}

// ResizeEvent reports a new surface size in pixels.
type ResizeEvent struct {
	Width, Height int
}

// FocusEvent reports focus gain or loss.
type FocusEvent struct {
	Focused bool
}

// CloseEvent reports that the user asked the window to close.
type CloseEvent struct{}

func (KeyEvent) event()    {}
func (TextEvent) event()   {}
func (CursorEvent) event() {}
func (ButtonEvent) event() {}
func (WheelEvent) event()  {}
func (ResizeEvent) event() {}
func (FocusEvent) event()  {}
func (CloseEvent) event()  {}

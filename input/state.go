package input

import "github.com/gogpu/ggame/graphics"

// State is a ready-made input accumulator. It is a plain value so that
// assigning it takes a snapshot; the engine relies on that when it hands a
// copy to each fixed update.
//
// Transient data (just pressed, just released, wheel, typed text) survives
// until ClearTransient, which the engine calls after every update step, so
// a press is seen by exactly one update.
type State struct {
	keys         [KeyCount]bool
	keysPressed  [KeyCount]bool
	keysReleased [KeyCount]bool

	buttons         [ButtonCount]bool
	buttonsPressed  [ButtonCount]bool
	buttonsReleased [ButtonCount]bool

	// Cursor is the last reported cursor position.
	Cursor graphics.Point
	// Wheel is the scroll accumulated since the last update.
	Wheel graphics.Point
	// Text holds characters typed since the last update.
	Text []rune
	// Mods are the modifiers of the most recent key event.
	Mods Mods
	// Focused reports window focus. Windows start focused.
	Focused bool
}

// NewState returns an empty, focused state.
func NewState() State {
	return State{Focused: true}
}

// Apply folds one event into the state.
func (s *State) Apply(ev Event) {
	switch e := ev.(type) {
	case KeyEvent:
		if e.Key >= KeyCount {
			return
		}
		s.Mods = e.Mods
		if e.Pressed {
			if !s.keys[e.Key] {
				s.keysPressed[e.Key] = true
			}
		} else if s.keys[e.Key] {
			s.keysReleased[e.Key] = true
		}
		s.keys[e.Key] = e.Pressed
	case ButtonEvent:
		if e.Button >= ButtonCount {
			return
		}
		if e.Pressed {
			if !s.buttons[e.Button] {
				s.buttonsPressed[e.Button] = true
			}
		} else if s.buttons[e.Button] {
			s.buttonsReleased[e.Button] = true
		}
		s.buttons[e.Button] = e.Pressed
	case CursorEvent:
		s.Cursor = e.Position
	case WheelEvent:
		s.Wheel = s.Wheel.Add(e.Delta)
	case TextEvent:
		s.Text = append(s.Text, e.Rune)
	case FocusEvent:
		s.Focused = e.Focused
		if !e.Focused {
			// Releases that happen while unfocused are never reported.
			for k := range s.keys {
				s.keys[k] = false
			}
			for b := range s.buttons {
				s.buttons[b] = false
			}
		}
	}
}

// ClearTransient forgets per-update data.
func (s *State) ClearTransient() {
	s.keysPressed = [KeyCount]bool{}
	s.keysReleased = [KeyCount]bool{}
	s.buttonsPressed = [ButtonCount]bool{}
	s.buttonsReleased = [ButtonCount]bool{}
	s.Wheel = graphics.Point{}
	// A fresh slice, so older snapshots keep their own text.
	s.Text = nil
}

// KeyDown reports whether k is held.
func (s State) KeyDown(k Key) bool { return k < KeyCount && s.keys[k] }

// KeyPressed reports whether k went down since the last update.
func (s State) KeyPressed(k Key) bool { return k < KeyCount && s.keysPressed[k] }

// KeyReleased reports whether k went up since the last update.
func (s State) KeyReleased(k Key) bool { return k < KeyCount && s.keysReleased[k] }

// ButtonDown reports whether b is held.
func (s State) ButtonDown(b Button) bool { return b < ButtonCount && s.buttons[b] }

// ButtonPressed reports whether b went down since the last update.
func (s State) ButtonPressed(b Button) bool { return b < ButtonCount && s.buttonsPressed[b] }

// ButtonReleased reports whether b went up since the last update.
func (s State) ButtonReleased(b Button) bool { return b < ButtonCount && s.buttonsReleased[b] }

// Axis returns -1, 0 or 1 from a pair of opposing keys.
func (s State) Axis(negative, positive Key) float64 {
	var v float64
	if s.KeyDown(negative) {
		v--
	}
	if s.KeyDown(positive) {
		v++
	}
	return v
}

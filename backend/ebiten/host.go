//go:build ebiten

package ebiten

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/input"
)

// errStop ends ebiten.RunGame after the frame function asked to stop.
var errStop = errors.New("ebiten: stop")

var keys = map[input.Key]ebiten.Key{
	input.KeyA: ebiten.KeyA, input.KeyB: ebiten.KeyB, input.KeyC: ebiten.KeyC,
	input.KeyD: ebiten.KeyD, input.KeyE: ebiten.KeyE, input.KeyF: ebiten.KeyF,
	input.KeyG: ebiten.KeyG, input.KeyH: ebiten.KeyH, input.KeyI: ebiten.KeyI,
	input.KeyJ: ebiten.KeyJ, input.KeyK: ebiten.KeyK, input.KeyL: ebiten.KeyL,
	input.KeyM: ebiten.KeyM, input.KeyN: ebiten.KeyN, input.KeyO: ebiten.KeyO,
	input.KeyP: ebiten.KeyP, input.KeyQ: ebiten.KeyQ, input.KeyR: ebiten.KeyR,
	input.KeyS: ebiten.KeyS, input.KeyT: ebiten.KeyT, input.KeyU: ebiten.KeyU,
	input.KeyV: ebiten.KeyV, input.KeyW: ebiten.KeyW, input.KeyX: ebiten.KeyX,
	input.KeyY: ebiten.KeyY, input.KeyZ: ebiten.KeyZ,

	input.Key0: ebiten.Key0, input.Key1: ebiten.Key1, input.Key2: ebiten.Key2,
	input.Key3: ebiten.Key3, input.Key4: ebiten.Key4, input.Key5: ebiten.Key5,
	input.Key6: ebiten.Key6, input.Key7: ebiten.Key7, input.Key8: ebiten.Key8,
	input.Key9: ebiten.Key9,

	input.KeyF1: ebiten.KeyF1, input.KeyF2: ebiten.KeyF2, input.KeyF3: ebiten.KeyF3,
	input.KeyF4: ebiten.KeyF4, input.KeyF5: ebiten.KeyF5, input.KeyF6: ebiten.KeyF6,
	input.KeyF7: ebiten.KeyF7, input.KeyF8: ebiten.KeyF8, input.KeyF9: ebiten.KeyF9,
	input.KeyF10: ebiten.KeyF10, input.KeyF11: ebiten.KeyF11, input.KeyF12: ebiten.KeyF12,

	// Ebiten reports one key per modifier.
	input.KeyLeftShift:   ebiten.KeyShift,
	input.KeyLeftControl: ebiten.KeyControl,
	input.KeyLeftAlt:     ebiten.KeyAlt,

	input.KeySpace: ebiten.KeySpace, input.KeyEnter: ebiten.KeyEnter,
	input.KeyEscape: ebiten.KeyEscape, input.KeyBackspace: ebiten.KeyBackspace,
	input.KeyDelete: ebiten.KeyDelete, input.KeyTab: ebiten.KeyTab,

	input.KeyUp: ebiten.KeyUp, input.KeyDown: ebiten.KeyDown,
	input.KeyLeft: ebiten.KeyLeft, input.KeyRight: ebiten.KeyRight,

	input.KeyHome: ebiten.KeyHome, input.KeyEnd: ebiten.KeyEnd,
	input.KeyPageUp: ebiten.KeyPageUp, input.KeyPageDown: ebiten.KeyPageDown,

	input.KeyMinus: ebiten.KeyMinus, input.KeyEqual: ebiten.KeyEqual,
	input.KeyComma: ebiten.KeyComma, input.KeyPeriod: ebiten.KeyPeriod,
	input.KeySlash: ebiten.KeySlash,
}

var buttons = map[input.Button]ebiten.MouseButton{
	input.ButtonLeft:   ebiten.MouseButtonLeft,
	input.ButtonRight:  ebiten.MouseButtonRight,
	input.ButtonMiddle: ebiten.MouseButtonMiddle,
}

// Host runs a frame function inside ebiten's game loop and collects window
// events for it. It implements ebiten.Game and the engine's window
// contract (Events and Size).
type Host struct {
	device *Device
	frame  func() error

	width, height int
	events        []input.Event
	cursor        graphics.Point
	focused       bool
	err           error
}

var _ ebiten.Game = (*Host)(nil)

// NewHost returns a host for a window of the given size drawing through d.
func NewHost(d *Device, width, height int) *Host {
	return &Host{device: d, width: width, height: height, focused: true}
}

// Run opens the window and calls frame once per displayed frame until it
// returns an error or the window is closed. An error from frame is
// returned; closing the window returns nil.
func (h *Host) Run(title string, frame func() error) error {
	h.frame = frame
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	err := ebiten.RunGame(h)
	if errors.Is(err, errStop) {
		return h.err
	}
	return err
}

// Events implements the engine window contract. It returns the events seen
// since the last call.
func (h *Host) Events() []input.Event {
	ev := h.events
	h.events = nil
	return ev
}

// Size implements the engine window contract.
func (h *Host) Size() (width, height int) { return h.width, h.height }

// Update implements ebiten.Game. It only collects input; the engine runs its
// own fixed-step scheduler from Draw.
func (h *Host) Update() error {
	if h.err != nil {
		return errStop
	}
	h.poll()
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.err != nil || h.frame == nil {
		return
	}
	h.device.SetScreen(screen)
	h.err = h.frame()
}

// Layout implements ebiten.Game. The surface follows the window size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.width, h.height = outsideWidth, outsideHeight
		h.events = append(h.events, input.ResizeEvent{Width: outsideWidth, Height: outsideHeight})
	}
	return outsideWidth, outsideHeight
}

func (h *Host) poll() {
	mods := h.mods()
	for k, ek := range keys {
		switch {
		case inpututil.IsKeyJustPressed(ek):
			h.events = append(h.events, input.KeyEvent{Key: k, Pressed: true, Mods: mods})
		case inpututil.IsKeyJustReleased(ek):
			h.events = append(h.events, input.KeyEvent{Key: k, Pressed: false, Mods: mods})
		}
	}
	for _, r := range ebiten.InputChars() {
		h.events = append(h.events, input.TextEvent{Rune: r})
	}

	x, y := ebiten.CursorPosition()
	if p := (graphics.Point{X: float64(x), Y: float64(y)}); p != h.cursor {
		h.cursor = p
		h.events = append(h.events, input.CursorEvent{Position: p})
	}
	for b, eb := range buttons {
		switch {
		case inpututil.IsMouseButtonJustPressed(eb):
			h.events = append(h.events, input.ButtonEvent{Button: b, Pressed: true})
		case inpututil.IsMouseButtonJustReleased(eb):
			h.events = append(h.events, input.ButtonEvent{Button: b, Pressed: false})
		}
	}
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		h.events = append(h.events, input.WheelEvent{Delta: graphics.Point{X: wx, Y: wy}})
	}
	if f := ebiten.IsFocused(); f != h.focused {
		h.focused = f
		h.events = append(h.events, input.FocusEvent{Focused: f})
	}
}

func (h *Host) mods() input.Mods {
	var m input.Mods
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= input.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= input.ModAlt
	}
	return m
}

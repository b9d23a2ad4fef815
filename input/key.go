package input

// Key identifies a keyboard key independently of the window backend.
type Key uint8

// Keys.
const (
	KeyUnknown Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	KeyLeftAlt
	KeyRightAlt

	KeySpace
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyMinus
	KeyEqual
	KeyComma
	KeyPeriod
	KeySlash

	// KeyCount is the number of defined keys.
	KeyCount
)

// Button identifies a mouse button.
type Button uint8

// Mouse buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle

	// ButtonCount is the number of defined buttons.
	ButtonCount
)

// Mods is a set of active keyboard modifiers.
type Mods uint8

// Modifiers.
const (
	ModShift Mods = 1 << iota
	ModControl
	ModAlt
)

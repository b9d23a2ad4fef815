// Package ui provides a few retained widgets drawn through a ggame.Target:
// buttons, checkboxes, radio buttons, and Row and Column layouts.
//
// Widgets never change their own model. Input produces messages of a
// game-chosen type M, and the game applies them in Update:
//
//	type msg int
//	const togglePause msg = iota
//
//	pause := ui.NewCheckbox("Paused", func(bool) msg { return togglePause })
//	menu := ui.NewInterface[msg](ui.NewColumn[msg]().Push(pause), theme)
//
//	// in Update, for every window event:
//	for _, m := range menu.Event(ev) { ... }
//
//	// in Draw:
//	cursor, err := menu.Draw(frame.Target())
//
// The returned Cursor is a hint for hosts that can change the mouse cursor.
package ui

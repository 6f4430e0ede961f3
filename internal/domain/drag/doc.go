// Package drag moves windows by their title bar.
//
// A Controller turns pointer down/move/up samples into a clamped window
// position. Moves are applied to a Surface directly; the window manager is
// only told the final position, once, when the gesture ends with Up or
// Cancel. Drags never start on maximized windows or on small screens.
//
//	c := drag.New("notes", wm, viewport, surface, drag.Options{})
//	c.Down(drag.Pointer{X: 10, Y: 10})
//	c.Move(drag.Pointer{X: 60, Y: 40})
//	c.Up() // commits top/left through wm.UpdateGeometry
package drag

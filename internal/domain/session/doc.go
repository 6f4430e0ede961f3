// Package session saves and restores named desktop workspaces.
//
// A session captures every live window: its normal rectangle, its
// minimized and maximized flags, its z index, and the active window.
// Sessions are stored through the persistent store under
// "wm:session:<id>".
//
// Restoration Process:
//  1. Load the session from the cache or the store
//  2. Close all current windows
//  3. Reopen the saved windows in ascending z order
//  4. Apply geometry, then maximize and minimize flags
//  5. Focus the saved active window
//
// Restore only goes through the public window manager operations, so the
// usual events are published and state is persisted as it happens.
//
// Example Usage:
//
//	manager := session.NewManager(wm, st, logger)
//	s, err := manager.Save(ctx, "Writing", "notes and paint side by side")
//	result, err := manager.Restore(ctx, s.ID)
package session

// Package desktop derives the taskbar, start menu and desktop icon views
// from window manager state, and maps clicks on them to window operations.
//
// Views are pure functions of the manager and the app registry. A Tracker
// tells a renderer when they are stale.
package desktop

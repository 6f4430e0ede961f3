// Package types provides shared data structures for the desktop service.
//
// Core Types:
//   - AppDefinition: Registered application (id, title, icon, content handle)
//   - WindowInstance: Live window of an app (flags, geometry, z-index)
//   - State / Snapshot: Window manager state and its read-only summary
//   - Event: Tagged lifecycle notification
//
// Geometry values are opaque CSS lengths. The window manager copies them
// around but never parses them; only the drag controller reads the pixel
// offsets of top/left.
package types

// Package store provides the persistent key/value store behind the window
// manager.
//
// Stores hold opaque byte values under string keys with plain
// get/set/remove semantics and no business logic. Three implementations
// are provided:
//
//   - MemoryStore: process-local map, used by tests and as a fallback
//   - FileStore: single snapshot file, sonic encoded, optionally zstd
//     compressed, flushed synchronously or on an interval
//   - Guarded: wraps another store with a circuit breaker and degrades to an
//     in-memory shadow when the backing store keeps failing
//
// Key layout used by the window manager:
//
//	wm:window:<id>       per-window geometry record
//	wm:openSet           ids of live windows, ascending z
//	wm:active            active id, empty when none
//	wm:zCounter          z counter
//	wm:session:<id>      saved workspace
package store

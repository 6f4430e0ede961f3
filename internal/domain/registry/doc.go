// Package registry holds the app definitions the window manager can open.
//
// Components:
//   - Manager: definitions keyed by app id, kept in registration order
//   - Seeder: loads YAML, TOML and JSON manifests from an apps directory
//   - Watcher: reloads manifests as files change (fsnotify, debounced)
//
// Registering an id that already exists replaces the definition in place.
// A definition must carry an id and a content handle.
//
// Manifest example (apps/notepad.yaml):
//
//	id: notepad
//	title: Notepad
//	icon: icons/notepad.png
//	entry: apps/notepad.js
//	default_pos: {top: 220, left: 260}
//	default_width: 420
//
// Example Usage:
//
//	reg := registry.NewManager(logger)
//	seeder, err := registry.NewSeeder(wm, "./apps", registry.SeederOptions{Logger: logger})
//	result, err := seeder.SeedApps()
package registry

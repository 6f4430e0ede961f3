// Package window is the window manager core.
//
// The Manager tracks one window per registered app id: whether it is
// minimized or maximized, its geometry and its z index. Operations are
// keyed by app id and are silent no-ops (returning false) for ids that are
// not registered or not open; only Open creates a window.
//
// Z order comes from a single counter that every bring-to-front increments,
// so no two windows share a z index. State is written through the store
// after every operation and rebuilt from it by New.
//
// Boot sequence:
//
//	wm := window.New(window.Options{Store: st, Registry: reg, Bus: bus, Location: loc})
//	seeder.SeedApps()     // registers apps through wm.RegisterApp
//	wm.Ready()            // prunes stale windows, opens the boot deep link
//
// Fragments passed to HandleFragment before Ready are held and replayed by
// Ready.
package window

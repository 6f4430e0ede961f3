package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMinimizesActive(t *testing.T) {
	f := newFixture(t, "notes")
	wm := f.wm
	wm.Open("notes", nil)

	require.True(t, wm.HandleKey(KeyEvent{Key: "Escape"}))
	w, _ := wm.Window("notes")
	assert.True(t, w.Minimized)

	assert.False(t, wm.HandleKey(KeyEvent{Key: "Escape"}), "no active window")
}

func TestCloseKey(t *testing.T) {
	for _, key := range []string{"x", "X"} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t, "notes")
			f.wm.Open("notes", nil)

			require.True(t, f.wm.HandleKey(KeyEvent{Key: key}))
			assert.Empty(t, f.wm.Windows())
		})
	}
}

func TestKeysIgnoredInEditableFields(t *testing.T) {
	f := newFixture(t, "notes")
	wm := f.wm
	wm.Open("notes", nil)

	assert.False(t, wm.HandleKey(KeyEvent{Key: "x", Editable: true}))
	assert.False(t, wm.HandleKey(KeyEvent{Key: "Escape", Editable: true}))
	assert.False(t, wm.HandleKey(KeyEvent{Key: "Tab", Alt: true, Editable: true}))
	assert.False(t, wm.HandleKey(KeyEvent{Key: "x", Ctrl: true}), "modified keys are not shortcuts")
	assert.False(t, wm.HandleKey(KeyEvent{Key: "q"}))

	assert.Len(t, wm.Windows(), 1)
	assert.Equal(t, "notes", wm.ActiveID())
}

func TestAltTabCyclesVisibleWindows(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")
	wm := f.wm
	for _, id := range []string{"a", "b", "c", "d"} {
		wm.Open(id, nil)
	}
	wm.Minimize("d")
	wm.Focus("c")

	var seen []string
	for i := 0; i < 4; i++ {
		require.True(t, wm.HandleKey(KeyEvent{Key: "Tab", Alt: true}))
		seen = append(seen, wm.ActiveID())
	}

	assert.Equal(t, []string{"a", "b", "c", "a"}, seen)
	w, _ := wm.Window("d")
	assert.True(t, w.Minimized, "minimized windows are skipped")
}

func TestAltTabWithoutActiveFocusesLowest(t *testing.T) {
	f := newFixture(t, "a", "b")
	wm := f.wm
	wm.Open("a", nil)
	wm.Open("b", nil)
	wm.Minimize("b")
	wm.Restore("b")
	wm.Minimize("b")

	require.True(t, wm.HandleKey(KeyEvent{Key: "Tab", Alt: true}))
	assert.Equal(t, "a", wm.ActiveID())
}

func TestAltTabWithNoVisibleWindows(t *testing.T) {
	f := newFixture(t, "a")
	wm := f.wm
	assert.False(t, wm.HandleKey(KeyEvent{Key: "Tab", Alt: true}))

	wm.Open("a", nil)
	wm.Minimize("a")
	assert.False(t, wm.HandleKey(KeyEvent{Key: "Tab", Alt: true}))
}

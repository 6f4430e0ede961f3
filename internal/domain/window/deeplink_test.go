package window

import (
	"testing"

	"github.com/GriffinCanCode/webtop/internal/domain/events"
	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bootManager creates a manager that has not been marked ready
func bootManager(t *testing.T, st store.Store, fragment string) (*Manager, *MemoryLocation) {
	t.Helper()
	loc := NewMemoryLocation(fragment)
	wm := New(Options{
		Store:    st,
		Registry: registry.NewManager(nil),
		Bus:      events.New(events.Options{}),
		Location: loc,
	})
	return wm, loc
}

func TestBootDeepLinkOpensAfterReady(t *testing.T) {
	wm, loc := bootManager(t, store.NewMemory(), "#notes")

	require.NoError(t, wm.RegisterApp(app("notes")))
	assert.Empty(t, wm.Windows(), "nothing opens before ready")
	assert.Equal(t, "notes", loc.Fragment())

	wm.Ready()
	assert.Equal(t, "notes", wm.ActiveID())
	assert.Equal(t, "notes", loc.Fragment())
}

func TestFragmentBeforeReadyIsHeld(t *testing.T) {
	wm, loc := bootManager(t, store.NewMemory(), "about")

	assert.False(t, wm.HandleFragment("#paint"))
	assert.False(t, wm.HandleFragment("#notes"), "latest held fragment wins")

	require.NoError(t, wm.RegisterApp(app("about")))
	require.NoError(t, wm.RegisterApp(app("paint")))
	require.NoError(t, wm.RegisterApp(app("notes")))
	assert.False(t, wm.IsReady())

	wm.Ready()
	assert.True(t, wm.IsReady())
	assert.Equal(t, []string{"notes"}, wm.GetState().Open)
	assert.Equal(t, "notes", loc.Fragment())

	wm.Ready()
	assert.Len(t, wm.Windows(), 1, "second ready is a no-op")
}

func TestReadyPrunesUnregisteredWindows(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`["notes","retired"]`)))
	require.NoError(t, st.Set(store.WindowKey("retired"), []byte(`{"top":"1px"}`)))
	require.NoError(t, st.Set(store.KeyActive, []byte(`"retired"`)))

	wm, loc := bootManager(t, st, "")
	require.NoError(t, wm.RegisterApp(app("notes")))
	assert.Len(t, wm.Windows(), 2, "hydrated before registration completes")

	wm.Ready()
	assert.Equal(t, []string{"notes"}, wm.GetState().Open)
	assert.Empty(t, wm.ActiveID())
	assert.Empty(t, loc.Fragment(), "no active window to mirror")

	_, err := st.Get(store.WindowKey("retired"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	openSet, _ := st.Get(store.KeyOpenSet)
	assert.JSONEq(t, `["notes"]`, string(openSet))
}

func TestReadyMirrorsHydratedActive(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`["notes"]`)))
	require.NoError(t, st.Set(store.KeyActive, []byte(`"notes"`)))

	wm, loc := bootManager(t, st, "#unknown")
	require.NoError(t, wm.RegisterApp(app("notes")))
	wm.Ready()

	assert.Equal(t, "notes", loc.Fragment(), "an unregistered deep link is ignored")
}

func TestHandleFragmentAfterReady(t *testing.T) {
	f := newFixture(t, "notes", "paint")
	wm := f.wm

	assert.True(t, wm.HandleFragment("#notes"))
	assert.Equal(t, "notes", f.location.Fragment())

	assert.True(t, wm.HandleFragment("paint"))
	assert.Equal(t, "paint", wm.ActiveID())

	assert.False(t, wm.HandleFragment("#ghost"))
	assert.False(t, wm.HandleFragment(""))
	assert.Equal(t, "paint", wm.ActiveID())
}

func TestFragmentFollowsActiveAndClears(t *testing.T) {
	f := newFixture(t, "notes", "paint")
	wm := f.wm

	wm.Open("notes", nil)
	wm.Open("paint", nil)
	assert.Equal(t, "paint", f.location.Fragment())

	wm.Focus("notes")
	assert.Equal(t, "notes", f.location.Fragment())

	wm.Minimize("notes")
	assert.Equal(t, "notes", f.location.Fragment(), "no active window leaves the fragment alone")

	wm.Close("notes")
	wm.Close("paint")
	assert.Empty(t, f.location.Fragment())
}

func TestMemoryLocationNormalizes(t *testing.T) {
	loc := NewMemoryLocation("  #notes ")
	assert.Equal(t, "notes", loc.Fragment())
	loc.Replace("#paint")
	assert.Equal(t, "paint", loc.Fragment())
}

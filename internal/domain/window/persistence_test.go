package window

import (
	"errors"
	"testing"

	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var desktop = ViewportMetrics{Width: 1280, Height: 800, TaskbarHeight: 34}

func TestPersistenceSurvivesReload(t *testing.T) {
	st := store.NewMemory()
	f := newFixtureOn(t, st, desktop, "notes")

	require.True(t, f.wm.Open("notes", nil))
	require.True(t, f.wm.UpdateGeometry("notes", types.MoveTo("50px", "60px")))

	reloaded := newFixtureOn(t, st, desktop, "notes")
	w, ok := reloaded.wm.Window("notes")
	require.True(t, ok)
	assert.True(t, w.Open)
	assert.Equal(t, "50px", w.Geometry.Top)
	assert.Equal(t, "60px", w.Geometry.Left)
	assert.Equal(t, "notes", reloaded.wm.ActiveID())
}

func TestReloadPreservesFlagsAndOrder(t *testing.T) {
	st := store.NewMemory()
	f := newFixtureOn(t, st, desktop, "a", "b", "c")
	wm := f.wm
	wm.Open("a", nil)
	wm.Open("b", nil)
	wm.Open("c", nil)
	wm.Focus("a")
	wm.Minimize("b")
	wm.UpdateGeometry("c", types.MoveTo("70px", "80px"))
	wm.ToggleMaximize("c")
	counter := wm.State().ZCounter

	reloaded := newFixtureOn(t, st, desktop, "a", "b", "c").wm

	assert.Equal(t, []string{"b", "c", "a"}, reloaded.GetState().Open)
	assert.Equal(t, "a", reloaded.ActiveID())

	b, _ := reloaded.Window("b")
	assert.True(t, b.Minimized)

	c, _ := reloaded.Window("c")
	assert.True(t, c.Maximized)
	require.NotNil(t, c.RestoreGeometry)
	assert.Equal(t, "70px", c.RestoreGeometry.Top)

	require.True(t, reloaded.ToggleMaximize("c"))
	c, _ = reloaded.Window("c")
	assert.Equal(t, "80px", c.Geometry.Left)

	assert.Greater(t, reloaded.State().ZCounter, counter, "hydration assigns fresh z values")
}

func TestHydrationAssignsDistinctIncreasingZ(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`["a","b","a","","c"]`)))
	require.NoError(t, st.Set(store.KeyZCounter, []byte(`3`)))

	wm := newFixtureOn(t, st, desktop, "a", "b", "c").wm
	windows := wm.Windows()
	require.Len(t, windows, 3)

	assert.Equal(t, "a", windows[0].AppID)
	assert.Equal(t, DefaultZCounter+1, windows[0].ZIndex, "stale counter below the base is ignored")
	assert.Equal(t, DefaultZCounter+2, windows[1].ZIndex)
	assert.Equal(t, DefaultZCounter+3, windows[2].ZIndex)
	assert.Equal(t, DefaultZCounter+3, wm.State().ZCounter)
}

func TestHydrationFallsBackOnCorruptRecords(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`["notes","paint"]`)))
	require.NoError(t, st.Set(store.WindowKey("notes"), []byte(`{"top":`)))
	require.NoError(t, st.Set(store.KeyActive, []byte(`42`)))
	require.NoError(t, st.Set(store.KeyZCounter, []byte(`"lots"`)))

	wm := newFixtureOn(t, st, desktop, "notes", "paint").wm

	notes, ok := wm.Window("notes")
	require.True(t, ok)
	assert.Equal(t, "100px", notes.Geometry.Top)
	paint, ok := wm.Window("paint")
	require.True(t, ok)
	assert.Equal(t, "118px", paint.Geometry.Top)
	assert.Empty(t, wm.ActiveID())
	assert.Equal(t, DefaultZCounter+2, wm.State().ZCounter)
}

func TestHydrationOfCorruptOpenSet(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`{"not":"a list"}`)))

	wm := newFixtureOn(t, st, desktop, "notes").wm
	assert.Empty(t, wm.Windows())
	assert.True(t, wm.Open("notes", nil))
}

func TestHydrationIgnoresMinimizedActive(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Set(store.KeyOpenSet, []byte(`["notes"]`)))
	require.NoError(t, st.Set(store.WindowKey("notes"), []byte(`{"top":"1px","left":"2px","minimized":true}`)))
	require.NoError(t, st.Set(store.KeyActive, []byte(`"notes"`)))

	wm := newFixtureOn(t, st, desktop, "notes").wm
	assert.Empty(t, wm.ActiveID())
}

func TestPersistedLayout(t *testing.T) {
	st := store.NewMemory()
	f := newFixtureOn(t, st, desktop, "notes", "paint")
	f.wm.Open("notes", &types.Position{Top: 10, Left: 20})
	f.wm.Open("paint", nil)

	openSet, err := st.Get(store.KeyOpenSet)
	require.NoError(t, err)
	assert.JSONEq(t, `["notes","paint"]`, string(openSet))

	active, err := st.Get(store.KeyActive)
	require.NoError(t, err)
	assert.JSONEq(t, `"paint"`, string(active))

	z, err := st.Get(store.KeyZCounter)
	require.NoError(t, err)
	assert.JSONEq(t, `102`, string(z))

	rec, err := st.Get(store.WindowKey("notes"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"top":"10px","left":"20px","width":"","height":"","maximized":false,"minimized":false}`, string(rec))

	f.wm.Close("paint")
	f.wm.Close("notes")
	active, _ = st.Get(store.KeyActive)
	assert.JSONEq(t, `""`, string(active))
	openSet, _ = st.Get(store.KeyOpenSet)
	assert.JSONEq(t, `[]`, string(openSet))
}

// brokenStore fails every call, like storage with no quota left
type brokenStore struct{}

var errNoQuota = errors.New("quota exceeded")

func (brokenStore) Get(string) ([]byte, error)    { return nil, errNoQuota }
func (brokenStore) Set(string, []byte) error      { return errNoQuota }
func (brokenStore) Remove(string) error           { return errNoQuota }
func (brokenStore) Keys(string) ([]string, error) { return nil, errNoQuota }

func TestUnavailableStoreDegradesToMemory(t *testing.T) {
	rec := &recorder{}
	wm := New(Options{Store: brokenStore{}, Metrics: rec})
	require.NoError(t, wm.RegisterApp(app("notes")))
	wm.Ready()

	require.True(t, wm.Open("notes", nil))
	require.True(t, wm.UpdateGeometry("notes", types.MoveTo("5px", "6px")))
	require.True(t, wm.Close("notes"))

	assert.Empty(t, wm.Windows())
	assert.Greater(t, rec.failures, 0)
}

package session

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T, st store.Store, ids ...string) *window.Manager {
	t.Helper()
	wm := window.New(window.Options{Store: st, Registry: registry.NewManager(nil)})
	for _, id := range ids {
		require.NoError(t, wm.RegisterApp(types.AppDefinition{ID: id, Title: id, Content: id}))
	}
	wm.Ready()
	return wm
}

func TestSaveAndRestore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	wm := newWorkspace(t, st, "notes", "paint", "about")
	mgr := NewManager(wm, st, nil)

	wm.Open("notes", &types.Position{Top: 10, Left: 20})
	wm.Open("paint", &types.Position{Top: 30, Left: 40})
	wm.Open("about", &types.Position{Top: 50, Left: 60})
	wm.ToggleMaximize("paint")
	wm.Minimize("about")
	wm.Focus("notes")

	saved, err := mgr.Save(ctx, "Writing", "notes up front")
	require.NoError(t, err)
	assert.Len(t, saved.Workspace.Windows, 3)
	assert.Equal(t, "notes", saved.Workspace.ActiveID)

	wm.Close("notes")
	wm.Close("paint")
	wm.Open("about", nil)
	wm.UpdateGeometry("about", types.MoveTo("300px", "300px"))

	result, err := mgr.Restore(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"paint", "about", "notes"}, result.Restored)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, "notes", result.ActiveID)

	assert.Equal(t, []string{"paint", "about", "notes"}, wm.GetState().Open)
	assert.Equal(t, "notes", wm.ActiveID())

	notes, _ := wm.Window("notes")
	assert.Equal(t, "10px", notes.Geometry.Top)
	assert.Equal(t, "20px", notes.Geometry.Left)

	paint, _ := wm.Window("paint")
	assert.True(t, paint.Maximized)
	require.NotNil(t, paint.RestoreGeometry)
	assert.Equal(t, "30px", paint.RestoreGeometry.Top)

	about, _ := wm.Window("about")
	assert.True(t, about.Minimized)
	assert.Equal(t, "50px", about.Geometry.Top)
}

func TestRestoreSkipsUnregisteredApps(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	wm := newWorkspace(t, st, "notes", "paint")
	mgr := NewManager(wm, st, nil)

	wm.Open("notes", nil)
	wm.Open("paint", nil)
	saved, err := mgr.Save(ctx, "Both", "")
	require.NoError(t, err)

	require.True(t, wm.UnregisterApp("paint"))

	result, err := mgr.Restore(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, result.Restored)
	assert.Equal(t, []string{"paint"}, result.Skipped)
	assert.Empty(t, result.ActiveID, "the saved active window was skipped")
}

func TestSessionsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	wm := newWorkspace(t, st, "notes")
	wm.Open("notes", nil)

	first, err := NewManager(wm, st, nil).Save(ctx, "Morning", "")
	require.NoError(t, err)
	require.NoError(t, st.Set(store.SessionKey("broken"), []byte("{")))

	mgr := NewManager(wm, st, nil)
	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 1, list[0].WindowCount)

	loaded, err := mgr.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning", loaded.Name)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mgr := NewManager(newWorkspace(t, st), st, nil)

	a, err := mgr.Save(ctx, "a", "")
	require.NoError(t, err)
	b, err := mgr.Save(ctx, "b", "")
	require.NoError(t, err)

	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mgr := NewManager(newWorkspace(t, st), st, nil)

	saved, err := mgr.Save(ctx, "gone", "")
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, saved.ID))
	_, err = mgr.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(store.SessionKey(saved.ID))
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, mgr.Delete(ctx, saved.ID), ErrNotFound)
	_, err = mgr.Restore(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mgr := NewManager(newWorkspace(t, st), st, nil)

	_, err := mgr.Save(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalid)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = mgr.Save(cancelled, "late", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mgr := NewManager(newWorkspace(t, st), st, nil)

	stats := mgr.Stats()
	assert.Zero(t, stats.TotalSessions)
	assert.Nil(t, stats.LastSaved)

	saved, err := mgr.SaveDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", saved.Name)
	_, err = mgr.Restore(ctx, saved.ID)
	require.NoError(t, err)

	stats = mgr.Stats()
	assert.Equal(t, 1, stats.TotalSessions)
	assert.NotNil(t, stats.LastSaved)
	assert.NotNil(t, stats.LastRestored)
}

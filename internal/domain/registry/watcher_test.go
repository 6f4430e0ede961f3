package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	s, m := newTestSeeder(t, dir)

	w, err := NewWatcher(s, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	path := filepath.Join(dir, "notes.yaml")
	writeFile(t, path, "id: notes\ntitle: Notes")
	require.Eventually(t, func() bool { return m.Has("notes") }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, path, "id: notes\ntitle: Sticky Notes")
	require.Eventually(t, func() bool {
		def, ok := m.Get("notes")
		return ok && def.Title == "Sticky Notes"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return !m.Has("notes") }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresNonManifests(t *testing.T) {
	dir := t.TempDir()
	s, m := newTestSeeder(t, dir)

	w, err := NewWatcher(s, 10*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, filepath.Join(dir, "notes.txt"), "id: notes")
	time.Sleep(100 * time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.Zero(t, m.Len())
}

func TestWatcherAppliesNothingAfterStop(t *testing.T) {
	dir := t.TempDir()
	s, m := newTestSeeder(t, dir)

	w, err := NewWatcher(s, 200*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, filepath.Join(dir, "notes.yaml"), "id: notes\ntitle: Notes")
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending) > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// A debounce timer that fired just before stop must not reload
	w.flush()
	time.Sleep(300 * time.Millisecond)
	assert.False(t, m.Has("notes"))
}

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFileStoreSurvivesReopen(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
	}{
		{"plain", false},
		{"zstd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "state.json")

			s, err := OpenFile(FileOptions{Path: path, Compress: tt.compress})
			require.NoError(t, err)
			require.NoError(t, s.Set(KeyZCounter, []byte("104")))
			require.NoError(t, s.Set(KeyActive, []byte(`"notes"`)))
			require.NoError(t, s.Set(WindowKey("gone"), []byte("{}")))
			require.NoError(t, s.Remove(WindowKey("gone")))
			require.NoError(t, s.Close())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if tt.compress {
				assert.Equal(t, zstdMagic, raw[:4])
			} else {
				assert.Contains(t, string(raw), `"wm:zCounter"`)
			}

			reopened, err := OpenFile(FileOptions{Path: path})
			require.NoError(t, err)
			defer reopened.Close()

			z, err := reopened.Get(KeyZCounter)
			require.NoError(t, err)
			assert.Equal(t, "104", string(z))

			_, err = reopened.Get(WindowKey("gone"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStoreCorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	s, err := OpenFile(FileOptions{Path: path, Logger: zap.New(core)})
	require.NoError(t, err)
	defer s.Close()

	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, 1, logs.FilterMessage("Discarding unreadable store snapshot").Len())

	require.NoError(t, s.Set(KeyActive, []byte(`""`)))
}

func TestFileStoreBatchedFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFile(FileOptions{Path: path, FlushInterval: time.Hour})
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyZCounter, []byte("101")))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "batched write should not touch disk yet")

	require.NoError(t, s.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)

	reopened, err := OpenFile(FileOptions{Path: path})
	require.NoError(t, err)
	defer reopened.Close()
	z, err := reopened.Get(KeyZCounter)
	require.NoError(t, err)
	assert.Equal(t, "101", string(z))
}

func TestFileStoreIntervalLoopFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFile(FileOptions{Path: path, FlushInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(KeyActive, []byte(`"paint"`)))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := OpenFile(FileOptions{})
	assert.Error(t, err)
}

func TestFileStoreWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s, err := OpenFile(FileOptions{Path: filepath.Join(blocker, "state.json")})
	require.NoError(t, err)

	assert.Error(t, s.Set(KeyActive, []byte(`"notes"`)))
	value, err := s.Get(KeyActive)
	require.NoError(t, err)
	assert.Equal(t, `"notes"`, string(value))
}

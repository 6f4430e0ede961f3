package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Logging.Development = true
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	cfg.Store.Path = filepath.Join(t.TempDir(), "state.json")
	cfg.Store.FlushInterval = 0
	cfg.Apps.Dir = t.TempDir()
	return cfg
}

func TestCoreSeedsAndHydrates(t *testing.T) {
	cfg := testConfig(t)
	manifest := "id: calc\ntitle: Calculator\nentry: calc.js\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Apps.Dir, "calc.yaml"), []byte(manifest), 0o644))

	core, err := NewCore(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, len(registry.DefaultApps())+1, core.Registry.Len())
	assert.Equal(t, "calc", core.Seeded.IDs[len(core.Seeded.IDs)-1], "disk manifests follow the built-ins")
	assert.True(t, core.Windows.IsReady())

	require.True(t, core.Windows.Open("calc", &types.Position{Top: 10, Left: 20}))
	require.NoError(t, core.Close())

	reopened, err := NewCore(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer reopened.Close()

	w, ok := reopened.Windows.Window("calc")
	require.True(t, ok)
	assert.Equal(t, "10px", w.Geometry.Top)
	assert.Equal(t, "calc", reopened.Windows.ActiveID())
}

func TestCoreInMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = ""

	core, err := NewCore(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer core.Close()

	assert.Equal(t, cfg.Viewport.Width, core.Viewport.Metrics().Width)
	assert.True(t, core.Windows.Open("notes", nil))
	assert.False(t, core.Store.Degraded())
}

func TestServerRoutes(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	defer srv.Close()

	serve := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/windows/notes/open").Code)

	w := serve(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "webtop_window_operations_total")
	assert.Contains(t, w.Body.String(), "webtop_events_published_total")

	w = serve(http.MethodGet, "/state")
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestServerRunStopsWithContext(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NoError(t, srv.Close())
	assert.NoError(t, srv.Close(), "close is idempotent")
}

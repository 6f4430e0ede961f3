package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	wm       *window.Manager
	viewport *window.StaticViewport
	metrics  *monitoring.Metrics
	conn     *websocket.Conn
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	vp := window.NewStaticViewport(window.ViewportMetrics{Width: 1280, Height: 800, TaskbarHeight: 34})
	wm := window.New(window.Options{Registry: registry.NewManager(nil), Viewport: vp})
	for _, id := range ids {
		require.NoError(t, wm.RegisterApp(types.AppDefinition{ID: id, Title: id, Content: id}))
	}
	wm.Ready()

	metrics := monitoring.NewMetrics(monitoring.NewRegistry())
	h := NewHandler(Options{Windows: wm, Viewport: vp, Metrics: metrics})

	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	f := &fixture{wm: wm, viewport: vp, metrics: metrics, conn: conn}
	hello := f.next(t)
	require.Equal(t, TypeSystem, hello.Type)
	return f
}

func (f *fixture) write(t *testing.T, msg Message) {
	t.Helper()
	require.NoError(t, f.conn.WriteJSON(msg))
}

func (f *fixture) next(t *testing.T) Frame {
	t.Helper()
	require.NoError(t, f.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, f.conn.ReadJSON(&frame))
	return frame
}

// until reads frames until one satisfies match
func (f *fixture) until(t *testing.T, match func(Frame) bool) Frame {
	t.Helper()
	for i := 0; i < 50; i++ {
		if frame := f.next(t); match(frame) {
			return frame
		}
	}
	t.Fatal("expected frame never arrived")
	return Frame{}
}

// sync waits until every frame sent before it has been handled
func (f *fixture) sync(t *testing.T) {
	t.Helper()
	f.write(t, Message{Type: TypePing})
	f.until(t, func(fr Frame) bool { return fr.Type == TypePong })
}

func isEvent(kind types.EventKind, id string) func(Frame) bool {
	return func(f Frame) bool {
		return f.Type == TypeEvent && f.Event != nil && f.Event.Kind == kind && f.Event.AppID == id
	}
}

func TestPingPong(t *testing.T) {
	f := newFixture(t)
	f.write(t, Message{Type: TypePing})
	assert.Equal(t, TypePong, f.next(t).Type)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WSConnections))
}

func TestHandshakeCarriesTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.DebugLevel)
	tracer := tracing.New("webtop", zap.New(core))
	t.Cleanup(tracer.Close)

	vp := window.NewStaticViewport(window.ViewportMetrics{Width: 1280, Height: 800, TaskbarHeight: 34})
	wm := window.New(window.Options{Registry: registry.NewManager(nil), Viewport: vp})
	require.NoError(t, wm.RegisterApp(types.AppDefinition{ID: "notes", Title: "notes", Content: "notes"}))
	wm.Ready()
	wm.Open("notes", nil)

	h := NewHandler(Options{Windows: wm, Viewport: vp, Tracer: tracer})
	router := gin.New()
	router.Use(tracing.HTTPMiddleware(tracer))
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{tracing.HeaderTraceID: {"trace-1"}})
	require.NoError(t, err)
	assert.Equal(t, "trace-1", resp.Header.Get(tracing.HeaderTraceID))
	assert.NotEmpty(t, resp.Header.Get(tracing.HeaderSpanID))

	f := &fixture{wm: wm, viewport: vp, conn: conn}
	hello := f.next(t)
	require.Equal(t, TypeSystem, hello.Type)
	assert.Equal(t, "trace-1", hello.TraceID)

	f.write(t, Message{Type: TypePointer, Phase: PhaseDown, AppID: "notes", X: 130, Y: 110})
	f.write(t, Message{Type: TypePointer, Phase: PhaseUp, AppID: "notes"})
	f.sync(t)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		for _, entry := range logs.FilterMessage("span log").All() {
			if entry.ContextMap()["message"] == "drag committed" && entry.ContextMap()["trace_id"] == "trace-1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBadFramesKeepTheConnection(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	frame := f.next(t)
	assert.Equal(t, TypeError, frame.Type)
	assert.Equal(t, "invalid message", frame.Message)

	f.write(t, Message{Type: "teleport"})
	assert.Equal(t, "unknown message type", f.next(t).Message)

	f.write(t, Message{Type: TypePointer, Phase: PhaseDown})
	assert.Equal(t, "pointer frame without app_id", f.next(t).Message)

	f.write(t, Message{Type: TypePointer, Phase: "wiggle", AppID: "notes"})
	assert.Equal(t, "unknown pointer phase", f.next(t).Message)

	f.write(t, Message{Type: TypeViewport})
	assert.Equal(t, TypeError, f.next(t).Type)

	f.write(t, Message{Type: TypePing})
	assert.Equal(t, TypePong, f.next(t).Type)
}

func TestEventsAreForwarded(t *testing.T) {
	f := newFixture(t, "notes")

	require.True(t, f.wm.Open("notes", nil))
	frame := f.until(t, isEvent(types.EventOpened, "notes"))
	assert.NotEmpty(t, frame.Event.ID)

	require.True(t, f.wm.Minimize("notes"))
	f.until(t, isEvent(types.EventMinimized, "notes"))
}

func TestPointerDragCommitsOnRelease(t *testing.T) {
	f := newFixture(t, "notes")
	require.True(t, f.wm.Open("notes", &types.Position{Top: 100, Left: 100}))

	f.write(t, Message{Type: TypePointer, Phase: PhaseDown, AppID: "notes", X: 10, Y: 10})
	f.write(t, Message{Type: TypePointer, Phase: PhaseMove, AppID: "notes", X: 60, Y: 30})

	live := f.until(t, func(fr Frame) bool { return fr.Type == TypeDrag })
	assert.Equal(t, "notes", live.AppID)
	require.NotNil(t, live.Top)
	require.NotNil(t, live.Left)
	assert.Equal(t, 120, *live.Top)
	assert.Equal(t, 150, *live.Left)

	w, _ := f.wm.Window("notes")
	assert.Equal(t, "100px", w.Geometry.Top, "geometry unchanged until release")

	f.write(t, Message{Type: TypePointer, Phase: PhaseUp, AppID: "notes"})
	f.until(t, isEvent(types.EventGeometryChanged, "notes"))

	w, _ = f.wm.Window("notes")
	assert.Equal(t, "120px", w.Geometry.Top)
	assert.Equal(t, "150px", w.Geometry.Left)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.DragGestures.WithLabelValues(PhaseUp)))
}

func TestDisconnectCommitsActiveDrag(t *testing.T) {
	f := newFixture(t, "notes")
	require.True(t, f.wm.Open("notes", &types.Position{Top: 100, Left: 100}))

	f.write(t, Message{Type: TypePointer, Phase: PhaseDown, AppID: "notes", X: 0, Y: 0})
	f.write(t, Message{Type: TypePointer, Phase: PhaseMove, AppID: "notes", X: 40, Y: 20})
	f.until(t, func(fr Frame) bool { return fr.Type == TypeDrag })
	require.NoError(t, f.conn.Close())

	assert.Eventually(t, func() bool {
		w, _ := f.wm.Window("notes")
		return w.Geometry.Top == "120px" && w.Geometry.Left == "140px"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.WSConnections) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewportFrameRelaysMaximizedWindows(t *testing.T) {
	f := newFixture(t, "notes")
	require.True(t, f.wm.Open("notes", nil))
	require.True(t, f.wm.ToggleMaximize("notes"))

	f.write(t, Message{Type: TypeViewport, Viewport: &window.ViewportMetrics{Width: 1024, Height: 700, TaskbarHeight: 40}})
	f.sync(t)

	assert.Equal(t, 1024, f.viewport.Metrics().Width)
	w, _ := f.wm.Window("notes")
	assert.Equal(t, window.MaximizedGeometry(f.viewport.Metrics()), w.Geometry)
}

func TestKeyAndFragmentFrames(t *testing.T) {
	f := newFixture(t, "notes", "paint")
	require.True(t, f.wm.Open("notes", nil))

	f.write(t, Message{Type: TypeKey, Key: &window.KeyEvent{Key: "Escape"}})
	res := f.until(t, func(fr Frame) bool { return fr.Type == TypeResult })
	require.NotNil(t, res.Handled)
	assert.True(t, *res.Handled)
	w, _ := f.wm.Window("notes")
	assert.True(t, w.Minimized)

	f.write(t, Message{Type: TypeFragment, Fragment: "#paint"})
	res = f.until(t, func(fr Frame) bool { return fr.Type == TypeResult })
	assert.True(t, *res.Handled)
	assert.Equal(t, "paint", f.wm.ActiveID())
}

package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/drag"
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 256
)

// ViewportStore holds the viewport reported by the browser
type ViewportStore interface {
	Metrics() window.ViewportMetrics
	Set(m window.ViewportMetrics)
}

// Options wires the handler. Metrics and Tracer are optional.
type Options struct {
	Windows  *window.Manager
	Viewport ViewportStore
	Metrics  *monitoring.Metrics
	Tracer   *tracing.Tracer
	Drag     drag.Options
	Logger   *zap.Logger
	// CheckOrigin defaults to allowing every origin
	CheckOrigin func(r *http.Request) bool
}

// Handler manages WebSocket connections
type Handler struct {
	windows  *window.Manager
	viewport ViewportStore
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	dragOpts drag.Options
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = func(r *http.Request) bool { return true }
	}
	opts.Drag.Logger = opts.Logger
	return &Handler{
		windows:  opts.Windows,
		viewport: opts.Viewport,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		dragOpts: opts.Drag,
		logger:   opts.Logger,
		upgrader: websocket.Upgrader{CheckOrigin: opts.CheckOrigin},
	}
}

// client is one browser connection. Every write goes through out so a
// single goroutine owns the socket writer.
type client struct {
	h      *Handler
	conn   *websocket.Conn
	out    chan Frame
	done   chan struct{}
	once   sync.Once
	pool   *drag.Pool
	span   *tracing.Span // nil without a tracer; only the read goroutine logs to it
	logger *zap.Logger
}

// HandleConnection handles WebSocket upgrade and messages. The trace
// context of the upgrade request is echoed in the handshake response and
// in the connected frame.
func (h *Handler) HandleConnection(c *gin.Context) {
	ctx := c.Request.Context()
	propagated := make(map[string]string, 2)
	tracing.InjectTraceContext(ctx, propagated)
	header := http.Header{}
	for k, v := range propagated {
		header.Set(k, v)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	logger := h.logger.With(zap.String("remote", c.Request.RemoteAddr))
	traceID := tracing.GetTraceID(ctx)
	if traceID != "" {
		logger = logger.With(zap.String("trace", tracing.FormatTrace(traceID, tracing.GetSpanID(ctx))))
	}

	cl := &client{
		h:      h,
		conn:   conn,
		out:    make(chan Frame, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	cl.pool = drag.NewPool(h.windows, h.viewport, drag.SurfaceFunc(cl.place), h.dragOpts)

	if h.tracer != nil {
		cl.span, _ = h.tracer.StartSpan(ctx, "ws.connection")
		cl.span.SetTag("remote", c.Request.RemoteAddr)
		defer func() {
			cl.span.Finish()
			h.tracer.Submit(cl.span)
		}()
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	sub := h.windows.SubscribeAll(cl.forward)
	defer h.windows.Unsubscribe(sub)

	go cl.writeLoop()
	defer cl.close()

	cl.logger.Info("WebSocket connected")
	cl.send(Frame{Type: TypeSystem, Message: "connected", TraceID: string(traceID)})
	cl.readLoop()

	// Gestures still in flight commit their last position
	if active := cl.pool.Active(); len(active) > 0 {
		cl.note("committing drags on disconnect", map[string]interface{}{"app_ids": active})
	}
	cl.pool.Close()
	cl.logger.Info("WebSocket disconnected")
}

func (cl *client) readLoop() {
	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cl.sendError("invalid message")
			continue
		}
		cl.h.recordMessage("in", msg.Type)
		cl.dispatch(msg)
	}
}

func (cl *client) dispatch(msg Message) {
	switch msg.Type {
	case TypePointer:
		cl.handlePointer(msg)
	case TypeViewport:
		if msg.Viewport == nil {
			cl.sendError("viewport frame without metrics")
			return
		}
		cl.h.viewport.Set(*msg.Viewport)
		cl.h.windows.Relayout()
	case TypeKey:
		if msg.Key == nil {
			cl.sendError("key frame without key")
			return
		}
		handled := cl.h.windows.HandleKey(*msg.Key)
		cl.send(Frame{Type: TypeResult, Handled: &handled})
	case TypeFragment:
		handled := cl.h.windows.HandleFragment(msg.Fragment)
		cl.send(Frame{Type: TypeResult, Handled: &handled})
	case TypePing:
		cl.send(Frame{Type: TypePong})
	default:
		cl.sendError("unknown message type")
	}
}

func (cl *client) handlePointer(msg Message) {
	if msg.AppID == "" {
		cl.sendError("pointer frame without app_id")
		return
	}
	ptr := drag.Pointer{X: msg.X, Y: msg.Y, OnControl: msg.OnControl}

	switch msg.Phase {
	case PhaseDown:
		if cl.pool.Down(msg.AppID, ptr) {
			cl.h.recordDrag(PhaseDown)
		}
	case PhaseMove:
		cl.pool.Move(msg.AppID, ptr)
	case PhaseUp, PhaseCancel:
		ended := cl.pool.Up
		if msg.Phase == PhaseCancel {
			ended = cl.pool.Cancel
		}
		if ended(msg.AppID) {
			cl.h.recordDrag(msg.Phase)
			cl.note("drag committed", map[string]interface{}{"app_id": msg.AppID, "phase": msg.Phase})
		}
	default:
		cl.sendError("unknown pointer phase")
	}
}

// forward relays a bus event to the browser
func (cl *client) forward(ev types.Event) error {
	cl.send(Frame{Type: TypeEvent, Event: &ev})
	return nil
}

// place reports the live rectangle of a window being dragged
func (cl *client) place(id string, top, left int) {
	cl.send(Frame{Type: TypeDrag, AppID: id, Top: &top, Left: &left})
}

func (cl *client) sendError(message string) {
	cl.note("rejected frame", map[string]interface{}{"reason": message})
	cl.send(Frame{Type: TypeError, Message: message})
}

// note records a connection event on the connection span
func (cl *client) note(message string, fields map[string]interface{}) {
	if cl.span != nil {
		cl.span.Log(message, fields)
	}
}

// send queues a frame without blocking. Frames for a client that cannot
// keep up are dropped.
func (cl *client) send(f Frame) {
	f.Timestamp = time.Now().Unix()
	select {
	case <-cl.done:
	case cl.out <- f:
	default:
		cl.logger.Warn("Dropping frame for slow client", zap.String("type", f.Type))
	}
}

func (cl *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			cl.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			cl.conn.Close()
			return

		case f := <-cl.out:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(f); err != nil {
				cl.logger.Warn("WebSocket write error", zap.Error(err))
				cl.conn.Close()
				return
			}
			cl.h.recordMessage("out", f.Type)

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.conn.Close()
				return
			}
		}
	}
}

func (cl *client) close() {
	cl.once.Do(func() { close(cl.done) })
}

func (h *Handler) recordMessage(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func (h *Handler) recordDrag(phase string) {
	if h.metrics != nil {
		h.metrics.RecordDrag(phase)
	}
}

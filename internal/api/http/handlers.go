package http

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/session"
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// ViewportStore holds the viewport reported by the front end
type ViewportStore interface {
	Metrics() window.ViewportMetrics
	Set(m window.ViewportMetrics)
}

// StoreHealth reports the state of the persistence guard
type StoreHealth interface {
	Health() store.Health
}

// Handlers contains all HTTP handlers
type Handlers struct {
	windows  *window.Manager
	viewport ViewportStore
	sessions *session.Manager
	store    StoreHealth
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	tracker  *desktop.Tracker
	logger   *zap.Logger
}

// Options wires the handlers. Sessions, Store, Metrics and Tracer are optional.
type Options struct {
	Windows  *window.Manager
	Viewport ViewportStore
	Sessions *session.Manager
	Store    StoreHealth
	Metrics  *monitoring.Metrics
	Tracer   *tracing.Tracer
	Logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handlers{
		windows:  opts.Windows,
		viewport: opts.Viewport,
		sessions: opts.Sessions,
		store:    opts.Store,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		tracker:  desktop.NewTracker(opts.Windows),
		logger:   opts.Logger,
	}
}

// Close detaches the handlers from the window manager
func (h *Handlers) Close() {
	h.tracker.Close()
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webtop window manager",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"windows": h.windows.Stats(),
		"apps":    h.windows.Registry().Stats(),
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions.Stats()
	}
	if h.store != nil {
		health := h.store.Health()
		body["store"] = health
		if health.Degraded {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

// trace runs fn inside a span when a tracer is configured
func (h *Handlers) trace(c *gin.Context, name string, fn func(ctx context.Context) error) error {
	if h.tracer == nil {
		return fn(c.Request.Context())
	}
	return h.tracer.Trace(c.Request.Context(), name, fn)
}

// appID reads and validates the :id path parameter
func appID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "app_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

// result writes the outcome of a window operation
func result(c *gin.Context, id string, success bool) {
	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"app_id":  id,
	})
}

package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// MetricsReport is a JSON view of the server and desktop counters
type MetricsReport struct {
	Timestamp time.Time                   `json:"timestamp"`
	Server    *monitoring.MetricsSnapshot `json:"server,omitempty"`
	Windows   types.Stats                 `json:"windows"`
	Apps      registry.Stats              `json:"apps"`
	Sessions  *types.SessionStats         `json:"sessions,omitempty"`
	Summary   MetricsSummary              `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	IgnoredRate       float64 `json:"ignored_rate"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetMetricsReport returns the counters as JSON
func (h *Handlers) GetMetricsReport(c *gin.Context) {
	report := MetricsReport{
		Timestamp: time.Now(),
		Windows:   h.windows.Stats(),
		Apps:      h.windows.Registry().Stats(),
	}
	if h.sessions != nil {
		stats := h.sessions.Stats()
		report.Sessions = &stats
	}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		report.Server = &snap
		report.Summary = summarize(snap, h.metrics.Uptime())
	}
	c.JSON(http.StatusOK, report)
}

func summarize(snap monitoring.MetricsSnapshot, uptime time.Duration) MetricsSummary {
	summary := MetricsSummary{
		TotalRequests:     snap.TotalRequests,
		ActiveConnections: snap.ActiveConnections,
		UptimeSeconds:     uptime.Seconds(),
	}
	if snap.RequestCount > 0 {
		summary.AverageLatencyMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	if snap.TotalOperations > 0 {
		summary.IgnoredRate = float64(snap.IgnoredOperations) / float64(snap.TotalOperations)
	}
	return summary
}

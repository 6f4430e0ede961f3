package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webtop"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window manager metrics
	Operations          *prometheus.CounterVec
	WindowsOpen         prometheus.Gauge
	WindowsMinimized    prometheus.Gauge
	PersistenceFailures *prometheus.CounterVec
	StoreFailures       *prometheus.CounterVec

	// Event bus metrics
	EventsPublished    *prometheus.CounterVec
	SubscriberFailures *prometheus.CounterVec

	// Registry metrics
	RegistryApps prometheus.Gauge

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// Drag metrics
	DragGestures *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	TotalOperations   int64   `json:"total_operations"`
	IgnoredOperations int64   `json:"ignored_operations"`
	OpenWindows       int64   `json:"open_windows"`
	MinimizedWindows  int64   `json:"minimized_windows"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"total_duration"` // sum of all request durations
	RequestCount      int64   `json:"request_count"`  // count for averaging
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Window manager metrics
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_operations_total",
				Help:      "Window operations by outcome (applied or ignored)",
			},
			[]string{"op", "outcome"},
		),
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows_open",
				Help:      "Number of live windows",
			},
		),
		WindowsMinimized: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows_minimized",
				Help:      "Number of minimized windows",
			},
		),
		PersistenceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_persistence_failures_total",
				Help:      "Window state reads and writes that failed",
			},
			[]string{"op"},
		),
		StoreFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Backing store calls that failed or were rejected by the breaker",
			},
			[]string{"op"},
		),

		// Event bus metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Lifecycle events published",
			},
			[]string{"kind"},
		),
		SubscriberFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_subscriber_failures_total",
				Help:      "Event subscribers that returned an error or panicked",
			},
			[]string{"kind"},
		),

		// Registry metrics
		RegistryApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_apps",
				Help:      "Number of registered apps",
			},
		),

		// Session metrics
		SessionsSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_saved_total",
				Help:      "Total number of sessions saved",
			},
		),
		SessionsRestored: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_restored_total",
				Help:      "Total number of sessions restored",
			},
		),

		// Drag metrics
		DragGestures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drag_gestures_total",
				Help:      "Pointer drag gestures by phase",
			},
			[]string{"phase"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a window operation
func (m *Metrics) RecordOperation(op string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "ignored"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()

	m.mu.Lock()
	m.snapshot.TotalOperations++
	if !applied {
		m.snapshot.IgnoredOperations++
	}
	m.mu.Unlock()
}

// SetWindows sets the live and minimized window gauges
func (m *Metrics) SetWindows(open, minimized int) {
	m.WindowsOpen.Set(float64(open))
	m.WindowsMinimized.Set(float64(minimized))

	m.mu.Lock()
	m.snapshot.OpenWindows = int64(open)
	m.snapshot.MinimizedWindows = int64(minimized)
	m.mu.Unlock()
}

// RecordPersistenceFailure records a failed window state read or write
func (m *Metrics) RecordPersistenceFailure(op string) {
	m.PersistenceFailures.WithLabelValues(op).Inc()
}

// RecordStoreFailure records a failed backing store call
func (m *Metrics) RecordStoreFailure(op string) {
	m.StoreFailures.WithLabelValues(op).Inc()
}

// RecordEvent records a published event
func (m *Metrics) RecordEvent(kind string) {
	m.EventsPublished.WithLabelValues(kind).Inc()
}

// RecordSubscriberFailure records a failed event subscriber
func (m *Metrics) RecordSubscriberFailure(kind string) {
	m.SubscriberFailures.WithLabelValues(kind).Inc()
}

// RecordDrag records a drag gesture phase
func (m *Metrics) RecordDrag(phase string) {
	m.DragGestures.WithLabelValues(phase).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetRegistryApps sets the number of apps in registry
func (m *Metrics) SetRegistryApps(count int) {
	m.RegistryApps.Set(float64(count))
}

// IncSessionsSaved increments the sessions saved counter
func (m *Metrics) IncSessionsSaved() {
	m.SessionsSaved.Inc()
}

// IncSessionsRestored increments the sessions restored counter
func (m *Metrics) IncSessionsRestored() {
	m.SessionsRestored.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Uptime returns the time since the metrics were created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

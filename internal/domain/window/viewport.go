package window

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

const (
	// SmallScreenWidth is the widest viewport treated as a phone: windows
	// open maximized and dragging is disabled.
	SmallScreenWidth = 600
	// DefaultTaskbarHeight is used when the host reports no taskbar height
	DefaultTaskbarHeight = 34
	// MaximizeMargin is the gap kept around a maximized window
	MaximizeMargin = 8
)

// ViewportMetrics describes the host viewport in CSS pixels
type ViewportMetrics struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	TaskbarHeight int `json:"taskbar_height"`
	SafeBottom    int `json:"safe_bottom"`
}

// SmallScreen reports whether the viewport is at or below SmallScreenWidth
func (m ViewportMetrics) SmallScreen() bool {
	return m.Width > 0 && m.Width <= SmallScreenWidth
}

// Taskbar returns the taskbar height, falling back to the default
func (m ViewportMetrics) Taskbar() int {
	if m.TaskbarHeight <= 0 {
		return DefaultTaskbarHeight
	}
	return m.TaskbarHeight
}

// Viewport supplies viewport metrics from the host
type Viewport interface {
	Metrics() ViewportMetrics
}

// MaximizedGeometry returns the rectangle of a maximized window: the whole
// viewport minus the margin, the taskbar and the bottom safe area.
func MaximizedGeometry(m ViewportMetrics) types.Geometry {
	margin := types.Px(MaximizeMargin)
	return types.Geometry{
		Top:    margin,
		Left:   margin,
		Width:  fmt.Sprintf("calc(100vw - %dpx)", 2*MaximizeMargin),
		Height: fmt.Sprintf("calc(100vh - %dpx - %dpx - %dpx)", m.Taskbar(), m.SafeBottom, 2*MaximizeMargin),
	}
}

// StaticViewport is a Viewport whose metrics are pushed by the front end
type StaticViewport struct {
	mu      sync.RWMutex
	metrics ViewportMetrics
}

// NewStaticViewport creates a viewport with initial metrics
func NewStaticViewport(m ViewportMetrics) *StaticViewport {
	return &StaticViewport{metrics: m}
}

// Metrics returns the current metrics
func (v *StaticViewport) Metrics() ViewportMetrics {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.metrics
}

// Set replaces the metrics
func (v *StaticViewport) Set(m ViewportMetrics) {
	v.mu.Lock()
	v.metrics = m
	v.mu.Unlock()
}

package drag

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"go.uber.org/zap"
)

// Clamp defaults
const (
	DefaultMargin           = 8
	DefaultMinVisibleWidth  = 50
	DefaultMinVisibleHeight = 30
)

// WindowManager is the part of the window manager a drag needs
type WindowManager interface {
	Window(id string) (types.WindowInstance, bool)
	Focus(id string) bool
	UpdateGeometry(id string, patch types.GeometryPatch) bool
}

// Surface receives the live rectangle while a drag is in progress
type Surface interface {
	Place(id string, top, left int)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(id string, top, left int)

// Place calls f
func (f SurfaceFunc) Place(id string, top, left int) {
	f(id, top, left)
}

// Pointer is one pointer sample in viewport coordinates
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// OnControl is set when the pointer is over a title-bar control button
	OnControl bool `json:"on_control"`
}

// Options tunes the clamp rectangle
type Options struct {
	Margin           int
	MinVisibleWidth  int
	MinVisibleHeight int
	Logger           *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.MinVisibleWidth <= 0 {
		o.MinVisibleWidth = DefaultMinVisibleWidth
	}
	if o.MinVisibleHeight <= 0 {
		o.MinVisibleHeight = DefaultMinVisibleHeight
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Controller moves one window by its title bar. The rectangle is applied
// to the surface on every move and committed to the manager once, when
// the gesture ends.
type Controller struct {
	id       string
	wm       WindowManager
	viewport window.Viewport
	surface  Surface
	opts     Options

	mu        sync.Mutex
	active    bool
	startX    float64
	startY    float64
	startTop  int
	startLeft int
	top       int
	left      int
}

// New creates a controller for the window of app id
func New(id string, wm WindowManager, viewport window.Viewport, surface Surface, opts Options) *Controller {
	if surface == nil {
		surface = SurfaceFunc(func(string, int, int) {})
	}
	return &Controller{
		id:       id,
		wm:       wm,
		viewport: viewport,
		surface:  surface,
		opts:     opts.withDefaults(),
	}
}

// ID returns the app id the controller moves
func (c *Controller) ID() string {
	return c.id
}

// Down starts a drag. It is ignored on a control button, on a maximized or
// missing window, on small screens and while a drag is already active.
func (c *Controller) Down(p Pointer) bool {
	if p.OnControl {
		return false
	}
	if c.viewport.Metrics().SmallScreen() {
		return false
	}
	w, ok := c.wm.Window(c.id)
	if !ok || w.Maximized {
		return false
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return false
	}
	c.active = true
	c.startX, c.startY = p.X, p.Y
	c.startTop = parsePx(w.Geometry.Top)
	c.startLeft = parsePx(w.Geometry.Left)
	c.top, c.left = c.startTop, c.startLeft
	c.mu.Unlock()

	c.wm.Focus(c.id)
	c.opts.Logger.Debug("Drag started",
		zap.String("app_id", c.id),
		zap.Int("top", c.startTop),
		zap.Int("left", c.startLeft))
	return true
}

// Move follows the pointer, clamped so the title bar stays reachable
func (c *Controller) Move(p Pointer) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	m := c.viewport.Metrics()
	dx := int(math.Round(p.X - c.startX))
	dy := int(math.Round(p.Y - c.startY))

	maxLeft := m.Width - c.opts.Margin - c.opts.MinVisibleWidth
	maxTop := m.Height - m.Taskbar() - c.opts.Margin - c.opts.MinVisibleHeight
	c.left = clamp(c.startLeft+dx, c.opts.Margin, maxLeft)
	c.top = clamp(c.startTop+dy, c.opts.Margin, maxTop)
	top, left := c.top, c.left
	c.mu.Unlock()

	c.surface.Place(c.id, top, left)
}

// Up ends the drag and commits the final position
func (c *Controller) Up() bool {
	return c.end("up")
}

// Cancel ends the drag and commits the last valid position
func (c *Controller) Cancel() bool {
	return c.end("cancel")
}

func (c *Controller) end(reason string) bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	top, left := c.top, c.left
	c.reset()
	c.mu.Unlock()

	committed := c.wm.UpdateGeometry(c.id, types.MoveTo(types.Px(top), types.Px(left)))
	c.opts.Logger.Debug("Drag ended",
		zap.String("app_id", c.id),
		zap.String("reason", reason),
		zap.Int("top", top),
		zap.Int("left", left),
		zap.Bool("committed", committed))
	return true
}

func (c *Controller) reset() {
	c.active = false
	c.startX, c.startY = 0, 0
	c.startTop, c.startLeft = 0, 0
	c.top, c.left = 0, 0
}

// Active reports whether a drag is in progress
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// clamp keeps n within [lo, hi]. lo wins when the range is empty.
func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

// parsePx reads the leading integer of a CSS length ("123px" -> 123,
// "-4.5px" -> -4). Anything without a leading integer is 0.
func parsePx(s string) int {
	s = strings.TrimLeft(s, " \t\n")
	sign := 0
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign = 1
	}
	end := strings.IndexFunc(s[sign:], func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(s) - sign
	}
	n, err := strconv.Atoi(s[:sign+end])
	if err != nil {
		return 0
	}
	return n
}

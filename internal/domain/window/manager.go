package window

import (
	"sort"
	"sync"

	"github.com/GriffinCanCode/webtop/internal/domain/events"
	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"go.uber.org/zap"
)

// Fallback placement for windows opened without a position
const (
	fallbackTop   = 100
	fallbackLeft  = 120
	scatterTop    = 18
	scatterLeft   = 24
	scatterTopMod = 180
	scatterLftMod = 240
)

// Recorder receives operation metrics
type Recorder interface {
	RecordOperation(op string, applied bool)
	SetWindows(open, minimized int)
	RecordPersistenceFailure(op string)
}

// Options configures a Manager. Only Registry is required.
type Options struct {
	Store    store.Store
	Registry *registry.Manager
	Bus      *events.Bus
	Viewport Viewport
	Location Location
	Logger   *zap.Logger
	Metrics  Recorder
}

// Manager owns the window state: the live windows, the active id and the
// z counter. Every operation runs to completion under the manager mutex and
// queues its events in the outbox before releasing it. One goroutine at a
// time drains the outbox with the mutex released, so events reach
// subscribers in mutation order and handlers may call back into the manager.
type Manager struct {
	mu       sync.Mutex
	windows  map[string]*types.WindowInstance // Protected by mu
	activeID string                           // Protected by mu
	zCounter int                              // Protected by mu
	ready    bool                             // Protected by mu
	pending  *string                          // Protected by mu; fragment received before Ready
	outbox   []types.Event                    // Protected by mu
	draining bool                             // Protected by mu

	store    store.Store
	registry *registry.Manager
	bus      *events.Bus
	viewport Viewport
	location Location
	logger   *zap.Logger
	metrics  Recorder
}

// change collects what an operation touched
type change struct {
	events  []types.Event
	touched []string
	removed []string
}

func (c *change) emit(ev types.Event) {
	c.events = append(c.events, ev)
}

func (c *change) touch(id string) {
	c.touched = append(c.touched, id)
}

// New creates a manager and hydrates it from the store
func New(opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewManager(opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = events.New(events.Options{Logger: opts.Logger})
	}
	if opts.Viewport == nil {
		opts.Viewport = NewStaticViewport(ViewportMetrics{Width: 1280, Height: 800, TaskbarHeight: DefaultTaskbarHeight})
	}
	if opts.Location == nil {
		opts.Location = NewMemoryLocation("")
	}

	m := &Manager{
		windows:  make(map[string]*types.WindowInstance),
		zCounter: DefaultZCounter,
		store:    opts.Store,
		registry: opts.Registry,
		bus:      opts.Bus,
		viewport: opts.Viewport,
		location: opts.Location,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	m.hydrate()
	return m
}

// mutate runs fn under the lock, persists and mirrors the result, queues
// the collected events, then drains the outbox.
func (m *Manager) mutate(op string, fn func(c *change) bool) bool {
	c := &change{}

	m.mu.Lock()
	applied := fn(c)
	if applied {
		m.persistLocked(c)
		m.syncLocationLocked()
	}
	m.outbox = append(m.outbox, c.events...)
	open, minimized := m.countsLocked()
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordOperation(op, applied)
		m.metrics.SetWindows(open, minimized)
	}
	if !applied {
		m.logger.Debug("Window operation ignored", zap.String("op", op))
	}

	m.drain()
	return applied
}

// publish queues events that follow no state change and drains them
func (m *Manager) publish(evs ...types.Event) {
	m.mu.Lock()
	m.outbox = append(m.outbox, evs...)
	m.mu.Unlock()
	m.drain()
}

// drain delivers queued events in order. A call made while another
// goroutine or an outer frame of this one is draining returns at once; the
// active drainer picks its events up.
func (m *Manager) drain() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.outbox) > 0 {
		ev := m.outbox[0]
		m.outbox[0] = types.Event{}
		m.outbox = m.outbox[1:]
		m.mu.Unlock()

		m.bus.Publish(ev)

		m.mu.Lock()
	}
	m.outbox = nil
	m.draining = false
	m.mu.Unlock()
}

// lookupLocked returns the live window for a registered id
func (m *Manager) lookupLocked(id string) (*types.WindowInstance, bool) {
	if !m.registry.Has(id) {
		return nil, false
	}
	w, ok := m.windows[id]
	return w, ok
}

func (m *Manager) bumpLocked(w *types.WindowInstance) {
	m.zCounter++
	w.ZIndex = m.zCounter
}

// RegisterApp registers def and announces it
func (m *Manager) RegisterApp(def types.AppDefinition) error {
	replaced, err := m.registry.Register(def)
	if err != nil {
		m.logger.Warn("Rejected app definition", zap.String("app_id", def.ID), zap.Error(err))
		return err
	}
	if stored, ok := m.registry.Get(def.ID); ok {
		def = stored
	}
	m.logger.Debug("App registered", zap.String("app_id", def.ID), zap.Bool("replaced", replaced))
	m.publish(types.NewRegisteredEvent(def))
	return nil
}

// UnregisterApp removes an app definition and closes its window
func (m *Manager) UnregisterApp(id string) bool {
	m.Close(id)
	return m.registry.Unregister(id)
}

// Open shows the window for id, creating it when needed. defaultPos is used
// only when no persisted geometry exists for id.
func (m *Manager) Open(id string, defaultPos *types.Position) bool {
	return m.mutate("open", func(c *change) bool {
		if !m.registry.Has(id) {
			return false
		}

		if w, ok := m.windows[id]; ok {
			if w.Minimized {
				w.Minimized = false
				m.bumpLocked(w)
				m.activeID = id
				c.touch(id)
				c.emit(types.NewEvent(types.EventRestored, id))
				c.emit(types.NewEvent(types.EventFocused, id))
				m.autoMaximizeLocked(c, w)
				return true
			}
			m.bumpLocked(w)
			m.activeID = id
			c.touch(id)
			c.emit(types.NewEvent(types.EventFocused, id))
			return true
		}

		w := m.createLocked(id, defaultPos)
		m.bumpLocked(w)
		m.activeID = id
		c.touch(id)
		c.emit(types.NewEvent(types.EventOpened, id))
		c.emit(types.NewEvent(types.EventFocused, id))
		m.autoMaximizeLocked(c, w)
		return true
	})
}

// createLocked builds a new instance: persisted geometry first, then the
// caller's position, then the scatter fallback.
func (m *Manager) createLocked(id string, defaultPos *types.Position) *types.WindowInstance {
	w := &types.WindowInstance{AppID: id, Open: true}

	if rec, ok := m.readRecord(id); ok {
		w.Geometry = rec.geometry()
		if rec.Maximized {
			m.maximizeLocked(w)
		}
		m.windows[id] = w
		return w
	}

	if def, ok := m.registry.Get(id); ok && def.DefaultWidth > 0 {
		w.Geometry.Width = types.Px(def.DefaultWidth)
	}
	if defaultPos != nil {
		w.Geometry.Top = types.Px(defaultPos.Top)
		w.Geometry.Left = types.Px(defaultPos.Left)
	} else {
		w.Geometry.Top, w.Geometry.Left = fallbackPosition(len(m.windows))
	}

	m.windows[id] = w
	return w
}

// fallbackPosition scatters new windows so they do not stack exactly
func fallbackPosition(n int) (top, left string) {
	return types.Px(fallbackTop + (n*scatterTop)%scatterTopMod),
		types.Px(fallbackLeft + (n*scatterLeft)%scatterLftMod)
}

func (m *Manager) autoMaximizeLocked(c *change, w *types.WindowInstance) {
	if w.Maximized || !m.viewport.Metrics().SmallScreen() {
		return
	}
	m.maximizeLocked(w)
	c.emit(types.NewGeometryEvent(types.EventMaximized, w.AppID, w.Geometry))
}

// Close removes the window for id and its persisted record
func (m *Manager) Close(id string) bool {
	return m.mutate("close", func(c *change) bool {
		if _, ok := m.lookupLocked(id); !ok {
			return false
		}
		delete(m.windows, id)
		if m.activeID == id {
			m.activeID = ""
		}
		c.removed = append(c.removed, id)
		c.emit(types.NewEvent(types.EventClosed, id))
		return true
	})
}

// Minimize hides the window for id, keeping its geometry
func (m *Manager) Minimize(id string) bool {
	return m.mutate("minimize", func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok || w.Minimized {
			return false
		}
		w.Minimized = true
		if m.activeID == id {
			m.activeID = ""
		}
		c.touch(id)
		c.emit(types.NewEvent(types.EventMinimized, id))
		return true
	})
}

// Restore shows the window for id and brings it to front. It never creates
// a window.
func (m *Manager) Restore(id string) bool {
	return m.mutate("restore", func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok {
			return false
		}
		w.Minimized = false
		m.bumpLocked(w)
		m.activeID = id
		c.touch(id)
		c.emit(types.NewEvent(types.EventRestored, id))
		return true
	})
}

// Toggle minimizes a visible window and restores anything else
func (m *Manager) Toggle(id string) bool {
	m.mu.Lock()
	w, ok := m.lookupLocked(id)
	visible := ok && w.Visible()
	m.mu.Unlock()

	if visible {
		return m.Minimize(id)
	}
	return m.Restore(id)
}

// Focus brings the window for id to front and makes it active
func (m *Manager) Focus(id string) bool {
	return m.mutate("focus", func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok {
			return false
		}
		m.bumpLocked(w)
		m.activeID = id
		c.touch(id)
		c.emit(types.NewEvent(types.EventFocused, id))
		return true
	})
}

// ToggleMaximize maximizes the window for id, or returns it to the
// rectangle it had before it was maximized.
func (m *Manager) ToggleMaximize(id string) bool {
	return m.mutate("maximize", func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok {
			return false
		}
		c.touch(id)

		if !w.Maximized {
			m.maximizeLocked(w)
			c.emit(types.NewGeometryEvent(types.EventMaximized, id, w.Geometry))
			return true
		}

		if w.RestoreGeometry != nil {
			w.Geometry = *w.RestoreGeometry
		}
		w.RestoreGeometry = nil
		w.Maximized = false
		c.emit(types.NewGeometryEvent(types.EventRestoredSize, id, w.Geometry))
		return true
	})
}

// maximizeLocked snapshots the current rectangle and fills the viewport.
// The snapshot is only taken on the transition into maximized.
func (m *Manager) maximizeLocked(w *types.WindowInstance) {
	if !w.Maximized {
		snapshot := w.Geometry
		w.RestoreGeometry = &snapshot
	}
	w.Maximized = true
	w.Geometry = MaximizedGeometry(m.viewport.Metrics())
}

// UpdateGeometry merges patch into the window's geometry. It does not change
// z order or focus.
func (m *Manager) UpdateGeometry(id string, patch types.GeometryPatch) bool {
	return m.mutate("geometry", func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok || patch.Empty() {
			return false
		}
		w.Geometry = patch.Apply(w.Geometry)
		c.touch(id)
		c.emit(types.NewGeometryEvent(types.EventGeometryChanged, id, w.Geometry))
		return true
	})
}

// Relayout recomputes maximized rectangles after the viewport changed
func (m *Manager) Relayout() int {
	var n int
	m.mutate("relayout", func(c *change) bool {
		metrics := m.viewport.Metrics()
		for id, w := range m.windows {
			if !w.Maximized {
				continue
			}
			next := MaximizedGeometry(metrics)
			if next == w.Geometry {
				continue
			}
			w.Geometry = next
			c.touch(id)
			c.emit(types.NewGeometryEvent(types.EventGeometryChanged, id, w.Geometry))
			n++
		}
		return n > 0
	})
	return n
}

// SetTitle overrides the title shown for a live window. An empty title
// reverts to the registered one. Unknown ids are ignored.
func (m *Manager) SetTitle(id, title string) bool {
	return m.setMeta("setTitle", id, func(meta *types.WindowMeta) { meta.Title = title })
}

// SetIcon overrides the icon shown for a live window. An empty src reverts
// to the registered icon. Unknown ids are ignored.
func (m *Manager) SetIcon(id, src string) bool {
	return m.setMeta("setIcon", id, func(meta *types.WindowMeta) { meta.Icon = src })
}

// setMeta changes display metadata only. Metadata lives with the window
// and is not persisted.
func (m *Manager) setMeta(op, id string, set func(meta *types.WindowMeta)) bool {
	return m.mutate(op, func(c *change) bool {
		w, ok := m.lookupLocked(id)
		if !ok {
			return false
		}
		set(&w.Meta)
		c.emit(types.NewStateEvent(id, w.Meta))
		return true
	})
}

// Subscribe registers handler for one event kind
func (m *Manager) Subscribe(kind types.EventKind, handler events.Handler) events.Subscription {
	return m.bus.Subscribe(kind, handler)
}

// SubscribeAll registers handler for every event kind
func (m *Manager) SubscribeAll(handler events.Handler) events.Subscription {
	return m.bus.SubscribeAll(handler)
}

// Unsubscribe removes a subscription
func (m *Manager) Unsubscribe(sub events.Subscription) bool {
	return m.bus.Unsubscribe(sub)
}

// Registry returns the app registry
func (m *Manager) Registry() *registry.Manager {
	return m.registry
}

// Viewport returns the viewport provider
func (m *Manager) Viewport() Viewport {
	return m.viewport
}

// GetState returns the live ids in ascending z order, the active id and the
// registered ids.
func (m *Manager) GetState() types.Snapshot {
	m.mu.Lock()
	open := m.idsByZLocked()
	active := m.activeID
	m.mu.Unlock()

	return types.Snapshot{
		Open:       open,
		ActiveID:   active,
		Registered: m.registry.IDs(),
		Fragment:   m.location.Fragment(),
	}
}

// Window returns a copy of the window for id
func (m *Manager) Window(id string) (types.WindowInstance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return types.WindowInstance{}, false
	}
	return copyInstance(w), true
}

// Windows returns copies of all live windows in ascending z order
func (m *Manager) Windows() []types.WindowInstance {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.WindowInstance, 0, len(m.windows))
	for _, id := range m.idsByZLocked() {
		out = append(out, copyInstance(m.windows[id]))
	}
	return out
}

// ActiveID returns the focused window id, empty when none
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// State returns a deep copy of the full state
func (m *Manager) State() types.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	windows := make(map[string]types.WindowInstance, len(m.windows))
	for id, w := range m.windows {
		windows[id] = copyInstance(w)
	}
	return types.State{Windows: windows, ActiveID: m.activeID, ZCounter: m.zCounter}
}

// Stats returns window manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.Stats{
		OpenWindows:    len(m.windows),
		RegisteredApps: m.registry.Len(),
		ActiveID:       m.activeID,
		ZCounter:       m.zCounter,
		Ready:          m.ready,
	}
	for _, w := range m.windows {
		if w.Minimized {
			stats.MinimizedWindows++
		}
		if w.Maximized {
			stats.MaximizedWindows++
		}
	}
	return stats
}

func (m *Manager) idsByZLocked() []string {
	ids := make([]string, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.windows[ids[i]].ZIndex < m.windows[ids[j]].ZIndex
	})
	return ids
}

func (m *Manager) countsLocked() (open, minimized int) {
	for _, w := range m.windows {
		if w.Minimized {
			minimized++
		}
	}
	return len(m.windows), minimized
}

func copyInstance(w *types.WindowInstance) types.WindowInstance {
	out := *w
	if w.RestoreGeometry != nil {
		g := *w.RestoreGeometry
		out.RestoreGeometry = &g
	}
	return out
}

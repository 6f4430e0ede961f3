package window

import (
	"errors"

	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// DefaultZCounter is the z counter of a fresh desktop
const DefaultZCounter = 100

// record is the persisted form of one window. Geometry is the normal
// (non-maximized) rectangle.
type record struct {
	Top       string `json:"top"`
	Left      string `json:"left"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	Maximized bool   `json:"maximized"`
	Minimized bool   `json:"minimized"`
}

func recordOf(w *types.WindowInstance) record {
	g := w.Geometry
	if w.Maximized && w.RestoreGeometry != nil {
		g = *w.RestoreGeometry
	}
	return record{
		Top:       g.Top,
		Left:      g.Left,
		Width:     g.Width,
		Height:    g.Height,
		Maximized: w.Maximized,
		Minimized: w.Minimized,
	}
}

func (r record) geometry() types.Geometry {
	return types.Geometry{Top: r.Top, Left: r.Left, Width: r.Width, Height: r.Height}
}

// hydrate rebuilds state from the store. Missing or corrupt records fall
// back to defaults. Windows get fresh z values in persisted order so no two
// share a z value even if the stored counter was stale.
func (m *Manager) hydrate() {
	var zCounter int
	if m.readJSON(store.KeyZCounter, &zCounter) && zCounter >= DefaultZCounter {
		m.zCounter = zCounter
	}

	var openSet []string
	m.readJSON(store.KeyOpenSet, &openSet)

	for _, id := range openSet {
		if id == "" {
			continue
		}
		if _, dup := m.windows[id]; dup {
			continue
		}

		w := &types.WindowInstance{AppID: id, Open: true}
		if rec, ok := m.readRecord(id); ok {
			w.Geometry = rec.geometry()
			w.Minimized = rec.Minimized
			if rec.Maximized {
				m.maximizeLocked(w)
			}
		} else {
			w.Geometry.Top, w.Geometry.Left = fallbackPosition(len(m.windows))
		}
		m.bumpLocked(w)
		m.windows[id] = w
	}

	var active string
	if m.readJSON(store.KeyActive, &active) {
		if w, ok := m.windows[active]; ok && w.Visible() {
			m.activeID = active
		}
	}

	m.logger.Info("Window state hydrated",
		zap.Int("windows", len(m.windows)),
		zap.String("active_id", m.activeID),
		zap.Int("z_counter", m.zCounter))
}

func (m *Manager) readRecord(id string) (record, bool) {
	var rec record
	if !m.readJSON(store.WindowKey(id), &rec) {
		return record{}, false
	}
	return rec, true
}

// readJSON decodes key into v. It reports false for missing, unreadable or
// corrupt values.
func (m *Manager) readJSON(key string, v any) bool {
	data, err := m.store.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		m.persistFailed("read", key, err)
		return false
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		m.logger.Warn("Ignoring corrupt persisted value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (m *Manager) writeJSON(key string, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		m.persistFailed("encode", key, err)
		return
	}
	if err := m.store.Set(key, data); err != nil {
		m.persistFailed("write", key, err)
	}
}

// persistLocked writes the slices an operation touched. Store errors are
// logged and counted, never returned.
func (m *Manager) persistLocked(c *change) {
	written := make(map[string]bool, len(c.touched))
	for _, id := range c.touched {
		if written[id] {
			continue
		}
		written[id] = true
		if w, ok := m.windows[id]; ok {
			m.writeJSON(store.WindowKey(id), recordOf(w))
		}
	}
	for _, id := range c.removed {
		if err := m.store.Remove(store.WindowKey(id)); err != nil {
			m.persistFailed("remove", store.WindowKey(id), err)
		}
	}

	m.writeJSON(store.KeyOpenSet, m.idsByZLocked())
	m.writeJSON(store.KeyActive, m.activeID)
	m.writeJSON(store.KeyZCounter, m.zCounter)
}

func (m *Manager) persistFailed(op, key string, err error) {
	m.logger.Warn("Window state persistence failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
	if m.metrics != nil {
		m.metrics.RecordPersistenceFailure(op)
	}
}

// pruneUnregisteredLocked drops windows whose app is not registered
func (m *Manager) pruneUnregisteredLocked() []string {
	var pruned []string
	for id := range m.windows {
		if !m.registry.Has(id) {
			delete(m.windows, id)
			if m.activeID == id {
				m.activeID = ""
			}
			pruned = append(pruned, id)
		}
	}
	return pruned
}

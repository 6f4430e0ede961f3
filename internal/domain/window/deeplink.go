package window

import (
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
	"go.uber.org/zap"
)

// syncLocationLocked mirrors the active id into the location fragment and
// clears it when no windows remain. Nothing is mirrored before Ready so a
// deep link present at boot is not overwritten by hydrated state.
func (m *Manager) syncLocationLocked() {
	if !m.ready {
		return
	}
	switch {
	case len(m.windows) == 0:
		m.location.Replace("")
	case m.activeID != "":
		m.location.Replace(m.activeID)
	}
}

// HandleFragment reacts to an external fragment change (back/forward, a
// pasted link). A fragment naming a registered app opens it. Fragments
// received before Ready are held and replayed by Ready; only the latest one
// is kept.
func (m *Manager) HandleFragment(fragment string) bool {
	fragment = utils.NormalizeFragment(fragment)

	m.mu.Lock()
	if !m.ready {
		m.pending = &fragment
		m.mu.Unlock()
		m.logger.Debug("Deep link held until ready", zap.String("fragment", fragment))
		return false
	}
	m.mu.Unlock()

	if fragment == "" || !m.registry.Has(fragment) {
		return false
	}
	return m.Open(fragment, nil)
}

// Ready marks app registration as complete. It drops hydrated windows whose
// app is not registered, then opens the deep link present at boot or the
// latest one received since. Calls after the first are no-ops.
func (m *Manager) Ready() {
	m.mu.Lock()
	if m.ready {
		m.mu.Unlock()
		return
	}
	m.ready = true

	pruned := m.pruneUnregisteredLocked()
	if len(pruned) > 0 {
		for _, id := range pruned {
			if err := m.store.Remove(store.WindowKey(id)); err != nil {
				m.persistFailed("remove", store.WindowKey(id), err)
			}
		}
		m.persistLocked(&change{})
		m.logger.Info("Dropped windows of unregistered apps", zap.Strings("app_ids", pruned))
	}

	fragment := m.location.Fragment()
	if m.pending != nil {
		fragment = *m.pending
		m.pending = nil
	}
	m.mu.Unlock()

	m.logger.Info("Window manager ready", zap.String("fragment", fragment))

	if fragment != "" && m.registry.Has(fragment) && m.Open(fragment, nil) {
		return
	}

	m.mu.Lock()
	m.syncLocationLocked()
	m.mu.Unlock()
}

// IsReady reports whether Ready has been called
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"go.uber.org/zap"
)

// ErrInvalidDefinition is returned when a definition lacks an id or content handle
var ErrInvalidDefinition = errors.New("invalid app definition")

// Stats contains registry statistics
type Stats struct {
	TotalApps  int            `json:"total_apps"`
	Categories map[string]int `json:"categories"`
}

// Manager holds registered app definitions in registration order
type Manager struct {
	mu     sync.RWMutex
	apps   map[string]types.AppDefinition
	order  []string
	logger *zap.Logger
}

// NewManager creates an empty registry
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		apps:   make(map[string]types.AppDefinition),
		logger: logger,
	}
}

// Validate checks the fields every definition must carry
func Validate(def types.AppDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	if def.Content == nil {
		return fmt.Errorf("%w: %s has no content handle", ErrInvalidDefinition, def.ID)
	}
	return nil
}

// Register stores def, replacing any definition with the same id in place.
// It reports whether an existing definition was replaced.
func (m *Manager) Register(def types.AppDefinition) (bool, error) {
	if err := Validate(def); err != nil {
		return false, err
	}
	if def.Title == "" {
		def.Title = def.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, replaced := m.apps[def.ID]
	m.apps[def.ID] = def
	if replaced {
		m.logger.Debug("App definition replaced", zap.String("app_id", def.ID))
	} else {
		m.order = append(m.order, def.ID)
	}
	return replaced, nil
}

// Get returns the definition for id
func (m *Manager) Get(id string) (types.AppDefinition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.apps[id]
	return def, ok
}

// Has reports whether id is registered
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.apps[id]
	return ok
}

// List returns all definitions in registration order
func (m *Manager) List() []types.AppDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := make([]types.AppDefinition, 0, len(m.order))
	for _, id := range m.order {
		defs = append(defs, m.apps[id])
	}
	return defs
}

// IDs returns registered ids in registration order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Unregister removes id. It reports whether id was registered.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.apps[id]; !ok {
		return false
	}
	delete(m.apps, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered apps
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.apps)
}

// Stats returns registry statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make(map[string]int)
	for _, def := range m.apps {
		category := def.Category
		if category == "" {
			category = "uncategorized"
		}
		categories[category]++
	}
	return Stats{TotalApps: len(m.apps), Categories: categories}
}

// Categories returns the distinct categories, sorted
func (m *Manager) Categories() []string {
	stats := m.Stats()
	out := make([]string, 0, len(stats.Categories))
	for c := range stats.Categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Target adapts the registry for seeding without a window manager
func (m *Manager) Target() Target {
	return managerTarget{m}
}

type managerTarget struct{ m *Manager }

func (t managerTarget) RegisterApp(def types.AppDefinition) error {
	_, err := t.m.Register(def)
	return err
}

func (t managerTarget) UnregisterApp(id string) bool {
	return t.m.Unregister(id)
}

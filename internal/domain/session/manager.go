package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for an unknown session id
	ErrNotFound = errors.New("session not found")
	// ErrInvalid is returned for a bad name or description
	ErrInvalid = errors.New("invalid session")
)

// WindowManager is the part of the window manager sessions drive
type WindowManager interface {
	Windows() []types.WindowInstance
	Window(id string) (types.WindowInstance, bool)
	ActiveID() string
	Open(id string, defaultPos *types.Position) bool
	Close(id string) bool
	Minimize(id string) bool
	Focus(id string) bool
	ToggleMaximize(id string) bool
	UpdateGeometry(id string, patch types.GeometryPatch) bool
}

// Manager saves and restores named workspaces
type Manager struct {
	sessions sync.Map
	windows  WindowManager
	store    store.Store
	logger   *zap.Logger

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a session manager and loads the saved sessions
func NewManager(windows WindowManager, st store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{windows: windows, store: st, logger: logger}
	m.loadAll()
	return m
}

// Save captures the current workspace under name
func (m *Manager) Save(ctx context.Context, name string, description string) (*types.Session, error) {
	if err := utils.ValidateName(name, "name"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := utils.ValidateDescription(description, "description", false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &types.Session{
		ID:          id.NewSessionID().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Workspace:   m.capture(),
	}

	data, err := sonic.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.store.Set(store.SessionKey(session.ID), data); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}

	m.sessions.Store(session.ID, session)

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	m.logger.Info("Session saved",
		zap.String("session_id", session.ID),
		zap.String("name", name),
		zap.Int("windows", len(session.Workspace.Windows)))
	return session, nil
}

// SaveDefault saves the workspace with the default name
func (m *Manager) SaveDefault(ctx context.Context) (*types.Session, error) {
	return m.Save(ctx, "default", "Auto-saved session")
}

// Load returns a saved session
func (m *Manager) Load(ctx context.Context, sessionID string) (*types.Session, error) {
	if cached, ok := m.sessions.Load(sessionID); ok {
		return cached.(*types.Session), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := m.read(store.SessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	m.sessions.Store(sessionID, session)
	return session, nil
}

// Restore replaces the current workspace with a saved one. All windows are
// closed, the saved ones are reopened in z order with their geometry and
// flags, and the saved active window is focused. Apps that are no longer
// registered are skipped.
func (m *Manager) Restore(ctx context.Context, sessionID string) (*types.RestoreResult, error) {
	session, err := m.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	for _, w := range m.windows.Windows() {
		m.windows.Close(w.AppID)
	}

	snapshots := make([]types.WindowSnapshot, len(session.Workspace.Windows))
	copy(snapshots, session.Workspace.Windows)
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].ZIndex < snapshots[j].ZIndex
	})

	result := &types.RestoreResult{SessionID: session.ID}
	for _, snap := range snapshots {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !m.restoreWindow(snap) {
			result.Skipped = append(result.Skipped, snap.AppID)
			continue
		}
		result.Restored = append(result.Restored, snap.AppID)
	}

	if active := session.Workspace.ActiveID; active != "" {
		if w, ok := m.windows.Window(active); ok && w.Visible() && m.windows.Focus(active) {
			result.ActiveID = active
		}
	}

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	m.logger.Info("Session restored",
		zap.String("session_id", session.ID),
		zap.Int("restored", len(result.Restored)),
		zap.Strings("skipped", result.Skipped))
	return result, nil
}

func (m *Manager) restoreWindow(snap types.WindowSnapshot) bool {
	if !m.windows.Open(snap.AppID, nil) {
		return false
	}

	// Persisted records or a small viewport can open the window maximized;
	// set the normal rectangle first so a later un-maximize returns to it.
	if w, ok := m.windows.Window(snap.AppID); ok && w.Maximized {
		m.windows.ToggleMaximize(snap.AppID)
	}
	g := snap.Geometry
	m.windows.UpdateGeometry(snap.AppID, types.GeometryPatch{
		Top:    &g.Top,
		Left:   &g.Left,
		Width:  &g.Width,
		Height: &g.Height,
	})
	if snap.Maximized {
		m.windows.ToggleMaximize(snap.AppID)
	}
	if snap.Minimized {
		m.windows.Minimize(snap.AppID)
	}
	return true
}

// List returns all saved sessions, newest first
func (m *Manager) List() ([]types.SessionMetadata, error) {
	var metadata []types.SessionMetadata

	m.sessions.Range(func(_, value interface{}) bool {
		session := value.(*types.Session)
		metadata = append(metadata, session.ToMetadata())
		return true
	})

	sort.Slice(metadata, func(i, j int) bool {
		return metadata[i].ID > metadata[j].ID
	})
	return metadata, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := m.sessions.Load(sessionID); !ok {
		if _, err := m.read(store.SessionKey(sessionID)); err != nil {
			return err
		}
	}

	if err := m.store.Remove(store.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.sessions.Delete(sessionID)

	m.logger.Info("Session deleted", zap.String("session_id", sessionID))
	return nil
}

// Stats returns session manager statistics
func (m *Manager) Stats() types.SessionStats {
	var total int
	m.sessions.Range(func(_, _ interface{}) bool {
		total++
		return true
	})

	m.mu.RLock()
	lastSaved := m.lastSaved
	lastRestored := m.lastRestored
	m.mu.RUnlock()

	return types.SessionStats{
		TotalSessions: total,
		LastSaved:     lastSaved,
		LastRestored:  lastRestored,
	}
}

// capture snapshots every live window with its normal rectangle
func (m *Manager) capture() types.Workspace {
	windows := m.windows.Windows()
	snapshots := make([]types.WindowSnapshot, 0, len(windows))
	for _, w := range windows {
		g := w.Geometry
		if w.Maximized && w.RestoreGeometry != nil {
			g = *w.RestoreGeometry
		}
		snapshots = append(snapshots, types.WindowSnapshot{
			AppID:     w.AppID,
			Geometry:  g,
			Maximized: w.Maximized,
			Minimized: w.Minimized,
			ZIndex:    w.ZIndex,
		})
	}
	return types.Workspace{Windows: snapshots, ActiveID: m.windows.ActiveID()}
}

func (m *Manager) read(key string) (*types.Session, error) {
	data, err := m.store.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session types.Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", key, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("session %s has empty ID field", key)
	}
	return &session, nil
}

// loadAll fills the cache from the store. Unreadable sessions are skipped.
func (m *Manager) loadAll() {
	keys, err := m.store.Keys(store.SessionPrefix)
	if err != nil {
		m.logger.Warn("Failed to list saved sessions", zap.Error(err))
		return
	}
	for _, key := range keys {
		session, err := m.read(key)
		if err != nil {
			m.logger.Warn("Skipping unreadable session", zap.String("key", key), zap.Error(err))
			continue
		}
		m.sessions.Store(session.ID, session)
	}
}

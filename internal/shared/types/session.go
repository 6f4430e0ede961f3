package types

import "time"

// WindowSnapshot is one window of a saved workspace. Geometry is the normal
// (non-maximized) rectangle.
type WindowSnapshot struct {
	AppID     string   `json:"app_id"`
	Geometry  Geometry `json:"geometry"`
	Maximized bool     `json:"maximized"`
	Minimized bool     `json:"minimized"`
	ZIndex    int      `json:"z_index"`
}

// Workspace is the window layout captured by a session
type Workspace struct {
	Windows  []WindowSnapshot `json:"windows"`
	ActiveID string           `json:"active_id,omitempty"`
}

// Session is a named, saved workspace
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Workspace   Workspace `json:"workspace"`
}

// SessionMetadata is the listing view of a session
type SessionMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	WindowCount int       `json:"window_count"`
}

// ToMetadata converts a session to its listing view
func (s *Session) ToMetadata() SessionMetadata {
	return SessionMetadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		WindowCount: len(s.Workspace.Windows),
	}
}

// RestoreResult reports which windows a restore brought back
type RestoreResult struct {
	SessionID string   `json:"session_id"`
	Restored  []string `json:"restored"`
	Skipped   []string `json:"skipped,omitempty"`
	ActiveID  string   `json:"active_id,omitempty"`
}

// SessionStats contains session manager statistics
type SessionStats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
}

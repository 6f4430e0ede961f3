package types

import "time"

// EventKind tags a lifecycle event
type EventKind string

const (
	EventRegistered      EventKind = "registered"
	EventOpened          EventKind = "opened"
	EventClosed          EventKind = "closed"
	EventMinimized       EventKind = "minimized"
	EventRestored        EventKind = "restored"
	EventFocused         EventKind = "focused"
	EventMaximized       EventKind = "maximized"
	EventRestoredSize    EventKind = "restoredSize"
	EventGeometryChanged EventKind = "geometryChanged"
	EventState           EventKind = "state"
)

// EventKinds lists every kind in a stable order
var EventKinds = []EventKind{
	EventRegistered,
	EventOpened,
	EventClosed,
	EventMinimized,
	EventRestored,
	EventFocused,
	EventMaximized,
	EventRestoredSize,
	EventGeometryChanged,
	EventState,
}

// Valid reports whether k is a known kind
func (k EventKind) Valid() bool {
	for _, known := range EventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is a lifecycle notification. The payload shape is fixed per kind:
// Geometry is set for maximized, restoredSize and geometryChanged; Title is
// set for registered; Meta is set for state. Use the constructors below
// rather than literals.
type Event struct {
	ID       string      `json:"id"`
	Kind     EventKind   `json:"kind"`
	AppID    string      `json:"app_id"`
	Geometry *Geometry   `json:"geometry,omitempty"`
	Title    string      `json:"title,omitempty"`
	Meta     *WindowMeta `json:"meta,omitempty"`
	Time     time.Time   `json:"time"`
}

// WindowMeta is the title and icon a running app set on its window. Empty
// fields mean the registered value applies.
type WindowMeta struct {
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// NewEvent builds an event that carries only the app id
func NewEvent(kind EventKind, appID string) Event {
	return Event{Kind: kind, AppID: appID, Time: time.Now()}
}

// NewGeometryEvent builds an event that carries a rectangle
func NewGeometryEvent(kind EventKind, appID string, g Geometry) Event {
	ev := NewEvent(kind, appID)
	ev.Geometry = &g
	return ev
}

// NewRegisteredEvent builds a registered event
func NewRegisteredEvent(def AppDefinition) Event {
	ev := NewEvent(EventRegistered, def.ID)
	ev.Title = def.Title
	return ev
}

// NewStateEvent builds a state event carrying the window's current metadata
func NewStateEvent(appID string, meta WindowMeta) Event {
	ev := NewEvent(EventState, appID)
	ev.Meta = &meta
	return ev
}

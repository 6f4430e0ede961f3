package ws

import (
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// Inbound message types
const (
	TypePointer  = "pointer"
	TypeViewport = "viewport"
	TypeKey      = "key"
	TypeFragment = "fragment"
	TypePing     = "ping"
)

// Outbound message types
const (
	TypeSystem = "system"
	TypeEvent  = "event"
	TypeDrag   = "drag"
	TypePong   = "pong"
	TypeResult = "result"
	TypeError  = "error"
)

// Pointer phases
const (
	PhaseDown   = "down"
	PhaseMove   = "move"
	PhaseUp     = "up"
	PhaseCancel = "cancel"
)

// Message is a frame sent by the browser
type Message struct {
	Type      string                  `json:"type"`
	Phase     string                  `json:"phase,omitempty"`
	AppID     string                  `json:"app_id,omitempty"`
	X         float64                 `json:"x,omitempty"`
	Y         float64                 `json:"y,omitempty"`
	OnControl bool                    `json:"on_control,omitempty"`
	Viewport  *window.ViewportMetrics `json:"viewport,omitempty"`
	Key       *window.KeyEvent        `json:"key,omitempty"`
	Fragment  string                  `json:"fragment,omitempty"`
}

// Frame is a message sent to the browser
type Frame struct {
	Type      string       `json:"type"`
	Message   string       `json:"message,omitempty"`
	Event     *types.Event `json:"event,omitempty"`
	AppID     string       `json:"app_id,omitempty"`
	Top       *int         `json:"top,omitempty"`
	Left      *int         `json:"left,omitempty"`
	Handled   *bool        `json:"handled,omitempty"`
	TraceID   string       `json:"trace_id,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

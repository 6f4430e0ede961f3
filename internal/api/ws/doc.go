// Package ws streams window lifecycle events to the browser and carries
// pointer gestures, viewport changes and keyboard shortcuts back to the
// window manager over a WebSocket.
package ws

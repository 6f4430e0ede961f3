// Package main is the entry point for the webtop window manager service.
//
// The service owns the desktop state of a browser front end: which app
// windows are open, their geometry and stacking order, and which one is
// active. The browser renders the windows and drives them over HTTP and a
// WebSocket event stream.
//
// Commands:
//
//	webtop serve             run the HTTP and WebSocket server
//	webtop state             print the persisted desktop state
//	webtop apps              list the apps registered at startup
//
// Configuration comes from environment variables (see
// internal/infrastructure/config); flags override them.
//
// Usage:
//
//	webtop serve --port 8000 --store ~/.webtop/state.json --apps ./apps --watch
//	webtop state --store ~/.webtop/state.json
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

/*
Package monitoring provides Prometheus metrics for the desktop service.

# Overview

Metrics are registered on a caller-supplied registry rather than the global
default, so tests and multiple servers in one process do not collide.

# Features

- HTTP request metrics (latency, throughput, size)
- Window operations by outcome, live and minimized window gauges
- Events published and failing subscribers by kind
- Window persistence and backing store failures
- Drag gestures, sessions, WebSocket connections and messages

Metrics implements window.Recorder and is handed to the window manager,
the event bus and the guarded store by the composition root.

# Usage

	reg := monitoring.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", monitoring.Handler(reg))
*/
package monitoring

// Package config provides 12-factor configuration for the desktop service.
//
// Configuration is loaded from environment variables with defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting
//   - Store: Persistent store file, compression, flush batching, breaker
//   - Apps: Manifest directory and hot reload
//   - Viewport: Viewport assumed before the front end reports one
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORE_PATH, STORE_COMPRESS, STORE_FLUSH_INTERVAL, STORE_MAX_FAILURES, STORE_BREAKER_COOLDOWN
//   - APPS_DIR, APPS_WATCH
//   - VIEWPORT_WIDTH, VIEWPORT_HEIGHT, VIEWPORT_TASKBAR
package config

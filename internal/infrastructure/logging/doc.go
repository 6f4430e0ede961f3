// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Domain packages receive a plain *zap.Logger from Logger.Component so they
// stay independent of this wrapper.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	wm := window.New(window.Options{Logger: logger.Component("window")})
package logging

// Package middleware provides the gin middleware mounted in front of the
// window manager API.
//
// CORS lets the browser front end call the API and open the event stream
// from another origin. RateLimit keeps one token bucket per client IP and
// evicts buckets that have been idle for IdleTTL. GlobalRateLimit shares a
// single bucket across all clients.
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

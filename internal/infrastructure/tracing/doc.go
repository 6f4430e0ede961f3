/*
Package tracing provides lightweight request tracing.

# Overview

Each HTTP request gets a span. Trace ids come from the X-Trace-ID header
when the caller sends one, so a browser session can tie its requests and
its WebSocket stream together. Finished spans are logged through zap by a
background collector.

# Usage

	tracer := tracing.New("webtop", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracer.Trace(ctx, "session.restore", func(ctx context.Context) error {
		_, err := sessions.Restore(ctx, id)
		return err
	})

# Trace Format

- X-Trace-ID: UUID shared by every span of a request flow
- X-Span-ID: 16 hex digit id of the current operation
*/
package tracing

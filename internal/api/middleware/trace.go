// Package middleware contains the ordered request interceptors applied ahead
// of the resource handlers: trace, auth, CSRF and rate limiting. Each stage
// either passes the request to the next stage or short-circuits with its own
// error response.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/llegomark/tasks-api/internal/api/shared"
	"github.com/llegomark/tasks-api/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and installs a
// request-scoped logger tagged with it, so that every log record downstream
// handlers emit through logger.FromContext carries the trace ID.
// This middleware should be applied early in the middleware chain.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.Default().With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

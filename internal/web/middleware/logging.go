// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stockfile/internal/logging"
)

// Logger is an HTTP middleware that logs request details using structured logging.
//
// It stores the client IP in the request context so that every log entry
// written while serving the request carries it alongside the chi request ID.
//
// Log fields:
//   - method: HTTP method (GET, POST, etc.)
//   - path: Request URL path
//   - status: HTTP response status code
//   - bytes: Response body size
//   - duration_ms: Request processing time in milliseconds
//   - user_agent: Client user agent string
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logging.WithClientIP(r.Context(), clientHost(r.RemoteAddr))
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger := logging.FromContext(ctx)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_agent", r.UserAgent(),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request", attrs...)
		} else {
			logger.Info("request", attrs...)
		}
	})
}

// clientHost strips the port from a RemoteAddr, which TrustedRealIP may
// already have replaced with a bare IP.
func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paylith/cardvault/internal/infrastructure/metrics"
)

// NewMetricsMiddleware records request counts and latencies per route.
func NewMetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses resource IDs to keep label cardinality bounded.
// /api/v1/cards/01ABC123 -> /api/v1/cards/:id
func normalizePath(path string) string {
	for _, prefix := range []string{"/api/v1/cards/", "/api/v1/transfers/"} {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if rest == "" {
			return path
		}
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			// Keep sub-resource actions such as /cancel visible
			if !isStaticSegment(rest[:idx]) {
				return prefix + ":id" + rest[idx:]
			}
			return path
		}
		if !isStaticSegment(rest) {
			return prefix + ":id"
		}
		return path
	}
	return path
}

func isStaticSegment(s string) bool {
	switch s {
	case "all", "expire-sweep":
		return true
	}
	return false
}

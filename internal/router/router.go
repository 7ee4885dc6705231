package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/app"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user"
)

// statusRecorder wraps http.ResponseWriter to capture status and size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

func (sr *statusRecorder) code() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// LoggingMiddleware logs each request at debug level, and at warn level when
// the handler answered with a server error.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)
			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", sr.code(),
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"size", sr.size,
			}
			if sr.code() >= http.StatusInternalServerError {
				logger.Warnw("http request", kv...)
				return
			}
			logger.Debugw("http request", kv...)
		})
	}
}

// MetricsMiddleware records request counts and latency labelled by the
// matched route pattern rather than the raw path.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(r.Method, route, sr.code(), time.Since(start))
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts every endpoint on a stdlib ServeMux and wraps it with
// logging, metrics and security headers.
func RegisterRoutes(logger *zap.SugaredLogger, c *app.Container) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.DB.PingContext(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", c.Metrics.Handler())

	sessions := session.NewHandler(c.Sessions, c.Audit, c.Metrics, logger)
	mux.HandleFunc("POST /auth/login", sessions.Login)
	mux.HandleFunc("POST /auth/logout", sessions.Logout)

	contents := content.NewHandler(c.Content, c.Audit, c.Metrics, logger)
	mux.HandleFunc("POST /content/{kioskId}/update", contents.Update)
	mux.HandleFunc("GET /content/{kioskId}", contents.List)

	users := user.NewHandler(c.Users, c.Audit, logger)
	mux.HandleFunc("PUT /users/{userId}/permissions", users.UpdatePermissions)

	audits := audit.NewHandler(c.Audit, logger)
	mux.HandleFunc("GET /security/audit-logs", audits.AuditLogs)
	mux.HandleFunc("POST /kiosks/{kioskId}/interactions", audits.RecordInteraction)

	return LoggingMiddleware(logger)(MetricsMiddleware(c.Metrics)(SecurityHeadersMiddleware()(mux)))
}

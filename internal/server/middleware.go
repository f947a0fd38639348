package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/metrics"
)

type contextKey struct{}

var requestIDKey = contextKey{}

// maxRequestIDLen bounds client supplied IDs before they reach the logs.
const maxRequestIDLen = 64

// requestID propagates X-Request-ID, generating a UUID when the client sent none.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(config.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(config.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request ID stored by the middleware, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// observe records the Prometheus request metrics and writes the access log line.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, route, status, elapsed)

		level := slog.LevelInfo
		if route == config.RouteHealth || route == config.RouteMetrics {
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, config.MsgRequestCompleted,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyStatus, status,
			config.LogKeyDuration, elapsed.Milliseconds(),
			config.LogKeyRemote, r.RemoteAddr,
			config.LogKeyRequestID, RequestIDFrom(r.Context()),
		)
	})
}

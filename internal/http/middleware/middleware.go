package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scoutline/scout-client/internal/http/requestutil"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
)

// ClientHeader scopes a request to one client device.
const ClientHeader = requestutil.ClientIDHeader

// LoggingMiddleware wraps the handler with request logging, request ID support, and metrics.
func LoggingMiddleware(baseLogger *slog.Logger, recorder *metrics.Recorder, next http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := requestutil.SanitizeRequestID(r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", reqID)

		logger := baseLogger.With(
			slog.String(logging.FieldRequestID, reqID),
			slog.String(logging.FieldMethod, r.Method),
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)

		ctx := logging.WithLogger(r.Context(), logger)
		ctx = withRequestID(ctx, reqID)
		r = r.WithContext(ctx)

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		recorder.RecordHTTPRequest(r.Method, normalizePath(r.URL.Path), ww.status, duration)

		logger.Info("request complete",
			slog.Int(logging.FieldStatusCode, ww.status),
			slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
		)
	})
}

// ClientMiddleware reads the client id header into the context and tags the
// request logger with it. Requests without one pass through untouched; the
// handlers that need a client reject them.
func ClientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestutil.ClientID(r)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithClientID(r.Context(), id)
		logger := logging.FromContext(ctx, nil)
		if logger != nil {
			ctx = logging.WithLogger(ctx, logger.With(slog.String(logging.FieldClientID, id)))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

// RequestIDFromContext extracts the request ID stored by the logging middleware.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(requestIDKey{}).(string); ok {
		return val
	}
	return ""
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type requestIDKey struct{}

type clientIDKey struct{}

// WithClientID stores the client id on ctx.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIDFromContext returns the client id stored by ClientMiddleware.
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(clientIDKey{}).(string); ok {
		return val
	}
	return ""
}

var knownPaths = map[string]bool{
	"/health": true, "/ready": true, "/state": true,
	"/auth/signin": true, "/auth/signup": true, "/auth/verify": true, "/auth/signout": true,
	"/onboarding": true, "/favorites": true, "/favorites/toggle": true,
	"/chat/messages": true, "/chat/new": true, "/chat/history": true,
	"/languages": true, "/language": true, "/view": true,
	"/players/select": true, "/players/dashboard": true, "/players/photo": true,
}

// normalizePath keeps metric label cardinality bounded.
func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = strings.Split(path, "?")[0]
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if knownPaths[path] {
		return path
	}
	return "other"
}

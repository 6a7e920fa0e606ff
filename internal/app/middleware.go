package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/salonbook/admin-panel/internal/config"
	"github.com/salonbook/admin-panel/internal/rest"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const RequestIDHeader = "X-Request-Id"

type ctxKey int

const ctxKeyRequestID ctxKey = iota

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// SetupMiddleware wires all HTTP middlewares for the application.
// mux skips r.Use middleware for unmatched requests, so the 404 and 405
// handlers are wrapped explicitly.
func SetupMiddleware(r *mux.Router, cfg config.Application) {
	r.Use(withRequestID)
	r.Use(withAccessLog)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(withTimeout(cfg.Server.RequestTimeout))
	}

	r.NotFoundHandler = withRequestID(withAccessLog(http.HandlerFunc(notFound)))
	r.MethodNotAllowedHandler = withRequestID(withAccessLog(http.HandlerFunc(methodNotAllowed)))
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		rest.WriteError(w, http.StatusNotFound, "Not found", "")
		return
	}
	http.NotFound(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		rest.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// withRequestID reuses the caller's X-Request-Id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		fields := log.Fields{
			"request_id":  RequestIDFromContext(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"bytes":       sw.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
		}
		log.WithFields(fields).Info("http request")
	})
}

const timeoutMessage = "Request timed out"

// withTimeout answers API routes with a JSON error body and pages with plain text.
func withTimeout(d time.Duration) mux.MiddlewareFunc {
	apiBody, err := json.Marshal(rest.ErrorResponse{Error: timeoutMessage})
	if err != nil {
		panic(err)
	}
	return func(next http.Handler) http.Handler {
		api := http.TimeoutHandler(next, d, string(apiBody))
		page := http.TimeoutHandler(next, d, timeoutMessage)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAPI(r) {
				// API handlers always set their own Content-Type, which replaces this one on success.
				w.Header().Set("Content-Type", "application/json")
				api.ServeHTTP(w, r)
				return
			}
			page.ServeHTTP(w, r)
		})
	}
}

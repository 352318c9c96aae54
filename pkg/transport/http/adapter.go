package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/councilofminds/council/pkg/api"
	"github.com/councilofminds/council/pkg/transport"
)

// Adapter serves the council API over HTTP. It routes requests to the
// debate runner and serializes results.
type Adapter struct {
	runner transport.DebateRunner
	mux    *http.ServeMux
	config Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64
	MetricsPath string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":3000",
		MaxBodySize: 1 << 20, // 1 MB
		MetricsPath: "/metrics",
	}
}

// NewAdapter creates an HTTP adapter around the given runner.
// Middleware is applied to the runner in the given order. The optional
// metricsHandler, when non-nil, is mounted at cfg.MetricsPath
// (default /metrics).
func NewAdapter(runner transport.DebateRunner, cfg Config, metricsHandler http.Handler, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		runner = transport.Chain(middlewares...)(runner)
	}

	a := &Adapter{
		runner: runner,
		mux:    http.NewServeMux(),
		config: cfg,
	}

	a.mux.HandleFunc("POST /query", a.handleQuery)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	if metricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		a.mux.Handle("GET "+path, metricsHandler)
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest. The returned
// handler includes HTTP-level middleware for request ID propagation
// and CORS headers.
func (a *Adapter) Handler() http.Handler {
	return corsMiddleware(httpRequestIDMiddleware(a.mux))
}

// corsMiddleware allows cross-origin requests from any origin. The API
// carries no cookies and authenticates via explicit headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// httpRequestIDMiddleware propagates the X-Request-ID header. If present
// in the request, it is forwarded into the context; after the handler
// runs, the ID from the context (possibly generated by the session-level
// RequestID middleware) is reflected back to the client.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			r = r.WithContext(transport.ContextWithRequestID(r.Context(), id))
		}
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}

// handleQuery handles POST /query: it runs a full debate session and
// returns the complete pipeline result.
func (a *Adapter) handleQuery(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidQueryError("Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidQueryError(fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WritePipelineError(w, api.NewInvalidQueryError("invalid JSON: "+err.Error()))
		return
	}

	result, err := a.runner.Run(r.Context(), req.Query, req.Profile)
	if err != nil {
		transport.WritePipelineError(w, api.AsPipelineError("", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleHealth handles GET /healthz. The process being up is the health
// signal; upstream model availability is only discovered per session.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Package server exposes the tool catalogue over HTTP with a fixed JSON
// envelope and readiness reporting backed by the geography resolver.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/abs-insights/internal/geo"
	"github.com/sells-group/abs-insights/internal/tools"
)

// Server wires the registry and resolver into an HTTP handler.
type Server struct {
	registry *tools.Registry
	resolver *geo.Resolver
}

// New creates a Server.
func New(registry *tools.Registry, resolver *geo.Resolver) *Server {
	return &Server{registry: registry, resolver: resolver}
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	OK        bool     `json:"ok"`
	RequestID string   `json:"request_id,omitempty"`
	Result    any      `json:"result,omitempty"`
	Error     *errBody `json:"error,omitempty"`
}

// Router builds the chi router with CORS, request IDs, and request logging.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", s.handleListTools)
		r.Post("/tools/{name}", s.handleCallTool)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports the resolver snapshot. 503 until at least one
// sub-index is serving, so load balancers hold traffic during startup and
// after a total dataset failure.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.resolver.Status()
	status := http.StatusOK
	if !snap.PostcodeReady && !snap.BoundaryReady {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snap)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		OK:        true,
		RequestID: reqID(r),
		Result:    map[string]any{"tools": s.registry.List()},
	})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args := map[string]any{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			writeToolError(w, r, http.StatusBadRequest, &tools.Error{
				Code: tools.CodeInvalidArgument, Message: "request body must be a JSON object",
			})
			return
		}
	}

	result, err := s.registry.Call(r.Context(), name, args)
	if err != nil {
		terr, ok := err.(*tools.Error)
		if !ok {
			zap.L().Error("tool call failed",
				zap.String("tool", name),
				zap.String("request_id", reqID(r)),
				zap.Error(err),
			)
			terr = &tools.Error{Code: "internal", Message: "internal error"}
		}
		writeToolError(w, r, statusForCode(terr.Code), terr)
		return
	}

	writeJSON(w, http.StatusOK, envelope{OK: true, RequestID: reqID(r), Result: result})
}

func statusForCode(code string) int {
	switch code {
	case tools.CodeUnknownTool, tools.CodeNotFound:
		return http.StatusNotFound
	case tools.CodeInvalidArgument:
		return http.StatusBadRequest
	case tools.CodeNotReady:
		return http.StatusServiceUnavailable
	case tools.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeToolError(w http.ResponseWriter, r *http.Request, status int, terr *tools.Error) {
	writeJSON(w, status, envelope{
		OK:        false,
		RequestID: reqID(r),
		Error:     &errBody{Code: terr.Code, Message: terr.Message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey int

const requestIDKey ctxKey = 0

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func reqID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// requestID assigns a UUID per request, echoed in the X-Request-ID header
// and the response envelope.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := contextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", reqID(r)),
		)
	})
}

package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/civicflow"
	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
)

// APIKeyHeader carries the shared secret when the server is started with an API key.
const APIKeyHeader = "X-API-Key"

// maxBodyBytes bounds request bodies; questions and SQL are short.
const maxBodyBytes = 64 << 10

// Service is the part of the agent the HTTP boundary needs.
type Service interface {
	Ask(ctx context.Context, req agent.Request) (*agent.Result, error)
	Query(ctx context.Context, input string) (*agent.Result, error)
	Flow(name string) (domain.FlowDescription, error)
}

var _ Service = (*agent.Agent)(nil)

// Option configures the handler.
type Option func(*Server)

// WithAPIKey requires every route except /health to carry the key in X-API-Key.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves the JSON API.
type Server struct {
	service Service
	apiKey  string
	metrics http.Handler
	logger  *slog.Logger
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is returned with every non-2xx status. Result holds whatever
// the flow produced before failing.
type ErrorResponse struct {
	Error  string        `json:"error"`
	Result *agent.Result `json:"result,omitempty"`
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(service Service, opts ...Option) http.Handler {
	s := &Server{service: service, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/ask", s.Ask)
		r.Post("/query", s.Query)
		r.Get("/flow", s.GetFlow)
		r.Get("/openapi.json", s.GetOpenAPI)
		if s.metrics != nil {
			r.Handle("/metrics", s.metrics)
		}
	})
	return r
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid " + APIKeyHeader})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}

	res, err := s.service.Ask(r.Context(), req)
	if err != nil {
		s.fail(w, r, "ask", res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "query is required"})
		return
	}

	res, err := s.service.Query(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, "query", res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetFlow handles GET /flow?name=qa|agent.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.service.Flow(r.URL.Query().Get("name"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": civicflow.Version,
	})
}

// GetOpenAPI handles GET /openapi.json.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Spec())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, res *agent.Result, err error) {
	status := StatusFor(err)
	log := s.logger.WarnContext
	if status >= http.StatusInternalServerError {
		log = s.logger.ErrorContext
	}
	log(r.Context(), op+" failed", "status", status, "request_id", middleware.GetReqID(r.Context()), "error", err)
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Result: res})
}

// StatusFor maps the error taxonomy onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

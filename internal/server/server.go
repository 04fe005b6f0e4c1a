package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sanhariharan/ViralFlow.ai/internal/pipeline"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/slogobs"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// Generator is the pipeline surface served over HTTP.
type Generator interface {
	Generate(ctx context.Context, request pipeline.Request) (*pipeline.Response, error)
	RefreshVisuals(ctx context.Context, topic string, keywords []string) []string
}

// Server routes HTTP requests to a Generator.
type Server struct {
	generator Generator
	observer  observability.Provider
	gatherer  prometheus.Gatherer
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observability provider attached to each request
// context.
func WithObserver(observer observability.Provider) Option {
	return func(server *Server) {
		server.observer = observer
	}
}

// WithGatherer sets the registry exposed on /metrics. Without it the
// Prometheus default gatherer is used.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(server *Server) {
		server.gatherer = gatherer
	}
}

// New builds the router.
func New(generator Generator, opts ...Option) *Server {
	server := &Server{
		generator: generator,
		gatherer:  prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(server)
	}

	router := chi.NewRouter()
	router.Use(server.requestID)
	router.Use(middleware.Recoverer)

	router.Post("/generate", server.handleGenerate)
	router.Post("/regenerate_visuals", server.handleRegenerateVisuals)
	router.Get("/healthz", server.handleHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))

	server.router = router
	return server
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully, giving
// in-flight requests up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	observer := observability.FromContextOr(ctx, s.observer)

	serverErrors := make(chan error, 1)
	go func() {
		observer.Info(ctx, "http server listening", observability.String("addr", addr))
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)

	case <-ctx.Done():
		observer.Info(ctx, "http server shutting down")

		shutdownContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownContext); err != nil {
			_ = httpServer.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}

// requestID echoes or assigns X-Request-ID and tags the request context so
// that every log record of the request carries it.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := slogobs.ContextWithRequestID(r.Context(), requestID)
		if s.observer != nil {
			ctx = observability.ContextWithObserver(ctx, s.observer)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type visualsRequest struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
}

type visualsResponse struct {
	Visuals []string `json:"visuals"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var request pipeline.Request
	if err := decodeBody(r, generateRequestSchema, &request); err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	response, err := s.generator.Generate(r.Context(), request)
	switch {
	case errors.Is(err, pipeline.ErrUnknownPlatform),
		errors.Is(err, pipeline.ErrNoPlatforms),
		errors.Is(err, pipeline.ErrEmptyContent):
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) handleRegenerateVisuals(w http.ResponseWriter, r *http.Request) {
	var request visualsRequest
	if err := decodeBody(r, visualsRequestSchema, &request); err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	urls := s.generator.RefreshVisuals(r.Context(), request.Topic, request.Keywords)
	s.writeJSON(w, r, http.StatusOK, visualsResponse{Visuals: urls})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads at most maxBodyBytes, validates them against schema and
// decodes them into target.
func decodeBody(r *http.Request, schema *gojsonschema.Schema, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: larger than %d bytes", errInvalidBody, maxBodyBytes)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: malformed JSON", errInvalidBody)
	}
	if err := validateBody(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	observer := observability.FromContextOr(r.Context(), s.observer)
	attrs := []observability.Attribute{
		observability.String(observability.AttrHTTPMethod, r.Method),
		observability.String(observability.AttrHTTPURL, r.URL.Path),
		observability.Int(observability.AttrHTTPStatusCode, status),
		observability.Error(err),
	}
	if status >= http.StatusInternalServerError {
		observer.Error(r.Context(), "request failed", attrs...)
	} else {
		observer.Warn(r.Context(), "request rejected", attrs...)
	}

	s.writeJSON(w, r, status, errorResponse{Detail: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContextOr(r.Context(), s.observer).
			Warn(r.Context(), "response encode failed", observability.Error(err))
	}
}

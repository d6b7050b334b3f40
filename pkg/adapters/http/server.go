// Package http exposes the suspend/resume contract of a cinegraph engine over JSON HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP surface needs from cinegraph.Engine.
type Engine interface {
	Invoke(ctx context.Context, cfg domain.SessionConfig, input string) (*cinegraph.Result, error)
	Resume(ctx context.Context, cfg domain.SessionConfig, decision domain.Decision) (*cinegraph.Result, error)
	State(ctx context.Context, cfg domain.SessionConfig) (*domain.Checkpoint, error)
	Delete(ctx context.Context, cfg domain.SessionConfig) error
	Tools() []domain.Tool
}

// MessageRequest is the body of POST /threads/{thread}/messages.
type MessageRequest struct {
	Input string `json:"input"`
}

// ResumeRequest is the body of POST /threads/{thread}/resume.
type ResumeRequest = domain.Decision

// ErrorResponse is returned for every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server routes requests to the engine.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithStreams shares a StreamManager whose Hooks were given to the engine.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tools", s.GetTools)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/threads", s.CreateThread)
	r.Route("/threads/{thread}", func(r chi.Router) {
		r.Get("/", s.GetThread)
		r.Delete("/", s.DeleteThread)
		r.Post("/messages", s.PostMessage)
		r.Post("/resume", s.PostResume)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionFrom builds the session config from the path and the ns/checkpoint query params.
func sessionFrom(r *http.Request) domain.SessionConfig {
	q := r.URL.Query()
	return domain.SessionConfig{
		ThreadID:     chi.URLParam(r, "thread"),
		Namespace:    q.Get("ns"),
		CheckpointID: q.Get("checkpoint"),
	}.WithDefaults()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidSession), errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAwaitingDecision), errors.Is(err, domain.ErrNoPendingDecision):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStepLimit):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cinegraph-http",
		"version": cinegraph.Version,
	})
}

// GetTools handles GET /tools.
func (s *Server) GetTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Tools())
}

// CreateThread handles POST /threads. The body is optional; missing parts are defaulted.
func (s *Server) CreateThread(w http.ResponseWriter, r *http.Request) {
	cfg := domain.NewSessionConfig()
	if r.ContentLength != 0 {
		var body domain.SessionConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err))
			return
		}
		if body.ThreadID != "" {
			cfg.ThreadID = body.ThreadID
		}
		if body.Namespace != "" {
			cfg.Namespace = body.Namespace
		}
		if body.CheckpointID != "" {
			cfg.CheckpointID = body.CheckpointID
		}
	}
	if err := cfg.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Thread created", "thread_id", cfg.ThreadID)
	s.writeJSON(w, http.StatusCreated, cfg)
}

// GetThread handles GET /threads/{thread}.
func (s *Server) GetThread(w http.ResponseWriter, r *http.Request) {
	cp, err := s.Engine.State(r.Context(), sessionFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cp)
}

// DeleteThread handles DELETE /threads/{thread}.
func (s *Server) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), sessionFrom(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage handles POST /threads/{thread}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	input, err := runner.SanitizeInput(body.Input)
	if err != nil {
		s.logger.Warn("Input rejected", "err", err, "size", len(body.Input))
		s.writeError(w, err)
		return
	}
	if input == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "input is required"})
		return
	}

	cfg := sessionFrom(r)
	res, err := s.Engine.Invoke(r.Context(), cfg, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// PostResume handles POST /threads/{thread}/resume.
func (s *Server) PostResume(w http.ResponseWriter, r *http.Request) {
	var body ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	instruction, err := runner.SanitizeInput(body.Instruction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body.Instruction = instruction

	res, err := s.Engine.Resume(r.Context(), sessionFrom(r), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// SubscribeEvents handles GET /threads/{thread}/events (SSE). Each committed
// checkpoint of the session selected by the path and the ns/checkpoint query
// is sent as one data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	cfg := sessionFrom(r)
	if err := cfg.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	key := cfg.Key().String()
	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client subscribed", "key", key)
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "key", key)
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

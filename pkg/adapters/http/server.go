package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Dispatcher handles one incoming event.
type Dispatcher interface {
	Handle(ctx context.Context, ev dispatch.Event) (*dispatch.Result, error)
}

// Server exposes the bot engine over HTTP.
type Server struct {
	Dispatcher Dispatcher
	Sessions   *session.Manager
	Loader     ports.FlowLoader
	Streams    *StreamManager

	metrics http.Handler
	version string
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the router.
func NewHandler(d Dispatcher, sessions *session.Manager, loader ports.FlowLoader, opts ...Option) http.Handler {
	s := &Server{
		Dispatcher: d,
		Sessions:   sessions,
		Loader:     loader,
		Streams:    NewStreamManager(),
		version:    "dev",
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/nodes", s.ListNodes)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/events", s.PostEvent)
		r.Get("/events", s.SubscribeEvents)
		r.Get("/state", s.GetState)
		r.Delete("/state", s.DeleteState)
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

// PostEvent handles POST /users/{userID}/events.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var ev dispatch.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostEvent: invalid request body", "error", err)
		return
	}
	ev.UserID = chi.URLParam(r, "userID")

	res, err := s.Dispatcher.Handle(r.Context(), ev)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	if payload, err := json.Marshal(res); err == nil {
		s.Streams.Broadcast(ev.UserID, string(payload))
	}
	writeJSON(w, s.logger, http.StatusOK, res)
}

// GetState handles GET /users/{userID}/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	state, err := s.Sessions.Load(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, state)
}

// DeleteState handles DELETE /users/{userID}/state.
func (s *Server) DeleteState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.Sessions.Delete(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNodes handles GET /nodes.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.Loader.ListNodes()
	if err != nil {
		http.Error(w, fmt.Sprintf("Inspect error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListNodes failed", "error", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, nodes)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{
		"app":     "botflow",
		"version": s.version,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrEmptyUserID),
		errors.Is(err, dispatch.ErrUnsupportedEvent),
		errors.Is(err, dispatch.ErrInputTooLarge),
		errors.Is(err, dispatch.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnknownCommand),
		errors.Is(err, dispatch.ErrUnknownCallback),
		errors.Is(err, domain.ErrStateNotFound),
		errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

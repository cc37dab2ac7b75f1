// Package http exposes the panel's live state over a small REST surface.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apkaudio/openair/pkg/domain"
)

// PanelState is the read/write view of the running panel consumed by the
// HTTP layer. The state mirror satisfies it.
type PanelState interface {
	Topics() []string
	Value(topic string) (float64, bool)
	Snapshot() map[string]float64
	Dispatch(topic string, raw float64) error
}

// Server routes REST requests onto a panel.
type Server struct {
	panel PanelState
	log   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewHandler builds the router. Control values read and write through the
// same topics the panel publishes on, so remote peers observe HTTP writes
// exactly like local gestures.
func NewHandler(panel PanelState, opts ...Option) http.Handler {
	s := &Server{panel: panel, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/topics", s.topics)
	r.Get("/values", s.values)
	r.Get("/values/*", s.value)
	r.Post("/values/*", s.setValue)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) topics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.panel.Topics())
}

func (s *Server) values(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.panel.Snapshot())
}

func (s *Server) value(w http.ResponseWriter, r *http.Request) {
	topic := wildcardTopic(r)
	val, ok := s.panel.Value(topic)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "val": val})
}

func (s *Server) setValue(w http.ResponseWriter, r *http.Request) {
	topic := wildcardTopic(r)
	var body struct {
		Val *float64 `json:"val"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Val == nil {
		http.Error(w, "body must be {\"val\": <number>}", http.StatusBadRequest)
		return
	}
	if err := s.panel.Dispatch(topic, *body.Val); err != nil {
		if errors.Is(err, domain.ErrTopicNotFound) {
			http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// The write is queued for the panel goroutine, not yet applied.
	w.WriteHeader(http.StatusAccepted)
}

func wildcardTopic(r *http.Request) string {
	return strings.Trim(chi.URLParam(r, "*"), "/")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", "err", err)
	}
}

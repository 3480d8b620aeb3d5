package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/authflow"
	"github.com/aretw0/authflow/internal/presentation/graph"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// maxBodySize bounds request bodies; sequences are limited further by runner.CheckSequence.
const maxBodySize = 1 << 20

// Engine defines the subset of authflow.Engine served over HTTP.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Definition(ctx context.Context, name string) (*domain.Definition, error)
	StartRun(ctx context.Context, req authflow.RunRequest) (*domain.Run, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context) ([]string, error)
	TickRunChange(ctx context.Context, id string) (authflow.RunChange, error)
	CancelRunChange(ctx context.Context, id string) (authflow.RunChange, error)
	DeleteRun(ctx context.Context, id string) error
}

// Server exposes an Engine as a REST API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	spec     *openapi3.T
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves the collectors of g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewServer builds a Server for engine.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		spec:    spec,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s, nil
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s, err := NewServer(engine, opts...)
	if err != nil {
		return nil, err
	}
	return s.Routes(), nil
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/openapi.json", s.GetSpecJSON)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/automata", func(r chi.Router) {
		r.Get("/", s.ListAutomata)
		r.Get("/{name}", s.GetAutomaton)
		r.Get("/{name}/graph", s.GetAutomatonGraph)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Post("/", s.StartRun)
		r.Get("/{id}", s.GetRun)
		r.Delete("/{id}", s.DeleteRun)
		r.Post("/{id}/tick", s.TickRun)
		r.Post("/{id}/cancel", s.CancelRun)
		r.Get("/{id}/events", s.SubscribeRunEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"api_version": s.spec.Info.Version,
	})
}

// GetSpecJSON handles the GET /openapi.json request.
func (s *Server) GetSpecJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.spec)
}

// ListAutomata handles the GET /automata request.
func (s *Server) ListAutomata(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetAutomaton handles the GET /automata/{name} request.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// GetAutomatonGraph handles the GET /automata/{name}/graph request.
func (s *Server) GetAutomatonGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("run"); id != "" {
		run, err := s.Engine.GetRun(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if run.Automaton != def.Name {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("run %s belongs to automaton %s", id, run.Automaton)})
			return
		}
		overlay = graph.OverlayFromRun(run)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(def, overlay))
}

// startRunBody is the POST /runs payload.
type startRunBody struct {
	authflow.RunRequest
	Input string `json:"input,omitempty"`
}

// StartRun handles the POST /runs request.
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "failed to read request body"})
		return
	}
	if err := s.validateBody("RunRequest", raw); err != nil {
		s.logger.Warn("StartRun: Invalid request body", "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	var body startRunBody
	if err := json.Unmarshal(raw, &body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	req := body.RunRequest
	if len(req.Sequence) == 0 && body.Input != "" {
		seq, err := runner.ParseInput(body.Input)
		if err != nil {
			s.logger.Warn("StartRun: Input rejected", "err", err, "size", len(body.Input))
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid input: %v", err)})
			return
		}
		req.Sequence = seq
	} else if err := runner.CheckSequence(req.Sequence); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid sequence: %v", err)})
		return
	}

	run, err := s.Engine.StartRun(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(nil, run)
	s.writeJSON(w, http.StatusCreated, run)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Engine.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// DeleteRun handles the DELETE /runs/{id} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TickRun handles the POST /runs/{id}/tick request.
func (s *Server) TickRun(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.Engine.TickRunChange)
}

// CancelRun handles the POST /runs/{id}/cancel request.
func (s *Server) CancelRun(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, s.Engine.CancelRunChange)
}

// mutate applies fn to the run and publishes the diff between the snapshots
// fn read under the run's lock, so each event covers exactly one update.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (authflow.RunChange, error)) {
	change, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(change.Before, change.After)
	s.writeJSON(w, http.StatusOK, change.After)
}

// publish broadcasts what changed between two snapshots to the run's subscribers.
func (s *Server) publish(before, after *domain.Run) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	if b, err := json.Marshal(diff); err == nil {
		s.Streams.Broadcast(after.ID, string(b))
	}
}

// SubscribeRunEvents handles the GET /runs/{id}/events request (SSE).
func (s *Server) SubscribeRunEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeRunEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Engine.GetRun(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	s.logger.Info("SSE: Subscribing to run updates", "run_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "run_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) validateBody(schema string, raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	ref, ok := s.spec.Components.Schemas[schema]
	if !ok || ref.Value == nil {
		return fmt.Errorf("schema %s not found", schema)
	}
	return ref.Value.VisitJSON(value)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAutomatonNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSymbolNotInAlphabet),
		errors.Is(err, domain.ErrUnknownState),
		errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, domain.ErrAlreadyInitialized):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidDefinition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections per run.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // RunID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (sm *StreamManager) Subscribe(runID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[runID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, runID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(runID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[runID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "run_id", runID)
		}
	}
}

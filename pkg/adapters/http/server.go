package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/program"
	"github.com/aretw0/turtle/pkg/render"
	"github.com/aretw0/turtle/pkg/session"
)

// DefaultStreamBuffer is the per-client SSE buffer. Clients that fall
// further behind lose commands and should resync with ?since=.
const DefaultStreamBuffer = 64

// Server exposes turtle sessions over HTTP.
type Server struct {
	Sessions *session.Manager

	renderer ports.Renderer
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	buffer   int
}

// Option configures the Server.
type Option func(*Server)

// WithRenderer replaces the SVG renderer behind /sessions/{id}/svg.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithMetrics records call durations and mounts /metrics for the gatherer.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreamBuffer overrides DefaultStreamBuffer.
func WithStreamBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// CallRequest is the body of POST /sessions/{id}/calls. Either Op or Steps
// is set; Steps accepts the same short forms as program files.
type CallRequest struct {
	Op      string         `json:"op,omitempty"`
	Args    []any          `json:"args,omitempty"`
	Options map[string]any `json:"options,omitempty"`
	Steps   []any          `json:"steps,omitempty"`
}

// SessionResponse describes a session without its log.
type SessionResponse struct {
	ID        string        `json:"id"`
	Canvas    domain.Canvas `json:"canvas"`
	State     domain.State  `json:"state"`
	LastID    uint64        `json:"last_id"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CallResponse lists the commands appended by a call and the resulting
// session. Result holds the value of a query operation.
type CallResponse struct {
	Session  SessionResponse  `json:"session"`
	Commands []domain.Command `json:"commands"`
	Result   any              `json:"result,omitempty"`
}

// ErrorResponse is returned with every non-2xx status. Commands appended
// before a failing step are persisted and reported too.
type ErrorResponse struct {
	Error    string           `json:"error"`
	Step     *int             `json:"step,omitempty"`
	Commands []domain.Command `json:"commands,omitempty"`
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		renderer: render.NewSVG(),
		logger:   logging.NewNop(),
		buffer:   DefaultStreamBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/calls", s.Call)
			r.Get("/commands", s.GetCommands)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/svg", s.GetSVG)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":        "turtle-http",
		"version":    turtle.Version,
		"operations": program.Operations(),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions. The new session starts with the
// initial reset command.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := session.NewID()
	rec, cmds, err := s.Sessions.Do(r.Context(), id, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("session created over http", "session", id)
	writeJSON(w, http.StatusCreated, CallResponse{Session: sessionResponse(rec), Commands: cmds})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Call handles POST /sessions/{id}/calls. The session is created on first
// use.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "ok"
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCall("http", status, time.Since(start))
		}
	}()

	var body CallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "bad_request"
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("Call: invalid request body", "err", err)
		return
	}

	steps, err := body.steps()
	if err != nil {
		status = "bad_request"
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var result any
	rec, cmds, err := s.Sessions.Do(r.Context(), chi.URLParam(r, "id"), func(e *turtle.Engine) error {
		if len(steps) == 1 && body.Op != "" {
			var err error
			result, err = program.Apply(e, steps[0])
			return err
		}
		return program.Run(e, &program.Program{Steps: steps})
	})
	if err != nil {
		status = "error"
		code := statusFor(err)
		if code < http.StatusInternalServerError {
			status = "rejected"
		}
		resp := ErrorResponse{Error: err.Error(), Commands: cmds}
		var stepErr *program.StepError
		if errors.As(err, &stepErr) {
			resp.Step = &stepErr.Index
		}
		writeJSON(w, code, resp)
		return
	}

	if cmds == nil {
		cmds = []domain.Command{}
	}
	writeJSON(w, http.StatusOK, CallResponse{Session: sessionResponse(rec), Commands: cmds, Result: result})
}

func (c CallRequest) steps() ([]program.Step, error) {
	switch {
	case c.Op != "" && len(c.Steps) > 0:
		return nil, fmt.Errorf("%w: op and steps are exclusive", program.ErrInvalidArguments)
	case c.Op != "":
		return []program.Step{{Op: c.Op, Args: c.Args, Options: c.Options}}, nil
	case len(c.Steps) == 0:
		return nil, fmt.Errorf("%w: op or steps required", program.ErrInvalidArguments)
	}

	steps := make([]program.Step, 0, len(c.Steps))
	for i, item := range c.Steps {
		step, err := program.ParseStep(item)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// GetCommands handles GET /sessions/{id}/commands?since=N.
func (s *Server) GetCommands(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	rec, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Command{"commands": commandsSince(rec.Commands, since)})
}

// GetSVG handles GET /sessions/{id}/svg.
func (s *Server) GetSVG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rec.Canvas, rec.Commands); err != nil {
		s.fail(w, fmt.Errorf("failed to render session: %w", err))
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Write(buf.Bytes())
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). With ?since=N or
// a Last-Event-ID header the persisted commands after N are replayed first.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	since, err := sinceParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	replay := since > 0 || r.URL.Query().Has("since") || r.Header.Get("Last-Event-ID") != ""

	// Subscribe before reading the backlog so nothing falls in between.
	ch, cancel := s.Sessions.Subscribe(id, s.buffer)
	defer cancel()

	var backlog []domain.Command
	if replay {
		rec, err := s.Sessions.Load(r.Context(), id)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.fail(w, err)
			return
		}
		if rec != nil {
			backlog = commandsSince(rec.Commands, since)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: subscribing to session", "session", id, "since", since)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	last := since
	for _, cmd := range backlog {
		writeEvent(w, cmd)
		last = cmd.ID
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session", id)
			return
		case cmd, ok := <-ch:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", id)
				flusher.Flush()
				return
			}
			if cmd.ID <= last {
				continue
			}
			writeEvent(w, cmd)
			last = cmd.ID
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, cmd domain.Command) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: command\nid: %d\ndata: %s\n\n", cmd.ID, data)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrColorArity),
		errors.Is(err, program.ErrUnknownOperation),
		errors.Is(err, program.ErrInvalidArguments):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func sinceParam(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		raw = r.Header.Get("Last-Event-ID")
	}
	if raw == "" {
		return 0, nil
	}
	since, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid since %q", raw)
	}
	return since, nil
}

func commandsSince(cmds []domain.Command, since uint64) []domain.Command {
	out := []domain.Command{}
	for _, cmd := range cmds {
		if cmd.ID > since {
			out = append(out, cmd)
		}
	}
	return out
}

func sessionResponse(rec *domain.Record) SessionResponse {
	resp := SessionResponse{
		ID:        rec.ID,
		Canvas:    rec.Canvas,
		State:     rec.State,
		UpdatedAt: rec.UpdatedAt,
	}
	if n := len(rec.Commands); n > 0 {
		resp.LastID = rec.Commands[n-1].ID
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

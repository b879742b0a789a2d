package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/program"
	"github.com/aretw0/turtle/pkg/render"
	"github.com/aretw0/turtle/pkg/session"
)

// DefaultSession is used by tools called without a session argument.
const DefaultSession = "default"

// CallResponse is the structured result of turtle_call.
type CallResponse struct {
	Session  string           `json:"session" jsonschema_description:"The session the call ran against"`
	State    domain.State     `json:"state" jsonschema_description:"Turtle state after the call"`
	Commands []domain.Command `json:"commands" jsonschema_description:"Commands appended by the call"`
	Result   any              `json:"result,omitempty" jsonschema_description:"Value of a query operation"`
}

// StateResponse is the structured result of turtle_state.
type StateResponse struct {
	Session string        `json:"session"`
	Canvas  domain.Canvas `json:"canvas"`
	State   domain.State  `json:"state"`
	LastID  uint64        `json:"last_id"`
}

// Server exposes turtle sessions as MCP tools.
type Server struct {
	sessions  *session.Manager
	renderer  ports.Renderer
	metrics   *observability.Metrics
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRenderer replaces the renderer behind turtle_svg.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithMetrics records tool call durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		renderer:  render.NewSVG(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("turtle-mcp", turtle.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session", mcp.Description(`Session ID (optional, defaults to "default")`))

	// TOOL: turtle_call
	s.mcpServer.AddTool(mcp.NewTool("turtle_call",
		mcp.WithDescription("Call a turtle operation (forward, left, circle, pencolor, write, ...) or a list of steps."),
		sessionArg,
		mcp.WithString("op", mcp.Description("Operation name or alias, e.g. forward, fd, circle")),
		mcp.WithString("args", mcp.Description("JSON array of positional arguments, e.g. [100]")),
		mcp.WithString("options", mcp.Description(`JSON object of options, e.g. {"align":"center"}`)),
		mcp.WithString("steps", mcp.Description(`JSON array of steps, e.g. [{"forward":100},{"left":90}]`)),
		mcp.WithOutputSchema[CallResponse](),
	), s.handleCall)

	// TOOL: turtle_state
	s.mcpServer.AddTool(mcp.NewTool("turtle_state",
		mcp.WithDescription("Get the turtle state of a session."),
		sessionArg,
		mcp.WithOutputSchema[StateResponse](),
	), s.handleState)

	// TOOL: turtle_commands
	s.mcpServer.AddTool(mcp.NewTool("turtle_commands",
		mcp.WithDescription("List the commands of a session, optionally only those after a command ID."),
		sessionArg,
		mcp.WithNumber("since", mcp.Description("Only return commands with a greater ID")),
	), s.handleCommands)

	// TOOL: turtle_svg
	s.mcpServer.AddTool(mcp.NewTool("turtle_svg",
		mcp.WithDescription("Render the drawing of a session as SVG."),
		sessionArg,
	), s.handleSVG)
}

func (s *Server) handleCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCall("mcp", status, time.Since(start))
		}
	}()

	id := request.GetString("session", DefaultSession)
	steps, single, err := parseCall(request.GetArguments())
	if err != nil {
		status = "rejected"
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result any
	rec, cmds, err := s.sessions.Do(ctx, id, func(e *turtle.Engine) error {
		if single {
			var err error
			result, err = program.Apply(e, steps[0])
			return err
		}
		return program.Run(e, &program.Program{Steps: steps})
	})
	if err != nil {
		status = "rejected"
		if !isCallerError(err) {
			status = "error"
			s.logger.Error("MCP call failed", "session", id, "err", err)
		}
		return mcp.NewToolResultError(fmt.Sprintf("%v (%d commands appended)", err, len(cmds))), nil
	}

	if cmds == nil {
		cmds = []domain.Command{}
	}
	resp := CallResponse{Session: id, State: rec.State, Commands: cmds, Result: result}
	return structured(resp)
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", DefaultSession)
	rec, err := s.sessions.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := StateResponse{Session: id, Canvas: rec.Canvas, State: rec.State}
	if n := len(rec.Commands); n > 0 {
		resp.LastID = rec.Commands[n-1].ID
	}
	return structured(resp)
}

func (s *Server) handleCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", DefaultSession)
	since := request.GetFloat("since", 0)
	if since < 0 {
		return mcp.NewToolResultError("since must not be negative"), nil
	}

	rec, err := s.sessions.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cmds := []domain.Command{}
	for _, cmd := range rec.Commands {
		if float64(cmd.ID) > since {
			cmds = append(cmds, cmd)
		}
	}
	data, err := json.Marshal(cmds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode commands: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleSVG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.sessions.Load(ctx, request.GetString("session", DefaultSession))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, rec.Canvas, rec.Commands); err != nil {
		return nil, fmt.Errorf("failed to render session: %w", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// parseCall reads either a single op or a list of steps. JSON values may be
// passed as encoded strings or as native arrays and objects.
func parseCall(args map[string]any) (steps []program.Step, single bool, err error) {
	op, _ := args["op"].(string)
	rawSteps, hasSteps := args["steps"]

	switch {
	case op != "" && hasSteps:
		return nil, false, fmt.Errorf("%w: op and steps are exclusive", program.ErrInvalidArguments)
	case op != "":
		var step program.Step
		step.Op = op
		if err := jsonArg(args["args"], &step.Args); err != nil {
			return nil, false, fmt.Errorf("%w: args: %v", program.ErrInvalidArguments, err)
		}
		if err := jsonArg(args["options"], &step.Options); err != nil {
			return nil, false, fmt.Errorf("%w: options: %v", program.ErrInvalidArguments, err)
		}
		return []program.Step{step}, true, nil
	case !hasSteps:
		return nil, false, fmt.Errorf("%w: op or steps required", program.ErrInvalidArguments)
	}

	var items []any
	if err := jsonArg(rawSteps, &items); err != nil {
		return nil, false, fmt.Errorf("%w: steps: %v", program.ErrInvalidArguments, err)
	}
	for i, item := range items {
		step, err := program.ParseStep(item)
		if err != nil {
			return nil, false, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, false, nil
}

// jsonArg decodes v into out. Strings are parsed as JSON documents; other
// values are round-tripped through JSON.
func jsonArg(v any, out any) error {
	switch raw := v.(type) {
	case nil:
		return nil
	case string:
		if raw == "" {
			return nil
		}
		return json.Unmarshal([]byte(raw), out)
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
}

func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrColorArity) ||
		errors.Is(err, program.ErrUnknownOperation) ||
		errors.Is(err, program.ErrInvalidArguments)
}

func structured(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultStructured(v, string(data)), nil
}

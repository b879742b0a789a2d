package turtle

import (
	"log/slog"

	"github.com/aretw0/turtle/internal/runtime"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/observability"
)

// Version is reported by the CLI and the transports.
const Version = "0.4.0"

// Engine is the high-level entry point for the turtle library.
// It embeds the internal runtime, so every turtle operation (Forward, Left,
// Circle, Write, ...) is available directly on it.
type Engine struct {
	*runtime.Engine

	// Name labels the engine in logs (usually the session ID).
	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

type config struct {
	canvas *domain.Canvas
	hooks  []domain.LifecycleHooks
	logger *slog.Logger
	name   string
}

// WithCanvas sets the host surface metadata handed to renderers.
func WithCanvas(width, height int, fixed bool) Option {
	return func(c *config) {
		c.canvas = &domain.Canvas{Width: width, Height: height, Fixed: fixed}
	}
}

// WithLifecycleHooks registers observability hooks. It may be given more than
// once; hooks run in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithMetrics reports engine activity to Prometheus collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.hooks = append(c.hooks, m.Hooks())
		}
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName labels the engine. The name is attached to every log line.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

func (c *config) runtimeOptions() []runtime.EngineOption {
	var opts []runtime.EngineOption
	if c.canvas != nil {
		opts = append(opts, runtime.WithCanvas(*c.canvas))
	}
	switch len(c.hooks) {
	case 0:
	case 1:
		opts = append(opts, runtime.WithLifecycleHooks(c.hooks[0]))
	default:
		opts = append(opts, runtime.WithLifecycleHooks(domain.ChainHooks(c.hooks...)))
	}
	if c.logger != nil {
		logger := c.logger
		if c.name != "" {
			logger = logger.With("session", c.name)
		}
		opts = append(opts, runtime.WithLogger(logger))
	}
	return opts
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New creates a turtle at the origin, facing up, with a log holding the
// initial "reset" command.
func New(opts ...Option) *Engine {
	c := newConfig(opts)
	return &Engine{
		Engine: runtime.NewEngine(c.runtimeOptions()...),
		Name:   c.name,
	}
}

// Restore rebuilds an engine from a persisted record. The record's canvas
// wins over WithCanvas, and the next command continues its ID sequence.
// When no name is given the record ID is used.
func Restore(rec *domain.Record, opts ...Option) (*Engine, error) {
	c := newConfig(opts)
	if c.name == "" && rec != nil {
		c.name = rec.ID
	}
	eng, err := runtime.Restore(rec, c.runtimeOptions()...)
	if err != nil {
		return nil, err
	}
	return &Engine{Engine: eng, Name: c.name}, nil
}

// Snapshot captures the engine for persistence under its name.
func (e *Engine) Snapshot() *domain.Record {
	return e.Record(e.Name)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/presentation/tui"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/program"
	"github.com/aretw0/turtle/pkg/render"
)

// Output formats of the run command.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ProgramPath string
	Format      string
	// SessionID runs the program against a stored session instead of a
	// fresh engine; the session is created when missing.
	SessionID string
	Output    io.Writer
	Config    config.Config
	Logger    *slog.Logger
}

// Run executes a program file and writes the result. Output is written
// even when a step fails, so the partial drawing can be inspected.
func Run(ctx context.Context, opts RunOptions) error {
	p, err := program.Load(opts.ProgramPath)
	if err != nil {
		return err
	}

	var (
		rec    *domain.Record
		runErr error
	)
	if opts.SessionID == "" {
		rec, runErr = runLocal(p, opts.Config, opts.Logger)
	} else {
		rec, runErr = runSession(ctx, p, opts)
		if rec == nil {
			return runErr
		}
	}

	if err := write(opts.Output, opts.Format, p.Name, len(p.Steps), rec, runErr); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", p.Name, runErr)
	}
	return nil
}

func runLocal(p *program.Program, cfg config.Config, logger *slog.Logger) (*domain.Record, error) {
	opts := []turtle.Option{turtle.WithCanvas(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.Fixed)}
	if logger != nil {
		opts = append(opts, turtle.WithLogger(logger))
	}
	opts = append(opts, p.EngineOptions()...)

	e := turtle.New(opts...)
	err := program.Run(e, p)
	return e.Snapshot(), err
}

func runSession(ctx context.Context, p *program.Program, opts RunOptions) (*domain.Record, error) {
	b, err := OpenBackend(opts.Config)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mgr := NewManager(opts.Config, b, logger, nil)
	rec, _, err := mgr.Do(ctx, opts.SessionID, func(e *turtle.Engine) error {
		return program.Run(e, p)
	})
	return rec, err
}

func write(w io.Writer, format, name string, steps int, rec *domain.Record, runErr error) error {
	switch format {
	case "", FormatSVG:
		return render.NewSVG().Render(w, rec.Canvas, rec.Commands)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec.Commands)
	case FormatMarkdown:
		_, err := io.WriteString(w, tui.Summary{Name: name, Steps: steps, Record: rec, Err: runErr}.Markdown())
		return err
	default:
		return fmt.Errorf("unknown format %q (svg, json, md)", format)
	}
}

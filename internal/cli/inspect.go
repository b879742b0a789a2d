package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/presentation/tui"
	"github.com/aretw0/turtle/pkg/program"
)

// InspectOptions configures the inspect command.
type InspectOptions struct {
	ProgramPath string
	// Style is a glamour style name; empty detects the terminal background.
	Style    string
	WordWrap int
	Output   io.Writer
	Config   config.Config
}

// Inspect runs a program on a fresh engine and prints a rendered summary of
// the result. A failing step is reported in the summary, not as an error.
func Inspect(opts InspectOptions) error {
	p, err := program.Load(opts.ProgramPath)
	if err != nil {
		return err
	}

	rec, runErr := runLocal(p, opts.Config, nil)
	md := tui.Summary{Name: p.Name, Steps: len(p.Steps), Record: rec, Err: runErr}.Markdown()

	renderMarkdown, err := tui.NewRenderer(opts.Style, opts.WordWrap)
	if err != nil {
		return err
	}
	out, err := renderMarkdown(md)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = io.WriteString(opts.Output, out)
	return err
}

package program

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Step is one engine call.
type Step struct {
	Op      string         `json:"op" yaml:"op" mapstructure:"op"`
	Args    []any          `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// Program is a named sequence of steps with optional canvas metadata.
type Program struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Canvas *domain.Canvas `json:"canvas,omitempty" yaml:"canvas,omitempty"`
	Steps  []Step         `json:"steps" yaml:"steps"`
}

// EngineOptions returns the options that make a fresh engine match the
// program header.
func (p *Program) EngineOptions() []turtle.Option {
	var opts []turtle.Option
	if p.Name != "" {
		opts = append(opts, turtle.WithName(p.Name))
	}
	if p.Canvas != nil {
		opts = append(opts, turtle.WithCanvas(p.Canvas.Width, p.Canvas.Height, p.Canvas.Fixed))
	}
	return opts
}

// Load reads a program file. Files ending in .json are parsed as JSON,
// anything else as YAML.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}

	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes a program document. format is "json" or "yaml".
//
// A document is either a mapping with name, canvas and steps, or a bare list
// of steps. Each step is a full {op, args, options} mapping, a short form
// such as {forward: 100} or {goto: [5, 5]}, or a bare operation name.
func Parse(data []byte, format string) (*Program, error) {
	var raw any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported program format %q", format)
	}

	var doc struct {
		Name   string         `mapstructure:"name"`
		Canvas *domain.Canvas `mapstructure:"canvas"`
		Steps  []any          `mapstructure:"steps"`
	}
	switch v := raw.(type) {
	case nil:
	case []any:
		doc.Steps = v
	case map[string]any:
		if err := decode(v, &doc); err != nil {
			return nil, fmt.Errorf("invalid program header: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid program document: %T", raw)
	}

	p := &Program{Name: doc.Name, Canvas: doc.Canvas, Steps: make([]Step, 0, len(doc.Steps))}
	for i, item := range doc.Steps {
		step, err := ParseStep(item)
		if err != nil {
			return nil, &StepError{Index: i, Op: step.Op, Err: err}
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

// ParseStep normalizes one decoded step in any of the accepted forms.
func ParseStep(item any) (Step, error) {
	switch v := item.(type) {
	case string:
		return Step{Op: v}, nil

	case map[string]any:
		if _, ok := v["op"]; ok {
			var step Step
			if err := decode(v, &step); err != nil {
				return Step{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
			return step, nil
		}
		if len(v) != 1 {
			return Step{}, fmt.Errorf("%w: short-form step must have exactly one key, got %d", ErrInvalidArguments, len(v))
		}
		for op, value := range v {
			step := Step{Op: op}
			switch args := value.(type) {
			case nil:
			case []any:
				step.Args = args
			default:
				step.Args = []any{args}
			}
			return step, nil
		}
	}
	return Step{}, fmt.Errorf("%w: unsupported step %T", ErrInvalidArguments, item)
}

// decode is mapstructure.Decode with scalar-to-slice lifting and strict keys.
func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

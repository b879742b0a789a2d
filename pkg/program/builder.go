package program

import (
	"fmt"

	"github.com/aretw0/turtle/pkg/domain"
)

// Builder assembles a Program in Go code.
type Builder struct {
	prog Program
	err  error
}

// New creates a new program builder.
func New(name string) *Builder {
	return &Builder{prog: Program{Name: name}}
}

// Canvas sets the canvas metadata of the program.
func (b *Builder) Canvas(width, height int, fixed bool) *Builder {
	b.prog.Canvas = &domain.Canvas{Width: width, Height: height, Fixed: fixed}
	return b
}

// Do appends a step. Unknown operations are reported by Build.
func (b *Builder) Do(op string, args ...any) *Builder {
	return b.DoWith(op, nil, args...)
}

// DoWith appends a step with options.
func (b *Builder) DoWith(op string, opts map[string]any, args ...any) *Builder {
	if b.err == nil {
		if _, ok := Canonical(op); !ok {
			b.err = &StepError{Index: len(b.prog.Steps), Op: op, Err: fmt.Errorf("%w: %q", ErrUnknownOperation, op)}
		}
	}
	b.prog.Steps = append(b.prog.Steps, Step{Op: op, Args: args, Options: opts})
	return b
}

// Repeat appends the steps built by fn n times.
func (b *Builder) Repeat(n int, fn func(*Builder)) *Builder {
	for i := 0; i < n; i++ {
		fn(b)
	}
	return b
}

// Build returns the program, or the first unknown operation.
func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	p := b.prog
	p.Steps = append([]Step(nil), b.prog.Steps...)
	return &p, nil
}

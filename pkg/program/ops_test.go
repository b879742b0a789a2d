package program_test

import (
	"testing"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, eng *turtle.Engine, op string, args ...any) any {
	t.Helper()
	out, err := program.Apply(eng, program.Step{Op: op, Args: args})
	require.NoError(t, err, op)
	return out
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"fd":          "forward",
		"FD":          "forward",
		" lt ":        "left",
		"setposition": "goto",
		"width":       "pensize",
		"circle":      "circle",
	}
	for in, want := range tests {
		got, ok := program.Canonical(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := program.Canonical("teleport")
	assert.False(t, ok)

	assert.Contains(t, program.Operations(), "spiral_forward")
	assert.Equal(t, []string{"backward", "bk"}, program.Aliases("back"))
}

func TestApply_Defaults(t *testing.T) {
	eng := turtle.New()

	apply(t, eng, "left")
	assert.Equal(t, 180.0, eng.Heading())
	apply(t, eng, "rt")
	assert.Equal(t, 90.0, eng.Heading())

	apply(t, eng, "circle", 50)
	last, _ := eng.Log().Last()
	assert.Equal(t, 360.0, last.Extent)
}

func TestApply_Conversions(t *testing.T) {
	eng := turtle.New()

	apply(t, eng, "forward", "25")
	assert.Equal(t, 25.0, eng.Position().Y)

	apply(t, eng, "goto", []any{3, 4})
	assert.Equal(t, domain.Point{X: 3, Y: 4}, eng.Position())

	apply(t, eng, "setpos", 1.5, int64(2))
	assert.Equal(t, domain.Point{X: 1.5, Y: 2}, eng.Position())

	apply(t, eng, "spiral_forward", 4.0, 10, 10, 90)
	last, _ := eng.Log().Last()
	assert.Equal(t, 4, last.Steps)
}

func TestApply_Queries(t *testing.T) {
	eng := turtle.New()
	before := eng.Log().Len()

	assert.Equal(t, domain.Point{}, apply(t, eng, "pos"))
	assert.Equal(t, 90.0, apply(t, eng, "heading"))
	assert.Equal(t, true, apply(t, eng, "isdown"))
	assert.Equal(t, true, apply(t, eng, "isvisible"))
	assert.Equal(t, false, apply(t, eng, "filling"))
	assert.Equal(t, false, apply(t, eng, "animating"))
	assert.Equal(t, "black", apply(t, eng, "pencolor"))
	assert.Equal(t, "black", apply(t, eng, "fillcolor"))
	assert.Equal(t, 1.0, apply(t, eng, "pensize"))

	assert.Equal(t, before, eng.Log().Len(), "queries append nothing")

	eng.BeginAnimation()
	assert.Equal(t, true, apply(t, eng, "animating"))
}

func TestApply_Colors(t *testing.T) {
	eng := turtle.New()

	apply(t, eng, "pencolor", "red")
	assert.Equal(t, "red", eng.PenColor().String())

	apply(t, eng, "pencolor", 10, 20, 30)
	assert.Equal(t, "rgb(10, 20, 30)", eng.PenColor().String())

	apply(t, eng, "fillcolor", []any{1, 2, 3})
	assert.Equal(t, "rgb(1, 2, 3)", eng.FillColor().String())

	apply(t, eng, "color", "blue")
	assert.Equal(t, "blue", eng.PenColor().String())
	assert.Equal(t, "blue", eng.FillColor().String())

	apply(t, eng, "color", "green", []any{0, 0, 255})
	assert.Equal(t, "green", eng.PenColor().String())
	assert.Equal(t, "rgb(0, 0, 255)", eng.FillColor().String())

	_, err := program.Apply(eng, program.Step{Op: "pencolor", Args: []any{1, 2}})
	assert.ErrorIs(t, err, domain.ErrColorArity)

	_, err = program.Apply(eng, program.Step{Op: "pencolor", Args: []any{"red", 2, 3}})
	assert.ErrorIs(t, err, domain.ErrColorArity)
}

func TestApply_Dot(t *testing.T) {
	eng := turtle.New()

	apply(t, eng, "dot")
	last, _ := eng.Log().Last()
	assert.Equal(t, 5.0, last.Size)
	assert.Equal(t, "black", last.DotColor)

	apply(t, eng, "dot", 10, "red")
	last, _ = eng.Log().Last()
	assert.Equal(t, 10.0, last.Size)
	assert.Equal(t, "red", last.DotColor)

	apply(t, eng, "dot", 3, 255, 0, 0)
	last, _ = eng.Log().Last()
	assert.Equal(t, "rgb(255, 0, 0)", last.DotColor)

	apply(t, eng, "dot", "blue")
	last, _ = eng.Log().Last()
	assert.Equal(t, 5.0, last.Size)
	assert.Equal(t, "blue", last.DotColor)

	_, err := program.Apply(eng, program.Step{Op: "dot", Options: map[string]any{"size": 7, "color": []any{0, 0, 0}}})
	require.NoError(t, err)
	last, _ = eng.Log().Last()
	assert.Equal(t, 7.0, last.Size)
	assert.Equal(t, "rgb(0, 0, 0)", last.DotColor)
}

func TestApply_Write(t *testing.T) {
	eng := turtle.New()

	apply(t, eng, "write", "hello")
	last, _ := eng.Log().Last()
	assert.Equal(t, "hello", last.Text)
	assert.Equal(t, domain.DefaultFont(), *last.Font)

	_, err := program.Apply(eng, program.Step{
		Op:      "write",
		Args:    []any{42},
		Options: map[string]any{"move": true, "font": map[string]any{"size": 20}},
	})
	require.NoError(t, err)
	last, _ = eng.Log().Last()
	assert.Equal(t, "42", last.Text)
	assert.True(t, last.Move)
	assert.Equal(t, domain.Font{Family: "Arial", Size: 20, Weight: "normal"}, *last.Font)
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name string
		step program.Step
		want error
	}{
		{"Unknown", program.Step{Op: "fly"}, program.ErrUnknownOperation},
		{"Missing Distance", program.Step{Op: "forward"}, program.ErrInvalidArguments},
		{"Too Many", program.Step{Op: "left", Args: []any{1, 2}}, program.ErrInvalidArguments},
		{"Bool Distance", program.Step{Op: "forward", Args: []any{true}}, program.ErrInvalidArguments},
		{"Text Distance", program.Step{Op: "forward", Args: []any{"far"}}, program.ErrInvalidArguments},
		{"Fractional Steps", program.Step{Op: "spiral_circle", Args: []any{1.5, 1, 1, 1}}, program.ErrInvalidArguments},
		{"Negative Steps", program.Step{Op: "spiral_circle", Args: []any{-1, 1, 1, 1}}, domain.ErrInvalidInput},
		{"Options Not Accepted", program.Step{Op: "forward", Args: []any{1}, Options: map[string]any{"x": 1}}, program.ErrInvalidArguments},
		{"Unknown Write Option", program.Step{Op: "write", Options: map[string]any{"colour": "red"}}, program.ErrInvalidArguments},
		{"Bad Align", program.Step{Op: "write", Options: map[string]any{"align": "middle"}}, program.ErrInvalidArguments},
		{"Zero Pen Size", program.Step{Op: "pensize", Args: []any{0}}, domain.ErrInvalidInput},
		{"Goto Pair", program.Step{Op: "goto", Args: []any{[]any{1}}}, program.ErrInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := turtle.New()
			_, err := program.Apply(eng, tt.step)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, eng.Log().Len())
		})
	}
}

package runtime_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aretw0/turtle/internal/runtime"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RejectsNonFiniteInput(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name  string
		op    string
		param string
		call  func(*runtime.Engine) error
	}{
		{"Forward NaN", "forward", "distance", func(e *runtime.Engine) error { return e.Forward(nan) }},
		{"Back Inf", "back", "distance", func(e *runtime.Engine) error { return e.Back(inf) }},
		{"Left NaN", "left", "degree", func(e *runtime.Engine) error { return e.Left(nan) }},
		{"Right Inf", "right", "degree", func(e *runtime.Engine) error { return e.Right(-inf) }},
		{"Goto NaN y", "goto", "y", func(e *runtime.Engine) error { return e.Goto(0, nan) }},
		{"Circle NaN radius", "circle", "radius", func(e *runtime.Engine) error { return e.Circle(nan, 360) }},
		{"Circle Inf extent", "circle", "extent", func(e *runtime.Engine) error { return e.Circle(10, inf) }},
		{"SpiralCircle NaN stride", "spiral_circle", "radius_stride", func(e *runtime.Engine) error {
			return e.SpiralCircle(3, 1, nan, 10)
		}},
		{"SpiralForward Inf angle", "spiral_forward", "angle_stride", func(e *runtime.Engine) error {
			return e.SpiralForward(3, 1, 1, inf)
		}},
		{"PenSize NaN", "pensize", "width", func(e *runtime.Engine) error { return e.SetPenSize(nan) }},
		{"Dot Inf", "dot", "size", func(e *runtime.Engine) error { return e.Dot(domain.DotOptions{Size: inf}) }},
		{"Write NaN font", "write", "font_size", func(e *runtime.Engine) error {
			return e.Write("x", domain.WriteOptions{Font: &domain.Font{Family: "Arial", Size: nan}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := runtime.NewEngine()
			require.NoError(t, e.Forward(7))
			state := e.State()
			length := e.Log().Len()

			err := tt.call(e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.op, inputErr.Op)
			assert.Equal(t, tt.param, inputErr.Param)

			assert.Equal(t, length, e.Log().Len(), "no command on rejection")
			assert.Equal(t, state, e.State(), "no state change on rejection")
		})
	}
}

func TestEngine_RejectsOutOfRangeInput(t *testing.T) {
	e := runtime.NewEngine()

	assert.ErrorIs(t, e.SpiralCircle(-1, 10, 1, 10), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SpiralForward(-3, 10, 1, 10), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SetPenSize(0), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.SetPenSize(-2), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.Dot(domain.DotOptions{Size: -1}), domain.ErrInvalidInput)
	assert.ErrorIs(t, e.Write("x", domain.WriteOptions{Font: &domain.Font{Size: 0}}), domain.ErrInvalidInput)

	assert.Equal(t, 1, e.Log().Len())
	assert.Equal(t, 1.0, e.PenSize())
}

func TestEngine_RejectsEmptyColors(t *testing.T) {
	e := runtime.NewEngine()

	assert.ErrorIs(t, e.SetPenColor(domain.Color{}), domain.ErrColorArity)
	assert.ErrorIs(t, e.SetFillColor(domain.Color{}), domain.ErrColorArity)
	assert.ErrorIs(t, e.SetColor(domain.Named("red"), domain.Color{}), domain.ErrColorArity)
	assert.ErrorIs(t, e.SetColor(domain.Color{}, domain.Named("red")), domain.ErrColorArity)

	assert.Equal(t, 1, e.Log().Len())
	assert.Equal(t, "black", e.PenColor().String(), "a rejected pair changes neither color")
}

func TestEngine_AcceptsEdgeValues(t *testing.T) {
	e := runtime.NewEngine()

	require.NoError(t, e.Forward(0))
	require.NoError(t, e.Left(0))
	require.NoError(t, e.Circle(0, 90))
	require.NoError(t, e.Circle(10, 0))
	require.NoError(t, e.Write("", domain.WriteOptions{}))
	require.NoError(t, e.Forward(-1e300))

	assert.Equal(t, 7, e.Log().Len())
}

package program

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/spf13/cast"
)

// operation binds an op name to the engine. minArgs/maxArgs bound the
// positional arguments; a negative maxArgs means "any".
type operation struct {
	minArgs, maxArgs int
	options          bool
	call             func(e *turtle.Engine, args []any, opts map[string]any) (any, error)
}

var aliases = map[string]string{
	"fd":            "forward",
	"bk":            "back",
	"backward":      "back",
	"lt":            "left",
	"rt":            "right",
	"setpos":        "goto",
	"setposition":   "goto",
	"pu":            "penup",
	"up":            "penup",
	"pd":            "pendown",
	"down":          "pendown",
	"width":         "pensize",
	"ht":            "hideturtle",
	"st":            "showturtle",
	"pos":           "position",
	"spiralcircle":  "spiral_circle",
	"spiralforward": "spiral_forward",
	"beginfill":     "begin_fill",
	"endfill":       "end_fill",
}

var operations = map[string]operation{
	"reset": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		e.Reset()
		return nil, nil
	}},

	"forward": {minArgs: 1, maxArgs: 1, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		d, err := number(args, 0, "distance")
		if err != nil {
			return nil, err
		}
		return nil, e.Forward(d)
	}},
	"back": {minArgs: 1, maxArgs: 1, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		d, err := number(args, 0, "distance")
		if err != nil {
			return nil, err
		}
		return nil, e.Back(d)
	}},
	"left": {maxArgs: 1, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		d, err := numberOr(args, 0, "degree", 90)
		if err != nil {
			return nil, err
		}
		return nil, e.Left(d)
	}},
	"right": {maxArgs: 1, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		d, err := numberOr(args, 0, "degree", 90)
		if err != nil {
			return nil, err
		}
		return nil, e.Right(d)
	}},
	"goto": {minArgs: 1, maxArgs: 2, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		// goto [x, y] is accepted as well as goto x y.
		if len(args) == 1 {
			pair, ok := args[0].([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: goto takes x and y", ErrInvalidArguments)
			}
			args = pair
		}
		x, err := number(args, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := number(args, 1, "y")
		if err != nil {
			return nil, err
		}
		return nil, e.Goto(x, y)
	}},

	"circle": {minArgs: 1, maxArgs: 2, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		radius, err := number(args, 0, "radius")
		if err != nil {
			return nil, err
		}
		extent, err := numberOr(args, 1, "extent", 360)
		if err != nil {
			return nil, err
		}
		return nil, e.Circle(radius, extent)
	}},
	"spiral_circle": {minArgs: 4, maxArgs: 4, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		steps, vals, err := spiralArgs(args, "start_radius", "radius_stride", "angle_stride")
		if err != nil {
			return nil, err
		}
		return nil, e.SpiralCircle(steps, vals[0], vals[1], vals[2])
	}},
	"spiral_forward": {minArgs: 4, maxArgs: 4, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		steps, vals, err := spiralArgs(args, "start_arc_length", "arc_length_stride", "angle_stride")
		if err != nil {
			return nil, err
		}
		return nil, e.SpiralForward(steps, vals[0], vals[1], vals[2])
	}},

	"penup":           {call: state((*turtle.Engine).PenUp)},
	"pendown":         {call: state((*turtle.Engine).PenDown)},
	"begin_fill":      {call: state((*turtle.Engine).BeginFill)},
	"end_fill":        {call: state((*turtle.Engine).EndFill)},
	"begin_animation": {call: state((*turtle.Engine).BeginAnimation)},
	"end_animation":   {call: state((*turtle.Engine).EndAnimation)},
	"hideturtle":      {call: state((*turtle.Engine).HideTurtle)},
	"showturtle":      {call: state((*turtle.Engine).ShowTurtle)},

	"pencolor": {maxArgs: 3, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		if len(args) == 0 {
			return e.PenColor().String(), nil
		}
		c, err := colorArgs(args)
		if err != nil {
			return nil, err
		}
		return nil, e.SetPenColor(c)
	}},
	"fillcolor": {maxArgs: 3, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		if len(args) == 0 {
			return e.FillColor().String(), nil
		}
		c, err := colorArgs(args)
		if err != nil {
			return nil, err
		}
		return nil, e.SetFillColor(c)
	}},
	"color": {minArgs: 1, maxArgs: 2, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		pen, err := colorArg(args[0])
		if err != nil {
			return nil, err
		}
		fill := pen
		if len(args) == 2 {
			if fill, err = colorArg(args[1]); err != nil {
				return nil, err
			}
		}
		return nil, e.SetColor(pen, fill)
	}},
	"pensize": {maxArgs: 1, call: func(e *turtle.Engine, args []any, _ map[string]any) (any, error) {
		if len(args) == 0 {
			return e.PenSize(), nil
		}
		w, err := number(args, 0, "width")
		if err != nil {
			return nil, err
		}
		return nil, e.SetPenSize(w)
	}},

	"write": {maxArgs: 1, options: true, call: func(e *turtle.Engine, args []any, opts map[string]any) (any, error) {
		var text string
		if len(args) == 1 {
			text = cast.ToString(args[0])
		}
		text, err := SanitizeText(text)
		if err != nil {
			return nil, err
		}
		wo, err := writeOptions(opts)
		if err != nil {
			return nil, err
		}
		return nil, e.Write(text, wo)
	}},
	"dot": {maxArgs: 4, options: true, call: func(e *turtle.Engine, args []any, opts map[string]any) (any, error) {
		do, err := dotOptions(args, opts)
		if err != nil {
			return nil, err
		}
		return nil, e.Dot(do)
	}},

	"position": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.Position(), nil
	}},
	"heading": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.Heading(), nil
	}},
	"isdown": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.IsDown(), nil
	}},
	"isvisible": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.IsVisible(), nil
	}},
	"filling": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.Filling(), nil
	}},
	"animating": {call: func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		return e.Animating(), nil
	}},
}

// Canonical resolves an op name or alias.
func Canonical(op string) (string, bool) {
	op = strings.ToLower(strings.TrimSpace(op))
	if name, ok := aliases[op]; ok {
		op = name
	}
	_, ok := operations[op]
	return op, ok
}

// Operations lists the canonical op names in alphabetical order.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the alternative names of op.
func Aliases(op string) []string {
	var names []string
	for alias, name := range aliases {
		if name == op {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}

// Apply performs one step on the engine. Query operations (position,
// heading, pencolor with no arguments, ...) return their value; mutating
// operations return nil.
func Apply(e *turtle.Engine, step Step) (any, error) {
	name, ok := Canonical(step.Op)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, step.Op)
	}
	op := operations[name]

	if n := len(step.Args); n < op.minArgs || (op.maxArgs >= 0 && n > op.maxArgs) {
		return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrInvalidArguments, name, arity(op), n)
	}
	if len(step.Options) > 0 && !op.options {
		return nil, fmt.Errorf("%w: %s takes no options", ErrInvalidArguments, name)
	}
	return op.call(e, step.Args, step.Options)
}

// Run applies the steps in order and stops at the first failure. Steps
// applied before the failure stay in the engine log.
func Run(e *turtle.Engine, p *Program) error {
	for i, step := range p.Steps {
		if _, err := Apply(e, step); err != nil {
			return &StepError{Index: i, Op: step.Op, Err: err}
		}
	}
	return nil
}

func arity(op operation) string {
	switch {
	case op.minArgs == op.maxArgs:
		return fmt.Sprintf("%d argument(s)", op.minArgs)
	case op.maxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", op.minArgs)
	default:
		return fmt.Sprintf("%d to %d argument(s)", op.minArgs, op.maxArgs)
	}
}

func state(fn func(*turtle.Engine)) func(*turtle.Engine, []any, map[string]any) (any, error) {
	return func(e *turtle.Engine, _ []any, _ map[string]any) (any, error) {
		fn(e)
		return nil, nil
	}
}

// toNumber accepts numbers and numeric strings. Booleans and nil are
// rejected even though cast would turn them into 0 or 1.
func toNumber(v any, name string) (float64, error) {
	switch v.(type) {
	case nil, bool:
		return 0, fmt.Errorf("%w: %s must be a number, got %v", ErrInvalidArguments, name, v)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number: %v", ErrInvalidArguments, name, err)
	}
	return f, nil
}

func number(args []any, i int, name string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidArguments, name)
	}
	return toNumber(args[i], name)
}

func numberOr(args []any, i int, name string, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	return toNumber(args[i], name)
}

func spiralArgs(args []any, names ...string) (int, []float64, error) {
	f, err := number(args, 0, "steps")
	if err != nil {
		return 0, nil, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, nil, fmt.Errorf("%w: steps must be an integer, got %v", ErrInvalidArguments, args[0])
	}
	if err := CheckSteps(int(f)); err != nil {
		return 0, nil, err
	}
	vals := make([]float64, len(names))
	for i, name := range names {
		if vals[i], err = number(args, i+1, name); err != nil {
			return 0, nil, err
		}
	}
	return int(f), vals, nil
}

// colorArgs reads the positional arguments of pencolor/fillcolor: a color
// name, an [r, g, b] list or three channels.
func colorArgs(args []any) (domain.Color, error) {
	if len(args) == 1 {
		return colorArg(args[0])
	}
	return domain.ParseColor(args...)
}

func colorArg(v any) (domain.Color, error) {
	if list, ok := v.([]any); ok {
		return domain.ParseColor(list...)
	}
	return domain.ParseColor(v)
}

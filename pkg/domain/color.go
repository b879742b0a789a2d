package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ColorKind tells which variant a Color holds.
type ColorKind uint8

const (
	ColorNamed ColorKind = iota
	ColorRGB
)

// Color is either a named color ("black", "#ff0000") or three numeric
// channels rendered as "rgb(r, g, b)". The zero value is an empty name and is
// rejected by the engine.
type Color struct {
	kind    ColorKind
	name    string
	r, g, b float64
}

// Named returns a color given by its literal name.
func Named(name string) Color {
	return Color{kind: ColorNamed, name: name}
}

// RGB returns a color built from three channels. Channels are not clamped.
func RGB(r, g, b float64) Color {
	return Color{kind: ColorRGB, r: r, g: g, b: b}
}

// ParseColor resolves the arity of a color call:
// one string argument is a name, three numeric arguments are channels.
func ParseColor(args ...any) (Color, error) {
	switch len(args) {
	case 1:
		name, ok := args[0].(string)
		if !ok {
			return Color{}, fmt.Errorf("%w: single argument must be a string, got %T", ErrColorArity, args[0])
		}
		if name == "" {
			return Color{}, fmt.Errorf("%w: empty color name", ErrColorArity)
		}
		return Named(name), nil
	case 3:
		var ch [3]float64
		for i, a := range args {
			switch a.(type) {
			case string, bool, nil:
				return Color{}, fmt.Errorf("%w: channel %d must be numeric, got %T", ErrColorArity, i, a)
			}
			v, err := cast.ToFloat64E(a)
			if err != nil {
				return Color{}, fmt.Errorf("%w: channel %d: %v", ErrColorArity, i, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Color{}, &InputError{Op: "color", Param: "channel", Value: v}
			}
			ch[i] = v
		}
		return RGB(ch[0], ch[1], ch[2]), nil
	default:
		return Color{}, fmt.Errorf("%w: got %d arguments", ErrColorArity, len(args))
	}
}

func (c Color) Kind() ColorKind { return c.kind }

// Channels returns the rgb channels; ok is false for named colors.
func (c Color) Channels() (r, g, b float64, ok bool) {
	return c.r, c.g, c.b, c.kind == ColorRGB
}

// IsZero reports whether c is the empty name.
func (c Color) IsZero() bool {
	return c.kind == ColorNamed && c.name == ""
}

func (c Color) String() string {
	if c.kind == ColorRGB {
		return "rgb(" + channel(c.r) + ", " + channel(c.g) + ", " + channel(c.b) + ")"
	}
	return c.name
}

func channel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalJSON encodes the color as the string a renderer consumes.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the output of MarshalJSON.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = colorFromString(s)
	return nil
}

func colorFromString(s string) Color {
	inner, ok := strings.CutPrefix(s, "rgb(")
	if !ok {
		return Named(s)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return Named(s)
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return Named(s)
	}
	var ch [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Named(s)
		}
		ch[i] = v
	}
	return RGB(ch[0], ch[1], ch[2])
}

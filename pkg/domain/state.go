package domain

import "math"

const (
	DefaultHeading      = 90.0
	DefaultPenWidth     = 1.0
	DefaultCanvasWidth  = 320
	DefaultCanvasHeight = 320
)

// Point is a position on the drawing plane. The origin is the canvas center
// and y grows upwards.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Abs returns the distance of the point from the origin.
func (p Point) Abs() float64 {
	return math.Hypot(p.X, p.Y)
}

// Canvas carries the host surface metadata. The engine stores it and passes it
// through unchanged; only renderers interpret it.
type Canvas struct {
	Width  int  `json:"width" yaml:"width" mapstructure:"width"`
	Height int  `json:"height" yaml:"height" mapstructure:"height"`
	Fixed  bool `json:"fixed" yaml:"fixed" mapstructure:"fixed"`
}

// DefaultCanvas returns the canvas used when the host does not provide one.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  DefaultCanvasWidth,
		Height: DefaultCanvasHeight,
		Fixed:  true,
	}
}

// State represents the live turtle. Heading is in degrees, normalized to
// [0, 360), with 0 along +x and angles growing counter-clockwise.
type State struct {
	Position    Point   `json:"position"`
	Heading     float64 `json:"heading"`
	PenDown     bool    `json:"pen_down"`
	Visible     bool    `json:"visible"`
	Animating   bool    `json:"animating"`
	Filling     bool    `json:"filling"`
	StrokeColor Color   `json:"stroke_color"`
	FillColor   Color   `json:"fill_color"`
	PenWidth    float64 `json:"pen_width"`
}

// NewState creates a turtle at the origin, facing up, pen down, drawing black.
func NewState() State {
	return State{
		Heading:     DefaultHeading,
		PenDown:     true,
		Visible:     true,
		StrokeColor: Named("black"),
		FillColor:   Named("black"),
		PenWidth:    DefaultPenWidth,
	}
}

// Snapshot copies the fields every command carries.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		X:           s.Position.X,
		Y:           s.Position.Y,
		Heading:     s.Heading,
		Color:       s.StrokeColor.String(),
		FillColor:   s.FillColor.String(),
		LineWidth:   s.PenWidth,
		IsPenOn:     s.PenDown,
		IsFilling:   s.Filling,
		IsAnimating: s.Animating,
		IsTurtleOn:  s.Visible,
	}
}

package domain

import (
	"encoding/json"
	"fmt"
)

// CommandType tags a Command. Renderers must ignore types they do not know.
type CommandType string

const (
	CommandLine          CommandType = "line"
	CommandLeft          CommandType = "left"
	CommandRight         CommandType = "right"
	CommandReset         CommandType = "reset"
	CommandBeginFill     CommandType = "beginFill"
	CommandEndFill       CommandType = "endFill"
	CommandUpdateTurtle  CommandType = "updateTurtle"
	CommandWrite         CommandType = "write"
	CommandDot           CommandType = "dot"
	CommandCircle        CommandType = "circle"
	CommandSpiralCircle  CommandType = "spiralCircle"
	CommandSpiralForward CommandType = "spiralForward"
)

// Snapshot is the part of the turtle state copied verbatim into a command.
type Snapshot struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Heading     float64 `json:"heading"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	LineWidth   float64 `json:"lineWidth"`
	IsPenOn     bool    `json:"isPenOn"`
	IsFilling   bool    `json:"isFilling"`
	IsAnimating bool    `json:"isAnimating"`
	IsTurtleOn  bool    `json:"isTurtleOn"`
}

// Position returns the snapshot coordinates as a Point.
func (s Snapshot) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// Command is one entry of the command log. Only the parameters relevant to
// Type are set. On the wire the parameters of Type are always present, even
// when zero; the others are omitted.
type Command struct {
	ID   uint64      `json:"id"`
	Type CommandType `json:"type"`
	Snapshot

	// line
	Distance float64 `json:"distance,omitempty"`
	// left, right
	Degree float64 `json:"degree,omitempty"`
	// circle
	Radius float64 `json:"radius,omitempty"`
	Extent float64 `json:"extent,omitempty"`
	// spiralCircle, spiralForward
	Steps           int     `json:"steps,omitempty"`
	StartRadius     float64 `json:"startRadius,omitempty"`
	RadiusStride    float64 `json:"radiusStride,omitempty"`
	StartArcLength  float64 `json:"startArcLength,omitempty"`
	ArcLengthStride float64 `json:"arcLengthStride,omitempty"`
	AngleStride     float64 `json:"angleStride,omitempty"`
	// write
	Text  string `json:"text,omitempty"`
	Move  bool   `json:"move,omitempty"`
	Align string `json:"align,omitempty"`
	Font  *Font  `json:"font,omitempty"`
	// dot
	Size     float64 `json:"size,omitempty"`
	DotColor string  `json:"dotColor,omitempty"`
}

// wireCommand has the fields of Command without its methods.
type wireCommand Command

// MarshalJSON writes the parameters that belong to the command type without
// omitempty. The shallower fields shadow the embedded ones of the same name.
func (c Command) MarshalJSON() ([]byte, error) {
	w := wireCommand(c)
	switch c.Type {
	case CommandLine:
		return json.Marshal(struct {
			wireCommand
			Distance float64 `json:"distance"`
		}{w, c.Distance})
	case CommandLeft, CommandRight:
		return json.Marshal(struct {
			wireCommand
			Degree float64 `json:"degree"`
		}{w, c.Degree})
	case CommandCircle:
		return json.Marshal(struct {
			wireCommand
			Radius float64 `json:"radius"`
			Extent float64 `json:"extent"`
		}{w, c.Radius, c.Extent})
	case CommandSpiralCircle:
		return json.Marshal(struct {
			wireCommand
			Steps        int     `json:"steps"`
			StartRadius  float64 `json:"startRadius"`
			RadiusStride float64 `json:"radiusStride"`
			AngleStride  float64 `json:"angleStride"`
		}{w, c.Steps, c.StartRadius, c.RadiusStride, c.AngleStride})
	case CommandSpiralForward:
		return json.Marshal(struct {
			wireCommand
			Steps           int     `json:"steps"`
			StartArcLength  float64 `json:"startArcLength"`
			ArcLengthStride float64 `json:"arcLengthStride"`
			AngleStride     float64 `json:"angleStride"`
		}{w, c.Steps, c.StartArcLength, c.ArcLengthStride, c.AngleStride})
	case CommandWrite:
		return json.Marshal(struct {
			wireCommand
			Text  string `json:"text"`
			Move  bool   `json:"move"`
			Align string `json:"align"`
		}{w, c.Text, c.Move, c.Align})
	case CommandDot:
		return json.Marshal(struct {
			wireCommand
			Size     float64 `json:"size"`
			DotColor string  `json:"dotColor"`
		}{w, c.Size, c.DotColor})
	default:
		return json.Marshal(w)
	}
}

// Font describes the typeface of a write command. On the wire it is the
// triple [family, size, weight].
type Font struct {
	Family string
	Size   float64
	Weight string
}

// DefaultFont is the font used by Write when none is given.
func DefaultFont() Font {
	return Font{Family: "Arial", Size: 8, Weight: "normal"}
}

func (f Font) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Family, f.Size, f.Weight})
}

func (f *Font) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("font: expected 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &f.Family); err != nil {
		return fmt.Errorf("font family: %w", err)
	}
	if err := json.Unmarshal(raw[1], &f.Size); err != nil {
		return fmt.Errorf("font size: %w", err)
	}
	if err := json.Unmarshal(raw[2], &f.Weight); err != nil {
		return fmt.Errorf("font weight: %w", err)
	}
	return nil
}

// CSS returns the font in CSS shorthand order ("normal 8px Arial").
func (f Font) CSS() string {
	return fmt.Sprintf("%s %gpx %s", f.Weight, f.Size, f.Family)
}

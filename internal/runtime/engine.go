package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
)

// Engine is the turtle state machine. Every mutating call updates the live
// state and appends one command to the log; queries have no side effects.
//
// An Engine is driven by one caller at a time and takes no locks. Its log may
// be read concurrently.
type Engine struct {
	state  domain.State
	canvas domain.Canvas
	nextID uint64
	log    *CommandLog

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCanvas sets the canvas metadata passed through to renderers.
func WithCanvas(c domain.Canvas) EngineOption {
	return func(e *Engine) {
		e.canvas = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine and performs the initial reset, so the log of a
// fresh engine starts with a single "reset" command.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		state:  domain.NewState(),
		canvas: domain.DefaultCanvas(),
		log:    NewCommandLog(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Restore rebuilds an engine from a persisted record. No command is emitted;
// the next command continues the record's ID sequence.
func Restore(rec *domain.Record, opts ...EngineOption) (*Engine, error) {
	if rec == nil {
		return nil, fmt.Errorf("restore: nil record")
	}
	if rec.Sealed != nil {
		return nil, fmt.Errorf("restore %s: record is sealed", rec.ID)
	}
	for i := 1; i < len(rec.Commands); i++ {
		if rec.Commands[i].ID <= rec.Commands[i-1].ID {
			return nil, fmt.Errorf("restore %s: command ids not increasing at index %d", rec.ID, i)
		}
	}
	if n := len(rec.Commands); n > 0 && rec.NextID < rec.Commands[n-1].ID {
		return nil, fmt.Errorf("restore %s: counter %d behind last command %d", rec.ID, rec.NextID, rec.Commands[n-1].ID)
	}

	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.state = rec.State
	e.canvas = rec.Canvas
	e.nextID = rec.NextID
	e.log = NewCommandLog(rec.Commands...)
	return e, nil
}

// Record captures the engine for persistence under the given session ID.
func (e *Engine) Record(id string) *domain.Record {
	return &domain.Record{
		ID:       id,
		Canvas:   e.canvas,
		State:    e.state,
		NextID:   e.nextID,
		Commands: slices.Clone(e.log.Commands()),
	}
}

// Log exposes the command log to renderers.
func (e *Engine) Log() *CommandLog {
	return e.log
}

// emit is the only place commands are created. The snapshot is taken before
// or after mutate according to snapshotTimings.
func (e *Engine) emit(cmd domain.Command, mutate func(*domain.State)) {
	timing := timingOf(cmd.Type)
	if timing == beforeMutation {
		cmd.Snapshot = e.state.Snapshot()
	}
	if mutate != nil {
		mutate(&e.state)
	}
	if timing == afterMutation {
		cmd.Snapshot = e.state.Snapshot()
	}

	e.nextID++
	cmd.ID = e.nextID
	e.log.append(cmd)

	e.logger.Debug("command appended", "id", cmd.ID, "type", cmd.Type)
	if e.hooks.OnCommand != nil {
		e.hooks.OnCommand(cmd)
	}
}

func (e *Engine) reject(op string, err error) error {
	e.logger.Warn("call rejected", "op", op, "err", err)
	if e.hooks.OnRejected != nil {
		e.hooks.OnRejected(op, err)
	}
	return err
}

type param struct {
	name  string
	value float64
}

func (e *Engine) requireFinite(op string, params ...param) error {
	for _, p := range params {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return e.reject(op, &domain.InputError{Op: op, Param: p.name, Value: p.value})
		}
	}
	return nil
}

// --- Construction & reset ---

// Reset restores the default pose and style and appends a "reset" command.
// The log is kept; the pen width is not part of the reset.
func (e *Engine) Reset() {
	e.emit(domain.Command{Type: domain.CommandReset}, func(s *domain.State) {
		width := s.PenWidth
		*s = domain.NewState()
		s.PenWidth = width
	})
}

// --- Movement ---

// Forward moves the turtle along its heading and appends a "line" command
// carrying the starting pose.
func (e *Engine) Forward(distance float64) error {
	return e.move("forward", distance)
}

// Back is Forward with the distance negated.
func (e *Engine) Back(distance float64) error {
	return e.move("back", -distance)
}

func (e *Engine) move(op string, distance float64) error {
	if err := e.requireFinite(op, param{"distance", distance}); err != nil {
		return err
	}
	e.emit(domain.Command{Type: domain.CommandLine, Distance: distance}, func(s *domain.State) {
		s.Position = advance(s.Position, s.Heading, distance)
	})
	return nil
}

// Left turns counter-clockwise by degree.
func (e *Engine) Left(degree float64) error {
	return e.turn(domain.CommandLeft, degree, degree)
}

// Right turns clockwise by degree. It shares the turn arithmetic of Left with
// the sign flipped; the command still records the degree as given.
func (e *Engine) Right(degree float64) error {
	return e.turn(domain.CommandRight, degree, -degree)
}

func (e *Engine) turn(t domain.CommandType, degree, delta float64) error {
	if err := e.requireFinite(string(t), param{"degree", degree}); err != nil {
		return err
	}
	e.emit(domain.Command{Type: t, Degree: degree}, func(s *domain.State) {
		s.Heading = normalizeHeading(s.Heading + delta)
	})
	return nil
}

// Goto jumps to (x, y) without drawing. It appends "updateTurtle", never
// "line", and keeps the heading.
func (e *Engine) Goto(x, y float64) error {
	if err := e.requireFinite("goto", param{"x", x}, param{"y", y}); err != nil {
		return err
	}
	e.emit(domain.Command{Type: domain.CommandUpdateTurtle}, func(s *domain.State) {
		s.Position = domain.Point{X: x, Y: y}
	})
	return nil
}

// GotoPoint is Goto for a Point.
func (e *Engine) GotoPoint(p domain.Point) error {
	return e.Goto(p.X, p.Y)
}

// SetPos is an alias of Goto.
func (e *Engine) SetPos(x, y float64) error {
	return e.Goto(x, y)
}

// SetPosition is an alias of Goto.
func (e *Engine) SetPosition(x, y float64) error {
	return e.Goto(x, y)
}

// --- Compound shapes ---

// Circle traces extent degrees of a circle of the given radius. A single
// "circle" command is appended and the end pose is computed analytically.
func (e *Engine) Circle(radius, extent float64) error {
	if err := e.requireFinite("circle", param{"radius", radius}, param{"extent", extent}); err != nil {
		return err
	}
	e.emit(domain.Command{Type: domain.CommandCircle, Radius: radius, Extent: extent}, func(s *domain.State) {
		pos, heading := orbit(s.Position, s.Heading, radius, extent)
		s.Position = pos
		s.Heading = normalizeHeading(heading)
	})
	return nil
}

// SpiralCircle chains steps arcs of angleStride degrees whose radius grows by
// radiusStride. One "spiralCircle" command is appended.
func (e *Engine) SpiralCircle(steps int, startRadius, radiusStride, angleStride float64) error {
	const op = "spiral_circle"
	if steps < 0 {
		return e.reject(op, &domain.InputError{Op: op, Param: "steps", Value: steps})
	}
	if err := e.requireFinite(op,
		param{"start_radius", startRadius},
		param{"radius_stride", radiusStride},
		param{"angle_stride", angleStride},
	); err != nil {
		return err
	}
	cmd := domain.Command{
		Type:         domain.CommandSpiralCircle,
		Steps:        steps,
		StartRadius:  startRadius,
		RadiusStride: radiusStride,
		AngleStride:  angleStride,
	}
	e.emit(cmd, func(s *domain.State) {
		s.Position, s.Heading = spiralCircleEnd(s.Position, s.Heading, steps, startRadius, radiusStride, angleStride)
	})
	return nil
}

// SpiralForward chains steps straight segments growing by arcLengthStride,
// each followed by a left turn of angleStride. One "spiralForward" command is
// appended.
func (e *Engine) SpiralForward(steps int, startArcLength, arcLengthStride, angleStride float64) error {
	const op = "spiral_forward"
	if steps < 0 {
		return e.reject(op, &domain.InputError{Op: op, Param: "steps", Value: steps})
	}
	if err := e.requireFinite(op,
		param{"start_arc_length", startArcLength},
		param{"arc_length_stride", arcLengthStride},
		param{"angle_stride", angleStride},
	); err != nil {
		return err
	}
	cmd := domain.Command{
		Type:            domain.CommandSpiralForward,
		Steps:           steps,
		StartArcLength:  startArcLength,
		ArcLengthStride: arcLengthStride,
		AngleStride:     angleStride,
	}
	e.emit(cmd, func(s *domain.State) {
		s.Position, s.Heading = spiralForwardEnd(s.Position, s.Heading, steps, startArcLength, arcLengthStride, angleStride)
	})
	return nil
}

// --- Pen, fill and style ---

// PenUp lifts the pen. Movement is still logged with isPenOn=false.
func (e *Engine) PenUp() { e.state.PenDown = false }

// PenDown lowers the pen.
func (e *Engine) PenDown() { e.state.PenDown = true }

// BeginAnimation marks subsequent commands as animated.
func (e *Engine) BeginAnimation() { e.state.Animating = true }

// EndAnimation clears the animation flag.
func (e *Engine) EndAnimation() { e.state.Animating = false }

// BeginFill opens a fillable path.
func (e *Engine) BeginFill() {
	e.emit(domain.Command{Type: domain.CommandBeginFill}, func(s *domain.State) {
		s.Filling = true
	})
}

// EndFill closes the fillable path opened by BeginFill.
func (e *Engine) EndFill() {
	e.emit(domain.Command{Type: domain.CommandEndFill}, func(s *domain.State) {
		s.Filling = false
	})
}

// PenColor returns the stroke color.
func (e *Engine) PenColor() domain.Color { return e.state.StrokeColor }

// FillColor returns the fill color.
func (e *Engine) FillColor() domain.Color { return e.state.FillColor }

// SetPenColor sets the stroke color and appends "updateTurtle".
func (e *Engine) SetPenColor(c domain.Color) error {
	if c.IsZero() {
		return e.reject("pencolor", fmt.Errorf("pencolor: %w: empty color", domain.ErrColorArity))
	}
	e.emit(domain.Command{Type: domain.CommandUpdateTurtle}, func(s *domain.State) {
		s.StrokeColor = c
	})
	return nil
}

// SetFillColor sets the fill color and appends "updateTurtle".
func (e *Engine) SetFillColor(c domain.Color) error {
	if c.IsZero() {
		return e.reject("fillcolor", fmt.Errorf("fillcolor: %w: empty color", domain.ErrColorArity))
	}
	e.emit(domain.Command{Type: domain.CommandUpdateTurtle}, func(s *domain.State) {
		s.FillColor = c
	})
	return nil
}

// SetColor sets both colors, appending one "updateTurtle" per color. Nothing
// is changed when either color is rejected.
func (e *Engine) SetColor(pen, fill domain.Color) error {
	if pen.IsZero() || fill.IsZero() {
		return e.reject("color", fmt.Errorf("color: %w: empty color", domain.ErrColorArity))
	}
	return errors.Join(e.SetPenColor(pen), e.SetFillColor(fill))
}

// PenSize returns the stroke width.
func (e *Engine) PenSize() float64 { return e.state.PenWidth }

// SetPenSize sets the stroke width used by the next commands. No command is
// appended.
func (e *Engine) SetPenSize(width float64) error {
	if err := e.requireFinite("pensize", param{"width", width}); err != nil {
		return err
	}
	if width <= 0 {
		return e.reject("pensize", &domain.InputError{Op: "pensize", Param: "width", Value: width})
	}
	e.state.PenWidth = width
	return nil
}

// Write appends a "write" command. The turtle does not move, whatever
// opts.Move says.
func (e *Engine) Write(text string, opts domain.WriteOptions) error {
	font := domain.DefaultFont()
	if opts.Font != nil {
		font = *opts.Font
		if err := e.requireFinite("write", param{"font_size", font.Size}); err != nil {
			return err
		}
		if font.Size <= 0 {
			return e.reject("write", &domain.InputError{Op: "write", Param: "font_size", Value: font.Size})
		}
	}
	align := opts.Align
	if align == "" {
		align = "left"
	}
	e.emit(domain.Command{
		Type:  domain.CommandWrite,
		Text:  text,
		Move:  opts.Move,
		Align: align,
		Font:  &font,
	}, nil)
	return nil
}

// Dot appends a "dot" command. Without a size the dot is pen width + 4 for
// thin pens and twice the pen width otherwise; without a color it uses the
// stroke color.
func (e *Engine) Dot(opts domain.DotOptions) error {
	size := opts.Size
	if err := e.requireFinite("dot", param{"size", size}); err != nil {
		return err
	}
	if size < 0 {
		return e.reject("dot", &domain.InputError{Op: "dot", Param: "size", Value: size})
	}
	if size == 0 {
		if w := e.state.PenWidth; w < 4 {
			size = w + 4
		} else {
			size = w * 2
		}
	}
	color := opts.Color
	if color.IsZero() {
		color = e.state.StrokeColor
	}
	e.emit(domain.Command{Type: domain.CommandDot, Size: size, DotColor: color.String()}, nil)
	return nil
}

// --- Visibility & queries ---

// HideTurtle hides the turtle glyph and appends "updateTurtle".
func (e *Engine) HideTurtle() {
	e.emit(domain.Command{Type: domain.CommandUpdateTurtle}, func(s *domain.State) {
		s.Visible = false
	})
}

// ShowTurtle shows the turtle glyph and appends "updateTurtle".
func (e *Engine) ShowTurtle() {
	e.emit(domain.Command{Type: domain.CommandUpdateTurtle}, func(s *domain.State) {
		s.Visible = true
	})
}

// IsVisible reports whether the turtle glyph is shown.
func (e *Engine) IsVisible() bool { return e.state.Visible }

// IsDown reports whether the pen is down.
func (e *Engine) IsDown() bool { return e.state.PenDown }

// Position returns the current position.
func (e *Engine) Position() domain.Point { return e.state.Position }

// Heading returns the heading in degrees, in [0, 360).
func (e *Engine) Heading() float64 { return e.state.Heading }

// Filling reports whether a fill is open.
func (e *Engine) Filling() bool { return e.state.Filling }

// Animating reports the advisory animation flag.
func (e *Engine) Animating() bool { return e.state.Animating }

// Canvas returns the canvas metadata given at construction.
func (e *Engine) Canvas() domain.Canvas { return e.canvas }

// State returns a copy of the live turtle state.
func (e *Engine) State() domain.State { return e.state }

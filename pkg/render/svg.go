package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
)

// maxArcStep keeps every SVG arc segment well below a half turn, where the
// large-arc flag would become ambiguous.
const maxArcStep = 90.0

// SVG renders command logs as standalone SVG documents.
type SVG struct {
	background   string
	turtleWidth  float64
	turtleHeight float64
	showTurtle   bool
}

// SVGOption configures an SVG renderer.
type SVGOption func(*SVG)

// WithBackground fills the canvas before drawing. An empty color leaves it
// transparent.
func WithBackground(color string) SVGOption {
	return func(s *SVG) {
		s.background = color
	}
}

// WithTurtleSize sets the size of the turtle glyph.
func WithTurtleSize(width, height float64) SVGOption {
	return func(s *SVG) {
		s.turtleWidth = width
		s.turtleHeight = height
	}
}

// WithoutTurtle never draws the turtle glyph.
func WithoutTurtle() SVGOption {
	return func(s *SVG) {
		s.showTurtle = false
	}
}

// NewSVG creates an SVG renderer with a white background and a 10x15 glyph.
func NewSVG(opts ...SVGOption) *SVG {
	s := &SVG{
		background:   "white",
		turtleWidth:  10,
		turtleHeight: 15,
		showTurtle:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContentType implements ports.Renderer.
func (s *SVG) ContentType() string {
	return "image/svg+xml"
}

// Render implements ports.Renderer.
func (s *SVG) Render(w io.Writer, canvas domain.Canvas, cmds []domain.Command) error {
	r := &replay{canvas: canvas}
	for _, cmd := range cmds {
		r.apply(cmd)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		canvas.Width, canvas.Height, canvas.Width, canvas.Height)
	if s.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(s.background))
	}
	for _, el := range r.elements {
		buf.WriteString("  ")
		buf.WriteString(el)
		buf.WriteString("\n")
	}
	if s.showTurtle && r.last != nil && r.last.IsTurtleOn {
		buf.WriteString("  ")
		buf.WriteString(s.glyph(r))
		buf.WriteString("\n")
	}
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// glyph draws the turtle triangle at the final pose.
func (s *SVG) glyph(r *replay) string {
	hx, hy := math.Cos(radians(r.heading)), math.Sin(radians(r.heading))
	x, y := r.x, r.y
	w, h := s.turtleWidth, s.turtleHeight

	points := [][2]float64{
		{x, y},
		{x + 0.5*w*hy - h*hx, y - 0.5*w*hx - h*hy},
		{x - 0.7*h*hx, y - 0.7*h*hy},
		{x - 0.5*w*hy - h*hx, y + 0.5*w*hx - h*hy},
	}
	parts := make([]string, len(points))
	for i, p := range points {
		sx, sy := r.screen(p[0], p[1])
		parts[i] = num(sx) + "," + num(sy)
	}
	return fmt.Sprintf(`<polygon class="turtle" points="%s" fill="%s" stroke="%s"/>`,
		strings.Join(parts, " "), attr(r.last.FillColor), attr(r.last.Color))
}

// replay tracks the pose a renderer derives from the log. Commands that
// describe a motion carry its starting pose; the end pose is computed here.
type replay struct {
	canvas   domain.Canvas
	elements []string

	x, y, heading float64
	last          *domain.Command

	filling   bool
	fillStart int
	fillPath  []string
}

func (r *replay) screen(x, y float64) (float64, float64) {
	return float64(r.canvas.Width)/2 + x, float64(r.canvas.Height)/2 - y
}

func (r *replay) apply(cmd domain.Command) {
	r.last = &cmd
	r.x, r.y, r.heading = cmd.X, cmd.Y, cmd.Heading

	switch cmd.Type {
	case domain.CommandReset:
		r.elements = nil
		r.filling = false
		r.fillPath = nil
	case domain.CommandLine:
		r.line(cmd, cmd.Distance)
	case domain.CommandLeft:
		r.heading += cmd.Degree
	case domain.CommandRight:
		r.heading -= cmd.Degree
	case domain.CommandCircle:
		r.arc(cmd, cmd.Radius, cmd.Extent)
	case domain.CommandSpiralCircle:
		for i := 0; i < cmd.Steps; i++ {
			r.arc(cmd, cmd.StartRadius+float64(i)*cmd.RadiusStride, cmd.AngleStride)
		}
	case domain.CommandSpiralForward:
		for i := 0; i < cmd.Steps; i++ {
			r.line(cmd, cmd.StartArcLength+float64(i)*cmd.ArcLengthStride)
			r.heading += cmd.AngleStride
		}
	case domain.CommandBeginFill:
		r.filling = true
		r.fillStart = len(r.elements)
		sx, sy := r.screen(r.x, r.y)
		r.fillPath = []string{"M" + num(sx) + " " + num(sy)}
	case domain.CommandEndFill:
		r.closeFill(cmd.FillColor)
	case domain.CommandDot:
		sx, sy := r.screen(r.x, r.y)
		r.elements = append(r.elements, fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s"/>`,
			num(sx), num(sy), num(cmd.Size), attr(cmd.DotColor)))
	case domain.CommandWrite:
		r.text(cmd)
	}
}

func (r *replay) line(cmd domain.Command, distance float64) {
	ex := r.x + distance*math.Cos(radians(r.heading))
	ey := r.y + distance*math.Sin(radians(r.heading))

	sx, sy := r.screen(r.x, r.y)
	tx, ty := r.screen(ex, ey)
	if cmd.IsPenOn {
		r.elements = append(r.elements, fmt.Sprintf(
			`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-linecap="round"/>`,
			num(sx), num(sy), num(tx), num(ty), attr(cmd.Color), num(cmd.LineWidth)))
	}
	if r.filling {
		r.fillPath = append(r.fillPath, "L"+num(tx)+" "+num(ty))
	}
	r.x, r.y = ex, ey
}

// arc traces extent degrees around the center on the turtle's left (right
// for negative radii), splitting the path into SVG-safe segments.
func (r *replay) arc(cmd domain.Command, radius, extent float64) {
	start := r.heading - 90
	cx := r.x + radius*math.Cos(radians(start+180))
	cy := r.y + radius*math.Sin(radians(start+180))
	end := start + extent

	if radius != 0 && extent != 0 {
		// Positive extents run counter-clockwise in world space, which is the
		// positive sweep once y is flipped.
		sweep := "0"
		if extent > 0 {
			sweep = "1"
		}
		sx, sy := r.screen(r.x, r.y)
		segments := []string{}
		steps := int(math.Ceil(math.Abs(extent) / maxArcStep))
		for i := 1; i <= steps; i++ {
			a := start + extent*float64(i)/float64(steps)
			px, py := r.screen(cx+radius*math.Cos(radians(a)), cy+radius*math.Sin(radians(a)))
			segments = append(segments, fmt.Sprintf("A%s %s 0 0 %s %s %s",
				num(math.Abs(radius)), num(math.Abs(radius)), sweep, num(px), num(py)))
		}
		if cmd.IsPenOn {
			r.elements = append(r.elements, fmt.Sprintf(
				`<path d="M%s %s %s" fill="none" stroke="%s" stroke-width="%s"/>`,
				num(sx), num(sy), strings.Join(segments, " "), attr(cmd.Color), num(cmd.LineWidth)))
		}
		if r.filling {
			r.fillPath = append(r.fillPath, segments...)
		}
	}

	r.x = cx + radius*math.Cos(radians(end))
	r.y = cy + radius*math.Sin(radians(end))
	r.heading = end + 90
}

func (r *replay) text(cmd domain.Command) {
	anchor := "start"
	switch cmd.Align {
	case "center":
		anchor = "middle"
	case "right":
		anchor = "end"
	}
	font := domain.DefaultFont()
	if cmd.Font != nil {
		font = *cmd.Font
	}

	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(cmd.Text))

	sx, sy := r.screen(r.x, r.y)
	r.elements = append(r.elements, fmt.Sprintf(
		`<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%s" fill="%s" text-anchor="%s">%s</text>`,
		num(sx), num(sy), attr(font.Family), num(font.Size), attr(font.Weight), attr(cmd.Color), anchor, escaped.String()))
}

// closeFill paints the collected path underneath everything drawn since the
// fill began. A fill with no segment paints nothing.
func (r *replay) closeFill(color string) {
	if r.filling && len(r.fillPath) > 1 {
		el := fmt.Sprintf(`<path d="%s Z" fill="%s" stroke="none"/>`, strings.Join(r.fillPath, " "), attr(color))
		r.elements = append(r.elements, "")
		copy(r.elements[r.fillStart+1:], r.elements[r.fillStart:])
		r.elements[r.fillStart] = el
	}
	r.filling = false
	r.fillPath = nil
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func attr(s string) string {
	return html.EscapeString(s)
}

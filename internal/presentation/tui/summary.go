package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
)

// Summary describes a drawing for the inspect command.
type Summary struct {
	Name   string
	Steps  int
	Record *domain.Record
	// Err is the failure that stopped the program, if any.
	Err error
}

// Markdown renders the summary as a markdown document.
func (s Summary) Markdown() string {
	var sb strings.Builder
	rec := s.Record

	fmt.Fprintf(&sb, "# %s\n\n", s.Name)
	if s.Err != nil {
		fmt.Fprintf(&sb, "> **Stopped:** %v\n\n", s.Err)
	}

	fixed := "resizable"
	if rec.Canvas.Fixed {
		fixed = "fixed"
	}
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Canvas | %d x %d (%s) |\n", rec.Canvas.Width, rec.Canvas.Height, fixed)
	fmt.Fprintf(&sb, "| Steps | %d |\n", s.Steps)
	fmt.Fprintf(&sb, "| Commands | %d |\n", len(rec.Commands))
	if minX, minY, maxX, maxY, ok := bounds(rec); ok {
		fmt.Fprintf(&sb, "| Visited | (%s, %s) to (%s, %s) |\n", num(minX), num(minY), num(maxX), num(maxY))
	}

	st := rec.State
	pen := "up"
	if st.PenDown {
		pen = "down"
	}
	visible := "hidden"
	if st.Visible {
		visible = "visible"
	}
	sb.WriteString("\n## Turtle\n\n")
	fmt.Fprintf(&sb, "- Position: (%s, %s), heading %s°\n", num(st.Position.X), num(st.Position.Y), num(st.Heading))
	fmt.Fprintf(&sb, "- Pen %s, width %s, color `%s`, fill `%s`\n", pen, num(st.PenWidth), st.StrokeColor, st.FillColor)
	fmt.Fprintf(&sb, "- Turtle %s\n", visible)
	if st.Filling {
		sb.WriteString("- Fill still open\n")
	}

	if len(rec.Commands) > 0 {
		sb.WriteString("\n## Commands\n\n| Type | Count |\n|---|---|\n")
		for _, c := range countTypes(rec.Commands) {
			fmt.Fprintf(&sb, "| %s | %d |\n", c.typ, c.n)
		}
	}
	return sb.String()
}

type typeCount struct {
	typ domain.CommandType
	n   int
}

// countTypes counts commands per type in order of first appearance.
func countTypes(cmds []domain.Command) []typeCount {
	var out []typeCount
	index := make(map[domain.CommandType]int)
	for _, cmd := range cmds {
		i, ok := index[cmd.Type]
		if !ok {
			i = len(out)
			index[cmd.Type] = i
			out = append(out, typeCount{typ: cmd.Type})
		}
		out[i].n++
	}
	return out
}

// bounds spans the snapshot positions and the final position.
func bounds(rec *domain.Record) (minX, minY, maxX, maxY float64, ok bool) {
	if len(rec.Commands) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	visit := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, cmd := range rec.Commands {
		visit(cmd.X, cmd.Y)
	}
	visit(rec.State.Position.X, rec.State.Position.Y)
	return minX, minY, maxX, maxY, true
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return fmt.Sprintf("%g", v)
}

package ports

import (
	"io"

	"github.com/aretw0/turtle/pkg/domain"
)

// Renderer replays a command log onto an output format.
type Renderer interface {
	// Render writes the drawing described by cmds on a canvas. Command types
	// the renderer does not know are skipped.
	Render(w io.Writer, canvas domain.Canvas, cmds []domain.Command) error

	// ContentType is the media type of the rendered output.
	ContentType() string
}

package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Style picks the glamour style for w: "notty" unless w is a terminal and
// plain output was not requested.
func Style(w io.Writer, plain bool) string {
	if plain || !IsTerminal(w) {
		return "notty"
	}
	return ""
}

// Package output renders command results for terminals, scripts and agents.
//
// Output adapts to the environment: an interactive terminal gets styled
// text, anything else gets Markdown unless a format is requested.
package output

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
	ModeYAML     OutputMode = "yaml"
)

// Mode converts a config value into an OutputMode. Unknown and empty
// values mean ModeAuto; "md" is accepted for Markdown.
func Mode(s string) OutputMode {
	switch m := OutputMode(s); m {
	case ModeText, ModeMarkdown, ModeJSON, ModeCSV, ModeYAML:
		return m
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

// Modes lists every output mode, for flag completion.
func Modes() []string {
	return []string{
		string(ModeAuto), string(ModeText), string(ModeMarkdown),
		string(ModeJSON), string(ModeCSV), string(ModeYAML),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	isTTY   bool
	mode    OutputMode
	styles  styles
	printer *message.Printer
}

type styles struct {
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Colors are only emitted when isTTY is true and the environment allows them.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if isTTY {
		lr.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
		styles: styles{
			header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			success: lr.NewStyle().Foreground(lipgloss.Color("10")),
			warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
			err:     lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		},
		printer: message.NewPrinter(language.English),
	}
}

// Mode returns the configured mode.
func (r *Renderer) Mode() OutputMode {
	return r.mode
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// EffectiveMode resolves ModeAuto: text on a terminal, Markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Structured reports whether the effective mode is a machine format
// (JSON, CSV or YAML) that must not be mixed with prose.
func (r *Renderer) Structured() bool {
	switch r.EffectiveMode() {
	case ModeJSON, ModeCSV, ModeYAML:
		return true
	}
	return false
}

// Out returns the standard output writer.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header. It is omitted in structured modes.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeText:
		r.Println(r.styles.header.Render(text))
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
		r.Println("")
	}
}

// Success writes a status line to standard error.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.success.Render("✓ "+msg))
}

// Warning writes a warning to standard error.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.warning.Render("! "+msg))
}

// Error writes an error to standard error.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.err.Render("✗ "+msg))
}

// Muted styles secondary text.
func (r *Renderer) Muted(text string) string {
	return r.styles.muted.Render(text)
}

// Count formats n with thousands separators.
func (r *Renderer) Count(n int) string {
	return r.printer.Sprintf("%d", n)
}

// Rows formats a row count, e.g. "1,204 rows".
func (r *Renderer) Rows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return r.Count(n) + " rows"
}

// FormatHeader returns a Markdown header of the given level.
func FormatHeader(level int, text string) string {
	level = max(1, min(level, 6))
	return strings.Repeat("#", level) + " " + text
}

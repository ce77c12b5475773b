// Package output provides consistent CLI output formatting. Icons and
// colors degrade automatically when stdout is not a terminal, so piped
// output stays plain ASCII.
package output

import (
	"fmt"
	"io"

	"github.com/abcdqfr/AppImgMon/internal/ui"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles ui.Styles
	ascii  bool
}

// New creates a Writer with terminal capabilities detected from out.
func New(out io.Writer) *Writer {
	tty := ui.IsTTY(out)
	noColor := !tty || ui.DetectNoColor() || ui.DetectCI()
	return &Writer{
		out:    out,
		styles: ui.GetStyles(noColor),
		ascii:  !tty,
	}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.icon("✅", "[ok]"), w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.icon("⚠️ ", "[warn]"), w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.icon("❌", "[fail]"), w.styles.Error.Render(msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a section header.
func (w *Writer) Header(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// KeyValue prints an indented label: value line.
func (w *Writer) KeyValue(key, value string) {
	_, _ = fmt.Fprintf(w.out, "  %s %s\n", w.styles.Label.Render(key+":"), value)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

func (w *Writer) icon(emoji, plain string) string {
	if w.ascii {
		return plain
	}
	return emoji
}

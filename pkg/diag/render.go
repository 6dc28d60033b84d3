package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Options controls how diagnostics are rendered
type Options struct {
	Color bool
}

// Render writes a one-line diagnostic for err followed, when err carries a
// position, by the offending source line and a caret under the column.
func Render(w io.Writer, filename, src string, err error, opts Options) {
	if err == nil {
		return
	}
	label := color.New(color.FgRed, color.Bold)
	caret := color.New(color.FgGreen, color.Bold)
	if opts.Color {
		label.EnableColor()
		caret.EnableColor()
	} else {
		label.DisableColor()
		caret.DisableColor()
	}

	var de *Error
	if !errors.As(err, &de) {
		fmt.Fprintf(w, "%s: %s %s\n", filename, label.Sprint("error:"), err)
		return
	}

	fmt.Fprintf(w, "%s:%d:%d: %s %s\n", filename, de.Line, de.Column, label.Sprint("error:"), de.Msg)

	line, ok := sourceLine(src, de.Line)
	if !ok {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)
	fmt.Fprintf(w, "  %s%s\n", caretPadding(line, de.Column), caret.Sprint("^"))
}

// sourceLine returns the 1-based line n of src without its terminator.
func sourceLine(src string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// caretPadding returns the whitespace that lines a caret up under byte
// column col of line. Tabs are kept so the terminal expands them the same
// way in both rows; wide runes take their display width.
func caretPadding(line string, col int) string {
	end := col - 1
	if end < 0 {
		end = 0
	}
	if end > len(line) {
		end = len(line)
	}
	var b strings.Builder
	for _, r := range line[:end] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

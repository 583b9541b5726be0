package compositor

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StringWidth returns the display width of s. Escape sequences count as
// zero columns.
func StringWidth(s string) int {
	return ansi.StringWidth(s)
}

// MeasureText returns the width of the widest line and the number of lines.
// Embedded escape sequences do not contribute to the width.
func MeasureText(s string) (w, h int) {
	if s == "" {
		return 0, 0
	}
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		w = max(w, ansi.StringWidth(line))
	}
	return w, len(lines)
}

// Strip removes escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Truncate shortens s to at most width columns, keeping escape sequences
// intact and appending tail when something was cut.
func Truncate(s string, width int, tail string) string {
	return ansi.Truncate(s, width, tail)
}

package compositor

import (
	"fmt"
	"strconv"
	"strings"
)

// ANSI escape sequences.
const (
	ANSIEscape       = "\x1b["
	ANSIClearScreen  = "\x1b[2J"
	ANSIClearLine    = "\x1b[2K"
	ANSIClearToEOL   = "\x1b[K"
	ANSICursorHome   = "\x1b[H"
	ANSICursorHide   = "\x1b[?25l"
	ANSICursorShow   = "\x1b[?25h"
	ANSIReset        = "\x1b[0m"
	ANSIAltScreen    = "\x1b[?1049h"
	ANSIMainScreen   = "\x1b[?1049l"
	ANSIWrapOff      = "\x1b[?7l"
	ANSIWrapOn       = "\x1b[?7h"
)

// CursorTo returns ANSI sequence to move cursor to (x, y).
// Coordinates are 0-indexed, but ANSI uses 1-indexed.
func CursorTo(x, y int) string {
	return fmt.Sprintf("\x1b[%d;%dH", y+1, x+1)
}

// CursorUp moves cursor up n lines.
func CursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dA", n)
}

// CursorDown moves cursor down n lines.
func CursorDown(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dB", n)
}

var attrCodes = [...]struct {
	mask AttrMask
	code string
}{
	{AttrBold, "1"},
	{AttrDim, "2"},
	{AttrItalic, "3"},
	{AttrUnderline, "4"},
	{AttrBlink, "5"},
	{AttrReverse, "7"},
	{AttrStrikethrough, "9"},
}

// StyleToANSI converts a Style to a single SGR sequence. The sequence always
// starts with a reset so it does not depend on the previous style.
func StyleToANSI(s Style) string {
	if s.IsZero() {
		return ANSIReset
	}
	parts := []string{"0"}
	for _, ac := range attrCodes {
		if s.Has(ac.mask) {
			parts = append(parts, ac.code)
		}
	}
	parts = append(parts, colorToANSI(s.FG, true)...)
	parts = append(parts, colorToANSI(s.BG, false)...)
	return ANSIEscape + strings.Join(parts, ";") + "m"
}

// colorToANSI converts a Color to ANSI SGR parameters. None emits nothing
// because the leading reset already restored the default.
func colorToANSI(c Color, fg bool) []string {
	switch c.Mode {
	case ColorModeDefault:
		if fg {
			return []string{"39"}
		}
		return []string{"49"}

	case ColorMode16:
		idx := int(c.Value)
		base := 30
		if !fg {
			base = 40
		}
		if idx >= 8 {
			base += 60
			idx -= 8
		}
		return []string{strconv.Itoa(base + idx)}

	case ColorMode256:
		lead := "38"
		if !fg {
			lead = "48"
		}
		return []string{lead, "5", strconv.Itoa(int(c.Value))}

	case ColorModeRGB:
		lead := "38"
		if !fg {
			lead = "48"
		}
		r := (c.Value >> 16) & 0xFF
		g := (c.Value >> 8) & 0xFF
		b := c.Value & 0xFF
		return []string{lead, "2", strconv.Itoa(int(r)), strconv.Itoa(int(g)), strconv.Itoa(int(b))}
	}
	return nil
}

// EncodeCells renders a row of cells to its stable escape representation:
// an SGR sequence precedes each run of equally styled cells and
// continuation cells are skipped. The result carries no trailing reset.
func EncodeCells(cells []Cell) string {
	var b strings.Builder
	b.Grow(len(cells) + 16)
	var cur Style
	for _, c := range cells {
		if c.IsContinuation() {
			continue
		}
		if c.Style != cur {
			b.WriteString(StyleToANSI(c.Style))
			cur = c.Style
		}
		if c.Rune == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}

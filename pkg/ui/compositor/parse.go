package compositor

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// FromANSI lays out text containing SGR escape sequences (as produced by
// lipgloss, glamour or EncodeCells). SGR sequences set the style of the
// following cells; other CSI and OSC sequences are skipped. Escapes occupy
// no columns. Rows are padded to the widest line.
func FromANSI(s string) *Frame {
	var (
		rows  [][]Cell
		row   []Cell
		style Style
		w     int
	)
	flush := func() {
		w = max(w, len(row))
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == 0x1b:
			i = consumeEscape(s, i, &style)
		case c == '\n':
			flush()
			i++
		case c == '\r':
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			row = appendRune(row, r, style)
			i += size
		}
	}
	flush()
	return fromRows(rows, w, Blank(DefaultStyle()))
}

// consumeEscape skips the escape sequence starting at s[i], applying it to
// style when it is an SGR sequence, and returns the index after it.
func consumeEscape(s string, i int, style *Style) int {
	if i+1 >= len(s) {
		return len(s)
	}
	switch s[i+1] {
	case '[':
		j := i + 2
		for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
			j++
		}
		if j >= len(s) {
			return len(s)
		}
		if s[j] == 'm' {
			applySGR(style, s[i+2:j])
		}
		return j + 1
	case ']':
		// OSC, terminated by BEL or ST.
		for j := i + 2; j < len(s); j++ {
			if s[j] == 0x07 {
				return j + 1
			}
			if s[j] == 0x1b && j+1 < len(s) && s[j+1] == '\\' {
				return j + 2
			}
		}
		return len(s)
	default:
		return i + 2
	}
}

func applySGR(style *Style, params string) {
	if params == "" {
		*style = Style{}
		return
	}
	fields := strings.FieldsFunc(params, func(r rune) bool { return r == ';' || r == ':' })
	nums := make([]int, len(fields))
	for k, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = -1
		}
		nums[k] = n
	}

	for k := 0; k < len(nums); k++ {
		n := nums[k]
		switch {
		case n == 0:
			*style = Style{}
		case n == 1:
			style.Attrs |= AttrBold
		case n == 2:
			style.Attrs |= AttrDim
		case n == 3:
			style.Attrs |= AttrItalic
		case n == 4:
			style.Attrs |= AttrUnderline
		case n == 5:
			style.Attrs |= AttrBlink
		case n == 7:
			style.Attrs |= AttrReverse
		case n == 9:
			style.Attrs |= AttrStrikethrough
		case n == 22:
			style.Attrs &^= AttrBold | AttrDim
		case n == 23:
			style.Attrs &^= AttrItalic
		case n == 24:
			style.Attrs &^= AttrUnderline
		case n == 25:
			style.Attrs &^= AttrBlink
		case n == 27:
			style.Attrs &^= AttrReverse
		case n == 29:
			style.Attrs &^= AttrStrikethrough
		case n >= 30 && n <= 37:
			style.FG = Color16(uint8(n - 30))
		case n >= 90 && n <= 97:
			style.FG = Color16(uint8(n - 90 + 8))
		case n >= 40 && n <= 47:
			style.BG = Color16(uint8(n - 40))
		case n >= 100 && n <= 107:
			style.BG = Color16(uint8(n - 100 + 8))
		case n == 39:
			style.FG = ColorNone
		case n == 49:
			style.BG = ColorNone
		case n == 38 || n == 48:
			c, used := extendedColor(nums[k+1:])
			k += used
			if n == 38 {
				style.FG = c
			} else {
				style.BG = c
			}
		}
	}
}

// extendedColor parses the arguments after 38/48 and returns the color and
// how many arguments it consumed.
func extendedColor(args []int) (Color, int) {
	if len(args) >= 2 && args[0] == 5 {
		return Color256(uint8(args[1])), 2
	}
	if len(args) >= 4 && args[0] == 2 {
		return RGB(uint8(args[1]), uint8(args[2]), uint8(args[3])), 4
	}
	return ColorNone, len(args)
}

// Package compositor implements the frame buffer and its pure composition
// operations: horizontal and vertical append, aligned overlay, background
// fill and padding. It also owns the SGR codec that turns styled cells into
// a stable escape-sequence representation and back.
package compositor

// ColorMode defines how a color is represented.
type ColorMode uint8

const (
	// ColorModeNone means no color; the cell inherits whatever is beneath it
	// and FillBackground may paint it.
	ColorModeNone ColorMode = iota
	// ColorModeDefault pins the terminal default color.
	ColorModeDefault
	// ColorMode16 uses basic 16 ANSI colors (0-15).
	ColorMode16
	// ColorMode256 uses extended 256 color palette.
	ColorMode256
	// ColorModeRGB uses 24-bit true color.
	ColorModeRGB
)

// Color represents a terminal color. The compositor stores and forwards
// colors; it never interprets them beyond encoding.
type Color struct {
	Mode  ColorMode
	Value uint32 // For 16/256: color index, For RGB: 0xRRGGBB
}

// Pre-defined colors for convenience.
var (
	ColorNone    = Color{Mode: ColorModeNone}
	ColorDefault = Color{Mode: ColorModeDefault}

	ColorBlack   = Color{Mode: ColorMode16, Value: 0}
	ColorRed     = Color{Mode: ColorMode16, Value: 1}
	ColorGreen   = Color{Mode: ColorMode16, Value: 2}
	ColorYellow  = Color{Mode: ColorMode16, Value: 3}
	ColorBlue    = Color{Mode: ColorMode16, Value: 4}
	ColorMagenta = Color{Mode: ColorMode16, Value: 5}
	ColorCyan    = Color{Mode: ColorMode16, Value: 6}
	ColorWhite   = Color{Mode: ColorMode16, Value: 7}

	ColorBrightBlack = Color{Mode: ColorMode16, Value: 8}
	ColorBrightWhite = Color{Mode: ColorMode16, Value: 15}
)

// Color16 creates a basic palette color (0-15).
func Color16(index uint8) Color {
	return Color{Mode: ColorMode16, Value: uint32(index & 0x0F)}
}

// Color256 creates a 256-palette color (0-255).
func Color256(index uint8) Color {
	return Color{Mode: ColorMode256, Value: uint32(index)}
}

// RGB creates a 24-bit true color.
func RGB(r, g, b uint8) Color {
	return Color{Mode: ColorModeRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}
}

// Hex creates a color from hex value (0xRRGGBB).
func Hex(hex uint32) Color {
	return Color{Mode: ColorModeRGB, Value: hex & 0xFFFFFF}
}

// IsSet reports whether the color carries a value (anything but None).
func (c Color) IsSet() bool {
	return c.Mode != ColorModeNone
}

// AttrMask represents text attributes.
type AttrMask uint16

// Attribute flags
const (
	AttrBold AttrMask = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// Style defines visual attributes for a cell. The zero Style has no colors
// and no attributes.
type Style struct {
	FG    Color
	BG    Color
	Attrs AttrMask
}

// DefaultStyle returns a style with no colors and no attributes.
func DefaultStyle() Style {
	return Style{}
}

// WithFG returns a copy with foreground color set.
func (s Style) WithFG(c Color) Style {
	s.FG = c
	return s
}

// WithBG returns a copy with background color set.
func (s Style) WithBG(c Color) Style {
	s.BG = c
	return s
}

// With returns a copy with the attribute turned on or off.
func (s Style) With(a AttrMask, on bool) Style {
	if on {
		s.Attrs |= a
	} else {
		s.Attrs &^= a
	}
	return s
}

// WithBold returns a copy with bold set.
func (s Style) WithBold(b bool) Style { return s.With(AttrBold, b) }

// WithDim returns a copy with dim set.
func (s Style) WithDim(d bool) Style { return s.With(AttrDim, d) }

// WithItalic returns a copy with italic set.
func (s Style) WithItalic(i bool) Style { return s.With(AttrItalic, i) }

// WithUnderline returns a copy with underline set.
func (s Style) WithUnderline(u bool) Style { return s.With(AttrUnderline, u) }

// WithReverse returns a copy with reverse set.
func (s Style) WithReverse(r bool) Style { return s.With(AttrReverse, r) }

// Has reports whether the attribute is on.
func (s Style) Has(a AttrMask) bool {
	return s.Attrs&a != 0
}

// IsZero reports whether the style is the zero style.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Equal compares two styles for equality.
func (s Style) Equal(other Style) bool {
	return s == other
}

// Cell represents a single character cell.
type Cell struct {
	Rune  rune
	Width uint8 // 1 for most, 2 for wide lead cells, 0 for continuation
	Style Style
}

// Blank returns a one-column space in the given style.
func Blank(style Style) Cell {
	return Cell{Rune: ' ', Width: 1, Style: style}
}

// IsContinuation reports whether the cell is the trailing half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Equal compares two cells for equality.
func (c Cell) Equal(other Cell) bool {
	return c == other
}

package compositor

import (
	"strings"

	"github.com/mattn/go-runewidth"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Frame is a rectangular grid of styled cells. Every row has exactly Width
// columns; composition never produces ragged rows.
//
// Frames returned from the composition functions are fresh values. Leaf
// views may mutate a frame they built with Set/SetString before returning
// it; after that it is treated as immutable.
type Frame struct {
	width int
	rows  [][]Cell
}

// NewFrame returns a w×h frame filled with blanks in the given style.
// Negative dimensions are a programming error.
func NewFrame(w, h int, style Style) *Frame {
	if w < 0 || h < 0 {
		lerrors.Panic(lerrors.ErrCodeInvalidFrame, "frame dimensions %dx%d", w, h)
	}
	if w == 0 || h == 0 {
		return &Frame{width: w, rows: make([][]Cell, h)}
	}
	f := &Frame{width: w, rows: make([][]Cell, h)}
	blank := Blank(style)
	for y := range f.rows {
		row := make([]Cell, w)
		for x := range row {
			row[x] = blank
		}
		f.rows[y] = row
	}
	return f
}

// Empty returns the 0×0 frame, the identity element for appends.
func Empty() *Frame {
	return &Frame{}
}

// FromText lays out plain text, one row per line, padded to the widest line.
func FromText(s string, style Style) *Frame {
	lines := strings.Split(s, "\n")
	rows := make([][]Cell, len(lines))
	w := 0
	for i, line := range lines {
		rows[i] = textCells(line, style)
		w = max(w, len(rows[i]))
	}
	return fromRows(rows, w, Blank(DefaultStyle()))
}

// fromRows adopts rows, padding each to width w with pad.
func fromRows(rows [][]Cell, w int, pad Cell) *Frame {
	for i, row := range rows {
		for len(row) < w {
			row = append(row, pad)
		}
		rows[i] = row
	}
	return &Frame{width: w, rows: rows}
}

// textCells converts a line of text into cells. Wide runes produce a lead
// cell followed by a continuation; zero-width runes are dropped.
func textCells(line string, style Style) []Cell {
	cells := make([]Cell, 0, len(line))
	for _, r := range line {
		cells = appendRune(cells, r, style)
	}
	return cells
}

func appendRune(cells []Cell, r rune, style Style) []Cell {
	if r == '\t' {
		n := tabWidth - len(cells)%tabWidth
		for i := 0; i < n; i++ {
			cells = append(cells, Blank(style))
		}
		return cells
	}
	if r < 0x20 || r == 0x7f {
		return cells
	}
	switch runewidth.RuneWidth(r) {
	case 0:
		return cells
	case 2:
		return append(cells,
			Cell{Rune: r, Width: 2, Style: style},
			Cell{Rune: 0, Width: 0, Style: style})
	default:
		return append(cells, Cell{Rune: r, Width: 1, Style: style})
	}
}

const tabWidth = 4

// Width returns the number of columns.
func (f *Frame) Width() int {
	if f == nil {
		return 0
	}
	return f.width
}

// Height returns the number of rows.
func (f *Frame) Height() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// IsEmpty reports whether the frame has no cells.
func (f *Frame) IsEmpty() bool {
	return f.Width() == 0 || f.Height() == 0
}

// IsZero reports whether the frame is 0×0. Only a zero frame is an
// identity for appends; a 0×h frame still contributes its height.
func (f *Frame) IsZero() bool {
	return f.Width() == 0 && f.Height() == 0
}

// At returns the cell at (x, y), or a blank cell when out of bounds.
func (f *Frame) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= f.Width() || y >= f.Height() {
		return Blank(DefaultStyle())
	}
	return f.rows[y][x]
}

// Row returns row y. The slice aliases the frame and must not be modified.
func (f *Frame) Row(y int) []Cell {
	if y < 0 || y >= f.Height() {
		return nil
	}
	return f.rows[y]
}

// Set writes a cell at (x, y). Out-of-bounds writes are dropped. Writing
// over half of a wide rune blanks the other half.
func (f *Frame) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= f.Width() || y >= f.Height() {
		return
	}
	row := f.rows[y]
	if row[x].Width == 2 && x+1 < f.width {
		row[x+1] = Blank(row[x+1].Style)
	}
	if row[x].IsContinuation() && x > 0 {
		row[x-1] = Blank(row[x-1].Style)
	}
	if c.Width == 2 {
		if x+1 >= f.width {
			row[x] = Blank(c.Style)
			return
		}
		if row[x+1].Width == 2 && x+2 < f.width {
			row[x+2] = Blank(row[x+2].Style)
		}
		row[x+1] = Cell{Rune: 0, Width: 0, Style: c.Style}
	}
	row[x] = c
}

// SetString writes text starting at (x, y) and returns the columns consumed.
// Text is clipped to the frame.
func (f *Frame) SetString(x, y int, s string, style Style) int {
	col := x
	for _, c := range textCells(s, style) {
		if c.IsContinuation() {
			col++
			continue
		}
		f.Set(col, y, c)
		col++
	}
	return col - x
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return Empty()
	}
	out := &Frame{width: f.width, rows: make([][]Cell, len(f.rows))}
	for y, row := range f.rows {
		out.rows[y] = append([]Cell(nil), row...)
	}
	return out
}

// RowString returns the stable escape-sequence encoding of row y.
func (f *Frame) RowString(y int) string {
	return EncodeCells(f.Row(y))
}

// Lines returns the plain text of every row, without styles.
func (f *Frame) Lines() []string {
	out := make([]string, f.Height())
	for y := range out {
		var b strings.Builder
		for _, c := range f.rows[y] {
			if c.IsContinuation() {
				continue
			}
			if c.Rune == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteRune(c.Rune)
			}
		}
		out[y] = b.String()
	}
	return out
}

// String returns the plain text of the frame joined by newlines.
func (f *Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

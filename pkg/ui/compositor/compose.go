package compositor

import lerrors "github.com/odvcencio/lattice/pkg/errors"

// HAlign positions content horizontally.
type HAlign uint8

const (
	HAlignLeading HAlign = iota
	HAlignCenter
	HAlignTrailing
)

// VAlign positions content vertically.
type VAlign uint8

const (
	VAlignTop VAlign = iota
	VAlignCenter
	VAlignBottom
)

// Alignment combines horizontal and vertical placement.
type Alignment struct {
	H HAlign
	V VAlign
}

// Common alignments.
var (
	AlignTopLeading     = Alignment{HAlignLeading, VAlignTop}
	AlignTop            = Alignment{HAlignCenter, VAlignTop}
	AlignTopTrailing    = Alignment{HAlignTrailing, VAlignTop}
	AlignLeading        = Alignment{HAlignLeading, VAlignCenter}
	AlignCenter         = Alignment{HAlignCenter, VAlignCenter}
	AlignTrailing       = Alignment{HAlignTrailing, VAlignCenter}
	AlignBottomLeading  = Alignment{HAlignLeading, VAlignBottom}
	AlignBottom         = Alignment{HAlignCenter, VAlignBottom}
	AlignBottomTrailing = Alignment{HAlignTrailing, VAlignBottom}
)

// Offset shifts overlay content after alignment.
type Offset struct {
	X, Y int
}

// Edges are per-side padding amounts.
type Edges struct {
	Top, Right, Bottom, Left int
}

// EdgesAll returns equal padding on every side.
func EdgesAll(n int) Edges {
	return Edges{n, n, n, n}
}

// EdgesXY returns horizontal padding h and vertical padding v.
func EdgesXY(h, v int) Edges {
	return Edges{Top: v, Right: h, Bottom: v, Left: h}
}

func place(outer, inner int, pos int) int {
	switch pos {
	case 1:
		return (outer - inner) / 2
	case 2:
		return outer - inner
	}
	return 0
}

// HAppend places b to the right of a with spacing blank columns between them.
// The result is max(a.H, b.H) tall and a.W+b.W+spacing wide; shorter operands
// are padded with blank rows. A 0×0 operand yields the other unchanged.
func HAppend(a, b *Frame, spacing int) *Frame {
	return HAppendAligned(a, b, spacing, VAlignTop)
}

// HAppendAligned is HAppend with vertical alignment of the shorter operand.
func HAppendAligned(a, b *Frame, spacing int, align VAlign) *Frame {
	if spacing < 0 {
		lerrors.Panic(lerrors.ErrCodeInvalidFrame, "negative spacing %d", spacing)
	}
	if a.IsZero() {
		return b.Clone()
	}
	if b.IsZero() {
		return a.Clone()
	}
	h := max(a.Height(), b.Height())
	out := NewFrame(a.Width()+spacing+b.Width(), h, DefaultStyle())
	blit(out, a, 0, place(h, a.Height(), int(align)))
	blit(out, b, a.Width()+spacing, place(h, b.Height(), int(align)))
	return out
}

// VAppend places b below a with spacing blank rows between them. The result
// is max(a.W, b.W) wide; narrower rows are padded with blanks.
func VAppend(a, b *Frame, spacing int) *Frame {
	return VAppendAligned(a, b, spacing, HAlignLeading)
}

// VAppendAligned is VAppend with horizontal alignment of the narrower operand.
func VAppendAligned(a, b *Frame, spacing int, align HAlign) *Frame {
	if spacing < 0 {
		lerrors.Panic(lerrors.ErrCodeInvalidFrame, "negative spacing %d", spacing)
	}
	if a.IsZero() {
		return b.Clone()
	}
	if b.IsZero() {
		return a.Clone()
	}
	w := max(a.Width(), b.Width())
	out := NewFrame(w, a.Height()+spacing+b.Height(), DefaultStyle())
	blit(out, a, place(w, a.Width(), int(align)), 0)
	blit(out, b, place(w, b.Width(), int(align)), a.Height()+spacing)
	return out
}

// Overlay draws top over base, positioned by alignment and then shifted by
// offset. The result has base's dimensions; anything outside is clipped.
// Top cells without a background keep the background beneath them.
func Overlay(base, top *Frame, align Alignment, off Offset) *Frame {
	out := base.Clone()
	if top.IsEmpty() || out.IsEmpty() {
		return out
	}
	x0 := place(out.Width(), top.Width(), int(align.H)) + off.X
	y0 := place(out.Height(), top.Height(), int(align.V)) + off.Y
	for y := 0; y < top.Height(); y++ {
		ty := y0 + y
		if ty < 0 || ty >= out.Height() {
			continue
		}
		for x, c := range top.rows[y] {
			tx := x0 + x
			if c.IsContinuation() || tx < 0 || tx >= out.Width() {
				continue
			}
			if !c.Style.BG.IsSet() {
				c.Style.BG = out.rows[ty][tx].Style.BG
			}
			out.Set(tx, ty, c)
		}
	}
	return out
}

// FillBackground paints color into every cell that has no background.
func FillBackground(f *Frame, color Color) *Frame {
	out := f.Clone()
	for _, row := range out.rows {
		for x := range row {
			if !row[x].Style.BG.IsSet() {
				row[x].Style.BG = color
			}
		}
	}
	return out
}

// Pad surrounds f with blank cells.
func Pad(f *Frame, e Edges) *Frame {
	if e.Top < 0 || e.Right < 0 || e.Bottom < 0 || e.Left < 0 {
		lerrors.Panic(lerrors.ErrCodeInvalidFrame, "negative padding %+v", e)
	}
	out := NewFrame(f.Width()+e.Left+e.Right, f.Height()+e.Top+e.Bottom, DefaultStyle())
	blit(out, f, e.Left, e.Top)
	return out
}

// Place sizes f to exactly w×h, aligning it inside the new bounds and
// clipping anything that does not fit.
func Place(f *Frame, w, h int, align Alignment) *Frame {
	if f.Width() == w && f.Height() == h {
		return f.Clone()
	}
	out := NewFrame(w, h, DefaultStyle())
	if out.IsEmpty() {
		return out
	}
	blit(out, f, place(w, f.Width(), int(align.H)), place(h, f.Height(), int(align.V)))
	return out
}

// Clip crops f to at most w×h, anchored at the top-left.
func Clip(f *Frame, w, h int) *Frame {
	if f.Width() <= w && f.Height() <= h {
		return f.Clone()
	}
	return Place(f, min(w, f.Width()), min(h, f.Height()), AlignTopLeading)
}

// blit copies src into dst at (x0, y0), clipping to dst.
func blit(dst, src *Frame, x0, y0 int) {
	for y := 0; y < src.Height(); y++ {
		ty := y0 + y
		if ty < 0 || ty >= dst.Height() {
			continue
		}
		for x, c := range src.rows[y] {
			tx := x0 + x
			if c.IsContinuation() || tx < 0 || tx >= dst.Width() {
				continue
			}
			dst.Set(tx, ty, c)
		}
	}
}

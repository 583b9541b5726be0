package view

import "github.com/odvcencio/lattice/pkg/ui/compositor"

// Text renders s verbatim in the default style, one row per line.
func Text(s string) Leaf {
	return StyledText(s, compositor.DefaultStyle())
}

// StyledText renders s verbatim in style.
func StyledText(s string, style compositor.Style) Leaf {
	return Leaf{Tag: "Text", Render: func(*Context) *compositor.Frame {
		return compositor.FromText(s, style)
	}}
}

// Raw renders text carrying SGR escapes, such as the output of an external
// styling library.
func Raw(s string) Leaf {
	return Leaf{Tag: "Raw", Render: func(*Context) *compositor.Frame {
		return compositor.FromANSI(s)
	}}
}

// Spacer fills the proposed width with n blank rows.
func Spacer(n int) Leaf {
	return Leaf{Tag: "Spacer", Render: func(ctx *Context) *compositor.Frame {
		return compositor.NewFrame(ctx.Width(), max(n, 0), compositor.DefaultStyle())
	}}
}

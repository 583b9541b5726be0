package widgets

import (
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Paragraph is text reflowed to the proposed width.
type Paragraph struct {
	Text string
	// Style overrides the theme's primary text style.
	Style *compositor.Style
}

// View builds the paragraph view.
func (p Paragraph) View() view.View {
	return view.Leaf{Tag: "Paragraph", Render: func(c *view.Context) *compositor.Frame {
		st := theme.Current(c).TextPrimary
		if p.Style != nil {
			st = *p.Style
		}
		return compositor.FromText(Wrap(p.Text, c.Width()), st)
	}}
}

// Wrap breaks s at word boundaries so no line exceeds width. Words longer
// than width are split. A width of zero or less leaves s alone.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

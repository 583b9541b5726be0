package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Label renders text through a lipgloss style. Borders, padding and colors
// the style produces become frame cells.
type Label struct {
	Text  string
	Style lipgloss.Style
}

// View builds the label view.
func (l Label) View() view.View {
	return view.Leaf{Tag: "Label", Render: func(c *view.Context) *compositor.Frame {
		st := l.Style
		if w := c.Width(); w > 0 {
			st = st.MaxWidth(w)
		}
		if h := c.Height(); h > 0 {
			st = st.MaxHeight(h)
		}
		return compositor.FromANSI(st.Render(l.Text))
	}}
}

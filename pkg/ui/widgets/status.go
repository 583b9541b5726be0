package widgets

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Status is a one-row bar spanning the proposed width, with text at both
// ends. The left text is truncated when both do not fit.
type Status struct {
	Left  string
	Right string
}

// View builds the status bar view.
func (s Status) View() view.View {
	return view.Leaf{Tag: "Status", Render: func(c *view.Context) *compositor.Frame {
		w := c.Width()
		if w <= 0 || c.Height() <= 0 {
			return nil
		}
		th := theme.Current(c)
		f := compositor.NewFrame(w, 1, th.Surface)

		right := ""
		if s.Right != "" {
			right = s.Right + " "
		}
		rw := compositor.StringWidth(right)
		if rw > w {
			right = compositor.Truncate(right, w, "")
			rw = compositor.StringWidth(right)
		}
		f.SetString(w-rw, 0, right, onBackground(th.TextSecondary, th.Surface))

		if room := w - rw - 2; room > 0 && s.Left != "" {
			left := compositor.Truncate(s.Left, room, "…")
			f.SetString(1, 0, left, onBackground(th.TextPrimary, th.Surface))
		}
		return f
	}}
}

package widgets

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Button runs OnPress when Enter or Space reaches it while focused. A
// disabled button registers but can never take focus.
type Button struct {
	ID       string
	Label    string
	Disabled bool
	OnPress  func()
}

// View builds the button view.
func (b Button) View() view.View {
	return view.Leaf{Tag: "Button", Render: func(c *view.Context) *compositor.Frame {
		c.Register(b.ID, !b.Disabled, func(ev terminal.KeyEvent) bool {
			if !activates(ev) {
				return false
			}
			if b.OnPress != nil {
				b.OnPress()
			}
			return true
		})
		th := theme.Current(c)
		st := controlStyle(th, th.Accent, c.IsFocused(b.ID), b.Disabled)
		return compositor.FromText("[ "+b.Label+" ]", st)
	}}
}

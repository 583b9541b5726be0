package widgets

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Toggle is a checkbox. Its value lives in the state cell at the toggle's
// path unless Value binds it to a caller-owned handle.
type Toggle struct {
	ID       string
	Label    string
	Initial  bool
	Value    *state.Handle[bool]
	Disabled bool
	OnChange func(bool)
}

// View builds the toggle view.
func (t Toggle) View() view.View {
	return view.Leaf{Tag: "Toggle", Render: func(c *view.Context) *compositor.Frame {
		h := view.UseState(c, 0, t.Initial)
		if t.Value != nil {
			h = *t.Value
		}
		c.Register(t.ID, !t.Disabled, func(ev terminal.KeyEvent) bool {
			if !activates(ev) {
				return false
			}
			v := !h.Get()
			h.Set(v)
			if t.OnChange != nil {
				t.OnChange(v)
			}
			return true
		})

		th := theme.Current(c)
		box := "[ ]"
		if h.Get() {
			box = "[" + theme.Symbols.Check + "]"
		}
		st := controlStyle(th, th.TextPrimary, c.IsFocused(t.ID), t.Disabled)
		return compositor.FromText(box+" "+t.Label, st)
	}}
}

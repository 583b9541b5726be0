// Package widgets provides reusable views. Each widget is a value type
// whose View method builds the view to place in a tree. Focusable widgets
// register under their ID, which must be unique within a focus section.
package widgets

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// activates reports whether ev presses the focused control.
func activates(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyEnter || ev.Is(' ', false)
}

// controlStyle picks the style of a focusable control.
func controlStyle(th *theme.Theme, base compositor.Style, focused, disabled bool) compositor.Style {
	switch {
	case disabled:
		return th.Disabled
	case focused:
		return th.Focused
	}
	return base
}

// onBackground lays st's foreground and attributes over bg's background.
func onBackground(st, bg compositor.Style) compositor.Style {
	if bg.BG.IsSet() {
		st = st.WithBG(bg.BG)
	}
	return st
}

package widgets

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// List is a scrolling single-selection list. Up and Down move the
// selection; at either end they fall through to focus navigation.
type List struct {
	ID    string
	Items []string
	// Rows caps the visible rows. Zero uses the proposed height.
	Rows     int
	OnSelect func(index int, item string)
}

const (
	listSelected = iota
	listOffset
)

// View builds the list view.
func (l List) View() view.View {
	return view.Leaf{Tag: "List", Render: func(c *view.Context) *compositor.Frame {
		sel := view.UseState(c, listSelected, 0)
		off := view.UseState(c, listOffset, 0)
		n := len(l.Items)

		rows := c.Height()
		if l.Rows > 0 && (rows <= 0 || l.Rows < rows) {
			rows = l.Rows
		}
		rows = min(rows, n)

		move := func(to int) bool {
			to = max(0, min(to, n-1))
			if to == sel.Get() {
				return false
			}
			sel.Set(to)
			return true
		}
		c.Register(l.ID, n > 0, func(ev terminal.KeyEvent) bool {
			cur := sel.Get()
			switch {
			case ev.Key == terminal.KeyUp || ev.Is('k', false):
				return move(cur - 1)
			case ev.Key == terminal.KeyDown || ev.Is('j', false):
				return move(cur + 1)
			case ev.Key == terminal.KeyHome:
				return move(0)
			case ev.Key == terminal.KeyEnd:
				return move(n - 1)
			case ev.Key == terminal.KeyPageUp:
				return move(cur - max(rows, 1))
			case ev.Key == terminal.KeyPageDown:
				return move(cur + max(rows, 1))
			case activates(ev):
				if l.OnSelect != nil && cur < n {
					l.OnSelect(cur, l.Items[cur])
				}
				return true
			}
			return false
		})
		if n == 0 || rows <= 0 {
			return nil
		}

		cur := max(0, min(sel.Get(), n-1))
		top := max(0, min(off.Get(), n-rows))
		switch {
		case cur < top:
			top = cur
		case cur >= top+rows:
			top = cur - rows + 1
		}
		if top != off.Get() {
			off.Set(top)
		}

		th := theme.Current(c)
		focused := c.IsFocused(l.ID)
		width := 0
		for _, it := range l.Items[top : top+rows] {
			width = max(width, compositor.StringWidth(it)+2)
		}
		if c.Width() > 0 {
			width = min(width, c.Width())
		}
		f := compositor.NewFrame(width, rows, compositor.DefaultStyle())
		for y := 0; y < rows; y++ {
			i := top + y
			prefix, st := "  ", th.TextPrimary
			if i == cur {
				prefix, st = theme.Symbols.Arrow+" ", th.Selection
				if focused {
					st = th.Focused
				}
				for x := 0; x < width; x++ {
					f.Set(x, y, compositor.Blank(st))
				}
			}
			f.SetString(0, y, prefix+l.Items[i], st)
		}
		return f
	}}
}

package focus

import "github.com/odvcencio/lattice/pkg/ui/terminal"

// Tab moves focus to the next capable element of the active section,
// wrapping at the end. It returns true if focus changed.
func (m *Manager) Tab() bool {
	return m.cycle(1)
}

// ShiftTab moves focus to the previous capable element, wrapping at the
// start.
func (m *Manager) ShiftTab() bool {
	return m.cycle(-1)
}

func (m *Manager) cycle(dir int) bool {
	s, ok := m.sections[m.active]
	if !ok || len(s.regs) == 0 {
		return false
	}
	n := len(s.regs)
	start := s.current()
	if start < 0 {
		if dir > 0 {
			start = -1
		} else {
			start = n
		}
	}
	for k := 1; k <= n; k++ {
		i := ((start+dir*k)%n + n) % n
		if s.regs[i].CanFocus {
			return m.setFocus(s, s.regs[i].ID)
		}
	}
	return false
}

// Up moves focus according to the active section's axis.
func (m *Manager) Up() bool { return m.move(terminal.KeyUp) }

// Down moves focus according to the active section's axis.
func (m *Manager) Down() bool { return m.move(terminal.KeyDown) }

// Left moves focus according to the active section's axis.
func (m *Manager) Left() bool { return m.move(terminal.KeyLeft) }

// Right moves focus according to the active section's axis.
func (m *Manager) Right() bool { return m.move(terminal.KeyRight) }

// move steps through the section without wrapping, skipping elements that
// cannot take focus. It returns false when the key does not apply to the
// axis or no capable element lies in that direction.
func (m *Manager) move(key terminal.Key) bool {
	s, ok := m.sections[m.active]
	if !ok || len(s.regs) == 0 {
		return false
	}
	step := directionStep(s.opts, key)
	if step == 0 {
		return false
	}
	cur := s.current()
	if cur < 0 {
		return m.cycle(sign(step))
	}
	cols := max(s.opts.Columns, 1)
	for i := cur + step; i >= 0 && i < len(s.regs); i += step {
		// Horizontal grid moves stay on the current row.
		if s.opts.Axis == AxisGrid && (step == 1 || step == -1) && i/cols != cur/cols {
			break
		}
		if s.regs[i].CanFocus {
			return m.setFocus(s, s.regs[i].ID)
		}
	}
	return false
}

func directionStep(opts SectionOptions, key terminal.Key) int {
	switch opts.Axis {
	case AxisVertical:
		switch key {
		case terminal.KeyUp:
			return -1
		case terminal.KeyDown:
			return 1
		}
	case AxisHorizontal:
		switch key {
		case terminal.KeyLeft:
			return -1
		case terminal.KeyRight:
			return 1
		}
	case AxisGrid:
		cols := max(opts.Columns, 1)
		switch key {
		case terminal.KeyLeft:
			return -1
		case terminal.KeyRight:
			return 1
		case terminal.KeyUp:
			return -cols
		case terminal.KeyDown:
			return cols
		}
	}
	return 0
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

// Dispatch delivers ev to the focused element of the active section, then
// to the section handler, then to the global handler. It returns true when
// one of them consumed the event.
func (m *Manager) Dispatch(ev terminal.KeyEvent) bool {
	if s, ok := m.sections[m.active]; ok {
		if i := s.current(); i >= 0 {
			if h := s.regs[i].Handler; h != nil && h(ev) {
				return true
			}
		}
		if h := s.opts.Handler; h != nil && h(ev) {
			return true
		}
	}
	if m.global != nil {
		return m.global(ev)
	}
	return false
}

// HandleNavigation applies the default focus keys: Tab, Shift+Tab (or
// BackTab) and the arrow keys. It returns true when focus moved.
func (m *Manager) HandleNavigation(ev terminal.KeyEvent) bool {
	switch ev.Key {
	case terminal.KeyTab:
		if ev.Shift {
			return m.ShiftTab()
		}
		return m.Tab()
	case terminal.KeyBacktab:
		return m.ShiftTab()
	case terminal.KeyUp, terminal.KeyDown, terminal.KeyLeft, terminal.KeyRight:
		return m.move(ev.Key)
	}
	return false
}

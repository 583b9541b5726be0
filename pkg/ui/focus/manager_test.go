package focus

import (
	"fmt"
	"testing"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

type elem struct {
	id      string
	enabled bool
}

// pass registers elems into section "main" as one render pass.
func pass(m *Manager, elems ...elem) {
	m.BeginPass()
	for _, e := range elems {
		m.Register("main", e.id, e.enabled, nil)
	}
	m.EndPass()
}

func focused(t *testing.T, m *Manager) string {
	t.Helper()
	id, _ := m.Focused()
	return id
}

func TestRegister_AutoFocusesFirstCapable(t *testing.T) {
	m := NewManager()
	if got := m.State("main"); got != Unregistered {
		t.Fatalf("State = %v, want unregistered", got)
	}

	pass(m, elem{"a", false}, elem{"b", true}, elem{"c", true})

	if got := focused(t, m); got != "b" {
		t.Errorf("focused = %q, want b", got)
	}
	if got := m.State("main"); got != Focused {
		t.Errorf("State = %v, want focused", got)
	}
	if m.ActiveSection() != "main" {
		t.Errorf("ActiveSection = %q", m.ActiveSection())
	}
}

func TestRegister_NoCapableStaysRegistered(t *testing.T) {
	m := NewManager()
	pass(m, elem{"a", false})
	if got := m.State("main"); got != Registered {
		t.Errorf("State = %v, want registered", got)
	}
	if m.Tab() {
		t.Error("Tab should not move when nothing is capable")
	}
}

func TestRegister_DuplicateFirstWins(t *testing.T) {
	m := NewManager()
	var hits []string

	m.BeginPass()
	m.Register("main", "a", true, func(terminal.KeyEvent) bool { hits = append(hits, "first"); return true })
	if m.Register("main", "a", true, func(terminal.KeyEvent) bool { hits = append(hits, "second"); return true }) {
		t.Error("duplicate register should return false")
	}
	m.EndPass()

	m.Dispatch(terminal.Char('x'))
	if len(hits) != 1 || hits[0] != "first" {
		t.Errorf("hits = %v, want [first]", hits)
	}
	if n := len(m.Registrations("main")); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestRegister_CrossSectionConflictPanics(t *testing.T) {
	m := NewManager()
	m.BeginPass()
	m.Register("left", "x", true, nil)

	defer func() {
		err := lerrors.FromPanic(recover())
		if !lerrors.IsCode(err, lerrors.ErrCodeFocusConflict) {
			t.Errorf("expected focus conflict panic, got %v", err)
		}
	}()
	m.Register("right", "x", true, nil)
}

func TestTab_SkipsDisabled(t *testing.T) {
	m := NewManager()
	pass(m, elem{"A", true}, elem{"B", false}, elem{"C", true})

	if got := focused(t, m); got != "A" {
		t.Fatalf("focused = %q, want A", got)
	}
	if !m.Tab() {
		t.Fatal("Tab should move")
	}
	if got := focused(t, m); got != "C" {
		t.Errorf("after Tab focused = %q, want C", got)
	}
	m.ShiftTab()
	if got := focused(t, m); got != "A" {
		t.Errorf("after ShiftTab focused = %q, want A", got)
	}
}

func TestTab_CycleClosure(t *testing.T) {
	for _, n := range []int{1, 2, 5, 8} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			m := NewManager()
			var elems []elem
			enabled := 0
			for i := 0; i < n*2; i++ {
				on := i%2 == 0
				if on {
					enabled++
				}
				elems = append(elems, elem{fmt.Sprintf("e%d", i), on})
			}
			pass(m, elems...)

			start := focused(t, m)
			visited := map[string]bool{}
			for i := 0; i < enabled; i++ {
				m.Tab()
				id := focused(t, m)
				visited[id] = true
				var idx int
				fmt.Sscanf(id, "e%d", &idx)
				if idx%2 != 0 {
					t.Fatalf("disabled element %s reached", id)
				}
			}
			if got := focused(t, m); got != start {
				t.Errorf("after %d tabs focused = %q, want %q", enabled, got, start)
			}
			if len(visited) != enabled {
				t.Errorf("visited %d elements, want %d", len(visited), enabled)
			}

			for i := 0; i < enabled; i++ {
				m.ShiftTab()
			}
			if got := focused(t, m); got != start {
				t.Errorf("after %d shift-tabs focused = %q, want %q", enabled, got, start)
			}
		})
	}
}

func TestEndPass_FocusPersistsAcrossReorder(t *testing.T) {
	m := NewManager()
	pass(m, elem{"a", true}, elem{"b", true}, elem{"c", true})
	m.Tab()

	pass(m, elem{"c", true}, elem{"b", true}, elem{"a", true})

	if got := focused(t, m); got != "b" {
		t.Errorf("focused = %q, want b", got)
	}
}

func TestEndPass_FocusFallsToNextWhenRemoved(t *testing.T) {
	m := NewManager()
	pass(m, elem{"a", true}, elem{"b", true}, elem{"c", true})
	m.Tab()

	pass(m, elem{"a", true}, elem{"c", true})
	if got := focused(t, m); got != "c" {
		t.Errorf("focused = %q, want c", got)
	}

	// Removing the last element wraps to the first.
	pass(m, elem{"a", true})
	if got := focused(t, m); got != "a" {
		t.Errorf("focused = %q, want a", got)
	}

	pass(m)
	if _, ok := m.Focused(); ok {
		t.Error("focus should clear when the section empties")
	}
	if got := m.State("main"); got != Unregistered {
		t.Errorf("State = %v, want unregistered", got)
	}
}

func TestEndPass_FocusFallsToNextWhenDisabled(t *testing.T) {
	m := NewManager()
	pass(m, elem{"a", true}, elem{"b", true}, elem{"c", true})
	m.Tab()

	pass(m, elem{"a", true}, elem{"b", false}, elem{"c", true})
	if got := focused(t, m); got != "c" {
		t.Errorf("focused = %q, want c", got)
	}

	// Re-enabling does not steal focus back, and b stays reachable.
	pass(m, elem{"a", true}, elem{"b", true}, elem{"c", true})
	m.ShiftTab()
	if got := focused(t, m); got != "b" {
		t.Errorf("focused = %q, want b", got)
	}
}

func TestDirectional_Vertical(t *testing.T) {
	m := NewManager()
	m.BeginPass()
	m.ConfigureSection("main", SectionOptions{Axis: AxisVertical})
	m.Register("main", "a", true, nil)
	m.Register("main", "b", false, nil)
	m.Register("main", "c", true, nil)
	m.EndPass()

	if m.Up() {
		t.Error("Up at the top should not move")
	}
	if m.Left() || m.Right() {
		t.Error("horizontal keys do not apply to a vertical section")
	}
	if !m.Down() || focused(t, m) != "c" {
		t.Errorf("Down should skip b and land on c, got %q", focused(t, m))
	}
	if m.Down() {
		t.Error("Down at the bottom should not wrap")
	}
}

func TestDirectional_Grid(t *testing.T) {
	m := NewManager()
	m.BeginPass()
	m.ConfigureSection("main", SectionOptions{Axis: AxisGrid, Columns: 3})
	for i := 0; i < 6; i++ {
		m.Register("main", fmt.Sprintf("g%d", i), true, nil)
	}
	m.EndPass()

	steps := []struct {
		move func() bool
		ok   bool
		want string
	}{
		{m.Right, true, "g1"},
		{m.Right, true, "g2"},
		{m.Right, false, "g2"},
		{m.Down, true, "g5"},
		{m.Down, false, "g5"},
		{m.Left, true, "g4"},
		{m.Up, true, "g1"},
		{m.Left, true, "g0"},
		{m.Left, false, "g0"},
	}
	for i, s := range steps {
		if ok := s.move(); ok != s.ok {
			t.Errorf("step %d: moved = %v, want %v", i, ok, s.ok)
		}
		if got := focused(t, m); got != s.want {
			t.Errorf("step %d: focused = %q, want %q", i, got, s.want)
		}
	}
}

func TestActivateSection(t *testing.T) {
	m := NewManager()
	m.BeginPass()
	m.Register("left", "l1", true, nil)
	m.Register("right", "r1", true, nil)
	m.Register("right", "r2", true, nil)
	m.EndPass()

	if m.ActiveSection() != "left" {
		t.Fatalf("ActiveSection = %q, want left", m.ActiveSection())
	}
	if !m.ActivateSection("right") {
		t.Fatal("ActivateSection(right) = false")
	}
	m.Tab()
	if got := focused(t, m); got != "r2" {
		t.Errorf("focused = %q, want r2", got)
	}

	m.ActivateSection("left")
	m.ActivateSection("right")
	if got := focused(t, m); got != "r2" {
		t.Errorf("remembered focus lost: %q", got)
	}
	if m.ActivateSection("nope") {
		t.Error("unknown section should not activate")
	}
}

func TestClearAll(t *testing.T) {
	m := NewManager()
	var changes []string
	m.OnChange(func(section, from, to string) {
		changes = append(changes, section+":"+from+">"+to)
	})
	pass(m, elem{"a", true})

	m.ClearAll()

	if _, ok := m.Focused(); ok {
		t.Error("focus should be cleared")
	}
	if len(m.Sections()) != 0 || m.ActiveSection() != "" {
		t.Error("sections should be reset")
	}
	want := []string{"main:>a", "main:a>"}
	if fmt.Sprint(changes) != fmt.Sprint(want) {
		t.Errorf("changes = %v, want %v", changes, want)
	}

	pass(m, elem{"b", true})
	if got := focused(t, m); got != "b" {
		t.Errorf("focused = %q, want b", got)
	}
}

func TestDispatch_Order(t *testing.T) {
	m := NewManager()
	var trail []string
	handler := func(name string, consume bool) Handler {
		return func(terminal.KeyEvent) bool {
			trail = append(trail, name)
			return consume
		}
	}

	m.BeginPass()
	m.ConfigureSection("main", SectionOptions{Handler: handler("section", false)})
	m.Register("main", "a", true, handler("element", false))
	m.EndPass()
	m.SetGlobalHandler(handler("global", true))

	if !m.Dispatch(terminal.Char('x')) {
		t.Error("global handler consumed the event")
	}
	if fmt.Sprint(trail) != "[element section global]" {
		t.Errorf("trail = %v", trail)
	}

	trail = nil
	m.BeginPass()
	m.ConfigureSection("main", SectionOptions{Handler: handler("section", true)})
	m.Register("main", "a", true, handler("element", true))
	m.EndPass()
	m.Dispatch(terminal.Char('x'))
	if fmt.Sprint(trail) != "[element]" {
		t.Errorf("trail = %v", trail)
	}
}

func TestHandleNavigation(t *testing.T) {
	m := NewManager()
	pass(m, elem{"a", true}, elem{"b", true})

	if !m.HandleNavigation(terminal.KeyEvent{Key: terminal.KeyTab}) || focused(t, m) != "b" {
		t.Errorf("tab: focused = %q", focused(t, m))
	}
	if !m.HandleNavigation(terminal.KeyEvent{Key: terminal.KeyBacktab, Shift: true}) || focused(t, m) != "a" {
		t.Errorf("backtab: focused = %q", focused(t, m))
	}
	if !m.HandleNavigation(terminal.KeyEvent{Key: terminal.KeyDown}) || focused(t, m) != "b" {
		t.Errorf("down: focused = %q", focused(t, m))
	}
	if m.HandleNavigation(terminal.Char('j')) {
		t.Error("plain runes are not navigation")
	}
}

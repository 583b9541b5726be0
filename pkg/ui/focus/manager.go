// Package focus implements keyboard focus as an explicit state machine.
//
// Focusable elements re-register on every render pass under a stable
// external ID, grouped into named sections. The focused ID of each section
// survives across passes; continuity is keyed by that ID, not by where the
// element sits in the view tree, so reordering keeps focus on the same
// element.
package focus

import (
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/terminal"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Handler receives key events. It returns true when the event was consumed.
type Handler func(ev terminal.KeyEvent) bool

// Registration is one focusable element within a section.
type Registration struct {
	ID       string
	CanFocus bool
	Handler  Handler
}

// Axis declares how directional keys move within a section.
type Axis uint8

const (
	// AxisVertical maps Up/Down to previous/next.
	AxisVertical Axis = iota
	// AxisHorizontal maps Left/Right to previous/next.
	AxisHorizontal
	// AxisGrid lays elements out row-major with a fixed column count.
	AxisGrid
)

// SectionOptions configure a section.
type SectionOptions struct {
	Axis    Axis
	Columns int
	// Handler receives events the focused element did not consume.
	Handler Handler
}

// SectionState is the observable state of one section.
type SectionState uint8

const (
	Unregistered SectionState = iota
	Registered
	Focused
)

func (s SectionState) String() string {
	switch s {
	case Registered:
		return "registered"
	case Focused:
		return "focused"
	default:
		return "unregistered"
	}
}

type section struct {
	id      string
	opts    SectionOptions
	regs    []Registration
	index   map[string]int
	focused string
	has     bool
	// order is the traversal order of the previous pass, used to find the
	// successor of an element that vanished.
	order []string
}

func newSection(id string) *section {
	return &section{id: id, index: make(map[string]int)}
}

func (s *section) capable(i int) bool {
	return i >= 0 && i < len(s.regs) && s.regs[i].CanFocus
}

func (s *section) current() int {
	if !s.has {
		return -1
	}
	if i, ok := s.index[s.focused]; ok {
		return i
	}
	return -1
}

// Manager tracks sections, registrations and the active section. It is
// owned by the render loop and not safe for concurrent use.
type Manager struct {
	sections map[string]*section
	order    []string
	active   string
	global   Handler
	inPass   bool
	owners   map[string]string

	logger   *logging.Logger
	onChange func(section, from, to string)
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		sections: make(map[string]*section),
		owners:   make(map[string]string),
		logger:   logging.Discard(),
	}
}

// SetLogger sets the logger used for focus transitions.
func (m *Manager) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	m.logger = l.Component("focus")
}

// OnChange observes every focus transition.
func (m *Manager) OnChange(fn func(section, from, to string)) {
	m.onChange = fn
}

// SetGlobalHandler sets the handler consulted after the focused element and
// its section.
func (m *Manager) SetGlobalHandler(h Handler) {
	m.global = h
}

// BeginPass drops every registration. Focused IDs are remembered.
func (m *Manager) BeginPass() {
	m.inPass = true
	m.owners = make(map[string]string)
	for _, s := range m.sections {
		s.order = s.order[:0]
		for _, r := range s.regs {
			s.order = append(s.order, r.ID)
		}
		s.regs = s.regs[:0]
		s.index = make(map[string]int)
	}
}

// ConfigureSection declares a section's directional layout and handler.
func (m *Manager) ConfigureSection(id string, opts SectionOptions) {
	m.section(id).opts = opts
}

// Register adds a focusable element to section. A duplicate ID within the
// same section and pass is ignored and Register returns false. Reusing an
// ID in a different section during the same pass is a programming error.
// The first capable element of a section with no focus becomes focused.
func (m *Manager) Register(sectionID, id string, canFocus bool, h Handler) bool {
	if owner, ok := m.owners[id]; ok && owner != sectionID {
		lerrors.Panic(lerrors.ErrCodeFocusConflict, "focus id %q registered in sections %q and %q", id, owner, sectionID)
	}
	s := m.section(sectionID)
	if _, dup := s.index[id]; dup {
		return false
	}
	m.owners[id] = sectionID
	s.index[id] = len(s.regs)
	s.regs = append(s.regs, Registration{ID: id, CanFocus: canFocus, Handler: h})

	if !s.has && canFocus {
		m.setFocus(s, id)
	}
	return true
}

// EndPass repairs sections whose focused element vanished or lost its
// capability: focus moves to the next capable element in traversal order,
// or clears when there is none.
func (m *Manager) EndPass() {
	m.inPass = false
	for _, id := range m.order {
		s := m.sections[id]
		if !s.has || s.capable(s.current()) {
			continue
		}
		if next, ok := m.successor(s); ok {
			m.setFocus(s, next)
		} else {
			m.clearFocus(s)
		}
	}
}

// successor finds the element that follows the lost focus.
func (m *Manager) successor(s *section) (string, bool) {
	if i, ok := s.index[s.focused]; ok {
		n := len(s.regs)
		for k := 1; k < n; k++ {
			if j := (i + k) % n; s.regs[j].CanFocus {
				return s.regs[j].ID, true
			}
		}
		return "", false
	}
	old := -1
	for i, id := range s.order {
		if id == s.focused {
			old = i
			break
		}
	}
	if old >= 0 {
		n := len(s.order)
		for k := 1; k < n; k++ {
			id := s.order[(old+k)%n]
			if j, ok := s.index[id]; ok && s.regs[j].CanFocus {
				return id, true
			}
		}
	}
	for _, r := range s.regs {
		if r.CanFocus {
			return r.ID, true
		}
	}
	return "", false
}

func (m *Manager) section(id string) *section {
	s, ok := m.sections[id]
	if !ok {
		s = newSection(id)
		m.sections[id] = s
		m.order = append(m.order, id)
		if m.active == "" {
			m.active = id
		}
	}
	return s
}

func (m *Manager) setFocus(s *section, id string) bool {
	if s.has && s.focused == id {
		return false
	}
	from := ""
	if s.has {
		from = s.focused
	}
	s.focused, s.has = id, true
	m.changed(s.id, from, id)
	return true
}

func (m *Manager) clearFocus(s *section) {
	if !s.has {
		return
	}
	from := s.focused
	s.focused, s.has = "", false
	m.changed(s.id, from, "")
}

func (m *Manager) changed(section, from, to string) {
	m.logger.FocusChanged(section, from, to)
	if m.onChange != nil {
		m.onChange(section, from, to)
	}
}

// ActiveSection returns the active section ID.
func (m *Manager) ActiveSection() string {
	return m.active
}

// ActivateSection makes id the active section and focuses its first capable
// element unless it already remembers one. It returns false for unknown
// sections.
func (m *Manager) ActivateSection(id string) bool {
	s, ok := m.sections[id]
	if !ok {
		return false
	}
	m.active = id
	if !s.has {
		for _, r := range s.regs {
			if r.CanFocus {
				m.setFocus(s, r.ID)
				break
			}
		}
	}
	return true
}

// ClearAll forgets every section, registration and focus.
func (m *Manager) ClearAll() {
	for _, id := range m.order {
		m.clearFocus(m.sections[id])
	}
	m.sections = make(map[string]*section)
	m.order = nil
	m.active = ""
	m.owners = make(map[string]string)
}

// State returns the state of a section.
func (m *Manager) State(id string) SectionState {
	s, ok := m.sections[id]
	switch {
	case !ok || len(s.regs) == 0:
		return Unregistered
	case s.has:
		return Focused
	default:
		return Registered
	}
}

// Focused returns the focused ID of the active section.
func (m *Manager) Focused() (string, bool) {
	return m.FocusedIn(m.active)
}

// FocusedIn returns the focused ID of a section.
func (m *Manager) FocusedIn(id string) (string, bool) {
	s, ok := m.sections[id]
	if !ok || !s.has {
		return "", false
	}
	return s.focused, true
}

// IsFocused reports whether id is focused in its section.
func (m *Manager) IsFocused(sectionID, id string) bool {
	f, ok := m.FocusedIn(sectionID)
	return ok && f == id
}

// Focus moves focus to a registered, capable element and activates its
// section.
func (m *Manager) Focus(sectionID, id string) bool {
	s, ok := m.sections[sectionID]
	if !ok {
		return false
	}
	i, ok := s.index[id]
	if !ok || !s.regs[i].CanFocus {
		return false
	}
	m.active = sectionID
	m.setFocus(s, id)
	return true
}

// Sections returns section IDs in creation order.
func (m *Manager) Sections() []string {
	return append([]string(nil), m.order...)
}

// Registrations returns the current registrations of a section.
func (m *Manager) Registrations(id string) []Registration {
	s, ok := m.sections[id]
	if !ok {
		return nil
	}
	return append([]Registration(nil), s.regs...)
}

// Package state owns the mutable cells that outlive individual renders.
//
// Cells are addressed by identity path and slot. Storage tracks which paths
// a render pass visits; at the end of the pass it reports the appear and
// disappear sets, fires lifecycle callbacks, cancels background tasks owned
// by vanished paths and evicts their cells.
//
// Storage is owned by the render loop and is not safe for concurrent use.
// Other goroutines communicate through the change hook or the loop's post
// channel, never by touching cells directly.
package state

import (
	"sort"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/identity"
)

// Cell is a boxed value owned by Storage.
type Cell struct {
	value    any
	path     identity.Path
	slot     int
	owner    *Storage
	watchers []watcher
	nextID   int
}

type watcher struct {
	id int
	fn func(any)
}

// Get returns the current value.
func (c *Cell) Get() any {
	return c.value
}

// Set stores v, notifies the owning storage's change hook and then the
// cell's watchers in registration order.
func (c *Cell) Set(v any) {
	c.value = v
	if c.owner != nil && c.owner.onChange != nil {
		c.owner.onChange()
	}
	for _, w := range c.watchers {
		w.fn(v)
	}
}

// Watch calls fn with every value stored after it is registered. The
// returned function removes it.
func (c *Cell) Watch(fn func(any)) (cancel func()) {
	id := c.nextID
	c.nextID++
	c.watchers = append(c.watchers, watcher{id: id, fn: fn})
	return func() {
		for i, w := range c.watchers {
			if w.id == id {
				c.watchers = append(c.watchers[:i:i], c.watchers[i+1:]...)
				return
			}
		}
	}
}

// Path returns the owning path. Detached cells have a nil path.
func (c *Cell) Path() identity.Path {
	return c.path
}

// Slot returns the cell's slot within its path.
func (c *Cell) Slot() int {
	return c.slot
}

type cellKey struct {
	path string
	slot int
}

// PassResult summarizes the lifecycle transitions of one pass.
type PassResult struct {
	Appeared    []identity.Path
	Disappeared []identity.Path
	Evicted     int
}

// Storage holds state cells and the visited sets of consecutive passes.
type Storage struct {
	cells    map[cellKey]*Cell
	slots    map[string][]int
	visited  map[string]identity.Path
	previous map[string]identity.Path
	active   bool

	onAppear    map[string][]func()
	onDisappear map[string][]func()
	// cbPass records the pass in which a path's callbacks were last
	// registered; the first registration in a new pass replaces them.
	cbPass map[string]uint64
	seq    uint64

	onChange func()
	tasks    *Tasks
}

// NewStorage creates an empty storage. onChange is invoked whenever a cell
// is written; it may be nil.
func NewStorage(onChange func()) *Storage {
	return &Storage{
		cells:       make(map[cellKey]*Cell),
		slots:       make(map[string][]int),
		visited:     make(map[string]identity.Path),
		previous:    make(map[string]identity.Path),
		onAppear:    make(map[string][]func()),
		onDisappear: make(map[string][]func()),
		cbPass:      make(map[string]uint64),
		onChange:    onChange,
	}
}

// SetOnChange replaces the change hook.
func (s *Storage) SetOnChange(fn func()) {
	s.onChange = fn
}

// AttachTasks associates a task registry whose tasks are cancelled when
// their owning path disappears.
func (s *Storage) AttachTasks(t *Tasks) {
	s.tasks = t
}

// Tasks returns the attached task registry, or nil.
func (s *Storage) Tasks() *Tasks {
	return s.tasks
}

// Active reports whether a pass is in progress.
func (s *Storage) Active() bool {
	return s.active
}

// Len returns the number of tree-bound cells.
func (s *Storage) Len() int {
	return len(s.cells)
}

// BeginPass starts a pass with an empty visited set.
func (s *Storage) BeginPass() {
	if s.active {
		lerrors.Panic(lerrors.ErrCodeRenderReentrant, "state pass already active")
	}
	s.active = true
	s.seq++
	s.visited = make(map[string]identity.Path, len(s.previous))
}

// Visit marks path as visited without touching any cell.
func (s *Storage) Visit(path identity.Path) {
	s.requireActive("visit", path)
	s.visited[path.Key()] = path
}

// Hydrate returns the cell for (path, slot), creating it with initial when
// absent. Calling it outside a pass is a programming error.
func (s *Storage) Hydrate(path identity.Path, slot int, initial any) *Cell {
	s.requireActive("hydrate", path)
	pk := path.Key()
	s.visited[pk] = path

	key := cellKey{path: pk, slot: slot}
	if c, ok := s.cells[key]; ok {
		return c
	}
	c := &Cell{value: initial, path: path, slot: slot, owner: s}
	s.cells[key] = c
	s.slots[pk] = append(s.slots[pk], slot)
	return c
}

// Lookup returns an existing cell without creating or visiting it.
func (s *Storage) Lookup(path identity.Path, slot int) (*Cell, bool) {
	c, ok := s.cells[cellKey{path: path.Key(), slot: slot}]
	return c, ok
}

// Detached returns a cell that is not bound to the tree. It is never
// pruned and may be created outside a pass.
func (s *Storage) Detached(initial any) *Cell {
	return &Cell{value: initial, owner: s}
}

// Pass returns the sequence number of the current or most recent pass.
func (s *Storage) Pass() uint64 {
	return s.seq
}

// OnAppear registers fn to run at the end of the pass in which path first
// becomes visited. Callbacks registered for a path in one pass replace
// those of earlier passes.
func (s *Storage) OnAppear(path identity.Path, fn func()) {
	s.requireActive("register appear callback", path)
	k := s.callbacksFor(path)
	s.onAppear[k] = append(s.onAppear[k], fn)
}

// OnDisappear registers fn to run once, at the end of the first pass that
// does not visit path.
func (s *Storage) OnDisappear(path identity.Path, fn func()) {
	s.requireActive("register disappear callback", path)
	k := s.callbacksFor(path)
	s.onDisappear[k] = append(s.onDisappear[k], fn)
}

func (s *Storage) callbacksFor(path identity.Path) string {
	k := path.Key()
	if s.cbPass[k] != s.seq {
		s.cbPass[k] = s.seq
		delete(s.onAppear, k)
		delete(s.onDisappear, k)
	}
	return k
}

// EndPass computes the appear and disappear sets, fires their callbacks,
// cancels tasks and evicts cells of disappeared paths, then rotates the
// visited set.
func (s *Storage) EndPass() PassResult {
	if !s.active {
		lerrors.Panic(lerrors.ErrCodeHydrateOutsidePass, "end pass without begin")
	}
	s.active = false

	var res PassResult
	for k, p := range s.visited {
		if _, ok := s.previous[k]; !ok {
			res.Appeared = append(res.Appeared, p)
		}
	}
	for k, p := range s.previous {
		if _, ok := s.visited[k]; !ok {
			res.Disappeared = append(res.Disappeared, p)
		}
	}
	sortPaths(res.Appeared)
	sortPaths(res.Disappeared)

	for _, p := range res.Disappeared {
		k := p.Key()
		for _, slot := range s.slots[k] {
			delete(s.cells, cellKey{path: k, slot: slot})
			res.Evicted++
		}
		delete(s.slots, k)
		delete(s.onAppear, k)
		delete(s.cbPass, k)
		if s.tasks != nil {
			s.tasks.Cancel(p)
		}
		fns := s.onDisappear[k]
		delete(s.onDisappear, k)
		for _, fn := range fns {
			fn()
		}
	}
	for _, p := range res.Appeared {
		for _, fn := range s.onAppear[p.Key()] {
			fn()
		}
	}

	s.previous = s.visited
	s.visited = nil
	return res
}

// AbortPass ends a pass that failed midway. Nothing is evicted and no
// callbacks fire; the previous visited set stays authoritative.
func (s *Storage) AbortPass() {
	s.active = false
	s.visited = nil
}

func (s *Storage) requireActive(op string, path identity.Path) {
	if !s.active {
		lerrors.Panic(lerrors.ErrCodeHydrateOutsidePass, "%s outside a render pass at %s", op, path)
	}
}

func sortPaths(ps []identity.Path) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Key() < ps[j].Key() })
}

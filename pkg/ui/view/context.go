package view

import (
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/identity"
	"github.com/odvcencio/lattice/pkg/ui/state"
)

// Context is what a view sees while it renders: the proposed size, its
// identity path, the active focus section and the environment. It is only
// valid during the call it was passed to.
type Context struct {
	r       *Renderer
	path    identity.Path
	width   int
	height  int
	section string
}

// Width returns the proposed width.
func (c *Context) Width() int { return c.width }

// Height returns the proposed height.
func (c *Context) Height() int { return c.height }

// Path returns the identity path of the rendering view.
func (c *Context) Path() identity.Path { return c.path }

// Section returns the focus section elements register into.
func (c *Context) Section() string { return c.section }

// Env returns the environment stack as composed for this position.
func (c *Context) Env() *env.Stack { return c.r.env }

// Logger returns the renderer's logger scoped to this path.
func (c *Context) Logger() *logging.Logger { return c.r.logger.WithPath(c.path.String()) }

// Hydrate returns the state cell at this path and slot.
func (c *Context) Hydrate(slot int, initial any) *state.Cell {
	return c.r.storage.Hydrate(c.path, slot, initial)
}

// Register adds a focusable element to the current section. It returns
// false for a duplicate within the section.
func (c *Context) Register(id string, canFocus bool, h focus.Handler) bool {
	if c.r.focus == nil {
		return false
	}
	return c.r.focus.Register(c.section, id, canFocus, h)
}

// IsFocused reports whether id holds focus in the current section.
func (c *Context) IsFocused(id string) bool {
	if c.r.focus == nil {
		return false
	}
	return c.r.focus.IsFocused(c.section, id)
}

// Task starts fn once for this path and name. It is cancelled when the path
// disappears. Without a task registry nothing runs and the ID is empty.
func (c *Context) Task(name string, fn state.TaskFunc) string {
	return c.r.storage.Tasks().Start(c.path, name, fn)
}

// OnAppear runs fn at the end of the pass in which this path appears.
func (c *Context) OnAppear(fn func()) {
	c.r.storage.OnAppear(c.path, fn)
}

// OnDisappear runs fn once when this path leaves the tree.
func (c *Context) OnDisappear(fn func()) {
	c.r.storage.OnDisappear(c.path, fn)
}

// Post schedules fn to run on the render loop. Unlike the rest of the
// context it may be called after the render returns, from any goroutine.
// Without a poster there is no loop to run fn on: it is dropped and Post
// reports false.
func (c *Context) Post(fn func()) bool {
	if c.r.post == nil || fn == nil {
		return false
	}
	return c.r.post(fn)
}

// Value resolves an environment key at the context's position.
func Value[T any](c *Context, key env.Key[T]) T {
	return env.Get(c.r.env, key)
}

// UseState returns a typed handle to the cell at the context's path.
func UseState[T any](c *Context, slot int, initial T) state.Handle[T] {
	return state.Use(c.r.storage, c.path, slot, initial)
}

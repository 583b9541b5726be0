package state

import (
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/identity"
)

// Handle is a typed view over a cell.
type Handle[T any] struct {
	cell *Cell
}

// Bind wraps c in a typed handle.
func Bind[T any](c *Cell) Handle[T] {
	return Handle[T]{cell: c}
}

// Use hydrates (path, slot) and returns a typed handle to it.
func Use[T any](s *Storage, path identity.Path, slot int, initial T) Handle[T] {
	return Bind[T](s.Hydrate(path, slot, initial))
}

// Local returns a typed handle to a detached cell.
func Local[T any](s *Storage, initial T) Handle[T] {
	return Bind[T](s.Detached(initial))
}

// Get returns the value. A cell holding a value of another type is a
// programming error; a nil value yields T's zero value.
func (h Handle[T]) Get() T {
	v := h.cell.Get()
	if v == nil {
		var zero T
		return zero
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		lerrors.Panic(lerrors.ErrCodeStateType, "cell at %s slot %d holds %T, not %T", h.cell.path, h.cell.slot, v, zero)
	}
	return t
}

// Set stores v.
func (h Handle[T]) Set(v T) {
	h.cell.Set(v)
}

// Update replaces the value with fn(current).
func (h Handle[T]) Update(fn func(T) T) {
	h.Set(fn(h.Get()))
}

// Watch calls fn with every value stored through the cell from now on.
func (h Handle[T]) Watch(fn func(T)) (cancel func()) {
	return h.cell.Watch(func(v any) {
		t, _ := v.(T)
		fn(t)
	})
}

// Cell returns the underlying cell.
func (h Handle[T]) Cell() *Cell {
	return h.cell
}

// Valid reports whether the handle is bound to a cell.
func (h Handle[T]) Valid() bool {
	return h.cell != nil
}

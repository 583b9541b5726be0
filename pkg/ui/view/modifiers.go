package view

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/state"
)

// Modifiers wrap a view without adding an identity segment, so adding or
// removing one keeps the wrapped subtree's state.

// Padded surrounds v with blank cells.
func Padded(v View, e compositor.Edges) Padding {
	return Padding{Content: orEmpty(v), Edges: e}
}

// WithBackground paints cells of v that have no background.
func WithBackground(v View, c compositor.Color) Background {
	return Background{Content: orEmpty(v), Color: c}
}

// Sized fixes v to w×h; a non-positive dimension follows the content.
func Sized(v View, w, h int) Frame {
	return Frame{Content: orEmpty(v), Width: w, Height: h}
}

// Fill makes v take the whole proposed area, aligned within it.
func Fill(v View, align compositor.Alignment) Frame {
	return Frame{Content: orEmpty(v), FillWidth: true, FillHeight: true, Align: align}
}

// FillWidth makes v take the whole proposed width.
func FillWidth(v View, align compositor.HAlign) Frame {
	return Frame{Content: orEmpty(v), FillWidth: true, Align: compositor.Alignment{H: align}}
}

// Overlaid draws top above base.
func Overlaid(base, top View, align compositor.Alignment, off compositor.Offset) Overlay {
	return Overlay{Base: orEmpty(base), Top: orEmpty(top), Align: align, Offset: off}
}

// WithEnv overrides environment values for v.
func WithEnv(v View, values env.Values) Environment {
	return Environment{Content: orEmpty(v), Values: values}
}

// WithValue overrides a single environment key for v.
func WithValue[T any](v View, key env.Key[T], value T) Environment {
	return WithEnv(v, env.Of(key, value))
}

// InSection groups v's focusable elements under id.
func InSection(v View, id string, opts focus.SectionOptions) Section {
	return Section{Content: orEmpty(v), ID: id, Options: opts}
}

// OnAppear runs fn at the end of the pass in which v's position appears.
func OnAppear(v View, fn func()) Lifecycle {
	if l, ok := v.(Lifecycle); ok && l.OnAppear == nil {
		l.OnAppear = fn
		return l
	}
	return Lifecycle{Content: orEmpty(v), OnAppear: fn}
}

// OnDisappear runs fn once when v's position leaves the tree.
func OnDisappear(v View, fn func()) Lifecycle {
	if l, ok := v.(Lifecycle); ok && l.OnDisappear == nil {
		l.OnDisappear = fn
		return l
	}
	return Lifecycle{Content: orEmpty(v), OnDisappear: fn}
}

// WithTask runs fn in the background while v's position stays in the tree.
// The task is started once and cancelled when the position disappears.
func WithTask(v View, name string, fn state.TaskFunc) Task {
	return Task{Content: orEmpty(v), Name: name, Run: fn}
}

// Package view declares immutable view trees and renders them.
//
// The set of node kinds is closed: every View is one of the node structs in
// this package, and the renderer switches over them exhaustively. Concrete
// widgets are built from Leaf (produce a frame directly) and Composite
// (expand to a nested view). Builder functions such as If, Either,
// Optional, ForEach and Range tag their children with the branch and index
// information that identity paths are computed from, so no node type ever
// relies on reflection for its identity.
package view

import (
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/identity"
	"github.com/odvcencio/lattice/pkg/ui/state"
)

// Kind enumerates the node variants.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindLeaf
	KindComposite
	KindStack
	KindGroup
	KindBranch
	KindEach
	KindTagged
	KindAny
	KindPadding
	KindBackground
	KindFrame
	KindOverlay
	KindEnvironment
	KindSection
	KindLifecycle
	KindTask
	KindPreference
	KindPreferenceReader
)

var kindNames = [...]string{
	KindEmpty:            "Empty",
	KindLeaf:             "Leaf",
	KindComposite:        "Composite",
	KindStack:            "Stack",
	KindGroup:            "Group",
	KindBranch:           "Optional",
	KindEach:             "ForEach",
	KindTagged:           "Tagged",
	KindAny:              "AnyView",
	KindPadding:          "Padding",
	KindBackground:       "Background",
	KindFrame:            "Frame",
	KindOverlay:          "Overlay",
	KindEnvironment:      "Environment",
	KindSection:          "Section",
	KindLifecycle:        "Lifecycle",
	KindTask:             "Task",
	KindPreference:       "Preference",
	KindPreferenceReader: "PreferenceReader",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// View is an immutable description of what to render.
type View interface {
	Kind() Kind
	isView()
}

// Empty renders nothing.
type Empty struct{}

func (Empty) Kind() Kind { return KindEmpty }
func (Empty) isView()    {}

// Leaf produces a frame directly from the render context.
type Leaf struct {
	Tag    string
	Render func(ctx *Context) *compositor.Frame
}

func (Leaf) Kind() Kind { return KindLeaf }
func (Leaf) isView()    {}

// Composite expands into one nested view. Body may hydrate state and read
// the environment through ctx; the returned view renders one level below.
type Composite struct {
	Tag  string
	Body func(ctx *Context) View
}

func (Composite) Kind() Kind { return KindComposite }
func (Composite) isView()    {}

// AnyView erases the concrete node type.
type AnyView struct {
	View View
}

func (AnyView) Kind() Kind { return KindAny }
func (AnyView) isView()    {}

// Erase wraps v in an AnyView.
func Erase(v View) AnyView {
	if a, ok := v.(AnyView); ok {
		return a
	}
	return AnyView{View: v}
}

// tagOf names a child's slot. Modifiers take their content's tag so that
// wrapping a view keeps its identity.
func tagOf(v View) string {
	switch n := v.(type) {
	case nil:
		return KindEmpty.String()
	case Leaf:
		if n.Tag != "" {
			return n.Tag
		}
	case Composite:
		if n.Tag != "" {
			return n.Tag
		}
	case Stack:
		return n.Axis.String()
	case AnyView:
		return tagOf(n.View)
	case Padding:
		return tagOf(n.Content)
	case Background:
		return tagOf(n.Content)
	case Frame:
		return tagOf(n.Content)
	case Overlay:
		return tagOf(n.Base)
	case Environment:
		return tagOf(n.Content)
	case Section:
		return tagOf(n.Content)
	case Lifecycle:
		return tagOf(n.Content)
	case Task:
		return tagOf(n.Content)
	case PreferenceView:
		return tagOf(n.Content)
	case PreferenceReader:
		return tagOf(n.Content)
	}
	return v.Kind().String()
}

// Padding surrounds content with blank cells.
type Padding struct {
	Content View
	Edges   compositor.Edges
}

func (Padding) Kind() Kind { return KindPadding }
func (Padding) isView()    {}

// Background paints cells without a background.
type Background struct {
	Content View
	Color   compositor.Color
}

func (Background) Kind() Kind { return KindBackground }
func (Background) isView()    {}

// Frame places content in a fixed or proposal-filling box.
type Frame struct {
	Content View
	// Width and Height fix a dimension when positive.
	Width, Height int
	// FillWidth and FillHeight take the whole proposed dimension.
	FillWidth, FillHeight bool
	Align                 compositor.Alignment
}

func (Frame) Kind() Kind { return KindFrame }
func (Frame) isView()    {}

// Overlay draws Top over Base, clipped to Base.
type Overlay struct {
	Base   View
	Top    View
	Align  compositor.Alignment
	Offset compositor.Offset
}

func (Overlay) Kind() Kind { return KindOverlay }
func (Overlay) isView()    {}

// Environment overrides environment values for its content.
type Environment struct {
	Content View
	Values  env.Values
}

func (Environment) Kind() Kind { return KindEnvironment }
func (Environment) isView()    {}

// Section groups the focusable elements of its content.
type Section struct {
	Content View
	ID      string
	Options focus.SectionOptions
}

func (Section) Kind() Kind { return KindSection }
func (Section) isView()    {}

// Lifecycle runs callbacks when its position appears or disappears.
type Lifecycle struct {
	Content     View
	OnAppear    func()
	OnDisappear func()
}

func (Lifecycle) Kind() Kind { return KindLifecycle }
func (Lifecycle) isView()    {}

// Task runs background work while its position stays in the tree.
type Task struct {
	Content View
	Name    string
	Run     state.TaskFunc
}

func (Task) Kind() Kind { return KindTask }
func (Task) isView()    {}

// Child is a flattened, tagged child of a container.
type Child struct {
	Tag    string
	Index  int
	Branch identity.Branch
	View   View
}

// Segment returns the identity segment for the child.
func (c Child) Segment() identity.Segment {
	return identity.Seg(c.Tag, c.Index, c.Branch)
}

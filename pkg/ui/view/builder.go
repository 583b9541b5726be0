package view

import (
	"strconv"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/identity"
)

// Axis is the direction a stack lays out its children.
type Axis uint8

const (
	Vertical Axis = iota
	Horizontal
	Depth
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "HStack"
	case Depth:
		return "ZStack"
	default:
		return "VStack"
	}
}

// Stack lays out flattened children along an axis. Depth stacks overlay
// children in order.
type Stack struct {
	Axis     Axis
	Spacing  int
	Align    compositor.Alignment
	Children []Child
}

func (Stack) Kind() Kind { return KindStack }
func (Stack) isView()    {}

// VStack stacks items top to bottom.
func VStack(items ...View) Stack {
	return Stack{Axis: Vertical, Children: Flatten(items...)}
}

// HStack places items left to right.
func HStack(items ...View) Stack {
	return Stack{Axis: Horizontal, Children: Flatten(items...)}
}

// ZStack overlays items, the first at the bottom.
func ZStack(items ...View) Stack {
	return Stack{Axis: Depth, Align: compositor.AlignTopLeading, Children: Flatten(items...)}
}

// WithSpacing returns a copy with spacing between children.
func (s Stack) WithSpacing(n int) Stack {
	s.Spacing = n
	return s
}

// WithAlign returns a copy that aligns children across the axis.
func (s Stack) WithAlign(a compositor.Alignment) Stack {
	s.Align = a
	return s
}

// GroupView is a sequence spliced into the enclosing container. Rendered on
// its own it stacks vertically.
type GroupView struct {
	Items []View
}

func (GroupView) Kind() Kind { return KindGroup }
func (GroupView) isView()    {}

// Group collects items into one sequence.
func Group(items ...View) GroupView {
	return GroupView{Items: items}
}

// BranchView is a conditional slot. It always occupies one child index; the
// branch tells which side, if any, is present.
type BranchView struct {
	Tag    string
	Branch identity.Branch
	View   View
}

func (BranchView) Kind() Kind { return KindBranch }
func (BranchView) isView()    {}

// If shows then when cond holds. The slot is kept either way so later
// siblings keep their identity.
func If(cond bool, then View) BranchView {
	if cond && then != nil {
		return BranchView{Tag: "Optional", Branch: identity.Some, View: then}
	}
	return BranchView{Tag: "Optional", Branch: identity.None, View: Empty{}}
}

// Optional treats a nil view as absent.
func Optional(v View) BranchView {
	return If(v != nil, v)
}

// Either shows a when cond holds and b otherwise. The two sides have
// distinct identities.
func Either(cond bool, a, b View) BranchView {
	if cond {
		return BranchView{Tag: "Either", Branch: identity.First, View: orEmpty(a)}
	}
	return BranchView{Tag: "Either", Branch: identity.Second, View: orEmpty(b)}
}

// EachItem is one element of a loop.
type EachItem struct {
	Branch identity.Branch
	View   View
}

// EachView is a loop slot. It occupies one child index; its items are told
// apart by their branch.
type EachView struct {
	Tag   string
	Items []EachItem
}

func (EachView) Kind() Kind { return KindEach }
func (EachView) isView()    {}

// ForEach builds a view per item. Items are identified by key, so
// reordering keeps each item's state. Duplicate keys are a programming
// error.
func ForEach[T any](items []T, key func(T) string, build func(T) View) EachView {
	out := EachView{Tag: "ForEach", Items: make([]EachItem, 0, len(items))}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := key(it)
		if _, dup := seen[k]; dup {
			lerrors.Panic(lerrors.ErrCodeInvalidInput, "duplicate ForEach key %q", k)
		}
		seen[k] = struct{}{}
		out.Items = append(out.Items, EachItem{Branch: identity.Key(k), View: orEmpty(build(it))})
	}
	return out
}

// Range builds n views identified by position. Reordering the underlying
// data reassigns state to whatever lands at each position.
func Range(n int, build func(i int) View) EachView {
	out := EachView{Tag: "Range", Items: make([]EachItem, 0, max(n, 0))}
	for i := 0; i < n; i++ {
		out.Items = append(out.Items, EachItem{Branch: identity.Key(strconv.Itoa(i)), View: orEmpty(build(i))})
	}
	return out
}

// TaggedView overrides the tag of the slot it occupies.
type TaggedView struct {
	Tag  string
	View View
}

func (TaggedView) Kind() Kind { return KindTagged }
func (TaggedView) isView()    {}

// Tagged sets the identity tag for v's slot.
func Tagged(tag string, v View) TaggedView {
	return TaggedView{Tag: tag, View: orEmpty(v)}
}

// Flatten turns builder items into tagged children. Every item consumes
// exactly one index: groups splice their items, branches keep their slot
// even when absent, loops contribute one child per element under a single
// index.
func Flatten(items ...View) []Child {
	var out []Child
	idx := 0
	for _, v := range items {
		out = expand(out, &idx, v, "")
	}
	return out
}

func expand(out []Child, idx *int, v View, tag string) []Child {
	switch n := v.(type) {
	case TaggedView:
		return expand(out, idx, n.View, n.Tag)
	case GroupView:
		for _, it := range n.Items {
			out = expand(out, idx, it, "")
		}
		return out
	case BranchView:
		i := *idx
		*idx++
		return append(out, Child{Tag: or(tag, n.Tag), Index: i, Branch: n.Branch, View: orEmpty(n.View)})
	case EachView:
		i := *idx
		*idx++
		for _, it := range n.Items {
			out = append(out, Child{Tag: or(tag, n.Tag), Index: i, Branch: it.Branch, View: it.View})
		}
		return out
	default:
		i := *idx
		*idx++
		return append(out, Child{Tag: or(tag, tagOf(v)), Index: i, Branch: identity.None, View: orEmpty(v)})
	}
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func orEmpty(v View) View {
	if v == nil {
		return Empty{}
	}
	return v
}

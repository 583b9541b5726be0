package view

import (
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/identity"
	"github.com/odvcencio/lattice/pkg/ui/state"
)

// DefaultSection is the focus section of views outside any Section.
const DefaultSection = "main"

// Result is the outcome of one render pass.
type Result struct {
	Frame       *compositor.Frame
	Lifecycle   state.PassResult
	Preferences Preferences
	// Pass is the storage pass sequence number.
	Pass uint64
}

// Renderer walks view trees against a storage and focus manager. It is
// owned by the render loop.
type Renderer struct {
	storage *state.Storage
	focus   *focus.Manager
	base    env.Values
	env     *env.Stack
	logger  *logging.Logger
	section string
	post    func(func()) bool
	busy    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEnvironment sets the outermost environment overrides.
func WithEnvironment(v env.Values) Option {
	return func(r *Renderer) { r.base = v }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l.Component("view")
		}
	}
}

// WithRootSection names the focus section of views outside any Section.
func WithRootSection(id string) Option {
	return func(r *Renderer) { r.section = id }
}

// WithPoster sets how views hand mutations back to the render loop from
// background goroutines.
func WithPoster(post func(func()) bool) Option {
	return func(r *Renderer) { r.post = post }
}

// NewRenderer creates a renderer. fm may be nil when nothing is focusable.
func NewRenderer(storage *state.Storage, fm *focus.Manager, opts ...Option) *Renderer {
	r := &Renderer{
		storage: storage,
		focus:   fm,
		logger:  logging.Discard(),
		section: DefaultSection,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetEnvironment replaces the outermost environment overrides for later
// passes.
func (r *Renderer) SetEnvironment(v env.Values) {
	r.base = v
}

// Storage returns the state storage.
func (r *Renderer) Storage() *state.Storage {
	return r.storage
}

// Focus returns the focus manager, or nil.
func (r *Renderer) Focus() *focus.Manager {
	return r.focus
}

// Render runs one pass: it walks root within w×h, then ends the storage and
// focus passes so lifecycle callbacks fire and focus is repaired. The root
// sits at (tag, 0, none) like any other child, so replacing it with a view
// of another type retires the old subtree. The frame
// is clipped to w×h. A panic while walking aborts the pass without evicting
// anything and propagates.
func (r *Renderer) Render(root View, w, h int) Result {
	if r.busy {
		lerrors.Panic(lerrors.ErrCodeRenderReentrant, "render called during a render pass")
	}
	r.busy = true
	defer func() { r.busy = false }()

	w, h = max(w, 0), max(h, 0)
	r.env = env.NewStack(r.base)
	r.storage.BeginPass()
	if r.focus != nil {
		r.focus.BeginPass()
	}

	done := false
	defer func() {
		if !done {
			r.storage.AbortPass()
		}
	}()

	root = orEmpty(root)
	top := Child{Tag: tagOf(root), Index: 0, Branch: identity.None, View: root}
	f, prefs := r.child(top, identity.Root(), w, h, r.section)
	done = true

	if r.focus != nil {
		r.focus.EndPass()
	}
	seq := r.storage.Pass()
	lc := r.storage.EndPass()
	r.logger.Lifecycle(seq, len(lc.Appeared), len(lc.Disappeared))

	return Result{
		Frame:       compositor.Clip(f, w, h),
		Lifecycle:   lc,
		Preferences: prefs,
		Pass:        seq,
	}
}

func (r *Renderer) context(path identity.Path, w, h int, section string) *Context {
	return &Context{r: r, path: path, width: w, height: h, section: section}
}

func (r *Renderer) render(v View, path identity.Path, w, h int, section string) (*compositor.Frame, Preferences) {
	switch n := v.(type) {
	case Empty:
		return compositor.Empty(), Preferences{}

	case Leaf:
		if n.Render == nil {
			return compositor.Empty(), Preferences{}
		}
		f := n.Render(r.context(path, w, h, section))
		if f == nil {
			f = compositor.Empty()
		}
		return f, Preferences{}

	case Composite:
		if n.Body == nil {
			return compositor.Empty(), Preferences{}
		}
		body := n.Body(r.context(path, w, h, section))
		children := Flatten(orEmpty(body))
		if len(children) == 1 {
			return r.child(children[0], path, w, h, section)
		}
		return r.stack(Stack{Axis: Vertical, Children: children}, path, w, h, section)

	case Stack:
		return r.stack(n, path, w, h, section)

	case GroupView, BranchView, EachView, TaggedView:
		return r.stack(Stack{Axis: Vertical, Children: Flatten(v)}, path, w, h, section)

	case AnyView:
		return r.render(orEmpty(n.View), path, w, h, section)

	case Padding:
		e := n.Edges
		f, p := r.render(n.Content, path, max(w-e.Left-e.Right, 0), max(h-e.Top-e.Bottom, 0), section)
		return compositor.Pad(f, e), p

	case Background:
		f, p := r.render(n.Content, path, w, h, section)
		return compositor.FillBackground(f, n.Color), p

	case Frame:
		pw, ph := w, h
		if n.Width > 0 {
			pw = n.Width
		}
		if n.Height > 0 {
			ph = n.Height
		}
		f, p := r.render(n.Content, path, pw, ph, section)
		tw, th := f.Width(), f.Height()
		switch {
		case n.Width > 0:
			tw = n.Width
		case n.FillWidth:
			tw = w
		}
		switch {
		case n.Height > 0:
			th = n.Height
		case n.FillHeight:
			th = h
		}
		return compositor.Place(f, tw, th, n.Align), p

	case Overlay:
		base, p := r.render(n.Base, path, w, h, section)
		topPath := path.Child(identity.Seg(KindOverlay.String(), 0, identity.None))
		r.storage.Visit(topPath)
		top, tp := r.render(n.Top, topPath, base.Width(), base.Height(), section)
		return compositor.Overlay(base, top, n.Align, n.Offset), p.merge(tp)

	case Environment:
		tok := r.env.Push(n.Values)
		f, p := r.render(n.Content, path, w, h, section)
		r.env.Pop(tok)
		return f, p

	case Section:
		if r.focus != nil {
			r.focus.ConfigureSection(n.ID, n.Options)
		}
		return r.render(n.Content, path, w, h, n.ID)

	case Lifecycle:
		if n.OnAppear != nil {
			r.storage.OnAppear(path, n.OnAppear)
		}
		if n.OnDisappear != nil {
			r.storage.OnDisappear(path, n.OnDisappear)
		}
		return r.render(n.Content, path, w, h, section)

	case Task:
		r.storage.Tasks().Start(path, n.Name, n.Run)
		return r.render(n.Content, path, w, h, section)

	case PreferenceView:
		f, p := r.render(n.Content, path, w, h, section)
		own := Preferences{m: map[string]prefEntry{n.Name: {value: n.Value, reduce: n.reduce}}}
		return f, own.merge(p)

	case PreferenceReader:
		f, p := r.render(n.Content, path, w, h, section)
		if n.read != nil {
			v, ok := p.lookup(n.Name)
			n.read(v, ok)
		}
		return f, p
	}
	lerrors.Panic(lerrors.ErrCodeInternal, "unknown view kind %v (%T)", v.Kind(), v)
	return nil, Preferences{}
}

func (r *Renderer) child(c Child, parent identity.Path, w, h int, section string) (*compositor.Frame, Preferences) {
	p := parent.Child(c.Segment())
	r.storage.Visit(p)
	return r.render(c.View, p, w, h, section)
}

// stack lays children out along the axis. Each child is proposed the space
// its predecessors left over.
func (r *Renderer) stack(s Stack, path identity.Path, w, h int, section string) (*compositor.Frame, Preferences) {
	acc := compositor.Empty()
	var prefs Preferences

	switch s.Axis {
	case Horizontal:
		for _, c := range s.Children {
			f, p := r.child(c, path, max(w-acc.Width()-gap(acc, s.Spacing), 0), h, section)
			prefs = prefs.merge(p)
			acc = compositor.HAppendAligned(acc, f, gap2(acc, f, s.Spacing), s.Align.V)
		}
	case Depth:
		frames := make([]*compositor.Frame, 0, len(s.Children))
		fw, fh := 0, 0
		for _, c := range s.Children {
			f, p := r.child(c, path, w, h, section)
			prefs = prefs.merge(p)
			frames = append(frames, f)
			fw, fh = max(fw, f.Width()), max(fh, f.Height())
		}
		acc = compositor.NewFrame(fw, fh, compositor.DefaultStyle())
		for _, f := range frames {
			acc = compositor.Overlay(acc, f, s.Align, compositor.Offset{})
		}
	default:
		for _, c := range s.Children {
			f, p := r.child(c, path, w, max(h-acc.Height()-gap(acc, s.Spacing), 0), section)
			prefs = prefs.merge(p)
			acc = compositor.VAppendAligned(acc, f, gap2(acc, f, s.Spacing), s.Align.H)
		}
	}
	return acc, prefs
}

// gap is the spacing that would precede the next child.
func gap(acc *compositor.Frame, spacing int) int {
	if acc.IsZero() {
		return 0
	}
	return spacing
}

// gap2 only separates frames that are not 0×0, so absent children take no
// room while zero-width spacers still do.
func gap2(acc, next *compositor.Frame, spacing int) int {
	if acc.IsZero() || next.IsZero() {
		return 0
	}
	return spacing
}

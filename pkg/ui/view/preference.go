package view

// PreferenceKey declares a value that descendants report to ancestors.
// Reduce folds a later value into the accumulated one; nil means the last
// write wins.
type PreferenceKey[T any] struct {
	Name    string
	Default T
	Reduce  func(acc, next T) T
}

// NewPreferenceKey creates a last-write-wins key.
func NewPreferenceKey[T any](name string, def T) PreferenceKey[T] {
	return PreferenceKey[T]{Name: name, Default: def}
}

func (k PreferenceKey[T]) reducer() func(a, b any) any {
	if k.Reduce == nil {
		return func(_, b any) any { return b }
	}
	reduce := k.Reduce
	return func(a, b any) any {
		av, _ := a.(T)
		bv, _ := b.(T)
		return reduce(av, bv)
	}
}

type prefEntry struct {
	value  any
	reduce func(a, b any) any
}

// Preferences are the reduced values reported by a subtree.
type Preferences struct {
	m map[string]prefEntry
}

func (p Preferences) lookup(name string) (any, bool) {
	e, ok := p.m[name]
	return e.value, ok
}

// merge folds next into p in document order. Neither operand is mutated.
func (p Preferences) merge(next Preferences) Preferences {
	if len(next.m) == 0 {
		return p
	}
	if len(p.m) == 0 {
		return next
	}
	out := make(map[string]prefEntry, len(p.m)+len(next.m))
	for k, e := range p.m {
		out[k] = e
	}
	for k, e := range next.m {
		if cur, ok := out[k]; ok {
			out[k] = prefEntry{value: cur.reduce(cur.value, e.value), reduce: cur.reduce}
			continue
		}
		out[k] = e
	}
	return Preferences{m: out}
}

// Resolve returns the value reduced for key, or its default.
func Resolve[T any](p Preferences, key PreferenceKey[T]) T {
	if v, ok := p.lookup(key.Name); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return key.Default
}

// PreferenceView reports a value for its content's ancestors. Values from
// the content are folded in after this one, so nested reports win under the
// default reduction.
type PreferenceView struct {
	Content View
	Name    string
	Value   any
	reduce  func(a, b any) any
}

func (PreferenceView) Kind() Kind { return KindPreference }
func (PreferenceView) isView()    {}

// Preferred attaches a preference value to v.
func Preferred[T any](v View, key PreferenceKey[T], value T) PreferenceView {
	return PreferenceView{Content: orEmpty(v), Name: key.Name, Value: value, reduce: key.reducer()}
}

// PreferenceReader observes the reduced value of a key within its content.
type PreferenceReader struct {
	Content View
	Name    string
	read    func(v any, ok bool)
}

func (PreferenceReader) Kind() Kind { return KindPreferenceReader }
func (PreferenceReader) isView()    {}

// OnPreference calls fn during the pass with the value reduced over v's
// subtree, or the key's default when nothing was reported. The values still
// propagate further up.
func OnPreference[T any](v View, key PreferenceKey[T], fn func(T)) PreferenceReader {
	return PreferenceReader{
		Content: orEmpty(v),
		Name:    key.Name,
		read: func(v any, ok bool) {
			if t, isT := v.(T); ok && isT {
				fn(t)
				return
			}
			fn(key.Default)
		},
	}
}

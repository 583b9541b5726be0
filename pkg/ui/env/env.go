// Package env propagates configuration down the view tree.
//
// Ancestors push immutable overlays onto a Stack while their subtree
// renders; lookups walk the stack from the innermost overlay outwards and
// fall back to the key's default. The renderer pops every overlay it
// pushes, so sibling subtrees never observe each other's overrides.
package env

import (
	"sync"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Key identifies an environment value of type T. Keys compare by name.
type Key[T any] struct {
	Name    string
	Default T
}

// NewKey declares a key with a default value.
func NewKey[T any](name string, def T) Key[T] {
	return Key[T]{Name: name, Default: def}
}

// Values is an immutable set of overrides.
type Values struct {
	m map[string]any
}

// With returns a copy of v with key set to value.
func With[T any](v Values, key Key[T], value T) Values {
	m := make(map[string]any, len(v.m)+1)
	for k, x := range v.m {
		m[k] = x
	}
	m[key.Name] = value
	return Values{m: m}
}

// Of returns a set holding a single override.
func Of[T any](key Key[T], value T) Values {
	return With(Values{}, key, value)
}

// Merge returns the union of v and other; other wins on conflicts.
func (v Values) Merge(other Values) Values {
	if len(other.m) == 0 {
		return v
	}
	if len(v.m) == 0 {
		return other
	}
	m := make(map[string]any, len(v.m)+len(other.m))
	for k, x := range v.m {
		m[k] = x
	}
	for k, x := range other.m {
		m[k] = x
	}
	return Values{m: m}
}

// Len returns the number of overrides.
func (v Values) Len() int {
	return len(v.m)
}

// Lookup returns the raw override for name.
func (v Values) Lookup(name string) (any, bool) {
	x, ok := v.m[name]
	return x, ok
}

var (
	defaultsMu sync.RWMutex
	defaults   = map[string]any{}
)

// SetDefault registers a process-wide default that takes precedence over
// the key's own default. Call it during startup, before rendering begins.
func SetDefault[T any](key Key[T], value T) {
	defaultsMu.Lock()
	defaults[key.Name] = value
	defaultsMu.Unlock()
}

// ResetDefaults removes every process-wide default.
func ResetDefaults() {
	defaultsMu.Lock()
	defaults = map[string]any{}
	defaultsMu.Unlock()
}

func processDefault(name string) (any, bool) {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	x, ok := defaults[name]
	return x, ok
}

// Token restores the stack to the depth it had before a Push.
type Token struct {
	depth int
}

// Stack is the scoped overlay stack used during a render pass.
type Stack struct {
	layers []Values
}

// NewStack returns a stack with base as its outermost overlay.
func NewStack(base Values) *Stack {
	s := &Stack{}
	if base.Len() > 0 {
		s.layers = append(s.layers, base)
	}
	return s
}

// Push overlays v and returns the token that undoes it.
func (s *Stack) Push(v Values) Token {
	t := Token{depth: len(s.layers)}
	s.layers = append(s.layers, v)
	return t
}

// Pop restores the stack to the state before the Push that returned t.
// Popping out of order is a programming error.
func (s *Stack) Pop(t Token) {
	if t.depth != len(s.layers)-1 {
		lerrors.Panic(lerrors.ErrCodeEnvStack, "pop of depth %d with %d layers", t.depth, len(s.layers))
	}
	s.layers[t.depth] = Values{}
	s.layers = s.layers[:t.depth]
}

// Depth returns the number of overlays.
func (s *Stack) Depth() int {
	return len(s.layers)
}

// Resolve returns the innermost override for name, then the process
// default. ok is false when neither exists.
func (s *Stack) Resolve(name string) (any, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if x, ok := s.layers[i].m[name]; ok {
			return x, true
		}
	}
	return processDefault(name)
}

// Snapshot returns the composed view of every overlay.
func (s *Stack) Snapshot() Values {
	var out Values
	for _, l := range s.layers {
		out = out.Merge(l)
	}
	return out
}

// Get resolves key on s. A miss, or an override of the wrong type, yields
// the key's default.
func Get[T any](s *Stack, key Key[T]) T {
	if s != nil {
		if x, ok := s.Resolve(key.Name); ok {
			if t, ok := x.(T); ok {
				return t
			}
		}
	} else if x, ok := processDefault(key.Name); ok {
		if t, ok := x.(T); ok {
			return t
		}
	}
	return key.Default
}

// From reads key out of a Values set, falling back like Get.
func From[T any](v Values, key Key[T]) T {
	if x, ok := v.m[key.Name]; ok {
		if t, ok := x.(T); ok {
			return t
		}
	}
	return Get[T](nil, key)
}

// Package persist keeps selected view state across runs. Values are stored
// as JSON documents, one file per key, under a single directory.
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store is a directory of JSON documents.
type Store struct {
	dir    string
	logger *logging.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for failed background saves.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Component("persist")
		}
	}
}

// Open returns a store rooted at dir, creating it if needed.
func Open(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, lerrors.New(lerrors.ErrCodeInvalidInput, "persist directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to create persist directory").
			WithContext("dir", dir)
	}
	s := &Store{dir: dir, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", lerrors.Newf(lerrors.ErrCodeInvalidInput, "invalid persist key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Load decodes the document stored under key into v. A missing document
// reports false with no error and leaves v untouched.
func (s *Store) Load(key string, v any) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	data, err := os.ReadFile(p)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, lerrors.Wrap(err, lerrors.ErrCodeStorageRead, "failed to read state").WithContext("key", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, lerrors.Wrap(err, lerrors.ErrCodeStorageRead, "failed to parse state").WithContext("key", key)
	}
	return true, nil
}

// Save replaces the document under key. The write goes to a temporary file
// that is renamed into place, so readers never see a partial document.
func (s *Store) Save(key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to marshal state").WithContext("key", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to create temp file").WithContext("key", key)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to write state").WithContext("key", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to write state").WithContext("key", key)
	}
	if err := os.Rename(name, p); err != nil {
		os.Remove(name)
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to replace state").WithContext("key", key)
	}
	return nil
}

// Delete removes the document under key. Deleting a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return lerrors.Wrap(err, lerrors.ErrCodeStorageWrite, "failed to delete state").WithContext("key", key)
	}
	return nil
}

// Keys lists stored keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, lerrors.Wrap(err, lerrors.ErrCodeStorageRead, "failed to list state")
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Bind loads key into h, if stored, and saves every later write to h.
// Save failures are logged; the handle keeps its value either way.
func Bind[T any](s *Store, key string, h state.Handle[T]) (cancel func(), err error) {
	var v T
	ok, err := s.Load(key, &v)
	if err != nil {
		return nil, err
	}
	if ok {
		h.Set(v)
	}
	return follow(s, key, h), nil
}

func follow[T any](s *Store, key string, h state.Handle[T]) func() {
	return h.Watch(func(v T) {
		if err := s.Save(key, v); err != nil {
			s.logger.Warn("state save failed", "key", key, "error", err)
		}
	})
}

type binding struct {
	seeded bool
	cancel func()
}

func (b *binding) stop() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// UseStored is UseState backed by s. The stored value, if any, seeds the
// cell the first time the path renders; writes are saved while the path
// stays in the tree. It occupies slot and slot+1.
func UseStored[T any](c *view.Context, slot int, s *Store, key string, initial T) state.Handle[T] {
	bd := c.Hydrate(slot+1, &binding{}).Get().(*binding)
	first := !bd.seeded
	if first {
		bd.seeded = true
		var loaded T
		if ok, err := s.Load(key, &loaded); err != nil {
			c.Logger().Warn("state load failed", "key", key, "error", err)
		} else if ok {
			initial = loaded
		}
	}
	h := view.UseState(c, slot, initial)
	if first {
		c.OnAppear(func() { bd.cancel = follow(s, key, h) })
	}
	c.OnDisappear(bd.stop)
	return h
}

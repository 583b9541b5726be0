package state

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/identity"
)

// TaskFunc is background work owned by an identity path. It must return
// promptly once ctx is cancelled.
type TaskFunc func(ctx context.Context) error

// TaskResult reports how a task ended.
type TaskResult struct {
	ID       string
	Path     identity.Path
	Name     string
	Err      error
	Canceled bool
}

// TaskConfig configures a task registry.
type TaskConfig struct {
	// Post delivers a function to the render loop. Results are reported
	// through it so handlers run on the loop thread. When nil, results are
	// delivered on the task's goroutine.
	Post func(func())
	// OnResult receives every finished task, including cancelled ones.
	OnResult func(TaskResult)
	// OnCountChange observes the number of running tasks.
	OnCountChange func(running int)
}

type task struct {
	id     string
	name   string
	path   identity.Path
	cancel context.CancelFunc
	done   bool
}

// Tasks runs background work keyed by identity path and cancels it when the
// path disappears. A task runs at most once per path and name until the
// path disappears.
type Tasks struct {
	mu      sync.Mutex
	base    context.Context
	stop    context.CancelFunc
	byPath  map[string]map[string]*task
	running int
	wg      sync.WaitGroup
	cfg     TaskConfig
}

// NewTasks creates a registry whose tasks derive from ctx.
func NewTasks(ctx context.Context, cfg TaskConfig) *Tasks {
	if ctx == nil {
		ctx = context.Background()
	}
	base, stop := context.WithCancel(ctx)
	return &Tasks{
		base:   base,
		stop:   stop,
		byPath: make(map[string]map[string]*task),
		cfg:    cfg,
	}
}

// Start launches fn for (path, name) unless one was already started and
// the path has not disappeared since. It returns the task ID.
func (t *Tasks) Start(path identity.Path, name string, fn TaskFunc) string {
	if t == nil || fn == nil {
		return ""
	}
	pk := path.Key()

	t.mu.Lock()
	named := t.byPath[pk]
	if named == nil {
		named = make(map[string]*task)
		t.byPath[pk] = named
	}
	if existing, ok := named[name]; ok {
		t.mu.Unlock()
		return existing.id
	}
	ctx, cancel := context.WithCancel(t.base)
	tk := &task{id: ulid.Make().String(), name: name, path: path, cancel: cancel}
	named[name] = tk
	t.running++
	running := t.running
	t.wg.Add(1)
	t.mu.Unlock()

	t.countChanged(running)
	go t.run(ctx, tk, fn)
	return tk.id
}

func (t *Tasks) run(ctx context.Context, tk *task, fn TaskFunc) {
	defer t.wg.Done()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = lerrors.Wrap(lerrors.FromPanic(r), lerrors.ErrCodeTaskFailed, "task panicked")
			}
		}()
		return fn(ctx)
	}()
	canceled := ctx.Err() != nil
	tk.cancel()

	t.mu.Lock()
	tk.done = true
	t.running--
	running := t.running
	t.mu.Unlock()
	t.countChanged(running)

	if err != nil && !lerrors.IsCode(err, lerrors.ErrCodeTaskFailed) && !canceled {
		err = lerrors.Wrap(err, lerrors.ErrCodeTaskFailed, "task "+tk.name+" failed").
			WithContext("path", tk.path.String())
	}
	res := TaskResult{ID: tk.id, Path: tk.path, Name: tk.name, Err: err, Canceled: canceled}
	t.deliver(res)
}

func (t *Tasks) deliver(res TaskResult) {
	if t.cfg.OnResult == nil {
		return
	}
	if t.cfg.Post != nil {
		t.cfg.Post(func() { t.cfg.OnResult(res) })
		return
	}
	t.cfg.OnResult(res)
}

func (t *Tasks) countChanged(running int) {
	if t.cfg.OnCountChange != nil {
		t.cfg.OnCountChange(running)
	}
}

// Cancel cancels every task owned by path and forgets them, so a later
// Start for the same path runs again. It returns how many were still
// running.
func (t *Tasks) Cancel(path identity.Path) int {
	if t == nil {
		return 0
	}
	pk := path.Key()
	t.mu.Lock()
	named := t.byPath[pk]
	delete(t.byPath, pk)
	n := 0
	for _, tk := range named {
		if !tk.done {
			n++
		}
		tk.cancel()
	}
	t.mu.Unlock()
	return n
}

// Running returns the number of tasks that have not finished.
func (t *Tasks) Running() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Has reports whether a task named name is registered for path.
func (t *Tasks) Has(path identity.Path, name string) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byPath[path.Key()][name]
	return ok
}

// Close cancels every task and waits for them to return.
func (t *Tasks) Close() {
	if t == nil {
		return
	}
	t.stop()
	t.mu.Lock()
	t.byPath = make(map[string]map[string]*task)
	t.mu.Unlock()
	t.wg.Wait()
}

// Wait blocks until every started task has returned.
func (t *Tasks) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

type resultLog struct {
	mu      sync.Mutex
	results []TaskResult
}

func (l *resultLog) add(r TaskResult) {
	l.mu.Lock()
	l.results = append(l.results, r)
	l.mu.Unlock()
}

func (l *resultLog) all() []TaskResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]TaskResult(nil), l.results...)
}

func TestTasks_StartOncePerPathAndName(t *testing.T) {
	var log resultLog
	tasks := NewTasks(context.Background(), TaskConfig{OnResult: log.add})
	defer tasks.Close()

	runs := make(chan struct{}, 4)
	fn := func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	}

	id1 := tasks.Start(path("a"), "load", fn)
	id2 := tasks.Start(path("a"), "load", fn)
	id3 := tasks.Start(path("a"), "other", fn)
	tasks.Wait()

	assert.NotEmpty(t, id1)
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Len(t, runs, 2)
	assert.True(t, tasks.Has(path("a"), "load"))

	// Completed tasks stay registered until the path goes away.
	tasks.Start(path("a"), "load", fn)
	tasks.Wait()
	assert.Len(t, runs, 2)
	assert.Len(t, log.all(), 2)
}

func TestTasks_CancelledOnDisappear(t *testing.T) {
	var log resultLog
	s := NewStorage(nil)
	tasks := NewTasks(context.Background(), TaskConfig{OnResult: log.add})
	s.AttachTasks(tasks)
	defer tasks.Close()

	started := make(chan struct{})
	p := path("spinner")

	s.BeginPass()
	s.Visit(p)
	tasks.Start(p, "tick", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	s.EndPass()
	<-started
	assert.Equal(t, 1, tasks.Running())

	s.BeginPass()
	s.EndPass()
	tasks.Wait()

	require.Len(t, log.all(), 1)
	res := log.all()[0]
	assert.True(t, res.Canceled)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, tasks.Has(p, "tick"))
	assert.Zero(t, tasks.Running())
}

func TestTasks_FailuresAreReported(t *testing.T) {
	var log resultLog
	var posted []func()
	var mu sync.Mutex
	tasks := NewTasks(context.Background(), TaskConfig{
		OnResult: log.add,
		Post: func(fn func()) {
			mu.Lock()
			posted = append(posted, fn)
			mu.Unlock()
		},
	})
	defer tasks.Close()

	tasks.Start(path("a"), "boom", func(context.Context) error { return errors.New("boom") })
	tasks.Start(path("b"), "panic", func(context.Context) error { panic("kaboom") })
	tasks.Wait()

	// Nothing reaches the handler until the loop runs the posted functions.
	assert.Empty(t, log.all())
	mu.Lock()
	for _, fn := range posted {
		fn()
	}
	mu.Unlock()

	results := log.all()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Canceled)
		assert.True(t, lerrors.IsCode(r.Err, lerrors.ErrCodeTaskFailed), "got %v", r.Err)
	}
}

func TestTasks_CountAndClose(t *testing.T) {
	var mu sync.Mutex
	var counts []int
	tasks := NewTasks(context.Background(), TaskConfig{
		OnCountChange: func(n int) {
			mu.Lock()
			counts = append(counts, n)
			mu.Unlock()
		},
	})

	block := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	tasks.Start(path("a"), "x", block)
	tasks.Start(path("b"), "x", block)

	done := make(chan struct{})
	go func() {
		tasks.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	assert.Zero(t, tasks.Running())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, counts, 4)
	assert.Contains(t, counts, 0)

	var nilTasks *Tasks
	assert.Empty(t, nilTasks.Start(path("a"), "x", block))
	assert.Zero(t, nilTasks.Cancel(path("a")))
}

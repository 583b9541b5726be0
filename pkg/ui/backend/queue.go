package backend

import (
	"sync"

	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Queue is the event queue shared by backend implementations.
type Queue struct {
	events chan terminal.Event
	quit   chan struct{}
	once   sync.Once
}

// NewQueue creates a queue holding up to size pending events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{events: make(chan terminal.Event, size), quit: make(chan struct{})}
}

// Poll blocks for the next event; it returns nil after Close.
func (q *Queue) Poll() terminal.Event {
	select {
	case <-q.quit:
		return nil
	case ev := <-q.events:
		return ev
	}
}

// Post enqueues ev without blocking.
func (q *Queue) Post(ev terminal.Event) error {
	select {
	case <-q.quit:
		return ErrClosed
	default:
	}
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue. Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.quit) })
}

// Done is closed once the queue is closed.
func (q *Queue) Done() <-chan struct{} {
	return q.quit
}

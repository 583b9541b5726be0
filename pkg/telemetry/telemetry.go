// Package telemetry publishes render-loop events, prometheus metrics and
// otel spans.
package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType names something the render loop reports.
type EventType string

const (
	EventPassCompleted EventType = "pass.completed"
	EventWriteFailed   EventType = "output.write_failed"
	EventTaskStarted   EventType = "task.started"
	EventTaskFailed    EventType = "task.failed"
	EventTaskCompleted EventType = "task.completed"
	EventFocusChanged  EventType = "focus.changed"
	EventConfigReload  EventType = "config.reloaded"
)

// Event describes something the render loop did.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Pass      uint64         `json:"pass,omitempty"`
	Path      string         `json:"path,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

const defaultHubBuffer = 64

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

type subscriber struct {
	ch    chan Event
	types map[EventType]bool
}

func (s *subscriber) wants(t EventType) bool {
	return len(s.types) == 0 || s.types[t]
}

// Hub fans events out to subscribers. Publishing never blocks the loop: a
// subscriber whose buffer is full misses the event and Dropped counts it.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{subs: make(map[*subscriber]struct{}), buffer: defaultHubBuffer}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish stamps ev if needed and delivers it to matching subscribers.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for s := range h.subs {
		if !s.wants(ev.Type) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel of future events and a func that ends the
// subscription. With no types every event is delivered. After Close the
// channel comes back already closed.
func (h *Hub) Subscribe(types ...EventType) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}
	s := &subscriber{ch: make(chan Event, h.buffer)}
	if len(types) > 0 {
		s.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	h.subs[s] = struct{}{}
	return s.ch, func() { h.remove(s) }
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Dropped reports how many deliveries were skipped on full buffers.
func (h *Hub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return h.dropped.Load()
}

// Close ends every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}

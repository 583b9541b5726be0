// Package sim provides a simulation backend for testing.
package sim

import (
	"strings"
	"sync"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Backend is an in-memory terminal. Output lands in a recorder; input is
// injected as events or raw bytes.
type Backend struct {
	mu      sync.Mutex
	width   int
	height  int
	rec     *output.Recorder
	queue   *backend.Queue
	decoder *terminal.Decoder
	inited  bool
}

// New creates a new simulation backend with the given dimensions.
func New(width, height int) *Backend {
	return &Backend{
		width:   width,
		height:  height,
		rec:     output.NewRecorder(),
		queue:   backend.NewQueue(256),
		decoder: terminal.NewDecoder(),
	}
}

// Init marks the backend initialized.
func (s *Backend) Init() error {
	s.mu.Lock()
	s.inited = true
	s.mu.Unlock()
	return nil
}

// Fini stops event delivery.
func (s *Backend) Fini() {
	s.mu.Lock()
	s.inited = false
	s.mu.Unlock()
	s.queue.Close()
}

// Initialized reports whether Init ran and Fini has not.
func (s *Backend) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

// Size returns the simulated dimensions.
func (s *Backend) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Sink returns the recorder that captures output.
func (s *Backend) Sink() output.Sink {
	return s.rec
}

// Recorder exposes the recorder for assertions.
func (s *Backend) Recorder() *output.Recorder {
	return s.rec
}

// PollEvent blocks for the next injected event.
func (s *Backend) PollEvent() terminal.Event {
	return s.queue.Poll()
}

// PostEvent injects an event.
func (s *Backend) PostEvent(ev terminal.Event) error {
	return s.queue.Post(ev)
}

// Resize changes the simulated size without notifying the app.
func (s *Backend) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// InjectKey injects a key event into the simulation.
func (s *Backend) InjectKey(key terminal.Key, r rune) {
	_ = s.PostEvent(terminal.KeyEvent{Key: key, Rune: r})
}

// InjectKeyRune injects a regular character keypress.
func (s *Backend) InjectKeyRune(r rune) {
	s.InjectKey(terminal.KeyRune, r)
}

// InjectKeyString injects a string as a sequence of key events.
func (s *Backend) InjectKeyString(str string) {
	for _, r := range str {
		s.InjectKeyRune(r)
	}
}

// InjectBytes decodes raw terminal input and injects the resulting events.
// A trailing lone ESC is delivered immediately.
func (s *Backend) InjectBytes(p []byte) {
	s.mu.Lock()
	events := s.decoder.Feed(p)
	events = append(events, s.decoder.Flush()...)
	s.mu.Unlock()
	for _, ev := range events {
		_ = s.PostEvent(ev)
	}
}

// InjectResize changes the size and injects a resize event.
func (s *Backend) InjectResize(width, height int) {
	s.Resize(width, height)
	_ = s.PostEvent(terminal.ResizeEvent{Width: width, Height: height})
}

// Capture returns the plain text of the screen, one line per row, with
// trailing blanks trimmed.
func (s *Backend) Capture() string {
	_, h := s.Size()
	lines := s.rec.Screen(h)
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// FindText searches for text on the screen and returns its position.
func (s *Backend) FindText(text string) (x, y int) {
	for row, line := range strings.Split(s.Capture(), "\n") {
		if col := strings.Index(line, text); col >= 0 {
			return col, row
		}
	}
	return -1, -1
}

// ContainsText returns true if the text appears anywhere on screen.
func (s *Backend) ContainsText(text string) bool {
	x, y := s.FindText(text)
	return x >= 0 && y >= 0
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)

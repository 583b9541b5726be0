package output

import (
	"io"
	"strings"
	"sync"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
)

// ANSISink renders lines with absolute cursor addressing. Each batch is
// flushed with a single Write call.
type ANSISink struct {
	mu     sync.Mutex
	out    io.Writer
	origin int
}

// NewANSISink creates a sink writing to out. Rows are addressed from the
// top of the screen.
func NewANSISink(out io.Writer) *ANSISink {
	return &ANSISink{out: out}
}

// SetOrigin offsets every row by origin screen rows, for inline rendering
// below existing output.
func (s *ANSISink) SetOrigin(origin int) {
	s.mu.Lock()
	s.origin = origin
	s.mu.Unlock()
}

// WriteLines moves to each row, writes it and clears whatever the previous
// content left to the right.
func (s *ANSISink) WriteLines(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(compositor.CursorTo(0, s.origin+l.Row))
		b.WriteString(l.Text)
		b.WriteString(compositor.ANSIClearToEOL)
	}
	_, err := io.WriteString(s.out, b.String())
	return err
}

// SetCursorVisible hides or shows the cursor.
func (s *ANSISink) SetCursorVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := compositor.ANSICursorHide
	if visible {
		seq = compositor.ANSICursorShow
	}
	_, err := io.WriteString(s.out, seq)
	return err
}

// Recorder is an in-memory sink for tests and golden captures. It keeps
// every batch and the resulting screen contents.
type Recorder struct {
	mu      sync.Mutex
	batches [][]Line
	screen  map[int]string
	cursor  []bool
	fail    error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{screen: make(map[int]string)}
}

// FailWith makes subsequent writes return err until cleared with nil.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// WriteLines records a batch.
func (r *Recorder) WriteLines(lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.batches = append(r.batches, append([]Line(nil), lines...))
	for _, l := range lines {
		r.screen[l.Row] = l.Text
	}
	return nil
}

// SetCursorVisible records a cursor directive.
func (r *Recorder) SetCursorVisible(visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.cursor = append(r.cursor, visible)
	return nil
}

// Batches returns every recorded batch.
func (r *Recorder) Batches() [][]Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Line(nil), r.batches...)
}

// Last returns the most recent batch.
func (r *Recorder) Last() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

// Rows returns the row indexes of the most recent batch.
func (r *Recorder) Rows() []int {
	last := r.Last()
	rows := make([]int, len(last))
	for i, l := range last {
		rows[i] = l.Row
	}
	return rows
}

// Screen returns the plain text of rows 0..height-1 as last written.
func (r *Recorder) Screen(height int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, height)
	for y := range out {
		out[y] = compositor.Strip(r.screen[y])
	}
	return out
}

// Cursor returns every recorded cursor directive.
func (r *Recorder) Cursor() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.cursor...)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
	r.screen = make(map[int]string)
	r.cursor = nil
}

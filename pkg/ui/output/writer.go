// Package output writes frames to a line-oriented sink, sending only the
// rows that changed since the last committed frame.
package output

import (
	"errors"
	"sync/atomic"

	"github.com/muesli/termenv"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
)

// ErrBusy is returned by Write when another write is in progress.
var ErrBusy = errors.New("output: write already in progress")

// State is the writer's state machine position.
type State int32

const (
	Idle State = iota
	Writing
)

func (s State) String() string {
	if s == Writing {
		return "writing"
	}
	return "idle"
}

// Line is one terminal row to rewrite. Text is the row's full escape
// encoding including a trailing reset.
type Line struct {
	Row  int
	Text string
}

// Sink receives the diffed rows and cursor directives.
type Sink interface {
	WriteLines(lines []Line) error
	SetCursorVisible(visible bool) error
}

// Stats describes one Write.
type Stats struct {
	Written int
	Skipped int
	Cleared int
}

// Option configures a Writer.
type Option func(*Writer)

// WithClearStyle sets the style used for blank rows that replace rows a
// shorter frame no longer covers.
func WithClearStyle(style compositor.Style) Option {
	return func(w *Writer) { w.clearStyle = style }
}

// WithProfile downgrades colors to what the terminal supports.
func WithProfile(p termenv.Profile) Option {
	return func(w *Writer) {
		w.profile = p
		w.degrade = p != termenv.TrueColor
	}
}

// Writer diffs consecutive frames. Write is not reentrant: a call made
// while another is in progress fails with ErrBusy.
type Writer struct {
	sink       Sink
	state      atomic.Int32
	clearStyle compositor.Style
	profile    termenv.Profile
	degrade    bool

	prev      []string
	prevWidth int
	full      bool
}

// NewWriter creates a writer that has committed nothing, so the first frame
// is written in full.
func NewWriter(sink Sink, opts ...Option) *Writer {
	w := &Writer{sink: sink, profile: termenv.TrueColor}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Writer) State() State {
	return State(w.state.Load())
}

// Invalidate forces the next Write to rewrite every row, e.g. after a
// resize scrambled the screen.
func (w *Writer) Invalidate() {
	w.full = true
}

// Reset forgets the committed frame entirely.
func (w *Writer) Reset() {
	w.prev = nil
	w.prevWidth = 0
	w.full = false
}

// Write sends the rows of f that differ from the last committed frame. On a
// sink error nothing is committed, so the next Write retries the same diff.
// A zero-sized frame produces no output.
func (w *Writer) Write(f *compositor.Frame) (Stats, error) {
	if !w.state.CompareAndSwap(int32(Idle), int32(Writing)) {
		return Stats{}, ErrBusy
	}
	defer w.state.Store(int32(Idle))

	var st Stats
	if f.IsEmpty() {
		return st, nil
	}

	rows := make([]string, f.Height())
	var lines []Line
	for y := range rows {
		rows[y] = w.encode(f.Row(y))
		if !w.full && y < len(w.prev) && w.prev[y] == rows[y] {
			st.Skipped++
			continue
		}
		lines = append(lines, Line{Row: y, Text: rows[y] + compositor.ANSIReset})
		st.Written++
	}
	if len(w.prev) > len(rows) {
		blank := w.blankRow(max(w.prevWidth, f.Width()))
		for y := len(rows); y < len(w.prev); y++ {
			lines = append(lines, Line{Row: y, Text: blank})
			st.Cleared++
		}
	}

	if len(lines) > 0 {
		if err := w.sink.WriteLines(lines); err != nil {
			return Stats{}, lerrors.Wrap(err, lerrors.ErrCodeOutputWrite, "write frame").
				WithRetryable(true)
		}
	}
	w.prev = rows
	w.prevWidth = f.Width()
	w.full = false
	return st, nil
}

// SetCursorVisible forwards a cursor directive to the sink.
func (w *Writer) SetCursorVisible(visible bool) error {
	if err := w.sink.SetCursorVisible(visible); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeOutputWrite, "set cursor visibility")
	}
	return nil
}

func (w *Writer) blankRow(width int) string {
	cells := make([]compositor.Cell, width)
	for i := range cells {
		cells[i] = compositor.Blank(w.clearStyle)
	}
	return w.encode(cells) + compositor.ANSIReset
}

func (w *Writer) encode(row []compositor.Cell) string {
	if !w.degrade {
		return compositor.EncodeCells(row)
	}
	out := make([]compositor.Cell, len(row))
	for i, c := range row {
		c.Style.FG = degradeColor(w.profile, c.Style.FG)
		c.Style.BG = degradeColor(w.profile, c.Style.BG)
		out[i] = c
	}
	return compositor.EncodeCells(out)
}

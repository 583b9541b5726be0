// Package tty is the backend for a real terminal device.
package tty

import (
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

const (
	bracketedPasteOn  = "\x1b[?2004h"
	bracketedPasteOff = "\x1b[?2004l"
)

// Options configure the terminal.
type Options struct {
	// AltScreen switches to the alternate screen buffer.
	AltScreen bool
	// InlineOrigin is the first screen row used when not on the alternate
	// screen.
	InlineOrigin int
	// EscTimeout is how long a lone ESC waits for the rest of a sequence.
	EscTimeout time.Duration
	// QueueSize bounds pending events.
	QueueSize int
	Logger    *logging.Logger
}

// Backend drives a terminal through a pair of files, normally stdin and
// stdout.
type Backend struct {
	in   *os.File
	out  *os.File
	opts Options

	sink  *output.ANSISink
	queue *backend.Queue

	mu       sync.Mutex
	state    *term.State
	width    int
	height   int
	inited   bool
	finished bool
	stopSig  func()
	logger   *logging.Logger
}

// New creates a backend reading in and writing out.
func New(in, out *os.File, opts Options) *Backend {
	if opts.EscTimeout <= 0 {
		opts.EscTimeout = 50 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	b := &Backend{
		in:     in,
		out:    out,
		opts:   opts,
		sink:   output.NewANSISink(out),
		queue:  backend.NewQueue(opts.QueueSize),
		width:  80,
		height: 24,
		logger: logger.Component("tty"),
	}
	if !opts.AltScreen {
		b.sink.SetOrigin(opts.InlineOrigin)
	}
	return b
}

// Init enters raw mode, prepares the screen and starts the input and
// resize watchers.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inited {
		return nil
	}

	fd := int(b.in.Fd())
	if term.IsTerminal(fd) {
		st, err := term.MakeRaw(fd)
		if err != nil {
			return lerrors.Wrap(err, lerrors.ErrCodeInputRead, "failed to enter raw mode")
		}
		b.state = st
	}
	b.refreshSizeLocked()

	seq := bracketedPasteOn
	if b.opts.AltScreen {
		seq = compositor.ANSIAltScreen + compositor.ANSIClearScreen + compositor.ANSICursorHome + seq
	}
	if _, err := io.WriteString(b.out, seq); err != nil {
		b.restoreLocked()
		return lerrors.Wrap(err, lerrors.ErrCodeOutputWrite, "failed to prepare screen")
	}

	b.inited = true
	b.stopSig = watchResize(b.onResize)
	go b.readLoop()
	return nil
}

// Fini restores the terminal and stops event delivery.
func (b *Backend) Fini() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	b.queue.Close()
	if !b.inited {
		return
	}
	if b.stopSig != nil {
		b.stopSig()
	}
	seq := bracketedPasteOff + compositor.ANSICursorShow + compositor.ANSIReset
	if b.opts.AltScreen {
		seq += compositor.ANSIMainScreen
	}
	_, _ = io.WriteString(b.out, seq)
	b.restoreLocked()
}

func (b *Backend) restoreLocked() {
	if b.state != nil {
		_ = term.Restore(int(b.in.Fd()), b.state)
		b.state = nil
	}
}

// Size returns the last known terminal size.
func (b *Backend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *Backend) refreshSizeLocked() bool {
	w, h, err := term.GetSize(int(b.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return false
	}
	changed := w != b.width || h != b.height
	b.width, b.height = w, h
	return changed
}

func (b *Backend) onResize() {
	b.mu.Lock()
	changed := b.refreshSizeLocked()
	w, h := b.width, b.height
	b.mu.Unlock()
	if changed {
		_ = b.queue.Post(terminal.ResizeEvent{Width: w, Height: h})
	}
}

// Sink returns the ANSI sink writing to the terminal.
func (b *Backend) Sink() output.Sink {
	return b.sink
}

// PollEvent blocks for the next decoded event.
func (b *Backend) PollEvent() terminal.Event {
	return b.queue.Poll()
}

// PostEvent injects an event.
func (b *Backend) PostEvent(ev terminal.Event) error {
	return b.queue.Post(ev)
}

// readLoop pumps raw bytes into the decoder. A lone ESC is flushed after
// EscTimeout of silence.
func (b *Backend) readLoop() {
	chunks := make(chan []byte)
	go func() {
		defer close(chunks)
		buf := make([]byte, 1024)
		for {
			n, err := b.in.Read(buf)
			if n > 0 {
				p := append([]byte(nil), buf[:n]...)
				select {
				case chunks <- p:
				case <-b.queue.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					b.logger.Warn("terminal read failed", "error", err.Error())
				}
				return
			}
		}
	}()

	dec := terminal.NewDecoder()
	var timeout <-chan time.Time
	for {
		select {
		case <-b.queue.Done():
			return
		case p, ok := <-chunks:
			if !ok {
				b.post(dec.Flush())
				return
			}
			b.post(dec.Feed(p))
			timeout = nil
			if dec.Pending() {
				timeout = time.After(b.opts.EscTimeout)
			}
		case <-timeout:
			timeout = nil
			b.post(dec.Flush())
		}
	}
}

func (b *Backend) post(events []terminal.Event) {
	for _, ev := range events {
		if err := b.queue.Post(ev); err != nil {
			b.logger.Debug("event dropped", "event", ev, "error", err.Error())
		}
	}
}

var _ backend.Backend = (*Backend)(nil)

// Package backend defines the terminal collaborator the runtime drives.
// Implementations own the device: they put it in raw mode, decode input
// into events and expose an output sink for diffed rows. The simulation
// backend keeps everything in memory for golden-frame tests.
package backend

import (
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Backend is the terminal abstraction layer.
type Backend interface {
	// Init prepares the terminal (raw mode, alternate screen).
	Init() error

	// Fini restores the terminal. It is idempotent and unblocks PollEvent.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// Sink receives the rows the diff writer emits.
	Sink() output.Sink

	// PollEvent blocks until an event is available and returns it.
	// Returns nil once the backend is shutting down.
	PollEvent() terminal.Event

	// PostEvent injects an event into the event queue.
	PostEvent(ev terminal.Event) error
}

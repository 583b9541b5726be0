package runtime

import (
	"time"

	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Message represents an event flowing into the loop.
// Messages come from terminal input, timers, or background goroutines.
type Message interface {
	isMessage()
}

// KeyMsg represents a keyboard input event.
type KeyMsg struct {
	terminal.KeyEvent
}

func (KeyMsg) isMessage() {}

// ResizeMsg indicates the terminal size changed.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) isMessage() {}

// MouseMsg represents a mouse input event.
type MouseMsg struct {
	terminal.MouseEvent
}

func (MouseMsg) isMessage() {}

// PasteMsg represents pasted text from bracketed paste mode.
type PasteMsg struct {
	Text string
}

func (PasteMsg) isMessage() {}

// TickMsg is sent on each frame tick for animations.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// FuncMsg runs Fn on the loop. It is how background goroutines mutate
// state cells.
type FuncMsg struct {
	Fn func()
}

func (FuncMsg) isMessage() {}

// TaskMsg reports a finished background task.
type TaskMsg struct {
	Result state.TaskResult
}

func (TaskMsg) isMessage() {}

// CommandMsg carries a command into the loop.
type CommandMsg struct {
	Command Command
}

func (CommandMsg) isMessage() {}

// messageFor converts a backend event. Unknown events yield nil.
func messageFor(ev terminal.Event) Message {
	switch e := ev.(type) {
	case terminal.KeyEvent:
		return KeyMsg{KeyEvent: e}
	case terminal.ResizeEvent:
		return ResizeMsg{Width: e.Width, Height: e.Height}
	case terminal.MouseEvent:
		return MouseMsg{MouseEvent: e}
	case terminal.PasteEvent:
		return PasteMsg{Text: e.Text}
	}
	return nil
}

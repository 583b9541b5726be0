package runtime

// Command represents an intent raised by key handlers or views.
// Commands are handled by the app, then by the configured CommandHandler.
type Command interface {
	isCommand()
}

// Quit signals the application should exit.
type Quit struct{}

func (Quit) isCommand() {}

// Refresh forces the next pass to rewrite every row.
type Refresh struct{}

func (Refresh) isCommand() {}

// FocusNext moves focus to the next element of the active section.
type FocusNext struct{}

func (FocusNext) isCommand() {}

// FocusPrev moves focus to the previous element of the active section.
type FocusPrev struct{}

func (FocusPrev) isCommand() {}

// ActivateSection switches the active focus section.
type ActivateSection struct {
	ID string
}

func (ActivateSection) isCommand() {}

// ClearFocus resets every section, for example when a modal takes over.
type ClearFocus struct{}

func (ClearFocus) isCommand() {}

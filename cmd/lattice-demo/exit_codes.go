package main

import (
	"errors"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Exit statuses beyond the generic failure of 1.
const (
	exitConfig  = 2
	exitRuntime = 3
)

// codedExit pins an error to a process exit status.
type codedExit struct {
	status int
	err    error
}

func (e *codedExit) Error() string { return e.err.Error() }
func (e *codedExit) Unwrap() error { return e.err }

func withExitCode(err error, status int) error {
	if err == nil {
		return nil
	}
	return &codedExit{status: status, err: err}
}

// exitCodeForError prefers an explicit status, then classifies lattice
// error codes.
func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	var ce *codedExit
	if errors.As(err, &ce) && ce.status != 0 {
		return ce.status
	}
	switch lerrors.GetCode(err) {
	case lerrors.ErrCodeConfigLoad, lerrors.ErrCodeConfigParse, lerrors.ErrCodeConfigInvalid:
		return exitConfig
	case lerrors.ErrCodeOutputWrite, lerrors.ErrCodeInputRead:
		return exitRuntime
	}
	return 1
}

package backend

import "errors"

// ErrClosed is returned when posting to a backend that has been finalized.
var ErrClosed = errors.New("backend closed")

// ErrQueueFull is returned when the event queue cannot take more events.
var ErrQueueFull = errors.New("event queue full")

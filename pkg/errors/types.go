// Package errors defines the structured error type shared by lattice packages.
//
// Programming errors (invariant violations inside a render pass) are raised
// with Panic and carry a code so tests and the runtime recover handler can
// classify them. Recoverable failures are returned as *Error values.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Render core programming errors
	ErrCodeHydrateOutsidePass ErrorCode = "HYDRATE_OUTSIDE_PASS"
	ErrCodeInvalidFrame       ErrorCode = "INVALID_FRAME"
	ErrCodeEnvStack           ErrorCode = "ENV_STACK"
	ErrCodeRenderReentrant    ErrorCode = "RENDER_REENTRANT"
	ErrCodeFocusConflict      ErrorCode = "FOCUS_CONFLICT"
	ErrCodeStateType          ErrorCode = "STATE_TYPE"

	// Runtime errors
	ErrCodeOutputWrite ErrorCode = "OUTPUT_WRITE"
	ErrCodeInputRead   ErrorCode = "INPUT_READ"
	ErrCodeTaskFailed  ErrorCode = "TASK_FAILED"

	// Storage errors
	ErrCodeStorageRead  ErrorCode = "STORAGE_READ"
	ErrCodeStorageWrite ErrorCode = "STORAGE_WRITE"

	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error represents a structured lattice error
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Context    map[string]any
	Stack      []Frame
	Retryable  bool
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// New creates a new structured error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Stack:   captureStack(2), // Skip New and caller
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with lattice error context
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
		Stack:      captureStack(2),
	}
}

// Panic raises a programming error. The render loop treats these as fatal.
func Panic(code ErrorCode, format string, args ...any) {
	panic(&Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
		Stack:   captureStack(2),
	})
}

// WithContext adds context key-value pairs to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRetryable marks the error as retryable
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s: %v", k, e.Context[k]))
		}
		sb.WriteString("}")
	}

	if e.Underlying != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Underlying))
	}

	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error is retryable
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// StackTrace returns a formatted stack trace
func (e *Error) StackTrace() string {
	var sb strings.Builder

	sb.WriteString("Stack trace:\n")
	for i, frame := range e.Stack {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, frame.String()))
		sb.WriteString(fmt.Sprintf("     %s:%d\n", frame.File, frame.Line))
	}

	return sb.String()
}

// String formats a stack frame
func (f Frame) String() string {
	return f.Function
}

// captureStack captures the current call stack
func captureStack(skip int) []Frame {
	const maxDepth = 32
	var pcs [maxDepth]uintptr

	n := runtime.Callers(skip+1, pcs[:])
	frames := make([]Frame, 0, n)

	for i := 0; i < n; i++ {
		pc := pcs[i]
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		file, line := fn.FileLine(pc)

		frames = append(frames, Frame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}

// IsCode checks if an error chain contains a lattice error with the given code
func IsCode(err error, code ErrorCode) bool {
	var le *Error
	if !stderrors.As(err, &le) {
		return false
	}
	return le.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var le *Error
	if !stderrors.As(err, &le) {
		return ErrCodeInternal
	}

	return le.Code
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var le *Error
	if !stderrors.As(err, &le) {
		return false
	}
	return le.Retryable
}

// FromPanic converts a recovered panic value into an error. Values that are
// already *Error keep their code; anything else becomes ErrCodeInternal.
func FromPanic(v any) error {
	if v == nil {
		return nil
	}
	switch p := v.(type) {
	case *Error:
		return p
	case error:
		return Wrap(p, ErrCodeInternal, "panic")
	default:
		return Newf(ErrCodeInternal, "panic: %v", p)
	}
}

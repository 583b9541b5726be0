package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidFrame, "negative width")

	if err == nil {
		t.Fatal("New should return non-nil error")
	}
	if err.Code != ErrCodeInvalidFrame {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFrame)
	}
	if err.Message != "negative width" {
		t.Errorf("Message = %v, want 'negative width'", err.Message)
	}
	if err.Underlying != nil {
		t.Error("Underlying should be nil for New error")
	}
	if len(err.Stack) == 0 {
		t.Error("Stack should be captured")
	}
	if err.Retryable {
		t.Error("Retryable should default to false")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("broken pipe")
	err := Wrap(underlying, ErrCodeOutputWrite, "write frame")

	if err.Underlying != underlying {
		t.Error("Underlying should be preserved")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Error("Error string should include underlying error")
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should see through Wrap")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "test"); err != nil {
		t.Error("Wrap of nil should return nil")
	}
}

func TestWithContext_SortedKeys(t *testing.T) {
	err := New(ErrCodeFocusConflict, "duplicate id").
		WithContext("section", "main").
		WithContext("id", "ok")

	got := err.Error()
	want := "[FOCUS_CONFLICT] duplicate id {id: ok, section: main}"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loop: %w", New(ErrCodeOutputWrite, "sink failed"))

	if !IsCode(err, ErrCodeOutputWrite) {
		t.Error("IsCode should find code through fmt.Errorf wrapping")
	}
	if IsCode(err, ErrCodeInputRead) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCodeOutputWrite) {
		t.Error("IsCode should return false for nil error")
	}
	if IsCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("IsCode should return false for plain errors")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(New(ErrCodeTaskFailed, "x")) != ErrCodeTaskFailed {
		t.Error("GetCode should return the error's code")
	}
	if GetCode(nil) != "" {
		t.Error("GetCode should return empty string for nil")
	}
	if GetCode(errors.New("standard")) != ErrCodeInternal {
		t.Error("GetCode should return ErrCodeInternal for plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := New(ErrCodeOutputWrite, "eagain").WithRetryable(true)
	if !IsRetryable(retryable) || !retryable.IsRetryable() {
		t.Error("IsRetryable should return true for retryable error")
	}
	if IsRetryable(New(ErrCodeConfigInvalid, "bad config")) {
		t.Error("IsRetryable should return false for non-retryable error")
	}
	if IsRetryable(nil) {
		t.Error("IsRetryable should return false for nil")
	}
}

func TestPanic_CarriesCode(t *testing.T) {
	defer func() {
		r := recover()
		err := FromPanic(r)
		if !IsCode(err, ErrCodeHydrateOutsidePass) {
			t.Fatalf("recovered %v, want HYDRATE_OUTSIDE_PASS", r)
		}
		if !strings.Contains(err.Error(), "path /a") {
			t.Errorf("message lost: %v", err)
		}
	}()
	Panic(ErrCodeHydrateOutsidePass, "hydrate %s", "path /a")
}

func TestFromPanic(t *testing.T) {
	if FromPanic(nil) != nil {
		t.Error("FromPanic(nil) should be nil")
	}
	if GetCode(FromPanic("boom")) != ErrCodeInternal {
		t.Error("string panics should become INTERNAL")
	}
	base := errors.New("io")
	if !errors.Is(FromPanic(base), base) {
		t.Error("error panics should wrap the original")
	}
}

func TestStackTrace(t *testing.T) {
	err := New(ErrCodeInternal, "test error")

	trace := err.StackTrace()
	if !strings.Contains(trace, "Stack trace:") {
		t.Error("StackTrace should contain header")
	}
	if len(err.Stack) == 0 {
		t.Error("Stack should have frames")
	}
}

func TestCaptureStack(t *testing.T) {
	frames := captureStack(0)
	if len(frames) == 0 {
		t.Fatal("captureStack should return at least one frame")
	}

	found := false
	for _, frame := range frames {
		if strings.Contains(frame.Function, "Test") || strings.Contains(frame.Function, "errors") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Stack should contain test or errors package frames")
	}
}

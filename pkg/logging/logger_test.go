package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestComponentFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug).Component("runtime").WithPath("/Root.0")

	log.PassCompleted(3, 2, 5, 1500*time.Microsecond)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	rec := lines[0]
	if rec["component"] != "runtime" {
		t.Errorf("component = %v", rec["component"])
	}
	if rec["path"] != "/Root.0" {
		t.Errorf("path = %v", rec["path"])
	}
	if rec["system"] != "lattice" {
		t.Errorf("system = %v", rec["system"])
	}
	if rec["rows_written"] != float64(2) || rec["rows_skipped"] != float64(5) {
		t.Errorf("row counts = %v/%v", rec["rows_written"], rec["rows_skipped"])
	}
	if rec["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v", rec["duration_ms"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.FocusChanged("main", "a", "b")
	log.TaskFailed("/x", "fetch", errors.New("timeout"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want only the warning", len(lines))
	}
	if lines[0]["error"] != "timeout" {
		t.Errorf("error = %v", lines[0]["error"])
	}
}

func TestLifecycleSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug)

	log.Lifecycle(1, 0, 0)
	if buf.Len() != 0 {
		t.Errorf("empty lifecycle should not log, got %q", buf.String())
	}
	log.Lifecycle(2, 1, 0)
	if len(decodeLines(t, &buf)) != 1 {
		t.Error("non-empty lifecycle should log")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" WARN ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lattice.log")
	log, closer, err := Open(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	log.WriteFailed(errors.New("EPIPE"), false)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "output write failed") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	log, closer, err := Open("", slog.LevelDebug)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	log.Info("dropped")
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

package terminal

import "testing"

func TestKeyConstants(t *testing.T) {
	seen := make(map[string]Key)
	for k := KeyNone; k <= KeyF12; k++ {
		name := k.String()
		if name == "unknown" {
			t.Errorf("key %d has no name", k)
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("keys %d and %d share name %q", prev, k, name)
		}
		seen[name] = k
	}
	if got := Key(999).String(); got != "unknown" {
		t.Errorf("Key(999).String() = %q", got)
	}
}

func TestEventInterface(t *testing.T) {
	var _ Event = KeyEvent{}
	var _ Event = ResizeEvent{}
	var _ Event = MouseEvent{}
	var _ Event = PasteEvent{}
}

func TestKeyEventString(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want string
	}{
		{Char('a'), "a"},
		{Char(' '), "space"},
		{Ctrl('c'), "ctrl+c"},
		{KeyEvent{Key: KeyRune, Rune: 'x', Alt: true}, "alt+x"},
		{KeyEvent{Key: KeyBacktab, Shift: true}, "shift+backtab"},
		{KeyEvent{Key: KeyUp, Ctrl: true, Shift: true}, "ctrl+shift+up"},
		{KeyEvent{Key: KeyF5}, "f5"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestKeyEventIs(t *testing.T) {
	if !Ctrl('c').Is('c', true) {
		t.Error("ctrl+c should match")
	}
	if Char('c').Is('c', true) {
		t.Error("plain c should not match ctrl+c")
	}
	if (KeyEvent{Key: KeyRune, Rune: 'q', Alt: true}).Is('q', false) {
		t.Error("alt+q should not match q")
	}
}

package terminal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecoder_Sequences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Event
	}{
		{"ascii", "hi", []Event{Char('h'), Char('i')}},
		{"utf8", "日é", []Event{Char('日'), Char('é')}},
		{"enter", "\r\n", []Event{KeyEvent{Key: KeyEnter}, KeyEvent{Key: KeyEnter}}},
		{"tab and backspace", "\t\x7f\x08", []Event{
			KeyEvent{Key: KeyTab}, KeyEvent{Key: KeyBackspace}, KeyEvent{Key: KeyBackspace},
		}},
		{"ctrl letters", "\x01\x03\x1a", []Event{Ctrl('a'), Ctrl('c'), Ctrl('z')}},
		{"ctrl punctuation", "\x00\x1c\x1f", []Event{Ctrl(' '), Ctrl('\\'), Ctrl('_')}},
		{"csi arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Event{
			KeyEvent{Key: KeyUp}, KeyEvent{Key: KeyDown}, KeyEvent{Key: KeyRight}, KeyEvent{Key: KeyLeft},
		}},
		{"ss3 arrows and f1", "\x1bOA\x1bOP", []Event{KeyEvent{Key: KeyUp}, KeyEvent{Key: KeyF1}}},
		{"modified arrow", "\x1b[1;5C\x1b[1;2A\x1b[1;3B", []Event{
			KeyEvent{Key: KeyRight, Ctrl: true},
			KeyEvent{Key: KeyUp, Shift: true},
			KeyEvent{Key: KeyDown, Alt: true},
		}},
		{"tilde keys", "\x1b[3~\x1b[5~\x1b[6~\x1b[15~\x1b[24~\x1b[2;5~", []Event{
			KeyEvent{Key: KeyDelete}, KeyEvent{Key: KeyPageUp}, KeyEvent{Key: KeyPageDown},
			KeyEvent{Key: KeyF5}, KeyEvent{Key: KeyF12}, KeyEvent{Key: KeyInsert, Ctrl: true},
		}},
		{"backtab", "\x1b[Z", []Event{KeyEvent{Key: KeyBacktab, Shift: true}}},
		{"alt rune", "\x1bx\x1b\x03", []Event{
			KeyEvent{Key: KeyRune, Rune: 'x', Alt: true},
			KeyEvent{Key: KeyRune, Rune: 'c', Ctrl: true, Alt: true},
		}},
		{"unknown csi dropped", "\x1b[99~\x1b[?1;2cq", []Event{Char('q')}},
		{"paste", "\x1b[200~a\x1b[Bb\x1b[201~z", []Event{PasteEvent{Text: "a\x1b[Bb"}, Char('z')}},
		{"sgr mouse", "\x1b[<0;10;5M\x1b[<0;10;5m\x1b[<65;1;1M\x1b[<34;3;4M", []Event{
			MouseEvent{X: 9, Y: 4, Button: MouseLeft, Action: MousePress},
			MouseEvent{X: 9, Y: 4, Button: MouseLeft, Action: MouseRelease},
			MouseEvent{X: 0, Y: 0, Button: MouseWheelDown, Action: MousePress},
			MouseEvent{X: 2, Y: 3, Button: MouseRight, Action: MouseMove},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDecoder().Feed([]byte(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Feed(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDecoder_SplitInput(t *testing.T) {
	d := NewDecoder()
	in := []byte("a\x1b[1;5D日\x1b[200~pasted\x1b[201~")
	var got []Event
	for i := range in {
		got = append(got, d.Feed(in[i:i+1])...)
	}

	want := []Event{
		Char('a'),
		KeyEvent{Key: KeyLeft, Ctrl: true},
		Char('日'),
		PasteEvent{Text: "pasted"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("byte-at-a-time mismatch (-want +got):\n%s", diff)
	}
	if d.Pending() {
		t.Error("decoder should be drained")
	}
}

func TestDecoder_LoneEscapeWaitsForFlush(t *testing.T) {
	d := NewDecoder()

	if evs := d.Feed([]byte{0x1b}); len(evs) != 0 {
		t.Fatalf("lone ESC decoded early: %v", evs)
	}
	if !d.Pending() {
		t.Fatal("ESC should be pending")
	}

	got := d.Flush()
	if diff := cmp.Diff([]Event{KeyEvent{Key: KeyEscape}}, got); diff != "" {
		t.Errorf("Flush mismatch (-want +got):\n%s", diff)
	}

	// An incomplete CSI flushes as alt+[ followed by the remaining bytes.
	d.Feed([]byte("\x1b[1"))
	got = d.Flush()
	want := []Event{KeyEvent{Key: KeyRune, Rune: '[', Alt: true}, Char('1')}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flush of partial CSI mismatch (-want +got):\n%s", diff)
	}

	if evs := d.Feed([]byte("\x1b\x1b")); len(evs) != 1 {
		t.Errorf("double ESC should emit one escape and hold the second, got %v", evs)
	}
}

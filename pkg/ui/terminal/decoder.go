package terminal

import (
	"bytes"
	"unicode/utf8"
)

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// Decoder turns a raw terminal byte stream into events. Bytes may arrive in
// arbitrary chunks; a sequence split across chunks is held until the rest
// arrives. A lone ESC is ambiguous until more input or a timeout, so the
// caller invokes Flush when the line has been quiet long enough.
type Decoder struct {
	buf []byte
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends p and returns every event that is now complete.
func (d *Decoder) Feed(p []byte) []Event {
	d.buf = append(d.buf, p...)
	return d.drain(false)
}

// Flush decodes whatever is pending as if no more bytes will follow.
func (d *Decoder) Flush() []Event {
	return d.drain(true)
}

// Pending reports whether a partial sequence is buffered.
func (d *Decoder) Pending() bool {
	return len(d.buf) > 0
}

func (d *Decoder) drain(final bool) []Event {
	var out []Event
	for len(d.buf) > 0 {
		ev, n := decodeOne(d.buf, final)
		if n == 0 {
			break
		}
		d.buf = d.buf[n:]
		if ev != nil {
			out = append(out, ev)
		}
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return out
}

// decodeOne decodes the event at the start of b. n is the number of bytes
// consumed; zero means b holds an incomplete sequence.
func decodeOne(b []byte, final bool) (Event, int) {
	if b[0] != 0x1b {
		return decodeRune(b, final)
	}
	if len(b) == 1 {
		if final {
			return KeyEvent{Key: KeyEscape}, 1
		}
		return nil, 0
	}

	switch b[1] {
	case '[':
		return decodeCSI(b, final)
	case 'O':
		if len(b) < 3 {
			if final {
				return KeyEvent{Key: KeyRune, Rune: 'O', Alt: true}, 2
			}
			return nil, 0
		}
		if k, ok := ss3Keys[b[2]]; ok {
			return KeyEvent{Key: k}, 3
		}
		return KeyEvent{Key: KeyRune, Rune: 'O', Alt: true}, 2
	case 0x1b:
		return KeyEvent{Key: KeyEscape}, 1
	default:
		ev, n := decodeRune(b[1:], final)
		if n == 0 {
			return nil, 0
		}
		if k, ok := ev.(KeyEvent); ok {
			k.Alt = true
			return k, n + 1
		}
		return ev, n + 1
	}
}

func decodeRune(b []byte, final bool) (Event, int) {
	c := b[0]
	switch {
	case c == '\r' || c == '\n':
		return KeyEvent{Key: KeyEnter}, 1
	case c == '\t':
		return KeyEvent{Key: KeyTab}, 1
	case c == 0x7f || c == 0x08:
		return KeyEvent{Key: KeyBackspace}, 1
	case c == 0x00:
		return KeyEvent{Key: KeyRune, Rune: ' ', Ctrl: true}, 1
	case c < 0x1b:
		return KeyEvent{Key: KeyRune, Rune: rune('a' + c - 1), Ctrl: true}, 1
	case c < 0x20:
		return KeyEvent{Key: KeyRune, Rune: rune('\\' + c - 0x1c), Ctrl: true}, 1
	case c < utf8.RuneSelf:
		return Char(rune(c)), 1
	}
	if !utf8.FullRune(b) && !final {
		return nil, 0
	}
	r, size := utf8.DecodeRune(b)
	return Char(r), size
}

// decodeCSI handles ESC [ sequences: cursor and editing keys, function
// keys, bracketed paste and SGR mouse reports.
func decodeCSI(b []byte, final bool) (Event, int) {
	if bytes.HasPrefix(b, []byte(pasteStart)) {
		end := bytes.Index(b, []byte(pasteEnd))
		if end < 0 {
			if final {
				return PasteEvent{Text: string(b[len(pasteStart):])}, len(b)
			}
			return nil, 0
		}
		return PasteEvent{Text: string(b[len(pasteStart):end])}, end + len(pasteEnd)
	}

	j := 2
	for j < len(b) && (b[j] < 0x40 || b[j] > 0x7e) {
		j++
	}
	if j >= len(b) {
		if final {
			return KeyEvent{Key: KeyRune, Rune: '[', Alt: true}, 2
		}
		return nil, 0
	}
	n := j + 1
	last := b[j]
	params := b[2:j]

	if len(params) > 0 && params[0] == '<' && (last == 'M' || last == 'm') {
		if ev, ok := decodeSGRMouse(parseNums(params[1:]), last == 'M'); ok {
			return ev, n
		}
		return nil, n
	}

	nums := parseNums(params)
	if k, ok := csiByLast[last]; ok {
		ev := KeyEvent{Key: k}
		if last == 'Z' {
			ev.Key = KeyBacktab
			ev.Shift = true
		}
		if len(nums) == 2 {
			applyModifier(&ev, nums[1])
		}
		return ev, n
	}
	if last == '~' && len(nums) >= 1 {
		k, ok := csiByNum[nums[0]]
		if !ok {
			return nil, n
		}
		ev := KeyEvent{Key: k}
		if len(nums) == 2 {
			applyModifier(&ev, nums[1])
		}
		return ev, n
	}
	// Unknown sequences are consumed and dropped.
	return nil, n
}

func parseNums(p []byte) []int {
	if len(p) == 0 {
		return nil
	}
	nums := []int{0}
	for _, c := range p {
		switch {
		case c == ';':
			nums = append(nums, 0)
		case c >= '0' && c <= '9':
			nums[len(nums)-1] = nums[len(nums)-1]*10 + int(c-'0')
		}
	}
	return nums
}

// applyModifier decodes the xterm modifier parameter: 1 + bitmask of
// shift(1), alt(2) and ctrl(4).
func applyModifier(ev *KeyEvent, mod int) {
	if mod < 2 {
		return
	}
	bits := mod - 1
	ev.Shift = ev.Shift || bits&1 != 0
	ev.Alt = bits&2 != 0
	ev.Ctrl = bits&4 != 0
}

func decodeSGRMouse(nums []int, press bool) (Event, bool) {
	if len(nums) != 3 {
		return nil, false
	}
	cb := nums[0]
	ev := MouseEvent{
		X:     nums[1] - 1,
		Y:     nums[2] - 1,
		Shift: cb&4 != 0,
		Alt:   cb&8 != 0,
		Ctrl:  cb&16 != 0,
	}
	switch {
	case cb&64 != 0:
		if cb&1 != 0 {
			ev.Button = MouseWheelDown
		} else {
			ev.Button = MouseWheelUp
		}
	default:
		ev.Button = [...]MouseButton{MouseLeft, MouseMiddle, MouseRight, MouseNone}[cb&3]
	}
	switch {
	case cb&32 != 0:
		ev.Action = MouseMove
	case press:
		ev.Action = MousePress
	default:
		ev.Action = MouseRelease
	}
	return ev, true
}

var ss3Keys = map[byte]Key{
	'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft,
	'H': KeyHome, 'F': KeyEnd,
	'P': KeyF1, 'Q': KeyF2, 'R': KeyF3, 'S': KeyF4,
}

var csiByLast = map[byte]Key{
	'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft,
	'H': KeyHome, 'F': KeyEnd,
	'P': KeyF1, 'Q': KeyF2, 'S': KeyF4,
	'Z': KeyTab,
}

var csiByNum = map[int]Key{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPageUp, 6: KeyPageDown, 7: KeyHome, 8: KeyEnd,
	11: KeyF1, 12: KeyF2, 13: KeyF3, 14: KeyF4,
	15: KeyF5, 17: KeyF6, 18: KeyF7, 19: KeyF8,
	20: KeyF9, 21: KeyF10, 23: KeyF11, 24: KeyF12,
}

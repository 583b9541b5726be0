package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
)

func text(s string) *compositor.Frame {
	return compositor.FromText(s, compositor.DefaultStyle())
}

func TestWrite_FirstFrameWritesEveryRow(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)

	st, err := w.Write(text("one\ntwo\nsix"))
	require.NoError(t, err)

	assert.Equal(t, Stats{Written: 3}, st)
	assert.Equal(t, []int{0, 1, 2}, rec.Rows())
	assert.Equal(t, []string{"one", "two", "six"}, rec.Screen(3))
	for _, l := range rec.Last() {
		assert.True(t, strings.HasSuffix(l.Text, compositor.ANSIReset), "row %d lacks trailing reset", l.Row)
	}
}

func TestWrite_SameFrameTwiceWritesNothing(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)
	f := text("a\nb")

	_, err := w.Write(f)
	require.NoError(t, err)
	st, err := w.Write(f.Clone())
	require.NoError(t, err)

	assert.Equal(t, Stats{Skipped: 2}, st)
	assert.Len(t, rec.Batches(), 1, "no batch for an unchanged frame")
}

func TestWrite_ABAWritesOnlyDifferingRows(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)
	a := text("same\nleft\nsame\nxxxx")
	b := text("same\nrght\nsame\nyyyy")

	_, err := w.Write(a)
	require.NoError(t, err)

	_, err = w.Write(b)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rec.Rows())

	_, err = w.Write(a)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rec.Rows())
	assert.Equal(t, []string{"same", "left", "same", "xxxx"}, rec.Screen(4))
}

func TestWrite_StyleChangeIsADifference(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)

	_, _ = w.Write(text("ab"))
	_, err := w.Write(compositor.FromText("ab", compositor.DefaultStyle().WithBold(true)))
	require.NoError(t, err)

	assert.Equal(t, []int{0}, rec.Rows())
}

func TestWrite_GrowAndShrink(t *testing.T) {
	rec := NewRecorder()
	bg := compositor.DefaultStyle().WithBG(compositor.ColorBlue)
	w := NewWriter(rec, WithClearStyle(bg))

	_, _ = w.Write(text("a"))
	st, err := w.Write(text("a\nb\nc"))
	require.NoError(t, err)
	assert.Equal(t, Stats{Written: 2, Skipped: 1}, st)
	assert.Equal(t, []int{1, 2}, rec.Rows())

	st, err = w.Write(text("a"))
	require.NoError(t, err)
	assert.Equal(t, Stats{Skipped: 1, Cleared: 2}, st)
	assert.Equal(t, []int{1, 2}, rec.Rows())
	for _, l := range rec.Last() {
		assert.Equal(t, compositor.StyleToANSI(bg)+" "+compositor.ANSIReset, l.Text)
	}
}

func TestWrite_ZeroSizedFrame(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)

	st, err := w.Write(compositor.Empty())
	require.NoError(t, err)
	assert.Zero(t, st)

	st, err = w.Write(compositor.NewFrame(0, 5, compositor.DefaultStyle()))
	require.NoError(t, err)
	assert.Zero(t, st)
	assert.Empty(t, rec.Batches())
}

func TestWrite_SinkErrorDoesNotCommit(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)
	_, _ = w.Write(text("a\nb"))

	boom := errors.New("EIO")
	rec.FailWith(boom)
	_, err := w.Write(text("a\nc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeOutputWrite))
	assert.True(t, lerrors.IsRetryable(err))
	assert.Equal(t, Idle, w.State())

	rec.FailWith(nil)
	_, err = w.Write(text("a\nc"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rec.Rows(), "retry sends the same diff")
}

type reentrantSink struct {
	*Recorder
	w   *Writer
	err error
}

func (s *reentrantSink) WriteLines(lines []Line) error {
	_, s.err = s.w.Write(text("nested"))
	return s.Recorder.WriteLines(lines)
}

func TestWrite_ReentrantIsBusy(t *testing.T) {
	sink := &reentrantSink{Recorder: NewRecorder()}
	w := NewWriter(sink)
	sink.w = w

	assert.Equal(t, Idle, w.State())
	_, err := w.Write(text("outer"))
	require.NoError(t, err)
	assert.ErrorIs(t, sink.err, ErrBusy)
	assert.Equal(t, Idle, w.State())
}

func TestInvalidate_RewritesEverything(t *testing.T) {
	rec := NewRecorder()
	w := NewWriter(rec)
	_, _ = w.Write(text("a\nb\nc"))

	w.Invalidate()
	st, err := w.Write(text("a\nb"))
	require.NoError(t, err)
	assert.Equal(t, Stats{Written: 2, Cleared: 1}, st)

	st, _ = w.Write(text("a\nb"))
	assert.Equal(t, Stats{Skipped: 2}, st)
}

func TestWithProfile_DegradesColors(t *testing.T) {
	rec := NewRecorder()
	f := compositor.FromText("x", compositor.DefaultStyle().
		WithFG(compositor.RGB(255, 0, 0)).
		WithBG(compositor.Color256(196)))

	_, err := NewWriter(rec, WithProfile(termenv.Ascii)).Write(f)
	require.NoError(t, err)
	assert.Equal(t, "x"+compositor.ANSIReset, rec.Last()[0].Text)

	_, err = NewWriter(rec, WithProfile(termenv.ANSI256)).Write(f)
	require.NoError(t, err)
	assert.NotContains(t, rec.Last()[0].Text, "38;2;")
	assert.Contains(t, rec.Last()[0].Text, "38;5;")

	_, err = NewWriter(rec, WithProfile(termenv.ANSI)).Write(f)
	require.NoError(t, err)
	assert.NotContains(t, rec.Last()[0].Text, ";5;")
}

func TestANSISink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewANSISink(&buf)
	w := NewWriter(sink)

	_, err := w.Write(text("hi\nyo"))
	require.NoError(t, err)
	assert.Equal(t,
		"\x1b[1;1Hhi\x1b[0m\x1b[K\x1b[2;1Hyo\x1b[0m\x1b[K",
		buf.String())

	buf.Reset()
	sink.SetOrigin(3)
	_, err = w.Write(text("hi\nno"))
	require.NoError(t, err)
	assert.Equal(t, "\x1b[5;1Hno\x1b[0m\x1b[K", buf.String())

	buf.Reset()
	require.NoError(t, w.SetCursorVisible(false))
	require.NoError(t, w.SetCursorVisible(true))
	assert.Equal(t, compositor.ANSICursorHide+compositor.ANSICursorShow, buf.String())
}

package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

func requirePanicCode(t *testing.T, code lerrors.ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		err := lerrors.FromPanic(recover())
		require.Error(t, err, "expected panic")
		assert.True(t, lerrors.IsCode(err, code), "got %v", err)
	}()
	fn()
}

func newTestScheduler(root func() view.View, cfg SchedulerConfig) (*Scheduler, *output.Recorder) {
	rec := output.NewRecorder()
	cfg.Renderer = view.NewRenderer(state.NewStorage(nil), focus.NewManager())
	cfg.Writer = output.NewWriter(rec)
	cfg.Root = root
	cfg.Size = func() (int, int) { return 20, 3 }
	return NewScheduler(cfg), rec
}

func TestScheduler_MarksCoalesce(t *testing.T) {
	s, _ := newTestScheduler(nil, SchedulerConfig{})
	assert.True(t, s.Dirty(), "starts dirty")

	s.MarkDirty()
	s.MarkDirty()
	s.MarkDirty()
	assert.Len(t, s.wake, 1)

	ran, _, err := s.RunIfDirty(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, s.Dirty())

	ran, _, err = s.RunIfDirty(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestScheduler_RunPassWritesDiff(t *testing.T) {
	label := "hello"
	s, rec := newTestScheduler(func() view.View { return view.Text(label) }, SchedulerConfig{})

	st, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Output.Written)
	assert.Equal(t, "hello", rec.Screen(1)[0])
	assert.Equal(t, 20, st.Width)
	assert.Equal(t, 3, st.Height)

	st, err = s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Output.Written)
	assert.Equal(t, 1, st.Output.Skipped)

	label = "world"
	st, err = s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Output.Written)
	assert.Equal(t, "world", rec.Screen(1)[0])
	assert.Equal(t, st, s.Last())
}

func TestScheduler_MarkDuringPassCarriesOver(t *testing.T) {
	var s *Scheduler
	renders := 0
	s, _ = newTestScheduler(func() view.View {
		renders++
		s.MarkDirty()
		return view.Text("x")
	}, SchedulerConfig{})

	_, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, renders, "no recursive pass")
	assert.True(t, s.Dirty())
}

func TestScheduler_ReentrantPassPanics(t *testing.T) {
	var s *Scheduler
	s, _ = newTestScheduler(func() view.View {
		_, _ = s.RunPass(context.Background())
		return view.Empty{}
	}, SchedulerConfig{})

	requirePanicCode(t, lerrors.ErrCodeRenderReentrant, func() {
		_, _ = s.RunPass(context.Background())
	})
	assert.False(t, s.Running())
	assert.False(t, s.cfg.Renderer.Storage().Active(), "aborted pass is closed")
}

func TestScheduler_WriteErrorKeepsDirty(t *testing.T) {
	m := telemetry.NewMetrics()
	s, rec := newTestScheduler(func() view.View { return view.Text("a") }, SchedulerConfig{Metrics: m})
	rec.FailWith(errors.New("EIO"))

	_, err := s.RunPass(context.Background())
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeOutputWrite))
	assert.True(t, s.Dirty())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WriteErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Passes))

	rec.FailWith(nil)
	st, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Output.Written, "failed diff is retried")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Passes))
}

func TestScheduler_Telemetry(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	hub := telemetry.NewHub()
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	s, _ := newTestScheduler(func() view.View { return view.Text("a") }, SchedulerConfig{
		Tracer: tp.Tracer("test"),
		Hub:    hub,
	})
	st, err := s.RunPass(context.Background())
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "render.pass", ended[0].Name())

	ev := <-events
	assert.Equal(t, telemetry.EventPassCompleted, ev.Type)
	assert.Equal(t, st.Pass, ev.Pass)
	assert.Equal(t, 1, ev.Data["written"])
}

func TestScheduler_Throttle(t *testing.T) {
	s, _ := newTestScheduler(nil, SchedulerConfig{MaxFPS: 1})
	require.NoError(t, s.Throttle(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Throttle(ctx))

	unlimited, _ := newTestScheduler(nil, SchedulerConfig{})
	assert.NoError(t, unlimited.Throttle(ctx))
}

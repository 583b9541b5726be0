package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.Publish(Event{Type: EventPassCompleted, Pass: 3, Data: map[string]any{"written": 2}})

	select {
	case received := <-ch:
		assert.Equal(t, EventPassCompleted, received.Type)
		assert.Equal(t, uint64(3), received.Pass)
		assert.False(t, received.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

func TestHub_CloseAndNil(t *testing.T) {
	hub := NewHub()
	ch, _ := hub.Subscribe()
	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)

	hub.Publish(Event{Type: EventTaskFailed})
	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok)

	var none *Hub
	none.Publish(Event{Type: EventTaskFailed})
}

func TestHub_FilteredSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	writes, unsub := hub.Subscribe(EventWriteFailed)
	defer unsub()

	hub.Publish(Event{Type: EventPassCompleted})
	hub.Publish(Event{Type: EventWriteFailed, Pass: 9})

	select {
	case ev := <-writes:
		assert.Equal(t, EventWriteFailed, ev.Type)
		assert.Equal(t, uint64(9), ev.Pass)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
	assert.Empty(t, writes)
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub(WithBuffer(1))
	defer hub.Close()

	ch, unsub := hub.Subscribe()
	hub.Publish(Event{Type: EventTaskStarted})
	hub.Publish(Event{Type: EventTaskCompleted})
	assert.Equal(t, uint64(1), hub.Dropped())

	ev := <-ch
	assert.Equal(t, EventTaskStarted, ev.Type)

	unsub()
	unsub()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestMetrics_ObservePass(t *testing.T) {
	m := NewMetrics()
	m.ObservePass(PassSample{Duration: time.Millisecond, Written: 3, Skipped: 7, Cells: 5, Appeared: 2})
	m.ObservePass(PassSample{Duration: time.Millisecond, Skipped: 10, Cells: 4, Disappeared: 1})
	m.ObserveWriteError()
	m.SetTasksRunning(2)
	m.ObserveTaskFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Passes))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsWritten))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.RowsSkipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CellsAlive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WriteErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksRunning))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lifecycle.WithLabelValues("appear")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lifecycle.WithLabelValues("disappear")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PassDuration))

	var none *Metrics
	none.ObservePass(PassSample{})
	none.ObserveWriteError()
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObservePass(PassSample{Written: 1})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "lattice_render_passes_total 1"))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObservePass(PassSample{})
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Passes))
}

func TestTracing_PassSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := tp.Tracer("test")

	_, span := StartPass(context.Background(), tracer, 7, 80, 24)
	EndPass(span, PassSample{Written: 2, Skipped: 22}, nil)

	_, span = StartPass(context.Background(), tracer, 8, 80, 24)
	EndPass(span, PassSample{}, errors.New("EIO"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "render.pass", spans[0].Name())

	attrs := map[string]int64{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	assert.Equal(t, int64(7), attrs["lattice.pass"])
	assert.Equal(t, int64(2), attrs["lattice.rows.written"])
	assert.Equal(t, int64(22), attrs["lattice.rows.skipped"])

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestTracerProvider_ExportsToWriter(t *testing.T) {
	var buf strings.Builder
	tp, err := NewTracerProvider("lattice-test", "dev", &buf)
	require.NoError(t, err)

	_, span := StartPass(context.Background(), Tracer(), 1, 10, 5)
	EndPass(span, PassSample{}, nil)
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "render.pass")
}

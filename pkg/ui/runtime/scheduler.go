package runtime

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Renderer *view.Renderer
	Writer   *output.Writer
	// Root builds the view tree for each pass.
	Root func() view.View
	// Size reports the terminal size at the start of each pass.
	Size func() (width, height int)
	// MaxFPS caps the pass rate. Zero disables the limit.
	MaxFPS  int
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
	Hub     *telemetry.Hub
	Logger  *logging.Logger
}

// PassStats describes one completed pass.
type PassStats struct {
	Pass      uint64
	Output    output.Stats
	Lifecycle state.PassResult
	Duration  time.Duration
	Width     int
	Height    int
}

// Scheduler coalesces dirty marks into render passes. MarkDirty may be
// called from any goroutine; RunPass belongs to the loop.
type Scheduler struct {
	cfg     SchedulerConfig
	dirty   atomic.Bool
	wake    chan struct{}
	limiter *rate.Limiter
	running bool
	logger  *logging.Logger
	last    PassStats
}

// NewScheduler creates a scheduler. It starts dirty so the first pass
// paints the screen.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Root == nil {
		cfg.Root = func() view.View { return view.Empty{} }
	}
	if cfg.Size == nil {
		cfg.Size = func() (int, int) { return 0, 0 }
	}
	s := &Scheduler{
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
		logger: logging.Discard(),
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger.Component("scheduler")
	}
	if cfg.MaxFPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxFPS), 1)
	}
	s.MarkDirty()
	return s
}

// MarkDirty requests a pass. Repeated marks before the pass collapse into
// one. Marks raised while a pass runs are kept for the next pass.
func (s *Scheduler) MarkDirty() {
	s.dirty.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Dirty reports whether a pass is pending.
func (s *Scheduler) Dirty() bool {
	return s.dirty.Load()
}

// Wake is signalled after MarkDirty. One signal may stand for many marks.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// Running reports whether a pass is in progress.
func (s *Scheduler) Running() bool {
	return s.running
}

// Last returns the stats of the most recent completed pass.
func (s *Scheduler) Last() PassStats {
	return s.last
}

// Throttle blocks until the rate limit admits another pass.
func (s *Scheduler) Throttle(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// RunIfDirty runs a pass when one is pending. It reports whether it ran.
func (s *Scheduler) RunIfDirty(ctx context.Context) (bool, PassStats, error) {
	if !s.dirty.Load() {
		return false, PassStats{}, nil
	}
	st, err := s.RunPass(ctx)
	return true, st, err
}

// RunPass renders the root and writes the diff. A write error leaves the
// scheduler dirty so the next pass retries it.
func (s *Scheduler) RunPass(ctx context.Context) (PassStats, error) {
	if s.running {
		lerrors.Panic(lerrors.ErrCodeRenderReentrant, "RunPass called during a pass")
	}
	s.running = true
	defer func() { s.running = false }()
	if ctx == nil {
		ctx = context.Background()
	}

	s.dirty.Store(false)
	start := time.Now()
	w, h := s.cfg.Size()
	storage := s.cfg.Renderer.Storage()

	_, span := telemetry.StartPass(ctx, s.cfg.Tracer, storage.Pass()+1, w, h)
	res := func() (res view.Result) {
		defer func() {
			if p := recover(); p != nil {
				telemetry.EndPass(span, telemetry.PassSample{}, lerrors.FromPanic(p))
				panic(p)
			}
		}()
		return s.cfg.Renderer.Render(s.cfg.Root(), w, h)
	}()

	st := PassStats{Pass: res.Pass, Lifecycle: res.Lifecycle, Width: w, Height: h}
	out, err := s.cfg.Writer.Write(res.Frame)
	st.Output = out
	st.Duration = time.Since(start)

	sample := telemetry.PassSample{
		Duration:    st.Duration,
		Written:     out.Written,
		Skipped:     out.Skipped,
		Cleared:     out.Cleared,
		Cells:       storage.Len(),
		Appeared:    len(res.Lifecycle.Appeared),
		Disappeared: len(res.Lifecycle.Disappeared),
	}
	telemetry.EndPass(span, sample, err)

	if err != nil {
		s.dirty.Store(true)
		s.cfg.Metrics.ObserveWriteError()
		s.cfg.Hub.Publish(telemetry.Event{
			Type: telemetry.EventWriteFailed,
			Pass: st.Pass,
			Data: map[string]any{"error": err.Error(), "retryable": lerrors.IsRetryable(err)},
		})
		return st, err
	}

	s.last = st
	s.cfg.Metrics.ObservePass(sample)
	s.logger.PassCompleted(st.Pass, out.Written, out.Skipped, st.Duration)
	s.cfg.Hub.Publish(telemetry.Event{
		Type: telemetry.EventPassCompleted,
		Pass: st.Pass,
		Data: map[string]any{
			"written":     out.Written,
			"skipped":     out.Skipped,
			"appeared":    sample.Appeared,
			"disappeared": sample.Disappeared,
			"duration_ms": st.Duration.Milliseconds(),
		},
	})
	return st, nil
}

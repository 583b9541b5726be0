package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/output"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(app *App, msg Message) bool

// CommandHandler handles commands the built-in handling does not know.
// Return true if the command requires a render.
type CommandHandler func(cmd Command) bool

// WriteErrorPolicy decides whether a failed frame write is retried.
// failures counts consecutive failures, starting at 1.
type WriteErrorPolicy func(err error, failures int) bool

// DefaultWriteErrorPolicy retries retryable errors up to three times.
func DefaultWriteErrorPolicy(err error, failures int) bool {
	return lerrors.IsRetryable(err) && failures < 3
}

// AppConfig configures a runtime App.
type AppConfig struct {
	Backend backend.Backend
	// Root builds the view tree for each pass.
	Root func() view.View
	// Env holds the outermost environment overrides.
	Env    env.Values
	Update UpdateFunc
	// Keys receives key events neither the focused element nor its section
	// consumed.
	Keys           focus.Handler
	CommandHandler CommandHandler
	OnWriteError   WriteErrorPolicy
	MessageBuffer  int
	TickRate       time.Duration
	MaxFPS         int
	HideCursor     bool
	ClearStyle     compositor.Style
	Profile        termenv.Profile
	Logger         *logging.Logger
	Metrics        *telemetry.Metrics
	Tracer         trace.Tracer
	Hub            *telemetry.Hub
}

// App runs a view tree against a terminal backend. Everything except
// Post, Send and MarkDirty belongs to the loop goroutine.
type App struct {
	id      string
	cfg     AppConfig
	backend backend.Backend
	update  UpdateFunc
	logger  *logging.Logger

	storage  *state.Storage
	focus    *focus.Manager
	renderer *view.Renderer
	tasks    *state.Tasks
	writer   *output.Writer
	sched    *Scheduler

	messages chan Message
	done     chan struct{}
	doneOnce sync.Once

	quit     bool
	failures int
}

// NewApp creates a new App from config.
func NewApp(cfg AppConfig) *App {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	if cfg.OnWriteError == nil {
		cfg.OnWriteError = DefaultWriteErrorPolicy
	}
	if cfg.Root == nil {
		cfg.Root = func() view.View { return view.Empty{} }
	}
	update := cfg.Update
	if update == nil {
		update = DefaultUpdate
	}

	a := &App{
		id:       uuid.NewString(),
		cfg:      cfg,
		backend:  cfg.Backend,
		update:   update,
		messages: make(chan Message, bufferSize),
		done:     make(chan struct{}),
	}
	base := cfg.Logger
	if base == nil {
		base = logging.Discard()
	}
	a.logger = &logging.Logger{Logger: base.Logger.With(slog.String("app_id", a.id))}

	a.storage = state.NewStorage(a.MarkDirty)
	a.focus = focus.NewManager()
	a.focus.SetLogger(a.logger)
	a.focus.SetGlobalHandler(cfg.Keys)
	a.focus.OnChange(func(section, from, to string) {
		a.MarkDirty()
		cfg.Hub.Publish(telemetry.Event{
			Type: telemetry.EventFocusChanged,
			Data: map[string]any{"section": section, "from": from, "to": to},
		})
	})
	a.renderer = view.NewRenderer(a.storage, a.focus,
		view.WithEnvironment(cfg.Env),
		view.WithLogger(a.logger),
		view.WithPoster(a.Post),
	)
	if a.backend != nil {
		a.writer = output.NewWriter(a.backend.Sink(),
			output.WithClearStyle(cfg.ClearStyle),
			output.WithProfile(cfg.Profile),
		)
		a.sched = NewScheduler(SchedulerConfig{
			Renderer: a.renderer,
			Writer:   a.writer,
			Root:     cfg.Root,
			Size:     a.backend.Size,
			MaxFPS:   cfg.MaxFPS,
			Metrics:  cfg.Metrics,
			Tracer:   cfg.Tracer,
			Hub:      cfg.Hub,
			Logger:   a.logger,
		})
	}
	return a
}

// ID identifies this app instance in logs.
func (a *App) ID() string { return a.id }

// Storage returns the state storage.
func (a *App) Storage() *state.Storage { return a.storage }

// Focus returns the focus manager.
func (a *App) Focus() *focus.Manager { return a.focus }

// Renderer returns the view renderer.
func (a *App) Renderer() *view.Renderer { return a.renderer }

// Writer returns the output writer, or nil without a backend.
func (a *App) Writer() *output.Writer { return a.writer }

// Scheduler returns the pass scheduler, or nil without a backend.
func (a *App) Scheduler() *Scheduler { return a.sched }

// Logger returns the app logger.
func (a *App) Logger() *logging.Logger { return a.logger }

// Done is closed once the loop has stopped.
func (a *App) Done() <-chan struct{} { return a.done }

// SetEnvironment replaces the outermost environment and requests a pass.
func (a *App) SetEnvironment(v env.Values) {
	a.renderer.SetEnvironment(v)
	a.MarkDirty()
}

// MarkDirty requests a render pass. Safe from any goroutine.
func (a *App) MarkDirty() {
	if a.sched != nil {
		a.sched.MarkDirty()
	}
}

// Post schedules fn on the loop. It blocks while the queue is full and
// returns false once the app has stopped. Do not call it from the loop
// itself with a full queue.
func (a *App) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.messages <- FuncMsg{Fn: fn}:
		return true
	case <-a.done:
		return false
	}
}

// Send enqueues msg without blocking. It returns false if the queue is full
// or the app has stopped.
func (a *App) Send(msg Message) bool {
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.messages <- msg:
		return true
	default:
		return false
	}
}

// Dispatch enqueues a command.
func (a *App) Dispatch(cmd Command) bool {
	return a.Send(CommandMsg{Command: cmd})
}

// Quit asks the loop to stop after the current message.
func (a *App) Quit() {
	a.Post(func() { a.quit = true })
}

// Run starts the event loop until quit, context cancellation or an
// unrecoverable write error.
func (a *App) Run(ctx context.Context) error {
	if a.backend == nil {
		return errors.New("backend is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.backend.Init(); err != nil {
		a.stop()
		return fmt.Errorf("init backend: %w", err)
	}

	a.tasks = state.NewTasks(ctx, state.TaskConfig{
		Post: func(fn func()) { a.Post(fn) },
		OnResult: func(res state.TaskResult) {
			if a.update(a, TaskMsg{Result: res}) {
				a.MarkDirty()
			}
		},
		OnCountChange: a.cfg.Metrics.SetTasksRunning,
	})
	a.storage.AttachTasks(a.tasks)

	a.logger.Info("app started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.pollEvents(gctx)
		return nil
	})
	g.Go(func() error {
		defer a.shutdown()
		return a.loop(gctx)
	})
	return g.Wait()
}

func (a *App) loop(ctx context.Context) error {
	if a.cfg.HideCursor {
		if err := a.writer.SetCursorVisible(false); err != nil {
			return err
		}
	}

	var ticks <-chan time.Time
	if a.cfg.TickRate > 0 {
		ticker := time.NewTicker(a.cfg.TickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	var retry <-chan time.Time
	for !a.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-a.messages:
			a.handle(msg)
		case now := <-ticks:
			a.handle(TickMsg{Time: now})
		case <-a.sched.Wake():
		case <-retry:
			retry = nil
			a.sched.MarkDirty()
		}
		a.drain()
		if a.quit || retry != nil || !a.sched.Dirty() {
			continue
		}
		if err := a.sched.Throttle(ctx); err != nil {
			return err
		}

		if _, err := a.sched.RunPass(ctx); err != nil {
			a.failures++
			retryable := a.cfg.OnWriteError(err, a.failures)
			a.logger.WriteFailed(err, retryable)
			if !retryable {
				return err
			}
			a.writer.Invalidate()
			retry = time.After(time.Duration(a.failures) * 20 * time.Millisecond)
			continue
		}
		a.failures = 0
	}
	return nil
}

// drain handles whatever is already queued so one pass covers it.
func (a *App) drain() {
	for !a.quit {
		select {
		case msg := <-a.messages:
			a.handle(msg)
		default:
			return
		}
	}
}

func (a *App) handle(msg Message) {
	if m, ok := msg.(FuncMsg); ok {
		if m.Fn != nil {
			m.Fn()
		}
		return
	}
	if a.update(a, msg) {
		a.MarkDirty()
	}
}

func (a *App) shutdown() {
	a.stop()
	if a.tasks != nil {
		a.tasks.Close()
	}
	if a.cfg.HideCursor {
		_ = a.writer.SetCursorVisible(true)
	}
	a.backend.Fini()
	a.logger.Info("app stopped")
}

func (a *App) stop() {
	a.doneOnce.Do(func() { close(a.done) })
}

func (a *App) pollEvents(ctx context.Context) {
	for {
		ev := a.backend.PollEvent()
		if ev == nil {
			return
		}
		msg := messageFor(ev)
		if msg == nil {
			continue
		}
		select {
		case a.messages <- msg:
		case <-a.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// DefaultUpdate routes input through the focus manager and handles task
// results and commands. Posted functions never reach it.
func DefaultUpdate(app *App, msg Message) bool {
	if app == nil {
		return false
	}

	switch m := msg.(type) {
	case KeyMsg:
		if app.focus.Dispatch(m.KeyEvent) {
			return true
		}
		if app.focus.HandleNavigation(m.KeyEvent) {
			return true
		}
		if m.Is('c', true) {
			app.quit = true
		}
		return false
	case PasteMsg:
		handled := false
		for _, r := range m.Text {
			if app.focus.Dispatch(terminal.Char(r)) {
				handled = true
			}
		}
		return handled
	case ResizeMsg:
		if app.writer != nil {
			app.writer.Invalidate()
		}
		return true
	case TaskMsg:
		app.taskFinished(m.Result)
		return false
	case CommandMsg:
		return app.handleCommand(m.Command)
	}
	return false
}

func (a *App) taskFinished(res state.TaskResult) {
	ev := telemetry.Event{
		Type: telemetry.EventTaskCompleted,
		Path: res.Path.String(),
		Data: map[string]any{"id": res.ID, "name": res.Name, "canceled": res.Canceled},
	}
	if res.Err != nil && !res.Canceled {
		a.logger.TaskFailed(res.Path.String(), res.Name, res.Err)
		a.cfg.Metrics.ObserveTaskFailure()
		ev.Type = telemetry.EventTaskFailed
		ev.Data["error"] = res.Err.Error()
	}
	a.cfg.Hub.Publish(ev)
}

func (a *App) handleCommand(cmd Command) bool {
	switch c := cmd.(type) {
	case Quit:
		a.quit = true
		return false
	case Refresh:
		if a.writer != nil {
			a.writer.Invalidate()
		}
		return true
	case FocusNext:
		return a.focus.Tab()
	case FocusPrev:
		return a.focus.ShiftTab()
	case ActivateSection:
		return a.focus.ActivateSection(c.ID)
	case ClearFocus:
		a.focus.ClearAll()
		return true
	default:
		if a.cfg.CommandHandler != nil {
			return a.cfg.CommandHandler(cmd)
		}
		return false
	}
}

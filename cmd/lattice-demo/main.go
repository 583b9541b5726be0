// Command lattice-demo is a small interactive tour of the lattice runtime:
// a navigable sidebar, markdown and code pages, stateful controls, a
// background task and a status bar fed by runtime telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/backend/tty"
	"github.com/odvcencio/lattice/pkg/ui/persist"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
)

var version = "dev"

type options struct {
	configPath string
	themeName  string
	inline     bool
	metrics    string
	traceFile  string
	watch      bool
}

func parseOptions(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lattice-demo", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a config file (default: ~/.lattice/config.yaml, ./.lattice/config.yaml)")
	fs.StringVar(&opts.themeName, "theme", "", "theme override: auto, dark, light or mono")
	fs.BoolVar(&opts.inline, "inline", false, "render below the prompt instead of on the alternate screen")
	fs.StringVar(&opts.metrics, "metrics", "", "serve prometheus metrics on this address")
	fs.StringVar(&opts.traceFile, "trace", "", "write pass spans to this file")
	fs.BoolVar(&opts.watch, "watch", true, "reload the theme when the config file changes")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeForError(err))
	}
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.themeName != "" {
		cfg.Theme.Name = opts.themeName
	}
	if opts.inline {
		cfg.UI.AltScreen = false
	}
	if opts.metrics != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = opts.metrics
	}
	if opts.traceFile != "" {
		cfg.Tracing.File = opts.traceFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return withExitCode(err, exitConfig)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logger, closer, err := logging.Open(config.ExpandHomeDir(cfg.Logging.File), level)
	if err != nil {
		return withExitCode(err, exitConfig)
	}
	defer closer.Close()

	// Terminal queries must happen before the backend enters raw mode.
	termOut := termenv.NewOutput(os.Stdout)
	dark := termOut.HasDarkBackground()
	profile := termOut.EnvColorProfile()
	th := cfg.ResolvedTheme(dark)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()
	if cfg.Metrics.Enabled {
		shutdown := serveMetrics(cfg.Metrics.Listen, metrics, logger)
		defer shutdown()
	}

	tracer := telemetry.Tracer()
	if cfg.Tracing.File != "" {
		f, err := os.Create(config.ExpandHomeDir(cfg.Tracing.File))
		if err != nil {
			return withExitCode(fmt.Errorf("open trace file: %w", err), exitConfig)
		}
		defer f.Close()
		tp, err := telemetry.NewTracerProvider("lattice-demo", version, f)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = tp.Shutdown(sctx)
		}()
		tracer = telemetry.Tracer()
	}

	var store *persist.Store
	if dir := cfg.PersistDir(); dir != "" {
		store, err = persist.Open(dir, persist.WithLogger(logger))
		if err != nil {
			logger.Warn("state persistence disabled", "error", err)
			store = nil
		}
	}

	inlineOrigin := 0
	if !cfg.UI.AltScreen {
		inlineOrigin = reserveInline(os.Stdout, cfg.UI.InlineHeight)
	}
	tb := tty.New(os.Stdin, os.Stdout, tty.Options{
		AltScreen:    cfg.UI.AltScreen,
		InlineOrigin: inlineOrigin,
		QueueSize:    cfg.UI.MessageBuffer,
		Logger:       logger,
	})

	hub := telemetry.NewHub()
	defer hub.Close()

	rows := 0
	if !cfg.UI.AltScreen {
		rows = cfg.UI.InlineHeight
	}
	d := newDemo(store, th, rows)
	app := runtime.NewApp(runtime.AppConfig{
		Backend:       tb,
		Root:          d.root,
		Env:           d.environment(),
		Update:        d.update,
		Keys:          d.globalKeys,
		MessageBuffer: cfg.UI.MessageBuffer,
		TickRate:      cfg.UI.TickRate,
		MaxFPS:        cfg.UI.MaxFPS,
		HideCursor:    cfg.UI.HideCursor,
		ClearStyle:    th.Background,
		Profile:       profile,
		Logger:        logger,
		Metrics:       metrics,
		Tracer:        tracer,
		Hub:           hub,
	})
	if err := d.attach(app); err != nil {
		logger.Warn("restoring demo state failed", "error", err)
	}
	defer d.detach()

	go d.followEvents(ctx, hub)
	if opts.watch && opts.configPath != "" {
		go d.watchConfig(ctx, opts.configPath, dark, hub)
	}

	logger.Info("demo starting", "app_id", app.ID(), "theme", th.Name, "alt_screen", cfg.UI.AltScreen)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return withExitCode(err, exitRuntime)
	}
	return nil
}

func serveMetrics(addr string, m *telemetry.Metrics, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// reserveInline scrolls the terminal so rows lines are free below the
// prompt and returns the first of them.
func reserveInline(out *os.File, rows int) int {
	if rows <= 0 {
		return 0
	}
	_, h := termSize(out)
	for range rows {
		fmt.Fprint(out, "\n")
	}
	return max(0, h-rows)
}

func termSize(f *os.File) (int, int) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/focus"
	"github.com/odvcencio/lattice/pkg/ui/persist"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/state"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
	"github.com/odvcencio/lattice/pkg/ui/widgets"
)

type page struct {
	title string
	body  func(d *demo) view.View
}

var pages = []page{
	{"Overview", (*demo).overview},
	{"Code", (*demo).code},
	{"Controls", (*demo).controls},
	{"About", (*demo).about},
}

const overviewDoc = `# lattice

Views are plain values. Each pass rebuilds the tree, and state lives in
cells keyed by a view's **position**, so it survives re-renders.

- Tab and Shift+Tab move focus
- 1-4 jump to a page, t cycles the theme
- q or Ctrl+C quits
`

const codeSample = `package main

import "fmt"

// Fib returns the n-th Fibonacci number.
func Fib(n int) int {
	a, b := 0, 1
	for range n {
		a, b = b, a+b
	}
	return a
}

func main() {
	fmt.Println(Fib(10))
}
`

const (
	counterSlot = iota * 2
	wrapSlot
)

// demo owns the state behind the tour. Fields are touched only on the
// loop goroutine once the app runs.
type demo struct {
	store *persist.Store
	theme *theme.Theme
	rows  int

	app    *runtime.App
	page   state.Handle[int]
	status state.Handle[string]
	job    state.Handle[bool]
	unbind func()
}

func newDemo(store *persist.Store, th *theme.Theme, rows int) *demo {
	return &demo{store: store, theme: th, rows: rows}
}

// attach creates the demo's detached state and restores the last page.
func (d *demo) attach(app *runtime.App) error {
	d.app = app
	s := app.Storage()
	d.page = state.Local(s, 0)
	d.status = state.Local(s, "ready")
	d.job = state.Local(s, false)
	if d.store == nil {
		return nil
	}
	cancel, err := persist.Bind(d.store, "demo.page", d.page)
	if err != nil {
		return err
	}
	d.unbind = cancel
	if p := d.page.Get(); p < 0 || p >= len(pages) {
		d.page.Set(0)
	}
	return nil
}

func (d *demo) detach() {
	if d.unbind != nil {
		d.unbind()
	}
}

func (d *demo) environment() env.Values {
	return env.Of(theme.Key, d.theme)
}

func (d *demo) setTheme(th *theme.Theme) {
	d.theme = th
	d.app.SetEnvironment(d.environment())
	d.status.Set("theme: " + th.Name)
}

func (d *demo) root() view.View {
	v := view.Composite{Tag: "Demo", Body: func(c *view.Context) view.View {
		th := theme.Current(c)
		body := view.HStack(
			view.InSection(d.sidebar(), "nav", focus.SectionOptions{Axis: focus.AxisVertical}),
			view.InSection(d.current(), "main", focus.SectionOptions{Axis: focus.AxisHorizontal}),
		).WithSpacing(2)
		return view.WithBackground(view.VStack(
			view.Frame{
				Content:   view.Padded(body, compositor.EdgesXY(1, 0)),
				FillWidth: true,
				Height:    max(c.Height()-1, 0),
			},
			d.statusBar(),
		), th.Background.BG)
	}}
	if d.rows > 0 {
		return view.Sized(v, 0, d.rows)
	}
	return v
}

func (d *demo) sidebar() view.View {
	titles := make([]string, len(pages))
	for i, p := range pages {
		titles[i] = p.title
	}
	return view.VStack(
		view.Composite{Tag: "Heading", Body: func(c *view.Context) view.View {
			return view.StyledText("Pages", theme.Current(c).TextMuted)
		}},
		widgets.List{
			ID:       "pages",
			Items:    titles,
			Rows:     len(titles),
			OnSelect: func(i int, _ string) { d.page.Set(i) },
		}.View(),
	)
}

func (d *demo) current() view.View {
	i := d.page.Get()
	if i < 0 || i >= len(pages) {
		i = 0
	}
	// Tagging by title gives each page its own state subtree.
	return view.Tagged(pages[i].title, pages[i].body(d))
}

func (d *demo) overview() view.View {
	return widgets.Markdown{Source: overviewDoc}.View()
}

func (d *demo) code() view.View {
	return widgets.Code{Source: codeSample, Language: "go", LineNumbers: true}.View()
}

func (d *demo) controls() view.View {
	return view.Composite{Tag: "Controls", Body: func(c *view.Context) view.View {
		var count state.Handle[int]
		if d.store != nil {
			count = persist.UseStored(c, counterSlot, d.store, "demo.counter", 0)
		} else {
			count = view.UseState(c, counterSlot, 0)
		}
		wrap := view.UseState(c, wrapSlot, false)

		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
		running := d.job.Get()

		return view.VStack(
			widgets.Label{Text: fmt.Sprintf("count %d", count.Get()), Style: box}.View(),
			view.HStack(
				widgets.Button{ID: "inc", Label: "+", OnPress: func() { count.Update(func(n int) int { return n + 1 }) }}.View(),
				widgets.Button{ID: "dec", Label: "-", OnPress: func() { count.Update(func(n int) int { return n - 1 }) }}.View(),
				widgets.Button{ID: "reset", Label: "Reset", Disabled: count.Get() == 0, OnPress: func() { count.Set(0) }}.View(),
				widgets.Button{ID: "job", Label: "Run job", Disabled: running, OnPress: func() { d.job.Set(true) }}.View(),
			).WithSpacing(1),
			widgets.Toggle{ID: "wrap", Label: "Wrap long text", Value: &wrap}.View(),
			view.If(running, view.WithTask(widgets.Spinner{Label: "working"}.View(), "job", d.runJob)),
			view.If(wrap.Get(), widgets.Paragraph{Text: "Wrapped text reflows to the width the parent proposes, breaking on word boundaries and splitting words that are longer than a line."}.View()),
		).WithSpacing(1)
	}}
}

func (d *demo) runJob(ctx context.Context) error {
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	d.app.Post(func() {
		d.job.Set(false)
		d.status.Set("job finished")
	})
	return nil
}

func (d *demo) about() view.View {
	return widgets.Paragraph{Text: fmt.Sprintf(
		"lattice-demo %s\n\napp %s\n\nState for this page is kept in memory; the counter and the selected page are saved under the persist directory.",
		version, d.app.ID(),
	)}.View()
}

func (d *demo) statusBar() view.View {
	right := ""
	if s := d.app.Scheduler(); s != nil {
		last := s.Last()
		right = fmt.Sprintf("pass %d · %d rows · %s", last.Pass, last.Output.Written, last.Duration.Round(time.Microsecond))
	}
	return widgets.Status{Left: d.status.Get(), Right: right}.View()
}

func (d *demo) update(app *runtime.App, msg runtime.Message) bool {
	if m, ok := msg.(runtime.TaskMsg); ok && m.Result.Err != nil && !m.Result.Canceled {
		d.status.Set("task " + m.Result.Name + " failed")
	}
	return runtime.DefaultUpdate(app, msg)
}

func (d *demo) globalKeys(ev terminal.KeyEvent) bool {
	switch {
	case ev.Is('q', false):
		d.app.Quit()
	case ev.Is('t', false):
		names := theme.Names()
		next := names[0]
		for i, n := range names {
			if n == d.theme.Name {
				next = names[(i+1)%len(names)]
			}
		}
		th, _ := theme.ByName(next)
		d.setTheme(th)
	case ev.Key == terminal.KeyRune && !ev.Ctrl && !ev.Alt && ev.Rune >= '1' && ev.Rune < '1'+rune(len(pages)):
		d.page.Set(int(ev.Rune - '1'))
	default:
		return false
	}
	return true
}

// followEvents mirrors notable runtime events into the status line.
func (d *demo) followEvents(ctx context.Context, hub *telemetry.Hub) {
	events, unsubscribe := hub.Subscribe(telemetry.EventWriteFailed, telemetry.EventFocusChanged)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.app.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case telemetry.EventWriteFailed:
				d.app.Post(func() { d.status.Set("output error, retrying") })
			case telemetry.EventFocusChanged:
				to, _ := ev.Data["to"].(string)
				if to != "" {
					d.app.Post(func() { d.status.Set("focus: " + to) })
				}
			}
		}
	}
}

// watchConfig applies theme changes from the config file while running.
func (d *demo) watchConfig(ctx context.Context, path string, dark bool, hub *telemetry.Hub) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			d.app.Post(func() { d.status.Set("config: " + err.Error()) })
			return
		}
		th := cfg.ResolvedTheme(dark)
		d.app.Post(func() { d.setTheme(th) })
		hub.Publish(telemetry.Event{Type: telemetry.EventConfigReload, Data: map[string]any{"theme": th.Name}})
	})
	if err != nil {
		d.app.Logger().Warn("config watch stopped", "error", err)
	}
}

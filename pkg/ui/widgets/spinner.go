package widgets

import (
	"context"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Spinner animates while it is in the tree. Its ticker runs as a task
// owned by the spinner's path, so removing the spinner stops it.
type Spinner struct {
	Label    string
	Interval time.Duration
	Frames   []string
}

// View builds the spinner view.
func (s Spinner) View() view.View {
	return view.Leaf{Tag: "Spinner", Render: func(c *view.Context) *compositor.Frame {
		frames := s.Frames
		if len(frames) == 0 {
			frames = theme.Symbols.Spinner
		}
		interval := s.Interval
		if interval <= 0 {
			interval = 80 * time.Millisecond
		}

		step := view.UseState(c, 0, 0)
		post := c.Post
		c.Task("spin", func(ctx context.Context) error {
			t := time.NewTicker(interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					if !post(func() { step.Update(func(n int) int { return (n + 1) % len(frames) }) }) {
						return nil
					}
				}
			}
		})

		th := theme.Current(c)
		glyph := frames[step.Get()%len(frames)]
		f := compositor.FromText(glyph, th.Spinner)
		if s.Label == "" {
			return f
		}
		return compositor.HAppend(f, compositor.FromText(s.Label, th.TextSecondary), 1)
	}}
}

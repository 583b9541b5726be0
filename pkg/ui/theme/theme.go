// Package theme provides the palette widgets draw with. A theme travels
// down the view tree as an environment value, so any subtree can swap it.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/env"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Theme defines the visual language for widgets.
type Theme struct {
	Name string

	// Core palette
	Background compositor.Style // Primary canvas
	Surface    compositor.Style // Elevated surfaces (panels, status bars)

	// Text hierarchy
	TextPrimary   compositor.Style // Main content
	TextSecondary compositor.Style // Supporting text
	TextMuted     compositor.Style // Hints, placeholders
	TextInverse   compositor.Style // Text on accent backgrounds

	// Accent colors
	Accent     compositor.Style // Primary action, highlights
	AccentGlow compositor.Style // Emphasis, active states

	// Semantic colors
	Success compositor.Style
	Warning compositor.Style
	Error   compositor.Style
	Info    compositor.Style

	// UI elements
	Border      compositor.Style
	BorderFocus compositor.Style
	Selection   compositor.Style
	Focused     compositor.Style // Focused control
	Disabled    compositor.Style

	// Special
	Spinner compositor.Style
	Code    compositor.Style // Code block canvas

	// CodeStyle names the chroma style used for syntax highlighting.
	CodeStyle string
}

// Key publishes the active theme through the environment.
var Key = env.NewKey("theme", DefaultTheme())

// Current returns the theme in effect at the rendering view.
func Current(c *view.Context) *Theme {
	if th := view.Value(c, Key); th != nil {
		return th
	}
	return DefaultTheme()
}

// With renders v under th.
func With(v view.View, th *Theme) view.View {
	return view.WithValue(v, Key, th)
}

// DefaultTheme returns the dark theme.
func DefaultTheme() *Theme {
	return Dark()
}

// Dark returns the dark palette: deep blacks with a warm amber accent.
func Dark() *Theme {
	s := compositor.DefaultStyle()
	return &Theme{
		Name: "dark",

		Background: s.WithBG(compositor.RGB(12, 12, 16)),
		Surface:    s.WithBG(compositor.RGB(22, 22, 28)),

		TextPrimary:   s.WithFG(compositor.RGB(240, 238, 232)),
		TextSecondary: s.WithFG(compositor.RGB(160, 158, 150)),
		TextMuted:     s.WithFG(compositor.RGB(100, 98, 92)),
		TextInverse:   s.WithFG(compositor.RGB(12, 12, 16)),

		Accent:     s.WithFG(compositor.RGB(255, 183, 77)),
		AccentGlow: s.WithFG(compositor.RGB(255, 200, 100)).WithBold(true),

		Success: s.WithFG(compositor.RGB(134, 239, 172)),
		Warning: s.WithFG(compositor.RGB(255, 138, 101)),
		Error:   s.WithFG(compositor.RGB(255, 110, 90)),
		Info:    s.WithFG(compositor.RGB(77, 182, 172)),

		Border:      s.WithFG(compositor.RGB(50, 50, 60)),
		BorderFocus: s.WithFG(compositor.RGB(255, 183, 77)),
		Selection:   s.WithBG(compositor.RGB(60, 60, 80)),
		Focused:     s.WithFG(compositor.RGB(12, 12, 16)).WithBG(compositor.RGB(255, 183, 77)).WithBold(true),
		Disabled:    s.WithFG(compositor.RGB(70, 70, 76)),

		Spinner: s.WithFG(compositor.RGB(255, 183, 77)),
		Code:    s.WithBG(compositor.RGB(22, 22, 28)),

		CodeStyle: "monokai",
	}
}

// Light returns the light palette.
func Light() *Theme {
	s := compositor.DefaultStyle()
	return &Theme{
		Name: "light",

		Background: s.WithBG(compositor.RGB(250, 250, 247)),
		Surface:    s.WithBG(compositor.RGB(236, 236, 230)),

		TextPrimary:   s.WithFG(compositor.RGB(30, 30, 36)),
		TextSecondary: s.WithFG(compositor.RGB(90, 90, 100)),
		TextMuted:     s.WithFG(compositor.RGB(140, 140, 150)),
		TextInverse:   s.WithFG(compositor.RGB(250, 250, 247)),

		Accent:     s.WithFG(compositor.RGB(176, 96, 0)),
		AccentGlow: s.WithFG(compositor.RGB(200, 110, 0)).WithBold(true),

		Success: s.WithFG(compositor.RGB(22, 130, 60)),
		Warning: s.WithFG(compositor.RGB(190, 90, 30)),
		Error:   s.WithFG(compositor.RGB(190, 30, 30)),
		Info:    s.WithFG(compositor.RGB(20, 110, 120)),

		Border:      s.WithFG(compositor.RGB(200, 200, 195)),
		BorderFocus: s.WithFG(compositor.RGB(176, 96, 0)),
		Selection:   s.WithBG(compositor.RGB(210, 220, 240)),
		Focused:     s.WithFG(compositor.RGB(250, 250, 247)).WithBG(compositor.RGB(176, 96, 0)).WithBold(true),
		Disabled:    s.WithFG(compositor.RGB(180, 180, 185)),

		Spinner: s.WithFG(compositor.RGB(176, 96, 0)),
		Code:    s.WithBG(compositor.RGB(236, 236, 230)),

		CodeStyle: "github",
	}
}

// Mono uses attributes only, for terminals without color.
func Mono() *Theme {
	s := compositor.DefaultStyle()
	return &Theme{
		Name:          "mono",
		TextPrimary:   s,
		TextSecondary: s,
		TextMuted:     s.WithDim(true),
		TextInverse:   s.WithReverse(true),
		Accent:        s.WithBold(true),
		AccentGlow:    s.WithBold(true).WithUnderline(true),
		Success:       s.WithBold(true),
		Warning:       s.WithBold(true),
		Error:         s.WithBold(true).WithUnderline(true),
		Info:          s,
		Border:        s.WithDim(true),
		BorderFocus:   s.WithBold(true),
		Selection:     s.WithReverse(true),
		Focused:       s.WithReverse(true),
		Disabled:      s.WithDim(true),
		Spinner:       s,
		CodeStyle:     "bw",
	}
}

var registry = map[string]func() *Theme{
	"dark":  Dark,
	"light": Light,
	"mono":  Mono,
}

// Names lists the built-in themes.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName returns a built-in theme. The empty name selects the default.
func ByName(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultTheme(), nil
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// ForBackground picks dark or light.
func ForBackground(dark bool) *Theme {
	if dark {
		return Dark()
	}
	return Light()
}

// Symbols provides consistent iconography.
var Symbols = struct {
	Bullet      string
	BulletEmpty string
	Arrow       string
	Check       string
	Cross       string
	Dot         string

	// Borders (rounded)
	BorderTopLeft     string
	BorderTopRight    string
	BorderBottomLeft  string
	BorderBottomRight string
	BorderHorizontal  string
	BorderVertical    string

	Spinner []string
}{
	Bullet:      "●",
	BulletEmpty: "○",
	Arrow:       "›",
	Check:       "✓",
	Cross:       "✗",
	Dot:         "·",

	BorderTopLeft:     "╭",
	BorderTopRight:    "╮",
	BorderBottomLeft:  "╰",
	BorderBottomRight: "╯",
	BorderHorizontal:  "─",
	BorderVertical:    "│",

	Spinner: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
}

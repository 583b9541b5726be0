package widgets

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Markdown renders CommonMark through glamour, wrapped to the proposed
// width. Rendered output is cached per source, style and width.
type Markdown struct {
	Source string
	// Style names a glamour standard style. Empty follows the theme.
	Style string
}

// View builds the markdown view.
func (m Markdown) View() view.View {
	return view.Leaf{Tag: "Markdown", Render: func(c *view.Context) *compositor.Frame {
		style := m.Style
		if style == "" {
			style = glamourStyle(theme.Current(c))
		}
		out, err := renderMarkdown(m.Source, style, c.Width())
		if err != nil {
			c.Logger().Warn("markdown render failed", "error", err)
			return compositor.FromText(Wrap(m.Source, c.Width()), theme.Current(c).TextPrimary)
		}
		return compositor.FromANSI(out)
	}}
}

func glamourStyle(th *theme.Theme) string {
	switch th.Name {
	case "light":
		return "light"
	case "mono":
		return "notty"
	}
	return "dark"
}

type mdKey struct {
	source string
	style  string
	width  int
}

const mdCacheSize = 64

var mdCache = struct {
	sync.Mutex
	m map[mdKey]string
}{m: make(map[mdKey]string)}

func renderMarkdown(source, style string, width int) (string, error) {
	key := mdKey{source: source, style: style, width: width}
	mdCache.Lock()
	out, ok := mdCache.m[key]
	mdCache.Unlock()
	if ok {
		return out, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	out, err = r.Render(source)
	if err != nil {
		return "", err
	}
	out = strings.Trim(out, "\n")

	mdCache.Lock()
	if len(mdCache.m) >= mdCacheSize {
		mdCache.m = make(map[mdKey]string)
	}
	mdCache.m[key] = out
	mdCache.Unlock()
	return out, nil
}

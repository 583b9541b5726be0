package widgets

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/odvcencio/lattice/pkg/ui/compositor"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/view"
)

// Code is a syntax-highlighted source block. An empty Language guesses
// from the source.
type Code struct {
	Source      string
	Language    string
	LineNumbers bool
}

// View builds the code view.
func (cd Code) View() view.View {
	return view.Leaf{Tag: "Code", Render: func(c *view.Context) *compositor.Frame {
		th := theme.Current(c)
		lines := NewHighlighter(th).Highlight(cd.Source, cd.Language)

		gutter := 0
		if cd.LineNumbers {
			gutter = len(strconv.Itoa(len(lines))) + 1
		}
		width := 0
		for _, l := range lines {
			width = max(width, l.Width())
		}
		width += gutter
		if c.Width() > 0 {
			width = min(width, c.Width())
		}

		f := compositor.NewFrame(width, len(lines), th.Code)
		num := onBackground(th.TextMuted, th.Code)
		for y, l := range lines {
			x := 0
			if cd.LineNumbers {
				n := strconv.Itoa(y + 1)
				f.SetString(gutter-1-len(n), y, n, num)
				x = gutter
			}
			for _, sp := range l {
				x += f.SetString(x, y, sp.Text, sp.Style)
			}
		}
		return f
	}}
}

// Span is a run of text in one style.
type Span struct {
	Text  string
	Style compositor.Style
}

// CodeLine is one highlighted line.
type CodeLine []Span

// Width returns the display width of the line.
func (l CodeLine) Width() int {
	w := 0
	for _, sp := range l {
		w += compositor.StringWidth(sp.Text)
	}
	return w
}

// Highlighter maps chroma tokens onto theme styles.
type Highlighter struct {
	palette codePalette
}

type codePalette struct {
	Default     compositor.Style
	Keyword     compositor.Style
	TypeName    compositor.Style
	Function    compositor.Style
	String      compositor.Style
	Number      compositor.Style
	Comment     compositor.Style
	Operator    compositor.Style
	Punctuation compositor.Style
	Builtin     compositor.Style
	Error       compositor.Style
}

// NewHighlighter returns a theme-aware highlighter.
func NewHighlighter(t *theme.Theme) *Highlighter {
	if t == nil {
		t = theme.DefaultTheme()
	}
	bg := t.Code
	return &Highlighter{palette: codePalette{
		Default:     onBackground(t.TextPrimary, bg),
		Keyword:     onBackground(t.Accent.WithBold(true), bg),
		TypeName:    onBackground(t.Info, bg),
		Function:    onBackground(t.AccentGlow, bg),
		String:      onBackground(t.Success, bg),
		Number:      onBackground(t.Warning, bg),
		Comment:     onBackground(t.TextMuted.WithItalic(true), bg),
		Operator:    onBackground(t.TextSecondary, bg),
		Punctuation: onBackground(t.TextMuted, bg),
		Builtin:     onBackground(t.Info, bg),
		Error:       onBackground(t.Error.WithBold(true), bg),
	}}
}

// Highlight tokenizes code into styled lines. Tabs expand to four spaces.
func (h *Highlighter) Highlight(code, language string) []CodeLine {
	code = strings.TrimRight(strings.ReplaceAll(code, "\t", "    "), "\n")
	if code == "" {
		return []CodeLine{nil}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return h.plain(code)
	}

	var lines []CodeLine
	var cur CodeLine
	for token := iter(); token != chroma.EOF; token = iter() {
		if token.Value == "" {
			continue
		}
		style := h.styleFor(token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if part != "" {
				cur = appendSpan(cur, Span{Text: part, Style: style})
			}
			if i < len(parts)-1 {
				lines = append(lines, cur)
				cur = nil
			}
		}
	}
	lines = append(lines, cur)
	return lines
}

func (h *Highlighter) plain(code string) []CodeLine {
	var lines []CodeLine
	for _, l := range strings.Split(code, "\n") {
		lines = append(lines, CodeLine{{Text: l, Style: h.palette.Default}})
	}
	return lines
}

func (h *Highlighter) styleFor(ttype chroma.TokenType) compositor.Style {
	if ttype == chroma.Error {
		return h.palette.Error
	}
	switch {
	case ttype.InCategory(chroma.Comment):
		return h.palette.Comment
	case ttype.InCategory(chroma.Keyword):
		return h.palette.Keyword
	case ttype.InSubCategory(chroma.LiteralString):
		return h.palette.String
	case ttype.InSubCategory(chroma.LiteralNumber):
		return h.palette.Number
	case ttype.InCategory(chroma.Operator):
		return h.palette.Operator
	case ttype.InCategory(chroma.Punctuation):
		return h.palette.Punctuation
	case ttype.InCategory(chroma.Name):
		switch ttype {
		case chroma.NameFunction, chroma.NameFunctionMagic:
			return h.palette.Function
		case chroma.NameClass, chroma.NameNamespace:
			return h.palette.TypeName
		case chroma.NameBuiltin, chroma.NameBuiltinPseudo:
			return h.palette.Builtin
		case chroma.NameConstant:
			return h.palette.Number
		}
	}
	return h.palette.Default
}

func appendSpan(l CodeLine, sp Span) CodeLine {
	if n := len(l); n > 0 && l[n-1].Style.Equal(sp.Style) {
		l[n-1].Text += sp.Text
		return l
	}
	return append(l, sp)
}

// Package helpdoc lays out markdown as styled terminal lines.
//
// Markdown is parsed with goldmark. Paragraphs are word-wrapped to the
// target width, fenced code is highlighted with chroma and clipped, and the
// resulting lines can be drawn into a runtime.Buffer.
package helpdoc

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"

	"github.com/odvcencio/screenrun/backend"
)

// Span is a run of text in one style.
type Span struct {
	Text  string
	Style backend.Style
}

// Line is one laid-out row.
type Line []Span

// String returns the line's text without styling.
func (l Line) String() string {
	var sb strings.Builder
	for _, sp := range l {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// Width returns the line's display width in cells.
func (l Line) Width() int {
	w := 0
	for _, sp := range l {
		w += runewidth.StringWidth(sp.Text)
	}
	return w
}

// Theme maps markdown elements to styles.
type Theme struct {
	Text     backend.Style
	Heading  backend.Style
	Rule     backend.Style
	Bullet   backend.Style
	Quote    backend.Style
	Code     backend.Style
	Link     backend.Style
	// CodeStyle names a chroma style for fenced code.
	CodeStyle string
}

// DefaultTheme returns a theme that works on dark terminals.
func DefaultTheme() Theme {
	base := backend.DefaultStyle()
	return Theme{
		Text:      base,
		Heading:   base.Foreground(backend.ColorCyan).Bold(true),
		Rule:      base.Foreground(backend.ColorBlue),
		Bullet:    base.Foreground(backend.ColorYellow),
		Quote:     base.Foreground(backend.ColorGreen),
		Code:      base.Foreground(backend.ColorWhite),
		Link:      base.Foreground(backend.ColorBlue).Underline(true),
		CodeStyle: "monokai",
	}
}

// Renderer converts markdown into lines.
type Renderer struct {
	theme Theme
	md    goldmark.Markdown
	code  *highlighter
}

// New returns a Renderer using theme.
func New(theme Theme) *Renderer {
	return &Renderer{
		theme: theme,
		md:    goldmark.New(),
		code:  newHighlighter(theme.CodeStyle, theme.Code),
	}
}

// Render lays out src for a viewport width columns wide.
func (r *Renderer) Render(src []byte, width int) []Line {
	return r.layout(src, max(width, 1))
}

func appendSpan(line Line, text string, style backend.Style) Line {
	if text == "" {
		return line
	}
	if n := len(line); n > 0 && line[n-1].Style == style {
		line[n-1].Text += text
		return line
	}
	return append(line, Span{Text: text, Style: style})
}

// clip truncates line to width cells.
func clip(line Line, width int) Line {
	var out Line
	col := 0
	for _, sp := range line {
		w := runewidth.StringWidth(sp.Text)
		if col+w <= width {
			out = append(out, sp)
			col += w
			continue
		}
		head, _ := cut(sp.Text, width-col)
		out = appendSpan(out, head, sp.Style)
		break
	}
	return out
}

// cut splits s after at most cols cells.
func cut(s string, cols int) (string, string) {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > cols {
			return s[:i], s[i:]
		}
		w += rw
	}
	return s, ""
}

// words splits s into words and single " " separators.
func words(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			if len(out) == 0 || out[len(out)-1] != " " {
				out = append(out, " ")
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func clone(l Line) Line {
	return append(Line(nil), l...)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

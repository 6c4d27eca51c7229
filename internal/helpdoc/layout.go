package helpdoc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/odvcencio/screenrun/backend"
)

// hardBreak is the span text used for an explicit line break.
const hardBreak = "\n"

type layoutState struct {
	r     *Renderer
	src   []byte
	width int
	lines []Line
}

func (r *Renderer) layout(src []byte, width int) []Line {
	doc := r.md.Parser().Parse(text.NewReader(src))
	s := &layoutState{r: r, src: src, width: width}
	s.children(doc, nil, nil, true)
	return s.lines
}

func (s *layoutState) emit(prefix, content Line) {
	line := clone(prefix)
	for _, sp := range content {
		line = appendSpan(line, sp.Text, sp.Style)
	}
	s.lines = append(s.lines, line)
}

// children lays out the block children of n. first prefixes the first
// emitted line, cont every later one.
func (s *layoutState) children(n ast.Node, first, cont Line, gap bool) {
	prefix := first
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c != n.FirstChild() && gap {
			s.emit(trimPrefix(cont), nil)
		}
		before := len(s.lines)
		s.block(c, prefix, cont)
		if len(s.lines) > before {
			prefix = cont
		}
	}
}

func (s *layoutState) block(n ast.Node, first, cont Line) {
	theme := s.r.theme
	switch n := n.(type) {
	case *ast.Heading:
		spans := s.inline(n, theme.Heading)
		before := len(s.lines)
		s.wrap(spans, first, cont)
		if n.Level <= 2 {
			w := 0
			for _, l := range s.lines[before:] {
				w = max(w, l.Width()-first.Width())
			}
			s.emit(cont, Line{{Text: strings.Repeat("─", max(w, 1)), Style: theme.Rule}})
		}
	case *ast.Paragraph, *ast.TextBlock:
		s.wrap(s.inline(n, theme.Text), first, cont)
	case *ast.FencedCodeBlock:
		s.code(string(n.Language(s.src)), n.Lines(), first, cont)
	case *ast.CodeBlock:
		s.code("", n.Lines(), first, cont)
	case *ast.List:
		num := n.Start
		prefix := first
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			if item != n.FirstChild() && !n.IsTight {
				s.emit(trimPrefix(cont), nil)
			}
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			pad := strings.Repeat(" ", runewidth.StringWidth(marker))
			s.children(item,
				append(clone(prefix), Span{Text: marker, Style: theme.Bullet}),
				append(clone(cont), Span{Text: pad, Style: theme.Text}),
				!n.IsTight)
			prefix = cont
		}
	case *ast.Blockquote:
		bar := Span{Text: "│ ", Style: theme.Quote}
		s.children(n, append(clone(first), bar), append(clone(cont), bar), true)
	case *ast.ThematicBreak:
		w := max(s.width-first.Width(), 1)
		s.emit(first, Line{{Text: strings.Repeat("─", w), Style: theme.Rule}})
	case *ast.HTMLBlock:
		// Raw HTML has no terminal rendering.
	default:
		s.children(n, first, cont, true)
	}
}

// inline flattens the inline children of n into styled spans.
func (s *layoutState) inline(n ast.Node, base backend.Style) []Span {
	theme := s.r.theme
	var spans []Span
	var walk func(n ast.Node, style backend.Style)
	walk = func(n ast.Node, style backend.Style) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				spans = append(spans, Span{Text: string(c.Segment.Value(s.src)), Style: style})
				if c.HardLineBreak() {
					spans = append(spans, Span{Text: hardBreak, Style: style})
				} else if c.SoftLineBreak() {
					spans = append(spans, Span{Text: " ", Style: style})
				}
			case *ast.String:
				spans = append(spans, Span{Text: string(c.Value), Style: style})
			case *ast.CodeSpan:
				walk(c, theme.Code)
			case *ast.Emphasis:
				if c.Level >= 2 {
					walk(c, style.Bold(true))
				} else {
					walk(c, style.Italic(true))
				}
			case *ast.Link:
				walk(c, theme.Link)
			case *ast.AutoLink:
				spans = append(spans, Span{Text: string(c.URL(s.src)), Style: theme.Link})
			case *ast.RawHTML:
			default:
				walk(c, style)
			}
		}
	}
	walk(n, base)
	return spans
}

// wrap word-wraps spans. Words wider than a whole line are split.
func (s *layoutState) wrap(spans []Span, first, cont Line) {
	prefix := first
	var cur Line
	col := 0
	space := false
	var spaceStyle backend.Style
	emitted := false
	avail := func() int { return max(s.width-prefix.Width(), 1) }
	flush := func() {
		s.emit(prefix, cur)
		prefix, cur, col, space, emitted = cont, nil, 0, false, true
	}

	for _, sp := range spans {
		if sp.Text == hardBreak {
			flush()
			continue
		}
		for _, word := range words(sp.Text) {
			if word == " " {
				space, spaceStyle = col > 0, sp.Style
				continue
			}
			w := runewidth.StringWidth(word)
			need := w
			if space {
				need++
			}
			if col > 0 && col+need > avail() {
				flush()
			}
			if space {
				cur = appendSpan(cur, " ", spaceStyle)
				col++
				space = false
			}
			for col+w > avail() {
				head, tail := cut(word, avail()-col)
				if head == "" {
					if col > 0 {
						flush()
						continue
					}
					_, size := utf8.DecodeRuneInString(word)
					head, tail = word[:size], word[size:]
				}
				cur = appendSpan(cur, head, sp.Style)
				flush()
				word = tail
				w = runewidth.StringWidth(word)
			}
			cur = appendSpan(cur, word, sp.Style)
			col += w
		}
	}
	if len(cur) > 0 || !emitted {
		s.emit(prefix, cur)
	}
}

func (s *layoutState) code(lang string, lines *text.Segments, first, cont Line) {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(s.src))
	}
	indent := Span{Text: "  ", Style: s.r.theme.Text}
	prefix := first
	for _, line := range s.r.code.highlight(lang, strings.TrimRight(sb.String(), "\n")) {
		p := append(clone(prefix), indent)
		s.emit(p, clip(line, max(s.width-p.Width(), 0)))
		prefix = cont
	}
}

// trimPrefix drops trailing padding so blank separator lines carry only
// visible decoration such as quote bars.
func trimPrefix(l Line) Line {
	out := clone(l)
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1].Text) == "" {
		out = out[:len(out)-1]
	}
	return out
}

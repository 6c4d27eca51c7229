package helpdoc

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/odvcencio/screenrun/backend"
)

type highlighter struct {
	style *chroma.Style
	base  backend.Style
	cache map[chroma.TokenType]backend.Style
}

func newHighlighter(name string, base backend.Style) *highlighter {
	return &highlighter{
		style: styles.Get(name),
		base:  base,
		cache: make(map[chroma.TokenType]backend.Style),
	}
}

// highlight tokenises code and returns one Line per source line. Unknown
// languages fall back to plain text.
func (h *highlighter) highlight(lang, code string) []Line {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return h.plain(code)
	}
	var out []Line
	for _, tokens := range chroma.SplitTokensIntoLines(it.Tokens()) {
		var line Line
		for _, tok := range tokens {
			line = appendSpan(line, expandTabs(strings.TrimRight(tok.Value, "\n")), h.tokenStyle(tok.Type))
		}
		out = append(out, line)
	}
	return out
}

func (h *highlighter) plain(code string) []Line {
	var out []Line
	for _, l := range strings.Split(code, "\n") {
		out = append(out, appendSpan(nil, expandTabs(l), h.base))
	}
	return out
}

func (h *highlighter) tokenStyle(t chroma.TokenType) backend.Style {
	if st, ok := h.cache[t]; ok {
		return st
	}
	entry := h.style.Get(t)
	st := h.base
	if entry.Colour.IsSet() {
		st = st.Foreground(backend.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	h.cache[t] = st
	return st
}

package helpdoc

import (
	"github.com/odvcencio/screenrun/runtime"
	"github.com/odvcencio/screenrun/scroll"
)

// Pager is a scrollable view of one markdown document. The rightmost
// column of the drawing area holds the scrollbar; layout is redone only
// when the width changes.
type Pager struct {
	renderer  *Renderer
	src       []byte
	width     int
	lines     []Line
	viewport  scroll.Viewport
	Scrollbar scroll.Scrollbar
}

// NewPager returns a pager over src.
func NewPager(r *Renderer, src []byte) *Pager {
	return &Pager{
		renderer: r,
		src:      src,
		width:    -1,
		Scrollbar: scroll.Scrollbar{
			Track:        r.theme.Rule,
			Thumb:        r.theme.Heading,
			MinThumbSize: 1,
			Chars:        scroll.ScrollbarChars{Track: '│', Thumb: '┃'},
		},
	}
}

// ScrollBy moves the view by n lines.
func (p *Pager) ScrollBy(n int) {
	p.viewport.ScrollBy(n)
}

// PageBy moves the view by whole pages.
func (p *Pager) PageBy(pages int) {
	p.viewport.PageBy(pages)
}

// Home scrolls to the top.
func (p *Pager) Home() {
	p.viewport.ScrollToStart()
}

// End scrolls to the bottom.
func (p *Pager) End() {
	p.viewport.ScrollToEnd()
}

// Offset returns the index of the first visible line.
func (p *Pager) Offset() int {
	return p.viewport.Offset()
}

// Lines returns the document as laid out by the last Draw.
func (p *Pager) Lines() []Line {
	return p.lines
}

// Draw lays out the document for area if needed and draws the visible part.
func (p *Pager) Draw(buf *runtime.Buffer, area runtime.Rect) {
	area = area.Intersection(buf.Bounds())
	if area.Width < 2 || area.Height < 1 {
		return
	}
	text := runtime.Rect{X: area.X, Y: area.Y, Width: area.Width - 1, Height: area.Height}
	if text.Width != p.width {
		p.width = text.Width
		p.lines = p.renderer.Render(p.src, text.Width)
		p.viewport.SetContentLines(len(p.lines))
	}
	p.viewport.SetViewLines(area.Height)
	Draw(buf, text, p.lines, p.viewport.Offset())
	p.Scrollbar.Draw(buf, runtime.Rect{X: area.X + area.Width - 1, Y: area.Y, Width: 1, Height: area.Height}, &p.viewport)
}

// Draw writes lines into area of buf, starting at line offset.
func Draw(buf *runtime.Buffer, area runtime.Rect, lines []Line, offset int) {
	region := buf.Region(area)
	_, h := region.Size()
	for y := 0; y < h; y++ {
		i := offset + y
		if i < 0 {
			continue
		}
		if i >= len(lines) {
			break
		}
		x := 0
		for _, sp := range lines[i] {
			x += region.SetString(x, y, sp.Text, sp.Style)
		}
	}
}

// Package scroll provides a line viewport and its scrollbar.
package scroll

import (
	"github.com/odvcencio/screenrun/backend"
	"github.com/odvcencio/screenrun/runtime"
)

// Viewport tracks which lines of taller content are visible.
type Viewport struct {
	offset   int
	content  int
	view     int
	onChange func(offset int)
}

// SetContentLines updates the content height and clamps the offset.
func (v *Viewport) SetContentLines(n int) {
	v.content = max(n, 0)
	v.SetOffset(v.offset)
}

// ContentLines returns the content height.
func (v *Viewport) ContentLines() int {
	return v.content
}

// SetViewLines updates the view height and clamps the offset.
func (v *Viewport) SetViewLines(n int) {
	v.view = max(n, 0)
	v.SetOffset(v.offset)
}

// ViewLines returns the view height.
func (v *Viewport) ViewLines() int {
	return v.view
}

// Offset returns the first visible line.
func (v *Viewport) Offset() int {
	return v.offset
}

// SetOnChange sets a callback for offset updates.
func (v *Viewport) SetOnChange(fn func(offset int)) {
	v.onChange = fn
}

// SetOffset scrolls to line y, clamped to the content.
func (v *Viewport) SetOffset(y int) {
	next := min(max(y, 0), v.MaxOffset())
	if next == v.offset {
		return
	}
	v.offset = next
	if v.onChange != nil {
		v.onChange(next)
	}
}

// ScrollBy moves the offset by dy lines.
func (v *Viewport) ScrollBy(dy int) {
	v.SetOffset(v.offset + dy)
}

// PageBy moves the offset by whole views, keeping one line of overlap.
func (v *Viewport) PageBy(pages int) {
	step := max(v.view-1, 1)
	v.ScrollBy(pages * step)
}

// ScrollToStart scrolls to the first line.
func (v *Viewport) ScrollToStart() {
	v.SetOffset(0)
}

// ScrollToEnd scrolls so the last line is visible.
func (v *Viewport) ScrollToEnd() {
	v.SetOffset(v.MaxOffset())
}

// MaxOffset returns the largest valid offset.
func (v *Viewport) MaxOffset() int {
	return max(v.content-v.view, 0)
}

// Overflows reports whether the content is taller than the view.
func (v *Viewport) Overflows() bool {
	return v.content > v.view
}

// Visible returns the half-open range of visible lines.
func (v *Viewport) Visible() (start, end int) {
	return v.offset, min(v.offset+v.view, v.content)
}

// Scrollbar configures scrollbar rendering.
type Scrollbar struct {
	Track        backend.Style
	Thumb        backend.Style
	MinThumbSize int
	Chars        ScrollbarChars
}

// ScrollbarChars defines characters used to render the scrollbar.
type ScrollbarChars struct {
	Track rune
	Thumb rune
}

// DefaultScrollbarChars returns ASCII defaults.
func DefaultScrollbarChars() ScrollbarChars {
	return ScrollbarChars{Track: '|', Thumb: '#'}
}

// ThumbSpan returns the thumb position and length on a track of the given length.
func (s Scrollbar) ThumbSpan(track int, v *Viewport) (start, size int) {
	if track <= 0 || v.content <= 0 {
		return 0, 0
	}
	size = track * v.view / v.content
	size = min(max(size, s.MinThumbSize, 1), track)
	if maxOffset := v.MaxOffset(); maxOffset > 0 {
		start = (track - size) * v.offset / maxOffset
	}
	return start, size
}

// Draw renders a vertical scrollbar down column area.X. Nothing is drawn
// when the content fits.
func (s Scrollbar) Draw(buf *runtime.Buffer, area runtime.Rect, v *Viewport) {
	if area.Empty() || !v.Overflows() {
		return
	}
	chars := s.Chars
	if chars == (ScrollbarChars{}) {
		chars = DefaultScrollbarChars()
	}
	start, size := s.ThumbSpan(area.Height, v)
	for y := 0; y < area.Height; y++ {
		if y >= start && y < start+size {
			buf.Set(area.X, area.Y+y, chars.Thumb, s.Thumb)
		} else {
			buf.Set(area.X, area.Y+y, chars.Track, s.Track)
		}
	}
}

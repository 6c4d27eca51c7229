package runtime

// Frame rendering:
//
// The app owns one Buffer sized to the terminal. Every frame it is cleared,
// handed to the active screen's Render, and then only the cells that differ
// from the previous frame are written to the backend. Dirty tracking bounds
// how much of the buffer that comparison has to scan.

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/screenrun/backend"
)

// Cell represents a single character cell in the buffer.
type Cell = backend.Cell

// blank is what Clear writes. Rune 0 marks the trailing half of a wide rune.
var blank = Cell{Rune: ' ', Style: backend.DefaultStyle()}

// Buffer is the drawing surface a screen renders one frame into.
type Buffer struct {
	cells  []Cell
	width  int
	height int

	dirtyStamp []uint32 // generation marker per cell
	dirtyGen   uint32
	dirtyAll   bool
	dirtyCount int
	dirtyRect  Rect
}

// NewBuffer creates a blank buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	w, h = max(w, 0), max(h, 0)
	b := &Buffer{
		cells:      make([]Cell, w*h),
		dirtyStamp: make([]uint32, w*h),
		dirtyGen:   1,
		width:      w,
		height:     h,
	}
	for i := range b.cells {
		b.cells[i] = blank
	}
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Bounds returns the full buffer area.
func (b *Buffer) Bounds() Rect {
	return Rect{Width: b.width, Height: b.height}
}

// Resize changes the buffer dimensions, preserving content where possible,
// and marks everything dirty.
func (b *Buffer) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if w == b.width && h == b.height {
		return
	}
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i] = blank
	}
	minW := min(w, b.width)
	for y := 0; y < min(h, b.height); y++ {
		copy(cells[y*w:y*w+minW], b.cells[y*b.width:y*b.width+minW])
	}
	b.cells = cells
	b.dirtyStamp = make([]uint32, w*h)
	b.dirtyGen = 1
	b.width = w
	b.height = h
	b.MarkAllDirty()
}

// Clear resets every cell to a space in the default style.
func (b *Buffer) Clear() {
	b.Fill(b.Bounds(), ' ', backend.DefaultStyle())
}

// Get returns the cell at (x, y), or a blank cell when out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return blank
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune at (x, y). Out-of-bounds writes are ignored.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.put(x, y, Cell{Rune: r, Style: s})
}

func (b *Buffer) put(x, y int, cell Cell) {
	idx := y*b.width + x
	if b.cells[idx] != cell {
		b.cells[idx] = cell
		b.markCellDirty(x, y, idx)
	}
}

// SetString writes s starting at (x, y), clipped to the buffer. Wide runes
// take two cells; a wide rune that would straddle the right edge is dropped.
// It returns the number of columns advanced.
func (b *Buffer) SetString(x, y int, s string, style backend.Style) int {
	if y < 0 || y >= b.height {
		return 0
	}
	px := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if px >= b.width {
			break
		}
		if px >= 0 {
			if px+w > b.width {
				break
			}
			b.put(px, y, Cell{Rune: r, Style: style})
			if w == 2 {
				b.put(px+1, y, Cell{Rune: 0, Style: style})
			}
		}
		px += w
	}
	return px - x
}

// Fill fills a rectangular region with a rune and style.
func (b *Buffer) Fill(r Rect, ch rune, s backend.Style) {
	r = r.Intersection(b.Bounds())
	cell := Cell{Rune: ch, Style: s}
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.put(x, y, cell)
		}
	}
}

// BoxChars holds the runes used to draw a border.
type BoxChars struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

var (
	BoxLight   = BoxChars{'┌', '┐', '└', '┘', '─', '│'}
	BoxRounded = BoxChars{'╭', '╮', '╰', '╯', '─', '│'}
)

// DrawBox draws a border around r.
func (b *Buffer) DrawBox(r Rect, chars BoxChars, s backend.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1
	b.Set(r.X, r.Y, chars.TopLeft, s)
	b.Set(right, r.Y, chars.TopRight, s)
	b.Set(r.X, bottom, chars.BottomLeft, s)
	b.Set(right, bottom, chars.BottomRight, s)
	for x := r.X + 1; x < right; x++ {
		b.Set(x, r.Y, chars.Horizontal, s)
		b.Set(x, bottom, chars.Horizontal, s)
	}
	for y := r.Y + 1; y < bottom; y++ {
		b.Set(r.X, y, chars.Vertical, s)
		b.Set(right, y, chars.Vertical, s)
	}
}

// Row returns the text of row y with wide-rune padding removed.
func (b *Buffer) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for _, cell := range b.cells[y*b.width : (y+1)*b.width] {
		if cell.Rune != 0 {
			sb.WriteRune(cell.Rune)
		}
	}
	return sb.String()
}

// Region is a clipped, translated view into part of a Buffer.
type Region struct {
	parent *Buffer
	bounds Rect
}

// Region returns a view of r. Coordinates passed to the view are relative
// to r's origin and clipped to its size.
func (b *Buffer) Region(r Rect) Region {
	return Region{parent: b, bounds: r.Intersection(b.Bounds())}
}

// Size returns the region dimensions.
func (v Region) Size() (w, h int) {
	return v.bounds.Width, v.bounds.Height
}

// Set writes a rune relative to the region.
func (v Region) Set(x, y int, r rune, style backend.Style) {
	if !(Rect{Width: v.bounds.Width, Height: v.bounds.Height}).Contains(x, y) {
		return
	}
	v.parent.Set(v.bounds.X+x, v.bounds.Y+y, r, style)
}

// SetString writes a string relative to the region, clipped to its width.
func (v Region) SetString(x, y int, s string, style backend.Style) int {
	if y < 0 || y >= v.bounds.Height {
		return 0
	}
	px := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if px+w > v.bounds.Width {
			break
		}
		if px >= 0 {
			v.parent.SetString(v.bounds.X+px, v.bounds.Y+y, string(r), style)
		}
		px += w
	}
	return px - x
}

// Fill fills a rectangle relative to the region.
func (v Region) Fill(r Rect, ch rune, style backend.Style) {
	clipped := r.Intersection(Rect{Width: v.bounds.Width, Height: v.bounds.Height})
	if clipped.Empty() {
		return
	}
	clipped.X += v.bounds.X
	clipped.Y += v.bounds.Y
	v.parent.Fill(clipped, ch, style)
}

// markCellDirty marks a single cell as dirty and grows the dirty rect.
func (b *Buffer) markCellDirty(x, y, idx int) {
	if b.dirtyAll || b.dirtyStamp[idx] == b.dirtyGen {
		return
	}
	b.dirtyStamp[idx] = b.dirtyGen
	b.dirtyCount++
	if b.dirtyCount == 1 {
		b.dirtyRect = Rect{X: x, Y: y, Width: 1, Height: 1}
		return
	}
	if x < b.dirtyRect.X {
		b.dirtyRect.Width += b.dirtyRect.X - x
		b.dirtyRect.X = x
	} else if x >= b.dirtyRect.X+b.dirtyRect.Width {
		b.dirtyRect.Width = x - b.dirtyRect.X + 1
	}
	if y < b.dirtyRect.Y {
		b.dirtyRect.Height += b.dirtyRect.Y - y
		b.dirtyRect.Y = y
	} else if y >= b.dirtyRect.Y+b.dirtyRect.Height {
		b.dirtyRect.Height = y - b.dirtyRect.Y + 1
	}
}

// MarkAllDirty marks the entire buffer as dirty.
func (b *Buffer) MarkAllDirty() {
	b.dirtyAll = true
	b.dirtyCount = b.width * b.height
	b.dirtyRect = b.Bounds()
}

// ClearDirty resets all dirty flags.
func (b *Buffer) ClearDirty() {
	b.dirtyAll = false
	b.dirtyCount = 0
	b.dirtyRect = Rect{}
	b.dirtyGen++
	if b.dirtyGen == 0 {
		clear(b.dirtyStamp)
		b.dirtyGen = 1
	}
}

// IsDirty returns true if any cells have changed.
func (b *Buffer) IsDirty() bool {
	return b.dirtyAll || b.dirtyCount > 0
}

// DirtyCount returns the number of dirty cells.
func (b *Buffer) DirtyCount() int {
	return b.dirtyCount
}

// DirtyRect returns the bounding box of dirty cells.
func (b *Buffer) DirtyRect() Rect {
	return b.dirtyRect
}

// ForEachDirtySpan calls fn for each contiguous dirty span per row.
func (b *Buffer) ForEachDirtySpan(fn func(y, startX, endX int)) {
	if b.dirtyAll {
		for y := 0; y < b.height; y++ {
			fn(y, 0, b.width)
		}
		return
	}
	rect := b.dirtyRect
	if b.dirtyCount == 0 || rect.Empty() {
		return
	}
	xEnd := min(b.width, rect.X+rect.Width)
	yEnd := min(b.height, rect.Y+rect.Height)
	for y := rect.Y; y < yEnd; y++ {
		rowStart := y * b.width
		x := rect.X
		for x < xEnd {
			if b.dirtyStamp[rowStart+x] != b.dirtyGen {
				x++
				continue
			}
			start := x
			x++
			for x < xEnd && b.dirtyStamp[rowStart+x] == b.dirtyGen {
				x++
			}
			fn(y, start, x)
		}
	}
}

// Cells returns the underlying row-major cell slice.
func (b *Buffer) Cells() []Cell {
	return b.cells
}

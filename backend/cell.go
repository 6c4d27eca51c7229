package backend

// Color is a terminal color. ColorDefault leaves the terminal's own color.
// Values 0-255 address the indexed palette; RGB colors set the high bit.
type Color int32

const (
	ColorDefault Color = -1

	ColorBlack Color = iota - 1
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

const rgbFlag Color = 1 << 24

// RGB returns a true-color value.
func RGB(r, g, b uint8) Color {
	return rgbFlag | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsRGB reports whether c was built by RGB.
func (c Color) IsRGB() bool {
	return c >= 0 && c&rgbFlag != 0
}

// Components returns the red, green and blue parts of an RGB color.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// AttrMask holds text attributes.
type AttrMask uint8

const (
	AttrBold AttrMask = 1 << iota
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrDim
)

// Style is the visual style of a cell. It is comparable so buffers can
// detect changed cells with ==.
type Style struct {
	FG    Color
	BG    Color
	Attrs AttrMask
}

// DefaultStyle returns the terminal's default colors with no attributes.
func DefaultStyle() Style {
	return Style{FG: ColorDefault, BG: ColorDefault}
}

// Foreground returns a copy of s with the foreground color set.
func (s Style) Foreground(c Color) Style {
	s.FG = c
	return s
}

// Background returns a copy of s with the background color set.
func (s Style) Background(c Color) Style {
	s.BG = c
	return s
}

// Bold returns a copy of s with bold toggled.
func (s Style) Bold(on bool) Style {
	return s.with(AttrBold, on)
}

// Italic returns a copy of s with italics toggled.
func (s Style) Italic(on bool) Style {
	return s.with(AttrItalic, on)
}

// Underline returns a copy of s with underline toggled.
func (s Style) Underline(on bool) Style {
	return s.with(AttrUnderline, on)
}

// Reverse returns a copy of s with reverse video toggled.
func (s Style) Reverse(on bool) Style {
	return s.with(AttrReverse, on)
}

// Dim returns a copy of s with reduced intensity toggled.
func (s Style) Dim(on bool) Style {
	return s.with(AttrDim, on)
}

func (s Style) with(attr AttrMask, on bool) Style {
	if on {
		s.Attrs |= attr
	} else {
		s.Attrs &^= attr
	}
	return s
}

// Cell is a single character cell.
type Cell struct {
	Rune  rune
	Style Style
}

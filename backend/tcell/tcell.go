// Package tcell implements backend.Backend on top of gdamore/tcell.
package tcell

import (
	"fmt"
	"strings"
	"time"

	tc "github.com/gdamore/tcell/v2"

	"github.com/odvcencio/screenrun/backend"
)

// Backend adapts a tcell.Screen to the backend interfaces.
// PollEvent and ReadEvent must be called from a single goroutine.
type Backend struct {
	screen tc.Screen
	events chan tc.Event
	quit   chan struct{}

	pending backend.Event
	paste   *strings.Builder
	raw     bool
}

var (
	_ backend.Backend           = (*Backend)(nil)
	_ backend.EventSource       = (*Backend)(nil)
	_ backend.RawModeController = (*Backend)(nil)
	_ backend.RowWriter         = (*Backend)(nil)
)

// New creates a backend for the controlling terminal.
func New() (*Backend, error) {
	screen, err := tc.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return &Backend{screen: screen}, nil
}

// NewSimulation creates a backend over an in-memory screen. The returned
// SimulationScreen can inject input and inspect output.
func NewSimulation() (*Backend, tc.SimulationScreen) {
	screen := tc.NewSimulationScreen("UTF-8")
	return &Backend{screen: screen}, screen
}

// Init puts the terminal into raw mode and starts collecting events.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse()
	b.screen.EnablePaste()
	b.screen.EnableFocus()
	b.events = make(chan tc.Event, 64)
	b.quit = make(chan struct{})
	b.raw = true
	go b.screen.ChannelEvents(b.events, b.quit)
	return nil
}

// Fini restores the terminal.
func (b *Backend) Fini() {
	if b.quit != nil {
		close(b.quit)
		b.quit = nil
	}
	b.screen.Fini()
}

// Size returns the terminal size in cells.
func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

// HideCursor hides the text cursor.
func (b *Backend) HideCursor() {
	b.screen.HideCursor()
}

// SetContent writes a cell into tcell's back buffer.
func (b *Backend) SetContent(x, y int, mainc rune, combc []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, combc, convertStyle(style))
}

// SetRow writes a run of cells starting at (startX, y).
func (b *Backend) SetRow(y int, startX int, cells []backend.Cell) {
	for i, cell := range cells {
		if cell.Rune == 0 {
			continue
		}
		b.screen.SetContent(startX+i, y, cell.Rune, nil, convertStyle(cell.Style))
	}
}

// Show flushes pending cell changes to the terminal.
func (b *Backend) Show() {
	b.screen.Show()
}

// EnableRawMode resumes the screen after DisableRawMode.
func (b *Backend) EnableRawMode() error {
	if b.raw {
		return nil
	}
	if err := b.screen.Resume(); err != nil {
		return err
	}
	b.raw = true
	return nil
}

// DisableRawMode hands the terminal back in cooked mode until EnableRawMode.
func (b *Backend) DisableRawMode() error {
	if !b.raw {
		return nil
	}
	if err := b.screen.Suspend(); err != nil {
		return err
	}
	b.raw = false
	return nil
}

// PollEvent waits up to timeout for an input event.
func (b *Backend) PollEvent(timeout time.Duration) (bool, error) {
	if b.pending != nil {
		return true, nil
	}
	if b.events == nil {
		return false, backend.ErrClosed
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return false, backend.ErrClosed
			}
			if errEv, isErr := ev.(*tc.EventError); isErr {
				return false, errEv
			}
			if converted := b.convert(ev); converted != nil {
				b.pending = converted
				return true, nil
			}
		case <-timer.C:
			return false, nil
		}
	}
}

// ReadEvent returns the event found by the last successful PollEvent.
func (b *Backend) ReadEvent() (backend.Event, error) {
	if b.pending == nil {
		return nil, fmt.Errorf("read event: nothing polled")
	}
	ev := b.pending
	b.pending = nil
	return ev, nil
}

// convert maps a tcell event. Keys arriving inside a bracketed paste are
// accumulated and returned as a single PasteEvent when the paste ends.
func (b *Backend) convert(ev tc.Event) backend.Event {
	switch e := ev.(type) {
	case *tc.EventKey:
		if b.paste != nil {
			switch e.Key() {
			case tc.KeyRune:
				b.paste.WriteRune(e.Rune())
			case tc.KeyEnter:
				b.paste.WriteByte('\n')
			case tc.KeyTab:
				b.paste.WriteByte('\t')
			}
			return nil
		}
		return backend.KeyEvent{
			Key:  e.Key(),
			Rune: e.Rune(),
			Mods: e.Modifiers(),
			Kind: backend.KeyPress,
		}
	case *tc.EventPaste:
		if e.Start() {
			b.paste = &strings.Builder{}
			return nil
		}
		if b.paste == nil {
			return nil
		}
		text := b.paste.String()
		b.paste = nil
		return backend.PasteEvent{Text: text}
	case *tc.EventMouse:
		x, y := e.Position()
		return backend.MouseEvent{X: x, Y: y, Buttons: e.Buttons(), Mods: e.Modifiers()}
	case *tc.EventResize:
		w, h := e.Size()
		return backend.ResizeEvent{Width: w, Height: h}
	case *tc.EventFocus:
		return backend.FocusEvent{Gained: e.Focused}
	default:
		return nil
	}
}

func convertStyle(s backend.Style) tc.Style {
	st := tc.StyleDefault.
		Foreground(convertColor(s.FG)).
		Background(convertColor(s.BG))
	if s.Attrs&backend.AttrBold != 0 {
		st = st.Bold(true)
	}
	if s.Attrs&backend.AttrItalic != 0 {
		st = st.Italic(true)
	}
	if s.Attrs&backend.AttrUnderline != 0 {
		st = st.Underline(true)
	}
	if s.Attrs&backend.AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if s.Attrs&backend.AttrDim != 0 {
		st = st.Dim(true)
	}
	return st
}

func convertColor(c backend.Color) tc.Color {
	switch {
	case c == backend.ColorDefault:
		return tc.ColorDefault
	case c.IsRGB():
		r, g, b := c.Components()
		return tc.NewRGBColor(int32(r), int32(g), int32(b))
	default:
		return tc.PaletteColor(int(c))
	}
}

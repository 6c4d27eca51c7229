package main

import (
	_ "embed"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/odvcencio/screenrun/backend"
	"github.com/odvcencio/screenrun/internal/helpdoc"
	"github.com/odvcencio/screenrun/runtime"
)

const (
	keyMenu    runtime.ScreenKey = "menu"
	keyCounter runtime.ScreenKey = "counter"
	keyHelp    runtime.ScreenKey = "help"
)

//go:embed help.md
var helpText []byte

var (
	titleStyle  = backend.DefaultStyle().Foreground(backend.ColorCyan).Bold(true)
	textStyle   = backend.DefaultStyle()
	dimStyle    = backend.DefaultStyle().Foreground(backend.ColorWhite).Dim(true)
	cursorStyle = backend.DefaultStyle().Reverse(true)
	frameStyle  = backend.DefaultStyle().Foreground(backend.ColorBlue)
)

// isBack reports keys that return to the menu.
func isBack(msg runtime.KeyMsg) bool {
	return msg.Key == backend.KeyTab || msg.Key == backend.KeyEscape
}

// drawFrame draws a titled border and a footer, returning the inner area.
func drawFrame(buf *runtime.Buffer, title, footer string) runtime.Rect {
	bounds := buf.Bounds()
	buf.DrawBox(bounds, runtime.BoxRounded, frameStyle)
	buf.SetString(2, 0, " "+title+" ", titleStyle)
	if footer != "" && bounds.Height > 1 {
		buf.SetString(2, bounds.Height-1, " "+footer+" ", dimStyle)
	}
	return bounds.Inset(1)
}

type menuItem struct {
	label  string
	target runtime.ScreenKey
}

// menuScreen lists the other screens and counts frames.
type menuScreen struct {
	items    []menuItem
	selected int
	ticks    int
	size     [2]int
}

func newMenuScreen() *menuScreen {
	return &menuScreen{items: []menuItem{
		{label: "Counter", target: keyCounter},
		{label: "Help", target: keyHelp},
		{label: "Quit"},
	}}
}

func (s *menuScreen) Update(msg runtime.Message) runtime.Command {
	switch msg := msg.(type) {
	case runtime.TickMsg:
		s.ticks++
	case runtime.ResizeMsg:
		s.size = [2]int{msg.Width, msg.Height}
	case runtime.KeyMsg:
		switch {
		case msg.Key == backend.KeyCtrlC, msg.Rune == 'q':
			return runtime.Quit{}
		case msg.Rune == 'c':
			return runtime.SwitchScreen{Key: keyCounter}
		case msg.Rune == '?':
			return runtime.SwitchScreen{Key: keyHelp}
		case msg.Key == backend.KeyUp, msg.Rune == 'k':
			s.selected = (s.selected + len(s.items) - 1) % len(s.items)
		case msg.Key == backend.KeyDown, msg.Rune == 'j':
			s.selected = (s.selected + 1) % len(s.items)
		case msg.Key == backend.KeyEnter:
			item := s.items[s.selected]
			if item.target == "" {
				return runtime.Quit{}
			}
			return runtime.SwitchScreen{Key: item.target}
		}
	}
	return nil
}

func (s *menuScreen) Render(buf *runtime.Buffer) {
	inner := drawFrame(buf, "screenrun", "↑/↓ select · enter open · q quit")
	view := buf.Region(inner)
	for i, item := range s.items {
		style := textStyle
		marker := "  "
		if i == s.selected {
			style, marker = cursorStyle, "> "
		}
		view.SetString(1, 1+i, marker+item.label, style)
	}
	status := "frames idle: " + strconv.Itoa(s.ticks)
	if s.size[0] > 0 {
		status += fmt.Sprintf(" · resized to %dx%d", s.size[0], s.size[1])
	}
	view.SetString(1, len(s.items)+2, status, dimStyle)
}

// counterScreen keeps a value across screen switches and mirrors it in
// the terminal title.
type counterScreen struct {
	count  int
	logger *zap.Logger
}

func (s *counterScreen) Update(msg runtime.Message) runtime.Command {
	switch msg := msg.(type) {
	case runtime.ShutdownMsg:
		s.logger.Info("counter closed", zap.Int("count", s.count))
	case runtime.KeyMsg:
		switch {
		case isBack(msg):
			return runtime.SwitchScreen{Key: keyMenu}
		case msg.Key == backend.KeyUp, msg.Rune == '+':
			s.count++
		case msg.Key == backend.KeyDown, msg.Rune == '-':
			s.count--
		case msg.Rune == 'r':
			s.count = 0
		case msg.Rune == 'b':
			return runtime.Bell()
		case msg.Rune == 'y':
			return runtime.SetClipboard(strconv.Itoa(s.count))
		default:
			return nil
		}
		return runtime.SetTitle(fmt.Sprintf("count: %d", s.count))
	}
	return nil
}

func (s *counterScreen) Render(buf *runtime.Buffer) {
	inner := drawFrame(buf, "counter", "+/- change · r reset · y copy · b bell · tab back")
	view := buf.Region(inner)
	view.SetString(1, 1, "count: "+strconv.Itoa(s.count), titleStyle)
}

// helpScreen pages through the embedded help text.
type helpScreen struct {
	pager *helpdoc.Pager
}

func newHelpScreen() *helpScreen {
	return &helpScreen{pager: helpdoc.NewPager(helpdoc.New(helpdoc.DefaultTheme()), helpText)}
}

func (s *helpScreen) Update(msg runtime.Message) runtime.Command {
	key, ok := msg.(runtime.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case isBack(key):
		s.pager.Home()
		return runtime.SwitchScreen{Key: keyMenu}
	case key.Key == backend.KeyUp, key.Rune == 'k':
		s.pager.ScrollBy(-1)
	case key.Key == backend.KeyDown, key.Rune == 'j':
		s.pager.ScrollBy(1)
	case key.Key == backend.KeyPgUp:
		s.pager.PageBy(-1)
	case key.Key == backend.KeyPgDn, key.Rune == ' ':
		s.pager.PageBy(1)
	case key.Rune == 'G':
		s.pager.End()
	case key.Rune == 'g':
		s.pager.Home()
	}
	return nil
}

func (s *helpScreen) Render(buf *runtime.Buffer) {
	inner := drawFrame(buf, "help", "↑/↓ scroll · tab back")
	s.pager.Draw(buf, inner.Inset(1))
}

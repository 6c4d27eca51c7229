package backend

import "github.com/gdamore/tcell/v2"

// Key, ModMask and ButtonMask are tcell's input vocabulary, passed through
// to applications unchanged.
type (
	Key        = tcell.Key
	ModMask    = tcell.ModMask
	ButtonMask = tcell.ButtonMask
)

// Keys, modifiers and buttons applications commonly match on.
const (
	KeyRune      = tcell.KeyRune
	KeyEnter     = tcell.KeyEnter
	KeyEscape    = tcell.KeyEscape
	KeyTab       = tcell.KeyTab
	KeyBackspace = tcell.KeyBackspace2
	KeyUp        = tcell.KeyUp
	KeyDown      = tcell.KeyDown
	KeyLeft      = tcell.KeyLeft
	KeyRight     = tcell.KeyRight
	KeyPgUp      = tcell.KeyPgUp
	KeyPgDn      = tcell.KeyPgDn
	KeyCtrlC     = tcell.KeyCtrlC

	ModNone  = tcell.ModNone
	ModShift = tcell.ModShift
	ModCtrl  = tcell.ModCtrl
	ModAlt   = tcell.ModAlt

	ButtonNone = tcell.ButtonNone
	Button1    = tcell.Button1
	Button2    = tcell.Button2
	Button3    = tcell.Button3
	WheelUp    = tcell.WheelUp
	WheelDown  = tcell.WheelDown
)

// KeyKind distinguishes presses from releases and auto-repeats on
// terminals that report them.
type KeyKind uint8

const (
	KeyPress KeyKind = iota
	KeyRepeat
	KeyRelease
)

func (k KeyKind) String() string {
	switch k {
	case KeyPress:
		return "press"
	case KeyRepeat:
		return "repeat"
	case KeyRelease:
		return "release"
	default:
		return "unknown"
	}
}

// KeyState carries lock-key flags for terminals that report them.
type KeyState uint8

const (
	KeyStateCapsLock KeyState = 1 << iota
	KeyStateNumLock
	KeyStateKeypad
)

// Event is a raw input occurrence read from an EventSource.
type Event interface {
	isEvent()
}

// KeyEvent is a keyboard event. Rune is set when Key is tcell.KeyRune.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Mods  ModMask
	Kind  KeyKind
	State KeyState
}

func (KeyEvent) isEvent() {}

// MouseEvent is a mouse button, wheel or motion event in cell coordinates.
type MouseEvent struct {
	X, Y    int
	Buttons ButtonMask
	Mods    ModMask
}

func (MouseEvent) isEvent() {}

// ResizeEvent reports the new terminal size.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) isEvent() {}

// FocusEvent reports the terminal window gaining or losing focus.
type FocusEvent struct {
	Gained bool
}

func (FocusEvent) isEvent() {}

// PasteEvent carries text delivered through bracketed paste.
type PasteEvent struct {
	Text string
}

func (PasteEvent) isEvent() {}

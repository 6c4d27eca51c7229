package runtime

import (
	"time"

	"github.com/odvcencio/screenrun/backend"
)

// Message represents an event flowing into the active screen.
// Messages come from terminal input, the frame clock, or the runtime itself.
type Message interface {
	isMessage()
}

// KeyMsg represents a key press. Releases and repeats never reach screens.
type KeyMsg struct {
	Key   backend.Key
	Rune  rune
	Mods  backend.ModMask
	State backend.KeyState
}

func (KeyMsg) isMessage() {}

// MouseMsg represents a mouse input event.
type MouseMsg struct {
	X, Y    int
	Buttons backend.ButtonMask
	Mods    backend.ModMask
}

func (MouseMsg) isMessage() {}

// ResizeMsg indicates the terminal size changed.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) isMessage() {}

// FocusGainedMsg indicates the terminal window gained focus.
type FocusGainedMsg struct{}

func (FocusGainedMsg) isMessage() {}

// FocusLostMsg indicates the terminal window lost focus.
type FocusLostMsg struct{}

func (FocusLostMsg) isMessage() {}

// PasteMsg represents pasted text from bracketed paste mode.
type PasteMsg struct {
	Text string
}

func (PasteMsg) isMessage() {}

// ShutdownMsg is delivered to registered screens once the app is exiting.
type ShutdownMsg struct{}

func (ShutdownMsg) isMessage() {}

// TickMsg is delivered on every frame that had no pending input.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// messageFromEvent converts a raw input event. Unknown events map to nil.
func messageFromEvent(ev backend.Event) Message {
	switch e := ev.(type) {
	case backend.KeyEvent:
		return KeyMsg{Key: e.Key, Rune: e.Rune, Mods: e.Mods, State: e.State}
	case backend.MouseEvent:
		return MouseMsg{X: e.X, Y: e.Y, Buttons: e.Buttons, Mods: e.Mods}
	case backend.ResizeEvent:
		return ResizeMsg{Width: e.Width, Height: e.Height}
	case backend.FocusEvent:
		if e.Gained {
			return FocusGainedMsg{}
		}
		return FocusLostMsg{}
	case backend.PasteEvent:
		return PasteMsg{Text: e.Text}
	default:
		return nil
	}
}

// Package backend defines the terminal collaborators the runtime drives:
// an output surface, a source of raw input events and a raw-mode switch.
package backend

import (
	"errors"
	"time"
)

// ErrClosed is returned by an EventSource that can no longer produce events.
var ErrClosed = errors.New("event source closed")

// Backend is a character-cell terminal the runtime renders frames into.
type Backend interface {
	Init() error
	Fini()
	Size() (width, height int)
	HideCursor()
	SetContent(x, y int, mainc rune, combc []rune, style Style)
	Show()
}

// EventSource produces raw input events.
// PollEvent waits at most timeout and reports whether an event is ready;
// ReadEvent then returns it without blocking.
type EventSource interface {
	PollEvent(timeout time.Duration) (bool, error)
	ReadEvent() (Event, error)
}

// RawModeController toggles the terminal between raw and cooked input.
type RawModeController interface {
	EnableRawMode() error
	DisableRawMode() error
}

// RowWriter is an optional optimization for bulk row updates.
// Cells with a zero Rune are the trailing half of a wide rune and must not
// overwrite it.
type RowWriter interface {
	SetRow(y int, startX int, cells []Cell)
}

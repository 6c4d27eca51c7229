package runtime

import (
	"errors"
	"fmt"
)

// ErrEventSourceDisconnected is returned by Run when the event listener
// stops delivering events while the app is still running.
var ErrEventSourceDisconnected = errors.New("the event source was disconnected")

// ErrReceiverGone is the listener's completion error when the consumer
// closed its side of the event channel.
var ErrReceiverGone = errors.New("event receiver is gone")

// MissingScreenError reports an activation of a key nothing was registered under.
type MissingScreenError struct {
	Key ScreenKey
}

func (e *MissingScreenError) Error() string {
	return fmt.Sprintf("could not find a registered screen for %q", e.Key)
}

// TerminalControlError reports an I/O failure while writing a control
// sequence or switching raw mode.
type TerminalControlError struct {
	Op  string
	Err error
}

func (e *TerminalControlError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TerminalControlError) Unwrap() error {
	return e.Err
}

// ListenError is the listener's completion error when its event source failed.
type ListenError struct {
	Op  string
	Err error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("failed to %s from event stream: %v", e.Op, e.Err)
}

func (e *ListenError) Unwrap() error {
	return e.Err
}

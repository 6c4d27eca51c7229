package runtime

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sequence is the set of types a terminal control operation can take:
// escape sequences as built by x/ansi, raw byte sequences, or any named
// type over either. Being a union, it only works as a type constraint and
// cannot be stored in a Command directly; Control boxes it instead.
type Sequence interface {
	~string | ~[]byte
}

// sequenceWriter is the single non-generic operation every Sequence
// supports once adapted.
type sequenceWriter interface {
	writeSequence(w io.Writer) (int, error)
}

// sequence adapts any Sequence to sequenceWriter.
type sequence[S Sequence] struct {
	op S
}

func (s sequence[S]) writeSequence(w io.Writer) (int, error) {
	return w.Write([]byte(s.op))
}

// ControlCommand writes a terminal control sequence to the app's sink.
// The concrete operation type is erased; build one with Control.
type ControlCommand struct {
	seq sequenceWriter
}

func (ControlCommand) Command() {}

// Control boxes a control sequence of any Sequence type into a command.
func Control[S Sequence](op S) ControlCommand {
	return ControlCommand{seq: sequence[S]{op: op}}
}

// WriteTo writes the control sequence to w.
func (c ControlCommand) WriteTo(w io.Writer) (int64, error) {
	if c.seq == nil {
		return 0, nil
	}
	n, err := c.seq.writeSequence(w)
	return int64(n), err
}

// String returns the raw control sequence.
func (c ControlCommand) String() string {
	var sb strings.Builder
	_, _ = c.WriteTo(&sb)
	return sb.String()
}

// SetTitle sets the terminal window title.
func SetTitle(title string) ControlCommand {
	return Control(ansi.SetWindowTitle(title))
}

// MoveCursor moves the cursor to a 1-based column and row.
func MoveCursor(col, row int) ControlCommand {
	return Control(ansi.CursorPosition(col, row))
}

// ClearScreen erases the whole display.
func ClearScreen() ControlCommand {
	return Control(ansi.EraseEntireScreen)
}

// ShowCursor makes the text cursor visible.
func ShowCursor() ControlCommand {
	return Control(ansi.ShowCursor)
}

// HideCursor hides the text cursor.
func HideCursor() ControlCommand {
	return Control(ansi.HideCursor)
}

// Bell rings the terminal bell.
func Bell() ControlCommand {
	return Control([]byte{ansi.BEL})
}

// SetClipboard copies text to the system clipboard with OSC 52. Terminals
// without OSC 52 support ignore it.
func SetClipboard(text string) ControlCommand {
	return Control(ansi.SetSystemClipboard(text))
}

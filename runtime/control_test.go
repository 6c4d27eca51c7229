package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

type bellSequence string

func TestControl_ErasesSequenceTypes(t *testing.T) {
	cmds := []struct {
		name string
		cmd  ControlCommand
		want string
	}{
		{"string", Control("\x1b[2J"), "\x1b[2J"},
		{"bytes", Control([]byte("\x1b[H")), "\x1b[H"},
		{"named", Control(bellSequence("\a")), "\a"},
		{"ansi", Control(ansi.EraseEntireScreen), ansi.EraseEntireScreen},
	}
	for _, tc := range cmds {
		var out bytes.Buffer
		n, err := tc.cmd.WriteTo(&out)
		if err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		if out.String() != tc.want || int(n) != len(tc.want) {
			t.Fatalf("%s: wrote %q (%d bytes), want %q", tc.name, out.String(), n, tc.want)
		}
		var cmd Command = tc.cmd
		if _, ok := cmd.(ControlCommand); !ok {
			t.Fatalf("%s: expected a ControlCommand", tc.name)
		}
	}
}

func TestControl_Helpers(t *testing.T) {
	title := SetTitle("screenrun").String()
	if !strings.Contains(title, "screenrun") || !strings.HasPrefix(title, "\x1b]") {
		t.Fatalf("unexpected title sequence %q", title)
	}
	if ansi.Strip(title) != "" {
		t.Fatalf("title sequence should be pure control, got visible %q", ansi.Strip(title))
	}
	if ClearScreen().String() != ansi.EraseEntireScreen {
		t.Fatal("ClearScreen mismatch")
	}
	if HideCursor().String() != ansi.HideCursor || ShowCursor().String() != ansi.ShowCursor {
		t.Fatal("cursor visibility mismatch")
	}
	if MoveCursor(3, 4).String() != ansi.CursorPosition(3, 4) {
		t.Fatal("MoveCursor mismatch")
	}
	if Bell().String() != "\a" {
		t.Fatalf("Bell = %q", Bell().String())
	}
	// OSC 52 carries the text base64 encoded.
	if clip := SetClipboard("hi").String(); !strings.Contains(clip, "52;") || !strings.Contains(clip, "aGk=") {
		t.Fatalf("unexpected clipboard sequence %q", clip)
	}
}

func TestControl_WriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	if _, err := Control("x").WriteTo(errWriter{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestControl_ZeroValue(t *testing.T) {
	var cmd ControlCommand
	n, err := cmd.WriteTo(errWriter{err: errors.New("unused")})
	if n != 0 || err != nil {
		t.Fatalf("zero command should write nothing, got %d %v", n, err)
	}
}

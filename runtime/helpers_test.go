package runtime

import (
	"strings"
	"time"

	"github.com/odvcencio/screenrun/backend"
)

// fakeBackend records output and serves events pushed onto its channel.
// PollEvent/ReadEvent run on the listener goroutine; everything else on
// the app goroutine.
type fakeBackend struct {
	width, height int
	initErr       error
	cells         map[[2]int]rune
	shows         int
	inits         int
	finis         int

	events  chan backend.Event
	pending backend.Event

	rawEnabled  int
	rawDisabled int
	rawErr      error
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{
		width:  w,
		height: h,
		cells:  make(map[[2]int]rune),
		events: make(chan backend.Event, 16),
	}
}

func (f *fakeBackend) Init() error {
	f.inits++
	return f.initErr
}

func (f *fakeBackend) Fini() { f.finis++ }

func (f *fakeBackend) Size() (int, int) { return f.width, f.height }

func (f *fakeBackend) HideCursor() {}

func (f *fakeBackend) SetContent(x, y int, mainc rune, combc []rune, style backend.Style) {
	f.cells[[2]int{x, y}] = mainc
}

func (f *fakeBackend) Show() { f.shows++ }

func (f *fakeBackend) row(y int) string {
	var sb strings.Builder
	for x := 0; x < f.width; x++ {
		r, ok := f.cells[[2]int{x, y}]
		if !ok {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (f *fakeBackend) PollEvent(timeout time.Duration) (bool, error) {
	if f.pending != nil {
		return true, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-f.events:
		if !ok {
			return false, backend.ErrClosed
		}
		f.pending = ev
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

func (f *fakeBackend) ReadEvent() (backend.Event, error) {
	ev := f.pending
	f.pending = nil
	return ev, nil
}

func (f *fakeBackend) EnableRawMode() error {
	f.rawEnabled++
	return f.rawErr
}

func (f *fakeBackend) DisableRawMode() error {
	f.rawDisabled++
	return f.rawErr
}

// scriptScreen records what it receives and answers with onUpdate.
type scriptScreen struct {
	name     string
	text     string
	msgs     []Message
	renders  int
	onUpdate func(s *scriptScreen, msg Message) Command
}

func (s *scriptScreen) Update(msg Message) Command {
	s.msgs = append(s.msgs, msg)
	if s.onUpdate != nil {
		return s.onUpdate(s, msg)
	}
	return nil
}

func (s *scriptScreen) Render(buf *Buffer) {
	s.renders++
	if s.text != "" {
		buf.SetString(0, 0, s.text, backend.DefaultStyle())
	}
}

func (s *scriptScreen) received(match func(Message) bool) int {
	n := 0
	for _, msg := range s.msgs {
		if match(msg) {
			n++
		}
	}
	return n
}

func isShutdown(msg Message) bool {
	_, ok := msg.(ShutdownMsg)
	return ok
}

func isTick(msg Message) bool {
	_, ok := msg.(TickMsg)
	return ok
}

// quitAfter returns an update func that quits once n messages arrived.
func quitAfter(n int) func(*scriptScreen, Message) Command {
	return func(s *scriptScreen, msg Message) Command {
		if len(s.msgs) >= n {
			return Quit{}
		}
		return nil
	}
}

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type errWriter struct{ err error }

func (w errWriter) Write(p []byte) (int, error) { return 0, w.err }

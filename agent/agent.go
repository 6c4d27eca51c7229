// Package agent drives a runtime.App on an in-memory terminal. It is meant
// for end-to-end tests and scripted sessions: start the app, type keys,
// and wait for text to appear.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tc "github.com/gdamore/tcell/v2"

	"github.com/odvcencio/screenrun/backend"
	"github.com/odvcencio/screenrun/backend/tcell"
	"github.com/odvcencio/screenrun/runtime"
)

// Common errors returned by Agent methods.
var (
	ErrTimeout    = errors.New("operation timed out")
	ErrNotRunning = errors.New("app is not running")
	ErrRunning    = errors.New("app is already running")
)

// Agent owns a simulated terminal and the goroutine running an App on it.
type Agent struct {
	mu       sync.Mutex
	backend  *simBackend
	sim      tc.SimulationScreen
	width    int
	height   int
	interval time.Duration

	// frame is the text of the last shown frame, copied on the app
	// goroutine so callers never read the simulation's cells directly.
	frame      []string
	frameWidth int

	started bool
	ready   chan struct{}
	done    chan struct{}
	err     error
	cancel  context.CancelFunc
}

// Config configures an Agent.
type Config struct {
	// Width and Height set the terminal dimensions (default 80x24).
	Width, Height int

	// PollInterval is how often Wait* methods re-check the screen.
	// Default is 10ms.
	PollInterval time.Duration
}

// New creates an Agent with a fresh simulated terminal.
func New(cfg Config) *Agent {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	be, sim := tcell.NewSimulation()
	a := &Agent{
		sim:      sim,
		width:    width,
		height:   height,
		interval: interval,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	a.backend = &simBackend{Backend: be, agent: a}
	return a
}

// simBackend sizes the simulated terminal as soon as it is initialized and
// records the text of every shown frame.
type simBackend struct {
	*tcell.Backend
	agent *Agent
	once  sync.Once
}

func (b *simBackend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	b.agent.mu.Lock()
	width, height := b.agent.width, b.agent.height
	b.agent.mu.Unlock()
	b.agent.sim.SetSize(width, height)
	b.once.Do(func() { close(b.agent.ready) })
	return nil
}

func (b *simBackend) Show() {
	b.Backend.Show()
	lines, width := screenLines(b.agent.sim)
	b.agent.mu.Lock()
	b.agent.frame, b.agent.frameWidth = lines, width
	b.agent.mu.Unlock()
}

// Backend returns the backend to pass in runtime.AppConfig. It also
// implements backend.EventSource, backend.RawModeController and
// backend.RowWriter.
func (a *Agent) Backend() backend.Backend {
	return a.backend
}

// Start runs app on a new goroutine, beginning with the initial screen,
// and returns once the terminal is initialized and sized.
func (a *Agent) Start(ctx context.Context, app *runtime.App, initial runtime.ScreenKey) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return ErrRunning
	}
	a.started = true
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	go func() {
		err := app.Run(runCtx, initial)
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
		close(a.done)
	}()

	select {
	case <-a.ready:
		return nil
	case <-a.done:
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.err != nil {
			return fmt.Errorf("app exited during start: %w", a.err)
		}
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resize changes the terminal size and delivers a resize event.
func (a *Agent) Resize(width, height int) error {
	a.mu.Lock()
	a.width, a.height = width, height
	a.mu.Unlock()
	a.sim.SetSize(width, height)
	return a.sim.PostEvent(tc.NewEventResize(width, height))
}

// PressKey injects a single key press.
func (a *Agent) PressKey(key backend.Key, r rune, mods backend.ModMask) {
	a.sim.InjectKey(key, r, mods)
}

// Type injects each rune of text as a key press.
func (a *Agent) Type(text string) {
	for _, r := range text {
		a.sim.InjectKey(tc.KeyRune, r, tc.ModNone)
	}
}

// CaptureText returns the screen contents, one line per row, with
// trailing spaces removed.
func (a *Agent) CaptureText() string {
	return strings.Join(a.lines(), "\n")
}

// ContainsText checks if the given text appears on one screen row.
func (a *Agent) ContainsText(text string) bool {
	x, _ := a.FindText(text)
	return x >= 0
}

// FindText returns the cell position of text on screen, or (-1, -1).
func (a *Agent) FindText(text string) (x, y int) {
	for row, line := range a.lines() {
		if i := strings.Index(line, text); i >= 0 {
			return len([]rune(line[:i])), row
		}
	}
	return -1, -1
}

// WaitForText blocks until text is on screen or timeout elapses.
func (a *Agent) WaitForText(text string, timeout time.Duration) error {
	err := a.waitUntil(context.Background(), timeout, func() bool { return a.ContainsText(text) })
	if err != nil {
		return fmt.Errorf("waiting for %q: %w\n%s", text, err, a.CaptureText())
	}
	return nil
}

// Wait blocks until the app returns, or until timeout elapses.
func (a *Agent) Wait(timeout time.Duration) error {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return ErrNotRunning
	}
	select {
	case <-a.done:
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// Stop cancels the app's context and waits for it to return.
func (a *Agent) Stop(timeout time.Duration) error {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel == nil {
		return ErrNotRunning
	}
	cancel()
	return a.Wait(timeout)
}

// Snapshot captures the last shown frame.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	lines, width := a.frame, a.frameWidth
	a.mu.Unlock()
	return Snapshot{
		Timestamp: time.Now(),
		Width:     width,
		Height:    len(lines),
		Lines:     lines,
		Text:      strings.Join(lines, "\n"),
	}
}

// lines returns the last shown frame. Frames are replaced, never mutated,
// so the slice is safe to read after the lock is released.
func (a *Agent) lines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

// screenLines renders the simulation's cells as text. It must run on the
// goroutine that draws to the screen.
func screenLines(sim tc.SimulationScreen) ([]string, int) {
	cells, w, h := sim.GetContents()
	if w <= 0 {
		return nil, 0
	}
	out := make([]string, 0, h)
	var sb strings.Builder
	for y := 0; y < h; y++ {
		sb.Reset()
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(string(runes))
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return out, w
}

func (a *Agent) waitUntil(ctx context.Context, timeout time.Duration, ok func() bool) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		if ok() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			if ok() {
				return nil
			}
			return ErrNotRunning
		case <-deadline.C:
			return ErrTimeout
		case <-ticker.C:
		}
	}
}

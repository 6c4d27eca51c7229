package runtime

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/odvcencio/screenrun/backend"
)

func newTestApp(be *fakeBackend, screens map[ScreenKey]Screen) (*App, *fakeClock) {
	app := NewApp(AppConfig{
		Backend:  be,
		Sink:     &bytes.Buffer{},
		TickRate: time.Millisecond,
		Screens:  screens,
	})
	clock := newFakeClock()
	app.now = clock.Now
	app.sleep = clock.Sleep
	return app, clock
}

func TestNewApp_Defaults(t *testing.T) {
	app := NewApp(AppConfig{})
	if app.TickRate() != time.Second/DefaultFramesPerSecond {
		t.Fatalf("default tick rate = %v", app.TickRate())
	}
	if app.EventPollRate() != app.TickRate()/2 {
		t.Fatalf("default poll rate = %v", app.EventPollRate())
	}

	app = NewApp(AppConfig{FramesPerSecond: 10})
	if app.TickRate() != 100*time.Millisecond {
		t.Fatalf("10 fps tick rate = %v", app.TickRate())
	}

	app = NewApp(AppConfig{TickRate: time.Second, FramesPerSecond: 10, EventPollRate: time.Millisecond})
	if app.TickRate() != time.Second || app.EventPollRate() != time.Millisecond {
		t.Fatalf("explicit rates ignored: %v %v", app.TickRate(), app.EventPollRate())
	}
}

func TestApp_RegisterReplacementIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	app := NewApp(AppConfig{Logger: zap.New(core)})
	second := &scriptScreen{name: "second"}
	app.Register("main", &scriptScreen{name: "first"})
	app.Register("main", second)

	if logs.FilterMessage("screen registration replaced").Len() != 1 {
		t.Fatalf("expected one replacement warning, got %v", logs.All())
	}
	if err := app.ExecuteCommand(SwitchScreen{Key: "main"}); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if app.screens.activeScreen() != second {
		t.Fatal("last registration should win")
	}
}

func TestApp_SwitchToRegisteredType(t *testing.T) {
	app := NewApp(AppConfig{})
	app.RegisterScreen(&namedScreen{})
	app.Register("other", &scriptScreen{})

	if err := app.ExecuteCommand(SwitchTo[*namedScreen]()); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if app.screens.active == nil || app.screens.active.key != KeyOf(namedScreen{}) {
		t.Fatalf("expected namedScreen to be active, got %+v", app.screens.active)
	}
	if err := app.ExecuteCommand(SwitchTo[*scriptScreen]()); err == nil {
		t.Fatal("expected an error for an unregistered type")
	}
}

func TestApp_EmptyBatchIsNoop(t *testing.T) {
	app, _ := newTestApp(newFakeBackend(1, 1), nil)
	if err := app.ExecuteCommand(Batch{}); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := app.ExecuteCommand(nil); err != nil {
		t.Fatalf("nil command: %v", err)
	}
	if app.exiting || app.screens.active != nil {
		t.Fatal("empty batch must not change state")
	}
}

func TestApp_BatchStopsAtFirstFault(t *testing.T) {
	a := &scriptScreen{name: "a"}
	app, _ := newTestApp(newFakeBackend(1, 1), map[ScreenKey]Screen{"a": a})

	err := app.ExecuteCommand(BatchOf(SwitchScreen{Key: "a"}, SwitchScreen{Key: "missing"}, Quit{}))
	var missing *MissingScreenError
	if !errors.As(err, &missing) || missing.Key != "missing" {
		t.Fatalf("expected missing screen error, got %v", err)
	}
	if app.screens.activeScreen() != a {
		t.Fatal("commands before the fault should stay applied")
	}
	if app.exiting {
		t.Fatal("commands after the fault must not run")
	}
}

func TestBatchOf_SkipsNil(t *testing.T) {
	batch := BatchOf(nil, Quit{}, nil)
	if len(batch) != 1 {
		t.Fatalf("expected 1 command, got %d", len(batch))
	}
}

func TestApp_ControlWritesToSink(t *testing.T) {
	var sink bytes.Buffer
	app := NewApp(AppConfig{Sink: &sink})
	if err := app.ExecuteCommand(Batch{Control("one"), Control([]byte("two"))}); err != nil {
		t.Fatalf("control: %v", err)
	}
	if sink.String() != "onetwo" {
		t.Fatalf("sink = %q", sink.String())
	}
}

func TestApp_ControlWriteFailure(t *testing.T) {
	boom := errors.New("closed")
	app := NewApp(AppConfig{Sink: errWriter{err: boom}})
	err := app.ExecuteCommand(ClearScreen())
	var ctlErr *TerminalControlError
	if !errors.As(err, &ctlErr) {
		t.Fatalf("expected TerminalControlError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("TerminalControlError should unwrap to the write error")
	}
}

func TestApp_RawMode(t *testing.T) {
	be := newFakeBackend(1, 1)
	app := NewApp(AppConfig{Backend: be})
	if err := app.ExecuteCommand(Batch{EnableRawMode{}, DisableRawMode{}, DisableRawMode{}}); err != nil {
		t.Fatalf("raw mode: %v", err)
	}
	if be.rawEnabled != 1 || be.rawDisabled != 2 {
		t.Fatalf("expected 1 enable and 2 disables, got %d/%d", be.rawEnabled, be.rawDisabled)
	}

	be.rawErr = errors.New("ioctl failed")
	var ctlErr *TerminalControlError
	if err := app.ExecuteCommand(EnableRawMode{}); !errors.As(err, &ctlErr) || ctlErr.Op != "enable raw mode" {
		t.Fatalf("expected enable raw mode error, got %v", err)
	}

	bare := NewApp(AppConfig{})
	if err := bare.ExecuteCommand(DisableRawMode{}); !errors.As(err, &ctlErr) {
		t.Fatalf("expected error without a raw mode controller, got %v", err)
	}
}

type customCommand struct{ id int }

func (customCommand) Command() {}

func TestApp_CommandHandler(t *testing.T) {
	var got []Command
	app := NewApp(AppConfig{CommandHandler: func(cmd Command) error {
		got = append(got, cmd)
		return nil
	}})
	if err := app.ExecuteCommand(Batch{customCommand{id: 1}, Quit{}, customCommand{id: 2}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(got) != 2 || got[0] != (customCommand{id: 1}) || got[1] != (customCommand{id: 2}) {
		t.Fatalf("handler saw %v", got)
	}
	if !app.exiting {
		t.Fatal("Quit should still be handled by the runtime")
	}

	unhandled := NewApp(AppConfig{})
	if err := unhandled.ExecuteCommand(customCommand{}); err != nil {
		t.Fatalf("unknown commands without a handler should be ignored, got %v", err)
	}
}

func TestApp_RunRequiresBackend(t *testing.T) {
	if err := NewApp(AppConfig{}).Run(context.Background(), "x"); err == nil {
		t.Fatal("expected an error without a backend")
	}
}

func TestApp_RunInitFailure(t *testing.T) {
	be := newFakeBackend(1, 1)
	be.initErr = errors.New("no tty")
	app, _ := newTestApp(be, nil)
	if err := app.Run(context.Background(), "x"); !errors.Is(err, be.initErr) {
		t.Fatalf("expected init error, got %v", err)
	}
}

func TestApp_RunMissingInitialScreen(t *testing.T) {
	be := newFakeBackend(4, 1)
	var sink bytes.Buffer
	app, _ := newTestApp(be, nil)
	app.sink = &sink
	app.onStartup = func() Command { return Control("start") }

	err := app.Run(context.Background(), "nowhere")
	var missing *MissingScreenError
	if !errors.As(err, &missing) || missing.Key != "nowhere" {
		t.Fatalf("expected missing screen, got %v", err)
	}
	if sink.String() != "start" {
		t.Fatal("startup command should run before the initial screen is activated")
	}
	if be.finis != 1 {
		t.Fatal("backend should be finalized")
	}
}

func TestApp_OneTickPerEmptyFrame(t *testing.T) {
	screen := &scriptScreen{onUpdate: quitAfter(3)}
	app, _ := newTestApp(newFakeBackend(4, 1), map[ScreenKey]Screen{"main": screen})

	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(screen.msgs) != 3 || screen.received(isTick) != 3 {
		t.Fatalf("expected exactly 3 ticks, got %#v", screen.msgs)
	}
	if screen.renders != 3 {
		t.Fatalf("expected one render per frame, got %d", screen.renders)
	}
}

func TestApp_QuitRendersOnceMoreThenNotifiesRegistry(t *testing.T) {
	a := &scriptScreen{name: "a"}
	b := &scriptScreen{name: "b"}
	c := &scriptScreen{name: "c"}
	a.onUpdate = func(*scriptScreen, Message) Command { return SwitchScreen{Key: "b"} }
	b.onUpdate = func(*scriptScreen, Message) Command { return Quit{} }

	var sink bytes.Buffer
	app, _ := newTestApp(newFakeBackend(4, 1), map[ScreenKey]Screen{"a": a, "b": b, "c": c})
	app.sink = &sink
	app.onShutdown = func() Command { return Control("bye") }

	if err := app.Run(context.Background(), "a"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.renders != 0 || b.renders != 2 {
		t.Fatalf("expected renders a=0 b=2, got a=%d b=%d", a.renders, b.renders)
	}
	if len(b.msgs) != 1 {
		t.Fatalf("expected no updates after Quit, got %d", len(b.msgs))
	}
	if a.received(isShutdown) != 0 || b.received(isShutdown) != 0 {
		t.Fatal("active and previous screens are not notified")
	}
	if c.received(isShutdown) != 1 {
		t.Fatal("registered screen should receive Shutdown")
	}
	if sink.String() != "bye" {
		t.Fatalf("expected shutdown command output, got %q", sink.String())
	}
}

func TestApp_DeliversKeyPresses(t *testing.T) {
	be := newFakeBackend(4, 1)
	be.events <- backend.KeyEvent{Rune: 'x', Kind: backend.KeyRelease}
	be.events <- backend.KeyEvent{Rune: 'q', Kind: backend.KeyPress}

	screen := &scriptScreen{}
	screen.onUpdate = func(s *scriptScreen, msg Message) Command {
		if _, ok := msg.(KeyMsg); ok || len(s.msgs) > 5000 {
			return Quit{}
		}
		return nil
	}
	app := NewApp(AppConfig{
		Backend:       be,
		Sink:          &bytes.Buffer{},
		TickRate:      time.Millisecond,
		EventPollRate: time.Millisecond,
		Screens:       map[ScreenKey]Screen{"main": screen},
	})

	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	keys := 0
	for _, msg := range screen.msgs {
		if key, ok := msg.(KeyMsg); ok {
			keys++
			if key.Rune != 'q' {
				t.Fatalf("unexpected key %q", key.Rune)
			}
		}
	}
	if keys != 1 {
		t.Fatalf("expected exactly one key press, got %d", keys)
	}
}

func TestApp_DisconnectAbortsWithoutShutdown(t *testing.T) {
	be := newFakeBackend(4, 1)
	close(be.events)
	other := &scriptScreen{}
	shutdownRan := false
	app, _ := newTestApp(be, map[ScreenKey]Screen{"main": &scriptScreen{}, "other": other})
	app.onShutdown = func() Command {
		shutdownRan = true
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), "main") }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrEventSourceDisconnected) {
			t.Fatalf("expected ErrEventSourceDisconnected, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not notice the disconnect")
	}
	if other.received(isShutdown) != 0 || shutdownRan {
		t.Fatal("a disconnect must bypass shutdown notifications")
	}
}

func TestApp_ContextCancelShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	main := &scriptScreen{}
	main.onUpdate = func(s *scriptScreen, msg Message) Command {
		if len(s.msgs) == 2 {
			cancel()
		}
		return nil
	}
	other := &scriptScreen{}
	app, _ := newTestApp(newFakeBackend(4, 1), map[ScreenKey]Screen{"main": main, "other": other})

	if err := app.Run(ctx, "main"); err != nil {
		t.Fatalf("cancelled run should shut down cleanly, got %v", err)
	}
	if len(main.msgs) != 2 {
		t.Fatalf("expected the loop to stop after cancel, got %d updates", len(main.msgs))
	}
	if other.received(isShutdown) != 1 {
		t.Fatal("registered screens should be notified on cancel")
	}
}

func TestApp_PacingWithoutDrift(t *testing.T) {
	var starts []time.Time
	screen := &scriptScreen{onUpdate: quitAfter(3)}
	app := NewApp(AppConfig{
		Backend:  newFakeBackend(4, 1),
		Sink:     &bytes.Buffer{},
		TickRate: 100 * time.Millisecond,
		Screens:  map[ScreenKey]Screen{"main": screen},
		RenderObserver: RenderObserverFunc(func(stats RenderStats) {
			starts = append(starts, stats.Started)
		}),
	})
	clock := newFakeClock()
	app.now = clock.Now
	app.sleep = clock.Sleep

	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(clock.sleeps) != 2 {
		t.Fatalf("expected no sleep before the first frame and one per later frame, got %v", clock.sleeps)
	}
	for _, d := range clock.sleeps {
		if d != 100*time.Millisecond {
			t.Fatalf("expected 100ms sleeps, got %v", clock.sleeps)
		}
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap != 100*time.Millisecond {
			t.Fatalf("frame %d started %v after the previous one", i, gap)
		}
	}
}

func TestApp_PacingSubtractsWorkTime(t *testing.T) {
	clock := newFakeClock()
	screen := &scriptScreen{}
	screen.onUpdate = func(s *scriptScreen, msg Message) Command {
		clock.now = clock.now.Add(30 * time.Millisecond)
		if len(s.msgs) == 3 {
			return Quit{}
		}
		return nil
	}
	app := NewApp(AppConfig{
		Backend:  newFakeBackend(4, 1),
		Sink:     &bytes.Buffer{},
		TickRate: 100 * time.Millisecond,
		Screens:  map[ScreenKey]Screen{"main": screen},
	})
	app.now = clock.Now
	app.sleep = clock.Sleep

	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, d := range clock.sleeps {
		if d != 70*time.Millisecond {
			t.Fatalf("expected sleeps to absorb the 30ms of work, got %v", clock.sleeps)
		}
	}
}

func TestApp_PacingRealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("uses wall-clock sleeps")
	}
	var starts []time.Time
	app := NewApp(AppConfig{
		Backend:  newFakeBackend(4, 1),
		Sink:     &bytes.Buffer{},
		TickRate: 100 * time.Millisecond,
		Screens:  map[ScreenKey]Screen{"main": &scriptScreen{onUpdate: quitAfter(3)}},
		RenderObserver: RenderObserverFunc(func(stats RenderStats) {
			starts = append(starts, stats.Started)
		}),
	})
	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(starts) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		if gap < 95*time.Millisecond || gap > 250*time.Millisecond {
			t.Fatalf("frame spacing %v is outside 100ms plus jitter", gap)
		}
	}
}

func TestApp_RenderFlushesOnlyChanges(t *testing.T) {
	be := newFakeBackend(6, 2)
	var stats []RenderStats
	screen := &scriptScreen{text: "hello"}
	screen.onUpdate = func(s *scriptScreen, msg Message) Command {
		switch len(s.msgs) {
		case 3:
			s.text = "help"
		case 4:
			be.width = 8
		case 5:
			return Quit{}
		}
		return nil
	}
	app, _ := newTestApp(be, map[ScreenKey]Screen{"main": screen})
	app.renderObserver = RenderObserverFunc(func(s RenderStats) { stats = append(stats, s) })

	if err := app.Run(context.Background(), "main"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(stats) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(stats))
	}
	if !stats[0].FullRedraw || stats[0].FlushedCells != 12 {
		t.Fatalf("first frame should be a full redraw, got %+v", stats[0])
	}
	if stats[1].FlushedCells != 0 {
		t.Fatalf("unchanged frame flushed %d cells", stats[1].FlushedCells)
	}
	if stats[2].FlushedCells != 2 {
		t.Fatalf("hello -> help should flush 2 cells, got %d", stats[2].FlushedCells)
	}
	if !stats[3].FullRedraw || stats[3].TotalCells != 16 {
		t.Fatalf("resize should force a full redraw, got %+v", stats[3])
	}
	if got := strings.TrimRight(be.row(0), " "); got != "help" {
		t.Fatalf("backend row 0 = %q", got)
	}
	if be.shows != 5 {
		t.Fatalf("expected one Show per frame, got %d", be.shows)
	}
}

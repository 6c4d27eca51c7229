package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/odvcencio/screenrun/backend"
)

// DefaultFramesPerSecond is the render cadence when none is configured.
const DefaultFramesPerSecond = 30

var errRawModeUnsupported = errors.New("backend cannot switch raw mode")

// CommandHandler interprets commands the runtime does not know about.
// A returned error aborts the run.
type CommandHandler func(cmd Command) error

// AppConfig configures a runtime App.
type AppConfig struct {
	Backend backend.Backend
	// Events defaults to Backend when it implements backend.EventSource.
	Events backend.EventSource
	// RawMode defaults to Backend when it implements backend.RawModeController.
	RawMode backend.RawModeController
	// Sink receives control sequences. Defaults to os.Stdout.
	Sink io.Writer

	// TickRate is the time between frames. When zero, FramesPerSecond is
	// used, then DefaultFramesPerSecond.
	TickRate        time.Duration
	FramesPerSecond int
	// EventPollRate bounds each wait for input. Defaults to half the tick rate.
	EventPollRate time.Duration
	MessageBuffer int

	Screens    map[ScreenKey]Screen
	OnStartup  func() Command
	OnShutdown func() Command

	CommandHandler CommandHandler
	RenderObserver RenderObserver
	Logger         *zap.Logger
}

// App runs one active screen at a time against a terminal backend.
type App struct {
	backend        backend.Backend
	events         backend.EventSource
	rawMode        backend.RawModeController
	sink           io.Writer
	tickRate       time.Duration
	pollRate       time.Duration
	messageBuffer  int
	screens        *registry
	onStartup      func() Command
	onShutdown     func() Command
	commandHandler CommandHandler
	renderObserver RenderObserver
	logger         *zap.Logger

	buffer      *Buffer
	front       []Cell
	lastTick    time.Time
	exiting     bool
	renderFrame int64

	now   func() time.Time
	sleep func(time.Duration)
}

// NewApp creates a new App from config.
func NewApp(cfg AppConfig) *App {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		fps := cfg.FramesPerSecond
		if fps <= 0 {
			fps = DefaultFramesPerSecond
		}
		tickRate = time.Second / time.Duration(fps)
	}
	pollRate := cfg.EventPollRate
	if pollRate <= 0 {
		pollRate = tickRate / 2
	}
	events := cfg.Events
	if events == nil {
		events, _ = cfg.Backend.(backend.EventSource)
	}
	rawMode := cfg.RawMode
	if rawMode == nil {
		rawMode, _ = cfg.Backend.(backend.RawModeController)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		backend:        cfg.Backend,
		events:         events,
		rawMode:        rawMode,
		sink:           sink,
		tickRate:       tickRate,
		pollRate:       pollRate,
		messageBuffer:  cfg.MessageBuffer,
		screens:        newRegistry(),
		onStartup:      cfg.OnStartup,
		onShutdown:     cfg.OnShutdown,
		commandHandler: cfg.CommandHandler,
		renderObserver: cfg.RenderObserver,
		logger:         logger,
		now:            time.Now,
		sleep:          time.Sleep,
	}
	for key, screen := range cfg.Screens {
		app.Register(key, screen)
	}
	return app
}

// TickRate returns the time between frames.
func (a *App) TickRate() time.Duration {
	return a.tickRate
}

// EventPollRate returns the listener's poll interval.
func (a *App) EventPollRate() time.Duration {
	return a.pollRate
}

// Register adds screen under key. A later registration under the same key
// replaces the earlier one.
func (a *App) Register(key ScreenKey, screen Screen) *App {
	if screen == nil {
		return a
	}
	if a.screens.register(key, screen) {
		a.logger.Warn("screen registration replaced", zap.String("screen", string(key)))
	}
	return a
}

// RegisterScreen adds screen under the key derived from its type.
func (a *App) RegisterScreen(screen Screen) *App {
	return a.Register(KeyOf(screen), screen)
}

// Run activates the initial screen and runs the frame loop until a Quit
// command, context cancellation, or a fault. It blocks the calling goroutine.
//
// Each frame waits out the rest of the tick interval, takes at most one
// pending input event (or a TickMsg when there is none), hands it to the
// active screen, executes the returned command, and renders.
func (a *App) Run(ctx context.Context, initial ScreenKey) error {
	if a.backend == nil {
		return errors.New("backend is required")
	}
	if a.events == nil {
		return errors.New("event source is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := a.logger.With(zap.Stringer("run_id", ulid.Make()))

	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init backend: %w", err)
	}
	defer a.backend.Fini()

	a.backend.HideCursor()
	w, h := a.backend.Size()
	a.buffer = NewBuffer(w, h)
	a.front = nil
	a.lastTick = time.Time{}
	a.exiting = false

	if a.onStartup != nil {
		if err := a.execute(a.onStartup()); err != nil {
			log.Error("startup command failed", zap.Error(err))
			return err
		}
	}
	if err := a.screens.activate(initial); err != nil {
		return err
	}

	listener := Listen(a.events, a.pollRate, a.messageBuffer)
	defer listener.Close()

	log.Info("app started",
		zap.String("screen", string(initial)),
		zap.Duration("tick_rate", a.tickRate),
		zap.Duration("poll_rate", a.pollRate),
	)

	for {
		if !a.exiting && ctx.Err() != nil {
			log.Debug("context done, shutting down", zap.Error(ctx.Err()))
			a.exiting = true
		}
		if a.exiting {
			break
		}

		a.pace()

		msg, err := a.nextMessage(listener)
		if err != nil {
			log.Error("event source disconnected", zap.NamedError("listener_error", listener.Err()))
			return err
		}
		if cmd := a.screens.activeScreen().Update(msg); cmd != nil {
			if err := a.execute(cmd); err != nil {
				log.Error("command failed", zap.Error(err))
				return err
			}
		}
		a.render()
	}

	a.screens.broadcast(ShutdownMsg{})
	if a.onShutdown != nil {
		if err := a.execute(a.onShutdown()); err != nil {
			log.Error("shutdown command failed", zap.Error(err))
			return err
		}
	}
	listener.Stop()
	log.Info("app stopped", zap.Int64("frames", a.renderFrame))
	return nil
}

// pace sleeps out the remainder of the tick interval measured from the
// previous frame, then stamps the new frame.
func (a *App) pace() {
	if !a.lastTick.IsZero() {
		if wait := a.tickRate - a.now().Sub(a.lastTick); wait > 0 {
			a.sleep(wait)
		}
	}
	a.lastTick = a.now()
}

// nextMessage never blocks: an empty channel yields a TickMsg.
func (a *App) nextMessage(l *Listener) (Message, error) {
	select {
	case ev, ok := <-l.Events():
		if !ok {
			return nil, ErrEventSourceDisconnected
		}
		if msg := messageFromEvent(ev); msg != nil {
			return msg, nil
		}
	default:
	}
	return TickMsg{Time: a.lastTick}, nil
}

// execute interprets one command.
func (a *App) execute(cmd Command) error {
	switch c := cmd.(type) {
	case nil:
		return nil
	case Batch:
		for _, sub := range c {
			if err := a.execute(sub); err != nil {
				return err
			}
		}
		return nil
	case SwitchScreen:
		if err := a.screens.activate(c.Key); err != nil {
			return err
		}
		a.logger.Debug("screen activated", zap.String("screen", string(c.Key)))
		return nil
	case EnableRawMode:
		if a.rawMode == nil {
			return &TerminalControlError{Op: "enable raw mode", Err: errRawModeUnsupported}
		}
		if err := a.rawMode.EnableRawMode(); err != nil {
			return &TerminalControlError{Op: "enable raw mode", Err: err}
		}
		return nil
	case DisableRawMode:
		if a.rawMode == nil {
			return &TerminalControlError{Op: "disable raw mode", Err: errRawModeUnsupported}
		}
		if err := a.rawMode.DisableRawMode(); err != nil {
			return &TerminalControlError{Op: "disable raw mode", Err: err}
		}
		return nil
	case ControlCommand:
		if _, err := c.WriteTo(a.sink); err != nil {
			return &TerminalControlError{Op: "write control sequence", Err: err}
		}
		if f, ok := a.sink.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return &TerminalControlError{Op: "flush control sequence", Err: err}
			}
		}
		return nil
	case Quit:
		a.exiting = true
		return nil
	default:
		if a.commandHandler != nil {
			return a.commandHandler(cmd)
		}
		a.logger.Debug("unhandled command", zap.String("command", fmt.Sprintf("%T", cmd)))
		return nil
	}
}

// ExecuteCommand runs a command through the interpreter outside the frame
// loop, for tests and tooling that drive an App by hand.
func (a *App) ExecuteCommand(cmd Command) error {
	return a.execute(cmd)
}

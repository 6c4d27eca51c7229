package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/odvcencio/screenrun/backend"
	"github.com/odvcencio/screenrun/backend/tcell"
	"github.com/odvcencio/screenrun/internal/config"
	"github.com/odvcencio/screenrun/internal/logging"
	"github.com/odvcencio/screenrun/runtime"
)

var opts struct {
	configPath string
	fps        int
	pollRate   time.Duration
	logLevel   string
	logFile    string
	screen     string
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, err
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FramesPerSecond = opts.fps
	}
	if flags.Changed("poll") {
		cfg.EventPollRate = config.Duration(opts.pollRate)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("screen") {
		cfg.InitialScreen = opts.screen
	}
	return cfg, path, cfg.Validate()
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("screenrun-demo needs an interactive terminal")
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	be, err := tcell.New()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(be, cfg, logger, os.Stdout)
	if err := app.Run(ctx, runtime.ScreenKey(cfg.InitialScreen)); err != nil {
		return fmt.Errorf("demo stopped: %w", err)
	}
	return nil
}

// newApp wires the demo screens onto be.
func newApp(be backend.Backend, cfg config.Config, logger *zap.Logger, sink io.Writer) *runtime.App {
	title := cfg.Title
	return runtime.NewApp(runtime.AppConfig{
		Backend:         be,
		Sink:            sink,
		FramesPerSecond: cfg.FramesPerSecond,
		EventPollRate:   time.Duration(cfg.EventPollRate),
		MessageBuffer:   cfg.MessageBuffer,
		Logger:          logger,
		Screens: map[runtime.ScreenKey]runtime.Screen{
			keyMenu:    newMenuScreen(),
			keyCounter: &counterScreen{logger: logger},
			keyHelp:    newHelpScreen(),
		},
		OnStartup: func() runtime.Command {
			return runtime.BatchOf(runtime.EnableRawMode{}, runtime.SetTitle(title))
		},
		OnShutdown: func() runtime.Command {
			return runtime.BatchOf(runtime.SetTitle(""), runtime.ShowCursor())
		},
		RenderObserver: runtime.RenderObserverFunc(func(stats runtime.RenderStats) {
			if stats.FullRedraw {
				logger.Debug("full redraw",
					zap.Int64("frame", stats.Frame),
					zap.Int("cells", stats.TotalCells),
					zap.Duration("render", stats.RenderDuration),
				)
			}
		}),
	})
}

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", path)
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := opts.configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

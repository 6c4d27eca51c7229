// Package logging builds the zap logger used by screenrun programs.
//
// The terminal belongs to the running screen, so log output goes to a file
// rather than stdout. Logging is silent unless a level is configured.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar is consulted when no level is passed explicitly.
// Valid values: "debug", "info", "warn", "error".
const LogLevelEnvVar = "SCREENRUN_LOG_LEVEL"

// DefaultLogFile is used when a level is set but no path is given.
const DefaultLogFile = "screenrun.log"

// Options selects the level and destination.
type Options struct {
	Level string
	// Path is the log file. "stderr" is accepted for debugging outside the UI.
	Path string
}

// New returns a logger for opts. An empty level (after the env fallback)
// yields a Nop logger.
func New(opts Options) (*zap.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if level == "" {
		level = strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnvVar)))
	}
	if level == "" {
		return zap.NewNop(), nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = DefaultLogFile
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

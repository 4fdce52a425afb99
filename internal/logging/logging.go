// Package logging configures structured logging for the prefpane host
// processes. All output goes through zerolog; components derive child
// loggers so every line carries its origin.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger.
var Logger zerolog.Logger

// Level aliases zerolog's level type.
type Level = zerolog.Level

// Levels accepted by Config and ParseLevel.
const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit.
	Level Level

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer

	// Pretty switches to human-readable console output.
	Pretty bool

	// TimeFormat for timestamps. Defaults to RFC3339.
	TimeFormat string
}

// DefaultConfig returns the default configuration: info level, JSON
// lines on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// Init replaces the root logger with one built from cfg.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var out io.Writer = cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	Logger = zerolog.New(out).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a Level, case-insensitively.
// Unrecognized names fall back to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Component derives a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Debug starts a debug-level event on the root logger.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts an info-level event on the root logger.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a warn-level event on the root logger.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts an error-level event on the root logger.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal starts a fatal-level event. Completing it exits the process.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

func init() {
	Init(DefaultConfig())
}

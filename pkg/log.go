package pkg

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xyproto/env/v2"
)

// Component identifies a subsystem for log filtering.
type Component string

// rsflash component identifiers.
const (
	ComponentHost      Component = "rsflash"
	ComponentAgent     Component = "agent"
	ComponentProbe     Component = "probe"
	ComponentImage     Component = "image"
	ComponentHandshake Component = "handshake"
	ComponentTransfer  Component = "transfer"
	ComponentRTT       Component = "rtt"
)

// LogFormat specifies the output format for logging.
type LogFormat int

// Log format options.
const (
	LogFormatText LogFormat = iota // Text format (default)
	LogFormatJSON                  // JSON format
)

// EnvLogFilter is the environment variable that overrides the default log
// level for all components, per the host CLI's startup contract.
const EnvLogFilter = "RSFLASH_LOG"

var (
	// DefaultLogger is the default logger used by the host and agent code.
	DefaultLogger *slog.Logger

	// componentLevels holds a per-component minimum level. A component
	// absent from this map falls back to logLevel.
	componentLevels = map[Component]slog.Level{
		ComponentHost:      slog.LevelInfo,
		ComponentAgent:     slog.LevelInfo,
		ComponentProbe:     slog.LevelInfo,
		ComponentImage:     slog.LevelWarn,
		ComponentHandshake: slog.LevelWarn,
		ComponentTransfer:  slog.LevelWarn,
		ComponentRTT:       slog.LevelWarn,
	}

	// logLevel controls the minimum level for components not named above.
	logLevel = new(slog.LevelVar)

	// logMutex protects logger configuration.
	logMutex sync.RWMutex
)

func init() {
	logLevel.Set(slog.LevelWarn)
	// The handler itself does not filter: componentLevel decides per
	// component in the Log* helpers below.
	DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// SetLogLevel sets the minimum log level for components without an explicit
// override (see ApplyLogEnv).
func SetLogLevel(level slog.Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logLevel.Set(level)
}

// GetLogLevel returns the current default minimum log level.
func GetLogLevel() slog.Level {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logLevel.Level()
}

// SetLogger replaces the default logger with a custom logger.
func SetLogger(logger *slog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	DefaultLogger = logger
}

// SetLogFormat configures the default logger to use the specified format.
// The logger writes to os.Stderr and uses the current log level.
func SetLogFormat(format LogFormat) {
	logMutex.Lock()
	defer logMutex.Unlock()
	opts := &slog.HandlerOptions{Level: logLevel}
	switch format {
	case LogFormatJSON:
		DefaultLogger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	default:
		DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
}

// NewLogger creates a new text logger writing to the given writer.
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: logLevel}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSONLogger creates a new JSON logger writing to the given writer.
func NewJSONLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: logLevel}
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ApplyLogEnv reads RSFLASH_LOG and, if set, overrides the default level
// for every component (the per-component defaults in componentLevels are
// only used when the variable is unset). It returns a UsageError if the
// variable is set to a value that is not valid UTF-8, per §6 of the spec.
//
// Accepted values mirror the slog level names: "debug", "info", "warn",
// "error" (case-insensitive). Anything else is treated as "warn" -- an
// invalid but well-formed value degrades to the conservative default
// rather than failing startup, since only invalid encoding is fatal.
func ApplyLogEnv() error {
	raw, ok := os.LookupEnv(EnvLogFilter)
	if !ok {
		return nil
	}
	if !utf8.ValidString(raw) {
		return &UsageError{
			Op:  "parse RSFLASH_LOG",
			Err: fmt.Errorf("%s is not valid UTF-8", EnvLogFilter),
		}
	}

	level := env.Str(EnvLogFilter, "warn")
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "info":
		lv = slog.LevelInfo
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelWarn
	}

	logMutex.Lock()
	for c := range componentLevels {
		componentLevels[c] = lv
	}
	logMutex.Unlock()
	SetLogLevel(lv)
	return nil
}

func componentLevel(c Component) slog.Level {
	logMutex.RLock()
	defer logMutex.RUnlock()
	if lv, ok := componentLevels[c]; ok {
		return lv
	}
	return logLevel.Level()
}

// LogDebug logs a debug message with the given component.
func LogDebug(component Component, msg string, args ...any) {
	if componentLevel(component) > slog.LevelDebug {
		return
	}
	logMutex.RLock()
	logger := DefaultLogger
	logMutex.RUnlock()
	logger.Debug(msg, append([]any{"component", string(component)}, args...)...)
}

// LogInfo logs an info message with the given component.
func LogInfo(component Component, msg string, args ...any) {
	if componentLevel(component) > slog.LevelInfo {
		return
	}
	logMutex.RLock()
	logger := DefaultLogger
	logMutex.RUnlock()
	logger.Info(msg, append([]any{"component", string(component)}, args...)...)
}

// LogWarn logs a warning message with the given component.
func LogWarn(component Component, msg string, args ...any) {
	if componentLevel(component) > slog.LevelWarn {
		return
	}
	logMutex.RLock()
	logger := DefaultLogger
	logMutex.RUnlock()
	logger.Warn(msg, append([]any{"component", string(component)}, args...)...)
}

// LogError logs an error message with the given component.
func LogError(component Component, msg string, args ...any) {
	logMutex.RLock()
	logger := DefaultLogger
	logMutex.RUnlock()
	logger.Error(msg, append([]any{"component", string(component)}, args...)...)
}

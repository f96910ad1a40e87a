package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// exit is swapped out in tests.
var exit = os.Exit

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

// Setup replaces the process logger. level is one of debug, info, warn, error;
// format is text or json.
func Setup(w io.Writer, level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format: %s", format)
	}

	current.Store(slog.New(h))
	return nil
}

// Get returns the process logger for callers that want structured attributes.
func Get() *slog.Logger {
	return current.Load()
}

func Debugf(format string, args ...any) {
	Get().Debug(fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	Get().Info(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	Get().Warn(fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	Get().Error(fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...any) {
	Get().Error(fmt.Sprintf(format, args...))
	exit(1)
}

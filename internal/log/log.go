// Package log configures the process-wide structured logger. Output goes to
// stderr so report formats on stdout stay machine-readable.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Setup replaces the process logger. verbose enables debug records, json
// switches to JSON output for log shippers.
func Setup(verbose, json bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
}

// SetOutput redirects log output; tests use it to capture records.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = slog.New(slog.NewTextHandler(w, nil))
	mu.Unlock()
}

func get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	once   sync.Once
	mu     sync.Mutex
	logger *slog.Logger
	output io.Writer = os.Stderr
)

// Setup initializes the global logger.
// logic: default to WARN. If level is invalid, fallback to WARN.
// Output goes to stderr; stdout carries the rendered prompt.
func Setup(level string) {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		logger = newLogger(output, level)
		slog.SetDefault(logger)
	})
}

// SetOutput replaces the global logger with one writing to w at level.
// Intended for tests and for --log-level overrides after Setup.
func SetOutput(w io.Writer, level string) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	output = w
	logger = newLogger(w, level)
	slog.SetDefault(logger)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to WARN.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ValidLevel reports whether level names a supported level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func newLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Get returns the configured logger, or a default one if Setup hasn't been called.
func Get() *slog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		Setup("WARN")
		mu.Lock()
		l = logger
		mu.Unlock()
	}
	return l
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithRun returns a logger with the run_id field set.
func WithRun(id string) *slog.Logger {
	return Get().With(slog.String("run_id", id))
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

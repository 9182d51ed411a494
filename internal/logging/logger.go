// Package logging provides the best-effort diagnostic log shared by all
// warden hook invocations. It wraps log/slog to emit JSON lines into a
// single append-only hook.log under the workflows directory.
//
// Logging must never be the reason a hook fails: Open falls back to a
// no-op logger on any error, and writes are fire-and-forget.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Log levels supported by the logger.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger emits structured JSON log entries. It is safe for concurrent
// use, though hook processes are short-lived and rarely need that.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
	mu     sync.Mutex
	attrs  []slog.Attr
}

// Open creates a Logger appending to the hook log at logPath, rotating
// per the given config. On any failure it returns a no-op logger: a
// broken log file must not break enforcement.
func Open(logPath, level string, rotation RotationConfig) *Logger {
	w, err := NewRotatingWriter(logPath, rotation)
	if err != nil {
		return NopLogger()
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return &Logger{
		logger: slog.New(handler),
		closer: w,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithHook returns a child Logger tagging every entry with the hook
// event name ("stop-guard", "pre-task", ...).
func (l *Logger) WithHook(hook string) *Logger {
	return l.withAttr(slog.String("hook", hook))
}

// WithSession returns a child Logger tagging every entry with the
// session id.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.withAttr(slog.String("session_id", sessionID))
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	newAttrs := make([]slog.Attr, len(l.attrs)+1)
	copy(newAttrs, l.attrs)
	newAttrs[len(l.attrs)] = attr

	return &Logger{
		logger: l.logger,
		closer: l.closer,
		attrs:  newAttrs,
	}
}

// Debug logs at DEBUG level with alternating key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at INFO level with alternating key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at WARN level with alternating key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at ERROR level with alternating key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	allArgs := make([]any, 0, len(l.attrs)*2+len(args))
	for _, attr := range l.attrs {
		allArgs = append(allArgs, attr.Key, attr.Value.Any())
	}
	allArgs = append(allArgs, args...)

	l.logger.Log(context.Background(), level, msg, allArgs...)
}

// Close flushes and closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

// NopLogger returns a Logger that discards all output.
func NopLogger() *Logger {
	return &Logger{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

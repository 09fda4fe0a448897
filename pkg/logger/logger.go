package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelSuccess sits between Info and Warn. It marks completed business
// events such as a recorded sale.
const LevelSuccess = slog.Level(2)

// Rotation controls the audit log file rotation
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a structured logger writing text lines to stderr
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a structured logger writing text lines to w
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: replaceLevel,
	})
	return slog.New(h)
}

// NewAuditFile opens the append-only audit log at path.
// The returned closer flushes and closes the underlying file.
func NewAuditFile(path, level string, rot Rotation) (*slog.Logger, io.Closer) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		LocalTime:  true,
	}
	return NewWithWriter(lj, level), lj
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Success logs msg at LevelSuccess
func Success(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelSuccess, msg, args...)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "success":
		return LevelSuccess
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether ParseLevel knows level by name
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "success", "warn", "warning", "error":
		return true
	}
	return false
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelSuccess:
		a.Value = slog.StringValue("SUCCESS")
	case slog.LevelWarn:
		a.Value = slog.StringValue("WARNING")
	}
	return a
}

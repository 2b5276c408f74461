package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	log = slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// SetLevel replaces the default handler with one at the given level
func SetLevel(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	log = slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ParseLevel maps a config level name onto a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SetLogger replaces the package logger entirely, for hosts that own
// their logging pipeline
func SetLogger(l *slog.Logger) {
	if l != nil {
		log = l
	}
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

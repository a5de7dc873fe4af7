package config

import (
	"log/slog"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = enum[LogLevel]{
	values: map[string]LogLevel{
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	},
	fallback: LogLevelInfo,
}

// NormalizeLogLevel maps raw onto a known level, falling back to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevels.normalize(raw)
}

// SlogLevel converts l for use with a slog handler.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = enum[LogFormat]{
	values: map[string]LogFormat{
		"json": LogFormatJSON,
		"text": LogFormatText,
	},
	fallback: LogFormatText,
}

// NormalizeLogFormat maps raw onto a known format, falling back to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormats.normalize(raw)
}

// enum is a case-insensitive string-to-value table with a fallback.
type enum[T comparable] struct {
	values   map[string]T
	fallback T
}

func (e enum[T]) normalize(raw string) T {
	if v, ok := e.lookup(raw); ok {
		return v
	}
	return e.fallback
}

func (e enum[T]) lookup(raw string) (T, bool) {
	v, ok := e.values[strings.ToLower(strings.TrimSpace(raw))]
	return v, ok
}

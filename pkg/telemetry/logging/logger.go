package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
	// FormatConsole outputs logs in human-readable console format.
	FormatConsole LogFormat = "console"
)

// Logger provides structured logging with clause text redaction.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// redactor redacts sensitive log fields; nil when redaction is off
	redactor *Redactor

	// level is the minimum log level
	level slog.Level

	// format is the output format
	format LogFormat

	// writer is the underlying writer
	writer io.Writer
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text", "console")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// RedactText replaces clause and contract text in log fields with its
	// length
	RedactText bool

	// SensitiveKeys are additional field names whose values are redacted
	SensitiveKeys []string

	// Writer is the output writer (defaults to os.Stderr)
	Writer io.Writer
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	// Stdout carries command output, so logs go to stderr.
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	var redactor *Redactor
	if cfg.RedactText {
		redactor = NewRedactor(cfg.SensitiveKeys)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	case FormatConsole:
		// Console drops the timestamp; everything else matches text.
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &Logger{
		slog:     slog.New(NewHandler(handler, redactor)),
		redactor: redactor,
		level:    level,
		format:   format,
		writer:   writer,
	}, nil
}

// Slog returns the underlying *slog.Logger. Components accept a
// *slog.Logger; the one returned here applies redaction and context
// fields.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Level returns the minimum log level.
func (l *Logger) Level() slog.Level {
	return l.level
}

// Format returns the output format.
func (l *Logger) Format() LogFormat {
	return l.format
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message with the fields stored in ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.Log(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext logs an info message with the fields stored in ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.Log(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext logs a warning message with the fields stored in ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.Log(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext logs an error message with the fields stored in ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.Log(ctx, slog.LevelError, msg, args...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:     l.slog.With(args...),
		redactor: l.redactor,
		level:    l.level,
		format:   l.format,
		writer:   l.writer,
	}
}

// WithContext creates a new logger carrying the fields stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// Shutdown flushes the writer when it supports syncing.
func (l *Logger) Shutdown() error {
	if s, ok := l.writer.(interface{ Sync() error }); ok && l.writer != os.Stderr && l.writer != os.Stdout {
		return s.Sync()
	}
	return nil
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "console":
		return FormatConsole, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

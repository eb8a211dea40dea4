package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level represents logging severity.
type Level int

const (
	// LevelDebug for detailed troubleshooting output.
	LevelDebug Level = iota
	// LevelInfo for normal operational messages.
	LevelInfo
	// LevelWarn for recoverable problems.
	LevelWarn
	// LevelError for failures that need attention.
	LevelError
	// LevelNone disables all output.
	LevelNone
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// Logger is the interface graphex components log through. All methods take
// printf-style format strings.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// StdLogger implements Logger with the standard library log package.
type StdLogger struct {
	out   *log.Logger
	level Level
}

// NewStdLogger returns a StdLogger writing to stderr with the graphex prefix.
func NewStdLogger(level Level) *StdLogger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger returns a StdLogger writing to out.
func NewWriterLogger(out io.Writer, level Level) *StdLogger {
	return &StdLogger{
		out:   log.New(out, "[graphex] ", log.LstdFlags),
		level: level,
	}
}

// Debug logs a debug message.
func (l *StdLogger) Debug(format string, v ...any) {
	l.printf(LevelDebug, format, v...)
}

// Info logs an informational message.
func (l *StdLogger) Info(format string, v ...any) {
	l.printf(LevelInfo, format, v...)
}

// Warn logs a warning message.
func (l *StdLogger) Warn(format string, v ...any) {
	l.printf(LevelWarn, format, v...)
}

// Error logs an error message.
func (l *StdLogger) Error(format string, v ...any) {
	l.printf(LevelError, format, v...)
}

func (l *StdLogger) printf(at Level, format string, v ...any) {
	if l.level <= at {
		l.out.Printf("["+at.String()+"] "+format, v...)
	}
}

// NopLogger discards everything.
type NopLogger struct{}

// Debug does nothing.
func (NopLogger) Debug(format string, v ...any) {}

// Info does nothing.
func (NopLogger) Info(format string, v ...any) {}

// Warn does nothing.
func (NopLogger) Warn(format string, v ...any) {}

// Error does nothing.
func (NopLogger) Error(format string, v ...any) {}

// Package-level logger used by components constructed without one.
var defaultLogger Logger = NewStdLogger(LevelInfo)

// SetDefault replaces the package-level logger.
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// Default returns the current package-level logger.
func Default() Logger {
	return defaultLogger
}

// SetLevel installs a stderr StdLogger at the given level as the package
// default. Convenience for quick setup.
func SetLevel(level Level) {
	defaultLogger = NewStdLogger(level)
}

// Debug logs through the package-level logger.
func Debug(format string, v ...any) {
	defaultLogger.Debug(format, v...)
}

// Info logs through the package-level logger.
func Info(format string, v ...any) {
	defaultLogger.Info(format, v...)
}

// Warn logs through the package-level logger.
func Warn(format string, v ...any) {
	defaultLogger.Warn(format, v...)
}

// Error logs through the package-level logger.
func Error(format string, v ...any) {
	defaultLogger.Error(format, v...)
}

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Leveled printf-style Logger
// -----------------------------------------------------------------------------

// Level represents the severity threshold of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// Logger writes leveled, component-prefixed log lines.
type Logger struct {
	name  string
	level Level
	out   *log.Logger
	mu    sync.Mutex
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. The level string comes from config
// ("debug", "info", "warning", "error", "critical"); unknown values default to info.
func NewLogger(level string, name string) *Logger {
	return &Logger{
		name:  name,
		level: parseLevel(level),
		out:   log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// -----------------------------------------------------------------------------

// NewLoggerWithWriter creates a Logger writing to the given writer (used in tests).
func NewLoggerWithWriter(w io.Writer, level string, name string) *Logger {
	return &Logger{
		name:  name,
		level: parseLevel(level),
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// -----------------------------------------------------------------------------

func parseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) write(level Level, tag string, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("%s [%s] %s", tag, l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Debug logs a debug-level message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs an info-level message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO ", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs a warning-level message.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write(LevelWarning, "WARN ", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs an error-level message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs a critical-level message. The caller decides whether to exit.
func (l *Logger) Critical(format string, args ...interface{}) {
	l.write(LevelCritical, "CRIT ", format, args...)
}

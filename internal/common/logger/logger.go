// Package logger writes diagnostics to stderr and, optionally, to a log file.
// Reports go to stdout and never pass through here.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelQuiet // No output
)

// String returns the upper-case level name written to log files
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
	default:
		return "QUIET"
	}
}

// prefix is prepended to terminal lines so warnings stand out from progress
func (l Level) prefix() string {
	switch l {
	case LevelWarn:
		return "warning: "
	case LevelError:
		return "error: "
	default:
		return ""
	}
}

// ParseLevel converts a level name (debug, info, warn, error, quiet) to a Level.
// Unknown names return LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "quiet", "none":
		return LevelQuiet, true
	default:
		return LevelInfo, false
	}
}

// Logger filters messages by level before writing them to the terminal.
// The log file, when enabled, receives every message.
type Logger struct {
	mu    sync.Mutex
	level Level
	term  io.Writer
	file  io.WriteCloser
	now   func() time.Time
}

var std = New(os.Stderr, LevelInfo)

// Default returns the process-wide logger
func Default() *Logger { return std }

// New creates a logger writing to w at the given level
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, term: w, now: time.Now}
}

// SetLevel sets the terminal level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects terminal output
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.term = w
}

// SetVerbose lowers the level to debug when verbose is set
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.SetLevel(LevelDebug)
	}
}

// SetQuiet raises the level to error when quiet is set
func (l *Logger) SetQuiet(quiet bool) {
	if quiet {
		l.SetLevel(LevelError)
	}
}

// EnableFileLogging appends timestamped lines to bakecheck.log in dir.
// An empty dir uses LogDir().
func (l *Logger) EnableFileLogging(dir string) error {
	if dir == "" {
		var err error
		if dir, err = LogDir(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "bakecheck.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	return nil
}

// Close closes the log file if open
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// LogDir returns $XDG_STATE_HOME/bakecheck/logs
func LogDir() (string, error) {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "bakecheck", "logs"), nil
}

func (l *Logger) logf(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		fmt.Fprintf(l.file, "%s %-5s %s\n", l.now().Format(time.RFC3339), level, msg)
	}
	if level >= l.level {
		fmt.Fprintln(l.term, level.prefix()+msg)
	}
}

func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }

// Package-level shortcuts for the default logger
func Debug(format string, args ...any) { std.Debug(format, args...) }
func Info(format string, args ...any)  { std.Info(format, args...) }
func Warn(format string, args ...any)  { std.Warn(format, args...) }
func Error(format string, args ...any) { std.Error(format, args...) }
func SetVerbose(v bool)                { std.SetVerbose(v) }
func SetQuiet(q bool)                  { std.SetQuiet(q) }
func SetLevel(level Level)             { std.SetLevel(level) }

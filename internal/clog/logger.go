package clog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xdg/rootbridge/internal/pathutil"
)

// Logger writes leveled messages to a file writer and, for warnings and
// errors, to stderr.
type Logger struct {
	mu         sync.Mutex
	level      Level
	fileWriter io.Writer
	errWriter  io.Writer
	daemonMode bool
	now        func() time.Time
}

// NewLogger creates a logger at LevelInfo that writes warnings to stderr
// and has no file output.
func NewLogger() *Logger {
	return &Logger{
		level:     LevelInfo,
		errWriter: os.Stderr,
		now:       time.Now,
	}
}

// SetLevel sets the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFileOutput sets the file writer. nil disables file output.
func (l *Logger) SetFileOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fileWriter = w
}

// SetErrOutput sets the stderr writer. nil disables it.
func (l *Logger) SetErrOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errWriter = w
}

// SetDaemonMode stops stderr output when daemon is true.
func (l *Logger) SetDaemonMode(daemon bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.daemonMode = daemon
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any) { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any) { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)

	if l.fileWriter != nil {
		ts := l.now().UTC().Format(time.RFC3339)
		_, _ = fmt.Fprintf(l.fileWriter, "%s [%s] %s\n", ts, level, msg)
	}

	if !l.daemonMode && l.errWriter != nil && level >= LevelWarn {
		_, _ = fmt.Fprintf(l.errWriter, "[%s] %s\n", level, msg)
	}
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// StateDir returns $XDG_STATE_HOME/rootbridge, defaulting to
// ~/.local/state/rootbridge.
func StateDir() string {
	return pathutil.StateDir("rootbridge")
}

// DefaultLogPath returns StateDir()/rootbridge.log.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "rootbridge.log")
}

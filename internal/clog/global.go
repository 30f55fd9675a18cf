package clog

import (
	"io"
	"os"
)

// std backs the package-level functions.
var std = NewLogger()

// Options configures the global logger.
type Options struct {
	// File is the log file path. Empty disables file logging.
	File string
	// Level is the minimum level written.
	Level Level
	// Daemon disables stderr output.
	Daemon bool
}

// Configure applies opts to the global logger, opening the log file if one
// is named.
func Configure(opts Options) error {
	std.SetLevel(opts.Level)
	std.SetDaemonMode(opts.Daemon)

	if opts.File != "" {
		f, err := OpenLogFile(opts.File)
		if err != nil {
			return err
		}
		std.SetFileOutput(f)
	}
	return nil
}

func SetLevel(level Level) { std.SetLevel(level) }
func SetFileOutput(w io.Writer) { std.SetFileOutput(w) }
func SetErrOutput(w io.Writer) { std.SetErrOutput(w) }
func SetDaemonMode(daemon bool) { std.SetDaemonMode(daemon) }

func Debug(format string, args ...any) { std.Debug(format, args...) }
func Info(format string, args ...any) { std.Info(format, args...) }
func Warn(format string, args ...any) { std.Warn(format, args...) }
func Error(format string, args ...any) { std.Error(format, args...) }

// Close closes the file writer if it is an io.Closer.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if closer, ok := std.fileWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Reset restores a fresh global logger. Used by tests.
func Reset() {
	std = NewLogger()
}

// Discard silences the global logger. Used by tests.
func Discard() {
	std.SetFileOutput(io.Discard)
	std.SetErrOutput(io.Discard)
}

// ReplaceGlobal swaps the global logger and returns the previous one.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}

// Writer returns an io.Writer that logs each write at level. It lets
// net/http's ErrorLog feed into clog.
func Writer(level Level) io.Writer {
	return levelWriter{level: level}
}

type levelWriter struct {
	level Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	std.log(w.level, "%s", msg)
	return len(p), nil
}

func init() {
	std.SetErrOutput(os.Stderr)
}

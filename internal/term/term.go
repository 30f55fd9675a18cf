// Package term provides user-facing terminal output for the rootbridge CLI.
// This is distinct from operational logging (see internal/clog).
//
// Output functions:
//   - Print/Printf/Println: Normal output to stdout (suppressed with --silent)
//   - PrintJSON: Indented JSON to stdout, colored on a terminal
//   - Warn: Warnings to stderr (NOT suppressed with --silent)
//   - Error: Errors to stderr (NOT suppressed with --silent)
//
// Centralizing output here keeps --silent handling in one place.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	xterm "golang.org/x/term"
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	silent bool
	color  = isTerminal(os.Stdout)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && xterm.IsTerminal(int(f.Fd()))
}

// SetColor enables or disables colored JSON output.
func SetColor(c bool) {
	mu.Lock()
	defer mu.Unlock()
	color = c
}

// SetSilent enables or disables silent mode.
// When silent, Print/Printf/Println are suppressed.
// Warn and Error are NOT suppressed (users should always see these).
func SetSilent(s bool) {
	mu.Lock()
	defer mu.Unlock()
	silent = s
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	mu.Lock()
	defer mu.Unlock()
	return silent
}

// SetOutput sets the writer for stdout output.
// Pass nil to use os.Stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		stdout = os.Stdout
	} else {
		stdout = w
	}
	color = isTerminal(stdout)
}

// SetErrOutput sets the writer for stderr output.
// Pass nil to use os.Stderr.
func SetErrOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		stderr = os.Stderr
	} else {
		stderr = w
	}
}

// Print formats and writes to stdout.
// Suppressed when silent mode is enabled.
func Print(a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprint(stdout, a...)
}

// Printf formats according to a format specifier and writes to stdout.
// Suppressed when silent mode is enabled.
func Printf(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprintf(stdout, format, a...)
}

// Println formats and writes to stdout with a trailing newline.
// Suppressed when silent mode is enabled.
func Println(a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	_, _ = fmt.Fprintln(stdout, a...)
}

// PrintJSON writes raw JSON to stdout, indented with two spaces and
// terminated by a newline. Invalid JSON is written unchanged. Colored when
// stdout is a terminal. Suppressed when silent mode is enabled.
func PrintJSON(raw []byte) {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return
	}
	var out []byte
	switch {
	case !gjson.ValidBytes(raw):
		out = append(append(out, raw...), '\n')
	case color:
		out = pretty.Color(pretty.Pretty(raw), nil)
	default:
		out = pretty.Pretty(raw)
	}
	_, _ = stdout.Write(out)
}

// Warn writes a warning message to stderr with "Warning: " prefix.
// NOT suppressed by silent mode.
func Warn(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, a...)
	_, _ = fmt.Fprintf(stderr, "Warning: %s\n", msg)
}

// Error writes an error message to stderr with "Error: " prefix.
// NOT suppressed by silent mode.
func Error(format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	msg := fmt.Sprintf(format, a...)
	_, _ = fmt.Fprintf(stderr, "Error: %s\n", msg)
}

// Stdout returns the current stdout writer.
// Useful for passing to libraries that need an io.Writer (e.g., tabwriter).
func Stdout() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if silent {
		return io.Discard
	}
	return stdout
}

// Stderr returns the current stderr writer.
func Stderr() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return stderr
}

// Reset resets the package to default state.
// Primarily useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	stdout = os.Stdout
	stderr = os.Stderr
	silent = false
	color = isTerminal(os.Stdout)
}

// Discard configures the package to discard all output.
// Useful for silencing output in tests.
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	stdout = io.Discard
	stderr = io.Discard
}

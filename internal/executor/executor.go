// Package executor runs shell command lines with elevated rights.
//
// An Executor never returns an error: every failure (consent denied, shell
// missing, non-zero status, cancelled context) is reported as a Result with
// Success set to false and whatever output was captured. Callers that expect
// a file or tool to be missing neutralize the status inside the command
// itself (for example with "|| true").
//
// No implementation imposes its own timeout. The context passed to Exec is
// the only cancellation hook; when it ends, the elevated process is killed.
package executor

import (
	"context"
	"strings"
)

// ExitNotRun is the exit code reported when the command never produced a
// status (shell could not start, context cancelled, session died).
const ExitNotRun = -1

// Executor runs a command line through an elevated shell.
type Executor interface {
	Exec(ctx context.Context, command string) Result
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, command string) Result

// Exec calls f(ctx, command).
func (f Func) Exec(ctx context.Context, command string) Result {
	return f(ctx, command)
}

// Result is the outcome of one Exec call.
type Result struct {
	// Success is true when the shell ran the command and its final
	// status was zero.
	Success bool

	// ExitCode is the final status of the command, or ExitNotRun.
	ExitCode int

	// Stdout and Stderr hold the captured output split into lines.
	// A trailing newline does not produce an empty last line.
	Stdout []string
	Stderr []string
}

// Output returns stdout lines joined with newlines.
func (r Result) Output() string {
	return strings.Join(r.Stdout, "\n")
}

// ErrOutput returns stderr lines joined with newlines.
func (r Result) ErrOutput() string {
	return strings.Join(r.Stderr, "\n")
}

// failed builds a Result for a command that never produced a status.
func failed(stdout, stderr, reason string) Result {
	errLines := SplitLines(stderr)
	if reason != "" {
		errLines = append(errLines, reason)
	}
	return Result{
		Success:  false,
		ExitCode: ExitNotRun,
		Stdout:   SplitLines(stdout),
		Stderr:   errLines,
	}
}

// completed builds a Result for a command that exited with code.
func completed(code int, stdout, stderr string) Result {
	return Result{
		Success:  code == 0,
		ExitCode: code,
		Stdout:   SplitLines(stdout),
		Stderr:   SplitLines(stderr),
	}
}

// SplitLines splits s on newlines. A single trailing newline is dropped so
// "a\nb\n" yields ["a", "b"]. Empty input yields nil.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

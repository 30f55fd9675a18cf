// Package testutil provides shared test helpers for rootbridge tests.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xdg/rootbridge/internal/executor"
)

// FakeExecutor records every command and answers with Handler.
// With a nil Handler every command succeeds with no output.
type FakeExecutor struct {
	Handler func(command string) executor.Result

	mu    sync.Mutex
	calls []string
}

// NewFakeExecutor creates a FakeExecutor with the given handler.
func NewFakeExecutor(handler func(command string) executor.Result) *FakeExecutor {
	return &FakeExecutor{Handler: handler}
}

// Exec records command and returns the handler's result.
func (f *FakeExecutor) Exec(_ context.Context, command string) executor.Result {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	f.mu.Unlock()

	if f.Handler == nil {
		return executor.Result{Success: true}
	}
	return f.Handler(command)
}

// Calls returns a copy of the recorded commands.
func (f *FakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many commands were executed.
func (f *FakeExecutor) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Recorder wraps a real executor and records the commands passed through.
type Recorder struct {
	Next executor.Executor

	mu    sync.Mutex
	calls []string
}

// Exec records command and delegates to Next.
func (r *Recorder) Exec(ctx context.Context, command string) executor.Result {
	r.mu.Lock()
	r.calls = append(r.calls, command)
	r.mu.Unlock()
	return r.Next.Exec(ctx, command)
}

// Calls returns a copy of the recorded commands.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Writes returns the recorded commands that write a file.
func (r *Recorder) Writes() []string {
	var out []string
	for _, c := range r.Calls() {
		if IsWriteCommand(c) {
			out = append(out, c)
		}
	}
	return out
}

// IsWriteCommand reports whether command redirects output into a file
// (anything other than /dev/null).
func IsWriteCommand(command string) bool {
	cleaned := strings.ReplaceAll(command, "2>/dev/null", "")
	return strings.Contains(cleaned, "> ")
}

// NewShell returns an unprivileged in-process shell executor wrapped in a
// Recorder. It skips the test if any of the external tools the bridge
// commands rely on is missing.
func NewShell(t *testing.T) *Recorder {
	t.Helper()
	RequireTools(t, "cat", "base64", "ls", "grep", "head")
	return &Recorder{Next: executor.NewInterp()}
}

// RequireTools skips the test unless every named program is in PATH.
func RequireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available: %v", tool, err)
		}
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

// Lines is a shorthand for a successful Result with the given stdout lines.
func Lines(lines ...string) executor.Result {
	return executor.Result{Success: true, Stdout: lines}
}

package executor

import (
	"context"
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single no newline", "abc", []string{"abc"}},
		{"single with newline", "abc\n", []string{"abc"}},
		{"multiple", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"blank line kept", "a\n\nb", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
		{"sentinel framing", "body\n__HTTP__200", []string{"body", "__HTTP__200"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResultOutput(t *testing.T) {
	r := Result{
		Stdout: []string{"", "__HTTP__204"},
		Stderr: []string{"warn 1", "warn 2"},
	}
	if got := r.Output(); got != "\n__HTTP__204" {
		t.Errorf("Output() = %q", got)
	}
	if got := r.ErrOutput(); got != "warn 1\nwarn 2" {
		t.Errorf("ErrOutput() = %q", got)
	}
}

func TestFunc(t *testing.T) {
	var got string
	var e Executor = Func(func(_ context.Context, command string) Result {
		got = command
		return Result{Success: true}
	})

	r := e.Exec(context.Background(), "id -u")
	if !r.Success {
		t.Error("expected success from Func executor")
	}
	if got != "id -u" {
		t.Errorf("command = %q, want %q", got, "id -u")
	}
}

func TestCompletedAndFailed(t *testing.T) {
	r := completed(3, "out\n", "err\n")
	if r.Success || r.ExitCode != 3 {
		t.Errorf("completed(3) = %+v", r)
	}

	r = failed("", "partial", "shell exited")
	if r.Success || r.ExitCode != ExitNotRun {
		t.Errorf("failed() = %+v", r)
	}
	if want := []string{"partial", "shell exited"}; !reflect.DeepEqual(r.Stderr, want) {
		t.Errorf("failed().Stderr = %q, want %q", r.Stderr, want)
	}
}

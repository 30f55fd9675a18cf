package bridge

import (
	"context"
	"testing"
	"time"
)

func TestRun_ReturnsResult(t *testing.T) {
	got := Run(context.Background(), "fallback", func(context.Context) string { return "done" })
	if got != "done" {
		t.Errorf("Run() = %q, want %q", got, "done")
	}
}

func TestRun_FallbackOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stopped := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	got := Run(ctx, false, func(ctx context.Context) bool {
		<-ctx.Done()
		close(stopped)
		<-release
		return true
	})
	if got {
		t.Error("Run() = true, want fallback")
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Error("fn did not observe cancellation")
	}
}

func TestRun_SlowOperationDoesNotBlockCaller(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	got := Run(ctx, -1, func(context.Context) int {
		<-release
		return 1
	})
	if got != -1 {
		t.Errorf("Run() = %d, want -1", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run() blocked for %v", elapsed)
	}
}

package bridge

import "context"

// Run calls fn on its own goroutine and waits for it, returning fallback
// if ctx ends first. fn receives ctx, so cancelling it also kills any
// elevated command fn is blocked on; fn's eventual result is discarded.
func Run[T any](ctx context.Context, fallback T, fn func(ctx context.Context) T) T {
	done := make(chan T, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case v := <-done:
		return v
	case <-ctx.Done():
		return fallback
	}
}

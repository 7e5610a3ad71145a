package sellerverify

import (
	"context"
	"errors"
	"time"
)

type outcome[T any] struct {
	val T
	err error
}

// bounded runs call with a deadline and stops waiting once it passes, even
// when the callee ignores its context.
func bounded[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := call(ctx)
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) {
			return out.val, ErrExtractionTimeout
		}
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrExtractionTimeout
		}
		return zero, ctx.Err()
	}
}

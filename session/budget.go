// Copyright © 2024 The GHLS authors

package session

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Bounded runs fn with a context that expires after budget. If fn has not
// returned by then, Bounded returns the context error at once and the
// eventual result of fn is discarded. A panic in fn is returned as an
// error.
func Bounded[T any](ctx context.Context, budget time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		var pc panics.Catcher
		pc.Try(func() {
			r.val, r.err = fn(ctx)
		})
		if rec := pc.Recovered(); rec != nil {
			r = result{err: rec.AsError()}
		}
		done <- r
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

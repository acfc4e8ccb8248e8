// Package poll repeats a fetch until its result satisfies a predicate, a
// timeout elapses, or the owner cancels.
package poll

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("poll: timed out")

const defaultInterval = time.Second

type Config struct {
	Interval time.Duration
	// Timeout caps the whole poll; zero polls until cancelled.
	Timeout time.Duration
	// OnError sees every failed fetch. Polling carries on after it.
	OnError func(error)
}

type result[T any] struct {
	value T
	err   error
}

// Until fetches immediately and then once per interval until terminal
// reports true for a fetched value. Fetches get a context that outlives
// ctx so a request already on the wire can finish; anything it returns
// after ctx is done is dropped.
func Until[T any](ctx context.Context, cfg Config, fetch func(context.Context) (T, error), terminal func(T) bool) (T, error) {
	var zero T
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	var deadline <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	detached := context.WithoutCancel(ctx)
	for {
		results := make(chan result[T], 1)
		go func() {
			v, err := fetch(detached)
			results <- result[T]{value: v, err: err}
		}()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-deadline:
			return zero, ErrTimeout
		case r := <-results:
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if r.err != nil {
				if cfg.OnError != nil {
					cfg.OnError(r.err)
				}
			} else if terminal(r.value) {
				return r.value, nil
			}
		}

		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return zero, ctx.Err()
		case <-deadline:
			wait.Stop()
			return zero, ErrTimeout
		case <-wait.C:
		}
	}
}

// Every hands each fetched value to handle until ctx is done or the
// timeout elapses.
func Every[T any](ctx context.Context, cfg Config, fetch func(context.Context) (T, error), handle func(T)) error {
	_, err := Until(ctx, cfg, fetch, func(v T) bool {
		handle(v)
		return false
	})
	return err
}

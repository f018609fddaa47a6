// Package retry runs a producer until its result passes validation, sleeping
// with exponential backoff between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"course_gen_backend/pkg/logging"
)

// ErrCanceled is returned when the cancellation predicate fires before an attempt.
var ErrCanceled = errors.New("canceled")

// ExhaustedError is returned once every attempt produced an invalid result.
// Last holds the most recent producer error, if any.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("validation failed after %d retries", e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

const maxDelay = 24 * time.Hour

type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// Sleep waits between attempts. Nil means SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
	// Name labels log lines.
	Name string
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:  4,
		InitialDelay: time.Second,
		Sleep:        SleepContext,
	}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delays returns the wait after each of n failed attempts: InitialDelay * 2^k.
func Delays(initial time.Duration, n int) []time.Duration {
	b := newBackOff(initial)
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.NextBackOff())
	}
	return out
}

func newBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Do invokes op up to opts.MaxAttempts times. canceled is checked before every
// attempt; a producer error counts as an invalid result and still backs off.
// An in-flight op is never interrupted by canceled.
func Do[T any](
	ctx context.Context,
	opts Options,
	op func(ctx context.Context) (T, error),
	valid func(T) bool,
	canceled func() bool,
) (T, error) {
	var zero T
	sleep := opts.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	b := newBackOff(opts.InitialDelay)

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if canceled != nil && canceled() {
			return zero, ErrCanceled
		}

		result, err := op(ctx)
		if err == nil && valid(result) {
			return result, nil
		}
		if err != nil {
			lastErr = err
		}

		delay := b.NextBackOff()
		logging.Logger.Warn("attempt rejected, backing off",
			"step", opts.Name,
			"attempt", attempt+1,
			"maxAttempts", opts.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("backoff interrupted: %w", err)
		}
	}
	return zero, &ExhaustedError{Attempts: opts.MaxAttempts, Last: lastErr}
}

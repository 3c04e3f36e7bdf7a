package scoreline

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dityarw/scoreline/internal/backoff"
)

// BackoffStrategy selects how retry delays grow.
type BackoffStrategy int

const (
	// BackoffExponential is initialDelay * 2^attempt, deterministic unless
	// a jitter factor is configured.
	BackoffExponential BackoffStrategy = iota
	// BackoffDecorrelatedJitter is AWS-style decorrelated jitter.
	BackoffDecorrelatedJitter
)

func (s BackoffStrategy) strategy() backoff.Strategy {
	if s == BackoffDecorrelatedJitter {
		return backoff.DecorrelatedJitter{}
	}
	return backoff.Exponential{}
}

// RetryState tracks one logical operation's attempt budget. It exists only
// for the duration of the operation and is discarded afterwards.
type RetryState struct {
	// Attempt counts completed attempts, so 0 during the first try.
	Attempt int
	// Delay is the backoff that will precede the next retry.
	Delay time.Duration
}

type retrier struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	jitter       float64
	strategy     backoff.Strategy
	sleep        func(context.Context, time.Duration) error
	logger       Logger
	debug        *DebugConfig
	onRetry      func(state RetryState, err *Error)
}

// do invokes op until it succeeds, fails with a non-retryable
// classification, or exhausts the retry budget. The returned *Error carries
// the total attempt count.
func (r *retrier) do(ctx context.Context, resource string, op func(context.Context) (*Response, error)) (*Response, *Error) {
	state := RetryState{Delay: r.initialDelay}

	for {
		resp, err := op(ctx)
		cerr := Classify(resp, err, resource)
		if cerr == nil {
			return resp, nil
		}
		cerr.Attempts = state.Attempt + 1

		if !cerr.Retryable() || state.Attempt >= r.maxRetries {
			return nil, cerr
		}

		delay := r.strategy.Calculate(state.Attempt, r.initialDelay, r.maxDelay, r.multiplier, r.jitter)
		if ra := retryAfter(resp); ra > 0 {
			delay = ra
		}
		state.Delay = delay

		if r.debug.logRetries() {
			r.logger.Info("scheduling retry",
				"attempt", state.Attempt+1, "maxRetries", r.maxRetries,
				"delay", delay, "kind", cerr.Kind)
		}
		if r.onRetry != nil {
			r.onRetry(state, cerr)
		}

		if err := r.sleep(ctx, delay); err != nil {
			cerr.Cause = err
			return nil, cerr
		}
		state.Attempt++
	}
}

// retryAfter honors the Retry-After header on 429/503 responses, capped at
// one hour. Both delay-seconds and HTTP-date formats are supported.
func retryAfter(resp *Response) time.Duration {
	if resp == nil {
		return 0
	}
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds <= 0 {
			return 0
		}
		delay := time.Duration(seconds) * time.Second
		if delay > time.Hour {
			delay = time.Hour
		}
		return delay
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package backoff computes retry delays. Strategies are pure: the same
// inputs always describe the same delay distribution.
package backoff

import (
	"math/rand"
	"time"
)

// Strategy is a backoff calculation algorithm.
type Strategy interface {
	// Calculate returns the delay before retry number attempt+1.
	Calculate(attempt int, initialDelay, maxDelay time.Duration, multiplier, jitter float64) time.Duration
}

// Exponential implements initialDelay * multiplier^attempt with optional
// uniform jitter. With jitter 0 the sequence is fully deterministic.
type Exponential struct{}

// Calculate implements Strategy.
func (Exponential) Calculate(attempt int, initialDelay, maxDelay time.Duration, multiplier, jitter float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Bound the exponent so the float math cannot overflow into negatives.
	if attempt > 30 {
		attempt = 30
	}

	delay := time.Duration(float64(initialDelay) * Pow(multiplier, attempt))
	if delay < 0 || (maxDelay > 0 && delay > maxDelay) {
		delay = maxDelay
	}

	jitter = clampJitter(jitter)
	if jitter > 0 {
		amount := time.Duration(float64(delay) * jitter * rand.Float64())
		if maxDelay > 0 && delay+amount > maxDelay {
			delay = maxDelay
		} else {
			delay += amount
		}
	}
	return delay
}

// DecorrelatedJitter implements AWS-style decorrelated jitter:
// random_between(base, min(cap, base * 3^attempt)).
type DecorrelatedJitter struct{}

// Calculate implements Strategy.
func (DecorrelatedJitter) Calculate(attempt int, initialDelay, maxDelay time.Duration, _, _ float64) time.Duration {
	if attempt <= 0 {
		return initialDelay
	}
	if attempt > 10 {
		attempt = 10
	}

	base := float64(initialDelay)
	upper := base * Pow(3.0, attempt)

	limit := float64(maxDelay)
	if maxDelay > 0 && (upper > limit || upper < 0) {
		upper = limit
	}
	if upper < base {
		upper = base
	}

	delay := time.Duration(base + rand.Float64()*(upper-base))
	if delay < 0 || (maxDelay > 0 && delay > maxDelay) {
		delay = maxDelay
	}
	return delay
}

// Pow is an integer-exponent power for float64 bases.
func Pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

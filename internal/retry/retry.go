package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a reusable bounded-retry policy with exponential backoff,
// parameterized per call site.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// Multiplier scales the delay between consecutive retries.
	Multiplier float64
}

// DefaultPolicy matches the public-site data loaders: 3 retries at
// 1s, 2s, 4s.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, InitialInterval: time.Second, Multiplier: 2}
}

// Do runs op, retrying transient failures per the policy. Context
// cancellation stops the retry loop. Returning backoff.Permanent from op
// stops retries immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx))
}

// Permanent marks an error as non-retryable for Do.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

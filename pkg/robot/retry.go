package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Backoff strategies accepted by RetryPolicy.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// RetryPolicy bounds how often hardware initialization is attempted.
// Freshly exported pins may take a moment before their direction can be set.
type RetryPolicy struct {
	MaxAttempts uint   `json:"max_attempts"`
	DelayMS     int    `json:"delay_ms"`
	Backoff     string `json:"backoff"`
}

// DefaultRetryPolicy tries 10 times, 50ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, DelayMS: 50, Backoff: BackoffFixed}
}

// Validate checks the policy values.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts == 0 {
		return &ConfigError{Field: "retry.max_attempts", Reason: "must be at least 1"}
	}
	if p.DelayMS < 0 {
		return &ConfigError{Field: "retry.delay_ms", Reason: "must not be negative"}
	}
	switch p.Backoff {
	case "", BackoffFixed, BackoffExponential:
	default:
		return &ConfigError{Field: "retry.backoff", Reason: fmt.Sprintf("unknown strategy %q", p.Backoff)}
	}
	return nil
}

func (p RetryPolicy) backOff() backoff.BackOff {
	delay := time.Duration(p.DelayMS) * time.Millisecond
	if p.Backoff == BackoffExponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = delay
		b.RandomizationFactor = 0
		return b
	}
	return backoff.NewConstantBackOff(delay)
}

// Do runs op until it succeeds, the attempts are exhausted or ctx is done.
// notify, if not nil, is called after every failed attempt that will be retried.
func (p RetryPolicy) Do(ctx context.Context, op func() error, notify func(err error, next time.Duration)) error {
	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(p.MaxAttempts),
		backoff.WithMaxElapsedTime(0),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	}, opts...)
	return err
}

package reliability

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions configures RetryManager.Execute.
type RetryOptions struct {
	// MaxAttempts bounds the total number of attempts, including the
	// first. OPTIONAL: defaults to 3.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. OPTIONAL: defaults
	// to 1s.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. OPTIONAL: defaults to 30s.
	MaxDelay time.Duration

	// BackoffMultiplier scales the delay after each attempt. OPTIONAL:
	// defaults to 2.
	BackoffMultiplier float64

	// Jitter enables +/-10% randomization of each delay. OPTIONAL: off
	// unless set; withDefaults does not change it.
	Jitter bool
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.BackoffMultiplier <= 0 {
		o.BackoffMultiplier = 2
	}
	return o
}

// RetryManager executes idempotent operations under exponential backoff,
// retrying only errors IsRetryable accepts.
type RetryManager struct {
	opts   RetryOptions
	logger *slog.Logger
}

// NewRetryManager builds a RetryManager. A nil logger falls back to
// slog.Default().
func NewRetryManager(opts RetryOptions, logger *slog.Logger) *RetryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryManager{opts: opts.withDefaults(), logger: logger}
}

// Execute runs fn, retrying on a retryable error up to MaxAttempts total
// attempts with exponential backoff and jitter. A non-retryable error
// propagates on the first failure. ctx cancellation aborts mid-backoff.
func (rm *RetryManager) Execute(ctx context.Context, operation string, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = rm.opts.BaseDelay
	eb.MaxInterval = rm.opts.MaxDelay
	eb.Multiplier = rm.opts.BackoffMultiplier
	eb.MaxElapsedTime = 0
	if rm.opts.Jitter {
		eb.RandomizationFactor = 0.1
	} else {
		eb.RandomizationFactor = 0
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(rm.opts.MaxAttempts-1)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, delay time.Duration) {
		rm.logger.Warn("operation failed, retrying",
			"operation", operation, "attempt", attempt, "retry_in", delay, "error", err)
	})

	if err != nil {
		if attempt > 1 {
			rm.logger.Error("operation failed after retries",
				"operation", operation, "attempts", attempt, "error", err)
		}
		return err
	}
	if attempt > 1 {
		rm.logger.Info("operation succeeded after retry", "operation", operation, "attempts", attempt)
	}
	return nil
}

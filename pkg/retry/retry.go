// Package retry provides retry with exponential backoff and a circuit
// breaker for calls to flaky dependencies such as a mail relay.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrMaxRetriesExceeded is joined with the last error once attempts run out.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Config configures retry behavior.
type Config struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay grows.
	Multiplier float64

	// Jitter is the randomization factor (0-1).
	Jitter float64

	// RetryIf decides whether an error is retried. Nil retries everything
	// except permanent errors.
	RetryIf func(error) bool

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Retry calls fn until it succeeds, the error is not retryable, attempts run
// out or ctx ends. When ctx ends the context error is joined with the last
// failure.
func Retry(ctx context.Context, config *Config, fn func(ctx context.Context) error) error {
	if config == nil {
		config = DefaultConfig()
	}
	retryIf := config.RetryIf
	if retryIf == nil {
		retryIf = func(err error) bool { return !IsPermanentError(err) }
	}

	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, lastErr)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryIf(err) {
			return err
		}

		if attempt == config.MaxRetries {
			break
		}

		delay := Backoff(attempt, config)
		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}

// Backoff calculates the delay before retry number attempt+1.
func Backoff(attempt int, config *Config) time.Duration {
	if config == nil {
		config = DefaultConfig()
	}

	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt))

	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter > 0 {
		jitter := delay * config.Jitter
		delay = delay - jitter + (rand.Float64() * 2 * jitter)
	}

	return time.Duration(delay)
}

// PermanentError marks an error that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so Retry gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanentError checks if an error is marked as permanent.
func IsPermanentError(err error) bool {
	var permanent *PermanentError
	return errors.As(err, &permanent)
}

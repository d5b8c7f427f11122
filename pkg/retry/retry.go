package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrContextCanceled is returned when the context ends while waiting between attempts
var ErrContextCanceled = errors.New("context canceled during retry")

// Config contains retry configuration
type Config struct {
	// MaxRetries is the maximum number of retry attempts (0 = no retries, just initial attempt)
	MaxRetries int
	// InitialInterval is the initial backoff interval (default: 200ms)
	InitialInterval time.Duration
	// MaxInterval is the maximum backoff interval (default: 2s)
	MaxInterval time.Duration
	// Multiplier is the factor to multiply the interval by after each retry (default: 2.0)
	Multiplier float64
	// JitterFactor is the random jitter factor (0-1) to add/subtract from interval
	JitterFactor float64
}

// DefaultConfig returns retry configuration tuned for synchronous API calls
// sitting on a request path: 200ms, 400ms, 800ms.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error indicating it should NOT be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as permanent (not retryable)
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config *Config
}

// New creates a new Retrier with the given configuration
func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}

	if config.InitialInterval <= 0 {
		config.InitialInterval = 200 * time.Millisecond
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 2 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.JitterFactor < 0 {
		config.JitterFactor = 0
	}
	if config.JitterFactor > 1 {
		config.JitterFactor = 1
	}

	return &Retrier{
		config: config,
	}
}

// Do executes the operation, retrying with exponential backoff until it
// succeeds, returns a PermanentError, or attempts are exhausted. The
// unwrapped last error is returned either way.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			if lastErr != nil {
				return lastErr
			}
			return ErrContextCanceled
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			return permErr.Err
		}

		lastErr = err

		if attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(r.interval(attempt)):
		}
	}

	return lastErr
}

// interval computes the backoff for the given zero-based attempt
func (r *Retrier) interval(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))
	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if interval < 0 {
		interval = 0
	}

	return time.Duration(interval)
}

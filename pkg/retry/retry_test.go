package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrier_Do_SucceedsFirstAttempt(t *testing.T) {
	r := New(fastConfig(3))

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetrier_Do_SucceedsAfterRetries(t *testing.T) {
	r := New(fastConfig(3))

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetrier_Do_ExhaustsRetries(t *testing.T) {
	r := New(fastConfig(2))

	wantErr := errors.New("still failing")
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want %v", err, wantErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}
}

func TestRetrier_Do_PermanentErrorStopsImmediately(t *testing.T) {
	r := New(fastConfig(5))

	wantErr := errors.New("order does not exist")
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(wantErr)
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	r := New(&Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())

	wantErr := errors.New("transient failure")
	err := r.Do(ctx, func(ctx context.Context) error {
		cancel()
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want last error %v", err, wantErr)
	}
}

func TestRetrier_Do_CanceledBeforeFirstAttempt(t *testing.T) {
	r := New(fastConfig(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func(ctx context.Context) error {
		t.Error("operation should not run with canceled context")
		return nil
	})

	if !errors.Is(err, ErrContextCanceled) {
		t.Errorf("Do() error = %v, want ErrContextCanceled", err)
	}
}

func TestPermanent_NilError(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should return nil")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	r := New(&Config{JitterFactor: 5})

	if r.config.InitialInterval != 200*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 200ms", r.config.InitialInterval)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", r.config.Multiplier)
	}
	if r.config.JitterFactor != 1 {
		t.Errorf("JitterFactor = %v, want clamped to 1", r.config.JitterFactor)
	}
}

func TestRetrier_IntervalIsCapped(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Millisecond,
		MaxInterval:     4 * time.Millisecond,
		Multiplier:      2.0,
	})

	if got := r.interval(9); got > 4*time.Millisecond+time.Millisecond {
		t.Errorf("interval(9) = %v, want near 4ms cap", got)
	}
}

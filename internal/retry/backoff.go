package retry

import (
	"context"
	"time"
)

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	return base * (1 << attempt)
}

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration // zero means uncapped
	// OneShot makes exactly one attempt regardless of MaxAttempts.
	OneShot bool
}

// Attempts returns the effective attempt budget.
func (p Policy) Attempts() int {
	if p.OneShot || p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given zero-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := ExponentialBackoff(attempt, p.BaseDelay)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d < 0) {
		d = p.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds or the attempt budget is spent.
// attempt passed to fn and onFailure is 1-based. onFailure may be nil.
// Returns nil on success, ctx.Err() if cancelled while waiting, else the last error.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error, onFailure func(attempt int, err error)) error {
	attempts := p.Attempts()
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt - 1)):
		}
	}
	return err
}

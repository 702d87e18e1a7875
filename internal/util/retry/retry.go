package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/bundletester/internal/util/clock"
)

// Backoff retries an operation a bounded number of times, multiplying the
// wait after every failure. The zero value retries 5 times starting at 1s,
// doubling up to 30s.
type Backoff struct {
	// Retries is the number of attempts after the first one. Negative means
	// a single attempt.
	Retries int
	// Initial is the first wait.
	Initial time.Duration
	// Max caps every wait.
	Max time.Duration
	// Factor multiplies the wait after each failure.
	Factor float64
	// Clock defaults to the real clock.
	Clock clock.Clock
	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (b Backoff) withDefaults() Backoff {
	switch {
	case b.Retries == 0:
		b.Retries = 5
	case b.Retries < 0:
		b.Retries = 0
	}
	if b.Initial <= 0 {
		b.Initial = time.Second
	}
	if b.Max <= 0 {
		b.Max = 30 * time.Second
	}
	if b.Factor < 1 {
		b.Factor = 2
	}
	if b.Clock == nil {
		b.Clock = clock.Real()
	}
	return b
}

// Do runs op until it succeeds, returns a Fatal error or the retries are
// used up. attempt starts at 1.
func (b Backoff) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	b = b.withDefaults()

	wait := b.Initial
	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx, attempt)
		if err == nil {
			return nil
		}
		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if attempt > b.Retries {
			return fmt.Errorf("operation failed after %d attempts: %w", attempt, err)
		}

		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-b.Clock.After(wait):
		}
		wait = min(time.Duration(float64(wait)*b.Factor), b.Max)
	}
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err so that Backoff.Do and UntilDeadline stop at once. A nil
// err stays nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}

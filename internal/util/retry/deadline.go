package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/bundletester/internal/util/clock"
)

// ErrDeadlineExceeded is matched by every error reporting that a bounded
// wait ran out of time.
var ErrDeadlineExceeded = errors.New("deadline exceeded")

// Outcome tells UntilDeadline how to continue after an attempt.
type Outcome int

const (
	// Done stops the loop. The attempt's error, if any, is returned as is.
	Done Outcome = iota
	// Retry waits one interval before the next attempt.
	Retry
	// RetryNow starts the next attempt without waiting.
	RetryNow
)

// Poll configures a deadline-bounded loop.
type Poll struct {
	// Operation names the loop in errors and logs.
	Operation string
	// Timeout is the total budget, measured from loop entry.
	Timeout time.Duration
	// Interval is the wait between attempts that return Retry.
	Interval time.Duration
	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Attempt is one iteration of a deadline-bounded loop. n starts at 1.
type Attempt func(ctx context.Context, n int) (Outcome, error)

// DeadlineError is returned when a Poll budget is exhausted.
type DeadlineError struct {
	Operation string
	Timeout   time.Duration
	Elapsed   time.Duration
	Attempts  int
	LastErr   error
}

func (e *DeadlineError) Error() string {
	msg := fmt.Sprintf("timeout exceeded: %s did not succeed within %s (%d attempts, %s elapsed)",
		e.Operation, e.Timeout, e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

// Is reports ErrDeadlineExceeded.
func (e *DeadlineError) Is(target error) bool {
	return target == ErrDeadlineExceeded
}

func (e *DeadlineError) Unwrap() error {
	return e.LastErr
}

// UntilDeadline runs attempt until it returns Done or the budget in p is
// spent. The clock starts when UntilDeadline is entered and is never reset by
// retries. After a failed attempt the elapsed time is checked before anything
// else, so no attempt starts once the budget is gone; waits are shortened so
// that the last attempt lands on the deadline rather than past it.
//
// An error wrapped with Fatal ends the loop immediately and is returned
// unwrapped.
func UntilDeadline(ctx context.Context, p Poll, attempt Attempt) error {
	clk := p.Clock
	if clk == nil {
		clk = clock.Real()
	}
	start := clk.Now()

	for n := 1; ; n++ {
		outcome, err := attempt(ctx, n)

		var fatalErr *FatalError
		if errors.As(err, &fatalErr) {
			return fatalErr.Err
		}
		if outcome == Done {
			return err
		}

		elapsed := clk.Now().Sub(start)
		if elapsed >= p.Timeout {
			return &DeadlineError{
				Operation: p.Operation,
				Timeout:   p.Timeout,
				Elapsed:   elapsed,
				Attempts:  n,
				LastErr:   err,
			}
		}

		if outcome == RetryNow {
			if ctx.Err() != nil {
				return fmt.Errorf("%s cancelled after %d attempts: %w", p.Operation, n, ctx.Err())
			}
			continue
		}

		wait := p.Interval
		if remaining := p.Timeout - elapsed; wait > remaining {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", p.Operation, n, ctx.Err())
		case <-clk.After(wait):
		}
	}
}

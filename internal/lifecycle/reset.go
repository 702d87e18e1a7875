package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/util/retry"
)

// Reset loop names, used in logs and metrics.
const (
	loopReset = "reset"
	loopDrain = "drain"
)

// Reset returns the environment to a state with no services.
//
// It first retries a full reset (terminating machines) until it succeeds,
// reconnecting immediately whenever the connection was lost, and then polls
// status until no service remains. Each loop has its own deadline, measured
// from loop entry. Reset never reports success while services remain.
func (c *Controller) Reset(ctx context.Context) error {
	if c.run.DryRun || !c.env.Configured() {
		return nil
	}

	err := c.resetEnvironment(ctx)
	if err == nil {
		err = c.drainServices(ctx)
	}
	c.metrics.ObserveOperation("reset", err)
	return err
}

func (c *Controller) resetEnvironment(ctx context.Context) error {
	opts := environment.ResetOptions{
		TerminateMachines: true,
		TerminateDelay:    c.timeouts.TerminateDelay,
		ForceTerminate:    true,
	}
	start := c.clk.Now()

	err := retry.UntilDeadline(ctx, retry.Poll{
		Operation: "environment reset",
		Timeout:   c.timeouts.ResetTimeout,
		Interval:  c.timeouts.ResetRetryInterval,
		Clock:     c.clk,
	}, func(ctx context.Context, attempt int) (retry.Outcome, error) {
		err := c.env.Reset(ctx, opts)
		if err == nil {
			c.metrics.ObserveResetAttempt(loopReset, "success")
			return retry.Done, nil
		}

		c.log.Error(err, "Environment reset failed",
			"attempt", attempt, "elapsed", c.clk.Now().Sub(start).String())

		if !connectionLost(err) {
			c.metrics.ObserveResetAttempt(loopReset, "retry")
			c.log.V(1).Info("Retrying environment reset")
			return retry.Retry, err
		}

		c.metrics.ObserveResetAttempt(loopReset, "reconnect")
		c.log.V(1).Info("Reconnecting to environment")
		if cerr := c.env.Connect(ctx); cerr != nil {
			return retry.Done, fmt.Errorf("failed to reconnect to environment %s: %w", c.env.Name(), cerr)
		}
		return retry.RetryNow, err
	})
	if err != nil {
		return fmt.Errorf("failed to reset environment %s: %w", c.env.Name(), err)
	}
	return nil
}

func (c *Controller) drainServices(ctx context.Context) error {
	c.log.V(1).Info("Waiting for services to be removed")

	err := retry.UntilDeadline(ctx, retry.Poll{
		Operation: "service removal",
		Timeout:   c.timeouts.DrainTimeout,
		Interval:  c.timeouts.DrainInterval,
		Clock:     c.clk,
	}, func(ctx context.Context, attempt int) (retry.Outcome, error) {
		status, err := c.env.Status(ctx)
		if err != nil {
			c.metrics.ObserveResetAttempt(loopDrain, "error")
			return retry.Done, err
		}
		if status.Empty() {
			c.metrics.ObserveResetAttempt(loopDrain, "success")
			return retry.Done, nil
		}

		remaining := status.ServiceNames()
		slices.Sort(remaining)
		c.metrics.ObserveResetAttempt(loopDrain, "retry")
		c.log.V(1).Info("Services remaining", "services", remaining, "attempt", attempt)
		return retry.Retry, fmt.Errorf("services remaining: %s", strings.Join(remaining, ", "))
	})
	if err != nil {
		return fmt.Errorf("failed to remove all services from %s: %w", c.env.Name(), err)
	}
	return nil
}

// connectionLost reports whether err means the environment connection has to
// be re-established before the next attempt.
func connectionLost(err error) bool {
	return errors.Is(err, environment.ErrConnectionClosed) || juju.IsConnectivity(err)
}

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/imamik/bundletester/internal/juju"
)

// Result is the outcome of a deployment. A failed deployment is reported
// through ReturnCode, not as an error.
type Result struct {
	ReturnCode int
	Output     string
	Executable []string
}

// Deploy deploys bundle, or the run's default bundle when bundle is empty.
// Without any bundle it succeeds without doing anything. A bundle file that
// does not exist is a *ConfigurationError.
func (c *Controller) Deploy(ctx context.Context, bundle string) (*Result, error) {
	if bundle == "" {
		bundle = c.run.Bundle
	}
	if bundle == "" {
		return &Result{}, nil
	}
	if _, err := os.Stat(bundle); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{Reason: "missing required bundle file", Path: bundle}
		}
		return nil, fmt.Errorf("failed to check bundle %s: %w", bundle, err)
	}
	if c.run.DryRun {
		return &Result{}, nil
	}

	cmd := c.deployCommand(bundle)
	c.log.V(1).Info("Deploying bundle", "argv", cmd.Argv())

	log := c.log.WithValues("bundle", bundle)
	res, err := c.runner.Stream(ctx, cmd, func(line string) {
		log.V(1).Info(line)
	})
	if err != nil {
		c.metrics.ObserveOperation("deploy", err)
		return nil, fmt.Errorf("failed to run %s: %w", cmd, err)
	}

	var failure error
	if res.ExitCode != 0 {
		failure = fmt.Errorf("deployer exited with code %d", res.ExitCode)
		c.log.Info("Deployment failed", "exitCode", res.ExitCode)
	}
	c.metrics.ObserveOperation("deploy", failure)

	return &Result{
		ReturnCode: res.ExitCode,
		Output:     string(res.Stdout),
		Executable: cmd.Argv(),
	}, nil
}

func (c *Controller) deployCommand(bundle string) juju.Command {
	var args []string
	if c.run.Verbose {
		args = append(args, "-Wvd")
	}
	args = append(args, "-c", bundle)
	if c.run.Deployment != "" {
		args = append(args, c.run.Deployment)
	}

	cmd := juju.Command{Name: c.deployer, Args: args}
	if name := c.env.Name(); name != "" {
		cmd.Env = []string{deployerEnvVar + "=" + name}
	}
	return cmd
}

package handlers

import (
	"context"
	"fmt"
)

// Bootstrap handles the bootstrap command.
//
// It connects to the environment, bootstrapping it first when it is not
// running and the test configuration allows it.
func Bootstrap(ctx context.Context, opts Options) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	if !s.env.Configured() {
		return errNoEnvironment
	}

	ctrl, err := s.controller()
	if err != nil {
		return err
	}
	bootstrapped, err := ctrl.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if bootstrapped {
		fmt.Fprintf(s.out, "Environment %s bootstrapped\n", s.env.Name())
	} else {
		fmt.Fprintf(s.out, "Environment %s ready\n", s.env.Name())
	}
	return nil
}

// Deploy handles the deploy command.
//
// The deployer's output is logged as it arrives; on failure it is also
// printed in full and the deployer's exit code is reported as an error.
func Deploy(ctx context.Context, opts Options, bundle string) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	ctrl, err := s.controller()
	if err != nil {
		return err
	}
	res, err := ctrl.Deploy(ctx, bundle)
	if err != nil {
		return err
	}
	if res.ReturnCode != 0 {
		fmt.Fprint(s.out, res.Output)
		return fmt.Errorf("deployment failed: deployer exited with code %d", res.ReturnCode)
	}
	return nil
}

// Reset handles the reset command.
//
// It connects to the environment and removes every service and machine,
// waiting until no services remain.
func Reset(ctx context.Context, opts Options) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	if !s.env.Configured() {
		return errNoEnvironment
	}
	ctrl, err := s.controller()
	if err != nil {
		return err
	}
	if !s.run.DryRun {
		if err := s.env.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to environment %s: %w", s.env.Name(), err)
		}
	}

	if err := ctrl.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Environment %s reset\n", s.env.Name())
	return nil
}

// Destroy handles the destroy command.
func Destroy(ctx context.Context, opts Options) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	if !s.env.Configured() {
		return errNoEnvironment
	}
	if s.run.NoDestroy {
		fmt.Fprintf(s.out, "Keeping environment %s\n", s.env.Name())
		return nil
	}

	ctrl, err := s.controller()
	if err != nil {
		return err
	}
	if err := ctrl.Destroy(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Environment %s destroyed\n", s.env.Name())
	return nil
}

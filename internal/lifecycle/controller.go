package lifecycle

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/environment"
	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/metrics"
	"github.com/imamik/bundletester/internal/util/clock"
)

const (
	// DefaultDeployer is the bundle deployer executable.
	DefaultDeployer = "juju-deployer"

	// deployerEnvVar tells the deployer which environment to target.
	deployerEnvVar = "JUJU_ENV"
)

// Options configures a Controller.
type Options struct {
	Config   *config.Config
	Run      config.RunOptions
	Timeouts *config.Timeouts

	// Environment defaults to environment.None().
	Environment environment.Handle
	// Runner defaults to juju.ExecRunner.
	Runner juju.Runner

	// JujuBinary defaults to juju.DefaultBinary.
	JujuBinary string
	// DeployerBinary defaults to DefaultDeployer.
	DeployerBinary string

	Clock   clock.Clock
	Logger  logr.Logger
	Metrics *metrics.Metrics
}

// Controller runs lifecycle operations against one environment.
type Controller struct {
	cfg      *config.Config
	run      config.RunOptions
	timeouts *config.Timeouts
	env      environment.Handle
	runner   juju.Runner
	juju     string
	deployer string
	clk      clock.Clock
	log      logr.Logger
	metrics  *metrics.Metrics
}

// New creates a Controller, filling unset options with defaults. A
// Run.Environment that does not name the Environment handle is rejected, so a
// run aimed at an environment never silently degrades to a no-op.
func New(opts Options) (*Controller, error) {
	c := &Controller{
		cfg:      opts.Config,
		run:      opts.Run,
		timeouts: opts.Timeouts,
		env:      opts.Environment,
		runner:   opts.Runner,
		juju:     opts.JujuBinary,
		deployer: opts.DeployerBinary,
		clk:      opts.Clock,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	if c.timeouts == nil {
		c.timeouts = config.DefaultTimeouts()
	}
	if c.env == nil {
		c.env = environment.None()
	}
	if want := c.run.Environment; want != "" && want != c.env.Name() {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("run targets environment %q but the environment handle is for %q", want, c.env.Name()),
		}
	}
	if c.runner == nil {
		c.runner = juju.ExecRunner{}
	}
	if c.juju == "" {
		c.juju = juju.DefaultBinary
	}
	if c.deployer == "" {
		c.deployer = DefaultDeployer
	}
	if c.clk == nil {
		c.clk = clock.Real()
	}
	if name := c.env.Name(); name != "" {
		c.log = c.log.WithValues("environment", name)
	}
	return c, nil
}

// Bootstrap makes sure the environment is running and connected. It reports
// whether a bootstrap was performed.
//
// An environment that is not running is bootstrapped only when the test
// configuration allows it; otherwise Bootstrap returns false without error.
func (c *Controller) Bootstrap(ctx context.Context) (bool, error) {
	if !c.env.Configured() {
		return false, nil
	}
	c.log.V(1).Info("Bootstrap environment")
	if c.run.DryRun {
		return false, nil
	}

	bootstrapped, err := c.bootstrap(ctx)
	c.metrics.ObserveOperation("bootstrap", err)
	return bootstrapped, err
}

func (c *Controller) bootstrap(ctx context.Context) (bool, error) {
	probe := c.Probe(ctx)
	switch probe.State {
	case Running:
		if err := c.env.Connect(ctx); err != nil {
			return false, fmt.Errorf("failed to connect to environment %s: %w", c.env.Name(), err)
		}
		return false, nil
	case ProbeError:
		return false, fmt.Errorf("failed to probe environment %s: %w", c.env.Name(), probe.Err)
	}

	if !c.cfg.Bootstrap {
		c.log.Info("Environment is not running and bootstrap is disabled")
		return false, nil
	}

	c.log.Info("Bootstrapping environment")
	if err := c.env.Bootstrap(ctx); err != nil {
		return false, fmt.Errorf("failed to bootstrap environment %s: %w", c.env.Name(), err)
	}
	if err := c.env.Connect(ctx); err != nil {
		return true, fmt.Errorf("failed to connect to environment %s: %w", c.env.Name(), err)
	}
	return true, nil
}

// Destroy tears the environment down unless the run asked to keep it.
func (c *Controller) Destroy(ctx context.Context) error {
	if c.run.NoDestroy || !c.env.Configured() {
		return nil
	}
	cmd := juju.Command{Name: c.juju, Args: []string{"destroy-environment", "-y", c.env.Name(), "--force"}}
	if c.run.DryRun {
		c.log.V(1).Info("Dry run, skipping command", "argv", cmd.Argv())
		return nil
	}

	c.log.Info("Destroying environment")
	result, err := c.runner.Run(ctx, cmd)
	err = juju.Check(cmd, result, err)
	c.metrics.ObserveOperation("destroy", err)
	if err != nil {
		return fmt.Errorf("failed to destroy environment %s: %w", c.env.Name(), err)
	}
	return nil
}

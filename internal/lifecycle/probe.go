package lifecycle

import (
	"context"

	"github.com/imamik/bundletester/internal/juju"
)

// ProbeState is the outcome of checking whether an environment is running.
type ProbeState int

const (
	// NotRunning means the status command ran and failed.
	NotRunning ProbeState = iota
	// Running means the status command succeeded.
	Running
	// ProbeError means the status command could not be run at all.
	ProbeError
)

func (s ProbeState) String() string {
	switch s {
	case Running:
		return "running"
	case NotRunning:
		return "not running"
	default:
		return "error"
	}
}

// ProbeResult is the tagged result of Probe. Err is set only for ProbeError.
type ProbeResult struct {
	State    ProbeState
	ExitCode int
	Err      error
}

// Probe runs "juju status -e <env>". Any non-zero exit means the environment
// is not running; only a failure to start the command is an error.
func (c *Controller) Probe(ctx context.Context) ProbeResult {
	cmd := juju.Command{Name: c.juju, Args: []string{"status", juju.EnvironmentFlag, c.env.Name()}}
	c.log.V(2).Info("Probing environment", "argv", cmd.Argv())

	result, err := c.runner.Run(ctx, cmd)
	switch {
	case err != nil:
		return ProbeResult{State: ProbeError, ExitCode: result.ExitCode, Err: err}
	case result.ExitCode != 0:
		c.log.V(1).Info("Environment not running", "exitCode", result.ExitCode)
		return ProbeResult{State: NotRunning, ExitCode: result.ExitCode}
	default:
		return ProbeResult{State: Running}
	}
}

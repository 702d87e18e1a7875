package config

import (
	"fmt"
	"strings"
)

// DefaultFile is the conventional name of a suite's test configuration file.
const DefaultFile = "tests.yaml"

// Config describes how the host and environment must be prepared.
type Config struct {
	// Bootstrap allows a missing environment to be bootstrapped.
	Bootstrap bool `yaml:"bootstrap"`

	// Sources are package archive sources added before installing packages
	// (e.g. "ppa:juju/stable").
	Sources []string `yaml:"sources"`

	// Packages are system packages installed on the host.
	Packages []string `yaml:"packages"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Bootstrap: true,
	}
}

// Validate checks that every source and package entry is usable.
func (c *Config) Validate() error {
	for i, source := range c.Sources {
		if strings.TrimSpace(source) == "" {
			return fmt.Errorf("sources[%d]: must not be empty", i)
		}
	}
	for i, pkg := range c.Packages {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("packages[%d]: must not be empty", i)
		}
		if strings.HasPrefix(pkg, "-") {
			return fmt.Errorf("packages[%d]: %q looks like a flag", i, pkg)
		}
	}
	return nil
}

// RunOptions are the per-invocation switches of a run.
type RunOptions struct {
	// DryRun suppresses every external effect; operations report success.
	DryRun bool

	// Verbose makes the deployer verbose and raises log verbosity.
	Verbose bool

	// Debug passes --debug instead of --show-log to the orchestration tool.
	// It is applied by the command invoker, not the lifecycle controller.
	Debug bool

	// Environment names the target environment. Empty means none. The
	// lifecycle controller refuses a handle for any other environment.
	Environment string

	// Deployment selects a named deployment inside the bundle.
	Deployment string

	// NoDestroy keeps the environment alive at the end of a suite.
	NoDestroy bool

	// Bundle is the default bundle file deployed when none is passed explicitly.
	Bundle string
}

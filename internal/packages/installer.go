// Package packages installs the system packages and package sources a test
// suite declares in its configuration.
package packages

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/juju"
	"github.com/imamik/bundletester/internal/metrics"
)

// Installer runs privileged apt commands for a configuration.
type Installer struct {
	cfg     *config.Config
	runner  juju.Runner
	dryRun  bool
	log     logr.Logger
	metrics *metrics.Metrics
}

// Options configures an Installer.
type Options struct {
	Runner  juju.Runner
	DryRun  bool
	Logger  logr.Logger
	Metrics *metrics.Metrics
}

// NewInstaller creates an Installer for cfg.
func NewInstaller(cfg *config.Config, opts Options) *Installer {
	if cfg == nil {
		cfg = config.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = juju.ExecRunner{}
	}
	return &Installer{cfg: cfg, runner: runner, dryRun: opts.DryRun, log: opts.Logger, metrics: opts.Metrics}
}

// AddSource adds one package archive source.
func (i *Installer) AddSource(ctx context.Context, source string) error {
	return i.sudo(ctx, "apt-add-repository", "--yes", source)
}

// AddSources adds every configured source and, when update is set and at
// least one source exists, refreshes the package index.
func (i *Installer) AddSources(ctx context.Context, update bool) error {
	for _, source := range i.cfg.Sources {
		if err := i.AddSource(ctx, source); err != nil {
			return err
		}
	}
	if len(i.cfg.Sources) > 0 && update {
		return i.AptUpdate(ctx)
	}
	return nil
}

// AptUpdate refreshes the package index.
func (i *Installer) AptUpdate(ctx context.Context) error {
	return i.sudo(ctx, "apt-get", "update", "-qq")
}

// InstallPackages installs every configured package in one apt-get call.
func (i *Installer) InstallPackages(ctx context.Context) error {
	if len(i.cfg.Packages) == 0 {
		return nil
	}
	args := append([]string{"apt-get", "install", "-qq", "-y"}, i.cfg.Packages...)
	return i.sudo(ctx, args...)
}

func (i *Installer) sudo(ctx context.Context, args ...string) error {
	cmd := juju.Command{Name: "sudo", Args: args}
	if i.dryRun {
		i.log.V(1).Info("Dry run, skipping command", "argv", cmd.Argv())
		i.metrics.ObserveCommand(args[0], metrics.ResultDryRun, 0)
		return nil
	}

	i.log.Info("Running package command", "argv", cmd.Argv())
	result, err := i.runner.Run(ctx, cmd)
	err = juju.Check(cmd, result, err)
	if err != nil {
		i.metrics.ObserveCommand(args[0], metrics.ResultFailed, 0)
		return fmt.Errorf("package setup failed: %w", err)
	}
	i.metrics.ObserveCommand(args[0], metrics.ResultSuccess, 0)
	return nil
}

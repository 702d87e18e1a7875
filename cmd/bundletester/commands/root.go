// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/bundletester/cmd/bundletester/handlers"
)

// Root returns the root command for the bundletester CLI.
//
// Global flags are bound once here and shared with every subcommand.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "bundletester",
		Short:         "Prepare juju environments for charm and bundle tests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Environment, "environment", "e", "", "Juju environment to use (default: $JUJU_ENV)")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the test configuration file (default: tests.yaml)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Print what would be done without doing it")
	flags.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	flags.BoolVar(&opts.Debug, "debug", false, "Debug output, also passed on to juju")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when the command ends")

	// Environment lifecycle
	cmd.AddCommand(Bootstrap(opts))
	cmd.AddCommand(Deploy(opts))
	cmd.AddCommand(Reset(opts))
	cmd.AddCommand(Destroy(opts))

	// Units and host
	cmd.AddCommand(Action(opts))
	cmd.AddCommand(Install(opts))

	// Utility commands
	cmd.AddCommand(Doctor(opts))
	cmd.AddCommand(Version())

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/bundletester/cmd/bundletester/handlers"
)

// Bootstrap returns the bootstrap command.
func Bootstrap(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap the environment if it is not running",
		Long: `Bootstrap checks whether the environment is running and connects to it.

An environment that is not running is bootstrapped unless the test
configuration sets "bootstrap: false".

Example:
  bundletester bootstrap -e local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Bootstrap(cmd.Context(), withOutput(cmd, opts))
		},
	}
}

// Deploy returns the deploy command.
//
// Optional flags:
//
//	--bundle, -b: Bundle file used when no argument is given
//	--deployment: Named deployment inside the bundle
func Deploy(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [BUNDLE]",
		Short: "Deploy a bundle with juju-deployer",
		Long: `Deploy runs juju-deployer against the environment.

Without a bundle argument or --bundle nothing is deployed. A bundle path
that does not exist is an error.

Examples:
  bundletester deploy -e local bundle.yaml
  bundletester deploy -e local -b bundle.yaml --deployment wordpress-stage --verbose`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle := ""
			if len(args) == 1 {
				bundle = args[0]
			}
			return handlers.Deploy(cmd.Context(), withOutput(cmd, opts), bundle)
		},
	}

	cmd.Flags().StringVarP(&opts.Bundle, "bundle", "b", "", "Bundle file to deploy when none is given")
	cmd.Flags().StringVar(&opts.Deployment, "deployment", "", "Named deployment inside the bundle")

	return cmd
}

// Reset returns the reset command.
func Reset(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every service and machine from the environment",
		Long: `Reset destroys every service, terminates every machine except the
bootstrap node and waits until no services remain.

Lost connections are re-established and the reset retried. Reset gives up
after BUNDLETESTER_RESET_TIMEOUT (default 60s) and waits at most
BUNDLETESTER_DRAIN_TIMEOUT (default 60s) for services to disappear.

Example:
  bundletester reset -e local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Reset(cmd.Context(), withOutput(cmd, opts))
		},
	}
}

// Destroy returns the destroy command.
func Destroy(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy the environment",
		Long: `Destroy runs "juju destroy-environment -y <env> --force".

Example:
  bundletester destroy -e local

WARNING: This operation is irreversible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), withOutput(cmd, opts))
		},
	}

	cmd.Flags().BoolVar(&opts.NoDestroy, "no-destroy", false, "Keep the environment")

	return cmd
}

// withOutput routes handler output through the command's writers.
func withOutput(cmd *cobra.Command, opts *handlers.Options) handlers.Options {
	o := *opts
	o.Out = cmd.OutOrStdout()
	o.Err = cmd.ErrOrStderr()
	return o
}

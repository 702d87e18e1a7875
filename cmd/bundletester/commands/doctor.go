package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/bundletester/cmd/bundletester/handlers"
)

// Doctor returns the command for diagnosing the local setup.
//
// Optional flags:
//
//	--json: Output in JSON format
func Doctor(opts *handlers.Options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check required tools and the environment",
		Long: `Doctor checks that juju, juju-deployer and the package tools are
installed and, when an environment is selected, whether it is running.

Examples:
  bundletester doctor -e local
  bundletester doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), withOutput(cmd, opts), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/bundletester/cmd/bundletester/handlers"
)

// Install returns the install command.
func Install(opts *handlers.Options) *cobra.Command {
	var noUpdate bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the package sources and packages from the test configuration",
		Long: `Install adds every "sources" entry with apt-add-repository, refreshes the
package index and installs every "packages" entry with apt-get. Both run
through sudo.

Example:
  bundletester install -c tests.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), withOutput(cmd, opts), noUpdate)
		},
	}

	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "Skip apt-get update after adding sources")

	return cmd
}

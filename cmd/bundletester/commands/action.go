package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/bundletester/cmd/bundletester/handlers"
	"github.com/imamik/bundletester/internal/juju"
)

// Action returns the action command group.
func Action(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Queue actions on units and fetch their results",
	}

	cmd.AddCommand(actionDo(opts))
	cmd.AddCommand(actionFetch(opts))
	cmd.AddCommand(actionRun(opts))

	return cmd
}

func actionDo(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "do UNIT ACTION [key=value...] [-- juju flags...]",
		Short: "Queue an action and print its id",
		Long: `Queue an action and print its id.

Arguments after the action name are passed to "juju action do" unchanged.
Flags meant for juju, such as --params, go after "--".`,
		Example: `  bundletester action do -e local mysql/0 backup target=/srv/backup
  bundletester action do -e local mysql/0 backup -- --params backup.yaml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ActionDo(cmd.Context(), withOutput(cmd, opts), args[0], args[1], args[2:])
		},
	}
}

func actionFetch(opts *handlers.Options) *cobra.Command {
	var wait, output string

	cmd := &cobra.Command{
		Use:     "fetch ID",
		Short:   "Wait for an action and print its result",
		Example: `  bundletester action fetch -e local 5a92ec93-d4be-4399-82dc-7431dbfd08f9 --wait 5m --output json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ActionFetch(cmd.Context(), withOutput(cmd, opts), args[0], wait, output)
		},
	}

	addResultFlags(cmd, &wait, &output)
	return cmd
}

func actionRun(opts *handlers.Options) *cobra.Command {
	var wait, output string

	cmd := &cobra.Command{
		Use:     "run UNIT ACTION [key=value...] [-- juju flags...]",
		Short:   "Queue an action, wait for it and print its result",
		Example: `  bundletester action run -e local mysql/0 backup target=/srv/backup --output json`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ActionRun(cmd.Context(), withOutput(cmd, opts), args[0], args[1], wait, output, args[2:])
		},
	}

	addResultFlags(cmd, &wait, &output)
	return cmd
}

func addResultFlags(cmd *cobra.Command, wait, output *string) {
	cmd.Flags().StringVar(wait, "wait", "", "How long to wait for the result (default: $BUNDLETESTER_ACTION_WAIT or "+juju.DefaultActionWait+")")
	cmd.Flags().StringVarP(output, "output", "o", handlers.OutputYAML, "Output format: yaml or json")
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the releve command tree. Each call returns fresh commands so
// flag state never leaks between invocations.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "releve",
		Short: "Generate synthetic monthly bank statements",
		Long: `releve generates plausible monthly bank statements for a French current account.
Each month draws transactions from a category catalog, orders them by date, tracks
the running balance and carries the closing balance into the next month.

Configuration comes from the environment (and a .env file); flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			LoadEnvFile()
		},
	}

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newCatalogCommand())
	root.AddCommand(newHistoryCommand())
	root.AddCommand(newAuditCommand())
	root.AddCommand(newVersionCommand(version))
	return root
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "releve %s\n", version)
		},
	}
}

// Execute runs the command line with args.
func Execute(ctx context.Context, version string, args []string) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

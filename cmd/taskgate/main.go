package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/cli"
	"github.com/example/taskgate/internal/version"
	"github.com/example/taskgate/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskgate",
		Short:   "taskgate - approval-gated work item workflow",
		Version: version.String(),
		Long: `taskgate tracks work items inside projects. Members file requests to be
assigned, released or to complete an item; the project owner approves them.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.ResolveCaller(cmd)
		},
	}
	cli.BindGlobalFlags(rootCmd)

	// Workflow commands
	rootCmd.AddCommand(cli.RequestCmd())
	rootCmd.AddCommand(cli.ApproveCmd())

	// Supporting commands
	rootCmd.AddCommand(cli.ItemCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	err := rootCmd.Execute()
	wire.Shutdown(rootCmd.Context())
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

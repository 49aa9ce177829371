package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/wire"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve pending requests (project owners only)",
}

func newApproveSubcommand(use, kind, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [work-item-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "work item")
			if err != nil {
				return err
			}
			target, _ := cmd.Flags().GetString("user")
			return wire.WorkflowAdapter().Approve(NewContext(), kind, itemID, target)
		},
	}
	cmd.Flags().StringP("user", "u", "", "Requester whose request is approved")
	return cmd
}

// ApproveCmd returns the approve command
func ApproveCmd() *cobra.Command {
	assign := newApproveSubcommand("assign", "assign", "Assign a pending work item to a requester")
	assign.Flags().Lookup("user").Usage = "Requester to assign (default: oldest assign request)"

	unassign := newApproveSubcommand("unassign", "unassign", "Release the assignee of an in-progress work item")
	_ = unassign.MarkFlagRequired("user")

	complete := newApproveSubcommand("complete", "completion", "Mark an in-progress work item completed")
	_ = complete.MarkFlagRequired("user")

	approveCmd.AddCommand(assign, unassign, complete)
	return approveCmd
}

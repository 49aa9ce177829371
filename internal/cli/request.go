package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/wire"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "File and manage operation requests on work items",
	Long: `Members ask to be assigned to a work item, to be released from it, or to
have it marked complete. The project owner approves with 'taskgate approve'.`,
}

var requestFileCmd = &cobra.Command{
	Use:   "file [assign|unassign|completion] [work-item-id]",
	Short: "File a request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[1], "work item")
		if err != nil {
			return err
		}
		projectID, _ := cmd.Flags().GetInt64("project")
		description, _ := cmd.Flags().GetString("description")

		return wire.WorkflowAdapter().File(NewContext(), primary.FileRequestInput{
			Kind:        args[0],
			Description: description,
			WorkItemID:  itemID,
			ProjectID:   projectID,
		})
	},
}

var requestWithdrawCmd = &cobra.Command{
	Use:   "withdraw [work-item-id]",
	Short: "Withdraw your request (owners withdraw every request on the item)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0], "work item")
		if err != nil {
			return err
		}
		return wire.WorkflowAdapter().Withdraw(NewContext(), itemID)
	},
}

var requestEditCmd = &cobra.Command{
	Use:   "edit [work-item-id]",
	Short: "Edit your request on a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0], "work item")
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		description, _ := cmd.Flags().GetString("description")
		moveTo, _ := cmd.Flags().GetInt64("work-item")
		projectID, _ := cmd.Flags().GetInt64("project")

		return wire.WorkflowAdapter().Edit(NewContext(), itemID, primary.RequestPatch{
			Kind:        kind,
			Description: description,
			WorkItemID:  moveTo,
			ProjectID:   projectID,
		})
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests visible to you",
	Long: `Owners see every request; members see only their own.
Exactly one of --project or --work-item is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		itemID, _ := cmd.Flags().GetInt64("work-item")

		switch {
		case projectID != 0 && itemID == 0:
			return wire.WorkflowAdapter().List(NewContext(), primary.ScopeProject, projectID)
		case itemID != 0 && projectID == 0:
			return wire.WorkflowAdapter().List(NewContext(), primary.ScopeWorkItem, itemID)
		default:
			return fmt.Errorf("specify exactly one of --project or --work-item")
		}
	},
}

// RequestCmd returns the request command
func RequestCmd() *cobra.Command {
	requestFileCmd.Flags().Int64P("project", "p", 0, "Project the work item belongs to")
	requestFileCmd.Flags().StringP("description", "d", "", "Why you are asking")
	_ = requestFileCmd.MarkFlagRequired("project")
	_ = requestFileCmd.MarkFlagRequired("description")

	requestEditCmd.Flags().String("kind", "", "New request kind")
	requestEditCmd.Flags().StringP("description", "d", "", "New description")
	requestEditCmd.Flags().Int64("work-item", 0, "Move the request to another work item")
	requestEditCmd.Flags().Int64P("project", "p", 0, "New project")

	requestListCmd.Flags().Int64P("project", "p", 0, "List requests in a project")
	requestListCmd.Flags().Int64("work-item", 0, "List requests on a work item")

	requestCmd.AddCommand(requestFileCmd)
	requestCmd.AddCommand(requestWithdrawCmd)
	requestCmd.AddCommand(requestEditCmd)
	requestCmd.AddCommand(requestListCmd)

	return requestCmd
}

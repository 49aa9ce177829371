package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/wire"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage work items",
	Long:  "Create, inspect, edit and delete work items. Lifecycle changes go through requests.",
}

var itemCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a work item in a project you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetInt("priority")
		rawDeadline, _ := cmd.Flags().GetString("deadline")

		deadline, err := parseDeadline(rawDeadline)
		if err != nil {
			return err
		}

		return wire.WorkItemAdapter().Create(NewContext(), primary.CreateWorkItemRequest{
			ProjectID:   projectID,
			Title:       args[0],
			Description: description,
			Priority:    priority,
			Deadline:    deadline,
		})
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show [work-item-id | title]",
	Short: "Show work item details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			return wire.WorkItemAdapter().Show(NewContext(), id, "")
		}
		return wire.WorkItemAdapter().Show(NewContext(), 0, args[0])
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the work items of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		assignee, _ := cmd.Flags().GetString("assignee")
		return wire.WorkItemAdapter().List(NewContext(), projectID, assignee)
	},
}

var itemEditCmd = &cobra.Command{
	Use:   "edit [work-item-id]",
	Short: "Edit a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "work item")
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetInt("priority")
		projectID, _ := cmd.Flags().GetInt64("project")
		rawDeadline, _ := cmd.Flags().GetString("deadline")

		deadline, err := parseDeadline(rawDeadline)
		if err != nil {
			return err
		}

		return wire.WorkItemAdapter().Update(NewContext(), primary.UpdateWorkItemRequest{
			ID:          id,
			Title:       title,
			Description: description,
			Priority:    priority,
			Deadline:    deadline,
			ProjectID:   projectID,
		})
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete [work-item-id]",
	Short: "Delete a work item and its pending requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "work item")
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("refusing to delete work item %d without --force", id)
		}
		return wire.WorkItemAdapter().Delete(NewContext(), id)
	},
}

var itemHistoryCmd = &cobra.Command{
	Use:   "history [work-item-id]",
	Short: "Show the audit trail of a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "work item")
		if err != nil {
			return err
		}
		return wire.WorkItemAdapter().History(NewContext(), id)
	},
}

// ItemCmd returns the item command
func ItemCmd() *cobra.Command {
	itemCreateCmd.Flags().Int64P("project", "p", 0, "Project ID")
	itemCreateCmd.Flags().StringP("description", "d", "", "Work item description")
	itemCreateCmd.Flags().Int("priority", 0, "Priority (1-100)")
	itemCreateCmd.Flags().String("deadline", "", "Deadline (YYYY-MM-DD or RFC 3339)")
	_ = itemCreateCmd.MarkFlagRequired("project")
	_ = itemCreateCmd.MarkFlagRequired("priority")
	_ = itemCreateCmd.MarkFlagRequired("deadline")

	itemListCmd.Flags().Int64P("project", "p", 0, "Project ID")
	itemListCmd.Flags().StringP("assignee", "a", "", "Only items assigned to this user")
	_ = itemListCmd.MarkFlagRequired("project")

	itemEditCmd.Flags().StringP("title", "t", "", "New title")
	itemEditCmd.Flags().StringP("description", "d", "", "New description")
	itemEditCmd.Flags().Int("priority", 0, "New priority (1-100)")
	itemEditCmd.Flags().String("deadline", "", "New deadline (YYYY-MM-DD or RFC 3339)")
	itemEditCmd.Flags().Int64P("project", "p", 0, "Move to another project you own")

	itemDeleteCmd.Flags().BoolP("force", "f", false, "Confirm deletion")

	itemCmd.AddCommand(itemCreateCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemEditCmd)
	itemCmd.AddCommand(itemDeleteCmd)
	itemCmd.AddCommand(itemHistoryCmd)

	return itemCmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/wire"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.DirectoryAdapter().AddUser(NewContext(), args[0])
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects and their members",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project owned by you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.DirectoryAdapter().CreateProject(NewContext(), args[0])
	},
}

var projectAddMemberCmd = &cobra.Command{
	Use:   "add-member [project-id] [username]",
	Short: "Add a member to a project you own",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return wire.DirectoryAdapter().AddMember(NewContext(), projectID, args[1])
	},
}

var projectMembersCmd = &cobra.Command{
	Use:   "members [project-id]",
	Short: "List the members of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return wire.DirectoryAdapter().Members(NewContext(), projectID)
	},
}

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	userCmd.AddCommand(userAddCmd)
	return userCmd
}

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectAddMemberCmd)
	projectCmd.AddCommand(projectMembersCmd)
	return projectCmd
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/taskgate/internal/ports/primary"
)

// DirectoryAdapter translates CLI operations to DirectoryService calls.
type DirectoryAdapter struct {
	service primary.DirectoryService
	out     io.Writer
}

// NewDirectoryAdapter creates a new DirectoryAdapter with the given service.
func NewDirectoryAdapter(service primary.DirectoryService, out io.Writer) *DirectoryAdapter {
	return &DirectoryAdapter{
		service: service,
		out:     out,
	}
}

// AddUser registers a user.
func (a *DirectoryAdapter) AddUser(ctx context.Context, username string) error {
	user, err := a.service.AddUser(ctx, username)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Added user %s (id %d)\n", check(), user.Username, user.ID)
	return nil
}

// CreateProject creates a project owned by the caller.
func (a *DirectoryAdapter) CreateProject(ctx context.Context, name string) error {
	project, err := a.service.CreateProject(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Created project %d: %s (owner %s)\n", check(), project.ID, project.Name, project.Owner)
	return nil
}

// AddMember enrolls a user in a project.
func (a *DirectoryAdapter) AddMember(ctx context.Context, projectID int64, username string) error {
	if err := a.service.AddMember(ctx, projectID, username); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Added %s to project %d\n", check(), username, projectID)
	return nil
}

// Members lists the members of a project.
func (a *DirectoryAdapter) Members(ctx context.Context, projectID int64) error {
	users, err := a.service.ListMembers(ctx, projectID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Members of project %d:\n", projectID)
	for _, u := range users {
		fmt.Fprintf(a.out, "  - %s\n", u.Username)
	}
	return nil
}

package primary

import "context"

// DirectoryService defines the primary port for maintaining users and projects.
type DirectoryService interface {
	// AddUser registers a username.
	AddUser(ctx context.Context, username string) (*User, error)

	// CreateProject creates a project owned by the caller.
	CreateProject(ctx context.Context, name string) (*Project, error)

	// AddMember enrolls a user in a project. Owner only.
	AddMember(ctx context.Context, projectID int64, username string) error

	// ListMembers lists the members of a project.
	ListMembers(ctx context.Context, projectID int64) ([]*User, error)
}

// User represents a user at the port boundary.
type User struct {
	ID       int64
	Username string
}

// Project represents a project at the port boundary.
type Project struct {
	ID    int64
	Name  string
	Owner string
}

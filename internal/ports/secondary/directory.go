package secondary

import "context"

// MembershipOracle answers identity and membership questions for the workflow engine.
// Answers are never cached; every call reflects current membership.
type MembershipOracle interface {
	// ResolveCurrentUser returns the caller, or an Unauthorized error.
	ResolveCurrentUser(ctx context.Context) (*UserRecord, error)

	// FindUserByName returns the named user, or a NotFound error.
	FindUserByName(ctx context.Context, username string) (*UserRecord, error)

	// GetProject returns the project with its owner, or a NotFound error.
	GetProject(ctx context.Context, id int64) (*ProjectRecord, error)

	// IsProjectMember reports whether userID belongs to the project.
	IsProjectMember(ctx context.Context, projectID, userID int64) (bool, error)
}

// DirectoryRepository defines the secondary port for users, projects and memberships.
type DirectoryRepository interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, username string) (*UserRecord, error)

	// GetUserByName retrieves a user by username.
	GetUserByName(ctx context.Context, username string) (*UserRecord, error)

	// CreateProject persists a new project and enrolls its owner as a member.
	CreateProject(ctx context.Context, name string, ownerID int64) (*ProjectRecord, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id int64) (*ProjectRecord, error)

	// AddMember enrolls a user in a project. Adding an existing member is a no-op.
	AddMember(ctx context.Context, projectID, userID int64) error

	// IsMember reports whether the user belongs to the project.
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)

	// ListMembers returns the members of a project ordered by username.
	ListMembers(ctx context.Context, projectID int64) ([]*UserRecord, error)
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID       int64
	Username string
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID            int64
	Name          string
	OwnerID       int64
	OwnerUsername string
}

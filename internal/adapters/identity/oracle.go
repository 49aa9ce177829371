// Package identity resolves callers and answers membership questions for the workflow engine.
package identity

import (
	"context"

	"github.com/example/taskgate/internal/ctxutil"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

// DirectoryOracle implements secondary.MembershipOracle on top of the directory tables.
// The caller is the username carried in the context; every answer is read fresh.
type DirectoryOracle struct {
	dir secondary.DirectoryRepository
}

// NewDirectoryOracle creates a new DirectoryOracle.
func NewDirectoryOracle(dir secondary.DirectoryRepository) *DirectoryOracle {
	return &DirectoryOracle{dir: dir}
}

// ResolveCurrentUser returns the caller named in ctx.
func (o *DirectoryOracle) ResolveCurrentUser(ctx context.Context) (*secondary.UserRecord, error) {
	username := ctxutil.ActorFromContext(ctx)
	if username == "" {
		return nil, errs.Unauthorized("", "no caller identity (use --as or --token)")
	}

	user, err := o.dir.GetUserByName(ctx, username)
	if errs.KindOf(err) == errs.KindNotFound {
		return nil, errs.Unauthorized("", "unknown user %s", username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByName returns the named user.
func (o *DirectoryOracle) FindUserByName(ctx context.Context, username string) (*secondary.UserRecord, error) {
	return o.dir.GetUserByName(ctx, username)
}

// GetProject returns the project with its owner.
func (o *DirectoryOracle) GetProject(ctx context.Context, id int64) (*secondary.ProjectRecord, error) {
	return o.dir.GetProject(ctx, id)
}

// IsProjectMember reports whether userID belongs to the project.
func (o *DirectoryOracle) IsProjectMember(ctx context.Context, projectID, userID int64) (bool, error) {
	return o.dir.IsMember(ctx, projectID, userID)
}

// Ensure DirectoryOracle implements the interface
var _ secondary.MembershipOracle = (*DirectoryOracle)(nil)

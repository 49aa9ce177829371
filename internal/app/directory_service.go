package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
)

// DirectoryServiceImpl implements the DirectoryService interface.
type DirectoryServiceImpl struct {
	dir    secondary.DirectoryRepository
	oracle secondary.MembershipOracle
	tx     secondary.Transactor
	logger *slog.Logger
}

// NewDirectoryService creates a new DirectoryService with injected dependencies.
func NewDirectoryService(
	dir secondary.DirectoryRepository,
	oracle secondary.MembershipOracle,
	tx secondary.Transactor,
	logger *slog.Logger,
) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{
		dir:    dir,
		oracle: oracle,
		tx:     tx,
		logger: orDefault(logger),
	}
}

// AddUser registers a username.
func (s *DirectoryServiceImpl) AddUser(ctx context.Context, username string) (*primary.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.InvalidState("", "username is required")
	}

	user, err := s.dir.CreateUser(ctx, username)
	if err != nil {
		return nil, errs.Wrap("add user", err)
	}

	s.logger.InfoContext(ctx, "user added", "user", user.Username)
	return &primary.User{ID: user.ID, Username: user.Username}, nil
}

// CreateProject creates a project owned by the caller.
func (s *DirectoryServiceImpl) CreateProject(ctx context.Context, name string) (*primary.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.InvalidState("", "project name is required")
	}

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, errs.Wrap("create project", err)
	}

	var project *secondary.ProjectRecord
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		project, err = s.dir.CreateProject(ctx, name, caller.ID)
		return err
	})
	if err != nil {
		return nil, errs.Wrap("create project", err)
	}

	s.logger.InfoContext(ctx, "project created", "project", project.ID, "owner", project.OwnerUsername)
	return &primary.Project{ID: project.ID, Name: project.Name, Owner: project.OwnerUsername}, nil
}

// AddMember enrolls a user in a project. Owner only.
func (s *DirectoryServiceImpl) AddMember(ctx context.Context, projectID int64, username string) error {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return errs.Wrap("add member", err)
	}

	project, err := s.oracle.GetProject(ctx, projectID)
	if err != nil {
		return errs.Wrap("add member", err)
	}
	if project.OwnerID != caller.ID {
		return errs.Unauthorized("", "only the owner of project %d can add members", projectID)
	}

	user, err := s.oracle.FindUserByName(ctx, username)
	if err != nil {
		return errs.Wrap("add member", err)
	}

	if err := s.dir.AddMember(ctx, projectID, user.ID); err != nil {
		return errs.Wrap("add member", err)
	}

	s.logger.InfoContext(ctx, "member added", "project", projectID, "user", user.Username)
	return nil
}

// ListMembers lists the members of a project. Members only.
func (s *DirectoryServiceImpl) ListMembers(ctx context.Context, projectID int64) ([]*primary.User, error) {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, errs.Wrap("list members", err)
	}

	if _, err := s.oracle.GetProject(ctx, projectID); err != nil {
		return nil, errs.Wrap("list members", err)
	}
	ok, err := s.oracle.IsProjectMember(ctx, projectID, caller.ID)
	if err != nil {
		return nil, errs.Wrap("list members", err)
	}
	if !ok {
		return nil, errs.Unauthorized("", "user %s is not a member of project %d", caller.Username, projectID)
	}

	records, err := s.dir.ListMembers(ctx, projectID)
	if err != nil {
		return nil, errs.Wrap("list members", err)
	}

	users := make([]*primary.User, len(records))
	for i, r := range records {
		users[i] = &primary.User{ID: r.ID, Username: r.Username}
	}
	return users, nil
}

// Ensure DirectoryServiceImpl implements the interface
var _ primary.DirectoryService = (*DirectoryServiceImpl)(nil)

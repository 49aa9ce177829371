package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

// DirectoryRepository implements secondary.DirectoryRepository with SQLite.
type DirectoryRepository struct {
	db *sql.DB
}

// NewDirectoryRepository creates a new SQLite directory repository.
func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// CreateUser persists a new user.
func (r *DirectoryRepository) CreateUser(ctx context.Context, username string) (*secondary.UserRecord, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, "INSERT INTO users (username) VALUES (?)", username)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errs.InvalidState("", "user %s already exists", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return &secondary.UserRecord{ID: id, Username: username}, nil
}

// GetUserByName retrieves a user by username.
func (r *DirectoryRepository) GetUserByName(ctx context.Context, username string) (*secondary.UserRecord, error) {
	record := &secondary.UserRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, username FROM users WHERE username = ?", username,
	).Scan(&record.ID, &record.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("", "user %s not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return record, nil
}

// CreateProject persists a new project and enrolls its owner as a member.
func (r *DirectoryRepository) CreateProject(ctx context.Context, name string, ownerID int64) (*secondary.ProjectRecord, error) {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx, "INSERT INTO projects (name, owner_id) VALUES (?, ?)", name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read project id: %w", err)
	}

	if err := r.AddMember(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return r.GetProject(ctx, id)
}

// GetProject retrieves a project by ID.
func (r *DirectoryRepository) GetProject(ctx context.Context, id int64) (*secondary.ProjectRecord, error) {
	record := &secondary.ProjectRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT p.id, p.name, p.owner_id, u.username
		FROM projects p JOIN users u ON u.id = p.owner_id
		WHERE p.id = ?`, id,
	).Scan(&record.ID, &record.Name, &record.OwnerID, &record.OwnerUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("", "project %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return record, nil
}

// AddMember enrolls a user in a project.
func (r *DirectoryRepository) AddMember(ctx context.Context, projectID, userID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO project_members (project_id, user_id) VALUES (?, ?)", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the project.
func (r *DirectoryRepository) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM project_members WHERE project_id = ? AND user_id = ?", projectID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return count > 0, nil
}

// ListMembers returns the members of a project ordered by username.
func (r *DirectoryRepository) ListMembers(ctx context.Context, projectID int64) ([]*secondary.UserRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT u.id, u.username FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = ?
		ORDER BY u.username`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	var users []*secondary.UserRecord
	for rows.Next() {
		u := &secondary.UserRecord{}
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Ensure DirectoryRepository implements the interface
var _ secondary.DirectoryRepository = (*DirectoryRepository)(nil)

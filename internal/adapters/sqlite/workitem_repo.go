package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

// WorkItemRepository implements secondary.WorkItemRepository with SQLite.
type WorkItemRepository struct {
	db *sql.DB
}

// NewWorkItemRepository creates a new SQLite work item repository.
func NewWorkItemRepository(db *sql.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

const workItemSelect = `SELECT w.id, w.title, w.description, w.priority, w.status, w.deadline,
	w.assign_reason, w.unassign_reason, w.completion_reason,
	w.creator_id, c.username, w.assignee_id, a.username, w.project_id, w.created_at, w.updated_at
FROM work_items w
JOIN users c ON c.id = w.creator_id
LEFT JOIN users a ON a.id = w.assignee_id
WHERE w.deleted = 0`

// scanWorkItem scans a work item row into a WorkItemRecord.
func scanWorkItem(scanner interface {
	Scan(dest ...any) error
}) (*secondary.WorkItemRecord, error) {
	var (
		desc             sql.NullString
		assignReason     sql.NullString
		unassignReason   sql.NullString
		completionReason sql.NullString
		assigneeID       sql.NullInt64
		assigneeName     sql.NullString
		createdAt        sql.NullTime
		updatedAt        sql.NullTime
	)

	record := &secondary.WorkItemRecord{}
	err := scanner.Scan(
		&record.ID, &record.Title, &desc, &record.Priority, &record.Status, &record.Deadline,
		&assignReason, &unassignReason, &completionReason,
		&record.CreatorID, &record.CreatorName, &assigneeID, &assigneeName, &record.ProjectID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.AssignReason = stringPtr(assignReason)
	record.UnassignReason = stringPtr(unassignReason)
	record.CompletionReason = stringPtr(completionReason)
	record.AssigneeID = int64Ptr(assigneeID)
	record.AssigneeName = assigneeName.String
	record.CreatedAt = createdAt.Time
	record.UpdatedAt = updatedAt.Time

	return record, nil
}

// Create persists a new work item. New items always start pending and unassigned.
func (r *WorkItemRepository) Create(ctx context.Context, item *secondary.WorkItemRecord) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO work_items (title, description, priority, status, deadline, creator_id, project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Title, nullString(item.Description), item.Priority, string(workflow.InitialStatus()),
		item.Deadline.UTC(), item.CreatorID, item.ProjectID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create work item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read work item id: %w", err)
	}
	return id, nil
}

// GetByID retrieves a live work item by its ID.
func (r *WorkItemRepository) GetByID(ctx context.Context, id int64) (*secondary.WorkItemRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, workItemSelect+" AND w.id = ?", id)

	record, err := scanWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("", "work item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	return record, nil
}

// GetByTitle retrieves a live work item by its title.
func (r *WorkItemRepository) GetByTitle(ctx context.Context, title string) (*secondary.WorkItemRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, workItemSelect+" AND w.title = ?", title)

	record, err := scanWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("", "work item %q not found", title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	return record, nil
}

// List retrieves live work items matching the given filters.
func (r *WorkItemRepository) List(ctx context.Context, filters secondary.WorkItemFilters) ([]*secondary.WorkItemRecord, error) {
	query := workItemSelect
	args := []any{}

	if filters.ProjectID != 0 {
		query += " AND w.project_id = ?"
		args = append(args, filters.ProjectID)
	}

	if filters.AssigneeID != 0 {
		query += " AND w.assignee_id = ?"
		args = append(args, filters.AssigneeID)
	}

	if filters.Status != "" {
		query += " AND w.status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY w.priority DESC, w.deadline ASC, w.id ASC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.WorkItemRecord
	for rows.Next() {
		record, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, record)
	}

	return items, rows.Err()
}

// Update applies a partial edit to a live work item.
func (r *WorkItemRepository) Update(ctx context.Context, item *secondary.WorkItemRecord) error {
	query := "UPDATE work_items SET updated_at = CURRENT_TIMESTAMP"
	args := []any{}

	if item.Title != "" {
		query += ", title = ?"
		args = append(args, item.Title)
	}

	if item.Description != "" {
		query += ", description = ?"
		args = append(args, item.Description)
	}

	if item.Priority != 0 {
		query += ", priority = ?"
		args = append(args, item.Priority)
	}

	if !item.Deadline.IsZero() {
		query += ", deadline = ?"
		args = append(args, item.Deadline.UTC())
	}

	if item.ProjectID != 0 {
		query += ", project_id = ?"
		args = append(args, item.ProjectID)
	}

	query += " WHERE id = ? AND deleted = 0"
	args = append(args, item.ID)

	return r.execOne(ctx, item.ID, "update", query, args...)
}

// ApplyTransition writes the lifecycle fields of a live work item.
func (r *WorkItemRepository) ApplyTransition(ctx context.Context, id int64, state workflow.ItemState) error {
	return r.execOne(ctx, id, "transition",
		`UPDATE work_items SET status = ?, assignee_id = ?, assign_reason = ?, unassign_reason = ?,
			completion_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted = 0`,
		string(state.Status), nullInt64Ptr(state.AssigneeID), nullStringPtr(state.AssignReason),
		nullStringPtr(state.UnassignReason), nullStringPtr(state.CompletionReason), id,
	)
}

// SoftDelete flags a live work item as deleted.
func (r *WorkItemRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.execOne(ctx, id, "delete",
		"UPDATE work_items SET deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted = 0", id)
}

// TitleTaken reports whether a live work item other than excludeID uses title.
func (r *WorkItemRepository) TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM work_items WHERE title = ? AND deleted = 0 AND id != ?", title, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check work item title: %w", err)
	}
	return count > 0, nil
}

func (r *WorkItemRepository) execOne(ctx context.Context, id int64, verb, query string, args ...any) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s work item: %w", verb, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("", "work item %d not found", id)
	}
	return nil
}

// Ensure WorkItemRepository implements the interface
var _ secondary.WorkItemRepository = (*WorkItemRepository)(nil)

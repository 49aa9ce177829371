package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

// RequestLedger implements secondary.RequestLedger with SQLite.
type RequestLedger struct {
	db *sql.DB
}

// NewRequestLedger creates a new SQLite request ledger.
func NewRequestLedger(db *sql.DB) *RequestLedger {
	return &RequestLedger{db: db}
}

const requestSelect = `SELECT r.id, r.kind, r.description, r.requester_id, u.username, r.work_item_id, r.project_id, r.created_at
FROM operation_requests r
JOIN users u ON u.id = r.requester_id`

// roleFilter narrows a query to the rows visible to role.
func roleFilter(role workflow.Role) (string, []any) {
	if role.IsOwner() {
		return "", nil
	}
	return " AND u.username = ?", []any{role.Username()}
}

func scanRequest(scanner interface {
	Scan(dest ...any) error
}) (*secondary.RequestRecord, error) {
	var createdAt sql.NullTime

	record := &secondary.RequestRecord{}
	err := scanner.Scan(
		&record.ID, &record.Kind, &record.Description, &record.RequesterID, &record.RequesterName,
		&record.WorkItemID, &record.ProjectID, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Time
	return record, nil
}

// Create persists a new request.
func (l *RequestLedger) Create(ctx context.Context, req *secondary.RequestRecord) (int64, error) {
	res, err := conn(ctx, l.db).ExecContext(ctx,
		"INSERT INTO operation_requests (kind, description, requester_id, work_item_id, project_id) VALUES (?, ?, ?, ?, ?)",
		req.Kind, req.Description, req.RequesterID, req.WorkItemID, req.ProjectID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read request id: %w", err)
	}
	return id, nil
}

// ListByWorkItem returns the requests on a work item visible to role, oldest first.
func (l *RequestLedger) ListByWorkItem(ctx context.Context, role workflow.Role, workItemID int64) ([]*secondary.RequestRecord, error) {
	filter, extra := roleFilter(role)
	return l.list(ctx, requestSelect+" WHERE r.work_item_id = ?"+filter, append([]any{workItemID}, extra...)...)
}

// ListByProject returns the requests in a project visible to role, oldest first.
func (l *RequestLedger) ListByProject(ctx context.Context, role workflow.Role, projectID int64) ([]*secondary.RequestRecord, error) {
	filter, extra := roleFilter(role)
	return l.list(ctx, requestSelect+" WHERE r.project_id = ?"+filter, append([]any{projectID}, extra...)...)
}

func (l *RequestLedger) list(ctx context.Context, query string, args ...any) ([]*secondary.RequestRecord, error) {
	rows, err := conn(ctx, l.db).QueryContext(ctx, query+" ORDER BY r.created_at ASC, r.id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*secondary.RequestRecord
	for rows.Next() {
		record, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, record)
	}
	return requests, rows.Err()
}

// Update overwrites the kind, description, work item and project of a request.
func (l *RequestLedger) Update(ctx context.Context, req *secondary.RequestRecord) error {
	result, err := conn(ctx, l.db).ExecContext(ctx,
		"UPDATE operation_requests SET kind = ?, description = ?, work_item_id = ?, project_id = ? WHERE id = ?",
		req.Kind, req.Description, req.WorkItemID, req.ProjectID, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("", "request %d not found", req.ID)
	}
	return nil
}

// DeleteByWorkItem removes the requests on a work item visible to role.
func (l *RequestLedger) DeleteByWorkItem(ctx context.Context, role workflow.Role, workItemID int64) (int64, error) {
	query := "DELETE FROM operation_requests WHERE work_item_id = ?"
	args := []any{workItemID}
	if !role.IsOwner() {
		query += " AND requester_id IN (SELECT id FROM users WHERE username = ?)"
		args = append(args, role.Username())
	}

	result, err := conn(ctx, l.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requests: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Ensure RequestLedger implements the interface
var _ secondary.RequestLedger = (*RequestLedger)(nil)

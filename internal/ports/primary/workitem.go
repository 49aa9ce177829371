package primary

import (
	"context"
	"time"
)

// WorkItemService defines the primary port for owner-side work item management.
type WorkItemService interface {
	// CreateWorkItem creates a pending work item in a project the caller owns.
	CreateWorkItem(ctx context.Context, req CreateWorkItemRequest) (*WorkItem, error)

	// UpdateWorkItem applies a partial edit. Lifecycle fields are never changed.
	UpdateWorkItem(ctx context.Context, req UpdateWorkItemRequest) (*WorkItem, error)

	// DeleteWorkItem soft deletes a work item and clears its pending requests.
	DeleteWorkItem(ctx context.Context, id int64) error

	// GetWorkItem retrieves a work item by ID.
	GetWorkItem(ctx context.Context, id int64) (*WorkItem, error)

	// GetWorkItemByTitle retrieves a work item by title.
	GetWorkItemByTitle(ctx context.Context, title string) (*WorkItem, error)

	// ListProjectWorkItems lists the work items of a project.
	ListProjectWorkItems(ctx context.Context, projectID int64) ([]*WorkItem, error)

	// ListUserWorkItems lists the work items of a project assigned to a user.
	ListUserWorkItems(ctx context.Context, projectID int64, username string) ([]*WorkItem, error)

	// History lists audit entries recorded for a work item, newest first.
	History(ctx context.Context, id int64) ([]*AuditEntry, error)
}

// CreateWorkItemRequest contains parameters for creating a work item.
type CreateWorkItemRequest struct {
	ProjectID   int64
	Title       string
	Description string
	Priority    int
	Deadline    time.Time
}

// UpdateWorkItemRequest contains parameters for editing a work item.
// Empty strings, zero numbers and a zero deadline leave the stored value untouched.
type UpdateWorkItemRequest struct {
	ID          int64
	Title       string
	Description string
	Priority    int
	Deadline    time.Time
	ProjectID   int64
}

// WorkItem represents a work item at the port boundary.
type WorkItem struct {
	ID               int64
	Title            string
	Description      string
	Priority         int
	Status           string
	Deadline         time.Time
	AssignReason     string
	UnassignReason   string
	CompletionReason string
	CreatorID        int64
	Creator          string
	AssigneeID       int64 // 0 when unassigned
	Assignee         string
	ProjectID        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AuditEntry represents one recorded change at the port boundary.
type AuditEntry struct {
	Timestamp string
	Actor     string
	Action    string
	FieldName string
	OldValue  string
	NewValue  string
}

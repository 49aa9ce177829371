// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/example/taskgate/internal/core/workflow"
)

// WorkItemRepository defines the secondary port for work item persistence.
// Soft-deleted items are invisible to every read.
type WorkItemRepository interface {
	// Create persists a new work item and returns its ID.
	Create(ctx context.Context, item *WorkItemRecord) (int64, error)

	// GetByID retrieves a live work item by its ID.
	GetByID(ctx context.Context, id int64) (*WorkItemRecord, error)

	// GetByTitle retrieves a live work item by its title.
	GetByTitle(ctx context.Context, title string) (*WorkItemRecord, error)

	// List retrieves live work items matching the given filters.
	List(ctx context.Context, filters WorkItemFilters) ([]*WorkItemRecord, error)

	// Update applies a partial edit. Zero-valued fields are left untouched.
	// Lifecycle fields are never written by Update.
	Update(ctx context.Context, item *WorkItemRecord) error

	// ApplyTransition writes the lifecycle portion of a work item.
	ApplyTransition(ctx context.Context, id int64, state workflow.ItemState) error

	// SoftDelete flags a work item as deleted.
	SoftDelete(ctx context.Context, id int64) error

	// TitleTaken reports whether a live work item other than excludeID uses title.
	TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error)
}

// WorkItemRecord represents a work item as stored in persistence.
type WorkItemRecord struct {
	ID               int64
	Title            string
	Description      string
	Priority         int
	Status           string
	Deadline         time.Time
	AssignReason     *string
	UnassignReason   *string
	CompletionReason *string
	CreatorID        int64
	CreatorName      string // read-only, joined from users
	AssigneeID       *int64
	AssigneeName     string // read-only, joined from users
	ProjectID        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// State returns the lifecycle portion of the record.
func (r *WorkItemRecord) State() workflow.ItemState {
	return workflow.ItemState{
		Status:           workflow.Status(r.Status),
		AssigneeID:       r.AssigneeID,
		AssignReason:     r.AssignReason,
		UnassignReason:   r.UnassignReason,
		CompletionReason: r.CompletionReason,
	}
}

// WorkItemFilters contains filter options for querying work items.
type WorkItemFilters struct {
	ProjectID  int64
	AssigneeID int64
	Status     string
}

// RequestLedger defines the secondary port for pending operation requests.
// Every query is scoped by a Role: owners see all rows, members only their own.
type RequestLedger interface {
	// Create persists a new request and returns its ID.
	Create(ctx context.Context, req *RequestRecord) (int64, error)

	// ListByWorkItem returns the requests on a work item visible to role,
	// oldest first.
	ListByWorkItem(ctx context.Context, role workflow.Role, workItemID int64) ([]*RequestRecord, error)

	// ListByProject returns the requests in a project visible to role,
	// oldest first.
	ListByProject(ctx context.Context, role workflow.Role, projectID int64) ([]*RequestRecord, error)

	// Update overwrites the kind, description, work item and project of a request.
	Update(ctx context.Context, req *RequestRecord) error

	// DeleteByWorkItem removes the requests on a work item visible to role
	// and returns how many rows were removed.
	DeleteByWorkItem(ctx context.Context, role workflow.Role, workItemID int64) (int64, error)
}

// RequestRecord represents an operation request as stored in persistence.
type RequestRecord struct {
	ID            int64
	Kind          string
	Description   string
	RequesterID   int64
	RequesterName string // read-only, joined from users
	WorkItemID    int64
	ProjectID     int64
	CreatedAt     time.Time
}

// Transactor runs a unit of work inside a single storage transaction.
// Repositories called with the context handed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ItemLocker provides per-work-item mutual exclusion.
type ItemLocker interface {
	// Lock blocks until the lock for workItemID is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, workItemID int64) (func(), error)
}

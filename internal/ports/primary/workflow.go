// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI drives the application.
package primary

import (
	"context"
	"time"
)

// WorkflowService defines the primary port for the request/approval workflow.
type WorkflowService interface {
	// FileRequest records a member's ask to assign, unassign or complete a work item.
	FileRequest(ctx context.Context, req FileRequestInput) (*Request, error)

	// WithdrawRequest removes the caller's request on a work item.
	// Owners remove every request on the item.
	WithdrawRequest(ctx context.Context, workItemID int64) error

	// EditRequest applies a partial edit to the caller's own request on a work item.
	EditRequest(ctx context.Context, workItemID int64, patch RequestPatch) (*Request, error)

	// ApproveAssign assigns a pending work item to the requester of a pending assign request.
	// An empty targetUsername selects the oldest assign request on the item.
	ApproveAssign(ctx context.Context, workItemID int64, targetUsername string) (*WorkItem, error)

	// ApproveUnassign returns an in-progress work item to pending.
	ApproveUnassign(ctx context.Context, workItemID int64, targetUsername string) (*WorkItem, error)

	// ApproveComplete marks an in-progress work item completed.
	ApproveComplete(ctx context.Context, workItemID int64, targetUsername string) (*WorkItem, error)

	// ListRequests lists the requests in a project or on a work item visible to the caller.
	ListRequests(ctx context.Context, scope RequestScope, id int64) ([]*Request, error)
}

// RequestScope selects what ListRequests lists.
type RequestScope string

const (
	ScopeProject  RequestScope = "project"
	ScopeWorkItem RequestScope = "work_item"
)

// FileRequestInput contains parameters for filing a request.
type FileRequestInput struct {
	Kind        string
	Description string
	WorkItemID  int64
	ProjectID   int64
}

// RequestPatch contains the fields of a request edit.
// Empty strings and zero IDs leave the stored value untouched.
type RequestPatch struct {
	Kind        string
	Description string
	WorkItemID  int64
	ProjectID   int64
}

// IsEmpty reports whether the patch changes nothing.
func (p RequestPatch) IsEmpty() bool {
	return p == RequestPatch{}
}

// Request represents an operation request at the port boundary.
type Request struct {
	ID          int64
	Kind        string
	Description string
	RequesterID int64
	Requester   string
	WorkItemID  int64
	ProjectID   int64
	CreatedAt   time.Time
}

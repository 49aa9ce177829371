package secondary

import (
	"context"
	"time"
)

// Workflow event types.
const (
	EventRequestFiled     = "request.filed"
	EventRequestEdited    = "request.edited"
	EventRequestWithdrawn = "request.withdrawn"
	EventItemAssigned     = "item.assigned"
	EventItemUnassigned   = "item.unassigned"
	EventItemCompleted    = "item.completed"
)

// EventPublisher publishes workflow events after a unit of work commits.
type EventPublisher interface {
	Publish(ctx context.Context, event WorkflowEvent) error
}

// WorkflowEvent describes a committed change in the workflow.
type WorkflowEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	WorkItemID int64     `json:"work_item_id"`
	ProjectID  int64     `json:"project_id"`
	Actor      string    `json:"actor"`
	Subject    string    `json:"subject,omitempty"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

package app

import (
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
)

func recordToWorkItem(r *secondary.WorkItemRecord) *primary.WorkItem {
	w := &primary.WorkItem{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Deadline:    r.Deadline,
		CreatorID:   r.CreatorID,
		Creator:     r.CreatorName,
		Assignee:    r.AssigneeName,
		ProjectID:   r.ProjectID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AssigneeID != nil {
		w.AssigneeID = *r.AssigneeID
	}
	if r.AssignReason != nil {
		w.AssignReason = *r.AssignReason
	}
	if r.UnassignReason != nil {
		w.UnassignReason = *r.UnassignReason
	}
	if r.CompletionReason != nil {
		w.CompletionReason = *r.CompletionReason
	}
	return w
}

func recordsToWorkItems(records []*secondary.WorkItemRecord) []*primary.WorkItem {
	items := make([]*primary.WorkItem, len(records))
	for i, r := range records {
		items[i] = recordToWorkItem(r)
	}
	return items
}

func recordToRequest(r *secondary.RequestRecord) *primary.Request {
	return &primary.Request{
		ID:          r.ID,
		Kind:        r.Kind,
		Description: r.Description,
		RequesterID: r.RequesterID,
		Requester:   r.RequesterName,
		WorkItemID:  r.WorkItemID,
		ProjectID:   r.ProjectID,
		CreatedAt:   r.CreatedAt,
	}
}

func recordsToRequests(records []*secondary.RequestRecord) []*primary.Request {
	requests := make([]*primary.Request, len(records))
	for i, r := range records {
		requests[i] = recordToRequest(r)
	}
	return requests
}

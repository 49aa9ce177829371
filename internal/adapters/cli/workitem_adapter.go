package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/taskgate/internal/ports/primary"
)

// WorkItemAdapter translates CLI operations to WorkItemService calls.
type WorkItemAdapter struct {
	service primary.WorkItemService
	out     io.Writer
}

// NewWorkItemAdapter creates a new WorkItemAdapter with the given service.
func NewWorkItemAdapter(service primary.WorkItemService, out io.Writer) *WorkItemAdapter {
	return &WorkItemAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a work item.
func (a *WorkItemAdapter) Create(ctx context.Context, req primary.CreateWorkItemRequest) error {
	item, err := a.service.CreateWorkItem(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Created work item %d: %s\n", check(), item.ID, item.Title)
	return nil
}

// Update applies a partial edit.
func (a *WorkItemAdapter) Update(ctx context.Context, req primary.UpdateWorkItemRequest) error {
	if req.Title == "" && req.Description == "" && req.Priority == 0 && req.Deadline.IsZero() && req.ProjectID == 0 {
		return fmt.Errorf("must specify at least one of --title, --description, --priority, --deadline or --project")
	}

	item, err := a.service.UpdateWorkItem(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Work item %d updated\n", check(), item.ID)
	return nil
}

// Delete soft deletes a work item.
func (a *WorkItemAdapter) Delete(ctx context.Context, id int64) error {
	if err := a.service.DeleteWorkItem(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Work item %d deleted\n", check(), id)
	return nil
}

// Show displays a work item by ID, or by title when id is zero.
func (a *WorkItemAdapter) Show(ctx context.Context, id int64, title string) error {
	var (
		item *primary.WorkItem
		err  error
	)
	if id != 0 {
		item, err = a.service.GetWorkItem(ctx, id)
	} else {
		item, err = a.service.GetWorkItemByTitle(ctx, title)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nWork item: %d\n", item.ID)
	fmt.Fprintf(a.out, "Title:     %s\n", item.Title)
	fmt.Fprintf(a.out, "Status:    %s\n", statusLabel(item.Status))
	fmt.Fprintf(a.out, "Priority:  %d\n", item.Priority)
	fmt.Fprintf(a.out, "Deadline:  %s\n", formatTime(item.Deadline))
	fmt.Fprintf(a.out, "Project:   %d\n", item.ProjectID)
	fmt.Fprintf(a.out, "Creator:   %s\n", item.Creator)
	fmt.Fprintf(a.out, "Assignee:  %s\n", orDash(item.Assignee))
	if item.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", item.Description)
	}
	if item.AssignReason != "" {
		fmt.Fprintf(a.out, "Assign reason:     %s\n", item.AssignReason)
	}
	if item.UnassignReason != "" {
		fmt.Fprintf(a.out, "Unassign reason:   %s\n", item.UnassignReason)
	}
	if item.CompletionReason != "" {
		fmt.Fprintf(a.out, "Completion reason: %s\n", item.CompletionReason)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", formatTime(item.CreatedAt))
	fmt.Fprintln(a.out)
	return nil
}

// List lists the work items of a project, optionally only those assigned to assignee.
func (a *WorkItemAdapter) List(ctx context.Context, projectID int64, assignee string) error {
	var (
		items []*primary.WorkItem
		err   error
	)
	if assignee != "" {
		items, err = a.service.ListUserWorkItems(ctx, projectID, assignee)
	} else {
		items, err = a.service.ListProjectWorkItems(ctx, projectID)
	}
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No work items found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIO\tASSIGNEE\tDEADLINE\tTITLE")
	fmt.Fprintln(w, "--\t------\t----\t--------\t--------\t-----")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			it.ID, it.Status, it.Priority, orDash(it.Assignee), formatTime(it.Deadline), it.Title)
	}
	return w.Flush()
}

// History prints the audit trail of a work item.
func (a *WorkItemAdapter) History(ctx context.Context, id int64) error {
	entries, err := a.service.History(ctx, id)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No history found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tFIELD\tOLD\tNEW")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp, orDash(e.Actor), e.Action, orDash(e.FieldName), orDash(e.OldValue), orDash(e.NewValue))
	}
	return w.Flush()
}

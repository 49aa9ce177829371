package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/taskgate/internal/ports/primary"
)

// WorkflowAdapter translates CLI operations to WorkflowService calls.
type WorkflowAdapter struct {
	service primary.WorkflowService
	out     io.Writer
}

// NewWorkflowAdapter creates a new WorkflowAdapter with the given service.
func NewWorkflowAdapter(service primary.WorkflowService, out io.Writer) *WorkflowAdapter {
	return &WorkflowAdapter{
		service: service,
		out:     out,
	}
}

// File files a request on a work item.
func (a *WorkflowAdapter) File(ctx context.Context, in primary.FileRequestInput) error {
	req, err := a.service.FileRequest(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Filed %s request on work item %d\n", check(), kindLabel(req.Kind), req.WorkItemID)
	return nil
}

// Withdraw withdraws the caller's request (or, for owners, every request) on a work item.
func (a *WorkflowAdapter) Withdraw(ctx context.Context, workItemID int64) error {
	if err := a.service.WithdrawRequest(ctx, workItemID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Withdrew requests on work item %d\n", check(), workItemID)
	return nil
}

// Edit applies a partial edit to the caller's request on a work item.
func (a *WorkflowAdapter) Edit(ctx context.Context, workItemID int64, patch primary.RequestPatch) error {
	req, err := a.service.EditRequest(ctx, workItemID, patch)
	if err != nil {
		return err
	}

	if patch.IsEmpty() {
		fmt.Fprintf(a.out, "Nothing to change on request %d\n", req.ID)
		return nil
	}
	fmt.Fprintf(a.out, "%s Request %d updated: %s on work item %d\n", check(), req.ID, kindLabel(req.Kind), req.WorkItemID)
	return nil
}

// Approve approves a request of kind (assign, unassign or completion).
func (a *WorkflowAdapter) Approve(ctx context.Context, kind string, workItemID int64, target string) error {
	var (
		item *primary.WorkItem
		err  error
	)
	switch kind {
	case "assign":
		item, err = a.service.ApproveAssign(ctx, workItemID, target)
	case "unassign":
		item, err = a.service.ApproveUnassign(ctx, workItemID, target)
	case "completion", "complete":
		item, err = a.service.ApproveComplete(ctx, workItemID, target)
	default:
		return fmt.Errorf("unknown approval %q", kind)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Work item %d is now %s", check(), item.ID, statusLabel(item.Status))
	if item.Assignee != "" {
		fmt.Fprintf(a.out, " (assignee: %s)", item.Assignee)
	}
	fmt.Fprintln(a.out)
	return nil
}

// List lists the requests visible to the caller.
func (a *WorkflowAdapter) List(ctx context.Context, scope primary.RequestScope, id int64) error {
	requests, err := a.service.ListRequests(ctx, scope, id)
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		fmt.Fprintln(a.out, "No requests found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tITEM\tREQUESTER\tFILED\tDESCRIPTION")
	fmt.Fprintln(w, "--\t----\t----\t---------\t-----\t-----------")
	for _, r := range requests {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.WorkItemID, r.Requester, formatTime(r.CreatedAt), r.Description)
	}
	return w.Flush()
}

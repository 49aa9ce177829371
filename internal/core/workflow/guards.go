package workflow

import (
	"fmt"

	"github.com/example/taskgate/internal/errs"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    errs.Kind
	Reason  string
}

// Error converts the guard result to a classified error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &errs.Error{Kind: r.Kind, Reason: r.Reason}
}

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(kind errs.Kind, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// FileRequestContext provides context for filing an operation request.
type FileRequestContext struct {
	WorkItemID       int64
	ItemProjectID    int64
	RequestProjectID int64
	Kind             RequestKind
	Description      string
	CallerUsername   string
	IsMember         bool
	IsAssignee       bool
	HasAssignee      bool
	HasPriorRequest  bool

	AssignReasonSet     bool
	UnassignReasonSet   bool
	CompletionReasonSet bool
}

// CanFileRequest evaluates whether a member may file a request.
// Rules:
// - Description must be present
// - Request must target the work item's own project
// - Assign: caller is a member, item unassigned, no prior request, no reason recorded yet
// - Unassign/Completion: caller is the assignee, no prior request, item was assigned and not released
func CanFileRequest(ctx FileRequestContext) GuardResult {
	if ctx.Description == "" {
		return deny(errs.KindInvalidState, "request description is required")
	}
	if ctx.RequestProjectID != ctx.ItemProjectID {
		return deny(errs.KindInvalidState, "work item %d does not belong to project %d", ctx.WorkItemID, ctx.RequestProjectID)
	}

	switch ctx.Kind {
	case KindAssign:
		if !ctx.IsMember {
			return deny(errs.KindUnauthorized, "user %s is not a member of project %d", ctx.CallerUsername, ctx.ItemProjectID)
		}
		if ctx.HasAssignee {
			return deny(errs.KindInvalidState, "work item %d is already assigned", ctx.WorkItemID)
		}
		if ctx.HasPriorRequest {
			return priorRequest(ctx)
		}
		if ctx.AssignReasonSet || ctx.UnassignReasonSet || ctx.CompletionReasonSet {
			return deny(errs.KindInvalidState, "work item %d has already been through an assignment cycle", ctx.WorkItemID)
		}
		return allow()

	case KindUnassign, KindCompletion:
		if !ctx.IsAssignee {
			return deny(errs.KindUnauthorized, "user %s is not the assignee of work item %d", ctx.CallerUsername, ctx.WorkItemID)
		}
		if ctx.HasPriorRequest {
			return priorRequest(ctx)
		}
		if !ctx.AssignReasonSet {
			return deny(errs.KindInvalidState, "work item %d was never assigned through a request", ctx.WorkItemID)
		}
		if ctx.UnassignReasonSet || ctx.CompletionReasonSet {
			return deny(errs.KindInvalidState, "work item %d has already been released or completed", ctx.WorkItemID)
		}
		return allow()

	default:
		return deny(errs.KindInvalidState, "unknown request kind %q", ctx.Kind)
	}
}

func priorRequest(ctx FileRequestContext) GuardResult {
	return deny(errs.KindInvalidState,
		"user %s already has a pending request on work item %d\nWithdraw or edit it first with: taskgate request withdraw %d",
		ctx.CallerUsername, ctx.WorkItemID, ctx.WorkItemID)
}

// ApproveContext provides context for an owner's approval.
type ApproveContext struct {
	WorkItemID       int64
	Kind             RequestKind
	IsOwner          bool
	TargetUsername   string // empty means "any requester" for assign
	TargetExists     bool
	Status           Status
	HasAssignee      bool
	TargetIsAssignee bool
	RequestFound     bool
	FoundKind        RequestKind
}

// CanApprove evaluates whether the owner may approve a pending request.
// Rules:
// - Caller must own the project
// - Named target user must exist
// - Assign: item pending and unassigned
// - Unassign/Completion: target named, target is the assignee, item in progress
// - A pending request of the matching kind must exist
func CanApprove(ctx ApproveContext) GuardResult {
	if !ctx.IsOwner {
		return deny(errs.KindUnauthorized, "only the project owner can approve %s requests", ctx.Kind)
	}
	if ctx.TargetUsername != "" && !ctx.TargetExists {
		return deny(errs.KindNotFound, "user %s not found", ctx.TargetUsername)
	}

	switch ctx.Kind {
	case KindAssign:
		if ctx.HasAssignee {
			return deny(errs.KindInvalidState, "work item %d is already assigned to another member", ctx.WorkItemID)
		}
		if ctx.Status != StatusPending {
			return deny(errs.KindInvalidState, "can only assign pending work items (current status: %s)", ctx.Status)
		}
	case KindUnassign, KindCompletion:
		if ctx.TargetUsername == "" {
			return deny(errs.KindInvalidState, "target username is required to approve %s", ctx.Kind)
		}
		if !ctx.TargetIsAssignee {
			return deny(errs.KindInvalidState, "user %s is not the assignee of work item %d", ctx.TargetUsername, ctx.WorkItemID)
		}
		if ctx.Status != StatusInProgress {
			return deny(errs.KindInvalidState, "can only %s in_progress work items (current status: %s)", verb(ctx.Kind), ctx.Status)
		}
	default:
		return deny(errs.KindInvalidState, "unknown request kind %q", ctx.Kind)
	}

	if !ctx.RequestFound || ctx.FoundKind != ctx.Kind {
		return deny(errs.KindNotFound, "%s request not found for work item %d", ctx.Kind, ctx.WorkItemID)
	}

	return allow()
}

func verb(kind RequestKind) string {
	if kind == KindCompletion {
		return "complete"
	}
	return string(kind)
}

// WithdrawContext provides context for removing ledger rows.
type WithdrawContext struct {
	WorkItemID   int64
	Role         Role
	VisibleCount int
}

// CanWithdraw evaluates whether there is anything to withdraw for the role.
func CanWithdraw(ctx WithdrawContext) GuardResult {
	if ctx.VisibleCount > 0 {
		return allow()
	}
	if ctx.Role.IsOwner() {
		return deny(errs.KindNotFound, "no requests found for work item %d", ctx.WorkItemID)
	}
	return deny(errs.KindNotFound, "no request from %s found for work item %d", ctx.Role.Username(), ctx.WorkItemID)
}

// EditRequestContext provides context for a requester editing their own request.
type EditRequestContext struct {
	WorkItemID             int64
	RequestFound           bool
	NewKind                string // empty when unchanged
	MovesWorkItem          bool
	TargetWorkItemID       int64
	TargetItemExists       bool
	TargetHasCallerRequest bool
	ProjectID              int64 // effective project after the edit
	TargetProjectID        int64 // project of the effective work item
}

// CanEditRequest evaluates a partial edit of an existing request.
// Rules:
// - The caller must have a request on the work item
// - A new kind must be a known kind
// - A new work item must exist and carry no other request from the caller
// - The effective project must match the effective work item's project
func CanEditRequest(ctx EditRequestContext) GuardResult {
	if !ctx.RequestFound {
		return deny(errs.KindNotFound, "request not found to update for work item %d", ctx.WorkItemID)
	}
	if ctx.NewKind != "" {
		if _, err := ParseRequestKind(ctx.NewKind); err != nil {
			return deny(errs.KindInvalidState, "%s", err.Error())
		}
	}
	if ctx.MovesWorkItem {
		if !ctx.TargetItemExists {
			return deny(errs.KindNotFound, "work item %d not found", ctx.TargetWorkItemID)
		}
		if ctx.TargetHasCallerRequest {
			return deny(errs.KindInvalidState, "a request already exists on work item %d", ctx.TargetWorkItemID)
		}
	}
	if ctx.ProjectID != ctx.TargetProjectID {
		return deny(errs.KindInvalidState, "work item does not belong to project %d", ctx.ProjectID)
	}
	return allow()
}

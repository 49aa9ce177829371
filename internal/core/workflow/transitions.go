package workflow

// ItemState is the lifecycle portion of a work item.
// Only approvals change it; owner edits never do.
type ItemState struct {
	Status           Status
	AssigneeID       *int64
	AssignReason     *string
	UnassignReason   *string
	CompletionReason *string
}

// ApplyApproval returns the state after approving a request of the given kind.
// The request description is recorded in the reason field matching the kind;
// reason fields of other kinds are carried over untouched.
func ApplyApproval(state ItemState, kind RequestKind, requesterID int64, description string) ItemState {
	next := state
	reason := description

	switch kind {
	case KindAssign:
		assignee := requesterID
		next.Status = StatusInProgress
		next.AssigneeID = &assignee
		next.AssignReason = &reason
	case KindUnassign:
		next.Status = StatusPending
		next.AssigneeID = nil
		next.UnassignReason = &reason
	case KindCompletion:
		next.Status = StatusCompleted
		next.CompletionReason = &reason
	}

	return next
}

// Consistent reports whether state satisfies the assignee invariant:
// pending items have no assignee and in-progress items have one.
func Consistent(state ItemState) bool {
	switch state.Status {
	case StatusPending:
		return state.AssigneeID == nil
	case StatusInProgress:
		return state.AssigneeID != nil
	default:
		return true
	}
}

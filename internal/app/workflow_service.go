package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
)

// WorkflowServiceImpl implements the WorkflowService interface.
//
// Every mutating operation runs as: resolve caller, lock the work item,
// begin a transaction, read, evaluate the guard, write, commit, unlock,
// then publish an event. Membership is asked fresh inside the critical section.
type WorkflowServiceImpl struct {
	items  secondary.WorkItemRepository
	ledger secondary.RequestLedger
	oracle secondary.MembershipOracle
	guard  itemGuard
	pub    publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(
	items secondary.WorkItemRepository,
	ledger secondary.RequestLedger,
	oracle secondary.MembershipOracle,
	tx secondary.Transactor,
	locker secondary.ItemLocker,
	events secondary.EventPublisher,
	logger *slog.Logger,
) *WorkflowServiceImpl {
	logger = orDefault(logger)
	return &WorkflowServiceImpl{
		items:  items,
		ledger: ledger,
		oracle: oracle,
		guard:  itemGuard{locker: locker, tx: tx},
		pub:    publisher{events: events, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// FileRequest records a member's ask to assign, unassign or complete a work item.
func (s *WorkflowServiceImpl) FileRequest(ctx context.Context, in primary.FileRequestInput) (_ *primary.Request, err error) {
	ctx, span := startSpan(ctx, "workflow.FileRequest", in.WorkItemID)
	defer func() { err = endSpan(span, "file request", err) }()

	kind, err := workflow.ParseRequestKind(in.Kind)
	if err != nil {
		return nil, errs.InvalidState("", "%s", err.Error())
	}

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *secondary.RequestRecord
	err = s.guard.run(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, in.WorkItemID)
		if err != nil {
			return err
		}

		isMember, err := s.oracle.IsProjectMember(ctx, item.ProjectID, caller.ID)
		if err != nil {
			return err
		}

		prior, err := s.ledger.ListByWorkItem(ctx, workflow.MemberRole(caller.Username), item.ID)
		if err != nil {
			return err
		}

		result := workflow.CanFileRequest(workflow.FileRequestContext{
			WorkItemID:          item.ID,
			ItemProjectID:       item.ProjectID,
			RequestProjectID:    in.ProjectID,
			Kind:                kind,
			Description:         in.Description,
			CallerUsername:      caller.Username,
			IsMember:            isMember,
			IsAssignee:          item.AssigneeID != nil && *item.AssigneeID == caller.ID,
			HasAssignee:         item.AssigneeID != nil,
			HasPriorRequest:     len(prior) > 0,
			AssignReasonSet:     item.AssignReason != nil,
			UnassignReasonSet:   item.UnassignReason != nil,
			CompletionReasonSet: item.CompletionReason != nil,
		})
		if !result.Allowed {
			return result.Error()
		}

		record := &secondary.RequestRecord{
			Kind:        string(kind),
			Description: in.Description,
			RequesterID: caller.ID,
			WorkItemID:  item.ID,
			ProjectID:   item.ProjectID,
		}
		id, err := s.ledger.Create(ctx, record)
		if err != nil {
			return err
		}

		record.ID = id
		record.RequesterName = caller.Username
		record.CreatedAt = s.now().UTC()
		created = record
		return nil
	}, in.WorkItemID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "request filed",
		"work_item", created.WorkItemID, "kind", created.Kind, "requester", caller.Username)
	s.pub.publish(ctx, s.event(secondary.EventRequestFiled, caller.Username, created.WorkItemID, created.ProjectID, func(e *secondary.WorkflowEvent) {
		e.Subject = string(kind)
		e.Reason = created.Description
	}))

	return recordToRequest(created), nil
}

// WithdrawRequest removes the caller's request on a work item.
// The project owner removes every request on the item.
func (s *WorkflowServiceImpl) WithdrawRequest(ctx context.Context, workItemID int64) (err error) {
	ctx, span := startSpan(ctx, "workflow.WithdrawRequest", workItemID)
	defer func() { err = endSpan(span, "withdraw request", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return err
	}

	var (
		removed   int64
		projectID int64
		role      workflow.Role
	)
	err = s.guard.run(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, workItemID)
		if err != nil {
			return err
		}
		projectID = item.ProjectID

		project, err := s.oracle.GetProject(ctx, item.ProjectID)
		if err != nil {
			return err
		}
		role = roleFor(project, caller)

		visible, err := s.ledger.ListByWorkItem(ctx, role, workItemID)
		if err != nil {
			return err
		}

		result := workflow.CanWithdraw(workflow.WithdrawContext{
			WorkItemID:   workItemID,
			Role:         role,
			VisibleCount: len(visible),
		})
		if !result.Allowed {
			return result.Error()
		}

		removed, err = s.ledger.DeleteByWorkItem(ctx, role, workItemID)
		return err
	}, workItemID)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "requests withdrawn",
		"work_item", workItemID, "role", role.String(), "removed", removed)
	s.pub.publish(ctx, s.event(secondary.EventRequestWithdrawn, caller.Username, workItemID, projectID, nil))
	return nil
}

// EditRequest applies a partial edit to the caller's own request on a work item.
// An empty patch returns the request unchanged.
func (s *WorkflowServiceImpl) EditRequest(ctx context.Context, workItemID int64, patch primary.RequestPatch) (_ *primary.Request, err error) {
	ctx, span := startSpan(ctx, "workflow.EditRequest", workItemID)
	defer func() { err = endSpan(span, "edit request", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	role := workflow.MemberRole(caller.Username)

	var (
		edited  *secondary.RequestRecord
		changed bool
	)
	err = s.guard.run(ctx, func(ctx context.Context) error {
		rows, err := s.ledger.ListByWorkItem(ctx, role, workItemID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return workflow.CanEditRequest(workflow.EditRequestContext{WorkItemID: workItemID}).Error()
		}
		current := rows[0]

		if patch.IsEmpty() {
			edited = current
			return nil
		}

		next := *current
		if patch.Kind != "" {
			next.Kind = patch.Kind
		}
		if patch.Description != "" {
			next.Description = patch.Description
		}
		if patch.WorkItemID != 0 {
			next.WorkItemID = patch.WorkItemID
		}
		if patch.ProjectID != 0 {
			next.ProjectID = patch.ProjectID
		}
		moves := next.WorkItemID != current.WorkItemID

		check := workflow.EditRequestContext{
			WorkItemID:       workItemID,
			RequestFound:     true,
			NewKind:          patch.Kind,
			MovesWorkItem:    moves,
			TargetWorkItemID: next.WorkItemID,
			ProjectID:        next.ProjectID,
		}

		target, err := s.items.GetByID(ctx, next.WorkItemID)
		switch {
		case err == nil:
			check.TargetItemExists = true
			check.TargetProjectID = target.ProjectID
		case errs.KindOf(err) != errs.KindNotFound:
			return err
		}

		if moves && check.TargetItemExists {
			existing, err := s.ledger.ListByWorkItem(ctx, role, next.WorkItemID)
			if err != nil {
				return err
			}
			check.TargetHasCallerRequest = len(existing) > 0
		}

		if result := workflow.CanEditRequest(check); !result.Allowed {
			return result.Error()
		}

		if err := s.ledger.Update(ctx, &next); err != nil {
			return err
		}
		edited = &next
		changed = true
		return nil
	}, workItemID, patch.WorkItemID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.InfoContext(ctx, "request edited", "request", edited.ID, "work_item", edited.WorkItemID, "kind", edited.Kind)
		s.pub.publish(ctx, s.event(secondary.EventRequestEdited, caller.Username, edited.WorkItemID, edited.ProjectID, func(e *secondary.WorkflowEvent) {
			e.Subject = edited.Kind
			e.Reason = edited.Description
		}))
	}
	return recordToRequest(edited), nil
}

// ApproveAssign assigns a pending work item to the requester of a pending assign request.
func (s *WorkflowServiceImpl) ApproveAssign(ctx context.Context, workItemID int64, targetUsername string) (*primary.WorkItem, error) {
	return s.approve(ctx, workflow.KindAssign, workItemID, targetUsername)
}

// ApproveUnassign returns an in-progress work item to pending.
func (s *WorkflowServiceImpl) ApproveUnassign(ctx context.Context, workItemID int64, targetUsername string) (*primary.WorkItem, error) {
	return s.approve(ctx, workflow.KindUnassign, workItemID, targetUsername)
}

// ApproveComplete marks an in-progress work item completed.
func (s *WorkflowServiceImpl) ApproveComplete(ctx context.Context, workItemID int64, targetUsername string) (*primary.WorkItem, error) {
	return s.approve(ctx, workflow.KindCompletion, workItemID, targetUsername)
}

func (s *WorkflowServiceImpl) approve(ctx context.Context, kind workflow.RequestKind, workItemID int64, targetUsername string) (_ *primary.WorkItem, err error) {
	ctx, span := startSpan(ctx, "workflow.Approve."+string(kind), workItemID)
	defer func() { err = endSpan(span, "approve "+string(kind), err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var (
		updated  *secondary.WorkItemRecord
		approved *secondary.RequestRecord
	)
	err = s.guard.run(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, workItemID)
		if err != nil {
			return err
		}

		project, err := s.oracle.GetProject(ctx, item.ProjectID)
		if err != nil {
			return err
		}

		check := workflow.ApproveContext{
			WorkItemID:     workItemID,
			Kind:           kind,
			IsOwner:        project.OwnerID == caller.ID,
			TargetUsername: targetUsername,
			Status:         workflow.Status(item.Status),
			HasAssignee:    item.AssigneeID != nil,
		}
		if !check.IsOwner {
			return workflow.CanApprove(check).Error()
		}

		if targetUsername != "" {
			target, err := s.oracle.FindUserByName(ctx, targetUsername)
			switch {
			case err == nil:
				check.TargetExists = true
				check.TargetIsAssignee = item.AssigneeID != nil && *item.AssigneeID == target.ID
			case errs.KindOf(err) != errs.KindNotFound:
				return err
			}
		}

		approved, err = s.pendingRequest(ctx, kind, workItemID, targetUsername)
		if err != nil {
			return err
		}
		if approved != nil {
			check.RequestFound = true
			check.FoundKind = workflow.RequestKind(approved.Kind)
		}

		if result := workflow.CanApprove(check); !result.Allowed {
			return result.Error()
		}

		next := workflow.ApplyApproval(item.State(), kind, approved.RequesterID, approved.Description)
		if !workflow.Consistent(next) {
			return errs.InvalidState("", "approving %s would leave work item %d inconsistent", kind, workItemID)
		}
		if err := s.items.ApplyTransition(ctx, workItemID, next); err != nil {
			return err
		}

		// Resolving a cycle invalidates every competing request on the item
		if _, err := s.ledger.DeleteByWorkItem(ctx, workflow.OwnerRole(), workItemID); err != nil {
			return err
		}

		updated, err = s.items.GetByID(ctx, workItemID)
		return err
	}, workItemID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "request approved",
		"work_item", workItemID, "kind", kind, "requester", approved.RequesterName, "status", updated.Status)
	s.pub.publish(ctx, s.event(approvalEvent(kind), caller.Username, workItemID, updated.ProjectID, func(e *secondary.WorkflowEvent) {
		e.Subject = approved.RequesterName
		e.Status = updated.Status
		e.Reason = approved.Description
	}))

	return recordToWorkItem(updated), nil
}

// pendingRequest finds the request an approval consumes: the target's own
// request when a target is named, otherwise the oldest request of kind.
func (s *WorkflowServiceImpl) pendingRequest(ctx context.Context, kind workflow.RequestKind, workItemID int64, targetUsername string) (*secondary.RequestRecord, error) {
	if targetUsername != "" {
		rows, err := s.ledger.ListByWorkItem(ctx, workflow.MemberRole(targetUsername), workItemID)
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	}

	if kind != workflow.KindAssign {
		return nil, nil
	}
	rows, err := s.ledger.ListByWorkItem(ctx, workflow.OwnerRole(), workItemID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Kind == string(kind) {
			return r, nil
		}
	}
	return nil, nil
}

// ListRequests lists the requests in a project or on a work item visible to the caller.
func (s *WorkflowServiceImpl) ListRequests(ctx context.Context, scope primary.RequestScope, id int64) (_ []*primary.Request, err error) {
	ctx, span := startSpan(ctx, "workflow.ListRequests", 0)
	defer func() { err = endSpan(span, "list requests", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var records []*secondary.RequestRecord
	switch scope {
	case primary.ScopeProject:
		project, err := s.oracle.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		records, err = s.ledger.ListByProject(ctx, roleFor(project, caller), id)
		if err != nil {
			return nil, err
		}

	case primary.ScopeWorkItem:
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		project, err := s.oracle.GetProject(ctx, item.ProjectID)
		if err != nil {
			return nil, err
		}
		records, err = s.ledger.ListByWorkItem(ctx, roleFor(project, caller), id)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errs.InvalidState("", "unknown request scope %q (want project or work_item)", scope)
	}

	return recordsToRequests(records), nil
}

func (s *WorkflowServiceImpl) event(eventType, actor string, workItemID, projectID int64, fill func(*secondary.WorkflowEvent)) secondary.WorkflowEvent {
	e := secondary.WorkflowEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		WorkItemID: workItemID,
		ProjectID:  projectID,
		Actor:      actor,
		Timestamp:  s.now().UTC(),
	}
	if fill != nil {
		fill(&e)
	}
	return e
}

// roleFor derives the ledger view of caller in project.
func roleFor(project *secondary.ProjectRecord, caller *secondary.UserRecord) workflow.Role {
	if project.OwnerID == caller.ID {
		return workflow.OwnerRole()
	}
	return workflow.MemberRole(caller.Username)
}

func approvalEvent(kind workflow.RequestKind) string {
	switch kind {
	case workflow.KindAssign:
		return secondary.EventItemAssigned
	case workflow.KindUnassign:
		return secondary.EventItemUnassigned
	default:
		return secondary.EventItemCompleted
	}
}

// Ensure WorkflowServiceImpl implements the interface
var _ primary.WorkflowService = (*WorkflowServiceImpl)(nil)

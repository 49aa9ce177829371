package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/core/workitem"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
)

const entityWorkItem = "work_item"

// WorkItemServiceImpl implements the WorkItemService interface.
// It only writes fields disjoint from the lifecycle fields the workflow owns.
type WorkItemServiceImpl struct {
	items     secondary.WorkItemRepository
	ledger    secondary.RequestLedger
	oracle    secondary.MembershipOracle
	audit     secondary.AuditLogRepository
	logWriter secondary.LogWriter
	guard     itemGuard
	logger    *slog.Logger
}

// NewWorkItemService creates a new WorkItemService with injected dependencies.
func NewWorkItemService(
	items secondary.WorkItemRepository,
	ledger secondary.RequestLedger,
	oracle secondary.MembershipOracle,
	audit secondary.AuditLogRepository,
	logWriter secondary.LogWriter,
	tx secondary.Transactor,
	locker secondary.ItemLocker,
	logger *slog.Logger,
) *WorkItemServiceImpl {
	return &WorkItemServiceImpl{
		items:     items,
		ledger:    ledger,
		oracle:    oracle,
		audit:     audit,
		logWriter: logWriter,
		guard:     itemGuard{locker: locker, tx: tx},
		logger:    orDefault(logger),
	}
}

// CreateWorkItem creates a pending work item in a project the caller owns.
func (s *WorkItemServiceImpl) CreateWorkItem(ctx context.Context, req primary.CreateWorkItemRequest) (_ *primary.WorkItem, err error) {
	ctx, span := startSpan(ctx, "workitem.Create", 0)
	defer func() { err = endSpan(span, "create work item", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *secondary.WorkItemRecord
	err = s.guard.tx.WithinTx(ctx, func(ctx context.Context) error {
		project, err := s.oracle.GetProject(ctx, req.ProjectID)
		if err != nil {
			return err
		}

		taken, err := s.items.TitleTaken(ctx, req.Title, 0)
		if err != nil {
			return err
		}

		result := workitem.CanCreate(workitem.CreateContext{
			ProjectID:   req.ProjectID,
			IsOwner:     project.OwnerID == caller.ID,
			Title:       req.Title,
			TitleTaken:  taken,
			Description: req.Description,
			Priority:    req.Priority,
			HasDeadline: !req.Deadline.IsZero(),
		})
		if !result.Allowed {
			return result.Error()
		}

		id, err := s.items.Create(ctx, &secondary.WorkItemRecord{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Deadline:    req.Deadline,
			CreatorID:   caller.ID,
			ProjectID:   req.ProjectID,
		})
		if err != nil {
			return err
		}

		if err := s.logWriter.LogCreate(ctx, entityWorkItem, strconv.FormatInt(id, 10)); err != nil {
			return err
		}

		created, err = s.items.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "work item created", "work_item", created.ID, "project", created.ProjectID)
	return recordToWorkItem(created), nil
}

// UpdateWorkItem applies a partial owner edit. Moving the item to another
// project drops its pending requests, which belong to the old project.
func (s *WorkItemServiceImpl) UpdateWorkItem(ctx context.Context, req primary.UpdateWorkItemRequest) (_ *primary.WorkItem, err error) {
	ctx, span := startSpan(ctx, "workitem.Update", req.ID)
	defer func() { err = endSpan(span, "update work item", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var updated *secondary.WorkItemRecord
	err = s.guard.run(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		project, err := s.oracle.GetProject(ctx, item.ProjectID)
		if err != nil {
			return err
		}

		check := workitem.UpdateContext{
			WorkItemID:  item.ID,
			IsOwner:     project.OwnerID == caller.ID,
			Description: req.Description,
			Priority:    req.Priority,
		}

		if req.ProjectID != 0 && req.ProjectID != item.ProjectID {
			check.MovesProject = true
			target, err := s.oracle.GetProject(ctx, req.ProjectID)
			if err != nil {
				return err
			}
			check.OwnsTargetProject = target.OwnerID == caller.ID
		}

		if req.Title != "" && req.Title != item.Title {
			check.Title = req.Title
			check.TitleTaken, err = s.items.TitleTaken(ctx, req.Title, item.ID)
			if err != nil {
				return err
			}
		}

		if result := workitem.CanUpdate(check); !result.Allowed {
			return result.Error()
		}

		patch := &secondary.WorkItemRecord{
			ID:          item.ID,
			Title:       check.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Deadline:    req.Deadline,
		}
		if check.MovesProject {
			patch.ProjectID = req.ProjectID
		}
		if err := s.items.Update(ctx, patch); err != nil {
			return err
		}

		if check.MovesProject {
			if _, err := s.ledger.DeleteByWorkItem(ctx, workflow.OwnerRole(), item.ID); err != nil {
				return err
			}
		}

		if err := s.logChanges(ctx, item, patch); err != nil {
			return err
		}

		updated, err = s.items.GetByID(ctx, item.ID)
		return err
	}, req.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "work item updated", "work_item", updated.ID)
	return recordToWorkItem(updated), nil
}

// logChanges writes one audit entry per field the patch actually changes.
func (s *WorkItemServiceImpl) logChanges(ctx context.Context, before, patch *secondary.WorkItemRecord) error {
	id := strconv.FormatInt(before.ID, 10)
	type change struct{ field, old, new string }
	var changes []change

	if patch.Title != "" && patch.Title != before.Title {
		changes = append(changes, change{"title", before.Title, patch.Title})
	}
	if patch.Description != "" && patch.Description != before.Description {
		changes = append(changes, change{"description", before.Description, patch.Description})
	}
	if patch.Priority != 0 && patch.Priority != before.Priority {
		changes = append(changes, change{"priority", strconv.Itoa(before.Priority), strconv.Itoa(patch.Priority)})
	}
	if !patch.Deadline.IsZero() && !patch.Deadline.Equal(before.Deadline) {
		changes = append(changes, change{"deadline", before.Deadline.Format(time.RFC3339), patch.Deadline.Format(time.RFC3339)})
	}
	if patch.ProjectID != 0 && patch.ProjectID != before.ProjectID {
		changes = append(changes, change{"project_id", strconv.FormatInt(before.ProjectID, 10), strconv.FormatInt(patch.ProjectID, 10)})
	}

	for _, c := range changes {
		if err := s.logWriter.LogUpdate(ctx, entityWorkItem, id, c.field, c.old, c.new); err != nil {
			return err
		}
	}
	return nil
}

// DeleteWorkItem soft deletes a work item and clears its pending requests.
func (s *WorkItemServiceImpl) DeleteWorkItem(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "workitem.Delete", id)
	defer func() { err = endSpan(span, "delete work item", err) }()

	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return err
	}

	err = s.guard.run(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return err
		}

		project, err := s.oracle.GetProject(ctx, item.ProjectID)
		if err != nil {
			return err
		}

		result := workitem.CanDelete(workitem.DeleteContext{
			WorkItemID: id,
			IsOwner:    project.OwnerID == caller.ID,
		})
		if !result.Allowed {
			return result.Error()
		}

		if err := s.items.SoftDelete(ctx, id); err != nil {
			return err
		}
		if _, err := s.ledger.DeleteByWorkItem(ctx, workflow.OwnerRole(), id); err != nil {
			return err
		}
		return s.logWriter.LogDelete(ctx, entityWorkItem, strconv.FormatInt(id, 10))
	}, id)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "work item deleted", "work_item", id)
	return nil
}

// GetWorkItem retrieves a work item by ID.
func (s *WorkItemServiceImpl) GetWorkItem(ctx context.Context, id int64) (*primary.WorkItem, error) {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Wrap("get work item", err)
	}
	if err := s.requireMember(ctx, record.ProjectID, caller); err != nil {
		return nil, err
	}
	return recordToWorkItem(record), nil
}

// GetWorkItemByTitle retrieves a work item by title.
func (s *WorkItemServiceImpl) GetWorkItemByTitle(ctx context.Context, title string) (*primary.WorkItem, error) {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.items.GetByTitle(ctx, title)
	if err != nil {
		return nil, errs.Wrap("get work item", err)
	}
	if err := s.requireMember(ctx, record.ProjectID, caller); err != nil {
		return nil, err
	}
	return recordToWorkItem(record), nil
}

// ListProjectWorkItems lists the work items of a project.
func (s *WorkItemServiceImpl) ListProjectWorkItems(ctx context.Context, projectID int64) ([]*primary.WorkItem, error) {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, projectID, caller); err != nil {
		return nil, err
	}

	records, err := s.items.List(ctx, secondary.WorkItemFilters{ProjectID: projectID})
	if err != nil {
		return nil, errs.Wrap("list work items", err)
	}
	return recordsToWorkItems(records), nil
}

// ListUserWorkItems lists the work items of a project assigned to a user.
func (s *WorkItemServiceImpl) ListUserWorkItems(ctx context.Context, projectID int64, username string) ([]*primary.WorkItem, error) {
	caller, err := s.oracle.ResolveCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, projectID, caller); err != nil {
		return nil, err
	}

	user, err := s.oracle.FindUserByName(ctx, username)
	if err != nil {
		return nil, errs.Wrap("list work items", err)
	}

	records, err := s.items.List(ctx, secondary.WorkItemFilters{ProjectID: projectID, AssigneeID: user.ID})
	if err != nil {
		return nil, errs.Wrap("list work items", err)
	}
	return recordsToWorkItems(records), nil
}

// History lists audit entries recorded for a work item, newest first.
func (s *WorkItemServiceImpl) History(ctx context.Context, id int64) ([]*primary.AuditEntry, error) {
	item, err := s.GetWorkItem(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.audit.List(ctx, secondary.AuditLogFilters{
		EntityType: entityWorkItem,
		EntityID:   strconv.FormatInt(item.ID, 10),
	})
	if err != nil {
		return nil, errs.Wrap("work item history", err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.AuditEntry{
			Timestamp: r.Timestamp,
			Actor:     r.Actor,
			Action:    r.Action,
			FieldName: r.FieldName,
			OldValue:  r.OldValue,
			NewValue:  r.NewValue,
		}
	}
	return entries, nil
}

// requireMember fails with Unauthorized unless caller belongs to the project.
func (s *WorkItemServiceImpl) requireMember(ctx context.Context, projectID int64, caller *secondary.UserRecord) error {
	if _, err := s.oracle.GetProject(ctx, projectID); err != nil {
		return errs.Wrap("check membership", err)
	}
	ok, err := s.oracle.IsProjectMember(ctx, projectID, caller.ID)
	if err != nil {
		return errs.Wrap("check membership", err)
	}
	if !ok {
		return errs.Unauthorized("", "user %s is not a member of project %d", caller.Username, projectID)
	}
	return nil
}

// Ensure WorkItemServiceImpl implements the interface
var _ primary.WorkItemService = (*WorkItemServiceImpl)(nil)

// Package workitem contains the pure business logic for owner-side work item edits.
// Guards are pure functions that evaluate preconditions without side effects.
package workitem

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/taskgate/internal/errs"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MinPriority          = 1
	MaxPriority          = 100
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

func deny(kind errs.Kind, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CreateContext provides context for work item creation guards.
type CreateContext struct {
	ProjectID   int64
	IsOwner     bool
	Title       string
	TitleTaken  bool
	Description string
	Priority    int
	HasDeadline bool
}

// CanCreate evaluates whether a work item can be created.
// Rules:
// - Caller must own the project
// - Title required, bounded and unique among live items
// - Priority within range, deadline present
func CanCreate(ctx CreateContext) GuardResult {
	if !ctx.IsOwner {
		return deny(errs.KindUnauthorized, "you can not create work items for project %d", ctx.ProjectID)
	}
	if strings.TrimSpace(ctx.Title) == "" {
		return deny(errs.KindInvalidState, "work item title is required")
	}
	if r := checkFields(ctx.Title, ctx.Description, ctx.Priority); !r.Allowed {
		return r
	}
	if ctx.Priority == 0 {
		return deny(errs.KindInvalidState, "priority must be between %d and %d", MinPriority, MaxPriority)
	}
	if !ctx.HasDeadline {
		return deny(errs.KindInvalidState, "work item deadline is required")
	}
	if ctx.TitleTaken {
		return deny(errs.KindInvalidState, "a work item titled %q already exists", ctx.Title)
	}
	return GuardResult{Allowed: true}
}

// UpdateContext provides context for partial work item edits.
// Empty title/description and zero priority mean "unchanged".
type UpdateContext struct {
	WorkItemID        int64
	IsOwner           bool
	MovesProject      bool
	OwnsTargetProject bool
	Title             string
	TitleTaken        bool
	Description       string
	Priority          int
}

// CanUpdate evaluates whether an owner edit can be applied.
func CanUpdate(ctx UpdateContext) GuardResult {
	if !ctx.IsOwner {
		return deny(errs.KindUnauthorized, "you can't update work item %d", ctx.WorkItemID)
	}
	if ctx.MovesProject && !ctx.OwnsTargetProject {
		return deny(errs.KindUnauthorized, "you can't move work item %d to a project you don't own", ctx.WorkItemID)
	}
	if r := checkFields(ctx.Title, ctx.Description, ctx.Priority); !r.Allowed {
		return r
	}
	if ctx.TitleTaken {
		return deny(errs.KindInvalidState, "a work item titled %q already exists", ctx.Title)
	}
	return GuardResult{Allowed: true}
}

// DeleteContext provides context for soft deletes.
type DeleteContext struct {
	WorkItemID int64
	IsOwner    bool
}

// CanDelete evaluates whether a work item can be soft deleted.
func CanDelete(ctx DeleteContext) GuardResult {
	if !ctx.IsOwner {
		return deny(errs.KindUnauthorized, "you can't delete work item %d", ctx.WorkItemID)
	}
	return GuardResult{Allowed: true}
}

func checkFields(title, description string, priority int) GuardResult {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return deny(errs.KindInvalidState, "title exceeds %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return deny(errs.KindInvalidState, "description exceeds %d characters", MaxDescriptionLength)
	}
	if priority != 0 && (priority < MinPriority || priority > MaxPriority) {
		return deny(errs.KindInvalidState, "priority must be between %d and %d", MinPriority, MaxPriority)
	}
	return GuardResult{Allowed: true}
}

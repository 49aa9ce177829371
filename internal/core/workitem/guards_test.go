package workitem

import (
	"strings"
	"testing"

	"github.com/example/taskgate/internal/errs"
)

func TestCanCreate(t *testing.T) {
	valid := CreateContext{
		ProjectID:   10,
		IsOwner:     true,
		Title:       "Write release notes",
		Description: "for v2",
		Priority:    5,
		HasDeadline: true,
	}

	tests := []struct {
		name        string
		mutate      func(*CreateContext)
		wantAllowed bool
		wantKind    errs.Kind
		wantReason  string
	}{
		{
			name:        "owner creates valid item",
			mutate:      func(*CreateContext) {},
			wantAllowed: true,
		},
		{
			name:       "non-owner cannot create",
			mutate:     func(c *CreateContext) { c.IsOwner = false },
			wantKind:   errs.KindUnauthorized,
			wantReason: "you can not create work items for project 10",
		},
		{
			name:       "title required",
			mutate:     func(c *CreateContext) { c.Title = "  " },
			wantKind:   errs.KindInvalidState,
			wantReason: "work item title is required",
		},
		{
			name:       "title too long",
			mutate:     func(c *CreateContext) { c.Title = strings.Repeat("x", 101) },
			wantKind:   errs.KindInvalidState,
			wantReason: "title exceeds 100 characters",
		},
		{
			name:       "priority above range",
			mutate:     func(c *CreateContext) { c.Priority = 101 },
			wantKind:   errs.KindInvalidState,
			wantReason: "priority must be between 1 and 100",
		},
		{
			name:       "priority missing",
			mutate:     func(c *CreateContext) { c.Priority = 0 },
			wantKind:   errs.KindInvalidState,
			wantReason: "priority must be between 1 and 100",
		},
		{
			name:       "deadline required",
			mutate:     func(c *CreateContext) { c.HasDeadline = false },
			wantKind:   errs.KindInvalidState,
			wantReason: "work item deadline is required",
		},
		{
			name:       "duplicate title",
			mutate:     func(c *CreateContext) { c.TitleTaken = true },
			wantKind:   errs.KindInvalidState,
			wantReason: `a work item titled "Write release notes" already exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := valid
			tt.mutate(&ctx)
			result := CanCreate(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if tt.wantAllowed {
				return
			}
			if result.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", result.Kind, tt.wantKind)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		name        string
		ctx         UpdateContext
		wantAllowed bool
		wantKind    errs.Kind
	}{
		{
			name:        "empty edit by owner",
			ctx:         UpdateContext{WorkItemID: 1, IsOwner: true},
			wantAllowed: true,
		},
		{
			name:     "non-owner",
			ctx:      UpdateContext{WorkItemID: 1, Title: "x"},
			wantKind: errs.KindUnauthorized,
		},
		{
			name:     "move to foreign project",
			ctx:      UpdateContext{WorkItemID: 1, IsOwner: true, MovesProject: true},
			wantKind: errs.KindUnauthorized,
		},
		{
			name:        "move to owned project",
			ctx:         UpdateContext{WorkItemID: 1, IsOwner: true, MovesProject: true, OwnsTargetProject: true},
			wantAllowed: true,
		},
		{
			name:     "priority out of range",
			ctx:      UpdateContext{WorkItemID: 1, IsOwner: true, Priority: -3},
			wantKind: errs.KindInvalidState,
		},
		{
			name:     "title collision",
			ctx:      UpdateContext{WorkItemID: 1, IsOwner: true, Title: "dup", TitleTaken: true},
			wantKind: errs.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanUpdate(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", result.Kind, tt.wantKind)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	if r := CanDelete(DeleteContext{WorkItemID: 4, IsOwner: true}); !r.Allowed {
		t.Errorf("owner delete should be allowed: %s", r.Reason)
	}
	r := CanDelete(DeleteContext{WorkItemID: 4})
	if r.Allowed || r.Kind != errs.KindUnauthorized {
		t.Errorf("non-owner delete = %+v", r)
	}
	if r.Reason != "you can't delete work item 4" {
		t.Errorf("Reason = %q", r.Reason)
	}
}

package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/primary"
)

func TestCreateWorkItem(t *testing.T) {
	h := newHarness(t)

	valid := func() primary.CreateWorkItemRequest {
		return primary.CreateWorkItemRequest{
			ProjectID:   h.projectID,
			Title:       "Write docs",
			Description: "user guide",
			Priority:    3,
			Deadline:    deadline,
		}
	}

	tests := []struct {
		name     string
		user     string
		mutate   func(*primary.CreateWorkItemRequest)
		wantKind errs.Kind
	}{
		{"member is not owner", "mia", nil, errs.KindUnauthorized},
		{"missing project", "owner", func(r *primary.CreateWorkItemRequest) { r.ProjectID = 999 }, errs.KindNotFound},
		{"blank title", "owner", func(r *primary.CreateWorkItemRequest) { r.Title = "  " }, errs.KindInvalidState},
		{"title too long", "owner", func(r *primary.CreateWorkItemRequest) { r.Title = strings.Repeat("t", 101) }, errs.KindInvalidState},
		{"description too long", "owner", func(r *primary.CreateWorkItemRequest) { r.Description = strings.Repeat("d", 1001) }, errs.KindInvalidState},
		{"priority zero", "owner", func(r *primary.CreateWorkItemRequest) { r.Priority = 0 }, errs.KindInvalidState},
		{"priority too high", "owner", func(r *primary.CreateWorkItemRequest) { r.Priority = 101 }, errs.KindInvalidState},
		{"no deadline", "owner", func(r *primary.CreateWorkItemRequest) { r.Deadline = time.Time{} }, errs.KindInvalidState},
		{"duplicate title", "owner", func(r *primary.CreateWorkItemRequest) { r.Title = "Fix login" }, errs.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := h.items.CreateWorkItem(as(tt.user), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err), "error: %v", err)
		})
	}

	t.Run("success", func(t *testing.T) {
		item, err := h.items.CreateWorkItem(as("owner"), valid())
		require.NoError(t, err)
		assert.Equal(t, "Write docs", item.Title)
		assert.Equal(t, "pending", item.Status)
		assert.Equal(t, "owner", item.Creator)
		assert.Zero(t, item.AssigneeID)
		assert.Empty(t, item.AssignReason)
		assert.True(t, deadline.Equal(item.Deadline))
	})
}

func TestUpdateWorkItem(t *testing.T) {
	h := newHarness(t)

	t.Run("non-owner", func(t *testing.T) {
		_, err := h.items.UpdateWorkItem(as("mia"), primary.UpdateWorkItemRequest{ID: h.itemID, Priority: 2})
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{ID: 999, Priority: 2})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("title taken", func(t *testing.T) {
		h.newItem(t, "Fix logout")
		_, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{ID: h.itemID, Title: "Fix logout"})
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("priority out of range", func(t *testing.T) {
		_, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{ID: h.itemID, Priority: 500})
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("move to a project the caller does not own", func(t *testing.T) {
		_, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{ID: h.itemID, ProjectID: h.geminiID})
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("partial edit leaves lifecycle alone", func(t *testing.T) {
		_, err := h.file("mia", "assign", "take it", h.itemID)
		require.NoError(t, err)
		_, err = h.workflow.ApproveAssign(as("owner"), h.itemID, "mia")
		require.NoError(t, err)

		item, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{
			ID:       h.itemID,
			Title:    "Fix login page",
			Priority: 42,
		})
		require.NoError(t, err)
		assert.Equal(t, "Fix login page", item.Title)
		assert.Equal(t, 42, item.Priority)
		assert.Equal(t, "", item.Description, "unchanged")
		assert.Equal(t, "in_progress", item.Status)
		assert.Equal(t, "mia", item.Assignee)
		assert.Equal(t, "take it", item.AssignReason)
	})
}

func TestUpdateWorkItem_MoveProjectClearsRequests(t *testing.T) {
	h := newHarness(t)

	mercury, err := h.directory.CreateProject(as("owner"), "Mercury")
	require.NoError(t, err)

	_, err = h.file("mia", "assign", "take it", h.itemID)
	require.NoError(t, err)

	item, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{ID: h.itemID, ProjectID: mercury.ID})
	require.NoError(t, err)
	assert.Equal(t, mercury.ID, item.ProjectID)
	assert.Equal(t, 0, h.ledgerRows(t, h.itemID))

	// mia is not a member of Mercury and can no longer see the item
	_, err = h.items.GetWorkItem(as("mia"), h.itemID)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestDeleteWorkItem(t *testing.T) {
	h := newHarness(t)

	_, err := h.file("mia", "assign", "take it", h.itemID)
	require.NoError(t, err)

	err = h.items.DeleteWorkItem(as("mia"), h.itemID)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	require.NoError(t, h.items.DeleteWorkItem(as("owner"), h.itemID))
	assert.Equal(t, 0, h.ledgerRows(t, h.itemID))

	_, err = h.items.GetWorkItem(as("owner"), h.itemID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = h.items.DeleteWorkItem(as("owner"), h.itemID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = h.file("mia", "assign", "take it", h.itemID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// The title is free again once the item is gone
	h.newItem(t, "Fix login")
}

func TestWorkItemReads(t *testing.T) {
	h := newHarness(t)
	other := h.newItem(t, "Fix logout")

	_, err := h.file("mia", "assign", "take it", h.itemID)
	require.NoError(t, err)
	_, err = h.workflow.ApproveAssign(as("owner"), h.itemID, "mia")
	require.NoError(t, err)

	t.Run("get by id and title", func(t *testing.T) {
		item, err := h.items.GetWorkItem(as("noah"), other)
		require.NoError(t, err)
		assert.Equal(t, "Fix logout", item.Title)

		item, err = h.items.GetWorkItemByTitle(as("noah"), "Fix login")
		require.NoError(t, err)
		assert.Equal(t, h.itemID, item.ID)

		_, err = h.items.GetWorkItemByTitle(as("noah"), "nope")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("outsiders are rejected", func(t *testing.T) {
		_, err := h.items.GetWorkItem(as("olga"), h.itemID)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
		_, err = h.items.ListProjectWorkItems(as("olga"), h.projectID)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
		_, err = h.items.History(as("olga"), h.itemID)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("list project", func(t *testing.T) {
		items, err := h.items.ListProjectWorkItems(as("mia"), h.projectID)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		_, err = h.items.ListProjectWorkItems(as("mia"), 999)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("list by assignee", func(t *testing.T) {
		items, err := h.items.ListUserWorkItems(as("noah"), h.projectID, "mia")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, h.itemID, items[0].ID)

		items, err = h.items.ListUserWorkItems(as("noah"), h.projectID, "noah")
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = h.items.ListUserWorkItems(as("noah"), h.projectID, "ghost")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestWorkItemHistory(t *testing.T) {
	h := newHarness(t)

	_, err := h.items.UpdateWorkItem(as("owner"), primary.UpdateWorkItemRequest{
		ID:          h.itemID,
		Description: "users cannot log in",
		Priority:    10, // unchanged, not recorded
	})
	require.NoError(t, err)

	entries, err := h.items.History(as("mia"), h.itemID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "update", entries[0].Action)
	assert.Equal(t, "description", entries[0].FieldName)
	assert.Equal(t, "", entries[0].OldValue)
	assert.Equal(t, "users cannot log in", entries[0].NewValue)
	assert.Equal(t, "owner", entries[0].Actor)

	assert.Equal(t, "create", entries[1].Action)
	assert.Equal(t, "owner", entries[1].Actor)
}

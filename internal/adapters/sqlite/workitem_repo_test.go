package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/taskgate/internal/adapters/sqlite"
	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/ports/secondary"
)

func TestWorkItemRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	projectID := seedProject(t, db, "Apollo", ownerID)
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	deadline := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	id, err := repo.Create(ctx, &secondary.WorkItemRecord{
		Title:       "Write docs",
		Description: "user guide",
		Priority:    42,
		Deadline:    deadline,
		CreatorID:   ownerID,
		ProjectID:   projectID,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", got.Title)
	assert.Equal(t, "user guide", got.Description)
	assert.Equal(t, 42, got.Priority)
	assert.Equal(t, string(workflow.StatusPending), got.Status)
	assert.True(t, deadline.Equal(got.Deadline), "deadline = %v", got.Deadline)
	assert.Equal(t, "owner", got.CreatorName)
	assert.Nil(t, got.AssigneeID)
	assert.Nil(t, got.AssignReason)

	byTitle, err := repo.GetByTitle(ctx, "Write docs")
	require.NoError(t, err)
	assert.Equal(t, id, byTitle.ID)
}

func TestWorkItemRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewWorkItemRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestWorkItemRepository_ApplyTransition(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	memberID := seedUser(t, db, "mia")
	projectID := seedProject(t, db, "Apollo", ownerID)
	itemID := seedWorkItem(t, db, projectID, ownerID, "Fix login")
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	before, err := repo.GetByID(ctx, itemID)
	require.NoError(t, err)

	next := workflow.ApplyApproval(before.State(), workflow.KindAssign, memberID, "take it")
	require.NoError(t, repo.ApplyTransition(ctx, itemID, next))

	after, err := repo.GetByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusInProgress), after.Status)
	require.NotNil(t, after.AssigneeID)
	assert.Equal(t, memberID, *after.AssigneeID)
	assert.Equal(t, "mia", after.AssigneeName)
	require.NotNil(t, after.AssignReason)
	assert.Equal(t, "take it", *after.AssignReason)

	// The schema rejects states that break the assignee invariant
	bad := workflow.ItemState{Status: workflow.StatusInProgress}
	assert.Error(t, repo.ApplyTransition(ctx, itemID, bad))
}

func TestWorkItemRepository_UpdateIsPartial(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	projectID := seedProject(t, db, "Apollo", ownerID)
	otherProject := seedProject(t, db, "Gemini", ownerID)
	itemID := seedWorkItem(t, db, projectID, ownerID, "Fix login")
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, &secondary.WorkItemRecord{ID: itemID, Priority: 77}))

	got, err := repo.GetByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "Fix login", got.Title)
	assert.Equal(t, 77, got.Priority)
	assert.Equal(t, projectID, got.ProjectID)

	require.NoError(t, repo.Update(ctx, &secondary.WorkItemRecord{ID: itemID, Title: "Fix logout", ProjectID: otherProject}))
	got, err = repo.GetByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "Fix logout", got.Title)
	assert.Equal(t, otherProject, got.ProjectID)
	assert.Equal(t, 77, got.Priority)
	assert.Equal(t, string(workflow.StatusPending), got.Status)

	err = repo.Update(ctx, &secondary.WorkItemRecord{ID: 999, Title: "nope"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestWorkItemRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	projectID := seedProject(t, db, "Apollo", ownerID)
	itemID := seedWorkItem(t, db, projectID, ownerID, "Fix login")
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SoftDelete(ctx, itemID))

	_, err := repo.GetByID(ctx, itemID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	items, err := repo.List(ctx, secondary.WorkItemFilters{ProjectID: projectID})
	require.NoError(t, err)
	assert.Empty(t, items)

	// Deleting twice reports the item as gone
	assert.ErrorIs(t, repo.SoftDelete(ctx, itemID), errs.ErrNotFound)

	// The title is free again once the old item is deleted
	taken, err := repo.TitleTaken(ctx, "Fix login", 0)
	require.NoError(t, err)
	assert.False(t, taken)
	seedWorkItem(t, db, projectID, ownerID, "Fix login")
}

func TestWorkItemRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	memberID := seedUser(t, db, "mia")
	apollo := seedProject(t, db, "Apollo", ownerID)
	gemini := seedProject(t, db, "Gemini", ownerID)
	a1 := seedWorkItem(t, db, apollo, ownerID, "a1")
	seedWorkItem(t, db, apollo, ownerID, "a2")
	seedWorkItem(t, db, gemini, ownerID, "g1")
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	assigned := workflow.ApplyApproval(workflow.ItemState{Status: workflow.StatusPending}, workflow.KindAssign, memberID, "mine")
	require.NoError(t, repo.ApplyTransition(ctx, a1, assigned))

	items, err := repo.List(ctx, secondary.WorkItemFilters{ProjectID: apollo})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = repo.List(ctx, secondary.WorkItemFilters{ProjectID: apollo, AssigneeID: memberID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a1, items[0].ID)

	items, err = repo.List(ctx, secondary.WorkItemFilters{Status: string(workflow.StatusPending)})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWorkItemRepository_TitleTaken(t *testing.T) {
	db := setupTestDB(t)
	ownerID := seedUser(t, db, "owner")
	projectID := seedProject(t, db, "Apollo", ownerID)
	itemID := seedWorkItem(t, db, projectID, ownerID, "Fix login")
	repo := sqlite.NewWorkItemRepository(db)
	ctx := context.Background()

	taken, err := repo.TitleTaken(ctx, "Fix login", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.TitleTaken(ctx, "Fix login", itemID)
	require.NoError(t, err)
	assert.False(t, taken, "an item does not collide with itself")
}

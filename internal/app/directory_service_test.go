package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/taskgate/internal/errs"
)

func TestAddUser(t *testing.T) {
	h := newHarness(t)

	user, err := h.directory.AddUser(context.Background(), "  pia ")
	require.NoError(t, err)
	assert.Equal(t, "pia", user.Username)
	assert.NotZero(t, user.ID)

	_, err = h.directory.AddUser(context.Background(), "pia")
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	_, err = h.directory.AddUser(context.Background(), " ")
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestCreateProject(t *testing.T) {
	h := newHarness(t)

	project, err := h.directory.CreateProject(as("mia"), "Mercury")
	require.NoError(t, err)
	assert.Equal(t, "Mercury", project.Name)
	assert.Equal(t, "mia", project.Owner)

	// The owner is enrolled as a member
	members, err := h.directory.ListMembers(as("mia"), project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "mia", members[0].Username)

	_, err = h.directory.CreateProject(as("ghost"), "Vostok")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = h.directory.CreateProject(as("mia"), "")
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestAddMember(t *testing.T) {
	h := newHarness(t)

	err := h.directory.AddMember(as("mia"), h.projectID, "olga")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	err = h.directory.AddMember(as("owner"), h.projectID, "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = h.directory.AddMember(as("owner"), 999, "olga")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, h.directory.AddMember(as("owner"), h.projectID, "olga"))
	require.NoError(t, h.directory.AddMember(as("owner"), h.projectID, "olga"), "adding twice is a no-op")

	members, err := h.directory.ListMembers(as("olga"), h.projectID)
	require.NoError(t, err)

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Username
	}
	assert.Equal(t, []string{"mia", "noah", "olga", "owner"}, names)
}

func TestListMembers_RequiresMembership(t *testing.T) {
	h := newHarness(t)

	_, err := h.directory.ListMembers(as("olga"), h.projectID)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = h.directory.ListMembers(as("owner"), 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

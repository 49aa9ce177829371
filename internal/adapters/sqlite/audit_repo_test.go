package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/taskgate/internal/adapters/sqlite"
	"github.com/example/taskgate/internal/ctxutil"
	"github.com/example/taskgate/internal/ports/secondary"
)

func TestLogWriterAdapter_RecordsActor(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	writer := sqlite.NewLogWriterAdapter(repo)
	ctx := ctxutil.WithActor(context.Background(), "owner")

	require.NoError(t, writer.LogCreate(ctx, "work_item", "1"))
	require.NoError(t, writer.LogUpdate(ctx, "work_item", "1", "title", "old", "new"))
	require.NoError(t, writer.LogDelete(ctx, "work_item", "2"))

	entries, err := repo.List(context.Background(), secondary.AuditLogFilters{EntityType: "work_item", EntityID: "1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "update", entries[0].Action, "newest first")
	assert.Equal(t, "title", entries[0].FieldName)
	assert.Equal(t, "old", entries[0].OldValue)
	assert.Equal(t, "new", entries[0].NewValue)
	assert.Equal(t, "create", entries[1].Action)
	assert.Equal(t, "owner", entries[1].Actor)

	limited, err := repo.List(context.Background(), secondary.AuditLogFilters{Actor: "owner", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

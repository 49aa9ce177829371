package app

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/taskgate/internal/adapters/identity"
	"github.com/example/taskgate/internal/adapters/lock"
	"github.com/example/taskgate/internal/adapters/sqlite"
	"github.com/example/taskgate/internal/core/workflow"
	"github.com/example/taskgate/internal/ctxutil"
	"github.com/example/taskgate/internal/db"
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []secondary.WorkflowEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e secondary.WorkflowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// failingLedger wraps a ledger and fails DeleteByWorkItem on demand.
type failingLedger struct {
	secondary.RequestLedger
	deleteErr error
}

func (l *failingLedger) DeleteByWorkItem(ctx context.Context, role workflow.Role, workItemID int64) (int64, error) {
	if l.deleteErr != nil {
		return 0, l.deleteErr
	}
	return l.RequestLedger.DeleteByWorkItem(ctx, role, workItemID)
}

// harness wires the services against an in-memory database seeded with:
// owner (owns project "Apollo"), members mia and noah, outsider olga,
// a second project "Gemini" owned by olga, and one pending work item.
type harness struct {
	db        *sql.DB
	workflow  *WorkflowServiceImpl
	items     *WorkItemServiceImpl
	directory *DirectoryServiceImpl
	events    *recordingPublisher
	ledger    *failingLedger

	projectID int64
	geminiID  int64
	itemID    int64
}

var deadline = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessAt(t, ":memory:")
}

// newHarnessAt seeds the fixture into the database at path.
func newHarnessAt(t *testing.T, path string) *harness {
	t.Helper()

	h := openHarness(t, path)

	for _, name := range []string{"owner", "mia", "noah", "olga"} {
		_, err := h.directory.AddUser(context.Background(), name)
		require.NoError(t, err)
	}

	apollo, err := h.directory.CreateProject(as("owner"), "Apollo")
	require.NoError(t, err)
	h.projectID = apollo.ID
	require.NoError(t, h.directory.AddMember(as("owner"), apollo.ID, "mia"))
	require.NoError(t, h.directory.AddMember(as("owner"), apollo.ID, "noah"))

	gemini, err := h.directory.CreateProject(as("olga"), "Gemini")
	require.NoError(t, err)
	h.geminiID = gemini.ID

	item, err := h.items.CreateWorkItem(as("owner"), primary.CreateWorkItemRequest{
		ProjectID: apollo.ID,
		Title:     "Fix login",
		Priority:  10,
		Deadline:  deadline,
	})
	require.NoError(t, err)
	h.itemID = item.ID

	return h
}

// openHarness wires a fresh set of services, with their own connection pool,
// transactor and in-process locker, onto the database at path without seeding it.
func openHarness(t *testing.T, path string) *harness {
	t.Helper()

	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dirRepo := sqlite.NewDirectoryRepository(database)
	oracle := identity.NewDirectoryOracle(dirRepo)
	itemRepo := sqlite.NewWorkItemRepository(database)
	ledger := &failingLedger{RequestLedger: sqlite.NewRequestLedger(database)}
	auditRepo := sqlite.NewAuditLogRepository(database)
	tx := sqlite.NewTransactor(database, logger)
	locker := lock.NewLocalLocker()
	events := &recordingPublisher{}

	return &harness{
		db:        database,
		workflow:  NewWorkflowService(itemRepo, ledger, oracle, tx, locker, events, logger),
		items:     NewWorkItemService(itemRepo, ledger, oracle, auditRepo, sqlite.NewLogWriterAdapter(auditRepo), tx, locker, logger),
		directory: NewDirectoryService(dirRepo, oracle, tx, logger),
		events:    events,
		ledger:    ledger,
	}
}

// as returns a context acting as username.
func as(username string) context.Context {
	return ctxutil.WithActor(context.Background(), username)
}

// newItem creates another pending work item in the Apollo project.
func (h *harness) newItem(t *testing.T, title string) int64 {
	t.Helper()
	item, err := h.items.CreateWorkItem(as("owner"), primary.CreateWorkItemRequest{
		ProjectID: h.projectID,
		Title:     title,
		Priority:  5,
		Deadline:  deadline,
	})
	require.NoError(t, err)
	return item.ID
}

// file files a request on the harness project.
func (h *harness) file(user, kind, desc string, itemID int64) (*primary.Request, error) {
	return h.workflow.FileRequest(as(user), primary.FileRequestInput{
		Kind:        kind,
		Description: desc,
		WorkItemID:  itemID,
		ProjectID:   h.projectID,
	})
}

// ledgerRows counts every request row on a work item.
func (h *harness) ledgerRows(t *testing.T, itemID int64) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.QueryRow("SELECT COUNT(*) FROM operation_requests WHERE work_item_id = ?", itemID).Scan(&n))
	return n
}

// assertOneRequestPerRequester checks that no (work item, requester) pair has two rows.
func (h *harness) assertOneRequestPerRequester(t *testing.T) {
	t.Helper()
	var dupes int
	require.NoError(t, h.db.QueryRow(`SELECT COUNT(*) FROM (
		SELECT work_item_id, requester_id FROM operation_requests
		GROUP BY work_item_id, requester_id HAVING COUNT(*) > 1)`).Scan(&dupes))
	require.Zero(t, dupes, "duplicate requests for the same (work item, requester)")
}

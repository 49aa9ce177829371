// Package wire provides dependency injection for the taskgate application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/taskgate/internal/adapters/cli"
	"github.com/example/taskgate/internal/adapters/events"
	"github.com/example/taskgate/internal/adapters/identity"
	"github.com/example/taskgate/internal/adapters/lock"
	"github.com/example/taskgate/internal/adapters/sqlite"
	"github.com/example/taskgate/internal/app"
	"github.com/example/taskgate/internal/config"
	"github.com/example/taskgate/internal/ctxutil"
	"github.com/example/taskgate/internal/db"
	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/logging"
	"github.com/example/taskgate/internal/ports/primary"
	"github.com/example/taskgate/internal/ports/secondary"
	"github.com/example/taskgate/internal/telemetry"
	"github.com/example/taskgate/internal/version"
)

var (
	configPath string

	cfg              *config.Config
	database         *sql.DB
	logger           *slog.Logger
	workflowService  primary.WorkflowService
	workItemService  primary.WorkItemService
	directoryService primary.DirectoryService
	closers          []func(context.Context) error
	once             sync.Once
)

// SetConfigPath selects an explicit config file. Must be called before any service is used.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the resolved configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// WorkflowService returns the singleton WorkflowService instance.
func WorkflowService() primary.WorkflowService {
	once.Do(initServices)
	return workflowService
}

// WorkItemService returns the singleton WorkItemService instance.
func WorkItemService() primary.WorkItemService {
	once.Do(initServices)
	return workItemService
}

// DirectoryService returns the singleton DirectoryService instance.
func DirectoryService() primary.DirectoryService {
	once.Do(initServices)
	return directoryService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger = logging.New(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Trace.Enabled {
		shutdown, err := telemetry.Init(version.String(), cfg.Trace.Output)
		if err != nil {
			log.Fatalf("failed to initialize tracing: %v", err)
		}
		closers = append(closers, shutdown)
	}

	path := cfg.DBPath
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			log.Fatalf("failed to resolve database path: %v", err)
		}
	}
	database, err = db.Open(path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	closers = append(closers, func(context.Context) error { return database.Close() })

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	itemRepo := sqlite.NewWorkItemRepository(database)
	ledger := sqlite.NewRequestLedger(database)
	dirRepo := sqlite.NewDirectoryRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	tx := sqlite.NewTransactor(database, logger)
	oracle := identity.NewDirectoryOracle(dirRepo)

	locker := newLocker()
	publisher := newPublisher()

	// Create services (primary ports implementation)
	workflowService = app.NewWorkflowService(itemRepo, ledger, oracle, tx, locker, publisher, logger)
	workItemService = app.NewWorkItemService(itemRepo, ledger, oracle, auditRepo, sqlite.NewLogWriterAdapter(auditRepo), tx, locker, logger)
	directoryService = app.NewDirectoryService(dirRepo, oracle, tx, logger)
}

// newLocker picks the Redis locker when an address is configured.
func newLocker() secondary.ItemLocker {
	if cfg.Redis.Addr == "" {
		return lock.NewLocalLocker()
	}

	locker, err := lock.NewRedisLocker(context.Background(), cfg.Redis.Addr, cfg.Redis.Password,
		lock.WithTTL(cfg.Redis.LockTTL))
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	closers = append(closers, func(context.Context) error { return locker.Close() })
	logger.Debug("using redis item locks", "addr", cfg.Redis.Addr)
	return locker
}

// newPublisher picks the Kafka publisher when brokers are configured.
func newPublisher() secondary.EventPublisher {
	brokers := cfg.Kafka.BrokerList()
	if len(brokers) == 0 {
		return events.NopPublisher{}
	}

	publisher := events.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
	closers = append(closers, func(context.Context) error { return publisher.Close() })
	logger.Debug("publishing workflow events", "brokers", brokers, "topic", cfg.Kafka.Topic)
	return publisher
}

// CallerContext attaches the caller identity to ctx. A token wins over an
// explicit username, which wins over the configured actor.
func CallerContext(ctx context.Context, as, token string) (context.Context, error) {
	once.Do(initServices)
	return resolveCaller(ctx, cfg, as, token)
}

func resolveCaller(ctx context.Context, cfg *config.Config, as, token string) (context.Context, error) {
	if token != "" {
		verifier, err := identity.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("cannot verify --token: %w", err)
		}
		username, err := verifier.Username(token)
		if err != nil {
			return nil, &errs.Error{Kind: errs.KindUnauthorized, Op: "resolve caller", Err: err}
		}
		return ctxutil.WithActor(ctx, username), nil
	}
	if as != "" {
		return ctxutil.WithActor(ctx, as), nil
	}
	return ctxutil.WithActor(ctx, cfg.Actor), nil
}

// Shutdown releases every resource opened by initServices, newest first.
func Shutdown(ctx context.Context) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil && logger != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}
	closers = nil
}

// WorkflowAdapter returns a new WorkflowAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func WorkflowAdapter() *cliadapter.WorkflowAdapter {
	return WorkflowAdapterWithOutput(os.Stdout)
}

// WorkflowAdapterWithOutput returns a new WorkflowAdapter writing to the given output.
func WorkflowAdapterWithOutput(out io.Writer) *cliadapter.WorkflowAdapter {
	once.Do(initServices)
	return cliadapter.NewWorkflowAdapter(workflowService, out)
}

// WorkItemAdapter returns a new WorkItemAdapter writing to stdout.
func WorkItemAdapter() *cliadapter.WorkItemAdapter {
	once.Do(initServices)
	return cliadapter.NewWorkItemAdapter(workItemService, os.Stdout)
}

// DirectoryAdapter returns a new DirectoryAdapter writing to stdout.
func DirectoryAdapter() *cliadapter.DirectoryAdapter {
	once.Do(initServices)
	return cliadapter.NewDirectoryAdapter(directoryService, os.Stdout)
}

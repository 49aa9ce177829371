package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/taskgate/internal/ports/secondary"
)

const (
	defaultNamespace = "taskgate"
	defaultLockTTL   = 30 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOption is a functional option for configuring the Redis locker.
type RedisOption func(*RedisLocker)

// WithNamespace sets the key namespace prefix for lock keys.
func WithNamespace(ns string) RedisOption {
	return func(l *RedisLocker) {
		if ns != "" {
			l.namespace = ns
		}
	}
}

// WithTTL sets how long a lock survives a crashed holder.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// RedisLocker serializes work on the same item across processes
// with SET NX PX and a token-checked release.
type RedisLocker struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewRedisLocker creates a Redis-backed locker and verifies connectivity.
func NewRedisLocker(ctx context.Context, addr, password string, opts ...RedisOption) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisLocker(client, opts...), nil
}

func newRedisLocker(client redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:    client,
		namespace: defaultNamespace,
		ttl:       defaultLockTTL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) key(workItemID int64) string {
	return fmt.Sprintf("%s:lock:work_item:%d", l.namespace, workItemID)
}

var errLockHeld = errors.New("lock held")

// Lock polls with backoff until the item lock is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, workItemID int64) (func(), error) {
	key := l.key(workItemID)
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to lock work item %d: %w", workItemID, err)
	}

	return func() {
		// release must outlive a cancelled request context
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}

// Close closes the underlying Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// Ensure RedisLocker implements the interface
var _ secondary.ItemLocker = (*RedisLocker)(nil)

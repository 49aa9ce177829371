// Package lock provides implementations of secondary.ItemLocker.
package lock

import (
	"context"
	"sync"

	"github.com/example/taskgate/internal/ports/secondary"
)

// LocalLocker serializes work on the same item within one process.
// Each item gets a one-slot channel; entries are dropped once nobody holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[int64]*slot)}
}

// Lock blocks until the item lock is held or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, workItemID int64) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[workItemID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[workItemID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(workItemID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(workItemID, s)
		})
	}, nil
}

func (l *LocalLocker) release(workItemID int64, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, workItemID)
	}
}

// Ensure LocalLocker implements the interface
var _ secondary.ItemLocker = (*LocalLocker)(nil)

package storage

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LocalLocker serialises callers within one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*semaphore.Weighted
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*semaphore.Weighted)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = semaphore.NewWeighted(1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	if err := slot.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { slot.Release(1) })
	}, nil
}

// Package lock serializes mutations of a single pool across goroutines and,
// with Redis, across processes.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock held by another holder")

// Locker acquires a named lock without waiting. The returned release function
// is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// LocalLocker is an in-process Locker.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

var _ Locker = (*LocalLocker)(nil)

package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLock is a process-local Locker for single-node runs and tests. TTLs
// are honored so an abandoned lock does not wedge the key forever.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time)}
}

func (l *LocalLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}

	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *LocalLock) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}

func (l *LocalLock) Close() error {
	return nil
}

package history

import (
	"context"
	"sync"
)

// MemoryLocker serialises identifiers within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until identifier is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, identifier string) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[identifier]
	if !ok {
		k = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[identifier] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(identifier, k)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.sem
			l.unref(identifier, k)
		})
	}, nil
}

func (l *MemoryLocker) unref(identifier string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, identifier)
	}
}

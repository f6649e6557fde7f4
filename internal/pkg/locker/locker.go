// Package locker provides per-key mutual exclusion. The conversation
// service locks on the user id so events from the same user are applied one
// at a time while different users proceed in parallel.
package locker

import "sync"

type KeyedLocker struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyedLocker {
	return &KeyedLocker{
		locks: make(map[int64]*userLock),
	}
}

// Lock blocks until the caller holds the lock for key. Every Lock must be
// paired with an Unlock for the same key.
func (l *KeyedLocker) Lock(key int64) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &userLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *KeyedLocker) Unlock(key int64) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}

package locking

import (
	"context"
	"sync"
	"time"
)

// LockerMemory hands out in-process locks. One mutex is shared per key, so
// two activations of the same room serialize while distinct rooms proceed
// independently. TTL is ignored: the lock lives until released.
type LockerMemory struct {
	pool  sync.Pool
	locks sync.Map
}

// NewLockerMemory initializes a LockerMemory
func NewLockerMemory() *LockerMemory {
	locker := LockerMemory{}
	locker.pool = sync.Pool{
		New: func() interface{} {
			return new(sync.RWMutex)
		},
	}

	return &locker
}

// Acquire blocks until the key's lock is free and takes it
func (l *LockerMemory) Acquire(_ context.Context, key string, _ time.Duration) (LockInterface, error) {
	l.getLock(key).Lock()

	return &LockMemory{
		key: key,
		release: func() {
			l.getLock(key).Unlock()
		},
	}, nil
}

func (l *LockerMemory) getLock(key interface{}) *sync.RWMutex {
	newLock := l.pool.Get()
	lock, stored := l.locks.LoadOrStore(key, newLock)
	if stored {
		l.pool.Put(newLock)
	}
	return lock.(*sync.RWMutex)
}

// LockMemory is a held in-process lock
type LockMemory struct {
	key     string
	release func()
}

// Key returns the key the lock was taken for
func (l *LockMemory) Key() string {
	return l.key
}

// Release frees the lock for the next waiter
func (l *LockMemory) Release(_ context.Context) error {
	l.release()
	return nil
}

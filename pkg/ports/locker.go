package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates turn execution across replicas. The design
// assumes external serialization per conversation: two turns must never run
// concurrently against the same state.
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key
	// (a conversation ID). It blocks until the lock is acquired or the
	// context is canceled. Returns an UnlockFunc that MUST be called to
	// release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a checkpoint key across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc must be called to release it; ttl bounds how
	// long a crashed holder keeps the key.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

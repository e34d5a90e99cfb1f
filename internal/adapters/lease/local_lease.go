package lease

import (
	"context"
	"time"
)

// LocalLease is always held. Used when a single process owns the database.
type LocalLease struct{}

// NewLocalLease creates a lease that never contends
func NewLocalLease() *LocalLease {
	return &LocalLease{}
}

func (LocalLease) Acquire(context.Context, time.Duration) (bool, error) { return true, nil }
func (LocalLease) Release(context.Context) error                        { return nil }

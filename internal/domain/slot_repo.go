package domain

import (
	"context"
	"time"
)

// SlotRepository is the durable store behind the pool manager. Every method
// reads and writes through the store so correctness holds across processes;
// the store's conditional update is the only mutual-exclusion primitive.
type SlotRepository interface {
	// UpsertSlots registers every configured path with default unlocked
	// state. Existing rows keep their lock and usage fields.
	UpsertSlots(ctx context.Context, paths []string) error

	// AcquireSlot atomically claims one unlocked-or-stale slot for token,
	// preferring the least recently used candidate. Returns
	// ErrPoolExhausted when no candidate wins.
	AcquireSlot(ctx context.Context, token string, leaseTimeout time.Duration) (*CallbackSlot, error)

	// ReleaseSlot clears the lock on the slot currently held by token.
	// Releasing a slot the token no longer holds is a no-op.
	ReleaseSlot(ctx context.Context, token string) error

	// ReleaseExpiredSlots clears every lock older than leaseTimeout and
	// returns the number reclaimed.
	ReleaseExpiredSlots(ctx context.Context, leaseTimeout time.Duration) (int64, error)

	ListSlots(ctx context.Context) ([]*CallbackSlot, error)
}

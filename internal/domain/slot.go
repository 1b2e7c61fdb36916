package domain

import "time"

// CallbackSlot is one externally addressable payment form callback identity.
// The provider hosts one form per path, so the set of paths is fixed by
// configuration and shared across concurrent checkouts via leases.
type CallbackSlot struct {
	Path       string
	Locked     bool
	LockedBy   *string
	LockedAt   *time.Time
	LastUsedAt *time.Time
	UsageCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PoolStatus is a read-only snapshot of the slot pool.
type PoolStatus struct {
	Total     int
	Available int
	Locked    int
	Slots     []*CallbackSlot
}

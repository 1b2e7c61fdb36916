package domain

import "context"

type PoolManager interface {
	Initialize(ctx context.Context) error
	Acquire(ctx context.Context, token string) (*CallbackSlot, error)
	Release(ctx context.Context, token string) error
	ReleaseExpired(ctx context.Context) (int64, error)
	Status(ctx context.Context) (*PoolStatus, error)
}

package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

// BackgroundTasks runs the expiry sweeper decoupled from request traffic.
// A failed cycle is logged and the ticker keeps running.
type BackgroundTasks struct {
	PoolManager   domain.PoolManager
	TokenUsecase  domain.TokenUsecase
	SweepInterval time.Duration
}

func NewBackgroundTasks(pool domain.PoolManager, tokens domain.TokenUsecase, sweepInterval time.Duration) *BackgroundTasks {
	return &BackgroundTasks{
		PoolManager:   pool,
		TokenUsecase:  tokens,
		SweepInterval: sweepInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startExpirySweeper(ctx)
}

func (bt *BackgroundTasks) startExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.RunSweep(ctx)
		}
	}
}

// RunSweep executes one sweeper cycle: reclaim stale slot leases, then fail
// and drop tokens whose TTL lapsed.
func (bt *BackgroundTasks) RunSweep(ctx context.Context) {
	reclaimed, err := bt.PoolManager.ReleaseExpired(ctx)
	if err != nil {
		slog.Error("lease sweep error", "error", err.Error())
	} else if reclaimed > 0 {
		slog.Info("lease sweep reclaimed slots", "count", reclaimed)
	}

	failed, deleted, err := bt.TokenUsecase.ExpireStale(ctx)
	if err != nil {
		slog.Error("token sweep error", "error", err.Error())
		return
	}
	if failed > 0 || deleted > 0 {
		slog.Info("token sweep finished", "failed", failed, "deleted", deleted)
	}

	// Refresh pool gauges while we are here.
	if _, err := bt.PoolManager.Status(ctx); err != nil {
		slog.Error("pool status refresh error", "error", err.Error())
	}
}

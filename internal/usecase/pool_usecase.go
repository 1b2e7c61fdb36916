package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/metrics"
)

// DefaultPoolManager is a stateless façade over the slot store. It holds no
// slot state of its own, so any number of processes can run it against the
// same database.
type DefaultPoolManager struct {
	slotRepo      domain.SlotRepository
	callbackPaths []string
	leaseTimeout  time.Duration
	metrics       *metrics.PaymentMetrics
}

func NewDefaultPoolManager(
	slotRepo domain.SlotRepository,
	callbackPaths []string,
	leaseTimeout time.Duration,
	paymentMetrics *metrics.PaymentMetrics,
) *DefaultPoolManager {
	return &DefaultPoolManager{
		slotRepo:      slotRepo,
		callbackPaths: callbackPaths,
		leaseTimeout:  leaseTimeout,
		metrics:       paymentMetrics,
	}
}

func (pm *DefaultPoolManager) Initialize(ctx context.Context) error {
	if err := pm.slotRepo.UpsertSlots(ctx, pm.callbackPaths); err != nil {
		return err
	}
	slog.Info("callback slot pool initialized", "slots", len(pm.callbackPaths))
	return nil
}

func (pm *DefaultPoolManager) Acquire(ctx context.Context, token string) (*domain.CallbackSlot, error) {
	started := time.Now()

	slot, err := pm.slotRepo.AcquireSlot(ctx, token, pm.leaseTimeout)
	if err != nil {
		if err == domain.ErrPoolExhausted && pm.metrics != nil {
			pm.metrics.PoolExhaustedTotal.Inc()
		}
		return nil, err
	}

	if pm.metrics != nil {
		pm.metrics.SlotAcquireDuration.Observe(time.Since(started).Seconds())
	}
	slog.Info("callback slot acquired", "path", slot.Path, "token", token, "usage_count", slot.UsageCount)
	return slot, nil
}

func (pm *DefaultPoolManager) Release(ctx context.Context, token string) error {
	return pm.slotRepo.ReleaseSlot(ctx, token)
}

func (pm *DefaultPoolManager) ReleaseExpired(ctx context.Context) (int64, error) {
	reclaimed, err := pm.slotRepo.ReleaseExpiredSlots(ctx, pm.leaseTimeout)
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		if pm.metrics != nil {
			pm.metrics.LeasesReclaimedTotal.Add(float64(reclaimed))
		}
		slog.Warn("stale callback leases reclaimed", "count", reclaimed)
	}
	return reclaimed, nil
}

func (pm *DefaultPoolManager) Status(ctx context.Context) (*domain.PoolStatus, error) {
	slots, err := pm.slotRepo.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	status := &domain.PoolStatus{
		Total: len(slots),
		Slots: slots,
	}
	for _, slot := range slots {
		if slot.Locked {
			status.Locked++
		} else {
			status.Available++
		}
	}

	if pm.metrics != nil {
		pm.metrics.SlotsLockedGauge.Set(float64(status.Locked))
		pm.metrics.SlotsAvailableGauge.Set(float64(status.Available))
	}

	return status, nil
}

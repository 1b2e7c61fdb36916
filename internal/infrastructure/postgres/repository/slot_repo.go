package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSlotRepository struct {
	DB *gorm.DB
}

func NewDefaultSlotRepository(db *gorm.DB) *DefaultSlotRepository {
	return &DefaultSlotRepository{DB: db}
}

func (r *DefaultSlotRepository) UpsertSlots(ctx context.Context, paths []string) error {
	for _, path := range paths {
		slot := models.CallbackSlotModel{
			Path:       path,
			Locked:     false,
			UsageCount: 0,
		}
		// Existing rows keep their lock and usage fields.
		err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "path"}},
				DoNothing: true,
			}).
			Create(&slot).Error
		if err != nil {
			return fmt.Errorf("upsert slot %s: %w", path, err)
		}
	}
	return nil
}

func (r *DefaultSlotRepository) AcquireSlot(ctx context.Context, token string, leaseTimeout time.Duration) (*domain.CallbackSlot, error) {
	staleBefore := time.Now().Add(-leaseTimeout)

	var candidates []models.CallbackSlotModel
	err := r.DB.WithContext(ctx).
		Where("locked = ? OR locked_at < ?", false, staleBefore).
		Order("last_used_at ASC NULLS FIRST").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("find slot candidates: %w", err)
	}

	now := time.Now()
	for _, candidate := range candidates {
		// Conditional update is the only mutual-exclusion primitive:
		// a concurrent caller that already claimed this slot makes
		// RowsAffected come back 0 and we move to the next candidate.
		result := r.DB.WithContext(ctx).
			Model(&models.CallbackSlotModel{}).
			Where("path = ?", candidate.Path).
			Where("locked = ? OR locked_at < ?", false, staleBefore).
			Updates(map[string]interface{}{
				"locked":       true,
				"locked_by":    token,
				"locked_at":    now,
				"last_used_at": now,
				"usage_count":  gorm.Expr("usage_count + 1"),
			})
		if result.Error != nil {
			return nil, fmt.Errorf("acquire slot %s: %w", candidate.Path, result.Error)
		}
		if result.RowsAffected == 1 {
			var won models.CallbackSlotModel
			if err := r.DB.WithContext(ctx).First(&won, "path = ?", candidate.Path).Error; err != nil {
				return nil, fmt.Errorf("reload acquired slot %s: %w", candidate.Path, err)
			}
			return mappers.ToDomainSlot(&won), nil
		}
	}

	return nil, domain.ErrPoolExhausted
}

func (r *DefaultSlotRepository) ReleaseSlot(ctx context.Context, token string) error {
	// Matching on locked_by keeps a late release from disturbing a lease
	// another token already reclaimed. Zero rows affected is fine.
	result := r.DB.WithContext(ctx).
		Model(&models.CallbackSlotModel{}).
		Where("locked_by = ?", token).
		Updates(map[string]interface{}{
			"locked":    false,
			"locked_by": nil,
			"locked_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("release slot held by %s: %w", token, result.Error)
	}
	return nil
}

func (r *DefaultSlotRepository) ReleaseExpiredSlots(ctx context.Context, leaseTimeout time.Duration) (int64, error) {
	staleBefore := time.Now().Add(-leaseTimeout)

	result := r.DB.WithContext(ctx).
		Model(&models.CallbackSlotModel{}).
		Where("locked = ? AND locked_at < ?", true, staleBefore).
		Updates(map[string]interface{}{
			"locked":    false,
			"locked_by": nil,
			"locked_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("release expired slots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *DefaultSlotRepository) ListSlots(ctx context.Context) ([]*domain.CallbackSlot, error) {
	var slotModels []models.CallbackSlotModel
	if err := r.DB.WithContext(ctx).Order("path ASC").Find(&slotModels).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	slots := make([]*domain.CallbackSlot, len(slotModels))
	for i := range slotModels {
		slots[i] = mappers.ToDomainSlot(&slotModels[i])
	}
	return slots, nil
}

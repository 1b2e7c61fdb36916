package mappers

import (
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/models"
)

func ToDomainSlot(model *models.CallbackSlotModel) *domain.CallbackSlot {
	return &domain.CallbackSlot{
		Path:       model.Path,
		Locked:     model.Locked,
		LockedBy:   model.LockedBy,
		LockedAt:   model.LockedAt,
		LastUsedAt: model.LastUsedAt,
		UsageCount: model.UsageCount,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

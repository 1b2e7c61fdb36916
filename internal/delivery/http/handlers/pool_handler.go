package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/dto/response"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

type PoolHandler struct {
	pool domain.PoolManager
}

func NewPoolHandler(pool domain.PoolManager) *PoolHandler {
	return &PoolHandler{pool: pool}
}

func (h *PoolHandler) Status(c *fiber.Ctx) error {
	status, err := h.pool.Status(c.Context())
	if err != nil {
		slog.Error("pool status failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{Error: "internal error"})
	}

	slots := make([]response.PoolSlotResponse, len(status.Slots))
	for i, slot := range status.Slots {
		slots[i] = response.PoolSlotResponse{
			Path:       slot.Path,
			Locked:     slot.Locked,
			LockedBy:   slot.LockedBy,
			LockedAt:   slot.LockedAt,
			LastUsedAt: slot.LastUsedAt,
			UsageCount: slot.UsageCount,
		}
	}

	return c.JSON(response.PoolStatusResponse{
		Total:     status.Total,
		Available: status.Available,
		Locked:    status.Locked,
		Slots:     slots,
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/dto/response"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

const (
	headerSignature = "X-Webhook-Signature"
	headerTimestamp = "X-Webhook-Timestamp"
)

type WebhookHandler struct {
	reconciler domain.WebhookReconciler
}

func NewWebhookHandler(reconciler domain.WebhookReconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// Handle acknowledges verified deliveries immediately; reconciliation runs
// after the response so provider retries stay transport-level only.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	signature := c.Get(headerSignature)
	timestamp := c.Get(headerTimestamp)
	if signature == "" || timestamp == "" {
		return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: "missing signature headers"})
	}

	// Fiber reuses the request buffer once the handler returns.
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	var event domain.ProviderEvent
	if err := h.reconciler.Verify(timestamp, body, signature); err != nil {
		json.Unmarshal(body, &event) // best effort, for the audit row
		h.reconciler.RecordRejected(c.Context(), event, err)
		if errors.Is(err, domain.ErrReplayDetected) {
			return c.Status(fiber.StatusUnauthorized).JSON(response.ErrorResponse{Error: domain.ErrReplayDetected.Error()})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(response.ErrorResponse{Error: domain.ErrInvalidSignature.Error()})
	}

	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: "malformed event body"})
	}

	go h.reconciler.Process(context.Background(), event)

	return c.JSON(fiber.Map{"received": true})
}

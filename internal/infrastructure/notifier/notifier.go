package notifier

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
)

// DefaultMerchantNotifier delivers payment outcome callbacks to the merchant
// endpoint fire-and-forget. Failures are logged and never retried.
type DefaultMerchantNotifier struct {
	CallbackURL string
}

func NewDefaultMerchantNotifier(callbackURL string) *DefaultMerchantNotifier {
	return &DefaultMerchantNotifier{CallbackURL: callbackURL}
}

func (n *DefaultMerchantNotifier) Notify(notification domain.PaymentNotification) {
	if n.CallbackURL == "" {
		return
	}

	go func() {
		requestID := uuid.New().String()

		body, err := json.Marshal(notification)
		if err != nil {
			slog.Error("failed to marshal merchant callback", "request_id", requestID, "error", err.Error())
			return
		}

		req, err := http.NewRequest("POST", n.CallbackURL, bytes.NewBuffer(body))
		if err != nil {
			slog.Error("failed to create merchant callback request", "request_id", requestID, "error", err.Error())
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", requestID)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			slog.Error("merchant callback failed", "request_id", requestID, "error", err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			slog.Info("merchant callback sent", "request_id", requestID, "token", notification.Token, "status", notification.Status)
		} else {
			slog.Error("merchant callback returned non-2xx", "request_id", requestID, "status_code", resp.StatusCode)
		}
	}()
}

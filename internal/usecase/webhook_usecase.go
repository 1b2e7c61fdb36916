package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/logger"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/metrics"
)

type DefaultWebhookReconciler struct {
	tokens       domain.TokenUsecase
	notifier     domain.PaymentNotifier
	eventLogger  logger.WebhookEventLogger
	secret       string
	replayWindow time.Duration
	now          func() time.Time
	metrics      *metrics.PaymentMetrics
}

func NewDefaultWebhookReconciler(
	tokens domain.TokenUsecase,
	merchantNotifier domain.PaymentNotifier,
	eventLogger logger.WebhookEventLogger,
	secret string,
	replayWindow time.Duration,
	paymentMetrics *metrics.PaymentMetrics,
) *DefaultWebhookReconciler {
	return &DefaultWebhookReconciler{
		tokens:       tokens,
		notifier:     merchantNotifier,
		eventLogger:  eventLogger,
		secret:       secret,
		replayWindow: replayWindow,
		now:          time.Now,
		metrics:      paymentMetrics,
	}
}

// Verify checks the keyed hash over "timestamp.body" and the replay window.
// A valid signature with a stale timestamp is still rejected.
func (r *DefaultWebhookReconciler) Verify(timestamp string, body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(r.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if !hmac.Equal(expected, supplied) {
		return domain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.ErrReplayDetected
	}
	delta := r.now().Sub(time.Unix(ts, 0))
	if delta < 0 {
		delta = -delta
	}
	if delta > r.replayWindow {
		return domain.ErrReplayDetected
	}

	return nil
}

// Sign computes the signature Verify expects. Exported for provider
// simulators and tests.
func (r *DefaultWebhookReconciler) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(r.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (r *DefaultWebhookReconciler) Process(ctx context.Context, event domain.ProviderEvent) {
	handled := true
	var processingErr error

	switch event.Type {
	case domain.EventPaymentSucceeded:
		processingErr = r.applyPaymentOutcome(ctx, event, domain.StatusSuccess)

	case domain.EventPaymentFailed:
		processingErr = r.applyPaymentOutcome(ctx, event, domain.StatusFailed)

	case domain.EventPaymentRefunded, domain.EventPaymentPartiallyRefund:
		// Refunds arrive after the token is terminal. The record stays
		// final; the merchant is told out of band.
		r.notifyMerchant(event)
		slog.Info("refund event received", "event_id", event.ID, "type", event.Type, "token", event.Data.Token)

	case domain.EventPaymentMethodAttached, domain.EventPaymentMethodDetached:
		slog.Info("payment method event received", "event_id", event.ID, "type", event.Type)

	case domain.EventDisputeCreated, domain.EventDisputeUpdated, domain.EventDisputeResolved:
		r.notifyMerchant(event)
		slog.Info("dispute event received", "event_id", event.ID, "type", event.Type,
			"dispute_id", event.Data.DisputeID, "dispute_status", event.Data.DisputeStatus)

	default:
		handled = false
		slog.Warn("unhandled webhook event type", "event_id", event.ID, "type", event.Type)
	}

	if processingErr != nil {
		// After the ack there is nobody to report to; the audit row and
		// the log line are the whole story.
		slog.Error("webhook reconciliation failed", "event_id", event.ID, "type", event.Type, "error", processingErr.Error())
	}

	r.audit(ctx, event, true, handled, processingErr)
	if r.metrics != nil {
		result := "processed"
		if !handled {
			result = "unhandled"
		} else if processingErr != nil {
			result = "error"
		}
		r.metrics.WebhooksTotal.WithLabelValues(event.Type, result).Inc()
	}
}

// RecordRejected audits a delivery that failed verification.
func (r *DefaultWebhookReconciler) RecordRejected(ctx context.Context, event domain.ProviderEvent, reason error) {
	r.audit(ctx, event, false, false, reason)
	if r.metrics != nil {
		r.metrics.WebhooksTotal.WithLabelValues(event.Type, "rejected").Inc()
	}
}

func (r *DefaultWebhookReconciler) applyPaymentOutcome(ctx context.Context, event domain.ProviderEvent, status domain.TokenStatus) error {
	if event.Data.Token == "" {
		return fmt.Errorf("event %s carries no token", event.ID)
	}

	rawData, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	outcome := domain.TokenOutcome{
		Status:           status,
		TransactionID:    event.Data.TransactionID,
		ProviderResponse: string(rawData),
	}
	if status == domain.StatusFailed {
		outcome.ErrorMessage = event.Data.Reason
		if outcome.ErrorMessage == "" {
			outcome.ErrorMessage = "payment declined"
		}
	}

	return r.tokens.ApplyOutcome(ctx, event.Data.Token, outcome)
}

func (r *DefaultWebhookReconciler) notifyMerchant(event domain.ProviderEvent) {
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(domain.PaymentNotification{
		Token:         event.Data.Token,
		Status:        event.Data.DisputeStatus,
		TransactionID: event.Data.TransactionID,
		Amount:        event.Data.Amount,
		Currency:      event.Data.Currency,
		ErrorMessage:  event.Data.Reason,
		EventType:     event.Type,
	})
}

func (r *DefaultWebhookReconciler) audit(ctx context.Context, event domain.ProviderEvent, signatureValid, handled bool, processingErr error) {
	if r.eventLogger == nil {
		return
	}

	record := logger.WebhookEventRecord{
		EventID:        event.ID,
		EventType:      event.Type,
		Token:          event.Data.Token,
		SignatureValid: signatureValid,
		Handled:        handled,
		ReceivedAt:     r.now(),
	}
	if processingErr != nil {
		record.ProcessingError = processingErr.Error()
	}

	if err := r.eventLogger.LogWebhookEvent(ctx, record); err != nil {
		slog.Error("failed to audit webhook event", "event_id", event.ID, "error", err.Error())
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	publisher "github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/kafka"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/metrics"
)

const tokenLength = 32

type TokenUsecaseConfig struct {
	TokenTTL    time.Duration
	FormBaseURL string
	KafkaTopic  string
}

type DefaultTokenUsecase struct {
	tokenRepo domain.TokenRepository
	pool      domain.PoolManager
	publisher domain.PublisherPort
	notifier  domain.PaymentNotifier
	cfg       TokenUsecaseConfig
	metrics   *metrics.PaymentMetrics
}

func NewDefaultTokenUsecase(
	tokenRepo domain.TokenRepository,
	pool domain.PoolManager,
	pub domain.PublisherPort,
	merchantNotifier domain.PaymentNotifier,
	cfg TokenUsecaseConfig,
	paymentMetrics *metrics.PaymentMetrics,
) *DefaultTokenUsecase {
	return &DefaultTokenUsecase{
		tokenRepo: tokenRepo,
		pool:      pool,
		publisher: pub,
		notifier:  merchantNotifier,
		cfg:       cfg,
		metrics:   paymentMetrics,
	}
}

func (uc *DefaultTokenUsecase) CreateToken(ctx context.Context, customer domain.CustomerData, payment domain.PaymentData) (*domain.CreatedToken, error) {
	idGenerator, err := nanoid.Standard(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generator: %w", err)
	}
	token := idGenerator()

	slot, err := uc.pool.Acquire(ctx, token)
	if err != nil {
		if err == domain.ErrPoolExhausted {
			slog.Warn("checkout rejected: callback pool exhausted")
			return nil, domain.ErrPoolExhausted
		}
		return nil, err
	}

	now := time.Now()
	callbackPath := slot.Path
	paymentToken := &domain.PaymentToken{
		Token:        token,
		Status:       domain.StatusPending,
		CustomerData: customer,
		PaymentData:  payment,
		CallbackPath: &callbackPath,
		CreatedAt:    now,
		ExpiresAt:    now.Add(uc.cfg.TokenTTL),
		UpdatedAt:    now,
	}

	if err := uc.tokenRepo.CreateToken(ctx, paymentToken); err != nil {
		// The lease must not leak when the row never existed.
		if releaseErr := uc.pool.Release(ctx, token); releaseErr != nil {
			slog.Error("failed to release slot after create failure", "token", token, "error", releaseErr.Error())
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TokensCreatedTotal.WithLabelValues(payment.Currency).Inc()
	}
	slog.Info("payment token created", "token", token, "path", slot.Path, "expires_at", paymentToken.ExpiresAt)

	return &domain.CreatedToken{
		Token:        token,
		CallbackPath: slot.Path,
		FormURL:      fmt.Sprintf("%s%s?token=%s", uc.cfg.FormBaseURL, slot.Path, token),
		ExpiresAt:    paymentToken.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (uc *DefaultTokenUsecase) GetStatus(ctx context.Context, token string) (*domain.TokenProjection, error) {
	paymentToken, err := uc.tokenRepo.GetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// A row the sweeper has not dropped yet still reads as gone once its
	// TTL lapsed.
	if !paymentToken.Status.IsTerminal() && time.Now().After(paymentToken.ExpiresAt) {
		return nil, domain.ErrTokenNotFound
	}

	return &domain.TokenProjection{
		Status:        paymentToken.Status,
		ErrorMessage:  paymentToken.ErrorMessage,
		TransactionID: paymentToken.TransactionID,
	}, nil
}

func (uc *DefaultTokenUsecase) CancelToken(ctx context.Context, token string) (*domain.TokenProjection, error) {
	cancelled, err := uc.tokenRepo.CancelPending(ctx, token)
	if err != nil {
		return nil, err
	}

	if !cancelled {
		// Not pending anymore: report the current status unchanged.
		paymentToken, err := uc.tokenRepo.GetToken(ctx, token)
		if err != nil {
			return nil, err
		}
		slog.Info("cancel ignored for non-pending token", "token", token, "status", paymentToken.Status)
		return &domain.TokenProjection{
			Status:        paymentToken.Status,
			ErrorMessage:  paymentToken.ErrorMessage,
			TransactionID: paymentToken.TransactionID,
		}, nil
	}

	if err := uc.pool.Release(ctx, token); err != nil {
		slog.Error("failed to release slot on cancel", "token", token, "error", err.Error())
	}
	if uc.metrics != nil {
		uc.metrics.TokensFinishedTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	}
	slog.Info("payment token cancelled", "token", token)

	return &domain.TokenProjection{Status: domain.StatusCancelled}, nil
}

func (uc *DefaultTokenUsecase) ApplyOutcome(ctx context.Context, token string, outcome domain.TokenOutcome) error {
	won, err := uc.tokenRepo.ApplyOutcome(ctx, token, outcome)
	if err != nil {
		return err
	}
	if !won {
		slog.Info("outcome ignored for terminal token", "token", token, "status", outcome.Status)
		return nil
	}

	// Exactly one release per token: only the winning transition gets here.
	if err := uc.pool.Release(ctx, token); err != nil {
		slog.Error("failed to release slot after outcome", "token", token, "error", err.Error())
	}

	if uc.metrics != nil {
		uc.metrics.TokensFinishedTotal.WithLabelValues(string(outcome.Status)).Inc()
	}
	slog.Info("payment outcome applied", "token", token, "status", outcome.Status, "transaction_id", outcome.TransactionID)

	uc.dispatchOutcome(ctx, token, outcome)
	return nil
}

// dispatchOutcome publishes the terminal transition downstream. Both sinks
// are fire-and-forget from the registry's point of view.
func (uc *DefaultTokenUsecase) dispatchOutcome(ctx context.Context, token string, outcome domain.TokenOutcome) {
	paymentToken, err := uc.tokenRepo.GetToken(ctx, token)
	if err != nil {
		slog.Error("failed to load token for event dispatch", "token", token, "error", err.Error())
		return
	}

	eventType := domain.EventPaymentSucceeded
	if outcome.Status == domain.StatusFailed {
		eventType = domain.EventPaymentFailed
	}

	if uc.publisher != nil {
		event := publisher.PaymentEvent{
			EventID:       uuid.New().String(),
			Token:         token,
			Status:        string(outcome.Status),
			TransactionID: outcome.TransactionID,
			Amount:        paymentToken.PaymentData.Amount,
			Currency:      paymentToken.PaymentData.Currency,
			EventType:     eventType,
		}
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal payment event", "token", token, "error", err.Error())
		} else if err := uc.publisher.Publish(uc.cfg.KafkaTopic, domain.Message{Key: []byte(token), Value: value}); err != nil {
			slog.Error("failed to publish payment event", "token", token, "error", err.Error())
		}
	}

	if uc.notifier != nil {
		uc.notifier.Notify(domain.PaymentNotification{
			Token:         token,
			Status:        string(outcome.Status),
			TransactionID: outcome.TransactionID,
			Amount:        paymentToken.PaymentData.Amount,
			Currency:      paymentToken.PaymentData.Currency,
			OrderID:       paymentToken.PaymentData.OrderID,
			ErrorMessage:  outcome.ErrorMessage,
			EventType:     eventType,
		})
	}
}

func (uc *DefaultTokenUsecase) ResolveByPath(ctx context.Context, path string) (*domain.PaymentToken, error) {
	return uc.tokenRepo.GetTokenByPath(ctx, path)
}

func (uc *DefaultTokenUsecase) ExpireStale(ctx context.Context) (int64, int64, error) {
	expired, err := uc.tokenRepo.FindExpiredActive(ctx)
	if err != nil {
		return 0, 0, err
	}

	var failed int64
	for _, paymentToken := range expired {
		err := uc.ApplyOutcome(ctx, paymentToken.Token, domain.TokenOutcome{
			Status:       domain.StatusFailed,
			ErrorMessage: "payment form session expired",
		})
		if err != nil {
			slog.Error("failed to expire token", "token", paymentToken.Token, "error", err.Error())
			continue
		}
		failed++
	}

	deleted, err := uc.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		return failed, 0, err
	}

	if failed > 0 && uc.metrics != nil {
		uc.metrics.TokensExpiredTotal.Add(float64(failed))
	}
	return failed, deleted, nil
}

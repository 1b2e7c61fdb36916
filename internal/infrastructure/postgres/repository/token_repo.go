package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTokenRepository struct {
	DB *gorm.DB
}

func NewDefaultTokenRepository(db *gorm.DB) *DefaultTokenRepository {
	return &DefaultTokenRepository{DB: db}
}

func (r *DefaultTokenRepository) CreateToken(ctx context.Context, token *domain.PaymentToken) error {
	tokenModel, err := mappers.ToGORMToken(token)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(tokenModel).Error; err != nil {
		return fmt.Errorf("create payment token: %w", err)
	}
	return nil
}

func (r *DefaultTokenRepository) GetToken(ctx context.Context, token string) (*domain.PaymentToken, error) {
	var tokenModel models.PaymentTokenModel
	err := r.DB.WithContext(ctx).First(&tokenModel, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment token: %w", err)
	}
	return mappers.ToDomainToken(&tokenModel)
}

func (r *DefaultTokenRepository) GetTokenByPath(ctx context.Context, path string) (*domain.PaymentToken, error) {
	var tokenModel models.PaymentTokenModel
	err := r.DB.WithContext(ctx).
		Where("callback_path = ?", path).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Order("created_at DESC").
		First(&tokenModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token by callback path: %w", err)
	}
	return mappers.ToDomainToken(&tokenModel)
}

func (r *DefaultTokenRepository) ApplyOutcome(ctx context.Context, token string, outcome domain.TokenOutcome) (bool, error) {
	updates := map[string]interface{}{
		"status":        string(outcome.Status),
		"callback_path": nil,
		"updated_at":    time.Now(),
	}
	if outcome.TransactionID != "" {
		updates["transaction_id"] = outcome.TransactionID
	}
	if outcome.ErrorMessage != "" {
		updates["error_message"] = outcome.ErrorMessage
	}
	if outcome.ProviderResponse != "" {
		updates["provider_response"] = outcome.ProviderResponse
	}

	// Guarding on a non-terminal status makes the terminal transition
	// single-winner: a duplicate webhook affects zero rows.
	result := r.DB.WithContext(ctx).
		Model(&models.PaymentTokenModel{}).
		Where("token = ?", token).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("apply outcome to token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTokenRepository) CancelPending(ctx context.Context, token string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&models.PaymentTokenModel{}).
		Where("token = ?", token).
		Where("status = ?", string(domain.StatusPending)).
		Updates(map[string]interface{}{
			"status":        string(domain.StatusCancelled),
			"callback_path": nil,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("cancel token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTokenRepository) FindExpiredActive(ctx context.Context) ([]*domain.PaymentToken, error) {
	var tokenModels []models.PaymentTokenModel
	err := r.DB.WithContext(ctx).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Where("expires_at < ?", time.Now()).
		Find(&tokenModels).Error
	if err != nil {
		return nil, fmt.Errorf("find expired tokens: %w", err)
	}

	tokens := make([]*domain.PaymentToken, 0, len(tokenModels))
	for i := range tokenModels {
		token, err := mappers.ToDomainToken(&tokenModels[i])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *DefaultTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Where("status NOT IN ?", []string{string(domain.StatusPending), string(domain.StatusProcessing)}).
		Delete(&models.PaymentTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

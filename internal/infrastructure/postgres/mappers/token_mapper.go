package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/rhoulihan/wavemax-payment-service/internal/domain"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/models"
)

func ToGORMToken(token *domain.PaymentToken) (*models.PaymentTokenModel, error) {
	customerJSON, err := json.Marshal(token.CustomerData)
	if err != nil {
		return nil, fmt.Errorf("marshal customer data: %w", err)
	}
	paymentJSON, err := json.Marshal(token.PaymentData)
	if err != nil {
		return nil, fmt.Errorf("marshal payment data: %w", err)
	}

	return &models.PaymentTokenModel{
		Token:            token.Token,
		Status:           string(token.Status),
		CustomerData:     string(customerJSON),
		PaymentData:      string(paymentJSON),
		CallbackPath:     token.CallbackPath,
		ProviderResponse: token.ProviderResponse,
		ErrorMessage:     token.ErrorMessage,
		TransactionID:    token.TransactionID,
		CreatedAt:        token.CreatedAt,
		ExpiresAt:        token.ExpiresAt,
		UpdatedAt:        token.UpdatedAt,
	}, nil
}

func ToDomainToken(model *models.PaymentTokenModel) (*domain.PaymentToken, error) {
	var customer domain.CustomerData
	if err := json.Unmarshal([]byte(model.CustomerData), &customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer data: %w", err)
	}
	var payment domain.PaymentData
	if err := json.Unmarshal([]byte(model.PaymentData), &payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment data: %w", err)
	}

	return &domain.PaymentToken{
		Token:            model.Token,
		Status:           domain.TokenStatus(model.Status),
		CustomerData:     customer,
		PaymentData:      payment,
		CallbackPath:     model.CallbackPath,
		ProviderResponse: model.ProviderResponse,
		ErrorMessage:     model.ErrorMessage,
		TransactionID:    model.TransactionID,
		CreatedAt:        model.CreatedAt,
		ExpiresAt:        model.ExpiresAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

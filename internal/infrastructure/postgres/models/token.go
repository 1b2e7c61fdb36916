package models

import "time"

type PaymentTokenModel struct {
	Token            string  `gorm:"primaryKey"`
	Status           string  `gorm:"not null;index"`
	CustomerData     string  `gorm:"type:jsonb;not null"`
	PaymentData      string  `gorm:"type:jsonb;not null"`
	CallbackPath     *string `gorm:"index"`
	ProviderResponse *string `gorm:"type:jsonb"`
	ErrorMessage     *string
	TransactionID    *string   `gorm:"index"`
	CreatedAt        time.Time `gorm:"not null"`
	ExpiresAt        time.Time `gorm:"not null;index"`
	UpdatedAt        time.Time
}

func (PaymentTokenModel) TableName() string {
	return "payment_tokens"
}

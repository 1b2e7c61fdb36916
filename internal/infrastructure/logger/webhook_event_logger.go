package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// WebhookEventRecord is an audit row for every inbound provider webhook,
// valid or not. It exists for operator forensics, not for dedup: duplicate
// deliveries are handled by the token registry's idempotent transitions.
type WebhookEventRecord struct {
	ID              uint `gorm:"primaryKey"`
	EventID         string
	EventType       string
	Token           string
	SignatureValid  bool
	Handled         bool
	ProcessingError string
	ReceivedAt      time.Time
}

type WebhookEventLogger interface {
	LogWebhookEvent(ctx context.Context, record WebhookEventRecord) error
}

type PGWebhookEventLogger struct {
	db *gorm.DB
}

func NewPGWebhookEventLogger(db *gorm.DB) *PGWebhookEventLogger {
	return &PGWebhookEventLogger{db: db}
}

func (l *PGWebhookEventLogger) LogWebhookEvent(ctx context.Context, record WebhookEventRecord) error {
	return l.db.WithContext(ctx).Create(&record).Error
}

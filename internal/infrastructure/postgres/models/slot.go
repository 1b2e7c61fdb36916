package models

import "time"

type CallbackSlotModel struct {
	Path       string  `gorm:"primaryKey"`
	Locked     bool    `gorm:"not null;default:false;index"`
	LockedBy   *string `gorm:"index"`
	LockedAt   *time.Time
	LastUsedAt *time.Time
	UsageCount int64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CallbackSlotModel) TableName() string {
	return "callback_slots"
}

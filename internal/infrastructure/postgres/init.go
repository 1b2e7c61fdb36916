package postgres

import (
	"log"

	"github.com/rhoulihan/wavemax-payment-service/internal/config"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/logger"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.PaymentConfig) *gorm.DB {
	dsn := cfg.PaymentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.CallbackSlotModel{}, &models.PaymentTokenModel{}, &logger.WebhookEventRecord{})

	return db
}

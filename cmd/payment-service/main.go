package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rhoulihan/wavemax-payment-service/internal/app/background"
	"github.com/rhoulihan/wavemax-payment-service/internal/config"
	deliveryhttp "github.com/rhoulihan/wavemax-payment-service/internal/delivery/http"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/handlers"
	publisher "github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/kafka"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/logger"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/metrics"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/migrate"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/notifier"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres"
	"github.com/rhoulihan/wavemax-payment-service/internal/infrastructure/postgres/repository"
	"github.com/rhoulihan/wavemax-payment-service/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.SetupLogger(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Kafka payment event publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)

	// Init repos
	slotRepo := repository.NewDefaultSlotRepository(db)
	tokenRepo := repository.NewDefaultTokenRepository(db)
	webhookEventLogger := logger.NewPGWebhookEventLogger(db)

	// Merchant callback notifier
	merchantNotifier := notifier.NewDefaultMerchantNotifier(cfg.Merchant.CallbackURL)

	paymentMetrics := metrics.NewPaymentMetrics()

	// Init pool manager
	poolManager := usecase.NewDefaultPoolManager(slotRepo, cfg.Pool.CallbackPaths, cfg.Pool.LeaseTimeout, paymentMetrics)

	// Init token usecase
	tokenUsecase := usecase.NewDefaultTokenUsecase(
		tokenRepo,
		poolManager,
		pub,
		merchantNotifier,
		usecase.TokenUsecaseConfig{
			TokenTTL:    cfg.Pool.TokenTTL,
			FormBaseURL: cfg.Provider.FormBaseURL,
			KafkaTopic:  cfg.KafkaService.Topic,
		},
		paymentMetrics,
	)

	// Init webhook reconciler
	reconciler := usecase.NewDefaultWebhookReconciler(
		tokenUsecase,
		merchantNotifier,
		webhookEventLogger,
		cfg.Webhook.Secret,
		cfg.Webhook.ReplayWindow,
		paymentMetrics,
	)

	// Upsert configured slots; never removes existing ones
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := poolManager.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize slot pool: %v", err)
	}

	// Expiry sweeper
	tasks := background.NewBackgroundTasks(poolManager, tokenUsecase, cfg.Pool.SweepInterval)
	tasks.StartAll(ctx)

	// Metrics endpoint on its own listener
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf("%s:%s", cfg.MetricsServer.Host, cfg.MetricsServer.Port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err.Error())
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "wavemax-payment-service",
	})

	paymentHandler := handlers.NewPaymentHandler(tokenUsecase, cfg.Provider.BaseURL)
	webhookHandler := handlers.NewWebhookHandler(reconciler)
	poolHandler := handlers.NewPoolHandler(poolManager)
	deliveryhttp.RegisterRoutes(app, paymentHandler, webhookHandler, poolHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down")
		cancel()
		if err := app.Shutdown(); err != nil {
			slog.Error("server shutdown error", "error", err.Error())
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}

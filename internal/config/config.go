package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env           string `yaml:"env" env-default:"local"`
	HTTPServer    `yaml:"http_server"`
	MetricsServer `yaml:"metrics_server"`
	PaymentDB     `yaml:"payment_db"`
	LogConfig     `yaml:"log_config"`
	Pool          PoolConfig     `yaml:"pool"`
	Webhook       WebhookConfig  `yaml:"webhook"`
	Provider      ProviderConfig `yaml:"provider"`
	Merchant      MerchantConfig `yaml:"merchant"`
	KafkaService  `yaml:"kafka-service"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type MetricsServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"9090"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn" env:"PAYMENT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

// PoolConfig fixes the leaseable callback slot membership. The pool is only
// upserted at startup, never resized at runtime.
type PoolConfig struct {
	CallbackPaths []string      `yaml:"callback_paths"`
	LeaseTimeout  time.Duration `yaml:"lease_timeout" env-default:"10m"`
	TokenTTL      time.Duration `yaml:"token_ttl" env-default:"1h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"5m"`
}

type WebhookConfig struct {
	Secret       string        `yaml:"secret" env:"WEBHOOK_SECRET"`
	ReplayWindow time.Duration `yaml:"replay_window" env-default:"300s"`
}

// ProviderConfig describes the externally hosted payment form service.
type ProviderConfig struct {
	BaseURL     string `yaml:"base_url"`
	FormBaseURL string `yaml:"form_base_url"`
}

type MerchantConfig struct {
	CallbackURL string `yaml:"callback_url"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

func MustLoad() *PaymentConfig {
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	if len(cfg.Pool.CallbackPaths) == 0 {
		log.Fatalf("pool.callback_paths must not be empty")
	}

	return &cfg
}

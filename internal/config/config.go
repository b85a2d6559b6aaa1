package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the GORM postgres DSN.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// KafkaConfig holds event broker settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PaymentConfig holds the payment adapter settings. Amounts are whole
// currency units; submissions outside [MinAmount, MaxAmount] are rejected
// before any network call.
type PaymentConfig struct {
	StripeSecretKey string
	MinAmount       int64
	MaxAmount       int64
}

// IntakeConfig holds the lead-relay webhook settings.
type IntakeConfig struct {
	WebhookURL string
	SourceSite string
}

// IdentityConfig holds the external identity provider settings.
type IdentityConfig struct {
	BaseURL string
	APIKey  string
}

// ServiceConfig holds all configuration for the estimate service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	JWTSecret string
	DB        DatabaseConfig
	Kafka     KafkaConfig
	Payment   PaymentConfig
	Intake    IntakeConfig
	Identity  IdentityConfig
}

// Load reads configuration from the environment with the ESTIMATE_ prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ESTIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "estimate")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "booking.events")
	v.SetDefault("PAYMENT_MIN_AMOUNT", 1)
	v.SetDefault("PAYMENT_MAX_AMOUNT", 10000)
	v.SetDefault("INTAKE_SOURCE_SITE", "sotsvc.com")

	cfg := &ServiceConfig{
		Port:      normalizePort(v.GetString("PORT")),
		AppEnv:    v.GetString("APP_ENV"),
		JWTSecret: v.GetString("JWT_SECRET"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
			MinAmount:       v.GetInt64("PAYMENT_MIN_AMOUNT"),
			MaxAmount:       v.GetInt64("PAYMENT_MAX_AMOUNT"),
		},
		Intake: IntakeConfig{
			WebhookURL: v.GetString("INTAKE_WEBHOOK_URL"),
			SourceSite: v.GetString("INTAKE_SOURCE_SITE"),
		},
		Identity: IdentityConfig{
			BaseURL: v.GetString("IDENTITY_BASE_URL"),
			APIKey:  v.GetString("IDENTITY_API_KEY"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ESTIMATE_JWT_SECRET is required")
	}
	if cfg.Payment.MinAmount <= 0 || cfg.Payment.MaxAmount < cfg.Payment.MinAmount {
		return nil, fmt.Errorf("invalid payment amount bounds [%d, %d]", cfg.Payment.MinAmount, cfg.Payment.MaxAmount)
	}

	return cfg, nil
}

func normalizePort(p string) string {
	if p == "" {
		return ":8080"
	}
	if !strings.HasPrefix(p, ":") {
		return ":" + p
	}
	return p
}

// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Email       EmailConfig
	Reservation ReservationConfig
	RateLimit   RateLimitConfig
	Features    FeatureFlags
	I18n        I18nConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	// Mode selects the checkout URL flavor: "sandbox", "production" or
	// "auto" (decide from the secret key prefix).
	Mode       string
	Currency   string
	SuccessURL string
	FailureURL string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type ReservationConfig struct {
	TTLMinutes int
}

// RateLimitConfig sets the per-IP request budgets.
type RateLimitConfig struct {
	GeneralPerSecond int
	AuthPerMinute    int
	UploadPerMinute  int
}

// FeatureFlags gate the legacy unauthenticated commerce CRUD paths. They
// exist for backward compatibility with old clients, not as a security
// boundary.
type FeatureFlags struct {
	AllowLegacyComerciosReadAll bool
	AllowLegacyComerciosWrite   bool
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sobrazero"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "sobrazero-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			SecretKey:     getEnv("PAYMENT_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			Mode:          getEnv("PAYMENT_MODE", "auto"),
			Currency:      getEnv("PAYMENT_CURRENCY", "ars"),
			SuccessURL:    getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/pago/exito"),
			FailureURL:    getEnv("PAYMENT_FAILURE_URL", "http://localhost:3000/pago/error"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@sobrazero.app"),
			FromName:     getEnv("FROM_NAME", "SobraZero"),
		},
		Reservation: ReservationConfig{
			TTLMinutes: getEnvAsInt("RESERVATION_TTL_MINUTES", 30),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: getEnvAsInt("RATE_LIMIT_GENERAL_PER_SECOND", 10),
			AuthPerMinute:    getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
			UploadPerMinute:  getEnvAsInt("RATE_LIMIT_UPLOAD_PER_MINUTE", 10),
		},
		Features: FeatureFlags{
			AllowLegacyComerciosReadAll: getEnvAsBool("ALLOW_LEGACY_COMERCIOS_READ_ALL", false),
			AllowLegacyComerciosWrite:   getEnvAsBool("ALLOW_LEGACY_COMERCIOS_WRITE", false),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "es"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Reservation.TTLMinutes <= 0 {
		return fmt.Errorf("reservation TTL must be positive")
	}

	if c.RateLimit.GeneralPerSecond <= 0 || c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.UploadPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	return nil
}

// PaymentMode resolves the configured mode, falling back to the secret key
// prefix heuristic when set to "auto".
func (c *Config) PaymentMode() string {
	switch c.Payment.Mode {
	case "sandbox", "production":
		return c.Payment.Mode
	}
	if strings.HasPrefix(c.Payment.SecretKey, "sk_test_") {
		return "sandbox"
	}
	return "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

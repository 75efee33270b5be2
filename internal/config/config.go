package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreBackend selects the persistence layer: "dynamo" or "mongo".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"dynamo"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	DynamoTables   DynamoTables

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"wellbeing"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"Bright Wellbeing <noreply@example.com>"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	OTP OTPPolicy
	AI  AIConfig

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","` // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users            string `env:"DYNAMO_TABLE_USERS" envDefault:"users"`
	OTPVerifications string `env:"DYNAMO_TABLE_OTP_VERIFICATIONS" envDefault:"otp_verifications"`
}

// OTPPolicy controls issuance and verification of one-time codes.
type OTPPolicy struct {
	TTL         time.Duration `env:"OTP_TTL" envDefault:"10m"`
	MaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	RateWindow  time.Duration `env:"OTP_RATE_WINDOW" envDefault:"5m"`
	RateLimit   int           `env:"OTP_RATE_LIMIT" envDefault:"3"`
}

// AIConfig points at the upstream inference endpoint used by the consult and chat proxies.
type AIConfig struct {
	BaseURL string        `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey  string        `env:"AI_API_KEY"`
	Model   string        `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
}

// DefaultOTPPolicy mirrors the envDefault values above.
func DefaultOTPPolicy() OTPPolicy {
	return OTPPolicy{
		TTL:         10 * time.Minute,
		MaxAttempts: 5,
		RateWindow:  5 * time.Minute,
		RateLimit:   3,
	}
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "dynamo", "mongo":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.OTP.MaxAttempts < 1 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be at least 1")
	}
	if c.OTP.RateLimit < 1 {
		return fmt.Errorf("OTP_RATE_LIMIT must be at least 1")
	}
	if c.OTP.TTL <= 0 || c.OTP.RateWindow <= 0 {
		return fmt.Errorf("OTP_TTL and OTP_RATE_WINDOW must be positive")
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Issuer string `env:"BACKOFFICE_ISSUER, default=backoffice"`

	// SessionSecret signs session tokens (HS256). Required, at least 32 bytes.
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL, default=24h"`

	// ResetTokenTTL bounds how long an emailed reset link stays valid.
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=1h"`

	// ResetBaseURL is the browser client's reset page; the token and email
	// are appended to it as query parameters.
	ResetBaseURL string `env:"RESET_BASE_URL, default=http://localhost:5173/reset-password"`

	DatabaseFile string `env:"DATABASE_FILE, default=backoffice.db"`
	PepperFile   string `env:"PEPPER_FILE, default=pepper"`

	Env       string `env:"ENV, default=dev"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=json"`
	Port      int    `env:"PORT, default=8080"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD, default=10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL, default=1h"`

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@localhost"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(cfg.SessionSecret) < 32 {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set and at least 32 bytes")
	}
	return cfg, nil
}

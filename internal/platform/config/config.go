package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config is the typed view of the environment, loaded only after the
// guard has passed. Holding secrets in one immutable struct built at boot
// keeps call sites free of ambient os.Getenv reads.
type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret         string `env:"SESSION_SECRET"`
	StateSigningSecret    string `env:"STATE_SIGNING_SECRET"`
	TokenEncryptionSecret string `env:"TOKEN_ENCRYPTION_SECRET"`

	OAuthRedirectURL      string `env:"OAUTH_REDIRECT_URL"`
	GoogleClientID        string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `env:"GOOGLE_CLIENT_SECRET"`
	MicrosoftClientID     string `env:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `env:"MICROSOFT_CLIENT_SECRET"`
	NotionClientID        string `env:"NOTION_CLIENT_ID"`
	NotionClientSecret    string `env:"NOTION_CLIENT_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	ConnectRateCapacity  int `env:"CONNECT_RATE_CAPACITY" default:"5"`
	ConnectRatePerMinute int `env:"CONNECT_RATE_PER_MINUTE" default:"3"`
}

// LoadDotenv pulls a local .env file into the environment if one exists.
// Runs before the guard so .env values are validated like everything else.
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
}

// Load builds the typed Config. The guard has already validated presence
// and strength; this only converts types.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether this deployment is production-flagged.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

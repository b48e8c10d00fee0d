package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// mail.tm account: either a ready token+id, or address+password to
	// derive a token at startup.
	AccountID    string `env:"MAILTM_ACCOUNT_ID"`
	AccountToken string `env:"MAILTM_TOKEN"`
	Address      string `env:"MAILTM_ADDRESS"`
	Password     string `env:"MAILTM_PASSWORD"`

	// Watcher
	BaseURL        string        `env:"MAILTM_BASE_URL" envDefault:"https://api.mail.tm"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	Banner         bool          `env:"BANNER" envDefault:"true"`
	SuppressErrors bool          `env:"SUPPRESS_ERRORS" envDefault:"false"`

	// Message archive (optional)
	DatabasePath string `env:"DATABASE_PATH"`

	// Telegram forwarding (optional)
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// HasToken reports whether a ready credential was supplied.
func (c *Config) HasToken() bool {
	return c.AccountToken != "" && c.AccountID != ""
}

// ArchiveEnabled reports whether the sqlite archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabasePath != ""
}

// TelegramEnabled reports whether Telegram forwarding is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !cfg.HasToken() && (cfg.Address == "" || cfg.Password == "") {
		return nil, fmt.Errorf("either MAILTM_TOKEN and MAILTM_ACCOUNT_ID, or MAILTM_ADDRESS and MAILTM_PASSWORD must be set")
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/korjavin/catmoodbot/models"
)

// Config holds all the configuration for the application
type Config struct {
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	OwnerChatID int64  `env:"OWNER_CHAT_ID,required,notEmpty"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogMode     string `env:"LOG_MODE" envDefault:"production"`
	// TelegramAPI is a format string taking the token and the method name
	TelegramAPI string `env:"TELEGRAM_API_ENDPOINT" envDefault:"https://api.telegram.org/bot%s/%s"`

	DatabasePath string `env:"DB_PATH" envDefault:"./data/catmood.db"`
	Timezone     string `env:"TIMEZONE" envDefault:"Local"`

	CatalogPath     string `env:"CATALOG_PATH" envDefault:"./assets/markup.json"`
	CardArtDir      string `env:"CARD_ART_DIR" envDefault:"./assets/tarot"`
	CardArtExt      string `env:"CARD_ART_EXT" envDefault:"png"`
	CardArtRequired bool   `env:"CARD_ART_REQUIRED" envDefault:"false"`
	ImagesDir       string `env:"IMAGES_DIR" envDefault:"./assets/images"`

	OracleURL    string `env:"ORACLE_URL" envDefault:"https://json.astrologyapi.com/v1/tarot_predictions"`
	OracleUserID string `env:"ORACLE_USER_ID"`
	OracleAPIKey string `env:"ORACLE_API_KEY"`

	TranslatorURL    string `env:"TRANSLATOR_URL" envDefault:"https://translation.googleapis.com/language/translate/v2"`
	TranslatorAPIKey string `env:"TRANSLATOR_API_KEY"`
	TranslateTo      string `env:"TRANSLATE_TO" envDefault:"ru"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	location *time.Location
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, &models.ConfigError{Source: "environment", Msg: "parse", Err: err}
	}

	if cfg.HTTPTimeout <= 0 {
		return nil, &models.ConfigError{Source: "environment", Msg: fmt.Sprintf("HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, &models.ConfigError{Source: "environment", Msg: "TIMEZONE", Err: err}
	}
	cfg.location = loc

	return &cfg, nil
}

// Location is the time zone used for day boundaries in the event store
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

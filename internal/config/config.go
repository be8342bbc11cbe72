package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Telegram TelegramConfig
	Google   GoogleConfig
	Report   ReportConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type TelegramConfig struct {
	BotToken string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenDir     string
}

// ReportConfig carries the tunables that used to be hardcoded: the default
// report start date and the top-N country limits for the geography breakdowns.
type ReportConfig struct {
	DefaultStartDate           time.Time
	TopCountryLimitViews       int64
	TopCountryLimitSubscribers int64
}

// RedisConfig is optional; an empty Host disables the resolution cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	defaultStart, err := time.Parse("2006-01-02", getEnv("DEFAULT_START_DATE", "2024-01-01"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_START_DATE: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			TokenDir:     getEnv("TOKEN_DIR", "tokens"),
		},
		Report: ReportConfig{
			DefaultStartDate:           defaultStart,
			TopCountryLimitViews:       int64(getEnvInt("TOP_COUNTRY_LIMIT_VIEWS", 9)),
			TopCountryLimitSubscribers: int64(getEnvInt("TOP_COUNTRY_LIMIT_SUBSCRIBERS", 5)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if c.Google.TokenDir == "" {
		return fmt.Errorf("TOKEN_DIR is required")
	}
	if c.Report.TopCountryLimitViews <= 0 {
		return fmt.Errorf("TOP_COUNTRY_LIMIT_VIEWS must be positive")
	}
	if c.Report.TopCountryLimitSubscribers <= 0 {
		return fmt.Errorf("TOP_COUNTRY_LIMIT_SUBSCRIBERS must be positive")
	}
	return nil
}

// ValidateBot adds the checks only the Telegram front end needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

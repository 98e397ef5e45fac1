package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/edgard/recbot/internal/errors"
)

// DotEnvFile is loaded into the environment before reading configuration.
const DotEnvFile = ".env"

// LoadConfig loads configuration in increasing priority from:
//  1. Defaults
//  2. The YAML file at configPath, when it exists
//  3. Environment variables, with "." replaced by "_" (TELEGRAM_TOKEN)
//
// Variables from .env are loaded first and never override the real
// environment.
func LoadConfig(configPath string) (*Config, error) {
	return load(configPath, DotEnvFile)
}

func load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewConfigError("failed to load env file "+envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, apperrors.NewConfigError("failed to read config file "+configPath, err)
			}
			slog.Debug("Configuration file loaded", "path", configPath)
		} else if errors.Is(err, fs.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", configPath)
		} else {
			return nil, apperrors.NewConfigError("failed to stat config file "+configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse configuration", err)
	}

	if err := cfg.applyDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"database_driver", cfg.Database.Driver,
		"archive_chat", cfg.Telegram.ArchiveChat,
		"webhook_host", cfg.Webhook.Host,
		"webhook_port", cfg.Webhook.Port)
	return cfg, nil
}

// applyDerived fills values that depend on other settings.
func (c *Config) applyDerived() error {
	c.Telegram.ArchiveChat = strings.TrimPrefix(strings.TrimSpace(c.Telegram.ArchiveChat), "@")

	if c.Database.URI == "" {
		switch c.Database.Driver {
		case DriverMongoDB:
			c.Database.URI = DefaultMongoURI
		default:
			c.Database.URI = DefaultSQLitePath
		}
	}

	if c.Webhook.Path == "" {
		path, err := RandomWebhookPath()
		if err != nil {
			return apperrors.NewConfigError("failed to generate webhook path", err)
		}
		c.Webhook.Path = path
	} else if !strings.HasPrefix(c.Webhook.Path, "/") {
		c.Webhook.Path = "/" + c.Webhook.Path
	}

	if c.Messages == (MessagesConfig{}) {
		c.Messages = DefaultMessages
	}
	return nil
}

// RandomWebhookPath returns "/" followed by 32 random bytes in URL-safe
// base64.
func RandomWebhookPath() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return "/" + base64.RawURLEncoding.EncodeToString(buf), nil
}

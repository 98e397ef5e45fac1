// Package config loads, defaults, and validates the recbot configuration
// from an optional YAML file, a .env file, and environment variables.
package config

import (
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Paste     PasteConfig     `mapstructure:"paste"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig configures the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Bot API credentials and the archive target.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// Proxy is an optional outbound proxy URL for Bot API calls.
	Proxy string `mapstructure:"proxy" validate:"omitempty,url"`
	// ArchiveChat is the public handle of the archived chat, without "@".
	ArchiveChat    string        `mapstructure:"archive_chat"    validate:"required"`
	OwnerID        int64         `mapstructure:"owner_id"        validate:"required,gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s"`
}

// IsArchiveChat reports whether a chat handle names the archive chat.
func (t TelegramConfig) IsArchiveChat(username string) bool {
	return username != "" && strings.EqualFold(strings.TrimPrefix(username, "@"), t.ArchiveChat)
}

// WebhookConfig configures the inbound webhook listener.
type WebhookConfig struct {
	// URL is the public base URL; Path is appended to it.
	URL         string `mapstructure:"url"          validate:"required,url"`
	Host        string `mapstructure:"host"         validate:"required"`
	Port        int    `mapstructure:"port"         validate:"required,min=1,max=65535"`
	Path        string `mapstructure:"path"         validate:"required,startswith=/"`
	SecretToken string `mapstructure:"secret_token"`
}

// Endpoint returns the full URL registered with Telegram.
func (w WebhookConfig) Endpoint() string {
	return strings.TrimRight(w.URL, "/") + w.Path
}

// Database drivers.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

// DatabaseConfig selects and configures the archive backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite mongodb"`
	// URI is a file path for SQLite and a connection string for MongoDB.
	URI              string        `mapstructure:"uri"               validate:"required"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	Name             string        `mapstructure:"name"              validate:"required"`
	CreateIndexes    bool          `mapstructure:"create_indexes"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=1s"`
}

// PasteConfig configures the paste publisher.
type PasteConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s"`
}

// MessagesConfig holds user-facing reply templates.
type MessagesConfig struct {
	// Status takes the estimated count (%d) and the humanized size (%s).
	Status string `mapstructure:"status" validate:"required"`
	// LogsHeader takes the queried identity (%s).
	LogsHeader string `mapstructure:"logs_header" validate:"required"`
	// UpstreamError is sent when the paste service or the admin list
	// cannot be reached.
	UpstreamError string `mapstructure:"upstream_error" validate:"required"`
	// Command descriptions published with setMyCommands.
	StatusCommand string `mapstructure:"status_command" validate:"required"`
	LogsCommand   string `mapstructure:"logs_command"   validate:"required"`
}

// SchedulerConfig holds the scheduled task settings keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron expression with an optional seconds field.
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

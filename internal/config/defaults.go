package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 15 * time.Second

	DefaultWebhookHost = "0.0.0.0"

	DefaultSQLitePath       = "archive.db"
	DefaultMongoURI         = "mongodb://localhost"
	DefaultDatabaseName     = "recbot"
	DefaultOperationTimeout = 15 * time.Second

	DefaultPasteBaseURL = "https://hastebin.com"
	DefaultPasteTimeout = 30 * time.Second
)

// DefaultMessages are the English reply templates.
var DefaultMessages = MessagesConfig{
	Status:        "Approximate message count: %d\nApproximate archive size: %s",
	LogsHeader:    "Logs for %s\n\n",
	UpstreamError: "Could not build the logs right now, please try again later.",
	StatusCommand: "Show approximate archive size (owner only)",
	LogsCommand:   "Export a user's archived messages (admins only)",
}

// Task names known to the scheduler.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskArchiveStats   = "archive_stats"
)

// setDefaults registers every key with viper. Keys without a meaningful
// default get a zero value so environment overrides are picked up.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.proxy", "")
	v.SetDefault("telegram.archive_chat", "")
	v.SetDefault("telegram.owner_id", 0)
	v.SetDefault("telegram.request_timeout", DefaultRequestTimeout)

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.host", DefaultWebhookHost)
	v.SetDefault("webhook.port", 0)
	v.SetDefault("webhook.path", "")
	v.SetDefault("webhook.secret_token", "")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.uri", "")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", DefaultDatabaseName)
	v.SetDefault("database.create_indexes", true)
	v.SetDefault("database.operation_timeout", DefaultOperationTimeout)

	v.SetDefault("paste.base_url", DefaultPasteBaseURL)
	v.SetDefault("paste.timeout", DefaultPasteTimeout)

	v.SetDefault("messages.status", DefaultMessages.Status)
	v.SetDefault("messages.logs_header", DefaultMessages.LogsHeader)
	v.SetDefault("messages.upstream_error", DefaultMessages.UpstreamError)
	v.SetDefault("messages.status_command", DefaultMessages.StatusCommand)
	v.SetDefault("messages.logs_command", DefaultMessages.LogsCommand)

	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks."+TaskArchiveStats+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskArchiveStats+".schedule", "0 0 * * * *")
}

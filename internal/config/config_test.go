package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edgard/recbot/internal/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123456:ABCDEF")
	t.Setenv("TELEGRAM_ARCHIVE_CHAT", "@ArchiveChat")
	t.Setenv("TELEGRAM_OWNER_ID", "42")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("WEBHOOK_PORT", "8443")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "123456:ABCDEF", cfg.Telegram.Token)
	assert.Equal(t, "ArchiveChat", cfg.Telegram.ArchiveChat)
	assert.EqualValues(t, 42, cfg.Telegram.OwnerID)
	assert.Equal(t, DefaultRequestTimeout, cfg.Telegram.RequestTimeout)
	assert.Equal(t, 8443, cfg.Webhook.Port)
	assert.Equal(t, DefaultWebhookHost, cfg.Webhook.Host)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultSQLitePath, cfg.Database.URI)
	assert.True(t, cfg.Database.CreateIndexes)
	assert.Equal(t, DefaultPasteBaseURL, cfg.Paste.BaseURL)
	assert.Equal(t, DefaultMessages, cfg.Messages)

	require.Contains(t, cfg.Scheduler.Tasks, TaskSQLMaintenance)
	assert.True(t, cfg.Scheduler.Tasks[TaskSQLMaintenance].Enabled)
}

func TestLoadGeneratesWebhookPath(t *testing.T) {
	setRequiredEnv(t)

	first, err := load("", "")
	require.NoError(t, err)
	second, err := load("", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.Webhook.Path, "/"))
	// 32 bytes in unpadded base64 are 43 characters.
	assert.Len(t, first.Webhook.Path, 44)
	assert.NotEqual(t, first.Webhook.Path, second.Webhook.Path)
	assert.Equal(t, "https://bot.example.com"+first.Webhook.Path, first.Webhook.Endpoint())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_NAME", "from_env")

	path := writeFile(t, "config.yaml", `
logger:
  level: debug
  json: true
webhook:
  path: hook
database:
  driver: mongodb
  name: from_file
  create_indexes: false
  operation_timeout: 5s
scheduler:
  tasks:
    archive_stats:
      enabled: false
`)

	cfg, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, "/hook", cfg.Webhook.Path)
	assert.Equal(t, DriverMongoDB, cfg.Database.Driver)
	assert.Equal(t, DefaultMongoURI, cfg.Database.URI)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.False(t, cfg.Database.CreateIndexes)
	assert.Equal(t, 5*time.Second, cfg.Database.OperationTimeout)
	assert.False(t, cfg.Scheduler.Tasks[TaskArchiveStats].Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	// godotenv sets variables process-wide; register them for cleanup.
	for _, key := range []string{"TELEGRAM_TOKEN", "TELEGRAM_ARCHIVE_CHAT", "TELEGRAM_OWNER_ID", "WEBHOOK_URL", "WEBHOOK_PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	envFile := writeFile(t, ".env", strings.Join([]string{
		"TELEGRAM_TOKEN=dotenv-token",
		"TELEGRAM_ARCHIVE_CHAT=dotenvchat",
		"TELEGRAM_OWNER_ID=7",
		"WEBHOOK_URL=https://dotenv.example.com",
		"WEBHOOK_PORT=9000",
	}, "\n"))

	cfg, err := load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Telegram.Token)
	assert.Equal(t, "dotenvchat", cfg.Telegram.ArchiveChat)
	assert.Equal(t, 9000, cfg.Webhook.Port)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "missing owner",
			env:     map[string]string{"TELEGRAM_OWNER_ID": "0"},
			wantMsg: "Telegram.OwnerID is required",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DATABASE_DRIVER": "postgres"},
			wantMsg: "Database.Driver must be one of [sqlite mongodb]",
		},
		{
			name:    "bad webhook url",
			env:     map[string]string{"WEBHOOK_URL": "not a url"},
			wantMsg: "Webhook.URL must be a valid URL",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"WEBHOOK_PORT": "70000"},
			wantMsg: "Webhook.Port failed max=65535",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := load("", "")
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConfig))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestIsArchiveChat(t *testing.T) {
	t.Parallel()

	tg := TelegramConfig{ArchiveChat: "ArchiveChat"}
	assert.True(t, tg.IsArchiveChat("archivechat"))
	assert.True(t, tg.IsArchiveChat("@ARCHIVECHAT"))
	assert.False(t, tg.IsArchiveChat("otherchat"))
	assert.False(t, tg.IsArchiveChat(""))
}

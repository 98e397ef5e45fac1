package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestMiddlewareLogsEditedMessages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "info", true)

	called := false
	handler := Middleware(log)(func(context.Context, *bot.Bot, *models.Update) { called = true })
	handler(context.Background(), nil, &models.Update{
		ID: 9,
		EditedMessage: &models.Message{
			ID:   3,
			Chat: models.Chat{ID: -100, Username: "archivechat"},
			From: &models.User{ID: 77},
			Text: strings.Repeat("ж", 80),
		},
	})
	require.True(t, called)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Finished processing update", entry["msg"])
	assert.Equal(t, "edited_message", entry["update_type"])
	assert.EqualValues(t, 77, entry["user_id"])
	assert.Equal(t, "archivechat", entry["chat_username"])
	assert.Equal(t, strings.Repeat("ж", 47)+"...", entry["text_preview"])
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "...", truncateString("abcdef", 2))
}

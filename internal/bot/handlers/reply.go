package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// replyTo sends text as a reply to msg with link previews disabled.
func replyTo(ctx context.Context, client ChatClient, msg *models.Message, text string) error {
	_, err := client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               text,
		ReplyParameters:    &models.ReplyParameters{MessageID: msg.ID},
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	return err
}

func replyError(ctx context.Context, log *slog.Logger, client ChatClient, msg *models.Message, text string) {
	if err := replyTo(ctx, client, msg, text); err != nil {
		log.ErrorContext(ctx, "Failed to send error reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

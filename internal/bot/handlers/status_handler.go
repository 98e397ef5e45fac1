package handlers

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AverageRecordSize is the per-record byte estimate behind the archive
// size shown by /rec_status.
const AverageRecordSize = 451

// NewStatusHandler returns a handler for the /rec_status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rec_status")

	if update.Message == nil {
		log.WarnContext(ctx, "Status handler received update without message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	opCtx, cancel := withTimeout(ctx, h.deps.Config.Database.OperationTimeout)
	count, err := h.deps.Store.EstimatedCount(opCtx)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to read estimated record count", "error", err)
		return
	}

	text := StatusText(h.deps.Config.Messages.Status, count)
	if _, err := h.deps.client(b).SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send status", "chat_id", chatID, "error", err)
		return
	}
	log.InfoContext(ctx, "Sent archive status", "chat_id", chatID, "count", count)
}

// StatusText renders the status template with the count and the estimated
// size in the largest fitting binary unit.
func StatusText(format string, count int64) string {
	if count < 0 {
		count = 0
	}
	return fmt.Sprintf(format, count, humanize.IBytes(uint64(count)*AverageRecordSize))
}

package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recbot/internal/archive"
)

// NewArchiveHandler returns the default handler. It archives new and edited
// messages from the archive chat and ignores everything else.
func NewArchiveHandler(deps HandlerDeps) bot.HandlerFunc {
	return archiveHandler{deps}.Handle
}

type archiveHandler struct {
	deps HandlerDeps
}

func (h archiveHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || !h.deps.Config.Telegram.IsArchiveChat(msg.Chat.Username) {
		return
	}
	log := h.deps.Logger.With("handler", "archive", "chat_id", msg.Chat.ID, "message_id", msg.ID)

	rec, err := archive.Normalize(msg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to normalize message", "error", err)
		return
	}

	opCtx, cancel := withTimeout(ctx, h.deps.Config.Database.OperationTimeout)
	defer cancel()
	if err := h.deps.Store.Insert(opCtx, rec); err != nil {
		log.ErrorContext(ctx, "Failed to archive message", "edit", rec.IsEdit(), "error", err)
		return
	}
	log.DebugContext(ctx, "Archived message", "edit", rec.IsEdit())
}

package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recbot/internal/archive"
)

// NewLogsHandler returns a handler for the /rec_logs command.
func NewLogsHandler(deps HandlerDeps) bot.HandlerFunc {
	return logsHandler{deps}.Handle
}

type logsHandler struct {
	deps HandlerDeps
}

func (h logsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rec_logs")

	msg := update.Message
	if msg == nil {
		log.WarnContext(ctx, "Logs handler received update without message", "update_id", update.ID)
		return
	}

	args := archive.ParseLogsArgs(msg.Text)
	identity, err := archive.ResolveIdentity(args.Selector, msg.ReplyToMessage)
	if err != nil {
		log.DebugContext(ctx, "No identity to export, ignoring command", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	query := h.deps.Engine.Resolve(args, identity)
	log = log.With("identity", identity.String(), "field", string(identity.Field), "ranged", query.Ranged)

	opCtx, cancel := withTimeout(ctx, h.deps.Config.Database.OperationTimeout)
	transcript, count, err := h.deps.Engine.Transcript(opCtx, query)
	cancel()
	client := h.deps.client(b)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build transcript", "error", err)
		replyError(ctx, log, client, msg, h.deps.Config.Messages.UpstreamError)
		return
	}

	link, err := h.deps.Publisher.Publish(ctx, transcript)
	if err != nil {
		log.ErrorContext(ctx, "Failed to publish transcript", "records", count, "error", err)
		replyError(ctx, log, client, msg, h.deps.Config.Messages.UpstreamError)
		return
	}

	if err := replyTo(ctx, client, msg, link); err != nil {
		log.ErrorContext(ctx, "Failed to send logs link", "chat_id", msg.Chat.ID, "error", err)
		return
	}
	log.InfoContext(ctx, "Exported logs", "records", count, "link", link)
}

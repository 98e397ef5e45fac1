// Package handlers contains the Telegram update handlers for recbot: the
// archival default handler, the /rec_status and /rec_logs commands, and the
// authorization middleware guarding the commands.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recbot/internal/archive"
	"github.com/edgard/recbot/internal/config"
	"github.com/edgard/recbot/internal/paste"
)

// ChatClient is the part of the Bot API the handlers call. *bot.Bot
// satisfies it.
type ChatClient interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	GetChatAdministrators(ctx context.Context, params *bot.GetChatAdministratorsParams) ([]models.ChatMember, error)
}

var _ ChatClient = (*bot.Bot)(nil)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     archive.Store
	Engine    *archive.Engine
	Publisher paste.Publisher

	// BotUsername is the bot's own username, used to accept commands
	// addressed as /<command>@<username>.
	BotUsername string

	// Client overrides the bot passed to handlers. When nil, handlers call
	// the *bot.Bot that dispatched the update.
	Client ChatClient
}

func (d HandlerDeps) client(b *bot.Bot) ChatClient {
	if d.Client != nil {
		return d.Client
	}
	return b
}

// withTimeout derives a context bounded by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

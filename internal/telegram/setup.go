// Package telegram builds the Bot API client, registers handlers, and
// serves webhook deliveries.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recbot/internal/bot/handlers"
	"github.com/edgard/recbot/internal/config"
)

// ClientOptions returns the bot options derived from configuration: the
// outbound HTTP client (with the optional proxy) and the webhook secret.
func ClientOptions(tg config.TelegramConfig, wh config.WebhookConfig) ([]bot.Option, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tg.Proxy != "" {
		proxyURL, err := url.Parse(tg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	client := &http.Client{Transport: transport, Timeout: tg.RequestTimeout}

	opts := []bot.Option{bot.WithHTTPClient(tg.RequestTimeout, client)}
	if wh.SecretToken != "" {
		opts = append(opts, bot.WithWebhookSecretToken(wh.SecretToken))
	}
	return opts, nil
}

// NewTelegramBot creates a Bot API client.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// applyMiddleware wraps a handler with mw so that mw[0] is outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// HandlerRegistrar is satisfied by *bot.Bot.
type HandlerRegistrar interface {
	RegisterHandlerMatchFunc(matchFunc bot.MatchFunc, f bot.HandlerFunc, m ...bot.Middleware) string
}

// RegisterHandlers registers command handlers with their middleware.
func RegisterHandlers(b HandlerRegistrar, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil || regHandler.Match == nil {
			log.Warn("Skipping registration for incomplete handler", "command", name)
			continue
		}
		b.RegisterHandlerMatchFunc(regHandler.Match, applyMiddleware(regHandler.Handler, regHandler.Middleware))
		log.Debug("Registered handler", "command", name, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(registeredHandlers))
	return nil
}

// CommandPublisher is satisfied by *bot.Bot.
type CommandPublisher interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// PublishCommands sets the command list shown by Telegram clients.
func PublishCommands(ctx context.Context, b CommandPublisher, cmds []models.BotCommand) error {
	if len(cmds) == 0 {
		return nil
	}
	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

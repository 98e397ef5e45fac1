// Package bot wires the recbot components together and manages their
// lifecycle: webhook registration, the HTTP listener, update dispatch and
// the task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/recbot/internal/config"
	"github.com/edgard/recbot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

// TelegramBot is the part of *bot.Bot the orchestrator drives.
type TelegramBot interface {
	telegram.WebhookClient
	StartWebhook(ctx context.Context)
}

// Bot owns the running components.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	tgBot     TelegramBot
	server    *http.Server
	scheduler *Scheduler
}

// NewBot creates the orchestrator. server serves the webhook router.
func NewBot(logger *slog.Logger, cfg *config.Config, tgBot TelegramBot, server *http.Server, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		tgBot:     tgBot,
		server:    server,
		scheduler: scheduler,
	}
}

// Run registers the webhook and runs every component until ctx is
// cancelled or one of them fails. The webhook is deleted on the way out.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	setCtx, cancel := context.WithTimeout(ctx, b.cfg.Telegram.RequestTimeout)
	err := telegram.RegisterWebhook(setCtx, b.tgBot, b.cfg.Webhook.Endpoint(), b.cfg.Webhook.SecretToken)
	cancel()
	if err != nil {
		return err
	}
	b.logger.Info("Webhook registered", "url", b.cfg.Webhook.URL)

	defer b.deleteWebhook(ctx)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting update dispatcher...")
		b.tgBot.StartWebhook(gCtx)
		b.logger.Info("Update dispatcher stopped.")
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting webhook listener", "addr", b.server.Addr)
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook listener failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer cancel()
		if err := b.server.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("Error shutting down webhook listener", "error", err)
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(gCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err = g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

func (b *Bot) deleteWebhook(ctx context.Context) {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := telegram.DeleteWebhook(delCtx, b.tgBot); err != nil {
		b.logger.Error("Failed to delete webhook", "error", err)
		return
	}
	b.logger.Info("Webhook deleted")
}

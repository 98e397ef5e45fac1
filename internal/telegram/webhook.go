package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
)

// HealthPath answers liveness probes.
const HealthPath = "/healthz"

// NewWebhookRouter returns the HTTP listener routes: POST path feeds
// Telegram updates to updates, GET HealthPath reports liveness. Every other
// request is a 404.
func NewWebhookRouter(path string, updates http.Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "webhook")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.POST(path, gin.WrapH(updates))
	r.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// requestLogger logs each request without the path, which is a secret.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route != HealthPath {
			route = "webhook"
		}
		log.DebugContext(c.Request.Context(), "Handled request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// WebhookClient is satisfied by *bot.Bot.
type WebhookClient interface {
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

// RegisterWebhook points Telegram at endpoint, dropping updates queued
// while the bot was offline.
func RegisterWebhook(ctx context.Context, b WebhookClient, endpoint, secretToken string) error {
	_, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                endpoint,
		DropPendingUpdates: true,
		SecretToken:        secretToken,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook registration.
func DeleteWebhook(ctx context.Context, b WebhookClient) error {
	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

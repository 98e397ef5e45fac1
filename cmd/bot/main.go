// Package main contains the entrypoint for the recbot archive bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/recbot/internal/archive"
	"github.com/edgard/recbot/internal/bot"
	"github.com/edgard/recbot/internal/bot/handlers"
	"github.com/edgard/recbot/internal/bot/tasks"
	"github.com/edgard/recbot/internal/config"
	"github.com/edgard/recbot/internal/database"
	"github.com/edgard/recbot/internal/database/mongostore"
	"github.com/edgard/recbot/internal/dateparse"
	"github.com/edgard/recbot/internal/logger"
	"github.com/edgard/recbot/internal/paste"
	"github.com/edgard/recbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes every component, runs the bot until ctx is cancelled,
// and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Failed to open archive store", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close archive store", "error", err)
		}
	}()

	if cfg.Database.CreateIndexes {
		idxCtx, cancel := context.WithTimeout(ctx, cfg.Database.OperationTimeout)
		err := store.EnsureIndexes(idxCtx)
		cancel()
		if err != nil {
			log.Error("Failed to create archive indexes", "error", err)
			return 1
		}
	}

	engine := archive.NewEngine(store, dateparse.New(time.UTC),
		archive.WithHeader(cfg.Messages.LogsHeader),
		archive.WithLogger(log))

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Engine:    engine,
		Publisher: paste.NewClient(cfg.Paste.BaseURL, cfg.Paste.Timeout, nil, log),
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts, err := telegram.ClientOptions(cfg.Telegram, cfg.Webhook)
	if err != nil {
		log.Error("Invalid Telegram client options", "error", err)
		return 1
	}
	botOpts = append(botOpts,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewArchiveHandler(hDeps)),
	)
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	meCtx, cancel := context.WithTimeout(ctx, cfg.Telegram.RequestTimeout)
	me, err := tg.GetMe(meCtx)
	cancel()
	if err != nil {
		log.Error("Failed to fetch bot identity", "error", err)
		return 1
	}
	hDeps.BotUsername = me.Username
	log.Info("Bot identity resolved", "username", me.Username, "id", me.ID)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, handlers.BotCommands(cmdHandlers)); err != nil {
		log.Warn("Failed to publish command list", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Webhook.Host, strconv.Itoa(cfg.Webhook.Port)),
		Handler:           telegram.NewWebhookRouter(cfg.Webhook.Path, tg.WebhookHandler(), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	app := bot.NewBot(log, cfg, tg, server, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (archive.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		return database.NewStore(db, log), nil
	case config.DriverMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
		store, err := mongostore.Connect(connectCtx, mongostore.Options{
			URI:      cfg.URI,
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Name,
			Timeout:  cfg.OperationTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

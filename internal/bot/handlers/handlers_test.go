package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/edgard/recbot/internal/archive"
	"github.com/edgard/recbot/internal/bot/handlers"
	"github.com/edgard/recbot/internal/config"
	"github.com/edgard/recbot/internal/database"
	"github.com/edgard/recbot/internal/dateparse"
	"github.com/edgard/recbot/internal/paste"
)

const (
	ownerID     = int64(1)
	adminID     = int64(2)
	strangerID  = int64(3)
	archiveChat = "ArchiveChat"
	chatID      = int64(-1001)
)

// fakeClient records outgoing messages and serves a fixed admin list.
type fakeClient struct {
	mu         sync.Mutex
	sent       []*bot.SendMessageParams
	admins     []models.ChatMember
	adminsErr  error
	adminCalls []any
}

func (c *fakeClient) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, params)
	return &models.Message{ID: len(c.sent)}, nil
}

func (c *fakeClient) GetChatAdministrators(_ context.Context, params *bot.GetChatAdministratorsParams) ([]models.ChatMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adminCalls = append(c.adminCalls, params.ChatID)
	if c.adminsErr != nil {
		return nil, c.adminsErr
	}
	return c.admins, nil
}

func (c *fakeClient) Sent() []*bot.SendMessageParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*bot.SendMessageParams(nil), c.sent...)
}

func member(t *testing.T, status string, id int64) models.ChatMember {
	t.Helper()
	var m models.ChatMember
	raw := fmt.Sprintf(`{"status":%q,"user":{"id":%d,"is_bot":false,"first_name":"u%d"}}`, status, id, id)
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

// pasteServer is a hastebin stand-in keeping the last uploaded document.
type pasteServer struct {
	*httptest.Server
	mu   sync.Mutex
	docs []string
	fail bool
}

func newPasteServer(t *testing.T) *pasteServer {
	t.Helper()
	ps := &pasteServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		if ps.fail {
			http.Error(w, "unavailable", http.StatusBadGateway)
			return
		}
		body, _ := io.ReadAll(r.Body)
		ps.docs = append(ps.docs, string(body))
		_, _ = fmt.Fprintf(w, `{"key":"doc%d"}`, len(ps.docs))
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pasteServer) Docs() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]string(nil), ps.docs...)
}

type fixture struct {
	deps   handlers.HandlerDeps
	client *fakeClient
	store  *database.Store
	paste  *pasteServer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(database.MemoryPath)
	require.NoError(t, err)
	store := database.NewStore(db, nil)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			ArchiveChat:    archiveChat,
			OwnerID:        ownerID,
			RequestTimeout: time.Second,
		},
		Database: config.DatabaseConfig{OperationTimeout: 5 * time.Second},
		Messages: config.DefaultMessages,
	}

	ps := newPasteServer(t)
	client := &fakeClient{}
	client.admins = []models.ChatMember{member(t, "creator", 100), member(t, "administrator", adminID)}

	clock := func() time.Time { return now }
	engine := archive.NewEngine(store, dateparse.New(time.UTC).WithClock(clock),
		archive.WithHeader(cfg.Messages.LogsHeader),
		archive.WithClock(clock))

	return &fixture{
		deps: handlers.HandlerDeps{
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			Config:    cfg,
			Store:     store,
			Engine:    engine,
			Publisher: paste.NewClient(ps.URL, time.Second, nil, nil),
			Client:    client,
		},
		client: client,
		store:  store,
		paste:  ps,
		now:    now,
	}
}

// command returns the registered handler for name wrapped in its middleware.
func (f *fixture) command(name string) bot.HandlerFunc {
	reg := handlers.RegisterAllCommands(f.deps)["/"+name]
	h := reg.Handler
	for i := len(reg.Middleware) - 1; i >= 0; i-- {
		h = reg.Middleware[i](h)
	}
	return h
}

func (f *fixture) archive(t *testing.T, update *models.Update) {
	t.Helper()
	handlers.NewArchiveHandler(f.deps)(context.Background(), nil, update)
}

func chatMessage(id int, from *models.User, date time.Time, text string) *models.Message {
	return &models.Message{
		ID:   id,
		Date: int(date.Unix()),
		Chat: models.Chat{ID: chatID, Type: "supergroup", Username: "archivechat"},
		From: from,
		Text: text,
	}
}

func commandUpdate(from int64, text string, replyTo *models.Message) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:             500,
		Date:           int(time.Now().Unix()),
		Chat:           models.Chat{ID: chatID, Type: "supergroup", Username: "archivechat"},
		From:           &models.User{ID: from, FirstName: "caller"},
		Text:           text,
		ReplyToMessage: replyTo,
	}}
}

var errBoom = errors.New("boom")

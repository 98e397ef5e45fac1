package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/recbot/internal/archive"
)

func findAll(t *testing.T, store archive.Store, id archive.Identity) []*archive.Record {
	t.Helper()
	var out []*archive.Record
	for rec, err := range store.Find(context.Background(), archive.Filter{Identity: id}) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestArchiveHandlerIgnoresOtherChats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := &models.User{ID: 10, FirstName: "Alice", Username: "alice"}

	other := chatMessage(1, alice, f.now, "elsewhere")
	other.Chat.Username = "otherchat"
	private := chatMessage(2, alice, f.now, "private")
	private.Chat = models.Chat{ID: 10, Type: "private", Username: "alice"}
	noHandle := chatMessage(3, alice, f.now, "no handle")
	noHandle.Chat.Username = ""

	for _, msg := range []*models.Message{other, private, noHandle} {
		f.archive(t, &models.Update{Message: msg})
		f.archive(t, &models.Update{EditedMessage: msg})
	}
	f.archive(t, &models.Update{})

	count, err := f.store.EstimatedCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.client.Sent())
}

func TestArchiveHandlerWritesOneRecordPerEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := &models.User{ID: 10, FirstName: "Alice", Username: "alice"}
	sent := time.Date(2024, time.January, 1, 9, 30, 15, 0, time.UTC)

	msg := chatMessage(7, alice, sent, "hello")
	msg.Chat.Username = "ARCHIVECHAT"
	f.archive(t, &models.Update{Message: msg})

	got := findAll(t, f.store, archive.ByID(10))
	require.Len(t, got, 1)
	assert.Equal(t, sent, got[0].Date)
	assert.Equal(t, "hello", got[0].Text)
	assert.Nil(t, got[0].EditDate)
	assert.Empty(t, f.client.Sent())
}

func TestArchiveHandlerAppendsEdits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := &models.User{ID: 10, FirstName: "Alice", Username: "alice"}
	sent := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	edited := sent.Add(2 * time.Minute)

	f.archive(t, &models.Update{Message: chatMessage(7, alice, sent, "helo")})

	edit := chatMessage(7, alice, sent, "hello")
	edit.EditDate = int(edited.Unix())
	f.archive(t, &models.Update{EditedMessage: edit})

	got := findAll(t, f.store, archive.ByUsername("alice"))
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].MessageID)
	assert.Equal(t, 7, got[1].MessageID)
	assert.Equal(t, "helo", got[0].Text)
	assert.Equal(t, "hello", got[1].Text)
	require.NotNil(t, got[1].EditDate)
	assert.Equal(t, edited, *got[1].EditDate)
	assert.Equal(t, sent, got[1].Date)
}

func TestArchiveHandlerKeepsNonTextMessages(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := &models.User{ID: 10, FirstName: "Alice", Username: "alice"}

	msg := chatMessage(8, alice, f.now, "")
	msg.Sticker = &models.Sticker{FileID: "sticker-file", Emoji: "🙂"}
	f.archive(t, &models.Update{Message: msg})

	got := findAll(t, f.store, archive.ByID(10))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Text)
	assert.Contains(t, got[0].Extra, "sticker")
}

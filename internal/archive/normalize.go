package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrNilMessage is returned by Normalize when there is no message to archive.
var ErrNilMessage = errors.New("nil message")

// Normalize converts a Telegram message (new or edited) into a Record.
//
// The message is serialized to a plain document first so every platform
// field survives in Extra. The timestamps and the load-bearing identity
// fields are then taken from the typed message rather than the round-tripped
// document, so the canonical date is exactly the send time Telegram reported.
// A quoted message keeps its full document in Reply.Extra.
func Normalize(msg *models.Message) (*Record, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message %d: %w", msg.ID, err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize message %d: %w", msg.ID, err)
	}
	replyDoc, _ := doc[keyReplyTo].(map[string]any)
	for _, k := range typedKeys {
		delete(doc, k)
	}

	rec := &Record{
		MessageID: msg.ID,
		Chat:      chatFromModel(msg.Chat),
		Text:      msg.Text,
		Date:      fromEpoch(msg.Date),
	}
	if msg.From != nil {
		rec.From = userFromModel(msg.From)
	}
	if msg.EditDate != 0 {
		editDate := fromEpoch(msg.EditDate)
		rec.EditDate = &editDate
	}
	if reply := msg.ReplyToMessage; reply != nil {
		rec.ReplyTo = &Reply{
			MessageID: reply.ID,
			Text:      reply.Text,
		}
		if reply.From != nil {
			from := userFromModel(reply.From)
			rec.ReplyTo.From = &from
		}
		for _, k := range replyTypedKeys {
			delete(replyDoc, k)
		}
		if len(replyDoc) > 0 {
			rec.ReplyTo.Extra = replyDoc
		}
	}
	if len(doc) > 0 {
		rec.Extra = doc
	}
	return rec, nil
}

func fromEpoch(sec int) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}

func chatFromModel(c models.Chat) Chat {
	return Chat{
		ID:       c.ID,
		Username: c.Username,
		Title:    c.Title,
		Type:     string(c.Type),
	}
}

func userFromModel(u *models.User) User {
	return User{
		ID:        u.ID,
		IsBot:     u.IsBot,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

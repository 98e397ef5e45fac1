package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/edgard/recbot/internal/archive"
)

type chatDoc struct {
	ID       int64  `bson:"id"`
	Username string `bson:"username,omitempty"`
	Title    string `bson:"title,omitempty"`
	Type     string `bson:"type,omitempty"`
}

type userDoc struct {
	ID        int64  `bson:"id"`
	IsBot     bool   `bson:"is_bot,omitempty"`
	FirstName string `bson:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty"`
	Username  string `bson:"username,omitempty"`
}

type replyDoc struct {
	MessageID int      `bson:"message_id"`
	Text      string   `bson:"text,omitempty"`
	From      *userDoc `bson:"from,omitempty"`
	Extra     bson.M   `bson:",inline"`
}

// messageDoc is the stored form of an archive.Record. Untyped platform
// fields are inlined at the top level next to the typed ones.
type messageDoc struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	MessageID int                `bson:"message_id"`
	Chat      chatDoc            `bson:"chat"`
	From      userDoc            `bson:"from"`
	Text      string             `bson:"text,omitempty"`
	Date      time.Time          `bson:"date"`
	EditDate  *time.Time         `bson:"edit_date,omitempty"`
	ReplyTo   *replyDoc          `bson:"reply_to_message,omitempty"`
	Extra     bson.M             `bson:",inline"`
}

func userToDoc(u archive.User) userDoc {
	return userDoc{ID: u.ID, IsBot: u.IsBot, FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
}

func userFromDoc(d userDoc) archive.User {
	return archive.User{ID: d.ID, IsBot: d.IsBot, FirstName: d.FirstName, LastName: d.LastName, Username: d.Username}
}

func toDocument(rec *archive.Record) *messageDoc {
	doc := &messageDoc{
		MessageID: rec.MessageID,
		Chat:      chatDoc{ID: rec.Chat.ID, Username: rec.Chat.Username, Title: rec.Chat.Title, Type: rec.Chat.Type},
		From:      userToDoc(rec.From),
		Text:      rec.Text,
		Date:      rec.Date.UTC(),
	}
	if rec.EditDate != nil {
		edit := rec.EditDate.UTC()
		doc.EditDate = &edit
	}
	if rec.ReplyTo != nil {
		doc.ReplyTo = &replyDoc{MessageID: rec.ReplyTo.MessageID, Text: rec.ReplyTo.Text}
		if rec.ReplyTo.From != nil {
			from := userToDoc(*rec.ReplyTo.From)
			doc.ReplyTo.From = &from
		}
		doc.ReplyTo.Extra = toBSON(rec.ReplyTo.Extra)
	}
	doc.Extra = toBSON(rec.Extra)
	return doc
}

func fromDocument(doc *messageDoc) *archive.Record {
	rec := &archive.Record{
		MessageID: doc.MessageID,
		Chat:      archive.Chat{ID: doc.Chat.ID, Username: doc.Chat.Username, Title: doc.Chat.Title, Type: doc.Chat.Type},
		From:      userFromDoc(doc.From),
		Text:      doc.Text,
		Date:      doc.Date.UTC(),
	}
	if doc.EditDate != nil {
		edit := doc.EditDate.UTC()
		rec.EditDate = &edit
	}
	if doc.ReplyTo != nil {
		rec.ReplyTo = &archive.Reply{MessageID: doc.ReplyTo.MessageID, Text: doc.ReplyTo.Text}
		if doc.ReplyTo.From != nil {
			from := userFromDoc(*doc.ReplyTo.From)
			rec.ReplyTo.From = &from
		}
		rec.ReplyTo.Extra = fromBSON(doc.ReplyTo.Extra)
	}
	rec.Extra = fromBSON(doc.Extra)
	return rec
}

func toBSON(extra map[string]any) bson.M {
	if len(extra) == 0 {
		return nil
	}
	m := make(bson.M, len(extra))
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func fromBSON(m bson.M) map[string]any {
	if len(m) == 0 {
		return nil
	}
	extra := make(map[string]any, len(m))
	for k, v := range m {
		extra[k] = plain(v)
	}
	return extra
}

// plain converts decoded BSON values into the JSON-like types records
// carry in Extra.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}

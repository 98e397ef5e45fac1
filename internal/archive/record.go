// Package archive implements the message archive: the normalized record
// produced from Telegram updates, the Store contract the backends satisfy,
// and the log query engine that turns stored records into transcripts.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Chat identifies the chat a record was sent in.
type Chat struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title,omitempty"`
	Type     string `json:"type,omitempty"`
}

// User is the sender identity of a record. ID is stable, Username and
// FirstName may change over time and are stored as seen at send time.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Reply is the quoted message of a record sent as a reply. Text and From
// are typed for rendering; every other field of the quoted message (its
// date, chat, caption, media, entities) stays in Extra unchanged.
type Reply struct {
	MessageID int
	Text      string
	From      *User

	Extra map[string]any
}

type replyJSON struct {
	MessageID int    `json:"message_id"`
	Text      string `json:"text,omitempty"`
	From      *User  `json:"from,omitempty"`
}

var replyTypedKeys = []string{keyMessageID, keyText, keyFrom}

// MarshalJSON encodes the quoted message as one document, the extra fields
// merged with the typed ones.
func (r Reply) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Extra)+len(replyTypedKeys))
	for k, v := range r.Extra {
		doc[k] = v
	}
	doc[keyMessageID] = r.MessageID
	if r.Text != "" {
		doc[keyText] = r.Text
	} else {
		delete(doc, keyText)
	}
	if r.From != nil {
		doc[keyFrom] = r.From
	} else {
		delete(doc, keyFrom)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a document produced by MarshalJSON.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var typed replyJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return fmt.Errorf("failed to decode reply fields: %w", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	for _, k := range replyTypedKeys {
		delete(doc, k)
	}

	*r = Reply{MessageID: typed.MessageID, Text: typed.Text, From: typed.From}
	if len(doc) > 0 {
		r.Extra = doc
	}
	return nil
}

// Record is one archived message event. An edit is archived as a new
// Record carrying EditDate; records are never updated in place.
type Record struct {
	MessageID int
	Chat      Chat
	From      User
	Text      string
	Date      time.Time
	EditDate  *time.Time
	ReplyTo   *Reply

	// Extra holds every platform field not lifted into the typed fields
	// above. Values are plain JSON types (int64, float64, string, bool,
	// []any, map[string]any).
	Extra map[string]any
}

// Keys of the typed fields in the document form of a Record.
const (
	keyMessageID = "message_id"
	keyChat      = "chat"
	keyFrom      = "from"
	keyText      = "text"
	keyDate      = "date"
	keyEditDate  = "edit_date"
	keyReplyTo   = "reply_to_message"
)

var typedKeys = []string{keyMessageID, keyChat, keyFrom, keyText, keyDate, keyEditDate, keyReplyTo}

// IsEdit reports whether the record is an edit event.
func (r *Record) IsEdit() bool {
	return r.EditDate != nil
}

type recordJSON struct {
	MessageID int        `json:"message_id"`
	Chat      Chat       `json:"chat"`
	From      User       `json:"from"`
	Text      string     `json:"text,omitempty"`
	Date      time.Time  `json:"date"`
	EditDate  *time.Time `json:"edit_date,omitempty"`
	ReplyTo   *Reply     `json:"reply_to_message,omitempty"`
}

// MarshalJSON encodes the record as a single flat document: the extra
// fields merged with the typed ones. Dates are RFC 3339 in UTC.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Extra)+len(typedKeys))
	for k, v := range r.Extra {
		doc[k] = v
	}
	doc[keyMessageID] = r.MessageID
	doc[keyChat] = r.Chat
	doc[keyFrom] = r.From
	doc[keyDate] = r.Date.UTC()
	if r.Text != "" {
		doc[keyText] = r.Text
	} else {
		delete(doc, keyText)
	}
	if r.EditDate != nil {
		doc[keyEditDate] = r.EditDate.UTC()
	} else {
		delete(doc, keyEditDate)
	}
	if r.ReplyTo != nil {
		doc[keyReplyTo] = r.ReplyTo
	} else {
		delete(doc, keyReplyTo)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a document produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var typed recordJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return fmt.Errorf("failed to decode record fields: %w", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	for _, k := range typedKeys {
		delete(doc, k)
	}

	*r = Record{
		MessageID: typed.MessageID,
		Chat:      typed.Chat,
		From:      typed.From,
		Text:      typed.Text,
		Date:      typed.Date.UTC(),
		EditDate:  typed.EditDate,
		ReplyTo:   typed.ReplyTo,
	}
	if len(doc) > 0 {
		r.Extra = doc
	}
	return nil
}

// decodeDocument decodes a JSON object into a map of plain values, keeping
// integers exact instead of widening them to float64.
func decodeDocument(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	for k, v := range doc {
		doc[k] = plain(v)
	}
	return doc, nil
}

func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = plain(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = plain(inner)
		}
		return t
	default:
		return v
	}
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/edgard/recbot/internal/archive"
)

// messageRow is one archived record in the messages table. The identity
// and date columns exist for indexing and filtering; Document holds the
// full record as JSON and is the source of truth when reading back.
type messageRow struct {
	ID            int64         `db:"id"`
	MessageID     int           `db:"message_id"`
	ChatID        int64         `db:"chat_id"`
	ChatUsername  string        `db:"chat_username"`
	FromID        int64         `db:"from_id"`
	FromUsername  string        `db:"from_username"`
	FromFirstName string        `db:"from_first_name"`
	Date          int64         `db:"date"`
	EditDate      sql.NullInt64 `db:"edit_date"`
	Document      string        `db:"document"`
}

func rowFromRecord(rec *archive.Record) (*messageRow, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record document: %w", err)
	}
	row := &messageRow{
		MessageID:     rec.MessageID,
		ChatID:        rec.Chat.ID,
		ChatUsername:  rec.Chat.Username,
		FromID:        rec.From.ID,
		FromUsername:  rec.From.Username,
		FromFirstName: rec.From.FirstName,
		Date:          rec.Date.Unix(),
		Document:      string(doc),
	}
	if rec.EditDate != nil {
		row.EditDate = sql.NullInt64{Int64: rec.EditDate.Unix(), Valid: true}
	}
	return row, nil
}

func recordFromDocument(doc string) (*archive.Record, error) {
	var rec archive.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record document: %w", err)
	}
	return &rec, nil
}

// columns maps identity fields to their indexed columns.
var columns = map[archive.Field]string{
	archive.FieldID:        "from_id",
	archive.FieldUsername:  "from_username",
	archive.FieldFirstName: "from_first_name",
}

package mongostore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/edgard/recbot/internal/archive"
)

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	sent := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	edited := sent.Add(time.Minute)
	rec := &archive.Record{
		MessageID: 5,
		Chat:      archive.Chat{ID: -100, Username: "archivechat", Type: "supergroup"},
		From:      archive.User{ID: 7, FirstName: "Alice", Username: "alice"},
		Text:      "fixed",
		Date:      sent,
		EditDate:  &edited,
		ReplyTo: &archive.Reply{
			MessageID: 4,
			Text:      "question",
			From:      &archive.User{ID: 8, FirstName: "Bob"},
			Extra:     map[string]any{"caption": "look", "date": int64(1704110000)},
		},
		Extra: map[string]any{
			"entities": []any{map[string]any{"type": "bold", "offset": int64(0)}},
		},
	}

	raw, err := bson.Marshal(toDocument(rec))
	require.NoError(t, err)

	var doc messageDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got := fromDocument(&doc)

	assert.Equal(t, rec.MessageID, got.MessageID)
	assert.Equal(t, rec.Chat, got.Chat)
	assert.Equal(t, rec.From, got.From)
	assert.Equal(t, sent, got.Date)
	require.NotNil(t, got.EditDate)
	assert.Equal(t, edited, *got.EditDate)
	assert.Equal(t, rec.ReplyTo, got.ReplyTo)
	assert.Equal(t, rec.Extra, got.Extra)
}

func TestDocumentUsesTopLevelIdentityPaths(t *testing.T) {
	t.Parallel()

	raw, err := bson.Marshal(toDocument(&archive.Record{
		MessageID: 1,
		From:      archive.User{ID: 7, Username: "alice", FirstName: "Alice"},
		Date:      time.Unix(0, 0).UTC(),
	}))
	require.NoError(t, err)

	require.NoError(t, bson.Raw(raw).Validate())
	for _, field := range archive.IndexedFields {
		_, lookupErr := bson.Raw(raw).LookupErr(strings.Split(string(field), ".")...)
		assert.NoError(t, lookupErr, field)
	}
}

func TestBuildFilter(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC)

	assert.Equal(t,
		bson.D{{Key: "from.username", Value: "alice"}},
		buildFilter(archive.Filter{Identity: archive.ByUsername("alice")}))

	assert.Equal(t,
		bson.D{
			{Key: "from.id", Value: int64(7)},
			{Key: "date", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
		},
		buildFilter(archive.Filter{Identity: archive.ByID(7), Range: archive.Range{From: &from, To: &to}}))

	assert.Equal(t,
		bson.D{
			{Key: "from.first_name", Value: "Bob"},
			{Key: "date", Value: bson.D{{Key: "$lte", Value: to}}},
		},
		buildFilter(archive.Filter{Identity: archive.ByFirstName("Bob"), Range: archive.Range{To: &to}}))
}

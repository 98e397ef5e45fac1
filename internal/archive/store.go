package archive

import (
	"context"
	"iter"
	"strconv"
	"time"
)

// Field names a sender identity attribute a Filter can match on. The values
// are the dotted document paths used by the document backends.
type Field string

// Identity fields, each backed by an index.
const (
	FieldID        Field = "from.id"
	FieldUsername  Field = "from.username"
	FieldFirstName Field = "from.first_name"
)

// IndexedFields lists the fields EnsureIndexes must cover.
var IndexedFields = []Field{FieldUsername, FieldID, FieldFirstName}

// Identity is an equality match on one sender field. ID is used for
// FieldID, Name for the string fields.
type Identity struct {
	Field Field
	ID    int64
	Name  string
}

// ByID returns an Identity matching the sender id.
func ByID(id int64) Identity {
	return Identity{Field: FieldID, ID: id}
}

// ByUsername returns an Identity matching the sender username.
func ByUsername(name string) Identity {
	return Identity{Field: FieldUsername, Name: name}
}

// ByFirstName returns an Identity matching the sender first name.
func ByFirstName(name string) Identity {
	return Identity{Field: FieldFirstName, Name: name}
}

// Value returns the value to compare the field with.
func (i Identity) Value() any {
	if i.Field == FieldID {
		return i.ID
	}
	return i.Name
}

// String renders the identity the way operators typed it.
func (i Identity) String() string {
	if i.Field == FieldID {
		return strconv.FormatInt(i.ID, 10)
	}
	return i.Name
}

// Matches reports whether the user satisfies the identity.
func (i Identity) Matches(u User) bool {
	switch i.Field {
	case FieldID:
		return u.ID == i.ID
	case FieldUsername:
		return u.Username == i.Name
	case FieldFirstName:
		return u.FirstName == i.Name
	default:
		return false
	}
}

// Range is an inclusive date interval. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether the range applies no bound at all.
func (r Range) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Filter selects records by sender identity and send date.
type Filter struct {
	Identity Identity
	Range    Range
}

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(rec *Record) bool {
	return f.Identity.Matches(rec.From) && f.Range.Contains(rec.Date)
}

// Store is an append-only archive of records. Implementations must be safe
// for concurrent use.
type Store interface {
	// Insert appends one record. Records are never deduplicated.
	Insert(ctx context.Context, rec *Record) error

	// EstimatedCount returns a cheap, possibly stale record count.
	EstimatedCount(ctx context.Context) (int64, error)

	// Find streams matching records in insertion order. Iteration stops at
	// the first error, which is yielded with a nil record.
	Find(ctx context.Context, filter Filter) iter.Seq2[*Record, error]

	// EnsureIndexes creates the identity indexes. Safe to call repeatedly.
	EnsureIndexes(ctx context.Context) error

	// Maintain runs backend housekeeping. Backends without any return nil.
	Maintain(ctx context.Context) error

	Close() error
}

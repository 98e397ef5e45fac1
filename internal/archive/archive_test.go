package archive_test

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/edgard/recbot/internal/archive"
)

// layoutParser understands ISO dates only, which keeps range tests
// independent of any natural-language parser.
type layoutParser struct{}

func (layoutParser) Parse(expr string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, expr, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sliceStore is an in-memory archive.Store.
type sliceStore struct {
	mu      sync.Mutex
	records []*archive.Record
	findErr error
}

var _ archive.Store = (*sliceStore)(nil)

func (s *sliceStore) Insert(_ context.Context, rec *archive.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *sliceStore) EstimatedCount(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *sliceStore) Find(_ context.Context, filter archive.Filter) iter.Seq2[*archive.Record, error] {
	return func(yield func(*archive.Record, error) bool) {
		if s.findErr != nil {
			yield(nil, s.findErr)
			return
		}
		s.mu.Lock()
		snapshot := append([]*archive.Record(nil), s.records...)
		s.mu.Unlock()
		for _, rec := range snapshot {
			if filter.Matches(rec) && !yield(rec, nil) {
				return
			}
		}
	}
}

func (s *sliceStore) EnsureIndexes(context.Context) error { return nil }
func (s *sliceStore) Maintain(context.Context) error      { return nil }
func (s *sliceStore) Close() error                        { return nil }

func ptrTime(t time.Time) *time.Time {
	return &t
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

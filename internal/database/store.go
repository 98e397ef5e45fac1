package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/recbot/internal/archive"
	apperrors "github.com/edgard/recbot/internal/errors"
)

// Store is the SQLite archive.Store.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ archive.Store = (*Store)(nil)

// NewStore creates a Store backed by a migrated sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "store", "backend", "sqlite"),
	}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Insert appends one record.
func (s *Store) Insert(ctx context.Context, rec *archive.Record) error {
	if rec == nil {
		return errors.New("cannot insert nil record")
	}
	row, err := rowFromRecord(rec)
	if err != nil {
		return apperrors.NewDatabaseError("failed to encode record", err)
	}

	query := `
        INSERT INTO messages (message_id, chat_id, chat_username, from_id, from_username,
                              from_first_name, date, edit_date, document)
        VALUES (:message_id, :chat_id, :chat_username, :from_id, :from_username,
                :from_first_name, :date, :edit_date, :document);
    `
	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting record",
			"chat_id", rec.Chat.ID, "message_id", rec.MessageID, "error", err)
		return apperrors.NewDatabaseError(fmt.Sprintf("failed to insert message %d", rec.MessageID), err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when inserting record",
			"message_id", rec.MessageID, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Record inserted",
		"chat_id", rec.Chat.ID, "message_id", rec.MessageID, "edit", rec.IsEdit())
	return nil
}

// EstimatedCount reads the autoincrement sequence instead of scanning the
// table. The archive is append-only, so the sequence equals the row count.
func (s *Store) EstimatedCount(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.GetContext(ctx, &seq, `SELECT seq FROM sqlite_sequence WHERE name = 'messages'`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error reading record count", "error", err)
		return 0, apperrors.NewDatabaseError("failed to read record count", err)
	}
	return seq, nil
}

// Find streams matching records ordered by insertion.
func (s *Store) Find(ctx context.Context, filter archive.Filter) iter.Seq2[*archive.Record, error] {
	return func(yield func(*archive.Record, error) bool) {
		query, args, err := buildFindQuery(filter)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.db.QueryxContext(ctx, query, args...)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error querying records", "field", string(filter.Identity.Field), "error", err)
			yield(nil, apperrors.NewDatabaseError("failed to query records", err))
			return
		}
		defer func() {
			if closeErr := rows.Close(); closeErr != nil {
				s.logger.WarnContext(ctx, "Error closing record cursor", "error", closeErr)
			}
		}()

		for rows.Next() {
			var doc string
			if err := rows.Scan(&doc); err != nil {
				yield(nil, apperrors.NewDatabaseError("failed to scan record", err))
				return
			}
			rec, err := recordFromDocument(doc)
			if err != nil {
				yield(nil, apperrors.NewDatabaseError("failed to decode record", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, apperrors.NewDatabaseError("failed to iterate records", err))
		}
	}
}

func buildFindQuery(filter archive.Filter) (string, []any, error) {
	column, ok := columns[filter.Identity.Field]
	if !ok {
		return "", nil, fmt.Errorf("unsupported identity field %q", filter.Identity.Field)
	}

	var sb strings.Builder
	sb.WriteString("SELECT document FROM messages WHERE ")
	sb.WriteString(column)
	sb.WriteString(" = ?")
	args := []any{filter.Identity.Value()}

	// Dates are stored as whole seconds.
	if from := filter.Range.From; from != nil {
		lower := from.Unix()
		if from.Nanosecond() > 0 {
			lower++
		}
		sb.WriteString(" AND date >= ?")
		args = append(args, lower)
	}
	if to := filter.Range.To; to != nil {
		sb.WriteString(" AND date <= ?")
		args = append(args, to.Unix())
	}
	sb.WriteString(" ORDER BY id")
	return sb.String(), args, nil
}

// EnsureIndexes creates the sender identity indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, field := range archive.IndexedFields {
		column := columns[field]
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_messages_%s ON messages (%s)", column, column)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.ErrorContext(ctx, "Error creating index", "column", column, "error", err)
			return apperrors.NewDatabaseError(fmt.Sprintf("failed to create index on %s", column), err)
		}
	}
	s.logger.InfoContext(ctx, "Archive indexes ensured", "count", len(archive.IndexedFields))
	return nil
}

// Maintain refreshes planner statistics.
func (s *Store) Maintain(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting database maintenance (ANALYZE)...")
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "Database maintenance timed out or was cancelled", "error", err)
			return fmt.Errorf("database maintenance timed out: %w", err)
		}
		s.logger.ErrorContext(ctx, "Database maintenance failed", "error", err)
		return apperrors.NewDatabaseError("failed to optimize database", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		s.logger.ErrorContext(ctx, "Database maintenance (ANALYZE) failed", "error", err)
		return apperrors.NewDatabaseError("failed to analyze database", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance completed successfully")
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("error closing database: %w", err)
	}
	s.logger.Info("Database connection closed")
	return nil
}

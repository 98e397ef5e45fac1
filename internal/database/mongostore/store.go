// Package mongostore is the MongoDB archive backend.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edgard/recbot/internal/archive"
	apperrors "github.com/edgard/recbot/internal/errors"
)

// CollectionName is the collection holding archived records.
const CollectionName = "messages"

// Options configures the connection.
type Options struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// Store is the MongoDB archive.Store.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

var _ archive.Store = (*Store)(nil)

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.URI == "" {
		return nil, apperrors.NewConfigError("mongodb uri is empty", nil)
	}
	if opts.Database == "" {
		return nil, apperrors.NewConfigError("mongodb database name is empty", nil)
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Username != "" {
		clientOpts.SetAuth(options.Credential{Username: opts.Username, Password: opts.Password})
	}
	if opts.Timeout > 0 {
		clientOpts.SetTimeout(opts.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to connect to mongodb", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.NewDatabaseError("failed to ping mongodb", err)
	}

	logger.Info("MongoDB connected", "database", opts.Database, "collection", CollectionName)
	return &Store{
		client:     client,
		collection: client.Database(opts.Database).Collection(CollectionName),
		logger:     logger.With("component", "store", "backend", "mongodb"),
	}, nil
}

// Insert appends one record.
func (s *Store) Insert(ctx context.Context, rec *archive.Record) error {
	if rec == nil {
		return errors.New("cannot insert nil record")
	}
	if _, err := s.collection.InsertOne(ctx, toDocument(rec)); err != nil {
		s.logger.ErrorContext(ctx, "Error inserting record",
			"chat_id", rec.Chat.ID, "message_id", rec.MessageID, "error", err)
		return apperrors.NewDatabaseError(fmt.Sprintf("failed to insert message %d", rec.MessageID), err)
	}
	s.logger.DebugContext(ctx, "Record inserted",
		"chat_id", rec.Chat.ID, "message_id", rec.MessageID, "edit", rec.IsEdit())
	return nil
}

// EstimatedCount uses collection metadata.
func (s *Store) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := s.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading record count", "error", err)
		return 0, apperrors.NewDatabaseError("failed to read record count", err)
	}
	return n, nil
}

// Find streams matching records in insertion order.
func (s *Store) Find(ctx context.Context, filter archive.Filter) iter.Seq2[*archive.Record, error] {
	return func(yield func(*archive.Record, error) bool) {
		cursor, err := s.collection.Find(ctx, buildFilter(filter),
			options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			s.logger.ErrorContext(ctx, "Error querying records", "field", string(filter.Identity.Field), "error", err)
			yield(nil, apperrors.NewDatabaseError("failed to query records", err))
			return
		}
		defer func() {
			if closeErr := cursor.Close(context.WithoutCancel(ctx)); closeErr != nil {
				s.logger.WarnContext(ctx, "Error closing record cursor", "error", closeErr)
			}
		}()

		for cursor.Next(ctx) {
			var doc messageDoc
			if err := cursor.Decode(&doc); err != nil {
				yield(nil, apperrors.NewDatabaseError("failed to decode record", err))
				return
			}
			if !yield(fromDocument(&doc), nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(nil, apperrors.NewDatabaseError("failed to iterate records", err))
		}
	}
}

func buildFilter(filter archive.Filter) bson.D {
	f := bson.D{{Key: string(filter.Identity.Field), Value: filter.Identity.Value()}}
	if filter.Range.IsZero() {
		return f
	}
	bounds := bson.D{}
	if filter.Range.From != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: filter.Range.From.UTC()})
	}
	if filter.Range.To != nil {
		bounds = append(bounds, bson.E{Key: "$lte", Value: filter.Range.To.UTC()})
	}
	return append(f, bson.E{Key: "date", Value: bounds})
}

// EnsureIndexes creates ascending indexes on the sender identity fields.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := make([]mongo.IndexModel, 0, len(archive.IndexedFields))
	for _, field := range archive.IndexedFields {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: string(field), Value: 1}}})
	}
	names, err := s.collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating indexes", "error", err)
		return apperrors.NewDatabaseError("failed to create indexes", err)
	}
	s.logger.InfoContext(ctx, "Archive indexes ensured", "indexes", names)
	return nil
}

// Maintain is a no-op; the server manages its own storage.
func (s *Store) Maintain(context.Context) error {
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error disconnecting from mongodb: %w", err)
	}
	s.logger.Info("MongoDB connection closed")
	return nil
}

package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the timestamp format used in transcript lines.
const DateLayout = "2006-01-02 15:04:05"

// DefaultHeader is the transcript header format; %s is the identity.
const DefaultHeader = "Logs for %s\n\n"

// Query is a resolved /rec_logs request.
type Query struct {
	Filter Filter
	// Ranged is false when the date argument was malformed and the full
	// history is requested.
	Ranged bool
}

// Engine answers log queries against a Store.
type Engine struct {
	store  Store
	parser DateParser
	header string
	now    func() time.Time
	logger *slog.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithHeader sets the transcript header format.
func WithHeader(format string) EngineOption {
	return func(e *Engine) {
		if format != "" {
			e.header = format
		}
	}
}

// WithClock sets the source of "now" for open-ended ranges.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a query engine reading from store and parsing date
// arguments with parser.
func NewEngine(store Store, parser DateParser, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		parser: parser,
		header: DefaultHeader,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "log_query")
	return e
}

// Resolve builds the query for a /rec_logs command from an already
// resolved identity. A malformed date argument yields an unranged query.
func (e *Engine) Resolve(args LogsArgs, identity Identity) Query {
	q := Query{Filter: Filter{Identity: identity}}
	r, ok := ParseRange(args.Range, e.parser, e.now().UTC())
	if !ok {
		e.logger.Debug("Ignoring malformed date range", "range", args.Range)
		return q
	}
	q.Filter.Range = r
	q.Ranged = true
	return q
}

// Transcript renders every record matching q, in chronological order, into
// a plain-text log. It returns the number of records rendered.
func (e *Engine) Transcript(ctx context.Context, q Query) (string, int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, e.header, q.Filter.Identity.String())

	count := 0
	for rec, err := range e.store.Find(ctx, q.Filter) {
		if err != nil {
			return "", count, fmt.Errorf("failed to read archived records: %w", err)
		}
		sb.WriteString(RenderLine(rec))
		sb.WriteByte('\n')
		count++
	}

	e.logger.DebugContext(ctx, "Rendered transcript",
		"identity", q.Filter.Identity.String(),
		"field", string(q.Filter.Identity.Field),
		"records", count,
		"bytes", sb.Len())
	return sb.String(), count, nil
}

// RenderLine formats one record as
// "[<date>, <message_id>] <quoted reply text> -- <text>".
func RenderLine(rec *Record) string {
	reply := ""
	if rec.ReplyTo != nil {
		reply = rec.ReplyTo.Text
	}
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(rec.Date.UTC().Format(DateLayout))
	sb.WriteString(", ")
	sb.WriteString(strconv.Itoa(rec.MessageID))
	sb.WriteString("] ")
	sb.WriteString(reply)
	sb.WriteString(" -- ")
	sb.WriteString(rec.Text)
	return sb.String()
}

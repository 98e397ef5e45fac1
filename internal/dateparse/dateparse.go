// Package dateparse adapts a natural-language date parser to the archive's
// DateParser contract.
package dateparse

import (
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	apperrors "github.com/edgard/recbot/internal/errors"
)

// Parser parses human date expressions ("yesterday", "1 jan 2024",
// "2024-01-31 18:00") relative to a clock, in a fixed location.
type Parser struct {
	location *time.Location
	now      func() time.Time
}

// New creates a Parser. A nil location means UTC.
func New(location *time.Location) *Parser {
	if location == nil {
		location = time.UTC
	}
	return &Parser{location: location, now: time.Now}
}

// WithClock returns a copy of p that resolves relative expressions
// against now.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	cp := *p
	cp.now = now
	return &cp
}

// ParseTime parses expr. The error carries apperrors.CodeDateParse.
func (p *Parser) ParseTime(expr string) (time.Time, error) {
	return p.parse(expr, false)
}

// ParseStrictTime parses expr only when it names a complete date with day,
// month and year. Relative expressions ("yesterday", "2 weeks ago") are
// complete by construction.
func (p *Parser) ParseStrictTime(expr string) (time.Time, error) {
	return p.parse(expr, true)
}

func (p *Parser) parse(expr string, strict bool) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, apperrors.NewDateParseError("empty date expression", nil)
	}
	cfg := &dps.Configuration{
		CurrentTime:     p.now().In(p.location),
		DefaultTimezone: p.location,
		StrictParsing:   strict,
	}
	dt, err := dps.Parse(cfg, expr)
	if err != nil {
		return time.Time{}, apperrors.NewDateParseError("cannot parse date "+expr, err)
	}
	if dt.Time.IsZero() {
		return time.Time{}, apperrors.NewDateParseError("cannot parse date "+expr, nil)
	}
	return dt.Time.UTC(), nil
}

// Parse implements archive.DateParser.
func (p *Parser) Parse(expr string) (time.Time, bool) {
	t, err := p.ParseTime(expr)
	return t, err == nil
}

// ParseStrict implements archive.StrictDateParser.
func (p *Parser) ParseStrict(expr string) (time.Time, bool) {
	t, err := p.ParseStrictTime(expr)
	return t, err == nil
}

package archive

import (
	"strings"
	"time"
)

// DateParser turns a free-form date expression into a time. It reports
// false when the expression cannot be understood.
type DateParser interface {
	Parse(expr string) (time.Time, bool)
}

// StrictDateParser is a DateParser that can also parse an expression only
// when it names a complete date (day, month and year). Partial dates such
// as "2024-01" are rejected by ParseStrict.
type StrictDateParser interface {
	DateParser
	ParseStrict(expr string) (time.Time, bool)
}

// ParseRange resolves the optional "<start>-<end>" argument of /rec_logs.
//
// An empty expression means "everything up to now". Each side is parsed
// with p; an empty or unparseable start leaves the range open at the
// bottom and an empty or unparseable end means now. An end without a time
// of day covers that whole day. Since date expressions contain dashes
// themselves, every dash is tried as the separator. The split with the
// most complete sides wins, then the one with the most usable sides,
// earliest first. With a StrictDateParser a side is complete only when it
// parses strictly, so "2024-01-01-2024-01-31" splits between the two
// dates rather than after "2024-01".
//
// The second result is false when the expression is malformed: it has no
// dash, or no split yields a usable side. Callers then apply no range at all.
func ParseRange(expr string, p DateParser, now time.Time) (Range, bool) {
	if strings.TrimSpace(expr) == "" {
		return Range{To: &now}, true
	}

	var (
		best      Range
		bestScore splitScore
	)
	for i := 0; i < len(expr); i++ {
		if expr[i] != '-' {
			continue
		}
		start := parseSide(expr[:i], p)
		end := parseSide(expr[i+1:], p)

		score := scoreSplit(start, end)
		if !score.better(bestScore) {
			continue
		}

		r := Range{From: start.t}
		if end.t != nil {
			t := endOfDay(*end.t)
			r.To = &t
		} else {
			r.To = &now
		}
		best, bestScore = r, score
	}
	if bestScore.usable == 0 {
		return Range{}, false
	}
	return best, true
}

// splitScore ranks one candidate split of a range expression.
type splitScore struct {
	complete int // sides holding a complete date
	usable   int // sides that are empty or parsed
}

func scoreSplit(sides ...side) splitScore {
	var s splitScore
	for _, sd := range sides {
		if sd.complete {
			s.complete++
		}
		if sd.ok {
			s.usable++
		}
	}
	return s
}

func (s splitScore) better(than splitScore) bool {
	if s.complete != than.complete {
		return s.complete > than.complete
	}
	return s.usable > than.usable
}

// side is one parsed half of a range expression. t is nil for an empty or
// unparseable side; ok is true for an empty side or one the parser
// understood.
type side struct {
	t        *time.Time
	ok       bool
	complete bool
}

func parseSide(expr string, p DateParser) side {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return side{ok: true}
	}
	strict, isStrict := p.(StrictDateParser)
	if isStrict {
		if t, ok := strict.ParseStrict(expr); ok {
			return side{t: &t, ok: true, complete: true}
		}
	}
	t, ok := p.Parse(expr)
	if !ok {
		return side{}
	}
	return side{t: &t, ok: true, complete: !isStrict}
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

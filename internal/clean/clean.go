// Package clean implements the per-entity record normalizers. Each entity has
// one pure function (Users, Cards, Stores, Products, Orders, Dates) that takes
// a raw batch of records and returns a validated, typed batch ready for the
// warehouse loader.
//
// Failure semantics are deliberately lossy: a row whose required fields cannot
// be parsed or coerced is dropped, not errored. The only error any normalizer
// returns is a missing required column, which makes the whole batch unusable.
package clean

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"salesetl/internal/records"
)

// missingColumnError reports a column the normalizer cannot proceed without.
type missingColumnError struct {
	Entity string
	Column string
}

func (e *missingColumnError) Error() string {
	return fmt.Sprintf("%s batch: required column %q not present in input", e.Entity, e.Column)
}

// requireColumns verifies the batch carries every named column. An empty batch
// passes; there is nothing to clean but also nothing wrong with the schema.
func requireColumns(entity string, in []records.Record, cols ...string) error {
	if len(in) == 0 {
		return nil
	}
	for _, c := range cols {
		if !in[0].Has(c) {
			return &missingColumnError{Entity: entity, Column: c}
		}
	}
	return nil
}

// dedupe removes exact duplicate rows, keeping the first occurrence. Rows are
// keyed by an xxh3 hash of their values in the given column order, so the key
// is stable regardless of map iteration order.
func dedupe(in []records.Record, cols []string) []records.Record {
	if len(in) < 2 {
		return in
	}
	seen := make(map[uint64]struct{}, len(in))
	out := make([]records.Record, 0, len(in))
	var b strings.Builder
	for _, r := range in {
		b.Reset()
		for _, c := range cols {
			b.WriteString(r.String(c))
			b.WriteByte('\x1f')
		}
		h := xxh3.HashString(b.String())
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, r)
	}
	return out
}

// dateLayouts are the formats observed across the source systems. Layouts use
// non-padded day/month verbs so both "1968-10-01" and "1968-10-1" parse.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006 January 2",
	"January 2006 2",
	"2006 Jan 2",
	"Jan 2006 2",
	"2006-1-2 15:04:05",
	time.RFC3339,
}

// parseDate parses a date string in any of the known source formats.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// digitsOnly strips every non-digit rune from s.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasLetter reports whether s contains an ASCII letter. Used to reject
// garbage rows where a numeric column holds alphabetic noise.
func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

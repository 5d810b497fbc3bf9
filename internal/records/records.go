// Package records defines the raw tabular unit exchanged between extraction
// providers and the per-entity normalizers. A Record is one row keyed by
// column name; a batch is an ordered []Record sharing a schema.
package records

import (
	"fmt"
	"strconv"
	"time"
)

// Record is a single raw row: column name -> value. Values are whatever the
// extractor produced (string for CSV/PDF sources, mixed types for JSON and
// database sources).
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the column exists, even with a nil value.
func (r Record) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// String returns the value of col rendered as a string. nil renders as "".
// Common scalar types avoid the fmt round trip.
func (r Record) String(col string) string {
	switch t := r[col].(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Empty reports whether col is missing, nil, or one of the placeholder
// strings the source systems use for absent values: "", "NULL", "N/A", and
// the stringified "None" that leaks out of the legacy exports.
func (r Record) Empty(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr {
		return s == "" || s == "NULL" || s == "N/A" || s == "None"
	}
	return false
}

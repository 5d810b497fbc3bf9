package warehouse

import (
	"fmt"
	"strings"
	"time"
)

// provisionalType maps a Go value to the SQL type a freshly loaded column
// gets before CastColumns applies the declared schema. The first non-nil
// value in the column decides; an all-null column falls back to TEXT.
func provisionalType(v any) string {
	switch v.(type) {
	case bool:
		return "BOOLEAN"
	case int, int8, int16, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE PRECISION"
	case time.Time:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// buildCreateTableSQL renders the CREATE TABLE statement for a replace-load.
// Columns are rendered in order with provisional types inferred from the row
// values; every column is nullable at this stage. Constraints and final types
// arrive later in the table's lifecycle.
func buildCreateTableSQL(table string, columns []string, rows [][]any) (string, error) {
	if table == "" {
		return "", fmt.Errorf("missing table name")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("no columns for table %q", table)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", fmt.Errorf("table %q: row %d has %d values, want %d",
				table, i, len(row), len(columns))
		}
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		typ := "TEXT"
		for _, row := range rows {
			if row[i] != nil {
				typ = provisionalType(row[i])
				break
			}
		}
		defs[i] = fmt.Sprintf("  %s %s", pgIdent(col), typ)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(pgFQN(table))
	b.WriteString(" (\n")
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n)")
	return b.String(), nil
}

package warehouse

import (
	"strings"
	"testing"
	"time"
)

func TestProvisionalType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    any
		want string
	}{
		{true, "BOOLEAN"},
		{int(1), "BIGINT"},
		{int64(1), "BIGINT"},
		{3.14, "DOUBLE PRECISION"},
		{time.Now(), "TIMESTAMP"},
		{"text", "TEXT"},
		{[]byte("bytes"), "TEXT"},
		{nil, "TEXT"},
	}
	for _, tc := range tests {
		if got := provisionalType(tc.v); got != tc.want {
			t.Errorf("provisionalType(%T) = %s, want %s", tc.v, got, tc.want)
		}
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   string
		columns []string
		rows    [][]any
		want    []string // substrings expected in the statement
		wantErr bool
	}{
		{
			name:    "types from first non-nil value",
			table:   "dim_products",
			columns: []string{"product_code", "weight_kg", "still_available"},
			rows: [][]any{
				{nil, nil, nil},
				{"R7-3126933h", 0.3, true},
			},
			want: []string{
				`CREATE TABLE "dim_products"`,
				`"product_code" TEXT`,
				`"weight_kg" DOUBLE PRECISION`,
				`"still_available" BOOLEAN`,
			},
		},
		{
			name:    "all null column falls back to text",
			table:   "dim_store_details",
			columns: []string{"latitude"},
			rows:    [][]any{{nil}, {nil}},
			want:    []string{`"latitude" TEXT`},
		},
		{
			name:    "empty batch still creates the table",
			table:   "dim_users",
			columns: []string{"user_uuid"},
			rows:    nil,
			want:    []string{`CREATE TABLE "dim_users"`, `"user_uuid" TEXT`},
		},
		{
			name:    "schema qualified table",
			table:   "public.orders_table",
			columns: []string{"date_uuid"},
			rows:    [][]any{{"x"}},
			want:    []string{`CREATE TABLE "public"."orders_table"`},
		},
		{
			name:    "missing table name",
			columns: []string{"a"},
			wantErr: true,
		},
		{
			name:    "no columns",
			table:   "dim_test",
			wantErr: true,
		},
		{
			name:    "ragged row",
			table:   "dim_test",
			columns: []string{"a", "b"},
			rows:    [][]any{{"only"}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := buildCreateTableSQL(tc.table, tc.columns, tc.rows)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got:\n%s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, sub := range tc.want {
				if !strings.Contains(got, sub) {
					t.Errorf("statement missing %q:\n%s", sub, got)
				}
			}
		})
	}
}

package warehouse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every statement and lets tests script failures and
// length-inference answers.
type fakeConn struct {
	execs    []string
	queries  []string
	copies   []copyCall
	failExec map[string]error // substring -> error
	maxLen   map[string]int   // column ident -> MAX(CHAR_LENGTH) answer
}

type copyCall struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
}

func newFakeConn() *fakeConn {
	return &fakeConn{failExec: map[string]error{}, maxLen: map[string]int{}}
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	for sub, err := range f.failExec {
		if strings.Contains(sql, sub) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.CommandTag{}, nil
}

type fakeRow struct {
	val *int
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**int)) = r.val
	return nil
}

func (f *fakeConn) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	for col, n := range f.maxLen {
		if strings.Contains(sql, pgIdent(col)) {
			v := n
			return fakeRow{val: &v}
		}
	}
	return fakeRow{val: nil}
}

func (f *fakeConn) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	var rows [][]any
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		rows = append(rows, vals)
	}
	f.copies = append(f.copies, copyCall{table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func loaderOver(conn *fakeConn) *Loader {
	return NewLoaderWithFactory(func(context.Context) (Conn, func(), error) {
		return conn, func() {}, nil
	})
}

func TestLoadReplacesTable(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	l := loaderOver(conn)

	rows := [][]any{
		{"a1", 1, time.Now()},
		{"a2", 2, time.Now()},
	}
	err := l.Load(context.Background(), "dim_test", []string{"code", "n", "at"}, rows)
	require.NoError(t, err)

	require.Len(t, conn.execs, 2)
	assert.Equal(t, `DROP TABLE IF EXISTS "dim_test" CASCADE`, conn.execs[0])
	assert.Contains(t, conn.execs[1], `CREATE TABLE "dim_test"`)
	assert.Contains(t, conn.execs[1], `"code" TEXT`)
	assert.Contains(t, conn.execs[1], `"n" BIGINT`)
	assert.Contains(t, conn.execs[1], `"at" TIMESTAMP`)

	require.Len(t, conn.copies, 1)
	assert.Equal(t, pgx.Identifier{"dim_test"}, conn.copies[0].table)
	assert.Equal(t, []string{"code", "n", "at"}, conn.copies[0].columns)
	assert.Len(t, conn.copies[0].rows, 2)
}

func TestLoadRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	l := loaderOver(conn)

	err := l.Load(context.Background(), "dim_test", []string{"a", "b"}, [][]any{{"only one"}})
	require.Error(t, err)
	assert.Empty(t, conn.execs, "no statement should reach the database")
}

func TestCastColumnsVarcharInference(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.maxLen["store_code"] = 12
	l := loaderOver(conn)

	results, err := l.CastColumns(context.Background(), "dim_store_details", map[string]string{
		"store_code": TypeVarcharAuto,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], `MAX(CHAR_LENGTH(CAST("store_code" AS VARCHAR)))`)
	require.Len(t, conn.execs, 1)
	assert.Equal(t,
		`ALTER TABLE "dim_store_details" ALTER COLUMN "store_code" TYPE VARCHAR(12) USING "store_code"::VARCHAR(12)`,
		conn.execs[0])
}

func TestCastColumnsEmptyColumnFails(t *testing.T) {
	t.Parallel()

	conn := newFakeConn() // no maxLen answer: NULL comes back
	l := loaderOver(conn)

	results, err := l.CastColumns(context.Background(), "dim_test", map[string]string{
		"empty_col": TypeVarcharAuto,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, conn.execs, "no ALTER should run for an uninferable column")
}

func TestCastColumnsBestEffort(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.failExec[`"bad_col"`] = errors.New("cannot cast")
	l := loaderOver(conn)

	results, err := l.CastColumns(context.Background(), "dim_test", map[string]string{
		"a_col":   "DATE",
		"bad_col": "UUID",
		"z_col":   "FLOAT",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Columns are processed in sorted order and failures do not stop the rest.
	assert.Equal(t, "a_col", results[0].Item)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "bad_col", results[1].Item)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "z_col", results[2].Item)
	assert.NoError(t, results[2].Err)

	assert.Len(t, results.Failed(), 1)
	assert.Len(t, conn.execs, 3, "all three ALTERs attempted")
}

func TestAddPrimaryKey(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	l := loaderOver(conn)

	require.NoError(t, l.AddPrimaryKey(context.Background(), "dim_users", "user_uuid"))
	require.Len(t, conn.execs, 1)
	assert.Equal(t, `ALTER TABLE "dim_users" ADD PRIMARY KEY ("user_uuid")`, conn.execs[0])
}

func TestAddForeignKeysBestEffort(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.failExec[`REFERENCES "dim_users"`] = errors.New("violates foreign key")
	l := loaderOver(conn)

	results, err := l.AddForeignKeys(context.Background(), "orders_table", OrderForeignKeys())
	require.NoError(t, err)
	require.Len(t, results, 5)

	failed := results.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "dim_users", failed[0].Item)

	assert.Contains(t, conn.execs, `ALTER TABLE "orders_table" ADD FOREIGN KEY ("date_uuid") REFERENCES "dim_date_times"("date_uuid")`)
	assert.Contains(t, conn.execs, `ALTER TABLE "orders_table" ADD FOREIGN KEY ("card_number") REFERENCES "dim_card_details"("card_number")`)
	assert.Len(t, conn.execs, 5)
}

func TestConfigureOrdering(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.maxLen["code"] = 11
	l := loaderOver(conn)

	err := l.Configure(context.Background(), TableSpec{
		Table:       "dim_test",
		Columns:     []string{"code"},
		Rows:        [][]any{{"HI-9B97EE4E"}},
		ColumnTypes: map[string]string{"code": TypeVarcharAuto},
		PrimaryKey:  "code",
		ForeignKeys: map[string]string{"dim_other": "code"},
	})
	require.NoError(t, err)

	require.Len(t, conn.execs, 5)
	assert.Contains(t, conn.execs[0], "DROP TABLE IF EXISTS")
	assert.Contains(t, conn.execs[1], "CREATE TABLE")
	assert.Contains(t, conn.execs[2], "ALTER COLUMN")
	assert.Contains(t, conn.execs[3], "ADD PRIMARY KEY")
	assert.Contains(t, conn.execs[4], "ADD FOREIGN KEY")
}

func TestConfigureTwiceReplaysIdentically(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.maxLen["code"] = 11
	l := loaderOver(conn)

	spec := TableSpec{
		Table:       "dim_test",
		Columns:     []string{"code"},
		Rows:        [][]any{{"HI-9B97EE4E"}},
		ColumnTypes: map[string]string{"code": TypeVarcharAuto},
		PrimaryKey:  "code",
		ForeignKeys: map[string]string{"dim_other": "code"},
	}
	require.NoError(t, l.Configure(context.Background(), spec))
	require.NoError(t, l.Configure(context.Background(), spec))

	// Replace semantics: the second run issues the exact same statement
	// sequence, so the table lands in the same final state.
	require.Len(t, conn.execs, 10)
	assert.Equal(t, conn.execs[:5], conn.execs[5:])

	require.Len(t, conn.queries, 2)
	assert.Equal(t, conn.queries[0], conn.queries[1])

	require.Len(t, conn.copies, 2)
	assert.Equal(t, conn.copies[0], conn.copies[1])
}

func TestConfigurePrimaryKeyFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	conn.failExec["ADD PRIMARY KEY"] = errors.New("duplicate key value")
	l := loaderOver(conn)

	err := l.Configure(context.Background(), TableSpec{
		Table:   "dim_test",
		Columns: []string{"code"},
		Rows:    [][]any{{"x"}},
		ColumnTypes: map[string]string{
			"code": "VARCHAR(255)",
		},
		PrimaryKey: "code",
	})
	assert.NoError(t, err)
}

func TestLoadAcquireFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("pool exhausted")
	l := NewLoaderWithFactory(func(context.Context) (Conn, func(), error) {
		return nil, nil, boom
	})
	err := l.Load(context.Background(), "dim_test", []string{"a"}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestPGIdentQuoting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"product_price_£"`, pgIdent("product_price_£"))
	assert.Equal(t, `"we""ird"`, pgIdent(`we"ird`))
	assert.Equal(t, `"public"."orders_table"`, pgFQN("public.orders_table"))
	assert.Equal(t, `"orders_table"`, pgFQN("orders_table"))
	assert.Equal(t, pgx.Identifier{"public", "orders_table"}, splitFQN("public.orders_table"))
}

package rds

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDB creates a sqlite source database with a legacy_users table.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE legacy_users (
		first_name TEXT,
		last_name  TEXT,
		user_uuid  TEXT,
		age        INTEGER
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders_table (order_id INTEGER)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO legacy_users VALUES
		('Sigrid', 'Lindgren', '93caf182-e4e9-4c6e-bebb-60a1a9dcf9b8', 51),
		('Guy',    'Allen',    '8fe96c3a-d62d-4eb5-b313-cf12d9126a49', 32)`)
	require.NoError(t, err)

	return path
}

func TestOpenUnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestListTables(t *testing.T) {
	t.Parallel()

	src, err := Open(context.Background(), Config{Driver: "sqlite", DSN: seedDB(t)})
	require.NoError(t, err)
	defer src.Close()

	tables, err := src.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy_users", "orders_table"}, tables)
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	src, err := Open(context.Background(), Config{Driver: "sqlite", DSN: seedDB(t)})
	require.NoError(t, err)
	defer src.Close()

	rows, err := src.ReadTable(context.Background(), "legacy_users")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Sigrid", rows[0].String("first_name"))
	assert.Equal(t, "93caf182-e4e9-4c6e-bebb-60a1a9dcf9b8", rows[0].String("user_uuid"))
	assert.Equal(t, "32", rows[1].String("age"), "numeric columns render through Record.String")
}

func TestReadTableMissing(t *testing.T) {
	t.Parallel()

	src, err := Open(context.Background(), Config{Driver: "sqlite", DSN: seedDB(t)})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadTable(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "legacy_users", "error lists the available tables")
}

func TestReadTableRejectsBadIdent(t *testing.T) {
	t.Parallel()

	src, err := Open(context.Background(), Config{Driver: "sqlite", DSN: seedDB(t)})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadTable(context.Background(), "users; DROP TABLE legacy_users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

// Package rds extracts raw tabular batches from a relational source database.
// The driver is selected from the credentials file, so the same extractor
// reads from Postgres, MySQL, SQL Server, or a local SQLite fixture.
package rds

import (
	"context"
	"database/sql"
	"regexp"
	"slices"

	"github.com/pkg/errors"

	// Register every supported database/sql driver.
	_ "github.com/go-sql-driver/mysql"           // "mysql"
	_ "github.com/jackc/pgx/v5/stdlib"           // "pgx"
	_ "github.com/microsoft/go-mssqldb"          // "sqlserver"
	_ "modernc.org/sqlite"                       // "sqlite"

	"salesetl/internal/records"
)

// Config identifies the source database.
type Config struct {
	Driver string // pgx | mysql | sqlserver | sqlite
	DSN    string
}

var supportedDrivers = []string{"pgx", "mysql", "sqlserver", "sqlite"}

// Source reads whole tables from one relational database.
type Source struct {
	db     *sql.DB
	driver string
}

// Open connects to the source database and verifies it is reachable. An
// unreachable database is an error here, not at first read.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	if !slices.Contains(supportedDrivers, cfg.Driver) {
		return nil, errors.Errorf("rds: unsupported driver %q (want one of %v)", cfg.Driver, supportedDrivers)
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "rds: open source database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "rds: source database unreachable")
	}
	return &Source{db: db, driver: cfg.Driver}, nil
}

// Close releases the underlying connection pool.
func (s *Source) Close() error { return s.db.Close() }

// ListTables returns the table names visible in the source schema, sorted.
func (s *Source) ListTables(ctx context.Context) ([]string, error) {
	var q string
	switch s.driver {
	case "pgx":
		q = `SELECT table_name FROM information_schema.tables
		     WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		     ORDER BY table_name`
	case "mysql":
		q = `SELECT table_name FROM information_schema.tables
		     WHERE table_schema = DATABASE() ORDER BY table_name`
	case "sqlserver":
		q = `SELECT table_name FROM information_schema.tables
		     WHERE table_type = 'BASE TABLE' ORDER BY table_name`
	case "sqlite":
		q = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "rds: list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "rds: scan table name")
		}
		tables = append(tables, name)
	}
	return tables, errors.Wrap(rows.Err(), "rds: list tables")
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReadTable extracts the full named table as a raw batch. A table that does
// not exist in the source is an error, never a silently empty batch.
func (s *Source) ReadTable(ctx context.Context, table string) ([]records.Record, error) {
	if !identRe.MatchString(table) {
		return nil, errors.Errorf("rds: invalid table name %q", table)
	}
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(tables, table) {
		return nil, errors.Errorf("rds: table %q not found; available tables: %v", table, tables)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, errors.Wrapf(err, "rds: read table %q", table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "rds: columns of %q", table)
	}

	var out []records.Record
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "rds: scan row of %q", table)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			if b, isBytes := vals[i].([]byte); isBytes {
				// Drivers hand text columns back as []byte.
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "rds: read table %q", table)
	}
	return out, nil
}

// Package warehouse persists cleaned batches into the PostgreSQL sales
// warehouse and enforces the declared schema on each table: bulk
// replace-load, per-column type casts (with VARCHAR length inference),
// primary keys, and foreign keys.
//
// Every operation acquires its own connection from a factory and releases it
// when the operation finishes, success or failure. There is no transactional
// atomicity across operations: a cast that fails partway leaves the table
// partially typed, and the per-item Results report exactly which statements
// failed.
package warehouse

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TypeVarcharAuto is the sentinel column type meaning "variable-length text,
// length unknown". Casting a column declared with it first queries the table
// for the longest current value and substitutes that length.
const TypeVarcharAuto = "VARCHAR(?)"

// Conn is the slice of a pgx connection the loader needs. *pgxpool.Conn
// satisfies it; tests substitute a recording fake.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// ConnFactory acquires a connection scoped to a single schema operation. The
// returned release function must be called when the operation completes.
type ConnFactory func(ctx context.Context) (Conn, func(), error)

// Loader implements the schema-loading operations against one warehouse.
type Loader struct {
	acquire ConnFactory
}

// NewLoader builds a Loader over a pgx pool. Each operation leases its own
// connection from the pool rather than holding one for the Loader's lifetime.
func NewLoader(pool *pgxpool.Pool) *Loader {
	return &Loader{acquire: func(ctx context.Context) (Conn, func(), error) {
		c, err := pool.Acquire(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire warehouse connection: %w", err)
		}
		return c, c.Release, nil
	}}
}

// NewLoaderWithFactory builds a Loader over a custom connection factory.
func NewLoaderWithFactory(f ConnFactory) *Loader {
	return &Loader{acquire: f}
}

// Result records the outcome of one item in a best-effort loop: one column
// cast or one foreign-key addition.
type Result struct {
	Item string
	Err  error
}

// Results is the ordered per-item outcome of a best-effort operation.
type Results []Result

// Failed returns only the items that errored.
func (rs Results) Failed() Results {
	var out Results
	for _, r := range rs {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// TableSpec describes one fully configured warehouse table.
type TableSpec struct {
	Table       string
	Columns     []string
	Rows        [][]any
	ColumnTypes map[string]string
	PrimaryKey  string            // optional
	ForeignKeys map[string]string // referenced table -> local column, optional
}

// Load replaces the named table's full contents with the batch. The table is
// dropped (CASCADE: replace semantics destroy constraints, including inbound
// foreign keys) and recreated with provisional types inferred from the row
// values, then filled via COPY.
func (l *Loader) Load(ctx context.Context, table string, columns []string, rows [][]any) error {
	create, err := buildCreateTableSQL(table, columns, rows)
	if err != nil {
		return err
	}

	conn, release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+pgFQN(table)+" CASCADE"); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := conn.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	n, err := conn.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	log.Printf("warehouse: loaded %d rows into %s", n, table)
	return nil
}

// CastColumns alters each declared column to its target type. The
// TypeVarcharAuto sentinel resolves to VARCHAR(n) where n is the longest
// value currently stored. Failures are collected per column and never abort
// the remaining columns; the store rolls back only the failed statement.
func (l *Loader) CastColumns(ctx context.Context, table string, types map[string]string) (Results, error) {
	conn, release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	cols := make([]string, 0, len(types))
	for c := range types {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	results := make(Results, 0, len(cols))
	for _, col := range cols {
		results = append(results, Result{Item: col, Err: l.castColumn(ctx, conn, table, col, types[col])})
	}
	for _, r := range results.Failed() {
		log.Printf("warehouse: cast %s.%s failed: %v", table, r.Item, r.Err)
	}
	return results, nil
}

func (l *Loader) castColumn(ctx context.Context, conn Conn, table, col, typ string) error {
	if typ == TypeVarcharAuto {
		q := fmt.Sprintf("SELECT MAX(CHAR_LENGTH(CAST(%s AS VARCHAR))) FROM %s",
			pgIdent(col), pgFQN(table))
		var maxLen *int
		if err := conn.QueryRow(ctx, q).Scan(&maxLen); err != nil {
			return fmt.Errorf("infer length: %w", err)
		}
		if maxLen == nil {
			return fmt.Errorf("infer length: column %q has no values", col)
		}
		typ = fmt.Sprintf("VARCHAR(%d)", *maxLen)
	}
	alter := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s",
		pgFQN(table), pgIdent(col), typ, pgIdent(col), typ)
	if _, err := conn.Exec(ctx, alter); err != nil {
		return err
	}
	return nil
}

// AddPrimaryKey adds a primary-key constraint on the named column(s).
func (l *Loader) AddPrimaryKey(ctx context.Context, table, key string) error {
	conn, release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	q := fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", pgFQN(table), pgIdent(key))
	if _, err := conn.Exec(ctx, q); err != nil {
		return fmt.Errorf("add primary key %s(%s): %w", table, key, err)
	}
	return nil
}

// AddForeignKeys adds, for each referenced table, a constraint that the local
// column references the same-named column there. Each pair is attempted
// independently; one failure does not block the others.
func (l *Loader) AddForeignKeys(ctx context.Context, table string, fks map[string]string) (Results, error) {
	conn, release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	refs := make([]string, 0, len(fks))
	for ref := range fks {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	results := make(Results, 0, len(refs))
	for _, ref := range refs {
		col := fks[ref]
		q := fmt.Sprintf("ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s(%s)",
			pgFQN(table), pgIdent(col), pgFQN(ref), pgIdent(col))
		_, err := conn.Exec(ctx, q)
		results = append(results, Result{Item: ref, Err: err})
	}
	for _, r := range results.Failed() {
		log.Printf("warehouse: foreign key %s -> %s failed: %v", table, r.Item, r.Err)
	}
	return results, nil
}

// Configure runs the full table lifecycle in fixed order: replace-load, cast
// columns, primary key, foreign keys. Referenced dimension tables must
// already be loaded and keyed before a fact table's foreign keys can attach.
// Schema-mutation failures after a successful load are logged and skipped;
// only load failures and connection failures are fatal.
func (l *Loader) Configure(ctx context.Context, spec TableSpec) error {
	if err := l.Load(ctx, spec.Table, spec.Columns, spec.Rows); err != nil {
		return err
	}
	if _, err := l.CastColumns(ctx, spec.Table, spec.ColumnTypes); err != nil {
		return err
	}
	if spec.PrimaryKey != "" {
		if err := l.AddPrimaryKey(ctx, spec.Table, spec.PrimaryKey); err != nil {
			log.Printf("warehouse: %v", err)
		}
	}
	if len(spec.ForeignKeys) > 0 {
		if _, err := l.AddForeignKeys(ctx, spec.Table, spec.ForeignKeys); err != nil {
			return err
		}
	}
	return nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.orders_table" to
// "public"."orders_table". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

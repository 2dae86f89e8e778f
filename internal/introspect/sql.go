package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"schema-reconciler/internal/datasource"
	"schema-reconciler/internal/expr"
)

// ErrUnknownSource is returned when the store has nothing for a data source.
var ErrUnknownSource = errors.New("unknown source")

// Dialect selects how column metadata is queried.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

const defaultSchema = "public"

// SQL introspects tables of a relational database. The data source's source
// (or its name when source is empty) names the table; postgres accepts
// "schema.table".
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps an open database.
func NewSQL(db *sql.DB, dialect Dialect) (*SQL, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported dialect '%s'", dialect)
	}

	return &SQL{db: db, dialect: dialect}, nil
}

// OpenSQL opens a database with the named driver. The driver name doubles as
// the dialect.
func OpenSQL(driver, dsn string) (*SQL, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	s, err := NewSQL(db, Dialect(driver))
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// DB returns the underlying database.
func (s *SQL) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Introspect lists the table's columns in declaration order.
func (s *SQL) Introspect(ctx context.Context, ds *datasource.DataSource) (datasource.Attributes, error) {
	table := ds.Source
	if table == "" {
		table = ds.Name
	}

	var (
		attrs datasource.Attributes
		err   error
	)

	switch s.dialect {
	case DialectSQLite:
		attrs, err = s.sqliteColumns(ctx, table)
	case DialectPostgres:
		attrs, err = s.postgresColumns(ctx, table)
	}

	if err != nil {
		return nil, fmt.Errorf("introspect '%s': %w", table, err)
	}

	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: table '%s'", ErrUnknownSource, table)
	}

	return attrs, nil
}

func (s *SQL) sqliteColumns(ctx context.Context, table string) (datasource.Attributes, error) {
	// PRAGMA does not take bind parameters.
	q := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs datasource.Attributes

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)

		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}

		attrs = append(attrs, datasource.Attribute{Name: name, Type: ColumnType(typ)})
	}

	return attrs, rows.Err()
}

func (s *SQL) postgresColumns(ctx context.Context, table string) (datasource.Attributes, error) {
	schema := defaultSchema
	if i := strings.IndexByte(table, '.'); i >= 0 {
		schema, table = table[:i], table[i+1:]
	}

	rows, err := s.db.QueryContext(ctx, `SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs datasource.Attributes

	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}

		attrs = append(attrs, datasource.Attribute{Name: name, Type: ColumnType(typ)})
	}

	return attrs, rows.Err()
}

// ColumnType maps a declared SQL column type to an attribute type. Unknown
// types are strings.
func ColumnType(declared string) expr.Type {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case t == "INTERVAL" || t == "POINT":
		return expr.TypeString
	case strings.Contains(t, "TIME") || strings.Contains(t, "DATE"):
		return expr.TypeTime
	case strings.Contains(t, "BOOL"):
		return expr.TypeBoolean
	case strings.Contains(t, "INT"), strings.Contains(t, "REAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "DECIMAL"), strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"):
		return expr.TypeNumber
	default:
		return expr.TypeString
	}
}

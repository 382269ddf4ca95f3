package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrLoadUnsupported is returned by LoadCSV on targets that only read
	// tables already present in the database.
	ErrLoadUnsupported = errors.New("adapter does not load CSV files")

	// ErrNotConnected is returned when an adapter is used before Connect.
	ErrNotConnected = errors.New("database connection not established")
)

// TableNotFoundError is returned by DescribeTable when the table is absent.
type TableNotFoundError struct {
	Schema string
	Table  string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %s.%s not found", e.Schema, e.Table)
}

// Placeholder renders the n-th (1-based) bind parameter of a driver.
type Placeholder func(n int) string

var (
	// QuestionPlaceholder is used by DuckDB.
	QuestionPlaceholder Placeholder = func(int) string { return "?" }

	// DollarPlaceholder is used by PostgreSQL.
	DollarPlaceholder Placeholder = func(n int) string { return fmt.Sprintf("$%d", n) }
)

// BaseSQLAdapter carries the connection and the database/sql calls every
// adapter shares. Concrete adapters embed it and add Connect, LoadCSV and
// naming.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

func (b *BaseSQLAdapter) conn() (*sql.DB, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	return b.DB, nil
}

// Close releases the connection. It is safe to call before Connect.
func (b *BaseSQLAdapter) Close() error {
	if b.DB == nil {
		return nil
	}
	if b.Logger != nil {
		b.Logger.Debug("closing target connection", slog.String("type", b.Cfg.Type))
	}
	err := b.DB.Close()
	b.DB = nil
	return err
}

func (b *BaseSQLAdapter) Exec(ctx context.Context, stmt string) error {
	db, err := b.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

func (b *BaseSQLAdapter) Query(ctx context.Context, stmt string) (*Rows, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	//nolint:rowserrcheck // the caller checks Err after iterating
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

const describeTableSQL = `SELECT column_name, data_type, is_nullable, ordinal_position
FROM information_schema.columns
WHERE table_schema = %s AND table_name = %s
ORDER BY ordinal_position`

// Describe reads the columns of table from information_schema. An
// unqualified table is looked up in defaultSchema.
func (b *BaseSQLAdapter) Describe(ctx context.Context, table, defaultSchema string, ph Placeholder) (*TableInfo, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	schema, name := ParseQualifiedName(table, defaultSchema)
	rows, err := db.QueryContext(ctx, fmt.Sprintf(describeTableSQL, ph(1), ph(2)), schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	info := &TableInfo{Schema: schema, Name: name}
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	if len(info.Columns) == 0 {
		return nil, &TableNotFoundError{Schema: schema, Table: name}
	}
	return info, nil
}

// ParseQualifiedName splits "schema.table" into its parts; a bare table
// name gets defaultSchema.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if s, n, ok := strings.Cut(table, "."); ok {
		return s, n
	}
	return defaultSchema, table
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifyIdent quotes a schema-qualified table reference.
func QualifyIdent(schema, name string) string {
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}

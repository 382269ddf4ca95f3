// Package postgres reads the olist tables from a PostgreSQL schema. With a
// data directory configured the CSVs are first streamed in with COPY; without
// one the tables are expected to be staged already.
//
// Import it for its side effect of registering the "postgres" target:
//
//	import _ "github.com/leapstack-labs/olist/pkg/adapters/postgres"
package postgres

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/olist/pkg/adapter"
)

const (
	defaultSchema = "public"
	defaultHost   = "localhost"
	defaultPort   = 5432
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter is the PostgreSQL target.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New returns an unconnected adapter. A nil logger discards output.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("schema", cfg.Schema))

	db, err := sql.Open("pgx", buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to reach postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN renders cfg as a libpq keyword/value string. Values with
// spaces or quotes are single-quoted.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslmode, ok := cfg.Options["sslmode"]
	if !ok {
		sslmode = "disable"
	}

	pairs := []string{
		"host=" + dsnValue(host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + dsnValue(cfg.Database),
		"sslmode=" + dsnValue(sslmode),
	}
	if cfg.Username != "" {
		pairs = append(pairs, "user="+dsnValue(cfg.Username))
	}
	if cfg.Password != "" {
		pairs = append(pairs, "password="+dsnValue(cfg.Password))
	}
	return strings.Join(pairs, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return defaultSchema
}

func (a *Adapter) DescribeTable(ctx context.Context, table string) (*adapter.TableInfo, error) {
	return a.Describe(ctx, table, a.schema(), adapter.DollarPlaceholder)
}

// QualifiedName resolves table against the configured schema.
func (a *Adapter) QualifiedName(table string) string {
	return adapter.QualifyIdent(adapter.ParseQualifiedName(table, a.schema()))
}

// LoadCSV replaces table with the contents of the CSV at path. Every
// column is TEXT and empty fields become NULL.
func (a *Adapter) LoadCSV(ctx context.Context, table, path string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	if strings.Contains(path, "://") {
		return fmt.Errorf("load %s: %w", path, adapter.ErrLoadUnsupported)
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the configured data directory
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	src, header, err := newCSVSource(f)
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	if err := a.recreateTable(ctx, table, header); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	n, err := a.copyRows(ctx, table, header, src)
	if err != nil {
		return fmt.Errorf("failed to copy %s into %s: %w", path, table, err)
	}
	a.Logger.Debug("csv copied", slog.String("table", table), slog.Int64("rows", n))
	return nil
}

func (a *Adapter) recreateTable(ctx context.Context, table string, columns []string) error {
	qualified := a.QualifiedName(table)
	if err := a.Exec(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
		return err
	}
	return a.Exec(ctx, createTableSQL(qualified, columns))
}

func createTableSQL(qualified string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = adapter.QuoteIdent(col) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(defs, ", "))
}

// copyRows streams src through the pgx connection underneath database/sql.
func (a *Adapter) copyRows(ctx context.Context, table string, columns []string, src pgx.CopyFromSource) (int64, error) {
	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = conn.Close() }()

	schema, name := adapter.ParseQualifiedName(table, a.schema())
	var n int64
	err = conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		n, err = c.Conn().CopyFrom(ctx, pgx.Identifier{schema, name}, columns, src)
		return err
	})
	return n, err
}

// csvSource feeds CSV records to pgx.CopyFrom.
type csvSource struct {
	r   *csv.Reader
	row []any
	err error
}

// newCSVSource reads the header of r and returns a source over the
// remaining records. Header names are trimmed and a UTF-8 BOM is dropped.
func newCSVSource(r io.Reader) (*csvSource, []string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &csvSource{r: cr}, header, nil
}

func (s *csvSource) Next() bool {
	rec, err := s.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.row = make([]any, len(rec))
	for i, v := range rec {
		if v != "" {
			s.row[i] = v
		}
	}
	return true
}

func (s *csvSource) Values() ([]any, error) { return s.row, nil }

func (s *csvSource) Err() error { return s.err }

var _ adapter.Adapter = (*Adapter)(nil)

// Package duckdb ingests the olist CSV files into DuckDB, in memory or in a
// database file. It registers the "duckdb" target on import:
//
//	import _ "github.com/leapstack-labs/olist/pkg/adapters/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/olist/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter is the DuckDB target.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

// applyParams installs extensions, creates secrets and applies settings.
func (a *Adapter) applyParams(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}
	for _, secret := range a.params.Secrets {
		if err := a.Exec(ctx, buildCreateSecretSQL(secret)); err != nil {
			return fmt.Errorf("failed to create %s secret: %w", secret.Type, err)
		}
	}
	for _, stmt := range settingStatements(a.params.Settings) {
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting: %w", err)
		}
	}
	return nil
}

func (a *Adapter) DescribeTable(ctx context.Context, table string) (*adapter.TableInfo, error) {
	return a.Describe(ctx, table, "main", adapter.QuestionPlaceholder)
}

// QualifiedName returns the quoted table name; CSVs are loaded into the main schema.
func (a *Adapter) QualifiedName(table string) string {
	return adapter.QuoteIdent(table)
}

// LoadCSV loads a CSV file into a table.
// Every column is read as VARCHAR so that type coercion (timestamps, zip code
// prefixes with leading zeros, empty cells) is left to the caller.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}

	path := filePath
	if !strings.Contains(filePath, "://") {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv(%s, header=true, all_varchar=true)",
		adapter.QuoteIdent(tableName),
		quoteLiteral(path),
	)

	a.Logger.Debug("loading csv", slog.String("table", tableName), slog.String("path", path))

	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)

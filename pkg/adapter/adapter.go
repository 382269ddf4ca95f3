// Package adapter defines how the loader talks to a database target and
// holds the database/sql plumbing shared by the concrete adapters.
//
// Adapters live under pkg/adapters/ and register a factory from init();
// binaries blank-import the ones they support.
package adapter

import (
	"context"

	"github.com/leapstack-labs/olist/pkg/core"
)

type (
	Config    = core.AdapterConfig
	Column    = core.Column
	TableInfo = core.TableInfo
	Rows      = core.Rows
)

// Adapter is a database target the raw olist tables are ingested into
// and read back from.
type Adapter interface {
	Connect(ctx context.Context, cfg Config) error
	Close() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query runs a statement and returns its rows, which the caller closes.
	Query(ctx context.Context, sql string) (*Rows, error)

	// DescribeTable reports the columns of table. A table that does not
	// exist yields a *TableNotFoundError.
	DescribeTable(ctx context.Context, table string) (*TableInfo, error)

	// LoadCSV (re)creates table from the CSV file at path with every
	// column kept as raw text. Targets whose tables are provisioned
	// externally return ErrLoadUnsupported.
	LoadCSV(ctx context.Context, table, path string) error

	// QualifiedName returns the quoted reference used for table in SQL.
	QualifiedName(table string) string
}

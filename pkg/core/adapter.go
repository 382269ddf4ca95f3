package core

import "database/sql"

// AdapterConfig describes the database target the raw tables are loaded
// into. Only the fields relevant to the selected Type are read.
type AdapterConfig struct {
	Type string

	// Path is the DuckDB file; empty means an in-memory database.
	Path string

	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string

	// Options carries driver connection settings such as sslmode.
	Options map[string]string

	// Params carries adapter-specific settings decoded by the adapter itself.
	Params map[string]any
}

// Column is one column of a table as reported by information_schema.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// TableInfo describes a table in the target database.
type TableInfo struct {
	Schema  string
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in ordinal order, which for an
// ingested CSV is the header order.
func (t *TableInfo) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Rows is the result of an adapter query. Callers must check Err after
// iterating and Close when done.
type Rows struct {
	*sql.Rows
}

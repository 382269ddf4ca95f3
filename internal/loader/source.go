// Package loader implements the data source: it ingests the nine olist
// tables through an adapter, applies the optional row filter and decodes
// each table into its record type.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/olist/pkg/adapter"
	"github.com/leapstack-labs/olist/pkg/core"
)

// Config configures a Source.
type Config struct {
	// Adapter is a connected adapter the tables are read through.
	Adapter adapter.Adapter

	// DataDir holds the CSV files. When empty the tables are expected to
	// exist in the target already and nothing is ingested.
	DataDir string

	Logger *slog.Logger
}

// Source loads the raw tables by logical entity name.
type Source struct {
	adapter adapter.Adapter
	dataDir string
	logger  *slog.Logger
}

// New creates a Source.
func New(cfg Config) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{
		adapter: cfg.Adapter,
		dataDir: cfg.DataDir,
		logger:  logger,
	}
}

// Load reads every entity in catalog order. If filter is set, tables
// carrying the filter column keep only rows whose raw value is in the
// filter's value set; other tables are returned whole.
func (s *Source) Load(ctx context.Context, filter *core.Filter) (*core.Dataset, error) {
	if s.adapter == nil {
		return nil, fmt.Errorf("loader: no adapter configured")
	}

	start := time.Now()
	ds := &core.Dataset{}
	for _, spec := range core.Entities {
		records, err := s.LoadTable(ctx, spec, filter)
		if err != nil {
			return nil, err
		}
		if err := assign(ds, spec.Name, records); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", spec.Name, err)
		}
	}

	s.logger.Info("dataset loaded", slog.Duration("duration", time.Since(start)))
	return ds, nil
}

// LoadTable ingests one entity and returns its rows as coerced records
// keyed by canonical column name. Null values are absent from the record.
func (s *Source) LoadTable(ctx context.Context, spec core.EntitySpec, filter *core.Filter) ([]map[string]any, error) {
	if err := s.ingest(ctx, spec); err != nil {
		return nil, err
	}

	info, err := s.adapter.DescribeTable(ctx, spec.Name)
	if err != nil {
		var notFound *adapter.TableNotFoundError
		if errors.As(err, &notFound) {
			return nil, &core.MissingFileError{Entity: spec.Name, Path: s.adapter.QualifiedName(spec.Name), Err: err}
		}
		return nil, fmt.Errorf("failed to describe %s: %w", spec.Name, err)
	}

	sel, err := resolveColumns(spec, info.ColumnNames(), filter)
	if err != nil {
		return nil, err
	}

	records, scanned, err := s.scan(ctx, spec, sel)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entity loaded",
		slog.String("entity", spec.Name),
		slog.Int("rows", len(records)),
		slog.Int("filtered", scanned-len(records)))
	return records, nil
}

// ingest loads the entity's CSV file into the target table.
func (s *Source) ingest(ctx context.Context, spec core.EntitySpec) error {
	if s.dataDir == "" {
		return nil
	}

	path := filepath.Join(s.dataDir, spec.File)
	if strings.Contains(s.dataDir, "://") {
		path = strings.TrimSuffix(s.dataDir, "/") + "/" + spec.File
	} else if _, err := os.Stat(path); err != nil {
		return &core.MissingFileError{Entity: spec.Name, Path: path, Err: err}
	}

	if err := s.adapter.LoadCSV(ctx, spec.Name, path); err != nil {
		if errors.Is(err, adapter.ErrLoadUnsupported) {
			return err
		}
		return &core.MissingFileError{Entity: spec.Name, Path: path, Err: err}
	}
	return nil
}

// selection maps the canonical columns of an entity onto the source
// header, plus the filter column when the table carries it.
type selection struct {
	columns []core.ColumnSpec
	source  []string
	filter  int
	match   *core.Filter
}

func resolveColumns(spec core.EntitySpec, header []string, filter *core.Filter) (*selection, error) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	sel := &selection{filter: -1}
	for _, col := range spec.Columns {
		name, ok := headerName(col, present)
		if !ok {
			return nil, &core.SchemaMismatchError{Entity: spec.Name, Column: col.Name}
		}
		sel.columns = append(sel.columns, col)
		sel.source = append(sel.source, name)
	}

	if filter.AppliesTo(header) {
		sel.match = filter
		for i, name := range sel.source {
			if name == filter.Column {
				sel.filter = i
			}
		}
		if sel.filter < 0 {
			sel.filter = len(sel.source)
			sel.source = append(sel.source, filter.Column)
		}
	}
	return sel, nil
}

func headerName(col core.ColumnSpec, present map[string]bool) (string, bool) {
	if present[col.Name] {
		return col.Name, true
	}
	for _, alias := range col.Aliases {
		if present[alias] {
			return alias, true
		}
	}
	return "", false
}

func (s *Source) scan(ctx context.Context, spec core.EntitySpec, sel *selection) ([]map[string]any, int, error) {
	quoted := make([]string, len(sel.source))
	for i, name := range sel.source {
		quoted[i] = adapter.QuoteIdent(name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), s.adapter.QualifiedName(spec.Name)) //nolint:gosec // identifiers are quoted

	rows, err := s.adapter.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", spec.Name, err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]any, len(sel.source))
	dest := make([]any, len(sel.source))
	for i := range values {
		dest[i] = &values[i]
	}

	var records []map[string]any
	scanned := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s row: %w", spec.Name, err)
		}
		scanned++

		if sel.filter >= 0 {
			raw, ok := rawText(values[sel.filter])
			if !ok || !sel.match.Contains(raw) {
				continue
			}
		}

		rec := make(map[string]any, len(sel.columns))
		for i, col := range sel.columns {
			if v, ok := coerce(col.Kind, values[i]); ok {
				rec[col.Name] = v
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating %s rows: %w", spec.Name, err)
	}
	return records, scanned, nil
}

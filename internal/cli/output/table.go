package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/olist/pkg/core"
)

// TimeLayout formats timestamp cells.
const TimeLayout = "2006-01-02 15:04:05"

// NamedTable is a derivation result ready for rendering.
type NamedTable struct {
	Name  string
	Table core.Table
}

// Grid is an in-memory table for command listings.
type Grid struct {
	Cols []string
	Data [][]any
}

// Columns implements core.Table.
func (g *Grid) Columns() []string { return g.Cols }

// Len implements core.Table.
func (g *Grid) Len() int { return len(g.Data) }

// Row implements core.Table.
func (g *Grid) Row(i int) []any { return g.Data[i] }

// Append adds a row.
func (g *Grid) Append(cells ...any) { g.Data = append(g.Data, cells) }

// tableDoc is the JSON/YAML shape of a table.
type tableDoc struct {
	Name     string           `json:"name" yaml:"name"`
	Columns  []string         `json:"columns" yaml:"columns"`
	RowCount int              `json:"row_count" yaml:"row_count"`
	Rows     []map[string]any `json:"rows" yaml:"rows"`
}

// Tables renders each table in the effective mode. limit > 0 caps the
// rows rendered per table; row counts always reflect the full table.
func (r *Renderer) Tables(tables []NamedTable, limit int) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(documents(tables, limit))
	case ModeYAML:
		return r.YAML(documents(tables, limit))
	}

	for i, nt := range tables {
		if i > 0 {
			r.Println("")
		}
		if err := r.Table(nt.Name, nt.Table, limit); err != nil {
			return err
		}
	}
	return nil
}

// Table renders one table in the effective mode.
func (r *Renderer) Table(name string, t core.Table, limit int) error {
	mode := r.EffectiveMode()
	switch mode {
	case ModeJSON:
		return r.JSON(document(name, t, limit))
	case ModeYAML:
		return r.YAML(document(name, t, limit))
	}

	n := shown(t, limit)
	tw := table.NewWriter()
	header := make(table.Row, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	tw.AppendHeader(header)
	for i := range n {
		cells := t.Row(i)
		row := make(table.Row, len(cells))
		for j, v := range cells {
			row[j] = formatCell(v, mode)
		}
		tw.AppendRow(row)
	}

	switch mode {
	case ModeCSV:
		r.Println(tw.RenderCSV())
		return nil
	case ModeMarkdown:
		r.Header(2, name)
		if t.Len() == 0 {
			r.Println("(0 rows)")
			return nil
		}
		r.Println(tw.RenderMarkdown())
		r.Println("")
		r.Println(r.summary(t.Len(), n))
		return nil
	}

	r.Header(2, name)
	if t.Len() == 0 {
		r.Println(r.Muted("(0 rows)"))
		return nil
	}
	tw.SetStyle(table.StyleLight)
	r.Println(tw.Render())
	r.Println(r.Muted(r.summary(t.Len(), n)))
	return nil
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Renderer) summary(total, shown int) string {
	if shown < total {
		return fmt.Sprintf("(showing %s of %s)", r.Count(shown), r.Rows(total))
	}
	return "(" + r.Rows(total) + ")"
}

func shown(t core.Table, limit int) int {
	if limit > 0 && limit < t.Len() {
		return limit
	}
	return t.Len()
}

func documents(tables []NamedTable, limit int) []tableDoc {
	docs := make([]tableDoc, len(tables))
	for i, nt := range tables {
		docs[i] = document(nt.Name, nt.Table, limit)
	}
	return docs
}

func document(name string, t core.Table, limit int) tableDoc {
	cols := t.Columns()
	n := shown(t, limit)
	doc := tableDoc{Name: name, Columns: cols, RowCount: t.Len(), Rows: make([]map[string]any, n)}
	for i := range n {
		cells := t.Row(i)
		row := make(map[string]any, len(cols))
		for j, c := range cols {
			row[c] = cells[j]
		}
		doc.Rows[i] = row
	}
	return doc
}

// formatCell renders a cell for text, Markdown or CSV output. Text and
// Markdown round floats to four decimals and show nulls as NULL; CSV keeps
// full precision and leaves nulls empty.
func formatCell(v any, mode OutputMode) string {
	switch x := v.(type) {
	case nil:
		if mode == ModeCSV {
			return ""
		}
		return "NULL"
	case string:
		return x
	case float64:
		if mode == ModeCSV {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		s := strconv.FormatFloat(x, 'f', 4, 64)
		s = strings.TrimRight(s, "0")
		return strings.TrimSuffix(s, ".")
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(TimeLayout)
	case *time.Time:
		if x == nil {
			return formatCell(nil, mode)
		}
		return x.Format(TimeLayout)
	default:
		return fmt.Sprint(v)
	}
}

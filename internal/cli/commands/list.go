package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/olist/internal/cli/output"
	"github.com/leapstack-labs/olist/internal/dag"
	"github.com/leapstack-labs/olist/pkg/core"
)

// entityInfo describes one source table.
type entityInfo struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	Rows int    `json:"rows" yaml:"rows"`
}

// derivationInfo describes one derivation.
type derivationInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Level       int      `json:"level" yaml:"level"`
	DependsOn   []string `json:"depends_on" yaml:"depends_on"`
	UsedBy      []string `json:"used_by" yaml:"used_by"`
	Description string   `json:"description" yaml:"description"`
}

type listDoc struct {
	Entities    []entityInfo     `json:"entities" yaml:"entities"`
	Derivations []derivationInfo `json:"derivations" yaml:"derivations"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List source tables and derivations",
		Long: `Load the olist tables and list them with their row counts, followed by
the derivations in execution order.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, csv, yaml`,
		Example: `  # List tables and derivations
  olist list

  # Row counts after filtering
  olist list --filter-column customer_state --filter-values SP,RJ

  # As JSON
  olist list -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	cmd.Flags().String("filter-column", "", "Keep only rows whose value in this column is listed in --filter-values")
	cmd.Flags().StringSlice("filter-values", nil, "Comma-separated values kept by --filter-column")

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := cmdCtx.Source.Load(contextOf(cmd), cmdCtx.Cfg.Filter.Filter())
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	derivations, err := describeDerivations(cmdCtx.Engine.Graph())
	if err != nil {
		return err
	}
	doc := listDoc{
		Entities:    describeEntities(ds.Counts()),
		Derivations: derivations,
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doc)
	case output.ModeYAML:
		return r.YAML(doc)
	default:
		return listTables(r, doc)
	}
}

func describeEntities(counts map[string]int) []entityInfo {
	infos := make([]entityInfo, 0, len(core.Entities))
	for _, spec := range core.Entities {
		infos = append(infos, entityInfo{Name: spec.Name, File: spec.File, Rows: counts[spec.Name]})
	}
	return infos
}

func describeDerivations(g *dag.Graph) ([]derivationInfo, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	var infos []derivationInfo
	for level, names := range levels {
		for _, name := range names {
			info := derivationInfo{
				Name:      name,
				Level:     level,
				DependsOn: g.Parents(name),
				UsedBy:    g.Children(name),
			}
			if n, ok := g.Node(name); ok {
				info.Description = n.Description
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func listTables(r *output.Renderer, doc listDoc) error {
	entities := &output.Grid{Cols: []string{"entity", "file", "rows"}}
	for _, e := range doc.Entities {
		entities.Append(e.Name, e.File, e.Rows)
	}

	derivations := &output.Grid{Cols: []string{"derivation", "level", "depends_on", "used_by", "description"}}
	for _, d := range doc.Derivations {
		derivations.Append(d.Name, d.Level, strings.Join(d.DependsOn, ", "), strings.Join(d.UsedBy, ", "), d.Description)
	}

	return r.Tables([]output.NamedTable{
		{Name: "Tables", Table: entities},
		{Name: "Derivations", Table: derivations},
	}, 0)
}

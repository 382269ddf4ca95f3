package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/olist/internal/cli/output"
	"github.com/leapstack-labs/olist/internal/state"
	"github.com/leapstack-labs/olist/pkg/core"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `List the runs recorded in the state store, most recent first.

Runs are recorded by 'olist run' unless state_path is empty.`,
		Example: `  # Last 10 runs
  olist history

  # Every run, as JSON
  olist history --limit 0 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	path := cmdCtx.Cfg.StatePath
	if path == "" {
		return fmt.Errorf("run history is disabled: state_path is empty")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if !r.Structured() {
			r.Warning("no runs recorded yet")
		}
		return renderRuns(r, nil)
	}

	store, err := state.Open(path, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	return renderRuns(r, runs)
}

func renderRuns(r *output.Renderer, runs []*core.Run) error {
	if runs == nil {
		runs = []*core.Run{}
	}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(runs)
	case output.ModeYAML:
		return r.YAML(runs)
	}

	grid := &output.Grid{Cols: []string{"run", "started_at", "status", "duration", "derivations", "filter", "rows", "error"}}
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).String()
		}
		grid.Append(
			shortID(run.ID),
			run.StartedAt.Local(),
			string(run.Status),
			duration,
			strings.Join(run.Derivations, ", "),
			formatFilter(run.Filter),
			formatCounts(run.RowCounts),
			run.Error,
		)
	}
	return r.Table("Runs", grid, 0)
}

func formatFilter(f *core.Filter) string {
	if f.IsZero() {
		return ""
	}
	return f.Column + " in " + strings.Join(f.Values, ",")
}

func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	return strings.Join(parts, " ")
}

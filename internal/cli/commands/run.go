package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/cli/output"
	"github.com/leapstack-labs/olist/internal/engine"
	"github.com/leapstack-labs/olist/internal/loader"
)

// RunOptions holds options for the run command that are not configuration.
type RunOptions struct {
	Limit int
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [derivation...]",
		Short: "Compute feature tables",
		Long: `Load the olist tables and compute the requested derivations.

Upstream derivations are computed once and shared; independent derivations
run concurrently. Without arguments the orders table is computed.

Derivations: ` + strings.Join(engine.Names(), ", "),
		Example: `  # Order features for delivered orders
  olist run

  # Seller and product features for two sellers only
  olist run sellers products --filter-column seller_id \
    --filter-values 3442f8959a84dea7ee197c632cb2df15,d1b65fc7debc3361ea86b5f14c68d2e2

  # Include canceled orders and the customer-seller distance
  olist run orders --delivered-only=false --with-distance

  # Category rollup by mean, as CSV
  olist run product_categories --agg mean -o csv

  # Recompute whenever a CSV file changes
  olist run sellers --watch`,
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return engine.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().String("filter-column", "", "Keep only rows whose value in this column is listed in --filter-values")
	cmd.Flags().StringSlice("filter-values", nil, "Comma-separated values kept by --filter-column")
	cmd.Flags().Bool("delivered-only", true, "Restrict order features to delivered orders")
	cmd.Flags().Bool("with-distance", false, "Add the customer-seller distance to order features")
	cmd.Flags().String("agg", "", "Aggregation for product_categories ("+strings.Join(agg.Names(), "|")+")")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum rows shown per table (0 for all)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Recompute when files in the data directory change")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := contextOf(cmd)
	if err := runOnce(ctx, cmdCtx, args, opts); err != nil {
		if !opts.Watch {
			return err
		}
		cmdCtx.Renderer.Error(err.Error())
	}
	if !opts.Watch {
		return nil
	}

	dir := ingestDir(cmdCtx.Cfg)
	if dir == "" {
		return fmt.Errorf("--watch needs a data directory")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	if !r.Structured() {
		r.Warning(fmt.Sprintf("watching %s, press Ctrl+C to stop", dir))
	}
	return loader.Watch(ctx, dir, loader.DefaultDebounce, cmdCtx.Logger, func(ctx context.Context) {
		if err := runOnce(ctx, cmdCtx, args, opts); err != nil {
			r.Error(err.Error())
		}
	})
}

// runOnce builds the derivations and renders the requested tables.
func runOnce(ctx context.Context, cmdCtx *CommandContext, args []string, opts *RunOptions) error {
	r := cmdCtx.Renderer
	start := time.Now()

	res, run, err := cmdCtx.Engine.Run(ctx, args...)
	if err != nil {
		return err
	}

	tables := make([]output.NamedTable, 0, len(res.Requested))
	for _, name := range res.Requested {
		t, _ := res.Table(name)
		tables = append(tables, output.NamedTable{Name: name, Table: t})
	}
	if err := r.Tables(tables, opts.Limit); err != nil {
		return err
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	cmdCtx.Logger.Debug("run rendered", slog.Duration("duration", elapsed))
	if r.Structured() {
		return nil
	}
	msg := fmt.Sprintf("computed %s in %s", strings.Join(res.Requested, ", "), elapsed)
	if run != nil {
		msg += fmt.Sprintf(" (run %s)", shortID(run.ID))
	}
	r.Success(msg)
	return nil
}

// shortID abbreviates a run ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Package cli wires the olist commands together.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/olist/internal/cli/commands"
	"github.com/leapstack-labs/olist/internal/cli/config"
	"github.com/leapstack-labs/olist/internal/cli/output"
	"github.com/leapstack-labs/olist/pkg/adapter"

	_ "github.com/leapstack-labs/olist/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/olist/pkg/adapters/postgres"
)

// Set at build time with -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd builds the olist command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "olist",
		Short: "Feature tables for the olist e-commerce dataset",
		Long: `olist loads the Brazilian olist e-commerce tables and derives
order, product and seller feature tables from them.

Tables are read from CSV files through DuckDB, or from a PostgreSQL schema.
Every run is recorded in a local state store.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			return loadConfig(cmd, cfgFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: olist.yaml, searched upward)")
	pf.String("data-dir", "", "directory holding the olist CSV files")
	pf.String("state", "", "run history database (empty disables history)")
	pf.String("target", "", "target database type (duckdb|postgres)")
	pf.String("database", "", "DuckDB file or PostgreSQL database name")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.StringP("output", "o", "", "output format (auto|text|markdown|json|csv|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", fixedCompletion(output.Modes()))
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		commands.NewVersionCommand(commands.BuildInfo{Version: Version, Commit: GitCommit, Date: BuildDate}),
		commands.NewRunCommand(),
		commands.NewListCommand(),
		commands.NewHistoryCommand(),
	)
	return rootCmd
}

// needsConfig reports whether cmd reads the project configuration. Help,
// version and shell completion work anywhere.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// loadConfig resolves the configuration for cmd and attaches the logger
// to its context.
func loadConfig(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	cmd.SetContext(config.WithLogger(cmd.Context(), logger))

	if f := config.GetConfigFileUsed(); f != "" {
		logger.Debug("using config file", slog.String("path", f))
	}
	return nil
}

// newLogger builds the stderr logger. --verbose forces debug level.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// Execute runs the root command against os.Args.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

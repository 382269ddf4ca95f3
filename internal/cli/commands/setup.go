package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/olist/internal/cli/config"
	"github.com/leapstack-labs/olist/internal/cli/output"
	"github.com/leapstack-labs/olist/internal/engine"
	"github.com/leapstack-labs/olist/internal/loader"
	"github.com/leapstack-labs/olist/internal/state"
	"github.com/leapstack-labs/olist/pkg/adapter"
	"github.com/leapstack-labs/olist/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Adapter  adapter.Adapter
	Source   *loader.Source
	Store    *state.SQLiteStore
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext connects the configured target and builds the engine.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	a, err := adapter.Open(contextOf(cmd), cfg.Target.AdapterConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Adapter = a
	cmdCtx.Source = loader.New(loader.Config{
		Adapter: a,
		DataDir: ingestDir(cfg),
		Logger:  logger,
	})

	var store core.Store
	if cfg.StatePath != "" {
		s, err := state.Open(cfg.StatePath, logger)
		if err != nil {
			_ = a.Close()
			return nil, nil, fmt.Errorf("failed to open state store: %w", err)
		}
		cmdCtx.Store = s
		store = s
	}

	eng, err := engine.New(engine.Config{
		Loader: cmdCtx.Source,
		Filter: cfg.Filter.Filter(),
		Options: engine.Options{
			DeliveredOnly: cfg.Report.DeliveredOnly,
			WithDistance:  cfg.Report.WithDistance,
			Agg:           cfg.Report.Agg,
		},
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = a.Close()
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if err := eng.Close(); err != nil {
			logger.Warn("failed to close state store", slog.String("error", err.Error()))
		}
		_ = a.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without a target
// connection, for commands that only read configuration or run history.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, or the defaults when the
// command runs outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		DataDir:   config.DefaultDataDir,
		StatePath: config.DefaultStateFile,
		Output:    config.DefaultOutput,
		LogLevel:  config.DefaultLogLevel,
		Target:    &config.TargetConfig{Type: config.DefaultTargetType, Schema: "main"},
		Report:    config.ReportConfig{DeliveredOnly: true, Agg: config.DefaultAgg},
	}
}

// ingestDir returns the directory CSV files are loaded from. It is empty
// when the target already holds the tables, which only postgres allows.
func ingestDir(cfg *config.Config) string {
	if cfg.DataDir == "" && !strings.EqualFold(cfg.Target.Type, "postgres") {
		return config.DefaultDataDir
	}
	return cfg.DataDir
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

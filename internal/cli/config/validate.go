package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/pkg/adapter"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "csv", "yaml"}

// Validate checks the target type against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	typ := strings.ToLower(t.Type)
	if !adapter.IsRegistered(typ) {
		return &adapter.UnknownAdapterError{Type: t.Type, Available: adapter.ListAdapters()}
	}
	if typ == "postgres" && t.Database == "" {
		return fmt.Errorf("target database is required for postgres")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" && (c.Target == nil || !strings.EqualFold(c.Target.Type, "postgres")) {
		return fmt.Errorf("data_dir is required")
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("invalid output format %q (expected one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := agg.Lookup(c.Report.Agg); err != nil {
		return fmt.Errorf("invalid report.agg: %w", err)
	}
	if c.Filter.Column != "" && len(c.Filter.Values) == 0 {
		return fmt.Errorf("filter.values is required when filter.column is set")
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q (expected debug, info, warn or error)", s)
	}
	return level, nil
}

// Package config provides configuration management for the olist CLI.
package config

import (
	"strings"

	"github.com/leapstack-labs/olist/pkg/adapter"
	"github.com/leapstack-labs/olist/pkg/core"
)

// Default configuration values.
const (
	DefaultDataDir    = "data/csv"
	DefaultStateFile  = ".olist/state.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel   = "warn"
	DefaultTargetType = "duckdb"
	DefaultAgg        = "median"
)

// Config holds all CLI configuration options.
type Config struct {
	DataDir   string        `koanf:"data_dir"`
	StatePath string        `koanf:"state_path"`
	Output    string        `koanf:"output"`
	Verbose   bool          `koanf:"verbose"`
	LogLevel  string        `koanf:"log_level"`
	Target    *TargetConfig `koanf:"target"`
	Filter    FilterConfig  `koanf:"filter"`
	Report    ReportConfig  `koanf:"report"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// TargetConfig selects the database the olist tables are read through.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
	Params   map[string]any    `koanf:"params"`
}

// FilterConfig restricts the loaded tables to rows whose Column value is in Values.
type FilterConfig struct {
	Column string   `koanf:"column"`
	Values []string `koanf:"values"`
}

// ReportConfig tunes the derivations.
type ReportConfig struct {
	DeliveredOnly bool   `koanf:"delivered_only"`
	WithDistance  bool   `koanf:"with_distance"`
	Agg           string `koanf:"agg"`
}

// AdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Database,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// ApplyDefaults fills in type-specific defaults.
func (t *TargetConfig) ApplyDefaults() {
	if t.Type == "" {
		return
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if strings.EqualFold(t.Type, "postgres") && t.Port == 0 {
		t.Port = 5432
	}
}

// DefaultSchemaForType returns the schema the olist tables live in by default.
func DefaultSchemaForType(dbType string) string {
	if strings.EqualFold(dbType, "postgres") {
		return "public"
	}
	return "main"
}

// IsZero reports whether no filter is configured.
func (f FilterConfig) IsZero() bool {
	return f.Column == ""
}

// Filter returns the core filter, or nil when none is configured.
func (f FilterConfig) Filter() *core.Filter {
	if f.IsZero() {
		return nil
	}
	return core.NewFilter(f.Column, f.Values...)
}

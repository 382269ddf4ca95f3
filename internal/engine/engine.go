// Package engine computes the olist feature tables. It owns the single
// load step, wires the loaded dataset into the metric components and builds
// requested derivations level by level, running independent derivations of
// a level in parallel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/olist/internal/agg"
	"github.com/leapstack-labs/olist/internal/dag"
	"github.com/leapstack-labs/olist/internal/product"
	"github.com/leapstack-labs/olist/pkg/core"
)

// ErrUnknownDerivation is returned when a requested derivation does not exist.
var ErrUnknownDerivation = errors.New("unknown derivation")

// Loader loads the olist dataset, restricted by an optional filter.
type Loader interface {
	Load(ctx context.Context, filter *core.Filter) (*core.Dataset, error)
}

// Options tune the derivations.
type Options struct {
	// DeliveredOnly restricts order wait times to delivered orders.
	DeliveredOnly bool
	// WithDistance adds distance_seller_customer to the orders table.
	WithDistance bool
	// Agg is the aggregation applied by product_categories.
	Agg string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{DeliveredOnly: true, Agg: product.DefaultAgg}
}

// Config holds engine configuration.
type Config struct {
	// Loader supplies the dataset. Required.
	Loader Loader
	// Filter restricts the loaded tables (optional).
	Filter *core.Filter
	// Options tune the derivations.
	Options Options
	// Store records runs (optional; nil disables run history).
	Store core.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine builds derivations.
type Engine struct {
	loader Loader
	filter *core.Filter
	opts   Options
	store  core.Store
	graph  *dag.Graph
	logger *slog.Logger

	// observe is called once per computed derivation; used by tests.
	observe func(name string)
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Loader == nil {
		return nil, errors.New("engine: loader is required")
	}

	opts := cfg.Options
	if opts.Agg == "" {
		opts.Agg = product.DefaultAgg
	}
	if _, err := agg.Lookup(opts.Agg); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger.Debug("initializing engine",
		"delivered_only", opts.DeliveredOnly,
		"with_distance", opts.WithDistance,
		"agg", opts.Agg,
		"history", cfg.Store != nil)

	return &Engine{
		loader: cfg.Loader,
		filter: cfg.Filter,
		opts:   opts,
		store:  cfg.Store,
		graph:  Graph(),
		logger: logger,
	}, nil
}

// Graph returns the derivation graph.
func (e *Engine) Graph() *dag.Graph {
	return e.graph
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Store returns the run history store, or nil.
func (e *Engine) Store() core.Store {
	return e.store
}

// resolve validates names, defaulting to DefaultDerivation, and drops duplicates.
func (e *Engine) resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{DefaultDerivation}, nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !e.graph.Has(n) {
			return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownDerivation, n, e.graph.Names())
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

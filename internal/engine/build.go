package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/olist/internal/matching"
	"github.com/leapstack-labs/olist/internal/order"
	"github.com/leapstack-labs/olist/internal/product"
	"github.com/leapstack-labs/olist/internal/seller"
	"github.com/leapstack-labs/olist/pkg/core"
)

// Result holds the tables computed by one Build call.
type Result struct {
	// Requested lists the requested derivations in request order.
	Requested []string
	// Tables holds every computed derivation, upstream ones included.
	Tables map[string]core.Table
	// Durations records how long each derivation took.
	Durations map[string]time.Duration
	// Dataset is the loaded input.
	Dataset *core.Dataset
}

// Table returns the computed table for name.
func (r *Result) Table(name string) (core.Table, bool) {
	t, ok := r.Tables[name]
	return t, ok
}

// RowCounts returns the row count of every requested table.
func (r *Result) RowCounts() map[string]int {
	counts := make(map[string]int, len(r.Requested))
	for _, n := range r.Requested {
		if t, ok := r.Tables[n]; ok {
			counts[n] = t.Len()
		}
	}
	return counts
}

// build carries the intermediate components of one Build call. Each field
// is written by exactly one derivation and read only by later levels.
type build struct {
	data *core.Dataset
	opts Options

	matching        matching.Table
	orders          *order.Metrics
	products        *product.Metrics
	productTraining product.TrainingData
	sellers         *seller.Metrics
	sellerTraining  seller.TrainingData

	mu        sync.Mutex
	tables    map[string]core.Table
	durations map[string]time.Duration
}

func (b *build) record(name string, t core.Table, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[name] = t
	b.durations[name] = d
}

// Build loads the dataset and computes the named derivations together with
// their upstream derivations. Each derivation is computed at most once per
// call; derivations of the same level run concurrently.
func (e *Engine) Build(ctx context.Context, names ...string) (*Result, error) {
	targets, err := e.resolve(names)
	if err != nil {
		return nil, err
	}
	levels, err := e.graph.Levels(targets...)
	if err != nil {
		return nil, err
	}

	data, err := e.loader.Load(ctx, e.filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	b := &build{
		data:      data,
		opts:      e.opts,
		tables:    make(map[string]core.Table),
		durations: make(map[string]time.Duration),
	}

	for i, level := range levels {
		e.logger.Debug("building level", "level", i, "derivations", level)

		g, gctx := errgroup.WithContext(ctx)
		for _, name := range level {
			g.Go(func() error {
				return e.derive(gctx, b, name)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &Result{
		Requested: targets,
		Tables:    b.tables,
		Durations: b.durations,
		Dataset:   data,
	}, nil
}

func (e *Engine) derive(ctx context.Context, b *build, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.observe != nil {
		e.observe(name)
	}

	e.logger.Debug("derivation started", "derivation", name)
	start := time.Now()

	t, err := b.compute(name)
	if err != nil {
		return fmt.Errorf("derivation %s: %w", name, err)
	}

	elapsed := time.Since(start)
	b.record(name, t, elapsed)
	e.logger.Info("derivation finished", "derivation", name, "rows", t.Len(), "duration", elapsed)
	return nil
}

func (b *build) compute(name string) (core.Table, error) {
	switch name {
	case Matching:
		mt, err := matching.Build(b.data)
		if err != nil {
			return nil, err
		}
		b.matching = mt
		b.orders = order.New(b.data, mt)
		return mt, nil

	case Orders:
		return b.orders.TrainingData(order.Options{
			DeliveredOnly: b.opts.DeliveredOnly,
			WithDistance:  b.opts.WithDistance,
		}), nil

	case Products:
		b.products = product.New(b.data, b.matching, b.orders)
		b.productTraining = b.products.TrainingData()
		return b.productTraining, nil

	case Sellers:
		b.sellers = seller.New(b.data, b.matching, b.orders)
		b.sellerTraining = b.sellers.TrainingData()
		return b.sellerTraining, nil

	case ProductCategories:
		return product.Rollup(b.productTraining, b.opts.Agg)

	case SellerHistory:
		return b.sellers.History(b.sellerTraining, productCategories(b.products.Features())), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownDerivation, name)
}

// productCategories maps product_id to its English category.
func productCategories(features product.FeatureTable) map[string]string {
	out := make(map[string]string, len(features))
	for _, f := range features {
		out[f.ProductID] = f.Category
	}
	return out
}

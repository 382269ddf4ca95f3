package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/olist/internal/seller"
	"github.com/leapstack-labs/olist/internal/state"
	"github.com/leapstack-labs/olist/internal/testutil"
	"github.com/leapstack-labs/olist/pkg/core"
)

type fakeLoader struct {
	mu      sync.Mutex
	calls   int
	filters []*core.Filter
	data    func() *core.Dataset
	err     error
}

func (l *fakeLoader) Load(_ context.Context, filter *core.Filter) (*core.Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.filters = append(l.filters, filter)
	if l.err != nil {
		return nil, l.err
	}
	if l.data != nil {
		return l.data(), nil
	}
	return testutil.SampleDataset(), nil
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *fakeLoader) {
	t.Helper()
	loader, ok := cfg.Loader.(*fakeLoader)
	if !ok {
		loader = &fakeLoader{}
		cfg.Loader = loader
	}
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e, loader
}

func TestNew(t *testing.T) {
	t.Run("requires loader", func(t *testing.T) {
		_, err := New(Config{})
		assert.ErrorContains(t, err, "loader is required")
	})

	t.Run("defaults aggregation", func(t *testing.T) {
		e, err := New(Config{Loader: &fakeLoader{}})
		require.NoError(t, err)
		assert.Equal(t, "median", e.Options().Agg)
		assert.Nil(t, e.Store())
		assert.Equal(t, 6, e.Graph().Len())
	})

	t.Run("rejects unknown aggregation", func(t *testing.T) {
		_, err := New(Config{Loader: &fakeLoader{}, Options: Options{Agg: "mode"}})
		assert.Error(t, err)
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.DeliveredOnly)
	assert.False(t, opts.WithDistance)
	assert.Equal(t, "median", opts.Agg)
}

func TestGraphShape(t *testing.T) {
	g := Graph()
	assert.Empty(t, g.Parents(Matching))
	assert.Equal(t, []string{Orders, Products, Sellers}, g.Children(Matching))
	assert.Equal(t, []string{Products, Sellers}, g.Parents(SellerHistory))
	assert.Equal(t, []string{Products}, g.Parents(ProductCategories))
	assert.Equal(t, []string{
		Matching, Orders, ProductCategories, Products, SellerHistory, Sellers,
	}, Names())
}

func TestBuild_DefaultDerivation(t *testing.T) {
	filter := core.NewFilter("seller_id", "s1", "s2")
	e, loader := newTestEngine(t, Config{Filter: filter, Options: DefaultOptions()})

	res, err := e.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{Orders}, res.Requested)
	assert.Len(t, res.Tables, 2)
	assert.Equal(t, 1, loader.calls)
	assert.Same(t, filter, loader.filters[0])

	mt, ok := res.Table(Matching)
	require.True(t, ok)
	assert.Equal(t, 4, mt.Len())

	orders, ok := res.Table(Orders)
	require.True(t, ok)
	assert.Equal(t, 2, orders.Len())
	assert.NotContains(t, orders.Columns(), "distance_seller_customer")
	assert.Equal(t, map[string]int{Orders: 2}, res.RowCounts())
	assert.Contains(t, res.Durations, Orders)
}

func TestBuild_WithDistance(t *testing.T) {
	e, _ := newTestEngine(t, Config{Options: Options{DeliveredOnly: true, WithDistance: true}})

	res, err := e.Build(context.Background(), Orders)
	require.NoError(t, err)

	orders, _ := res.Table(Orders)
	assert.Contains(t, orders.Columns(), "distance_seller_customer")
	assert.Equal(t, 2, orders.Len())
}

func TestBuild_SharedUpstreamBuiltOnce(t *testing.T) {
	e, loader := newTestEngine(t, Config{Options: DefaultOptions()})

	var mu sync.Mutex
	counts := make(map[string]int)
	e.observe = func(name string) {
		mu.Lock()
		defer mu.Unlock()
		counts[name]++
	}

	res, err := e.Build(context.Background(), SellerHistory, ProductCategories, Sellers, SellerHistory)
	require.NoError(t, err)

	assert.Equal(t, []string{SellerHistory, ProductCategories, Sellers}, res.Requested)
	assert.Equal(t, map[string]int{
		Matching:          1,
		Products:          1,
		Sellers:           1,
		ProductCategories: 1,
		SellerHistory:     1,
	}, counts)
	assert.Equal(t, 1, loader.calls)
	assert.NotContains(t, res.Tables, Orders)
}

func TestBuild_SellerHistory(t *testing.T) {
	e, _ := newTestEngine(t, Config{Options: DefaultOptions()})

	res, err := e.Build(context.Background(), SellerHistory)
	require.NoError(t, err)

	tbl, ok := res.Table(SellerHistory)
	require.True(t, ok)
	history, ok := tbl.(seller.HistoryTable)
	require.True(t, ok)
	require.Len(t, history, 2)
	assert.Equal(t, "computers_accessories", history[0].Category)
	assert.Equal(t, "health_beauty", history[1].Category)
	assert.Equal(t, 1, history[1].NSellers)
	assert.InDelta(t, 220.0, history[1].Sales, 1e-9)
}

func TestBuild_ProductCategories(t *testing.T) {
	e, _ := newTestEngine(t, Config{Options: Options{DeliveredOnly: true, Agg: "sum"}})

	res, err := e.Build(context.Background(), ProductCategories)
	require.NoError(t, err)

	tbl, ok := res.Table(ProductCategories)
	require.True(t, ok)
	assert.Equal(t, 2, tbl.Len())
}

func TestBuild_UnknownDerivation(t *testing.T) {
	e, loader := newTestEngine(t, Config{})

	_, err := e.Build(context.Background(), Orders, "customers")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDerivation))
	assert.Contains(t, err.Error(), `"customers"`)
	assert.Zero(t, loader.calls)
}

func TestBuild_LoaderError(t *testing.T) {
	missing := &core.MissingFileError{Entity: core.EntityOrders, Path: "data/olist_orders_dataset.csv"}
	e, _ := newTestEngine(t, Config{Loader: &fakeLoader{err: missing}})

	_, err := e.Build(context.Background(), Orders)
	var target *core.MissingFileError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, core.EntityOrders, target.Entity)
}

func TestBuild_EmptyInput(t *testing.T) {
	loader := &fakeLoader{data: func() *core.Dataset {
		ds := testutil.SampleDataset()
		ds.OrderItems = nil
		return ds
	}}
	e, _ := newTestEngine(t, Config{Loader: loader})

	_, err := e.Build(context.Background(), Sellers)
	var empty *core.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Contains(t, err.Error(), "derivation matching")
}

func TestBuild_Canceled(t *testing.T) {
	e, _ := newTestEngine(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Build(ctx, Orders)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RecordsHistory(t *testing.T) {
	store, err := state.Open(state.MemoryPath, testutil.NewTestLogger(t))
	require.NoError(t, err)

	filter := core.NewFilter("order_id", "o1", "o2", "o3")
	e, _ := newTestEngine(t, Config{Store: store, Filter: filter, Options: DefaultOptions()})
	defer func() { require.NoError(t, e.Close()) }()

	res, run, err := e.Run(context.Background(), Orders, Sellers)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, core.RunStatusCompleted, run.Status)
	assert.Equal(t, []string{Orders, Sellers}, run.Derivations)
	assert.Equal(t, res.RowCounts(), run.RowCounts)
	require.NotNil(t, run.Filter)
	assert.Equal(t, "order_id", run.Filter.Column)
	assert.NotNil(t, run.CompletedAt)
}

func TestRun_RecordsFailure(t *testing.T) {
	store, err := state.Open(state.MemoryPath, nil)
	require.NoError(t, err)

	e, _ := newTestEngine(t, Config{Store: store, Loader: &fakeLoader{err: errors.New("disk on fire")}})
	defer func() { _ = e.Close() }()

	_, run, err := e.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "disk on fire")
	assert.Equal(t, []string{Orders}, run.Derivations)

	latest, err := store.GetLatestRun()
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
}

func TestRun_WithoutStore(t *testing.T) {
	e, _ := newTestEngine(t, Config{})

	res, run, err := e.Run(context.Background(), Matching)
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.Equal(t, []string{Matching}, res.Requested)
	assert.NoError(t, e.Close())
}

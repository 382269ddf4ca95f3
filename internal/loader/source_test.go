package loader

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/olist/internal/testutil"
	"github.com/leapstack-labs/olist/pkg/adapter"
	"github.com/leapstack-labs/olist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter serves table headers from memory and queries from sqlmock.
type stubAdapter struct {
	adapter.BaseSQLAdapter
	headers map[string][]string
	loaded  []string
}

func (s *stubAdapter) Connect(context.Context, adapter.Config) error { return nil }

func (s *stubAdapter) DescribeTable(_ context.Context, table string) (*adapter.TableInfo, error) {
	header, ok := s.headers[table]
	if !ok {
		return nil, &adapter.TableNotFoundError{Schema: "main", Table: table}
	}
	info := &adapter.TableInfo{Schema: "main", Name: table}
	for i, name := range header {
		info.Columns = append(info.Columns, adapter.Column{Name: name, Type: "VARCHAR", Position: i + 1})
	}
	return info, nil
}

func (s *stubAdapter) QualifiedName(table string) string { return adapter.QuoteIdent(table) }

func (s *stubAdapter) LoadCSV(_ context.Context, table, _ string) error {
	s.loaded = append(s.loaded, table)
	return nil
}

func newStub(t *testing.T) (*stubAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &stubAdapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db},
		headers:        make(map[string][]string),
	}, mock
}

// stubTable registers a table whose header is the catalog's columns and
// expects one SELECT returning rows.
func stubTable(stub *stubAdapter, mock sqlmock.Sqlmock, entity string, rows ...[]driver.Value) {
	spec, _ := core.LookupEntity(entity)
	header := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		header[i] = c.Name
	}
	stub.headers[entity] = header

	result := sqlmock.NewRows(header)
	for _, r := range rows {
		result.AddRow(r...)
	}
	mock.ExpectQuery(fmt.Sprintf(`SELECT .* FROM "%s"`, entity)).WillReturnRows(result)
}

func TestLoad_FilterRestrictsTablesCarryingColumn(t *testing.T) {
	stub, mock := newStub(t)

	stubTable(stub, mock, core.EntityGeolocation, []driver.Value{"01046", "-23.5", "-46.6"})
	stubTable(stub, mock, core.EntityCategoryTranslations, []driver.Value{"beleza_saude", "health_beauty"})
	stubTable(stub, mock, core.EntityCustomers,
		[]driver.Value{"c1", "u1", "20010", "rio de janeiro", "RJ"},
		[]driver.Value{"c2", "u2", "01046", "sao paulo", "SP"})
	stubTable(stub, mock, core.EntitySellers, []driver.Value{"s1", "01046", "sao paulo", "SP"})
	stubTable(stub, mock, core.EntityOrderPayments,
		[]driver.Value{"o1", "1", "credit_card", "2", "165.00"},
		[]driver.Value{"o2", "1", "boleto", "1", "132.00"})
	stubTable(stub, mock, core.EntityOrders,
		[]driver.Value{"o1", "c1", "delivered", "2018-01-01 10:00:00", "2018-01-01 11:00:00", "2018-01-03 10:00:00", "2018-01-06 10:00:00", "2018-01-08 10:00:00"},
		[]driver.Value{"o2", "c2", "shipped", "2018-02-01 00:00:00", nil, nil, "", "2018-02-10 00:00:00"})
	stubTable(stub, mock, core.EntityOrderReviews,
		[]driver.Value{"r1", "o1", "5"},
		[]driver.Value{"r2", "o2", "1"})
	stubTable(stub, mock, core.EntityOrderItems,
		[]driver.Value{"o1", "1", "p1", "s1", "2018-01-04 10:00:00", "100.00", "10.00"},
		[]driver.Value{"o2", "1", "p1", "s1", "2018-02-03 00:00:00", "120.00", "12.00"})
	stubTable(stub, mock, core.EntityProducts,
		[]driver.Value{"p1", "beleza_saude", "40", "300", "2", "500", "20", "10", "15"})

	src := New(Config{Adapter: stub, Logger: testutil.NewTestLogger(t)})
	ds, err := src.Load(context.Background(), core.NewFilter("order_id", "o1"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Empty(t, stub.loaded, "no data dir means nothing is ingested")

	require.Len(t, ds.Orders, 1)
	assert.Equal(t, "o1", ds.Orders[0].OrderID)
	assert.Equal(t, core.OrderStatusDelivered, ds.Orders[0].Status)
	assert.Equal(t, testutil.Time("2018-01-06 10:00:00"), ds.Orders[0].DeliveredCustomerDate)
	assert.Len(t, ds.OrderItems, 1)
	assert.Len(t, ds.OrderReviews, 1)
	assert.Len(t, ds.OrderPayments, 1)
	assert.Equal(t, 165.0, ds.OrderPayments[0].PaymentValue)

	assert.Len(t, ds.Customers, 2, "customers carry no order_id")
	assert.Len(t, ds.Geolocation, 1)
	assert.Equal(t, "01046", ds.Sellers[0].ZipCodePrefix)
	require.NotNil(t, ds.Products[0].NameLength)
	assert.Equal(t, 40.0, *ds.Products[0].NameLength)
}

func TestLoad_NullsDecodeToNil(t *testing.T) {
	stub, mock := newStub(t)
	stubTable(stub, mock, core.EntityOrders,
		[]driver.Value{"o2", "c2", "shipped", "2018-02-01 00:00:00", nil, "NULL", "", "not a date"})

	spec, _ := core.LookupEntity(core.EntityOrders)
	src := New(Config{Adapter: stub})
	records, err := src.LoadTable(context.Background(), spec, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	orders, err := decodeRecords[core.Order](records)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.NotNil(t, orders[0].PurchaseTimestamp)
	assert.Nil(t, orders[0].ApprovedAt)
	assert.Nil(t, orders[0].DeliveredCarrierDate)
	assert.Nil(t, orders[0].DeliveredCustomerDate)
	assert.Nil(t, orders[0].EstimatedDeliveryDate)
}

func TestLoadTable_FilterColumnOutsideCatalog(t *testing.T) {
	stub, mock := newStub(t)
	stub.headers[core.EntitySellers] = []string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state", "region"}
	mock.ExpectQuery(`SELECT "seller_id", "seller_zip_code_prefix", "seller_city", "seller_state", "region" FROM "sellers"`).
		WillReturnRows(sqlmock.NewRows([]string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state", "region"}).
			AddRow("s1", "01046", "sao paulo", "SP", "southeast").
			AddRow("s2", "69005", "manaus", "AM", "north"))

	spec, _ := core.LookupEntity(core.EntitySellers)
	src := New(Config{Adapter: stub})
	records, err := src.LoadTable(context.Background(), spec, core.NewFilter("region", "north"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "s2", records[0]["seller_id"])
	assert.NotContains(t, records[0], "region")
}

func TestLoadTable_AcceptsMisspelledProductColumns(t *testing.T) {
	stub, mock := newStub(t)
	header := []string{
		"product_id", "product_category_name", "product_name_lenght", "product_description_lenght",
		"product_photos_qty", "product_weight_g", "product_length_cm", "product_height_cm", "product_width_cm",
	}
	stub.headers[core.EntityProducts] = header
	mock.ExpectQuery(`"product_name_lenght"`).
		WillReturnRows(sqlmock.NewRows(header).AddRow("p1", "beleza_saude", "40", "300", "", "500", "20", "10", "15"))

	spec, _ := core.LookupEntity(core.EntityProducts)
	records, err := New(Config{Adapter: stub}).LoadTable(context.Background(), spec, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 40.0, records[0]["product_name_length"])
	assert.Equal(t, 300.0, records[0]["product_description_length"])
	assert.NotContains(t, records[0], "product_photos_qty")
}

func TestLoadTable_SchemaMismatch(t *testing.T) {
	stub, _ := newStub(t)
	stub.headers[core.EntitySellers] = []string{"seller_id", "seller_zip_code_prefix", "seller_state"}

	spec, _ := core.LookupEntity(core.EntitySellers)
	_, err := New(Config{Adapter: stub}).LoadTable(context.Background(), spec, nil)

	var mismatch *core.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, core.EntitySellers, mismatch.Entity)
	assert.Equal(t, "seller_city", mismatch.Column)
}

func TestLoad_MissingFile(t *testing.T) {
	stub, _ := newStub(t)
	dir := t.TempDir()

	_, err := New(Config{Adapter: stub, DataDir: dir}).Load(context.Background(), nil)

	var missing *core.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, core.EntityGeolocation, missing.Entity)
	assert.Equal(t, filepath.Join(dir, "olist_geolocation_dataset.csv"), missing.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_NoAdapter(t *testing.T) {
	_, err := New(Config{}).Load(context.Background(), nil)
	assert.Error(t, err)
}

func TestLoadTable_MissingPreloadedTable(t *testing.T) {
	stub, _ := newStub(t)

	spec, _ := core.LookupEntity(core.EntityOrderPayments)
	_, err := New(Config{Adapter: stub}).LoadTable(context.Background(), spec, nil)

	var missing *core.MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, core.EntityOrderPayments, missing.Entity)
	assert.Equal(t, `"order_payments"`, missing.Path)

	var notFound *adapter.TableNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, stub.loaded, "nothing is ingested without a data directory")
}

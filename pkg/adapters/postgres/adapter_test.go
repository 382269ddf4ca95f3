package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/olist/pkg/adapter"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name   string
		config adapter.Config
		want   string
	}{
		{
			name: "credentials",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "olist",
				Username: "user",
				Password: "pass",
			},
			want: "host=localhost port=5432 dbname=olist sslmode=disable user=user password=pass",
		},
		{
			name: "sslmode option",
			config: adapter.Config{
				Host:     "warehouse.example.com",
				Port:     6543,
				Database: "ecommerce",
				Username: "analyst",
				Options:  map[string]string{"sslmode": "require"},
			},
			want: "host=warehouse.example.com port=6543 dbname=ecommerce sslmode=require user=analyst",
		},
		{
			name:   "defaults",
			config: adapter.Config{Database: "olist"},
			want:   "host=localhost port=5432 dbname=olist sslmode=disable",
		},
		{
			name:   "quoted password",
			config: adapter.Config{Database: "olist", Password: `it's a secret`},
			want:   `host=localhost port=5432 dbname=olist sslmode=disable password='it\'s a secret'`,
		},
		{
			name:   "empty database",
			config: adapter.Config{},
			want:   "host=localhost port=5432 dbname='' sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPostgresDSN(tt.config))
		})
	}
}

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		table  string
		want   string
	}{
		{"default schema", "", "orders", `"public"."orders"`},
		{"configured schema", "raw", "orders", `"raw"."orders"`},
		{"explicit schema wins", "raw", "staging.orders", `"staging"."orders"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp := New(nil)
			adp.Cfg.Schema = tt.schema
			assert.Equal(t, tt.want, adp.QualifiedName(tt.table))
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL(`"public"."order_reviews"`, []string{"review_id", "order_id", "review_score"})
	assert.Equal(t,
		`CREATE TABLE "public"."order_reviews" ("review_id" TEXT, "order_id" TEXT, "review_score" TEXT)`,
		got)
}

func TestCSVSource(t *testing.T) {
	in := "\ufeffseller_id, seller_zip_code_prefix ,seller_city\n" +
		"s1,01046,sao paulo\n" +
		"s2,,\"campinas, sp\"\n"

	src, header, err := newCSVSource(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"seller_id", "seller_zip_code_prefix", "seller_city"}, header)

	var rows [][]any
	for src.Next() {
		vals, err := src.Values()
		require.NoError(t, err)
		rows = append(rows, vals)
	}
	require.NoError(t, src.Err())
	assert.Equal(t, [][]any{
		{"s1", "01046", "sao paulo"},
		{"s2", nil, "campinas, sp"},
	}, rows)
}

func TestCSVSource_RaggedRow(t *testing.T) {
	src, _, err := newCSVSource(strings.NewReader("a,b\n1,2\n3\n"))
	require.NoError(t, err)

	assert.True(t, src.Next())
	assert.False(t, src.Next())
	assert.Error(t, src.Err())
}

func TestCSVSource_EmptyFile(t *testing.T) {
	_, _, err := newCSVSource(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDescribeTable_UsesConfiguredSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	adp := New(nil)
	adp.DB = db
	adp.Cfg.Schema = "raw"

	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("raw", "sellers").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("seller_id", "text", "YES", 1).
			AddRow("seller_zip_code_prefix", "text", "YES", 2))

	info, err := adp.DescribeTable(context.Background(), "sellers")
	require.NoError(t, err)
	assert.Equal(t, "raw", info.Schema)
	assert.Equal(t, []string{"seller_id", "seller_zip_code_prefix"}, info.ColumnNames())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name string
		op   func(ctx context.Context, adp *Adapter) error
	}{
		{"exec", func(ctx context.Context, adp *Adapter) error {
			return adp.Exec(ctx, "SELECT 1")
		}},
		{"query", func(ctx context.Context, adp *Adapter) error {
			_, err := adp.Query(ctx, "SELECT 1")
			return err
		}},
		{"describe", func(ctx context.Context, adp *Adapter) error {
			_, err := adp.DescribeTable(ctx, "orders")
			return err
		}},
		{"load csv", func(ctx context.Context, adp *Adapter) error {
			return adp.LoadCSV(ctx, "orders", "/tmp/olist_orders_dataset.csv")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(context.Background(), New(nil))
			assert.ErrorIs(t, err, adapter.ErrNotConnected)
		})
	}
}

func TestLoadCSV_RemotePathUnsupported(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	adp := New(nil)
	adp.DB = db

	err = adp.LoadCSV(context.Background(), "orders", "s3://olist/olist_orders_dataset.csv")
	assert.ErrorIs(t, err, adapter.ErrLoadUnsupported)
}

func TestRegistered(t *testing.T) {
	factory, ok := adapter.Lookup("postgres")
	require.True(t, ok)
	assert.IsType(t, &Adapter{}, factory(nil))
}

func TestClose_BeforeConnect(t *testing.T) {
	assert.NoError(t, New(nil).Close())
}

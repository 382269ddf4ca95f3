package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/olist/pkg/adapter"
	"github.com/leapstack-labs/olist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, params map[string]any) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: ":memory:", Params: params}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "olist.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	assert.ErrorIs(t, adp.Exec(ctx, "SELECT 1"), adapter.ErrNotConnected)
	_, err := adp.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
	assert.ErrorIs(t, adp.LoadCSV(ctx, "orders", "orders.csv"), adapter.ErrNotConnected)
}

func TestAdapter_ConnectWithSettings(t *testing.T) {
	adp := connect(t, map[string]any{
		"settings": map[string]any{"threads": "2"},
	})

	rows, err := adp.Query(context.Background(), "SELECT current_setting('threads')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var threads any
	require.NoError(t, rows.Scan(&threads))
	assert.EqualValues(t, 2, threads)
}

func TestAdapter_ConnectRejectsUnknownParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Path:   ":memory:",
		Params: map[string]any{"bogus": true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duckdb params")
}

func TestAdapter_LoadCSVKeepsRawText(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, nil)

	csvPath := filepath.Join(t.TempDir(), "olist_sellers_dataset.csv")
	content := "seller_id,seller_zip_code_prefix,seller_city,seller_state\n" +
		"s1,01046,sao paulo,SP\n" +
		"s2,,campinas,SP\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0600))

	require.NoError(t, adp.LoadCSV(ctx, "sellers", csvPath))

	info, err := adp.DescribeTable(ctx, "sellers")
	require.NoError(t, err)
	assert.Equal(t, "main", info.Schema)
	assert.Equal(t, []string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"}, info.ColumnNames())
	for _, col := range info.Columns {
		assert.Equal(t, "VARCHAR", col.Type, "column %s", col.Name)
	}

	rows, err := adp.Query(ctx, "SELECT seller_zip_code_prefix FROM "+adp.QualifiedName("sellers")+" ORDER BY seller_id")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var zips []*string
	for rows.Next() {
		var zip *string
		require.NoError(t, rows.Scan(&zip))
		zips = append(zips, zip)
	}
	require.NoError(t, rows.Err())
	require.Len(t, zips, 2)
	require.NotNil(t, zips[0])
	assert.Equal(t, "01046", *zips[0])
	assert.Nil(t, zips[1])
}

func TestAdapter_DescribeMissingTable(t *testing.T) {
	adp := connect(t, nil)

	_, err := adp.DescribeTable(context.Background(), "order_payments")
	var notFound *adapter.TableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order_payments", notFound.Table)
}

func TestAdapter_Registered(t *testing.T) {
	factory, ok := adapter.Lookup("duckdb")
	require.True(t, ok)
	assert.IsType(t, &Adapter{}, factory(nil))
}

func TestBuildCreateSecretSQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  SecretConfig
		want string
	}{
		{
			name: "s3 with credential chain",
			cfg: SecretConfig{
				Type:     "s3",
				Provider: "credential_chain",
				Region:   "sa-east-1",
			},
			want: `CREATE SECRET (
    TYPE s3,
    PROVIDER credential_chain,
    REGION 'sa-east-1'
)`,
		},
		{
			name: "s3 with multiple scopes",
			cfg: SecretConfig{
				Type:   "s3",
				Region: "sa-east-1",
				Scope:  []any{"s3://olist-raw", "s3://olist-archive"},
			},
			want: `CREATE SECRET (
    TYPE s3,
    REGION 'sa-east-1',
    SCOPE ('s3://olist-raw', 's3://olist-archive')
)`,
		},
		{
			name: "s3 compatible with endpoint and path style",
			cfg: SecretConfig{
				Type:     "s3",
				Provider: "config",
				KeyID:    "minioadmin",
				Secret:   "minio'admin",
				Endpoint: "localhost:9000",
				URLStyle: "path",
				UseSSL:   boolPtr(false),
			},
			want: `CREATE SECRET (
    TYPE s3,
    PROVIDER config,
    KEY_ID 'minioadmin',
    SECRET 'minio''admin',
    ENDPOINT 'localhost:9000',
    URL_STYLE 'path',
    USE_SSL false
)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCreateSecretSQL(tt.cfg))
		})
	}
}

func TestSettingStatements(t *testing.T) {
	got := settingStatements(map[string]string{"threads": "4", "memory_limit": "2GB"})
	assert.Equal(t, []string{"SET memory_limit = '2GB'", "SET threads = '4'"}, got)
}

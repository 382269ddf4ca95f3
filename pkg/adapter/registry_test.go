package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter records lifecycle calls and fails Connect on demand.
type fakeAdapter struct {
	BaseSQLAdapter
	connectErr error
	connected  bool
	closed     bool
}

func (f *fakeAdapter) Connect(_ context.Context, cfg Config) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.Cfg = cfg
	f.connected = true
	return nil
}

func (f *fakeAdapter) Close() error { f.closed = true; return nil }

func (f *fakeAdapter) DescribeTable(context.Context, string) (*TableInfo, error) {
	return nil, &TableNotFoundError{}
}

func (f *fakeAdapter) LoadCSV(context.Context, string, string) error { return ErrLoadUnsupported }

func (f *fakeAdapter) QualifiedName(table string) string { return QuoteIdent(table) }

func register(t *testing.T, name string, a *fakeAdapter) {
	t.Helper()
	Register(name, func(*slog.Logger) Adapter { return a })
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		delete(factories, name)
	})
}

func TestRegister_CaseInsensitive(t *testing.T) {
	register(t, "warehouse", &fakeAdapter{})

	for _, name := range []string{"warehouse", "Warehouse", "WAREHOUSE"} {
		assert.True(t, IsRegistered(name), name)
	}
	assert.Contains(t, ListAdapters(), "warehouse")
	assert.False(t, IsRegistered("lakehouse"))
}

func TestListAdapters_Sorted(t *testing.T) {
	register(t, "zz_target", &fakeAdapter{})
	register(t, "aa_target", &fakeAdapter{})

	names := ListAdapters()
	assert.IsNonDecreasing(t, names)
}

func TestNewAdapter(t *testing.T) {
	register(t, "warehouse", &fakeAdapter{})

	tests := []struct {
		name    string
		typ     string
		wantErr string
	}{
		{"registered", "warehouse", ""},
		{"empty type", "", "adapter type not specified"},
		{"unknown type", "mysql", `unknown target type "mysql"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(Config{Type: tt.typ}, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, a)
		})
	}
}

func TestUnknownAdapterError(t *testing.T) {
	err := &UnknownAdapterError{Type: "mysql", Available: []string{"duckdb", "postgres"}}

	assert.Equal(t,
		`unknown target type "mysql" (available: duckdb, postgres); check target.type in olist.yaml`,
		err.Error())
}

func TestOpen_Connects(t *testing.T) {
	fa := &fakeAdapter{}
	register(t, "warehouse", fa)

	a, err := Open(context.Background(), Config{Type: "warehouse", Schema: "raw"}, nil)
	require.NoError(t, err)
	assert.Same(t, fa, a)
	assert.True(t, fa.connected)
	assert.Equal(t, "raw", fa.Cfg.Schema)
}

func TestOpen_ClosesOnConnectFailure(t *testing.T) {
	fa := &fakeAdapter{connectErr: assert.AnError}
	register(t, "flaky", fa)

	_, err := Open(context.Background(), Config{Type: "flaky"}, nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to connect flaky target")
	assert.True(t, fa.closed, "adapter should be closed after a failed connect")
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := Open(context.Background(), Config{Type: "nope"}, nil)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Type)
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/olist/internal/cli/config"
	"github.com/leapstack-labs/olist/internal/cli/testutil"
)

// execute runs the root command with args inside a sample project.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

type tableDoc struct {
	Name     string           `json:"name"`
	Columns  []string         `json:"columns"`
	RowCount int              `json:"row_count"`
	Rows     []map[string]any `json:"rows"`
}

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "olist", root.Use)
	for _, flag := range []string{"config", "data-dir", "state", "target", "database", "log-level", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "list", "history", "version"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestRun_OrdersJSON(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	out, _, err := execute(t, "run", "-o", "json")
	require.NoError(t, err)

	var docs []tableDoc
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "orders", docs[0].Name)
	assert.Equal(t, 2, docs[0].RowCount)
	assert.Contains(t, docs[0].Columns, "order_id")
}

func TestRun_MarkdownWhenPiped(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	out, errOut, err := execute(t, "run", "sellers", "products")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "## sellers")
	assert.Contains(t, out, "## products")
	assert.Contains(t, errOut, "computed sellers, products")
}

func TestRun_UnknownDerivation(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	_, _, err := execute(t, "run", "customers_by_state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown derivation")
}

func TestRun_InvalidAgg(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	_, _, err := execute(t, "run", "product_categories", "--agg", "mode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown aggregation")
}

func TestRun_SpreadAggregationRendersJSON(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	for _, name := range []string{"std", "var"} {
		t.Run(name, func(t *testing.T) {
			out, _, err := execute(t, "run", "product_categories", "--agg", name, "-o", "json")
			require.NoError(t, err)

			var docs []tableDoc
			require.NoError(t, json.Unmarshal([]byte(out), &docs))
			require.Len(t, docs, 1)
			assert.Equal(t, "product_categories", docs[0].Name)
			require.NotEmpty(t, docs[0].Rows)
			for _, row := range docs[0].Rows {
				assert.Nil(t, row["price"], "spread of a single product is null")
			}
		})
	}
}

func TestHistory_RecordsRuns(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	_, _, err := execute(t, "run", "orders", "-o", "json")
	require.NoError(t, err)
	_, _, err = execute(t, "run", "sellers", "--filter-column", "seller_id", "--filter-values", "s1", "-o", "json")
	require.NoError(t, err)

	out, _, err := execute(t, "history", "-o", "json")
	require.NoError(t, err)

	var runs []struct {
		Derivations []string       `json:"derivations"`
		Status      string         `json:"status"`
		RowCounts   map[string]int `json:"row_counts"`
		Filter      *struct {
			Column string   `json:"column"`
			Values []string `json:"values"`
		} `json:"filter"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)

	assert.Equal(t, []string{"sellers"}, runs[0].Derivations)
	require.NotNil(t, runs[0].Filter)
	assert.Equal(t, "seller_id", runs[0].Filter.Column)
	assert.Equal(t, []string{"s1"}, runs[0].Filter.Values)

	assert.Equal(t, []string{"orders"}, runs[1].Derivations)
	assert.Equal(t, "completed", runs[1].Status)
	assert.Equal(t, map[string]int{"orders": 2}, runs[1].RowCounts)
	assert.Nil(t, runs[1].Filter)
}

func TestHistory_Empty(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	out, _, err := execute(t, "history", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestList_JSON(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	out, _, err := execute(t, "list", "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Entities []struct {
			Name string `json:"name"`
			Rows int    `json:"rows"`
		} `json:"entities"`
		Derivations []struct {
			Name      string   `json:"name"`
			Level     int      `json:"level"`
			DependsOn []string `json:"depends_on"`
			UsedBy    []string `json:"used_by"`
		} `json:"derivations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Entities, 9)
	rows := map[string]int{}
	for _, e := range doc.Entities {
		rows[e.Name] = e.Rows
	}
	assert.Equal(t, 2, rows["sellers"])
	assert.Equal(t, 3, rows["orders"])

	require.Len(t, doc.Derivations, 6)
	assert.Equal(t, "matching", doc.Derivations[0].Name)
	assert.Equal(t, 0, doc.Derivations[0].Level)
	last := doc.Derivations[len(doc.Derivations)-1]
	assert.Equal(t, "seller_history", last.Name)
	assert.Equal(t, []string{"products", "sellers"}, last.DependsOn)
	assert.Empty(t, last.UsedBy)

	usedBy := map[string][]string{}
	for _, d := range doc.Derivations {
		usedBy[d.Name] = d.UsedBy
	}
	assert.Equal(t, []string{"product_categories", "seller_history"}, usedBy["products"])
}

func TestVersion_SkipsConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "version", "--output", "bogus")
	require.NoError(t, err)
	assert.Contains(t, out, "olist v"+Version)
}

func TestCompletion_SkipsConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "completion", "bash", "--output", "bogus")
	require.NoError(t, err)
	assert.Contains(t, out, "bash completion")
}

func TestNeedsConfig(t *testing.T) {
	root := NewRootCmd()
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	version, _, err := root.Find([]string{"version"})
	require.NoError(t, err)

	assert.True(t, needsConfig(run))
	assert.False(t, needsConfig(version))
}

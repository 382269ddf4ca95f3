// Package testutil holds fixtures for the command tests: a sample olist
// project on disk and a renderer that captures its output.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/olist/internal/cli/output"
	fixtures "github.com/leapstack-labs/olist/internal/testutil"
)

// ProjectConfig is the olist.yaml written by SetupTestProject.
const ProjectConfig = `data_dir: data/csv
state_path: .olist/state.db
target:
  type: duckdb
`

// SetupTestProject lays out a project in a temp dir: olist.yaml at the
// root and the sample CSV files under data/csv. It returns the root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	data := filepath.Join(root, "data", "csv")
	require.NoError(t, os.MkdirAll(data, 0o755))
	fixtures.WriteSampleCSV(t, data)
	require.NoError(t, os.WriteFile(filepath.Join(root, "olist.yaml"), []byte(ProjectConfig), 0o600))
	return root
}

// TestRenderer is a Renderer writing into buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer returns a renderer in mode that believes stdout is a
// terminal when isTTY is set.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	tr := &TestRenderer{Out: new(bytes.Buffer), ErrOut: new(bytes.Buffer)}
	tr.Renderer = output.NewRendererWithTTY(tr.Out, tr.ErrOut, isTTY, mode)
	return tr
}

// NewTestRendererAuto returns an auto-mode renderer on a pipe, which
// renders Markdown.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

func (tr *TestRenderer) Output() string      { return tr.Out.String() }
func (tr *TestRenderer) ErrorOutput() string { return tr.ErrOut.String() }

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails the test if s carries terminal escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if loc := ansiEscape.FindStringIndex(s); loc != nil {
		t.Errorf("unexpected ANSI escape %q at offset %d in %q", s[loc[0]:loc[1]], loc[0], s)
	}
}

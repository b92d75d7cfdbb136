package diagnostics_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fschiettecatte/mpscore/diagnostics"
	"github.com/fschiettecatte/mpscore/dict"
	"github.com/stretchr/testify/require"
)

func buildDict(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diag.dict")
	w, err := dict.Create(path, dict.KeyMaximumLength)
	require.NoError(t, err)
	require.NoError(t, w.Add([]byte("alpha"), []byte("a")))
	require.NoError(t, w.Add([]byte("beta"), []byte("bb")))
	require.NoError(t, w.Add([]byte("gamma"), []byte("ccc")))
	require.NoError(t, w.Close())
	return path
}

func TestDumpDictionarySummary(t *testing.T) {
	path := buildDict(t)
	r, err := dict.Open(path, dict.OpenOptions{})
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	require.NoError(t, diagnostics.DumpDictionarySummary(&buf, r))
	require.Contains(t, buf.String(), "entry count")
}

func TestScanSummary(t *testing.T) {
	path := buildDict(t)
	r, err := dict.Open(path, dict.OpenOptions{})
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	require.NoError(t, diagnostics.ScanSummary(&buf, r, dict.MinKey, 2))
	require.Contains(t, buf.String(), "alpha")
	require.Contains(t, buf.String(), "beta")
	require.NotContains(t, buf.String(), "gamma")
}

func TestPlotLatencies(t *testing.T) {
	out := diagnostics.PlotLatencies([]float64{1, 2, 3, 2, 1}, "latency")
	require.NotEmpty(t, out)
}

package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-odds/analysis"
	"github.com/lox/holdem-odds/poker"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	hero, err := poker.ParseHand("AsAh")
	require.NoError(t, err)

	r := analysis.EquityResult{
		WinPct: 81.9, TiePct: 0.4, LossPct: 17.7,
		Trials: 50000, Requested: 50000, Combos: 1,
		Elapsed: 1500 * time.Millisecond,
	}
	r.HandTypes[poker.Pair] = 40
	r.HandTypes[poker.TwoPair] = 60
	return New(hero, "K♠ K♥", poker.MustParseCards("2c7d"), 42, r)
}

func TestNew(t *testing.T) {
	t.Parallel()

	rep := sampleReport(t)
	assert.Equal(t, "A♠ A♥", rep.Hero)
	assert.Equal(t, []string{"2c", "7d"}, rep.Board)
	assert.Equal(t, int64(42), rep.Seed)
	assert.Equal(t, int64(1500), rep.ElapsedMS)
	assert.InDelta(t, 82.1, rep.Equity, 1e-9)
	assert.Less(t, rep.CILower, rep.Equity)
	assert.Greater(t, rep.CIUpper, rep.Equity)
	assert.Equal(t, map[string]float64{"Pair": 40, "Two Pair": 60}, rep.HandTypes)
}

func TestWriteAndRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "result.json")
	rep := sampleReport(t)
	require.NoError(t, Write(path, rep))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rep, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// Overwrites leave no temp files behind.
	rep.Trials = 1
	require.NoError(t, Write(path, rep))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteToMissingDirectory(t *testing.T) {
	t.Parallel()

	err := Write(filepath.Join(t.TempDir(), "missing", "result.json"), sampleReport(t))
	assert.Error(t, err)
}

func TestReadRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := Read(path)
	assert.Error(t, err)
}

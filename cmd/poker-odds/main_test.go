package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-odds/analysis"
	"github.com/lox/holdem-odds/internal/config"
	"github.com/lox/holdem-odds/internal/report"
	"github.com/lox/holdem-odds/poker"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestParseHands(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected int
		hasError bool
	}{
		{"Single hand", []string{"AcKh"}, 1, false},
		{"Two hands", []string{"AcKh", "KdQs"}, 2, false},
		{"Hand with spaces", []string{"Ac Kh"}, 1, false},
		{"Glyph suits", []string{"A♠K♥"}, 1, false},
		{"No hands", nil, 0, true},
		{"Three hands", []string{"AcKh", "KdQs", "2c2d"}, 0, true},
		{"Invalid hand - too many cards", []string{"AcKhQd"}, 0, true},
		{"Invalid hand - too few cards", []string{"Ac"}, 0, true},
		{"Invalid card format", []string{"AcXy"}, 0, true},
		{"Same card twice", []string{"AcAc"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseHands(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, hands, tt.expected)
		})
	}
}

func TestParseQuery(t *testing.T) {
	t.Run("two hands", func(t *testing.T) {
		q, err := parseQuery(CLI{Hands: []string{"AsAh", "KdKc"}, Board: "Td7s8h"})
		require.NoError(t, err)
		require.NotNil(t, q.villain)
		assert.Nil(t, q.grid)
		assert.Equal(t, "KK", q.villain.Code())
		assert.Len(t, q.board, 3)
	})

	t.Run("range", func(t *testing.T) {
		q, err := parseQuery(CLI{Hands: []string{"AsAh"}, Range: "QQ+,AKs"})
		require.NoError(t, err)
		require.NotNil(t, q.grid)
		assert.Nil(t, q.villain)
		assert.Equal(t, 4, q.grid.Size())
	})

	t.Run("random", func(t *testing.T) {
		q, err := parseQuery(CLI{Hands: []string{"7h2c"}})
		require.NoError(t, err)
		assert.Nil(t, q.villain)
		assert.Nil(t, q.grid)
	})

	t.Run("hand and range", func(t *testing.T) {
		_, err := parseQuery(CLI{Hands: []string{"AsAh", "KdKc"}, Range: "QQ"})
		assert.Error(t, err)
	})

	t.Run("bad range", func(t *testing.T) {
		_, err := parseQuery(CLI{Hands: []string{"AsAh"}, Range: "ZZ"})
		assert.ErrorIs(t, err, analysis.ErrUnknownRangeCode)
	})

	t.Run("bad board", func(t *testing.T) {
		_, err := parseQuery(CLI{Hands: []string{"AsAh"}, Board: "Td7"})
		assert.ErrorIs(t, err, poker.ErrInvalidCardSpec)
	})
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, CLI{Trials: 500, Batch: 50, Workers: 2, Seed: 9, Debug: true})

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500, cfg.Simulation.Trials)
	assert.Equal(t, 50, cfg.Simulation.BatchSize)
	assert.Equal(t, 2, cfg.Simulation.Workers)
	assert.Equal(t, int64(9), cfg.Simulation.Seed)

	untouched := config.Default()
	applyFlags(untouched, CLI{})
	assert.Equal(t, config.Default(), untouched)
}

func TestRun(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.hcl")

	tests := []struct {
		name     string
		cli      CLI
		contains []string
	}{
		{
			name:     "hand versus hand",
			cli:      CLI{Hands: []string{"AsAh", "KdKc"}, Trials: 2000, Seed: 1},
			contains: []string{"A♠ A♥", "K♦ K♣", "2000 trials"},
		},
		{
			name:     "hand versus range with board",
			cli:      CLI{Hands: []string{"AsAh"}, Range: "KK,QQ", Board: "2c7d9h", Trials: 200, Seed: 1},
			contains: []string{"board", "2♣ 7♦ 9♥", "range (12 combos)", "2400 trials"},
		},
		{
			name:     "hand versus random with possibilities",
			cli:      CLI{Hands: []string{"7h2c"}, Trials: 1000, Seed: 1, Possibilities: true},
			contains: []string{"random", "Straight Flush", "High Card", "equity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cli.Config = missing
			var out bytes.Buffer
			require.NoError(t, run(context.Background(), tt.cli, discardLogger(), &out))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestDisplayMadeHands(t *testing.T) {
	hero := poker.MustParseCards("AsAh")
	villain := poker.MustParseCards("KdKc")
	q := query{
		hero:    poker.Hand{hero[0], hero[1]},
		villain: &poker.Hand{villain[0], villain[1]},
		board:   poker.MustParseCards("Kh7d2s"),
	}

	var out bytes.Buffer
	displayMadeHands(&out, q)
	assert.Contains(t, out.String(), "Pair of Aces")
	assert.Contains(t, out.String(), "Three of a Kind, Kings")

	out.Reset()
	q.board = q.board[:2]
	displayMadeHands(&out, q)
	assert.Empty(t, out.String())
}

func TestRunRejectsDuplicateCards(t *testing.T) {
	cli := CLI{
		Hands:  []string{"AsAh", "AsKc"},
		Trials: 100,
		Config: filepath.Join(t.TempDir(), "missing.hcl"),
	}
	err := run(context.Background(), cli, discardLogger(), io.Discard)
	assert.ErrorIs(t, err, poker.ErrCardAlreadyDealt)

	cli.Hands = []string{"AsAh"}
	cli.Board = "AsKdQh"
	err = run(context.Background(), cli, discardLogger(), io.Discard)
	assert.ErrorIs(t, err, poker.ErrCardAlreadyDealt)
}

func TestRunUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poker-odds.hcl")
	require.NoError(t, os.WriteFile(path, []byte("simulation {\n  trials = 321\n  seed = 5\n}\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), CLI{Hands: []string{"QsQh", "JdJc"}, Config: path}, discardLogger(), &out))
	assert.Contains(t, out.String(), "321 trials")
}

func TestRunWritesReport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.json")
	cli := CLI{
		Hands:  []string{"AsAh"},
		Range:  "KK",
		Trials: 300,
		Seed:   77,
		Config: filepath.Join(dir, "missing.hcl"),
		Output: out,
	}
	require.NoError(t, run(context.Background(), cli, discardLogger(), io.Discard))

	rep, err := report.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "A♠ A♥", rep.Hero)
	assert.Equal(t, "range (6 combos)", rep.Villain)
	assert.Equal(t, int64(77), rep.Seed)
	assert.Equal(t, 6, rep.Combos)
	assert.Equal(t, 1800, rep.Trials)
	assert.InDelta(t, 100, rep.WinPct+rep.TiePct+rep.LossPct, 0.01)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.update(analysis.Progress{Completed: 50, Total: 100})
	p.update(analysis.Progress{Completed: 50, Total: 100})
	p.update(analysis.Progress{Completed: 100, Total: 100})

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\r")))
	assert.Contains(t, buf.String(), " 50% 50/100")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

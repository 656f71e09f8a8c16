package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-odds/poker"
)

func TestParseRangeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    RangeCode
		wantErr bool
	}{
		{"AA", RangeCode{High: poker.Ace, Low: poker.Ace, Kind: PocketPair}, false},
		{"22", RangeCode{High: poker.Two, Low: poker.Two, Kind: PocketPair}, false},
		{"AKs", RangeCode{High: poker.Ace, Low: poker.King, Kind: Suited}, false},
		{"KAs", RangeCode{High: poker.Ace, Low: poker.King, Kind: Suited}, false},
		{"76o", RangeCode{High: poker.Seven, Low: poker.Six, Kind: Offsuit}, false},
		{"t9S", RangeCode{High: poker.Ten, Low: poker.Nine, Kind: Suited}, false},
		{"AK", RangeCode{}, true},
		{"AAs", RangeCode{}, true},
		{"AKx", RangeCode{}, true},
		{"A1s", RangeCode{}, true},
		{"A", RangeCode{}, true},
		{"AKso", RangeCode{}, true},
		{"", RangeCode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRangeCode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRangeCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     string
		excluded string
		want     int
	}{
		{"AA", "", 6},
		{"AKs", "", 4},
		{"AKo", "", 12},
		{"AA", "As", 3},
		{"AA", "AsAh", 1},
		{"AKs", "As", 3},
		{"AKo", "As", 9},
		{"AKo", "AsKh", 7},
		{"QQ", "AsKh2c", 6},
		{"72o", "7s7h7d7c", 0},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.excluded, func(t *testing.T) {
			t.Parallel()
			excluded := poker.NewCardSet(poker.MustParseCards(tt.excluded)...)
			combos, err := Expand(MustParseRangeCode(tt.code), excluded)
			require.NoError(t, err)
			assert.Len(t, combos, tt.want)

			seen := make(map[poker.Hand]bool)
			for _, h := range combos {
				assert.False(t, h.Set().Overlaps(excluded), "combo %s uses an excluded card", h)
				assert.Equal(t, tt.code, h.Code())
				assert.False(t, seen[h])
				seen[h] = true
			}
		})
	}

	_, err := Expand(RangeCode{High: poker.King, Low: poker.Ace, Kind: Suited}, 0)
	assert.ErrorIs(t, err, ErrUnknownRangeCode)
}

func TestGridMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "AA"},
		{0, 1, "AKs"},
		{1, 0, "AKo"},
		{12, 12, "22"},
		{0, 12, "A2s"},
		{12, 0, "A2o"},
		{5, 6, "98s"},
		{6, 5, "98o"},
	}

	for _, tt := range tests {
		rc, err := GridCode(tt.row, tt.col)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rc.String())

		row, col := rc.Cell()
		assert.Equal(t, tt.row, row)
		assert.Equal(t, tt.col, col)
	}

	_, err := GridCode(13, 0)
	assert.ErrorIs(t, err, ErrUnknownRangeCode)
	_, err = GridCode(0, -1)
	assert.ErrorIs(t, err, ErrUnknownRangeCode)
}

func TestGridCoversEveryStartingHand(t *testing.T) {
	t.Parallel()

	var g RangeGrid
	for row := range GridSize {
		for col := range GridSize {
			g[row][col] = true
		}
	}
	assert.Equal(t, 169, g.Size())
	assert.Len(t, g.Codes(), 169)
	assert.Len(t, g.Combos(0), 1326)
}

func TestRangeGridOperations(t *testing.T) {
	t.Parallel()

	var g RangeGrid
	aks := MustParseRangeCode("AKs")
	g.Add(aks)
	g.Add(MustParseRangeCode("QQ"))
	assert.True(t, g.Contains(aks))
	assert.False(t, g.Contains(MustParseRangeCode("AKo")))
	assert.Equal(t, []RangeCode{aks, MustParseRangeCode("QQ")}, g.Codes())

	dead := poker.NewCardSet(poker.MustParseCards("QsQh")...)
	assert.Len(t, g.Combos(dead), 4+1)

	var other RangeGrid
	other.Add(MustParseRangeCode("72o"))
	g.Merge(other)
	assert.Equal(t, 3, g.Size())

	g.Remove(aks)
	assert.False(t, g.Contains(aks))
	assert.Equal(t, 2, g.Size())

	assert.Contains(t, g.String(), "QQ")
	assert.Contains(t, g.String(), "72o")
}

func TestRangeGridIgnoresInvalidCodes(t *testing.T) {
	t.Parallel()

	invalid := []RangeCode{
		{},
		{High: poker.Ace, Low: 1, Kind: Suited},
		{High: poker.King, Low: poker.Ace, Kind: Offsuit},
		{High: poker.Queen, Low: poker.Jack, Kind: PocketPair},
	}

	g := TopPercent(100)
	for _, rc := range invalid {
		assert.NotPanics(t, func() {
			g.Add(rc)
			g.Remove(rc)
		}, "code %+v", rc)
		assert.False(t, g.Contains(rc), "code %+v", rc)
	}
	assert.Equal(t, GridSize*GridSize, g.Size())

	var empty RangeGrid
	empty.Add(RangeCode{})
	assert.Zero(t, empty.Size())
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		notation  string
		wantCells int
		wantSize  int
		wantErr   bool
	}{
		{name: "pocket aces", notation: "AA", wantCells: 1, wantSize: 6},
		{name: "ace king suited", notation: "AKs", wantCells: 1, wantSize: 4},
		{name: "ace king offsuit", notation: "AKo", wantCells: 1, wantSize: 12},
		{name: "ace king any", notation: "AK", wantCells: 2, wantSize: 16},
		{name: "multiple hands", notation: "AA, KK ,AKs", wantCells: 3, wantSize: 16},
		{name: "pocket pairs range", notation: "TT+", wantCells: 5, wantSize: 30},
		{name: "suited range plus", notation: "ATs+", wantCells: 4, wantSize: 16},
		{name: "offsuit range plus", notation: "KJo+", wantCells: 2, wantSize: 24},
		{name: "any range plus", notation: "QT+", wantCells: 4, wantSize: 32},
		{name: "dash range pairs", notation: "22-55", wantCells: 4, wantSize: 24},
		{name: "reversed dash range", notation: "55-22", wantCells: 4, wantSize: 24},
		{name: "dash range suited", notation: "A5s-A2s", wantCells: 4, wantSize: 16},
		{name: "uppercase suited plus", notation: "ATS+", wantCells: 4, wantSize: 16},
		{name: "uppercase dash range", notation: "A5S-A2S", wantCells: 4, wantSize: 16},
		{name: "uppercase offsuit plus", notation: "KJO+", wantCells: 2, wantSize: 24},
		{name: "empty", notation: "", wantCells: 0, wantSize: 0},
		{name: "everything", notation: "100%", wantCells: 169, wantSize: 1326},
		{name: "unknown rank", notation: "ZZ", wantErr: true},
		{name: "bad modifier", notation: "AKx", wantErr: true},
		{name: "bad dash range", notation: "AKs-QJs", wantErr: true},
		{name: "pair plus with modifier", notation: "TTs+", wantErr: true},
		{name: "pair dash range with modifier", notation: "22o-55", wantErr: true},
		{name: "bad percentage", notation: "top x%", wantErr: true},
		{name: "percentage over 100", notation: "150%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := ParseRange(tt.notation)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRangeCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCells, g.Size())
			assert.Len(t, g.Combos(0), tt.wantSize)
		})
	}
}

func TestTopPercent(t *testing.T) {
	t.Parallel()

	assert.Zero(t, TopPercent(0).Size())

	top := TopPercent(1)
	assert.True(t, top.Contains(MustParseRangeCode("AA")))
	assert.False(t, top.Contains(MustParseRangeCode("72o")))

	// Covering at least the requested share of combinations.
	for _, pct := range []float64{5, 10, 25, 50} {
		g := TopPercent(pct)
		combos := len(g.Combos(0))
		assert.GreaterOrEqual(t, float64(combos), pct/100*1326)
		assert.Less(t, float64(combos), pct/100*1326+12)
	}

	wide, narrow := TopPercent(30), TopPercent(10)
	for _, rc := range narrow.Codes() {
		assert.True(t, wide.Contains(rc), "%s in top 10%% but not top 30%%", rc)
	}

	g, err := ParseRange("top 10%")
	require.NoError(t, err)
	assert.Equal(t, narrow, g)
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	aa := Percentile(MustParseRangeCode("AA"))
	aks := Percentile(MustParseRangeCode("AKs"))
	trash := Percentile(MustParseRangeCode("72o"))
	assert.Greater(t, aa, aks)
	assert.Greater(t, aks, trash)

	h, err := poker.ParseHand("KdAd")
	require.NoError(t, err)
	assert.Equal(t, aks, HandPercentile(h))
}

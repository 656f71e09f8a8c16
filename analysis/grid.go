package analysis

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-odds/poker"
)

// GridSize is the number of rows and columns in the starting-hand grid.
const GridSize = poker.NumRanks

// RangeGrid is the 13x13 starting-hand selection grid. Row and column 0 is
// the Ace and 12 the Two. The diagonal holds pocket pairs, cells above it
// (row < col) the suited hands and cells below it the offsuit hands.
type RangeGrid [GridSize][GridSize]bool

// gridCodes is the fixed cell-to-code table shared by every grid.
var gridCodes = func() [GridSize][GridSize]RangeCode {
	var table [GridSize][GridSize]RangeCode
	for row := range GridSize {
		for col := range GridSize {
			r1, r2 := indexRank(row), indexRank(col)
			switch {
			case row == col:
				table[row][col] = RangeCode{High: r1, Low: r2, Kind: PocketPair}
			case row < col:
				table[row][col] = RangeCode{High: r1, Low: r2, Kind: Suited}
			default:
				table[row][col] = RangeCode{High: r2, Low: r1, Kind: Offsuit}
			}
		}
	}
	return table
}()

func indexRank(i int) poker.Rank {
	return poker.Ace - poker.Rank(i)
}

func rankIndex(r poker.Rank) int {
	return int(poker.Ace - r)
}

// GridCode returns the code shown in a grid cell.
func GridCode(row, col int) (RangeCode, error) {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return RangeCode{}, fmt.Errorf("%w: cell (%d,%d) outside the grid", ErrUnknownRangeCode, row, col)
	}
	return gridCodes[row][col], nil
}

// Cell returns the grid coordinates of the code. The coordinates are only
// meaningful for a valid code.
func (rc RangeCode) Cell() (row, col int) {
	hi, lo := rankIndex(rc.High), rankIndex(rc.Low)
	if rc.Kind == Offsuit {
		return lo, hi
	}
	return hi, lo
}

// Add selects the cell for a code. Invalid codes are ignored.
func (g *RangeGrid) Add(rc RangeCode) {
	if !rc.Valid() {
		return
	}
	row, col := rc.Cell()
	g[row][col] = true
}

// Remove deselects the cell for a code. Invalid codes are ignored.
func (g *RangeGrid) Remove(rc RangeCode) {
	if !rc.Valid() {
		return
	}
	row, col := rc.Cell()
	g[row][col] = false
}

// Merge selects every cell selected in other.
func (g *RangeGrid) Merge(other RangeGrid) {
	for row := range GridSize {
		for col := range GridSize {
			g[row][col] = g[row][col] || other[row][col]
		}
	}
}

// Contains reports whether the code's cell is selected
func (g RangeGrid) Contains(rc RangeCode) bool {
	if !rc.Valid() {
		return false
	}
	row, col := rc.Cell()
	return g[row][col]
}

// Codes returns the selected codes in row-major order.
func (g RangeGrid) Codes() []RangeCode {
	var codes []RangeCode
	for row := range GridSize {
		for col := range GridSize {
			if g[row][col] {
				codes = append(codes, gridCodes[row][col])
			}
		}
	}
	return codes
}

// Size returns the number of selected cells.
func (g RangeGrid) Size() int {
	n := 0
	for row := range GridSize {
		for col := range GridSize {
			if g[row][col] {
				n++
			}
		}
	}
	return n
}

// Combos expands every selected cell, dropping combinations that use an
// excluded card.
func (g RangeGrid) Combos(excluded poker.CardSet) []poker.Hand {
	var combos []poker.Hand
	for _, rc := range g.Codes() {
		// Grid codes are valid by construction.
		expanded, _ := Expand(rc, excluded)
		combos = append(combos, expanded...)
	}
	return combos
}

// String renders the grid with selected codes and dots for empty cells.
func (g RangeGrid) String() string {
	var sb strings.Builder
	for row := range GridSize {
		for col := range GridSize {
			cell := "."
			if g[row][col] {
				cell = gridCodes[row][col].String()
			}
			fmt.Fprintf(&sb, "%-4s", cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

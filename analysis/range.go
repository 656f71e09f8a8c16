// Package analysis provides poker analysis tools: range expansion, the 13x13
// starting-hand grid and Monte Carlo equity simulation.
package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem-odds/poker"
)

var (
	// ErrUnknownRangeCode reports a shorthand hand code that cannot be parsed.
	ErrUnknownRangeCode = errors.New("unknown range code")

	// ErrEmptyRange reports a range with no combination left after removing dead cards.
	ErrEmptyRange = errors.New("range has no available combinations")
)

// Kind distinguishes pocket pairs, suited and offsuit codes.
type Kind uint8

const (
	PocketPair Kind = iota
	Suited
	Offsuit
)

// RangeCode is a shorthand starting hand such as "QQ", "AKs" or "76o".
type RangeCode struct {
	High poker.Rank
	Low  poker.Rank
	Kind Kind
}

// String returns the shorthand notation
func (rc RangeCode) String() string {
	s := rc.High.String() + rc.Low.String()
	switch rc.Kind {
	case Suited:
		s += "s"
	case Offsuit:
		s += "o"
	}
	return s
}

// Valid reports whether the code is internally consistent.
func (rc RangeCode) Valid() bool {
	if !rc.High.Valid() || !rc.Low.Valid() {
		return false
	}
	if rc.Kind == PocketPair {
		return rc.High == rc.Low
	}
	return rc.High > rc.Low && (rc.Kind == Suited || rc.Kind == Offsuit)
}

// TotalCombos returns the number of combinations with no dead cards: 6, 4 or 12.
func (rc RangeCode) TotalCombos() int {
	switch rc.Kind {
	case PocketPair:
		return 6
	case Suited:
		return 4
	default:
		return 12
	}
}

// ParseRangeCode parses a single code: two rank characters plus an "s" or
// "o" marker for unpaired hands. Ranks may be given in either order.
func ParseRangeCode(s string) (RangeCode, error) {
	if len(s) < 2 || len(s) > 3 {
		return RangeCode{}, fmt.Errorf("%w: %q", ErrUnknownRangeCode, s)
	}
	r1, err1 := poker.ParseRank(s[0])
	r2, err2 := poker.ParseRank(s[1])
	if err1 != nil || err2 != nil {
		return RangeCode{}, fmt.Errorf("%w: invalid rank in %q", ErrUnknownRangeCode, s)
	}
	if r2 > r1 {
		r1, r2 = r2, r1
	}

	if r1 == r2 {
		if len(s) == 3 {
			return RangeCode{}, fmt.Errorf("%w: pocket pairs cannot have suited/offsuit modifier: %q", ErrUnknownRangeCode, s)
		}
		return RangeCode{High: r1, Low: r2, Kind: PocketPair}, nil
	}

	if len(s) == 2 {
		return RangeCode{}, fmt.Errorf("%w: %q needs an s or o modifier", ErrUnknownRangeCode, s)
	}
	switch s[2] {
	case 's', 'S':
		return RangeCode{High: r1, Low: r2, Kind: Suited}, nil
	case 'o', 'O':
		return RangeCode{High: r1, Low: r2, Kind: Offsuit}, nil
	default:
		return RangeCode{}, fmt.Errorf("%w: invalid modifier %q", ErrUnknownRangeCode, s[2])
	}
}

// MustParseRangeCode parses a code and panics on error (for tests)
func MustParseRangeCode(s string) RangeCode {
	rc, err := ParseRangeCode(s)
	if err != nil {
		panic(err)
	}
	return rc
}

// Expand returns every concrete two-card combination the code denotes,
// dropping combinations that use any excluded card. It does not touch deck
// state.
func Expand(code RangeCode, excluded poker.CardSet) ([]poker.Hand, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownRangeCode, code)
	}
	combos := make([]poker.Hand, 0, code.TotalCombos())
	add := func(c1, c2 poker.Card) {
		if excluded.Contains(c1) || excluded.Contains(c2) {
			return
		}
		combos = append(combos, poker.Hand{c1, c2})
	}

	switch code.Kind {
	case PocketPair:
		for s1 := poker.Spades; s1 <= poker.Clubs; s1++ {
			for s2 := s1 + 1; s2 <= poker.Clubs; s2++ {
				add(poker.MustCard(code.High, s1), poker.MustCard(code.High, s2))
			}
		}
	case Suited:
		for s := poker.Spades; s <= poker.Clubs; s++ {
			add(poker.MustCard(code.High, s), poker.MustCard(code.Low, s))
		}
	case Offsuit:
		for s1 := poker.Spades; s1 <= poker.Clubs; s1++ {
			for s2 := poker.Spades; s2 <= poker.Clubs; s2++ {
				if s1 != s2 {
					add(poker.MustCard(code.High, s1), poker.MustCard(code.Low, s2))
				}
			}
		}
	}
	return combos, nil
}

// ParseRange builds a grid from standard range notation.
// Examples: "AA,KK", "AKs,AKo", "AK", "TT+", "A5s-A2s", "KTs+", "22-66", "top 15%".
func ParseRange(notation string) (RangeGrid, error) {
	var g RangeGrid

	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := g.addRangePart(part); err != nil {
			return RangeGrid{}, fmt.Errorf("invalid range part %q: %w", part, err)
		}
	}

	return g, nil
}

// addRangePart adds a single range notation part to the grid.
func (g *RangeGrid) addRangePart(part string) error {
	switch {
	case strings.HasSuffix(part, "%"):
		return g.addPercentRange(part)
	case strings.HasSuffix(part, "+"):
		return g.addPlusRange(strings.TrimSuffix(part, "+"))
	case strings.Contains(part, "-"):
		return g.addDashRange(part)
	}
	return g.addSingleHand(part)
}

// addSingleHand adds a code; an unpaired code without a modifier adds both
// the suited and offsuit cells.
func (g *RangeGrid) addSingleHand(notation string) error {
	if len(notation) == 2 && notation[0] != notation[1] {
		for _, suffix := range []string{"s", "o"} {
			if err := g.addSingleHand(notation + suffix); err != nil {
				return err
			}
		}
		return nil
	}
	rc, err := ParseRangeCode(notation)
	if err != nil {
		return err
	}
	g.Add(rc)
	return nil
}

// kinds returns the kinds selected by an optional modifier on an unpaired base.
func kinds(base string) ([]Kind, error) {
	if len(base) == 2 {
		return []Kind{Suited, Offsuit}, nil
	}
	switch base[2] {
	case 's', 'S':
		return []Kind{Suited}, nil
	case 'o', 'O':
		return []Kind{Offsuit}, nil
	}
	return nil, fmt.Errorf("%w: invalid modifier %q", ErrUnknownRangeCode, base[2])
}

// addPlusRange handles notations like "TT+" (all pairs TT and higher) and
// "ATs+" (the kicker climbs to one below the top card).
func (g *RangeGrid) addPlusRange(base string) error {
	if len(base) < 2 || len(base) > 3 {
		return fmt.Errorf("%w: invalid base notation %q", ErrUnknownRangeCode, base)
	}
	high, err1 := poker.ParseRank(base[0])
	low, err2 := poker.ParseRank(base[1])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("%w: invalid rank in %q", ErrUnknownRangeCode, base)
	}

	if high == low {
		if len(base) == 3 {
			return fmt.Errorf("%w: pocket pairs cannot have suited/offsuit modifier: %q", ErrUnknownRangeCode, base)
		}
		for r := high; r <= poker.Ace; r++ {
			g.Add(RangeCode{High: r, Low: r, Kind: PocketPair})
		}
		return nil
	}
	if low > high {
		high, low = low, high
	}

	ks, err := kinds(base)
	if err != nil {
		return err
	}
	for r := low; r < high; r++ {
		for _, k := range ks {
			g.Add(RangeCode{High: high, Low: r, Kind: k})
		}
	}
	return nil
}

// addDashRange handles notations like "22-66" or "A5s-A2s"
func (g *RangeGrid) addDashRange(notation string) error {
	start, end, ok := strings.Cut(notation, "-")
	if !ok || strings.Contains(end, "-") {
		return fmt.Errorf("%w: invalid dash range format", ErrUnknownRangeCode)
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if len(start) < 2 || len(end) < 2 {
		return fmt.Errorf("%w: invalid notation in range", ErrUnknownRangeCode)
	}

	var ranks [4]poker.Rank
	for i, c := range []byte{start[0], start[1], end[0], end[1]} {
		r, err := poker.ParseRank(c)
		if err != nil {
			return fmt.Errorf("%w: invalid ranks in range", ErrUnknownRangeCode)
		}
		ranks[i] = r
	}

	// Pocket pair ranges like "22-66"
	if ranks[0] == ranks[1] && ranks[2] == ranks[3] {
		if len(start) > 2 || len(end) > 2 {
			return fmt.Errorf("%w: pocket pairs cannot have suited/offsuit modifier: %q", ErrUnknownRangeCode, notation)
		}
		lower, upper := min(ranks[0], ranks[2]), max(ranks[0], ranks[2])
		for r := lower; r <= upper; r++ {
			g.Add(RangeCode{High: r, Low: r, Kind: PocketPair})
		}
		return nil
	}

	// Same high card, different kickers
	if ranks[0] == ranks[2] && ranks[1] != ranks[0] && ranks[3] != ranks[0] {
		ks, err := kinds(start)
		if err != nil {
			return err
		}
		lower, upper := min(ranks[1], ranks[3]), max(ranks[1], ranks[3])
		if upper > ranks[0] {
			return fmt.Errorf("%w: kicker above top card in %q", ErrUnknownRangeCode, notation)
		}
		for r := lower; r <= upper; r++ {
			for _, k := range ks {
				g.Add(RangeCode{High: ranks[0], Low: r, Kind: k})
			}
		}
		return nil
	}

	return fmt.Errorf("%w: unsupported range format: %s", ErrUnknownRangeCode, notation)
}

// addPercentRange handles "15%" and "top 15%".
func (g *RangeGrid) addPercentRange(part string) error {
	s := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(part), "top"))
	pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil || pct < 0 || pct > 100 {
		return fmt.Errorf("%w: invalid percentage %q", ErrUnknownRangeCode, part)
	}
	top := TopPercent(pct)
	g.Merge(top)
	return nil
}

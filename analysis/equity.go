package analysis

import (
	"math"
	"time"

	"github.com/lox/holdem-odds/poker"
)

// EquityResult represents the result of an equity calculation. Percentages
// are rounded to two decimals and WinPct+LossPct+TiePct equals 100.
type EquityResult struct {
	WinPct  float64
	LossPct float64
	TiePct  float64

	// Trials is the number of trials completed, summed over all combos.
	Trials int
	// Requested is the number of trials asked for, summed over all combos.
	Requested int
	// Combos is the number of opponent hands simulated (1 for a fixed hand).
	Combos int
	// Partial is set when the caller cancelled before every trial ran.
	Partial bool
	Elapsed time.Duration

	// HandTypes holds the hero's final made-hand distribution in percent,
	// indexed by poker.Category.
	HandTypes [poker.NumCategories]float64
}

// Equity returns the overall equity in percent: wins count fully, ties half.
func (e EquityResult) Equity() float64 {
	return e.WinPct + e.TiePct/2
}

// ConfidenceInterval returns the 95% confidence interval for equity, in percent.
func (e EquityResult) ConfidenceInterval() (lower, upper float64) {
	n := float64(e.Trials)
	if n == 0 {
		return 0, 0
	}
	equity := e.Equity() / 100

	// Standard error for binomial proportion
	se := math.Sqrt((equity * (1.0 - equity)) / n)
	margin := 1.96 * se

	lower = math.Max(0.0, equity-margin) * 100
	upper = math.Min(1.0, equity+margin) * 100
	return lower, upper
}

// tally holds raw trial counters. Tallies are summed across batches in any
// order.
type tally struct {
	wins, losses, ties int
	handTypes          [poker.NumCategories]int
}

func (t *tally) record(hero, villain poker.HandStrength) {
	switch hero.Compare(villain) {
	case 1:
		t.wins++
	case -1:
		t.losses++
	default:
		t.ties++
	}
	t.handTypes[hero.Category()]++
}

func (t *tally) add(o tally) {
	t.wins += o.wins
	t.losses += o.losses
	t.ties += o.ties
	for i, n := range o.handTypes {
		t.handTypes[i] += n
	}
}

func (t tally) total() int {
	return t.wins + t.losses + t.ties
}

// shares returns unrounded win, loss and tie percentages and the hand type
// distribution.
func (t tally) shares() (s shares) {
	n := float64(t.total())
	if n == 0 {
		return s
	}
	s.win = float64(t.wins) / n * 100
	s.loss = float64(t.losses) / n * 100
	s.tie = float64(t.ties) / n * 100
	for i, c := range t.handTypes {
		s.handTypes[i] = float64(c) / n * 100
	}
	return s
}

// shares are unrounded percentages that can be averaged across combos.
type shares struct {
	win, loss, tie float64
	handTypes      [poker.NumCategories]float64
}

func (s *shares) add(o shares) {
	s.win += o.win
	s.loss += o.loss
	s.tie += o.tie
	for i, v := range o.handTypes {
		s.handTypes[i] += v
	}
}

func (s shares) scale(f float64) shares {
	s.win *= f
	s.loss *= f
	s.tie *= f
	for i := range s.handTypes {
		s.handTypes[i] *= f
	}
	return s
}

// result rounds the shares into an EquityResult. Loss is derived from the
// rounded win and tie so the three always sum to 100.
func (s shares) result() EquityResult {
	win, tie := round2(s.win), round2(s.tie)
	r := EquityResult{
		WinPct:  win,
		TiePct:  tie,
		LossPct: round2(100 - win - tie),
	}
	for i, v := range s.handTypes {
		r.HandTypes[i] = round2(v)
	}
	return r
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

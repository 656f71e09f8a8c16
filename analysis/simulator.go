package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-odds/internal/randutil"
	"github.com/lox/holdem-odds/poker"
)

// DefaultBatchSize is the number of trials between progress reports and
// cancellation checks when Config.BatchSize is unset.
const DefaultBatchSize = 1000

// ErrInvalidTrials reports a non-positive trial count.
var ErrInvalidTrials = errors.New("trial count must be positive")

// Progress is reported after every completed batch.
type Progress struct {
	Completed int
	Total     int
	Result    EquityResult
}

// Config holds configuration for running equity simulations
type Config struct {
	// BatchSize is the reporting and cancellation cadence in trials.
	BatchSize int
	// Workers caps the number of batches run concurrently.
	Workers int
	// Seed makes runs reproducible. Zero picks a time-based seed.
	Seed     int64
	Logger   *log.Logger
	Clock    quartz.Clock
	Progress func(Progress)
}

// Simulator runs Monte Carlo equity simulations.
//
// Trials are split into batches. Each batch owns a private deck and a random
// stream derived from the seed and batch index, so a fixed seed reproduces the
// same outcome counts however batches are scheduled across workers.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.Workers <= 0 {
		config.Workers = min(runtime.NumCPU(), 8)
	}
	config.Seed = randutil.Seed(config.Seed)
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{config: config}
}

// Seed returns the seed in use, which is useful when it was picked from the clock.
func (s *Simulator) Seed() int64 {
	return s.config.Seed
}

// batchFunc runs trials on a private deck and returns the tally.
type batchFunc func(rng *rand.Rand, trials int) (tally, error)

// Simulate estimates equity of hero against a known villain hand by
// completing the board trials times.
func (s *Simulator) Simulate(ctx context.Context, hero, villain poker.Hand, board []poker.Card, trials int) (EquityResult, error) {
	if trials <= 0 {
		return EquityResult{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	if _, err := deadCards(board, hero, villain); err != nil {
		return EquityResult{}, err
	}

	start := s.config.Clock.Now()
	s.config.Logger.Debug("Simulating fixed hands", "hero", hero, "villain", villain,
		"board", poker.FormatCards(board), "trials", trials)

	t, err := s.run(ctx, trials, s.config.Seed, fixedHandBatch(hero, villain, board), func(t tally) {
		s.report(t.total(), trials, t.shares())
	})
	if err != nil {
		return EquityResult{}, err
	}

	r := s.finish(t.shares(), t.total(), trials, 1, start)
	s.config.Logger.Info("Simulation complete", "win", r.WinPct, "loss", r.LossPct, "tie", r.TiePct,
		"trials", r.Trials, "partial", r.Partial, "elapsed", r.Elapsed)
	return r, nil
}

// SimulateRandom estimates equity of hero against two random cards. The
// opponent hand is drawn from the deck along with the board on every trial.
func (s *Simulator) SimulateRandom(ctx context.Context, hero poker.Hand, board []poker.Card, trials int) (EquityResult, error) {
	if trials <= 0 {
		return EquityResult{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	if _, err := deadCards(board, hero); err != nil {
		return EquityResult{}, err
	}

	start := s.config.Clock.Now()
	s.config.Logger.Debug("Simulating against random hands", "hero", hero,
		"board", poker.FormatCards(board), "trials", trials)

	t, err := s.run(ctx, trials, s.config.Seed, randomOpponentBatch(hero, board), func(t tally) {
		s.report(t.total(), trials, t.shares())
	})
	if err != nil {
		return EquityResult{}, err
	}

	r := s.finish(t.shares(), t.total(), trials, 1, start)
	s.config.Logger.Info("Simulation complete", "win", r.WinPct, "loss", r.LossPct, "tie", r.TiePct,
		"trials", r.Trials, "partial", r.Partial, "elapsed", r.Elapsed)
	return r, nil
}

// SimulateRange estimates equity of hero against every combination in the
// selected grid cells that does not collide with hero or the board. Each
// combination is simulated with trials trials and the per-combination
// percentages are averaged with equal weight.
func (s *Simulator) SimulateRange(ctx context.Context, hero poker.Hand, grid RangeGrid, board []poker.Card, trials int) (EquityResult, error) {
	if trials <= 0 {
		return EquityResult{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	dead, err := deadCards(board, hero)
	if err != nil {
		return EquityResult{}, err
	}
	combos := grid.Combos(dead)
	if len(combos) == 0 {
		return EquityResult{}, fmt.Errorf("%w: %d cells selected", ErrEmptyRange, grid.Size())
	}

	start := s.config.Clock.Now()
	s.config.Logger.Debug("Simulating range", "hero", hero, "cells", grid.Size(),
		"combos", len(combos), "board", poker.FormatCards(board), "trials", trials)

	var (
		sum        shares
		considered int
		completed  int
		partial    bool
		total      = len(combos) * trials
	)
	for i, villain := range combos {
		if ctx.Err() != nil {
			partial = true
			break
		}

		report := func(t tally) {
			running := sum
			running.add(t.shares())
			s.report(completed+t.total(), total, running.scale(1/float64(considered+1)))
		}
		seed := randutil.Stream(s.config.Seed, i).Int64()
		t, err := s.run(ctx, trials, seed, fixedHandBatch(hero, villain, board), report)
		if err != nil {
			if ctx.Err() != nil && considered > 0 {
				partial = true
				break
			}
			return EquityResult{}, fmt.Errorf("combo %s: %w", villain, err)
		}

		sh := t.shares()
		sum.add(sh)
		considered++
		completed += t.total()
		s.config.Logger.Debug("Combo complete", "villain", villain, "win", round2(sh.win),
			"tie", round2(sh.tie), "trials", t.total())

		if t.total() < trials {
			partial = true
			break
		}
	}
	if considered == 0 {
		return EquityResult{}, ctx.Err()
	}

	r := s.finish(sum.scale(1/float64(considered)), completed, total, considered, start)
	r.Partial = partial
	s.config.Logger.Info("Range simulation complete", "win", r.WinPct, "loss", r.LossPct, "tie", r.TiePct,
		"combos", r.Combos, "trials", r.Trials, "partial", r.Partial, "elapsed", r.Elapsed)
	return r, nil
}

func (s *Simulator) finish(sh shares, completed, requested, combos int, start time.Time) EquityResult {
	r := sh.result()
	r.Trials = completed
	r.Requested = requested
	r.Combos = combos
	r.Partial = completed < requested
	r.Elapsed = s.config.Clock.Now().Sub(start)
	return r
}

func (s *Simulator) report(completed, total int, sh shares) {
	if s.config.Progress == nil {
		return
	}
	r := sh.result()
	r.Trials = completed
	r.Requested = total
	s.config.Progress(Progress{Completed: completed, Total: total, Result: r})
}

// run executes trials in batches on the worker pool and sums the tallies on
// the calling goroutine, invoking report after each batch. Cancellation is
// checked between batches; batches already running finish. A cancelled run
// returns whatever completed, or the context error if nothing did.
func (s *Simulator) run(ctx context.Context, trials int, seed int64, batch batchFunc, report func(tally)) (tally, error) {
	size := s.config.BatchSize
	batches := (trials + size - 1) / size

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	results := make(chan tally, s.config.Workers)
	done := make(chan error, 1)

	go func() {
		for b := range batches {
			if gctx.Err() != nil {
				break
			}
			n := min(size, trials-b*size)
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				t, err := batch(randutil.Stream(seed, b), n)
				if err != nil {
					return fmt.Errorf("batch %d: %w", b, err)
				}
				results <- t
				return nil
			})
		}
		done <- g.Wait()
		close(results)
	}()

	var total tally
	for t := range results {
		total.add(t)
		if report != nil {
			report(total)
		}
	}
	if err := <-done; err != nil {
		return tally{}, err
	}
	if total.total() == 0 {
		if err := ctx.Err(); err != nil {
			return tally{}, err
		}
	}
	return total, nil
}

// fixedHandBatch completes the board against two known hands. Every trial
// deals the missing board cards and undeals them in reverse order, so the
// deck is back to hero+villain+board before the next trial.
func fixedHandBatch(hero, villain poker.Hand, board []poker.Card) batchFunc {
	boardSet := poker.NewCardSet(board...)
	heroBase, villainBase := hero.Set()|boardSet, villain.Set()|boardSet
	known := append([]poker.Card{hero[0], hero[1], villain[0], villain[1]}, board...)
	need := 5 - len(board)

	return func(rng *rand.Rand, trials int) (tally, error) {
		deck := poker.NewDeck(rng)
		if err := deck.DealAll(known...); err != nil {
			return tally{}, err
		}

		var t tally
		drawn := make([]poker.Card, 0, 5)
		for range trials {
			var err error
			drawn, err = deck.DealRandomN(drawn[:0], need)
			if err != nil {
				return t, err
			}
			runout := poker.NewCardSet(drawn...)
			err = t.showdown(heroBase|runout, villainBase|runout)
			undealReverse(deck, drawn)
			if err != nil {
				return t, err
			}
		}
		return t, nil
	}
}

// randomOpponentBatch draws the villain's two cards and the missing board
// cards on every trial.
func randomOpponentBatch(hero poker.Hand, board []poker.Card) batchFunc {
	boardSet := poker.NewCardSet(board...)
	heroBase := hero.Set() | boardSet
	known := append([]poker.Card{hero[0], hero[1]}, board...)
	need := 5 - len(board)

	return func(rng *rand.Rand, trials int) (tally, error) {
		deck := poker.NewDeck(rng)
		if err := deck.DealAll(known...); err != nil {
			return tally{}, err
		}

		var t tally
		drawn := make([]poker.Card, 0, 7)
		for range trials {
			var err error
			drawn, err = deck.DealRandomN(drawn[:0], 2+need)
			if err != nil {
				return t, err
			}
			villain := poker.NewCardSet(drawn[0], drawn[1])
			runout := poker.NewCardSet(drawn[2:]...)
			err = t.showdown(heroBase|runout, villain|boardSet|runout)
			undealReverse(deck, drawn)
			if err != nil {
				return t, err
			}
		}
		return t, nil
	}
}

func (t *tally) showdown(hero, villain poker.CardSet) error {
	heroStrength, err := poker.EvaluateSet(hero)
	if err != nil {
		return err
	}
	villainStrength, err := poker.EvaluateSet(villain)
	if err != nil {
		return err
	}
	t.record(heroStrength, villainStrength)
	return nil
}

func undealReverse(deck *poker.Deck, cards []poker.Card) {
	for i := len(cards) - 1; i >= 0; i-- {
		deck.Undeal(cards[i])
	}
}

// deadCards validates that the board and hands are pairwise distinct and
// returns them as a set.
func deadCards(board []poker.Card, hands ...poker.Hand) (poker.CardSet, error) {
	if len(board) > 5 {
		return 0, fmt.Errorf("%w: board has %d cards, at most 5 allowed", poker.ErrInvalidCardSpec, len(board))
	}
	var dead poker.CardSet
	add := func(c poker.Card) error {
		if !c.Valid() {
			return fmt.Errorf("%w: %v", poker.ErrInvalidCardSpec, c)
		}
		if dead.Contains(c) {
			return fmt.Errorf("%w: %s", poker.ErrCardAlreadyDealt, c)
		}
		dead.Add(c)
		return nil
	}
	for _, h := range hands {
		for _, c := range h {
			if err := add(c); err != nil {
				return 0, err
			}
		}
	}
	for _, c := range board {
		if err := add(c); err != nil {
			return 0, err
		}
	}
	return dead, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/holdem-odds/analysis"
	"github.com/lox/holdem-odds/internal/config"
	"github.com/lox/holdem-odds/internal/report"
	"github.com/lox/holdem-odds/poker"
)

type CLI struct {
	Hands         []string `arg:"" help:"Hero hand and optional villain hand, e.g. 'AsAh' 'KdKc'"`
	Board         string   `short:"b" help:"Community board cards (e.g., 'Td7s8h')"`
	Range         string   `short:"r" help:"Villain range instead of a hand (e.g., 'QQ+,AKs,top 10%')"`
	Possibilities bool     `short:"p" help:"Show hero hand type probabilities"`
	Trials        int      `short:"t" help:"Monte Carlo trials (per range combination in range mode)"`
	Batch         int      `help:"Trials per batch"`
	Workers       int      `short:"w" help:"Concurrent batches"`
	Seed          int64    `help:"Random seed for reproducible results"`
	Config        string   `short:"c" help:"HCL config file" default:"poker-odds.hcl" type:"path"`
	Output        string   `short:"o" help:"Also write the result as JSON to this file" type:"path"`
	Progress      bool     `help:"Report progress on stderr"`
	Debug         bool     `help:"Enable debug logging"`
	NoColor       bool     `help:"Disable colored output"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("poker-odds"),
		kong.Description("Heads-up Texas Hold'em equity calculator"),
		kong.UsageOnError(),
	)

	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	ctx := setupSignalHandler(logger)
	if err := run(ctx, cli, logger, os.Stdout); err != nil {
		logger.Error("Calculation failed", "error", err)
		kctx.Exit(1)
	}
}

// setupSignalHandler creates a context that is cancelled on interrupt signals
func setupSignalHandler(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warn("Received signal, reporting partial results", "signal", sig.String())
		cancel()
	}()

	return ctx
}

// query is a validated command line request.
type query struct {
	hero    poker.Hand
	villain *poker.Hand
	grid    *analysis.RangeGrid
	board   []poker.Card
}

func run(ctx context.Context, cli CLI, logger *log.Logger, out io.Writer) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	applyFlags(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := cfg.Level()
	logger.SetLevel(level)

	q, err := parseQuery(cli)
	if err != nil {
		return err
	}

	simConfig := cfg.SimulatorConfig(logger)
	if cli.Progress {
		simConfig.Progress = newProgressPrinter(os.Stderr).update
	}
	sim := analysis.New(simConfig)
	logger.Debug("Simulator ready", "seed", sim.Seed(), "trials", cfg.Simulation.Trials,
		"batch", cfg.Simulation.BatchSize, "workers", cfg.Simulation.Workers)

	session := analysis.NewSession(sim)
	result, err := simulate(ctx, session, q, cfg.Simulation.Trials)
	if err != nil {
		return err
	}
	if result.Partial {
		logger.Warn("Simulation interrupted", "completed", result.Trials, "requested", result.Requested)
	}

	displayResult(out, q, result, cli.Possibilities)

	if cli.Output != "" {
		rep := report.New(q.hero, villainLabel(q, result), q.board, sim.Seed(), result)
		if err := report.Write(cli.Output, rep); err != nil {
			return err
		}
		logger.Info("Report written", "path", cli.Output)
	}
	return nil
}

// applyFlags overrides file configuration with explicitly set flags.
func applyFlags(cfg *config.Config, cli CLI) {
	if cli.Debug {
		cfg.LogLevel = "debug"
	}
	if cli.Trials != 0 {
		cfg.Simulation.Trials = cli.Trials
	}
	if cli.Batch != 0 {
		cfg.Simulation.BatchSize = cli.Batch
	}
	if cli.Workers != 0 {
		cfg.Simulation.Workers = cli.Workers
	}
	if cli.Seed != 0 {
		cfg.Simulation.Seed = cli.Seed
	}
}

func parseQuery(cli CLI) (query, error) {
	var q query

	hands, err := parseHands(cli.Hands)
	if err != nil {
		return q, err
	}
	switch {
	case len(hands) == 2 && cli.Range != "":
		return q, errors.New("give either a villain hand or --range, not both")
	case len(hands) == 2:
		q.villain = &hands[1]
	case cli.Range != "":
		grid, err := analysis.ParseRange(cli.Range)
		if err != nil {
			return q, fmt.Errorf("range: %w", err)
		}
		q.grid = &grid
	}
	q.hero = hands[0]

	if cli.Board != "" {
		q.board, err = poker.ParseCards(cli.Board)
		if err != nil {
			return q, fmt.Errorf("board: %w", err)
		}
	}
	return q, nil
}

func parseHands(handStrings []string) ([]poker.Hand, error) {
	if len(handStrings) == 0 || len(handStrings) > 2 {
		return nil, fmt.Errorf("expected one or two hands, got %d", len(handStrings))
	}

	hands := make([]poker.Hand, 0, len(handStrings))
	for i, handStr := range handStrings {
		hand, err := poker.ParseHand(strings.TrimSpace(handStr))
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

// simulate selects the cards on the session and runs the matching simulation.
// The session rejects any card chosen twice.
func simulate(ctx context.Context, s *analysis.Session, q query, trials int) (analysis.EquityResult, error) {
	if err := s.SetPlayerHand(q.hero[0], q.hero[1]); err != nil {
		return analysis.EquityResult{}, err
	}
	if q.villain != nil {
		if err := s.SetOpponentHand(q.villain[0], q.villain[1]); err != nil {
			return analysis.EquityResult{}, err
		}
	}
	if err := s.SetCommunityCards(q.board...); err != nil {
		return analysis.EquityResult{}, err
	}

	switch {
	case q.villain != nil:
		return s.RunEquitySimulation(ctx, trials)
	case q.grid != nil:
		return s.RunRangeEquitySimulation(ctx, *q.grid, trials)
	default:
		return s.RunRandomEquitySimulation(ctx, trials)
	}
}

func villainLabel(q query, result analysis.EquityResult) string {
	switch {
	case q.villain != nil:
		return q.villain.String()
	case q.grid != nil:
		return fmt.Sprintf("range (%d combos)", result.Combos)
	default:
		return "random"
	}
}

func displayResult(w io.Writer, q query, result analysis.EquityResult, showPossibilities bool) {
	if len(q.board) > 0 {
		fmt.Fprintf(w, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(w, "%s\n\n", poker.FormatCards(q.board))
		displayMadeHands(w, q)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("hand"),
		headerStyle.Render("vs"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"),
		headerStyle.Render("loss"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		handStyle.Render(q.hero.String()),
		handStyle.Render(villainLabel(q, result)),
		winStyle.Render(fmt.Sprintf("%.2f%%", result.WinPct)),
		tieStyle.Render(fmt.Sprintf("%.2f%%", result.TiePct)),
		lossStyle.Render(fmt.Sprintf("%.2f%%", result.LossPct)))
	tw.Flush()

	lower, upper := result.ConfidenceInterval()
	fmt.Fprintf(w, "\nequity %.2f%% %s\n", result.Equity(),
		dimStyle.Render(fmt.Sprintf("(95%% CI %.2f%% - %.2f%%)", lower, upper)))

	if showPossibilities {
		fmt.Fprintf(w, "\n")
		displayPossibilities(w, result)
	}

	fmt.Fprintf(w, "\n")
	summary := fmt.Sprintf("%d trials in %v", result.Trials, result.Elapsed.Truncate(time.Millisecond))
	if result.Partial {
		summary += fmt.Sprintf(" (interrupted, %d requested)", result.Requested)
	}
	fmt.Fprintln(w, dimStyle.Render(summary))
}

// displayMadeHands shows the hand each known player holds on the current
// board. It needs at least a flop.
func displayMadeHands(w io.Writer, q query) {
	if len(q.board) < 3 {
		return
	}
	players := []poker.Hand{q.hero}
	if q.villain != nil {
		players = append(players, *q.villain)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, h := range players {
		strength, err := poker.Evaluate(append([]poker.Card{h[0], h[1]}, q.board...))
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", handStyle.Render(h.String()), categoryStyle.Render(strength.Describe()))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func displayPossibilities(w io.Writer, result analysis.EquityResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", categoryStyle.Render("hand"), headerStyle.Render("hero"))

	for c := poker.StraightFlush; ; c-- {
		if pct := result.HandTypes[c]; pct > 0 {
			fmt.Fprintf(tw, "%s\t%s\n", categoryStyle.Render(c.String()), fmt.Sprintf("%.2f%%", pct))
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", categoryStyle.Render(c.String()), dimStyle.Render("."))
		}
		if c == poker.HighCard {
			break
		}
	}
	tw.Flush()
}

// progressPrinter renders a single updating progress line. The simulator
// invokes it from the calling goroutine so it needs no locking.
type progressPrinter struct {
	w       io.Writer
	lastPct int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, lastPct: -1}
}

func (p *progressPrinter) update(pr analysis.Progress) {
	if pr.Total == 0 {
		return
	}
	pct := pr.Completed * 100 / pr.Total
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct
	fmt.Fprintf(p.w, "\r%3d%% %d/%d win %.2f%%", pct, pr.Completed, pr.Total, pr.Result.WinPct)
	if pr.Completed >= pr.Total {
		fmt.Fprintln(p.w)
	}
}

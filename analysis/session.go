package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/holdem-odds/poker"
)

// ErrHandNotSet reports a simulation requested before the needed hands were chosen.
var ErrHandNotSet = errors.New("hand not set")

// Session is the entry point for a presentation layer. It tracks which cards
// have been selected so that the same card cannot be picked twice, and runs
// simulations on the current selection.
//
// A Session is not safe for concurrent use.
type Session struct {
	sim  *Simulator
	deck *poker.Deck

	player   *poker.Hand
	opponent *poker.Hand
	board    []poker.Card
}

// NewSession creates a session that runs simulations with sim.
func NewSession(sim *Simulator) *Session {
	return &Session{
		sim:  sim,
		deck: poker.NewDeck(nil),
	}
}

// SetPlayerHand selects the player's hole cards, replacing any previous selection.
func (s *Session) SetPlayerHand(c1, c2 poker.Card) error {
	h, err := s.replaceHand(s.player, c1, c2)
	if err != nil {
		return fmt.Errorf("player hand: %w", err)
	}
	s.player = &h
	return nil
}

// SetOpponentHand selects the opponent's hole cards, replacing any previous selection.
func (s *Session) SetOpponentHand(c1, c2 poker.Card) error {
	h, err := s.replaceHand(s.opponent, c1, c2)
	if err != nil {
		return fmt.Errorf("opponent hand: %w", err)
	}
	s.opponent = &h
	return nil
}

// ClearOpponentHand returns the opponent's cards to the deck.
func (s *Session) ClearOpponentHand() {
	if s.opponent != nil {
		s.deck.Undeal(s.opponent[0])
		s.deck.Undeal(s.opponent[1])
		s.opponent = nil
	}
}

func (s *Session) replaceHand(prev *poker.Hand, c1, c2 poker.Card) (poker.Hand, error) {
	h, err := poker.NewHand(c1, c2)
	if err != nil {
		return poker.Hand{}, err
	}
	if prev != nil {
		s.deck.Undeal(prev[0])
		s.deck.Undeal(prev[1])
	}
	if err := s.deck.DealAll(h[0], h[1]); err != nil {
		if prev != nil {
			// The previous cards were dealt a moment ago, so this cannot fail.
			_ = s.deck.DealAll(prev[0], prev[1])
		}
		return poker.Hand{}, err
	}
	return h, nil
}

// SetCommunityCards replaces the board with up to five cards.
func (s *Session) SetCommunityCards(cards ...poker.Card) error {
	if len(cards) > 5 {
		return fmt.Errorf("%w: board has %d cards, at most 5 allowed", poker.ErrInvalidCardSpec, len(cards))
	}
	for _, c := range s.board {
		s.deck.Undeal(c)
	}
	if err := s.deck.DealAll(cards...); err != nil {
		_ = s.deck.DealAll(s.board...)
		return fmt.Errorf("board: %w", err)
	}
	s.board = append(s.board[:0:0], cards...)
	return nil
}

// PlayerHand returns the selected player hand, if any.
func (s *Session) PlayerHand() (poker.Hand, bool) {
	if s.player == nil {
		return poker.Hand{}, false
	}
	return *s.player, true
}

// OpponentHand returns the selected opponent hand, if any.
func (s *Session) OpponentHand() (poker.Hand, bool) {
	if s.opponent == nil {
		return poker.Hand{}, false
	}
	return *s.opponent, true
}

// Board returns a copy of the community cards.
func (s *Session) Board() []poker.Card {
	return append([]poker.Card(nil), s.board...)
}

// IsDealt reports whether a card has been selected anywhere in the session.
func (s *Session) IsDealt(c poker.Card) bool {
	return s.deck.IsDealt(c)
}

// Reset clears every selection and returns all cards to the deck.
func (s *Session) Reset() {
	s.deck.Reset()
	s.player = nil
	s.opponent = nil
	s.board = nil
}

// RunEquitySimulation simulates the player hand against the opponent hand.
func (s *Session) RunEquitySimulation(ctx context.Context, trials int) (EquityResult, error) {
	if s.player == nil || s.opponent == nil {
		return EquityResult{}, fmt.Errorf("%w: both player and opponent hands are required", ErrHandNotSet)
	}
	return s.sim.Simulate(ctx, *s.player, *s.opponent, s.board, trials)
}

// RunRangeEquitySimulation simulates the player hand against the grid range.
// A selected opponent hand is ignored and its cards stay available.
func (s *Session) RunRangeEquitySimulation(ctx context.Context, grid RangeGrid, trials int) (EquityResult, error) {
	if s.player == nil {
		return EquityResult{}, fmt.Errorf("%w: player hand is required", ErrHandNotSet)
	}
	return s.sim.SimulateRange(ctx, *s.player, grid, s.board, trials)
}

// RunRandomEquitySimulation simulates the player hand against random hole cards.
func (s *Session) RunRandomEquitySimulation(ctx context.Context, trials int) (EquityResult, error) {
	if s.player == nil {
		return EquityResult{}, fmt.Errorf("%w: player hand is required", ErrHandNotSet)
	}
	return s.sim.SimulateRandom(ctx, *s.player, s.board, trials)
}

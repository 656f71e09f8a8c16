package poker

import "errors"

var (
	// ErrInvalidCardSpec reports a rank or suit outside the valid range, or a
	// board holding more than five cards.
	ErrInvalidCardSpec = errors.New("invalid card")

	// ErrCardAlreadyDealt reports a card that is already in play.
	ErrCardAlreadyDealt = errors.New("card already dealt")

	// ErrInvalidHand reports evaluator input with duplicates or the wrong size.
	ErrInvalidHand = errors.New("invalid hand")

	// ErrInsufficientUndealtCards reports a deal that the deck cannot satisfy.
	ErrInsufficientUndealtCards = errors.New("insufficient undealt cards")
)

package poker

import "fmt"

// Hand is a player's two private hole cards.
type Hand [2]Card

// NewHand creates a hand from two distinct valid cards.
func NewHand(c1, c2 Card) (Hand, error) {
	if !c1.Valid() || !c2.Valid() {
		return Hand{}, fmt.Errorf("%w: %v %v", ErrInvalidCardSpec, c1, c2)
	}
	if c1 == c2 {
		return Hand{}, fmt.Errorf("%w: %s appears twice", ErrCardAlreadyDealt, c1)
	}
	return Hand{c1, c2}, nil
}

// ParseHand parses two cards of notation such as "AsKd".
func ParseHand(s string) (Hand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Hand{}, err
	}
	if len(cards) != 2 {
		return Hand{}, fmt.Errorf("%w: hand must contain exactly 2 cards, got %d", ErrInvalidCardSpec, len(cards))
	}
	return NewHand(cards[0], cards[1])
}

// Set returns the hand as a CardSet
func (h Hand) Set() CardSet {
	return NewCardSet(h[0], h[1])
}

// String returns the hand as glyph cards, e.g. "A♠ K♥"
func (h Hand) String() string {
	return h[0].String() + " " + h[1].String()
}

// Code returns the shorthand hand code such as "AKs", "72o" or "QQ".
func (h Hand) Code() string {
	hi, lo := h[0], h[1]
	if lo.rank > hi.rank {
		hi, lo = lo, hi
	}
	switch {
	case hi.rank == lo.rank:
		return hi.rank.String() + lo.rank.String()
	case hi.suit == lo.suit:
		return hi.rank.String() + lo.rank.String() + "s"
	default:
		return hi.rank.String() + lo.rank.String() + "o"
	}
}

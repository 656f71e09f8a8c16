package poker

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. Indices follow the display order ♠♥♦♣.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

// String returns the suit glyph
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single ASCII letter used in card notation (s, h, d, c)
func (s Suit) Letter() byte {
	if s > Clubs {
		return '?'
	}
	return "shdc"[s]
}

// Valid reports whether the suit is one of the four standard suits
func (s Suit) Valid() bool {
	return s <= Clubs
}

// Rank represents a card rank from Two (2) to Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// NumRanks is the number of distinct ranks in a standard deck.
const NumRanks = 13

const rankChars = "23456789TJQKA"

// String returns the display character for the rank ("2".."9", "T", "J", "Q", "K", "A")
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return rankChars[r-Two : r-Two+1]
}

// Name returns the English name of the rank, e.g. "Seven".
func (r Rank) Name() string {
	names := [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
		"Nine", "Ten", "Jack", "Queen", "King", "Ace"}
	if !r.Valid() {
		return "Unknown"
	}
	return names[r-Two]
}

// Valid reports whether the rank lies in [Two, Ace]
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// ParseRank converts a rank character to a Rank.
func ParseRank(c byte) (Rank, error) {
	switch c {
	case 'A', 'a':
		return Ace, nil
	case 'K', 'k':
		return King, nil
	case 'Q', 'q':
		return Queen, nil
	case 'J', 'j':
		return Jack, nil
	case 'T', 't':
		return Ten, nil
	}
	if c >= '2' && c <= '9' {
		return Rank(c - '0'), nil
	}
	return 0, fmt.Errorf("%w: unknown rank %q", ErrInvalidCardSpec, c)
}

func parseSuit(r rune) (Suit, error) {
	switch r {
	case 's', 'S', '♠':
		return Spades, nil
	case 'h', 'H', '♥':
		return Hearts, nil
	case 'd', 'D', '♦':
		return Diamonds, nil
	case 'c', 'C', '♣':
		return Clubs, nil
	default:
		return 0, fmt.Errorf("%w: unknown suit %q", ErrInvalidCardSpec, r)
	}
}

// Card is an immutable playing card. The zero value is not a valid card;
// build cards with NewCard or ParseCard.
type Card struct {
	rank Rank
	suit Suit
}

// NewCard creates a card, rejecting ranks outside [2,14] and suits outside [0,3].
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() || !suit.Valid() {
		return Card{}, fmt.Errorf("%w: rank %d suit %d", ErrInvalidCardSpec, rank, suit)
	}
	return Card{rank: rank, suit: suit}, nil
}

// MustCard is like NewCard but panics on invalid input.
func MustCard(rank Rank, suit Suit) Card {
	c, err := NewCard(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

// Rank returns the card rank
func (c Card) Rank() Rank { return c.rank }

// Suit returns the card suit
func (c Card) Suit() Suit { return c.suit }

// Valid reports whether the card was built from a valid rank and suit.
func (c Card) Valid() bool {
	return c.rank.Valid() && c.suit.Valid()
}

// Index returns a dense index in [0,52), ordered by suit then rank.
func (c Card) Index() int {
	return int(c.suit)*NumRanks + int(c.rank-Two)
}

// CardFromIndex is the inverse of Card.Index.
func CardFromIndex(i int) (Card, error) {
	if i < 0 || i >= 52 {
		return Card{}, fmt.Errorf("%w: index %d", ErrInvalidCardSpec, i)
	}
	return Card{rank: Rank(i%NumRanks) + Two, suit: Suit(i / NumRanks)}, nil
}

// String returns the card with its suit glyph, e.g. "A♠".
func (c Card) String() string {
	return c.rank.String() + c.suit.String()
}

// Notation returns the ASCII form used by ParseCard, e.g. "As".
func (c Card) Notation() string {
	return c.rank.String() + string(c.suit.Letter())
}

// ParseCard parses a single card such as "As", "td" or "K♥".
func ParseCard(s string) (Card, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) != 2 || runes[0] > 0x7f {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCardSpec, s)
	}
	rank, err := ParseRank(byte(runes[0]))
	if err != nil {
		return Card{}, err
	}
	suit, err := parseSuit(runes[1])
	if err != nil {
		return Card{}, err
	}
	return Card{rank: rank, suit: suit}, nil
}

// ParseCards parses a run of card notation into a slice of cards.
// Format: "AsKsQsJsTs" where each card is [Rank][Suit]; spaces are ignored.
// Suits may be letters (s, h, d, c) or glyphs (♠♥♦♣).
func ParseCards(s string) ([]Card, error) {
	runes := []rune(strings.ReplaceAll(s, " ", ""))
	if len(runes)%2 != 0 {
		return nil, fmt.Errorf("%w: card string length %d must be even", ErrInvalidCardSpec, len(runes))
	}

	cards := make([]Card, 0, len(runes)/2)
	for i := 0; i < len(runes); i += 2 {
		card, err := ParseCard(string(runes[i : i+2]))
		if err != nil {
			return nil, fmt.Errorf("card at position %d: %w", i/2, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// FormatCards joins cards with spaces using their glyph form.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

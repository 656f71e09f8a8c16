package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck represents a standard 52-card deck. It is the only owner of
// dealt state: cards themselves never carry it.
type Deck struct {
	dealt CardSet
	rng   *rand.Rand // Random source for deterministic sampling
}

// NewDeck creates a full deck with explicit RNG. rng may be nil for a deck
// that only tracks selected cards and never deals at random.
func NewDeck(rng *rand.Rand) *Deck {
	return &Deck{rng: rng}
}

// Deal marks a specific card as in play.
func (d *Deck) Deal(c Card) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidCardSpec, c)
	}
	if d.dealt.Contains(c) {
		return fmt.Errorf("%w: %s", ErrCardAlreadyDealt, c)
	}
	d.dealt.Add(c)
	return nil
}

// DealAll deals every card or none of them.
func (d *Deck) DealAll(cards ...Card) error {
	for i, c := range cards {
		if err := d.Deal(c); err != nil {
			for _, dealt := range cards[:i] {
				d.Undeal(dealt)
			}
			return err
		}
	}
	return nil
}

// Undeal returns a card to the sampling pool. Undealing a card that is not
// dealt is a no-op.
func (d *Deck) Undeal(c Card) {
	d.dealt.Remove(c)
}

// DealRandom deals one card chosen uniformly among the undealt cards. It
// picks an index in [0, undealt) and walks to that card, so the cost is
// bounded regardless of how many cards are already dealt.
func (d *Deck) DealRandom() (Card, error) {
	undealt := fullDeck &^ d.dealt
	n := undealt.Count()
	if n == 0 {
		return Card{}, ErrInsufficientUndealtCards
	}
	c := undealt.nth(d.rng.IntN(n))
	d.dealt.Add(c)
	return c, nil
}

// DealRandomN deals n random cards into dst (appending) and returns it. On
// failure nothing is dealt.
func (d *Deck) DealRandomN(dst []Card, n int) ([]Card, error) {
	if remaining := d.UndealtCount(); remaining < n {
		return dst, fmt.Errorf("%w: need %d, have %d", ErrInsufficientUndealtCards, n, remaining)
	}
	for range n {
		c, err := d.DealRandom()
		if err != nil {
			return dst, err
		}
		dst = append(dst, c)
	}
	return dst, nil
}

// IsDealt reports whether the card is currently in play
func (d *Deck) IsDealt(c Card) bool {
	return d.dealt.Contains(c)
}

// Dealt returns the set of cards currently in play
func (d *Deck) Dealt() CardSet {
	return d.dealt
}

// UndealtCount returns the number of cards left to sample from
func (d *Deck) UndealtCount() int {
	return 52 - d.dealt.Count()
}

// Reset returns every card to the deck
func (d *Deck) Reset() {
	d.dealt = 0
}

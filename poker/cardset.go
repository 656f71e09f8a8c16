package poker

import "math/bits"

// CardSet represents a set of cards using a bitset for fast operations.
// Each suit occupies a 16-bit lane: bit = suit*16 + (rank-2).
type CardSet uint64

const rankLaneMask = 0x1FFF

// fullDeck has one bit set for each of the 52 cards.
const fullDeck CardSet = rankLaneMask | rankLaneMask<<16 | rankLaneMask<<32 | rankLaneMask<<48

func cardBit(c Card) CardSet {
	return 1 << (uint(c.suit)*16 + uint(c.rank-Two))
}

// NewCardSet creates a CardSet from a slice of cards
func NewCardSet(cards ...Card) CardSet {
	var cs CardSet
	for _, c := range cards {
		cs.Add(c)
	}
	return cs
}

// Add adds a card to the set
func (cs *CardSet) Add(c Card) {
	*cs |= cardBit(c)
}

// Remove removes a card from the set
func (cs *CardSet) Remove(c Card) {
	*cs &^= cardBit(c)
}

// Contains checks if a card is in the set
func (cs CardSet) Contains(c Card) bool {
	return cs&cardBit(c) != 0
}

// Overlaps reports whether the two sets share any card
func (cs CardSet) Overlaps(other CardSet) bool {
	return cs&other != 0
}

// Count returns the number of cards in the set
func (cs CardSet) Count() int {
	return bits.OnesCount64(uint64(cs))
}

// SuitMask returns the rank bits (bit 0 = Two .. bit 12 = Ace) held in a suit.
func (cs CardSet) SuitMask(s Suit) uint16 {
	return uint16(cs>>(uint(s)*16)) & rankLaneMask
}

// Cards returns the cards in the set ordered by suit then rank.
func (cs CardSet) Cards() []Card {
	cards := make([]Card, 0, cs.Count())
	for s := Spades; s <= Clubs; s++ {
		mask := cs.SuitMask(s)
		for mask != 0 {
			r := bits.TrailingZeros16(mask)
			cards = append(cards, Card{rank: Rank(r) + Two, suit: s})
			mask &= mask - 1
		}
	}
	return cards
}

// nth returns the n-th card (0-based, suit then rank order) in the set.
// The caller guarantees n < cs.Count().
func (cs CardSet) nth(n int) Card {
	for s := Spades; s <= Clubs; s++ {
		mask := cs.SuitMask(s)
		c := bits.OnesCount16(mask)
		if n >= c {
			n -= c
			continue
		}
		for ; n > 0; n-- {
			mask &= mask - 1
		}
		return Card{rank: Rank(bits.TrailingZeros16(mask)) + Two, suit: s}
	}
	return Card{}
}

package poker

import (
	"fmt"
	"math/bits"
)

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of hand categories.
const NumCategories = 9

// String returns the category label
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandStrength is the showdown value of a hand. Higher values are stronger.
//
// Layout: category in bits 20-23 followed by up to five tie-break ranks in
// 4-bit fields, most significant first (bits 16-19 down to 0-3). Unused
// fields are zero. Comparing two strengths as integers therefore compares
// category first and then each tie-break rank in turn.
type HandStrength uint32

const (
	categoryShift = 20
	kickerBits    = 4
	maxKickers    = 5
)

// Category returns the hand category
func (hs HandStrength) Category() Category {
	return Category(hs >> categoryShift)
}

// Kickers returns the tie-break ranks, most significant first. For paired
// categories the paired ranks come first (e.g. trips rank, then kickers).
func (hs HandStrength) Kickers() []Rank {
	ranks := make([]Rank, 0, maxKickers)
	for i := range maxKickers {
		shift := uint(categoryShift - kickerBits*(i+1))
		r := Rank(hs>>shift) & 0xF
		if r == 0 {
			break
		}
		ranks = append(ranks, r)
	}
	return ranks
}

// Compare returns 1 if hs beats other, -1 if it loses and 0 for a tie.
func (hs HandStrength) Compare(other HandStrength) int {
	switch {
	case hs > other:
		return 1
	case hs < other:
		return -1
	}
	return 0
}

// String returns the category label
func (hs HandStrength) String() string {
	return hs.Category().String()
}

// Describe returns a human-readable hand description such as
// "Full House, Sevens full of Twos".
func (hs HandStrength) Describe() string {
	k := hs.Kickers()
	if len(k) == 0 {
		return hs.String()
	}
	switch hs.Category() {
	case StraightFlush:
		if k[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", k[0].Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", k[0].Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", k[0].Plural(), k[1].Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", k[0].Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", k[0].Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", k[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", k[0].Plural(), k[1].Plural())
	case Pair:
		return fmt.Sprintf("Pair of %s", k[0].Plural())
	default:
		return fmt.Sprintf("High Card, %s", k[0].Name())
	}
}

// Plural returns the plural rank name, e.g. "Sixes".
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Evaluate returns the strength of the best five-card hand within 5 to 7
// distinct cards.
func Evaluate(cards []Card) (HandStrength, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidHand, len(cards))
	}
	var cs CardSet
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: invalid card %v", ErrInvalidHand, c)
		}
		if cs.Contains(c) {
			return 0, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		cs.Add(c)
	}
	return evaluateSet(cs), nil
}

// EvaluateSet evaluates a set of 5 to 7 cards without allocating.
func EvaluateSet(cs CardSet) (HandStrength, error) {
	if cs&^fullDeck != 0 {
		return 0, fmt.Errorf("%w: set holds bits outside the deck", ErrInvalidHand)
	}
	if n := cs.Count(); n < 5 || n > 7 {
		return 0, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidHand, n)
	}
	return evaluateSet(cs), nil
}

// strengthBuilder packs a category and tie-break ranks into a HandStrength.
type strengthBuilder struct {
	v     HandStrength
	shift uint
}

func newStrength(c Category) strengthBuilder {
	return strengthBuilder{v: HandStrength(c) << categoryShift, shift: categoryShift - kickerBits}
}

func (b *strengthBuilder) push(r Rank) {
	b.v |= HandStrength(r) << b.shift
	b.shift -= kickerBits
}

// pushTop appends the n highest ranks present in mask.
func (b *strengthBuilder) pushTop(mask uint16, n int) {
	for ; n > 0 && mask != 0; n-- {
		top := highestBit(mask)
		b.push(bitRank(top))
		mask &^= 1 << top
	}
}

func evaluateSet(cs CardSet) HandStrength {
	s0, s1, s2, s3 := cs.SuitMask(Spades), cs.SuitMask(Hearts), cs.SuitMask(Diamonds), cs.SuitMask(Clubs)
	rankMask := s0 | s1 | s2 | s3

	// At most one suit can hold five of seven cards.
	var flushMask uint16
	for _, m := range [4]uint16{s0, s1, s2, s3} {
		if bits.OnesCount16(m) >= 5 {
			flushMask = m
			break
		}
	}

	if flushMask != 0 {
		if high := straightHigh(flushMask); high != 0 {
			b := newStrength(StraightFlush)
			b.push(high)
			return b.v
		}
	}

	quads := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	trips := tripCandidates &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quads != 0 {
		quad := highestBit(quads)
		b := newStrength(FourOfAKind)
		b.push(bitRank(quad))
		b.pushTop(rankMask&^(1<<quad), 1)
		return b.v
	}

	if trips != 0 {
		trip := highestBit(trips)
		// A second set of trips can supply the pair.
		if pairCandidates := pairs | (trips &^ (1 << trip)); pairCandidates != 0 {
			b := newStrength(FullHouse)
			b.push(bitRank(trip))
			b.pushTop(pairCandidates, 1)
			return b.v
		}
	}

	if flushMask != 0 {
		b := newStrength(Flush)
		b.pushTop(flushMask, 5)
		return b.v
	}

	if high := straightHigh(rankMask); high != 0 {
		b := newStrength(Straight)
		b.push(high)
		return b.v
	}

	if trips != 0 {
		trip := highestBit(trips)
		b := newStrength(ThreeOfAKind)
		b.push(bitRank(trip))
		b.pushTop(rankMask&^(1<<trip), 2)
		return b.v
	}

	if pairs != 0 {
		high := highestBit(pairs)
		if rest := pairs &^ (1 << high); rest != 0 {
			low := highestBit(rest)
			b := newStrength(TwoPair)
			b.push(bitRank(high))
			b.push(bitRank(low))
			b.pushTop(rankMask&^(1<<high|1<<low), 1)
			return b.v
		}
		b := newStrength(Pair)
		b.push(bitRank(high))
		b.pushTop(rankMask&^(1<<high), 3)
		return b.v
	}

	b := newStrength(HighCard)
	b.pushTop(rankMask, 5)
	return b.v
}

// highestBit returns the index of the highest set bit; mask must be non-zero.
func highestBit(mask uint16) uint {
	return uint(bits.Len16(mask) - 1)
}

func bitRank(bit uint) Rank {
	return Rank(bit) + Two
}

// straightHigh returns the high card of the best straight in the rank mask
// (bit 0 = Two .. bit 12 = Ace), or 0 if there is none. The wheel A-2-3-4-5
// counts as Five high.
func straightHigh(mask uint16) Rank {
	const wheelMask = 0x100F // Ace + 2-3-4-5

	// Bitwise cascade identifies consecutive sequences in one pass.
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return bitRank(highestBit(seq) + 4)
	}
	if mask&wheelMask == wheelMask {
		return Five
	}
	return 0
}

// Package shoe models the cards left to be dealt as exact counts per rank,
// along with the hands dealt out of it.
package shoe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"lukechampine.com/frand"
)

// Rank is a card rank from 1 (ace) to 10. The four ten-valued ranks share
// the single bucket Ten.
type Rank uint8

const (
	Ace Rank = 1
	Ten Rank = 10

	NumRanks = 10
	// DefaultDecks is the number of 52-card decks in a full shoe.
	DefaultDecks = 8
)

var (
	// ErrInvariant is wrapped by every bookkeeping violation in this package.
	// These indicate a bug in the caller's draw/replace discipline.
	ErrInvariant = errors.New("shoe invariant violated")

	ErrCardNotInDeck = fmt.Errorf("%w: card not in deck", ErrInvariant)
	ErrCardNotInHand = fmt.Errorf("%w: card not in hand", ErrInvariant)
	ErrHandFull      = fmt.Errorf("%w: hand is full", ErrInvariant)
)

// Ranks lists every rank in ascending order.
var Ranks = [NumRanks]Rank{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// Index is the position of the rank in a count array.
func (r Rank) Index() int {
	return int(r) - 1
}

// Digit is the compact one-character form; ten is written as '0'.
func (r Rank) Digit() byte {
	if r == Ten {
		return '0'
	}
	return byte('0' + r)
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Ten:
		return "T"
	}
	return strconv.Itoa(int(r))
}

func mustBeRank(r Rank) {
	if r < Ace || r > Ten {
		panic(fmt.Sprintf("rank %d out of range", r))
	}
}

// Deck is a multiset of ranks. The zero value is an empty deck. Deck is
// comparable and small, so it is copied freely and used as a map key.
type Deck struct {
	cards [NumRanks]uint16
	size  uint16
}

// NewDeck builds a deck from counts indexed by rank-1.
func NewDeck(counts [NumRanks]uint16) Deck {
	d := Deck{cards: counts}
	for _, c := range counts {
		d.size += c
	}
	return d
}

// Standard is a shoe of numDecks 52-card decks: 4 of each rank per deck,
// 16 for the ten bucket.
func Standard(numDecks int) Deck {
	var counts [NumRanks]uint16
	for i := range counts {
		counts[i] = uint16(4 * numDecks)
	}
	counts[Ten.Index()] = uint16(16 * numDecks)
	return NewDeck(counts)
}

func (d Deck) Count(r Rank) int {
	return int(d.cards[r.Index()])
}

func (d Deck) Size() int {
	return int(d.size)
}

func (d Deck) Counts() [NumRanks]uint16 {
	return d.cards
}

// Draw removes one card of rank r. It panics if there is none left.
func (d *Deck) Draw(r Rank) {
	mustBeRank(r)
	if d.cards[r.Index()] == 0 {
		panic(fmt.Errorf("%w: no %v left in %v", ErrCardNotInDeck, r, d.String()))
	}
	d.cards[r.Index()]--
	d.size--
}

// Replace puts one card of rank r back.
func (d *Deck) Replace(r Rank) {
	mustBeRank(r)
	d.cards[r.Index()]++
	d.size++
}

// DrawTo draws r from the deck into the hand.
func (d *Deck) DrawTo(h *Hand, r Rank) {
	d.Draw(r)
	h.Push(r)
}

// ReplaceFrom takes one r out of the hand and returns it to the deck. It
// panics if the hand holds no r.
func (d *Deck) ReplaceFrom(h *Hand, r Rank) {
	if !h.Remove(r) {
		panic(fmt.Errorf("%w: replacing %v from hand %v", ErrCardNotInHand, r, h.String()))
	}
	d.Replace(r)
}

// Without returns a copy of the deck with the given cards dealt out of it.
func (d Deck) Without(ranks ...Rank) Deck {
	for _, r := range ranks {
		d.Draw(r)
	}
	return d
}

// CardProb is the probability that the next card is r. When excludeTens is
// set the next card is known not to be a ten, so tens get probability 0 and
// the rest are renormalized over the non-ten cards. An exhausted deck gives 0
// for every rank.
func (d Deck) CardProb(r Rank, excludeTens bool) float64 {
	n := d.cards[r.Index()]
	if excludeTens {
		if r == Ten {
			return 0
		}
		denom := d.size - d.cards[Ten.Index()]
		if denom == 0 {
			return 0
		}
		return float64(n) / float64(denom)
	}
	if d.size == 0 {
		return 0
	}
	return float64(n) / float64(d.size)
}

// String is the compact encoding accepted by ParseDeck. Counts that do not
// fit the digit form fall back to comma-separated integers.
func (d Deck) String() string {
	compact := d.cards[Ten.Index()] < 100
	for _, c := range d.cards[:Ten.Index()] {
		if c > 9 {
			compact = false
		}
	}
	if !compact {
		return strings.Join(lo.Map(d.cards[:], func(c uint16, _ int) string {
			return strconv.Itoa(int(c))
		}), ",")
	}
	var sb strings.Builder
	for _, c := range d.cards[:Ten.Index()] {
		sb.WriteByte(byte('0' + c))
	}
	tens := d.cards[Ten.Index()]
	if tens > 9 {
		sb.WriteByte(byte('0' + tens/10))
		tens %= 10
	}
	sb.WriteByte(byte('0' + tens))
	return sb.String()
}

// ParseDeck reads a deck in one of two forms: ten digits, one count per rank
// (an eleventh digit makes the last two digits the two-digit ten count), or
// ten comma-separated integers.
func ParseDeck(s string) (Deck, error) {
	s = strings.TrimSpace(s)
	var counts [NumRanks]uint16
	if strings.Contains(s, ",") {
		fields := strings.Split(s, ",")
		if len(fields) != NumRanks {
			return Deck{}, fmt.Errorf("deck %q: expected %d counts, got %d", s, NumRanks, len(fields))
		}
		for i, f := range fields {
			n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
			if err != nil {
				return Deck{}, fmt.Errorf("deck %q: %w", s, err)
			}
			counts[i] = uint16(n)
		}
		return checkedDeck(s, counts)
	}
	if len(s) != NumRanks && len(s) != NumRanks+1 {
		return Deck{}, fmt.Errorf("deck %q: expected %d or %d digits", s, NumRanks, NumRanks+1)
	}
	digits := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Deck{}, fmt.Errorf("deck %q: bad digit %q", s, s[i])
		}
		digits[i] = uint16(s[i] - '0')
	}
	copy(counts[:], digits)
	if len(digits) == NumRanks+1 {
		counts[Ten.Index()] = 10*digits[NumRanks-1] + digits[NumRanks]
	}
	return checkedDeck(s, counts)
}

func checkedDeck(s string, counts [NumRanks]uint16) (Deck, error) {
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total > 0xFFFF {
		return Deck{}, fmt.Errorf("deck %q: %d cards is too many", s, total)
	}
	return NewDeck(counts), nil
}

// RandomPenetration deals n uniformly random cards off a copy of the deck and
// returns what is left.
func RandomPenetration(d Deck, n int) (Deck, error) {
	if n > d.Size() {
		return Deck{}, fmt.Errorf("cannot deal %d cards from a deck of %d", n, d.Size())
	}
	for i := 0; i < n; i++ {
		pick := frand.Intn(d.Size())
		for _, r := range Ranks {
			c := d.Count(r)
			if pick < c {
				d.Draw(r)
				break
			}
			pick -= c
		}
	}
	return d, nil
}

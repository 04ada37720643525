package shoe

import (
	"fmt"
	"strings"
)

// MaxHandSize is the largest hand either party can hold. A player hand is
// terminal at six cards and the dealer always stands on six.
const MaxHandSize = 6

// Hand is an ordered sequence of dealt ranks for one party. It is a small
// fixed-size value, so copying a Hand copies its cards.
type Hand struct {
	cards [MaxHandSize]Rank
	n     uint8
}

// NewHand builds a hand from the given ranks, in order.
func NewHand(ranks ...Rank) Hand {
	var h Hand
	for _, r := range ranks {
		h.Push(r)
	}
	return h
}

func (h Hand) Len() int {
	return int(h.n)
}

func (h Hand) At(i int) Rank {
	if i < 0 || i >= int(h.n) {
		panic(fmt.Sprintf("hand index %d out of range [0,%d)", i, h.n))
	}
	return h.cards[i]
}

// Push appends a card. It panics if the hand is already full.
func (h *Hand) Push(r Rank) {
	mustBeRank(r)
	if int(h.n) == MaxHandSize {
		panic(fmt.Errorf("%w: cannot add %v to %v", ErrHandFull, r, *h))
	}
	h.cards[h.n] = r
	h.n++
}

// Pop removes and returns the last card.
func (h *Hand) Pop() Rank {
	if h.n == 0 {
		panic(fmt.Errorf("%w: pop from an empty hand", ErrCardNotInHand))
	}
	h.n--
	r := h.cards[h.n]
	h.cards[h.n] = 0
	return r
}

// Remove deletes the first card matching r, keeping the order of the rest.
// It reports whether a card was removed.
func (h *Hand) Remove(r Rank) bool {
	for i := 0; i < int(h.n); i++ {
		if h.cards[i] != r {
			continue
		}
		copy(h.cards[i:h.n-1], h.cards[i+1:h.n])
		h.n--
		h.cards[h.n] = 0
		return true
	}
	return false
}

func (h Hand) Ranks() []Rank {
	out := make([]Rank, h.n)
	copy(out, h.cards[:h.n])
	return out
}

// Sum is the total with every ace counted as one.
func (h Hand) Sum() int {
	s := 0
	for i := 0; i < int(h.n); i++ {
		s += int(h.cards[i])
	}
	return s
}

func (h Hand) HasAce() bool {
	for i := 0; i < int(h.n); i++ {
		if h.cards[i] == Ace {
			return true
		}
	}
	return false
}

// IsPair reports whether the hand is exactly two cards of equal rank.
func (h Hand) IsPair() bool {
	return h.n == 2 && h.cards[0] == h.cards[1]
}

// Counts is the composition of the hand, indexed by rank-1. Two hands with the
// same counts are interchangeable for every valuation in this module.
func (h Hand) Counts() [NumRanks]uint8 {
	var c [NumRanks]uint8
	for i := 0; i < int(h.n); i++ {
		c[h.cards[i].Index()]++
	}
	return c
}

// String encodes the hand in the compact digit form, where 0 stands for ten.
func (h Hand) String() string {
	var sb strings.Builder
	for i := 0; i < int(h.n); i++ {
		sb.WriteByte(h.cards[i].Digit())
	}
	return sb.String()
}

// ParseHand reads the compact digit form produced by Hand.String.
func ParseHand(s string) (Hand, error) {
	var h Hand
	s = strings.TrimSpace(s)
	if len(s) > MaxHandSize {
		return h, fmt.Errorf("hand %q has more than %d cards", s, MaxHandSize)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return h, fmt.Errorf("bad card %q in hand %q", c, s)
		}
		r := Rank(c - '0')
		if r == 0 {
			r = Ten
		}
		h.Push(r)
	}
	return h, nil
}

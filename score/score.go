// Package score classifies finished hands and settles a player hand against
// the dealer.
package score

import (
	"fmt"

	"github.com/domino14/shoeval/shoe"
)

const (
	// BustThreshold is the highest total that is not a bust.
	BustThreshold = 21
	// CharlieCards is the hand length that wins as a six-card charlie.
	CharlieCards = 6

	// NaturalPayout is what an unpushed natural pays per unit bet.
	NaturalPayout = 1.5
)

type Kind uint8

const (
	KindBust Kind = iota
	KindValue
	KindSixCardCharlie
	KindNatural
)

func (k Kind) String() string {
	switch k {
	case KindBust:
		return "Bust"
	case KindValue:
		return "Value"
	case KindSixCardCharlie:
		return "SixCardCharlie"
	case KindNatural:
		return "Natural"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Score is the terminal classification of a hand. It is encoded so that
// ordinary integer comparison gives the game's ordering:
//
//	Bust < Value(0..21) < SixCardCharlie(0..21) < Natural
//
// with Value and SixCardCharlie each ordered by total.
type Score uint8

const (
	valueBase   = 1
	charlieBase = valueBase + BustThreshold + 1

	Bust    Score = 0
	Natural Score = charlieBase + BustThreshold + 1

	// NumScores is the number of distinct scores.
	NumScores = int(Natural) + 1
)

// Value is an ordinary standing total.
func Value(total int) Score {
	checkTotal(total)
	return Score(valueBase + total)
}

// SixCardCharlie is a six-card hand that did not bust.
func SixCardCharlie(total int) Score {
	checkTotal(total)
	return Score(charlieBase + total)
}

func checkTotal(total int) {
	if total < 0 || total > BustThreshold {
		panic(fmt.Sprintf("score total %d out of range", total))
	}
}

func (s Score) Kind() Kind {
	switch {
	case s == Bust:
		return KindBust
	case s < charlieBase:
		return KindValue
	case s < Natural:
		return KindSixCardCharlie
	}
	return KindNatural
}

// Total is the stored magnitude of a Value or SixCardCharlie; 21 for a
// natural and 0 for a bust.
func (s Score) Total() int {
	switch s.Kind() {
	case KindValue:
		return int(s) - valueBase
	case KindSixCardCharlie:
		return int(s) - charlieBase
	case KindNatural:
		return BustThreshold
	}
	return 0
}

func (s Score) String() string {
	switch k := s.Kind(); k {
	case KindValue, KindSixCardCharlie:
		return fmt.Sprintf("%v(%d)", k, s.Total())
	default:
		return k.String()
	}
}

// HandValue is the blackjack total: aces count one, and a single ace is
// upgraded to eleven when that keeps the total at 21 or under.
func HandValue(h shoe.Hand) int {
	total := h.Sum()
	if total < 12 && h.HasAce() {
		return total + 10
	}
	return total
}

// MinHandValue counts every ace as one.
func MinHandValue(h shoe.Hand) int {
	return h.Sum()
}

// Of classifies a hand.
func Of(h shoe.Hand) Score {
	total := HandValue(h)
	switch {
	case total > BustThreshold:
		return Bust
	case h.Len() == CharlieCards:
		return SixCardCharlie(total)
	case h.Len() == 2 && total == BustThreshold:
		return Natural
	}
	return Value(total)
}

// HandExpectation settles one unit bet of a player score against a dealer
// score. A player bust loses even if the dealer also busts.
func HandExpectation(player, dealer Score) float64 {
	switch {
	case player == Bust:
		return -1
	case player == Natural:
		if dealer == Natural {
			return 0
		}
		return NaturalPayout
	case player > dealer:
		return 1
	case dealer > player:
		return -1
	}
	return 0
}

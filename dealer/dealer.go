// Package dealer computes the exact distribution of the dealer's final score
// by enumerating every way the dealer can complete a hand from a known shoe.
package dealer

import (
	"github.com/domino14/shoeval/score"
	"github.com/domino14/shoeval/shoe"
)

// StandThreshold is the total on which the dealer stops drawing, soft or hard.
const StandThreshold = 17

// Stands reports whether the dealer draws no more cards.
func Stands(h shoe.Hand) bool {
	return h.Len() == score.CharlieCards || score.HandValue(h) >= StandThreshold
}

// NextCardIsntTen reports whether the next dealer card is known not to be a
// ten. After an insurance bet is lost the hole card is known not to be a ten,
// and the hole card is the draw made while the dealer shows a single card.
func NextCardIsntTen(h shoe.Hand, failedInsurance bool) bool {
	return h.Len() == 1 && failedInsurance
}

// Scores returns the probability of every final dealer score, starting from
// hand and drawing from deck. Both are taken by value; the caller's copies are
// never changed. If the deck runs out of drawable cards before the dealer
// stands, the dealer stands on what it has.
func Scores(deck shoe.Deck, hand shoe.Hand, failedInsurance bool) score.Distribution {
	if Stands(hand) {
		return score.Certain(score.Of(hand))
	}
	cantBeTen := NextCardIsntTen(hand, failedInsurance)
	var dist score.Distribution
	drew := false
	for _, r := range shoe.Ranks {
		if cantBeTen && r == shoe.Ten {
			break
		}
		p := deck.CardProb(r, cantBeTen)
		if p == 0 {
			continue
		}
		drew = true
		d, h := deck, hand
		d.DrawTo(&h, r)
		sub := Scores(d, h, failedInsurance)
		dist.AddScaled(&sub, p)
	}
	if !drew {
		// nothing left to draw: the dealer stands on the current hand
		return score.Certain(score.Of(hand))
	}
	return dist
}

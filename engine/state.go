// Package engine computes the exact expected return of every player decision
// in a blackjack hand dealt from a known shoe.
package engine

import (
	"fmt"

	"github.com/domino14/shoeval/shoe"
)

// GameState is everything that determines the value of a decision. It is a
// small value: every recursive step works on its own copy, so there is no
// draw/replace bookkeeping to undo.
type GameState struct {
	Player shoe.Hand
	Dealer shoe.Hand
	Deck   shoe.Deck

	// FailedInsurance is set while valuing the branch where insurance was
	// taken and lost, i.e. the hole card is known not to be a ten.
	FailedInsurance bool
	// IsSplit marks a hand produced by a split.
	IsSplit bool
	// FirstSplitHand marks the earlier of two split hands.
	FirstSplitHand bool
}

// NewGameState deals the given player and dealer cards out of deck.
func NewGameState(deck shoe.Deck, player, dealer shoe.Hand) GameState {
	deck = deck.Without(player.Ranks()...)
	deck = deck.Without(dealer.Ranks()...)
	return GameState{Player: player, Dealer: dealer, Deck: deck}
}

func (st GameState) flags() uint8 {
	var f uint8
	if st.FailedInsurance {
		f |= flagFailedInsurance
	}
	if st.IsSplit {
		f |= flagIsSplit
	}
	if st.FirstSplitHand {
		f |= flagFirstSplitHand
	}
	return f
}

func (st GameState) String() string {
	s := fmt.Sprintf("<player %v dealer %v deck %v", st.Player, st.Dealer, st.Deck)
	if st.FailedInsurance {
		s += " failed-insurance"
	}
	if st.IsSplit {
		s += " split"
	}
	if st.FirstSplitHand {
		s += " first-split-hand"
	}
	return s + ">"
}

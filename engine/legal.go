package engine

import (
	"errors"
	"fmt"

	"github.com/domino14/shoeval/score"
	"github.com/domino14/shoeval/shoe"
)

// ErrIllegalAction is wrapped by the panic raised when an action is valued
// in a state where it is not allowed. Callers check the Can* predicate first.
var ErrIllegalAction = errors.New("illegal action")

func illegal(a Action, st GameState, why string) error {
	return fmt.Errorf("%w: %v in %v: %s", ErrIllegalAction, a, st, why)
}

// Terminal reports whether the player may take no action but stand: six
// cards, or at least 21 with every ace counted low.
func Terminal(player shoe.Hand) bool {
	return player.Len() == score.CharlieCards || score.MinHandValue(player) >= score.BustThreshold
}

func CanHit(st GameState) bool {
	return !Terminal(st.Player)
}

func dealerShowsAce(st GameState) bool {
	return st.Dealer.Len() == 1 && st.Dealer.At(0) == shoe.Ace
}

func CanInsure(st GameState) bool {
	return dealerShowsAce(st) && st.Player.Len() == 2 && !st.FailedInsurance && !st.IsSplit
}

func CanSurrender(st GameState) bool {
	return st.Player.Len() == 2 && !st.FirstSplitHand && !st.FailedInsurance
}

// CanDouble allows doubling any two-card hand, split hands included.
func CanDouble(st GameState) bool {
	return st.Player.Len() == 2 && !st.FailedInsurance
}

func CanSplit(st GameState) bool {
	return st.Player.IsPair() && !st.IsSplit && !st.FailedInsurance
}

// Legal reports whether a is one of the player's options in st.
func Legal(st GameState, a Action) bool {
	if a == Stand {
		return true
	}
	if Terminal(st.Player) {
		return false
	}
	switch a {
	case Hit:
		return true
	case Double:
		return CanDouble(st)
	case Split:
		return CanSplit(st)
	case Insurance:
		return CanInsure(st)
	case Surrender:
		return CanSurrender(st)
	}
	return false
}

package engine

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/shoeval/shoe"
)

func deckOf(counts ...uint16) shoe.Deck {
	var c [shoe.NumRanks]uint16
	copy(c[:], counts)
	return shoe.NewDeck(c)
}

func tens(n uint16) shoe.Deck {
	return deckOf(0, 0, 0, 0, 0, 0, 0, 0, 0, n)
}

func state(player, dealer []shoe.Rank, deck shoe.Deck) GameState {
	return GameState{
		Player: shoe.NewHand(player...),
		Dealer: shoe.NewHand(dealer...),
		Deck:   deck,
	}
}

func r(ranks ...shoe.Rank) []shoe.Rank {
	return ranks
}

// smallSolver re-deals split hands from a tiny shoe so tests stay fast.
func smallSolver(opts ...Option) *Solver {
	return NewSolver(append([]Option{WithFullShoe(deckOf(0, 0, 0, 0, 0, 30))}, opts...)...)
}

func TestStandExpectation(t *testing.T) {
	is := is.New(t)
	s := NewSolver()
	full := shoe.Standard(shoe.DefaultDecks)

	is.Equal(s.Stand(state(r(1, 10), r(10, 10), full)), 1.5)
	is.Equal(s.Stand(state(r(10, 10), r(10, 10), full)), 0.0)
	is.Equal(s.Stand(state(r(10, 10, 10), r(10, 10), full)), -1.0)
	is.Equal(s.Stand(state(r(10, 10, 10), r(1, 10), full)), -1.0)
	is.Equal(s.Stand(state(r(1, 10), r(10), tens(1))), 1.5)
	is.Equal(s.Stand(state(r(10, 10), r(10), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 1, 1))), 0.5)
	is.Equal(s.Stand(state(r(10, 10), r(10, 5), deckOf(0, 0, 0, 0, 3, 0, 0, 0, 0, 1))), 0.25)
	is.Equal(s.Stand(state(r(10, 10), r(1), deckOf(4, 1))), -1.0)

	st := state(r(10, 10), r(1), deckOf(0, 0, 0, 0, 0, 0, 0, 1, 0, 1))
	st.FailedInsurance = true
	is.Equal(s.Stand(st), 1.0)
}

func TestDoubleExpectation(t *testing.T) {
	is := is.New(t)
	s := NewSolver()
	is.Equal(s.Double(state(r(10, 10), r(10, 10), tens(1))), -2.0)
	is.Equal(s.Double(state(r(5, 5), r(10, 9), tens(1))), 2.0)
	is.Equal(s.Double(state(r(5, 5), r(10), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 1, 1))), 0.0)

	assert.Panics(t, func() { s.Double(state(r(5, 5, 2), r(10), tens(4))) })
}

func TestHitExpectation(t *testing.T) {
	is := is.New(t)
	s := NewSolver()
	is.Equal(s.Hit(state(r(10, 10), r(10, 10), tens(1))), -1.0)
	is.Equal(s.Hit(state(r(5, 5), r(10, 9), tens(10))), 1.0)
	is.Equal(s.Hit(state(r(5, 5), r(10, 7), deckOf(0, 0, 0, 0, 3))), 1.0)

	st := state(r(1), r(10), deckOf(2, 4, 4, 4, 4, 4, 4, 4, 4, 15))
	st.IsSplit = true
	st.FirstSplitHand = true
	ev := s.Hit(st)
	is.True(ev < 3.5)
	is.True(ev > -1)
}

func TestInvalidHitExpectation(t *testing.T) {
	s := NewSolver()
	bust := state(r(10, 10, 10), r(10, 10), tens(1))
	assert.Panics(t, func() { s.Hit(bust) })

	err := func() (err error) {
		defer RecoverViolation(&err)
		s.Hit(bust)
		return nil
	}()
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestInsuranceExpectation(t *testing.T) {
	is := is.New(t)
	s := NewSolver()
	is.Equal(s.Insurance(state(r(10, 10), r(1), tens(10))), 0.0)
	is.Equal(s.Insurance(state(r(1, 10), r(1), shoe.Standard(shoe.DefaultDecks))), 1.0)
	is.Equal(s.Insurance(state(r(10, 6), r(1), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 4))), -1.5)
	is.Equal(s.Insurance(state(r(5, 5), r(1), deckOf(0, 0, 0, 0, 0, 0, 0, 2, 0, 2))), -0.25)
}

func TestInsurancePreconditions(t *testing.T) {
	s := NewSolver()
	assert.Panics(t, func() { s.Insurance(state(r(10, 10), r(10), tens(1))) })
	assert.Panics(t, func() { s.Insurance(state(r(10, 3, 2), r(1), tens(10))) })

	firstSplit := state(r(10, 3), r(1), tens(10))
	firstSplit.IsSplit = true
	firstSplit.FirstSplitHand = true
	assert.Panics(t, func() { s.Insurance(firstSplit) })

	split := state(r(10, 3), r(1, 10), tens(10))
	split.IsSplit = true
	assert.Panics(t, func() { s.Insurance(split) })
}

func TestSplitExpectation(t *testing.T) {
	is := is.New(t)

	// Every re-dealt card is a ten: each ace becomes a two-card 21 that
	// doubles into a winning 21 against the dealer's 17.
	s := NewSolver(WithFullShoe(tens(30)))
	is.Equal(s.Split(state(r(1, 1), r(7), tens(30))), 4.0)

	// Every re-dealt card is a six: each ten becomes 16, which surrenders.
	s = smallSolver()
	is.Equal(s.Split(state(r(10, 10), r(7), deckOf(0, 0, 0, 0, 0, 30))), -1.0)
}

func TestSplitUsesFullShoe(t *testing.T) {
	is := is.New(t)
	s := NewSolver(WithFullShoe(tens(30)))
	// The current deck has no tens at all, but the split hands are dealt
	// from the full shoe.
	st := state(r(1, 1), r(7), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 5))
	is.Equal(s.Split(st), 4.0)
	is.Equal(st.Player.Ranks(), []shoe.Rank{1, 1})
}

func TestSplitPreconditions(t *testing.T) {
	s := smallSolver()
	assert.Panics(t, func() { s.Split(state(r(3, 3, 2), r(1), tens(10))) })
	assert.Panics(t, func() { s.Split(state(r(2, 3), r(1), tens(10))) })

	isSplit := state(r(2, 2), r(1), tens(10))
	isSplit.IsSplit = true
	assert.Panics(t, func() { s.Split(isSplit) })

	failed := state(r(2, 2), r(1), tens(10))
	failed.FailedInsurance = true
	assert.Panics(t, func() { s.Split(failed) })

	err := func() (err error) {
		defer RecoverViolation(&err)
		s.Split(state(r(2, 3), r(1), tens(10)))
		return nil
	}()
	is := is.New(t)
	is.True(errors.Is(err, ErrIllegalAction))
}

func TestSurrender(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	is.Equal(s.Surrender(state(r(10, 6), r(10), tens(3))), SurrenderValue)

	first := state(r(10, 6), r(10), tens(3))
	first.FirstSplitHand = true
	assert.Panics(t, func() { s.Surrender(first) })
}

func TestExpectationTerminal(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	// hard 21 can only stand
	st := state(r(10, 5, 6), r(10), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 1, 1))
	is.Equal(s.Expectation(st), s.Stand(st))
	// six cards is terminal even under 21
	st = state(r(2, 2, 2, 2, 3, 3), r(10), tens(3))
	is.Equal(s.Expectation(st), 1.0)
}

func TestExpectationPicksSurrender(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	// 16 against a made 20 with only tens left: every option but surrender
	// loses the whole bet.
	is.Equal(s.Expectation(state(r(10, 6), r(10, 10), tens(5))), SurrenderValue)
}

func TestBestAction(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	is.Equal(s.BestAction(state(r(5, 5), r(10, 9), tens(1))), Double)
	is.Equal(s.BestAction(state(r(10, 10), r(10, 7), tens(1))), Stand)
	is.Equal(s.BestAction(state(r(5, 5, 2), r(10, 9), deckOf(0, 0, 0, 0, 0, 0, 3))), Hit)
	// all-ten re-deals make split aces worth 4
	s = NewSolver(WithFullShoe(tens(30)))
	is.Equal(s.BestAction(state(r(1, 1), r(7), tens(30))), Split)
}

func TestBestActionAlwaysLegal(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	deck := deckOf(2, 1, 1, 2, 1, 1, 1, 1, 1, 4)
	for _, p1 := range shoe.Ranks {
		for _, p2 := range shoe.Ranks {
			for _, up := range shoe.Ranks {
				st := state(r(p1, p2), r(up), shoe.Standard(1))
				st.Deck = deck
				a := s.BestAction(st)
				is.True(Legal(st, a))
				for _, av := range s.Actions(st) {
					is.True(Legal(st, av.Action))
				}
			}
		}
	}
}

func TestMemoMatchesPlainSearch(t *testing.T) {
	is := is.New(t)
	memo := smallSolver()
	plain := smallSolver(WithoutMemo())
	is.True(plain.Table() == nil)
	deck := deckOf(2, 1, 1, 2, 1, 1, 1, 1, 1, 4)
	for _, up := range []shoe.Rank{1, 6, 10} {
		for _, p := range [][]shoe.Rank{r(10, 6), r(5, 5), r(8, 8), r(1, 7)} {
			st := state(p, r(up), deck)
			is.Equal(memo.Expectation(st), plain.Expectation(st))
		}
	}
	stats := memo.Table().Stats()
	is.True(stats.Hits > 0)
	is.True(stats.Created > 0)
	is.True(memo.Nodes() < plain.Nodes())
}

func TestEvaluateAndAdvise(t *testing.T) {
	is := is.New(t)
	s := smallSolver()
	st := state(r(5, 5), r(10, 9), tens(1))
	ev, err := s.Evaluate(st)
	is.NoErr(err)
	is.Equal(ev, 2.0)

	adv, err := s.Advise(st)
	is.NoErr(err)
	is.Equal(adv.Best, Double)
	is.Equal(adv.Expectation, 2.0)
	is.Equal(adv.Actions, []ActionValue{
		{Stand, -1}, {Hit, 1}, {Double, 2}, {Split, -1}, {Surrender, SurrenderValue},
	})

	_, err = s.Advise(state(r(10, 10, 10), r(10), tens(1)))
	is.True(errors.Is(err, ErrIllegalAction))
}

func TestRecoverViolationRepanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer RecoverViolation(&err)
		panic("boom")
	})
}

func TestNewGameState(t *testing.T) {
	is := is.New(t)
	st := NewGameState(shoe.Standard(1), shoe.NewHand(10, 6), shoe.NewHand(1))
	is.Equal(st.Deck.Size(), 49)
	is.Equal(st.Deck.Count(shoe.Ten), 15)
	is.Equal(st.Deck.Count(shoe.Ace), 3)
	is.Equal(st.String(), "<player 06 dealer 1 deck 34444344415>")
}

func BenchmarkExpectationSixDeckSlice(b *testing.B) {
	deck := deckOf(4, 4, 4, 4, 4, 4, 4, 4, 4, 16)
	for i := 0; i < b.N; i++ {
		s := smallSolver()
		s.Expectation(state(r(10, 6), r(10), deck))
	}
}

package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/dealer"
	"github.com/domino14/shoeval/score"
	"github.com/domino14/shoeval/shoe"
)

const (
	// SurrenderValue is the fixed return of giving up half the bet.
	SurrenderValue = -0.5
	// InsuranceCost is the side bet, half the original bet.
	InsuranceCost = 0.5

	DefaultTableFraction = 0.25
)

// Solver values game states by exhaustive enumeration. A Solver is safe for
// concurrent use; all mutable state lives in the (locked) transposition
// table and atomic counters.
type Solver struct {
	fullShoe shoe.Deck
	table    *TranspositionTable
	noMemo   bool

	nodes atomic.Uint64
}

type Option func(*Solver)

// WithFullShoe sets the shoe that split hands are re-dealt from.
func WithFullShoe(d shoe.Deck) Option {
	return func(s *Solver) {
		s.fullShoe = d
	}
}

// WithTable shares a transposition table between solvers. Only share tables
// between solvers that have the same full shoe.
func WithTable(t *TranspositionTable) Option {
	return func(s *Solver) {
		s.table = t
	}
}

// WithoutMemo turns off memoization. Results are identical, only slower.
func WithoutMemo() Option {
	return func(s *Solver) {
		s.noMemo = true
	}
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{fullShoe: shoe.Standard(shoe.DefaultDecks)}
	for _, opt := range opts {
		opt(s)
	}
	if s.noMemo {
		s.table = nil
	} else if s.table == nil {
		s.table = NewTranspositionTable(DefaultTableFraction)
	}
	return s
}

func (s *Solver) FullShoe() shoe.Deck {
	return s.fullShoe
}

func (s *Solver) Table() *TranspositionTable {
	return s.table
}

// Nodes is the number of expectation nodes visited so far.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Stand is the value of standing now: the player's score settled against
// every dealer outcome.
func (s *Solver) Stand(st GameState) float64 {
	ps := score.Of(st.Player)
	if ps == score.Bust {
		return -1
	}
	var key tableKey
	if s.table != nil {
		key = standKey(st, ps)
		if v, ok := s.table.lookup(key); ok {
			return v
		}
	}
	dist := dealer.Scores(st.Deck, st.Dealer, st.FailedInsurance)
	v := dist.Expectation(ps)
	if s.table != nil {
		s.table.store(key, v)
	}
	return v
}

// Hit is the value of taking one card and then playing on optimally.
func (s *Solver) Hit(st GameState) float64 {
	if score.Of(st.Player) == score.Bust {
		panic(illegal(Hit, st, "player is bust"))
	}
	if st.Player.Len() == shoe.MaxHandSize {
		panic(illegal(Hit, st, "player hand is full"))
	}
	ev := 0.0
	for _, r := range shoe.Ranks {
		p := st.Deck.CardProb(r, false)
		if p == 0 {
			continue
		}
		next := st
		next.Deck.DrawTo(&next.Player, r)
		ev += p * s.Expectation(next)
	}
	return ev
}

// Double is the value of doubling the bet and taking exactly one card.
func (s *Solver) Double(st GameState) float64 {
	if !CanDouble(st) {
		panic(illegal(Double, st, "need two cards and no lost insurance"))
	}
	ev := 0.0
	for _, r := range shoe.Ranks {
		p := st.Deck.CardProb(r, false)
		if p == 0 {
			continue
		}
		next := st
		next.Deck.DrawTo(&next.Player, r)
		ev += p * s.Stand(next)
	}
	return 2 * ev
}

// Insurance is the value of taking insurance against a dealer ace and then
// playing on optimally. When the hole card is a ten the side bet and the main
// bet cancel out, so only the other branch contributes.
func (s *Solver) Insurance(st GameState) float64 {
	if !dealerShowsAce(st) || st.Player.Len() != 2 || st.IsSplit {
		panic(illegal(Insurance, st, "need a dealer ace, two player cards and no split"))
	}
	if score.Of(st.Player) == score.Natural {
		return 1
	}
	if st.Deck.Size() == st.Deck.Count(shoe.Ten) {
		return 0
	}
	pTen := st.Deck.CardProb(shoe.Ten, false)
	lost := st
	lost.FailedInsurance = true
	return (1 - pTen) * (s.Expectation(lost) - InsuranceCost)
}

// Split is the value of splitting a pair. Each half is valued as a single
// card that must draw, re-dealt from the full shoe rather than from what is
// left of the current deck.
func (s *Solver) Split(st GameState) float64 {
	if !CanSplit(st) {
		panic(illegal(Split, st, "need a pair, no previous split and no lost insurance"))
	}
	half := st
	half.Player.Pop()
	half.IsSplit = true
	half.Deck = s.fullShoe
	return 2 * s.Hit(half)
}

// Surrender gives up half the bet.
func (s *Solver) Surrender(st GameState) float64 {
	if !CanSurrender(st) {
		panic(illegal(Surrender, st, "need two cards, not the first split hand, no lost insurance"))
	}
	return SurrenderValue
}

// Expectation is the value of the state under optimal play: the best of
// every action available.
func (s *Solver) Expectation(st GameState) float64 {
	s.nodes.Add(1)
	var key tableKey
	if s.table != nil {
		key = expectationKey(st)
		if v, ok := s.table.lookup(key); ok {
			return v
		}
	}
	best := s.Stand(st)
	if !Terminal(st.Player) {
		if CanInsure(st) {
			best = max(best, s.Insurance(st))
		}
		if CanSurrender(st) {
			best = max(best, SurrenderValue)
		}
		if CanDouble(st) {
			best = max(best, s.Double(st))
		}
		if CanSplit(st) {
			best = max(best, s.Split(st))
		}
		best = max(best, s.Hit(st))
	}
	if s.table != nil {
		s.table.store(key, best)
	}
	return best
}

// Value is the expected return of a single action.
func (s *Solver) Value(st GameState, a Action) float64 {
	switch a {
	case Stand:
		return s.Stand(st)
	case Hit:
		return s.Hit(st)
	case Double:
		return s.Double(st)
	case Split:
		return s.Split(st)
	case Insurance:
		return s.Insurance(st)
	case Surrender:
		return s.Surrender(st)
	}
	panic(illegal(a, st, "unknown action"))
}

// BestAction picks among Stand, Hit, Double and Split, checked in that
// order. A later action must be strictly better to replace an earlier one.
func (s *Solver) BestAction(st GameState) Action {
	best, bestEV := Stand, s.Stand(st)
	for _, a := range []Action{Hit, Double, Split} {
		if !Legal(st, a) {
			continue
		}
		if ev := s.Value(st, a); ev > bestEV {
			best, bestEV = a, ev
		}
	}
	return best
}

// Actions values every legal action, in Action order.
func (s *Solver) Actions(st GameState) []ActionValue {
	var avs []ActionValue
	for _, a := range []Action{Stand, Hit, Double, Split, Insurance, Surrender} {
		if Legal(st, a) {
			avs = append(avs, ActionValue{Action: a, Value: s.Value(st, a)})
		}
	}
	return avs
}

// RecoverViolation, deferred, turns a panic raised for an illegal action or a
// broken shoe invariant into an error. Anything else keeps panicking.
func RecoverViolation(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && (errors.Is(e, ErrIllegalAction) || errors.Is(e, shoe.ErrInvariant)) {
		*err = e
		return
	}
	panic(r)
}

// Evaluate is Expectation for callers that want an error rather than a
// panic on a malformed state.
func (s *Solver) Evaluate(st GameState) (ev float64, err error) {
	defer RecoverViolation(&err)
	start := s.nodes.Load()
	ev = s.Expectation(st)
	log.Debug().Str("state", st.String()).Float64("ev", ev).
		Uint64("nodes", s.nodes.Load()-start).Msg("evaluated")
	return ev, nil
}

// Advice is the outcome of a single-hand query.
type Advice struct {
	Best        Action        `json:"best" yaml:"best"`
	Expectation float64       `json:"expectation" yaml:"expectation"`
	Actions     []ActionValue `json:"actions" yaml:"actions"`
}

// Advise values every legal action of st and picks the best of Stand, Hit,
// Double and Split.
func (s *Solver) Advise(st GameState) (adv Advice, err error) {
	defer RecoverViolation(&err)
	if score.Of(st.Player) == score.Bust {
		return adv, fmt.Errorf("%w: player hand %v is bust", ErrIllegalAction, st.Player)
	}
	adv.Actions = s.Actions(st)
	adv.Best = s.BestAction(st)
	adv.Expectation = s.Expectation(st)
	return adv, nil
}

// Package equity values whole shoes: the expected return of the next round
// dealt from a known composition, played perfectly.
package equity

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
)

// StartingHand is one unordered two-card player start and its share of the
// shoe's expectation.
type StartingHand struct {
	Hand string `json:"hand" yaml:"hand"`
	// Weight is the probability of being dealt this pair in either order.
	Weight float64 `json:"weight" yaml:"weight"`
	// Expectation is the value of the pair averaged over the dealer up-card.
	Expectation float64 `json:"expectation" yaml:"expectation"`

	first, second shoe.Rank
}

// Contribution is the hand's weighted share of the shoe expectation.
func (h StartingHand) Contribution() float64 {
	return h.Weight * h.Expectation
}

// Report breaks a shoe's expectation down by starting hand.
type Report struct {
	Deck        string         `json:"deck" yaml:"deck"`
	Expectation float64        `json:"expectation" yaml:"expectation"`
	Hands       []StartingHand `json:"hands" yaml:"hands"`
	Nodes       uint64         `json:"nodes" yaml:"nodes"`
	Elapsed     time.Duration  `json:"elapsed" yaml:"elapsed"`
}

// startingHands lists every pair first <= second that can be dealt from the
// deck, weighted by the probability of drawing it in either order.
func startingHands(deck shoe.Deck) []StartingHand {
	var hands []StartingHand
	for _, c1 := range shoe.Ranks {
		p1 := deck.CardProb(c1, false)
		if p1 == 0 {
			continue
		}
		rest := deck.Without(c1)
		for _, c2 := range shoe.Ranks[c1.Index():] {
			p2 := rest.CardProb(c2, false)
			if p2 == 0 {
				continue
			}
			w := p1 * p2
			if c1 != c2 {
				w *= 2
			}
			hands = append(hands, StartingHand{
				Hand:   shoe.NewHand(c1, c2).String(),
				Weight: w,
				first:  c1,
				second: c2,
			})
		}
	}
	return hands
}

// PlayerHandExpectation values a player hand that has been dealt but whose
// dealer up-card has not: the up-card is drawn from st.Deck.
func PlayerHandExpectation(s *engine.Solver, st engine.GameState) float64 {
	ev := 0.0
	for _, up := range shoe.Ranks {
		p := st.Deck.CardProb(up, false)
		if p == 0 {
			continue
		}
		next := st
		next.Deck.DrawTo(&next.Dealer, up)
		ev += p * s.Expectation(next)
	}
	return ev
}

func handExpectation(s *engine.Solver, deck shoe.Deck, h StartingHand) (ev float64, err error) {
	defer engine.RecoverViolation(&err)
	st := engine.GameState{
		Player: shoe.NewHand(h.first, h.second),
		Deck:   deck.Without(h.first, h.second),
	}
	return PlayerHandExpectation(s, st), nil
}

// Breakdown values every starting hand of the deck on up to threads
// goroutines. The total is summed in a fixed order, so it does not depend on
// the number of threads.
func Breakdown(ctx context.Context, s *engine.Solver, deck shoe.Deck, threads int) (*Report, error) {
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	if deck.Size() < 2 {
		return nil, fmt.Errorf("deck %v has fewer than two cards", deck)
	}
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	startNodes := s.Nodes()

	hands := startingHands(deck)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := range hands {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ev, err := handExpectation(s, deck, hands[i])
			if err != nil {
				return fmt.Errorf("hand %s: %w", hands[i].Hand, err)
			}
			hands[i].Expectation = ev
			logger.Trace().Str("hand", hands[i].Hand).Float64("ev", ev).Msg("starting-hand")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contribs := make([]float64, len(hands))
	for i, h := range hands {
		contribs[i] = h.Contribution()
	}
	r := &Report{
		Deck:        deck.String(),
		Expectation: floats.SumCompensated(contribs),
		Hands:       hands,
		Nodes:       s.Nodes() - startNodes,
		Elapsed:     time.Since(start),
	}
	logger.Debug().Str("deck", r.Deck).Float64("ev", r.Expectation).
		Uint64("nodes", r.Nodes).Dur("elapsed", r.Elapsed).Msg("deck-expectation")
	return r, nil
}

// DeckExpectation is the expected return per unit bet of one round dealt
// from deck under optimal play.
func DeckExpectation(s *engine.Solver, deck shoe.Deck) (float64, error) {
	r, err := Breakdown(context.Background(), s, deck, 1)
	if err != nil {
		return 0, err
	}
	return r.Expectation, nil
}

// RemovalEffect is the shoe expectation after one card of Rank is removed.
type RemovalEffect struct {
	Rank        string  `json:"rank" yaml:"rank"`
	Expectation float64 `json:"expectation" yaml:"expectation"`
	// Delta is the change from the unmodified shoe.
	Delta float64 `json:"delta" yaml:"delta"`
}

// RemovalEffects values the shoe itself and then the shoe with one card of
// each rank taken out. The first entry, with an empty Rank, is the shoe
// itself. Ranks with no cards left are skipped.
func RemovalEffects(ctx context.Context, s *engine.Solver, deck shoe.Deck, threads int) (Effects, error) {
	base, err := Breakdown(ctx, s, deck, threads)
	if err != nil {
		return nil, err
	}
	effects := Effects{{Expectation: base.Expectation}}
	for _, r := range shoe.Ranks {
		if deck.Count(r) == 0 {
			continue
		}
		rep, err := Breakdown(ctx, s, deck.Without(r), threads)
		if err != nil {
			return nil, fmt.Errorf("without %v: %w", r, err)
		}
		effects = append(effects, RemovalEffect{
			Rank:        r.String(),
			Expectation: rep.Expectation,
			Delta:       rep.Expectation - base.Expectation,
		})
	}
	return effects, nil
}

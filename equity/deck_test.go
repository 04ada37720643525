package equity

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
)

func deckOf(counts ...uint16) shoe.Deck {
	var c [shoe.NumRanks]uint16
	copy(c[:], counts)
	return shoe.NewDeck(c)
}

var (
	allTens = deckOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 20)
	mixed   = deckOf(2, 1, 1, 1, 2, 1, 1, 1, 1, 5)
)

func solverFor(full shoe.Deck) *engine.Solver {
	return engine.NewSolver(engine.WithFullShoe(full))
}

func TestStartingHandWeights(t *testing.T) {
	is := is.New(t)
	hands := startingHands(mixed)
	total := 0.0
	for _, h := range hands {
		total += h.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	// 2 and 3 are singletons, so 22 and 33 cannot be dealt.
	names := make([]string, len(hands))
	for i, h := range hands {
		names[i] = h.Hand
	}
	is.True(!strings.Contains(strings.Join(names, " "), "22"))
	is.True(!strings.Contains(strings.Join(names, " "), "33"))
	is.Equal(names[0], "11")
	is.Equal(names[len(names)-1], "00")

	is.Equal(len(startingHands(allTens)), 1)
	is.Equal(startingHands(allTens)[0].Weight, 1.0)
}

func TestDeckExpectationAllTens(t *testing.T) {
	is := is.New(t)
	// Every round is 20 against 20: standing pushes and nothing beats it.
	ev, err := DeckExpectation(solverFor(allTens), allTens)
	is.NoErr(err)
	is.Equal(ev, 0.0)
}

func TestBreakdownIndependentOfThreads(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	one, err := Breakdown(ctx, solverFor(mixed), mixed, 1)
	is.NoErr(err)
	many, err := Breakdown(ctx, solverFor(mixed), mixed, 4)
	is.NoErr(err)
	is.Equal(one.Expectation, many.Expectation)
	is.Equal(len(one.Hands), len(many.Hands))
	for i := range one.Hands {
		is.Equal(one.Hands[i].Hand, many.Hands[i].Hand)
		is.Equal(one.Hands[i].Expectation, many.Hands[i].Expectation)
	}

	ev, err := DeckExpectation(solverFor(mixed), mixed)
	is.NoErr(err)
	is.Equal(ev, one.Expectation)

	sum := 0.0
	for _, h := range one.Hands {
		sum += h.Contribution()
	}
	assert.InDelta(t, one.Expectation, sum, 1e-12)
	is.True(one.Expectation > -1.0 && one.Expectation < 1.5)
}

func TestPlayerHandExpectation(t *testing.T) {
	is := is.New(t)
	s := solverFor(allTens)
	st := engine.GameState{
		Player: shoe.NewHand(shoe.Ten, shoe.Ten),
		Deck:   deckOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 10),
	}
	is.Equal(PlayerHandExpectation(s, st), 0.0)

	// Against a dealer 20, doubling a natural into a three-card 21 wins
	// twice the bet, which beats standing for 1.5.
	st = engine.GameState{
		Player: shoe.NewHand(shoe.Ace, shoe.Ten),
		Deck:   deckOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 10),
	}
	is.Equal(PlayerHandExpectation(s, st), 2.0)
}

func TestBreakdownErrors(t *testing.T) {
	is := is.New(t)
	_, err := Breakdown(context.Background(), solverFor(allTens), deckOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 1), 1)
	is.True(err != nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Breakdown(ctx, solverFor(mixed), mixed, 2)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "context canceled"))
}

func TestRemovalEffects(t *testing.T) {
	is := is.New(t)
	effects, err := RemovalEffects(context.Background(), solverFor(allTens), allTens, 2)
	is.NoErr(err)
	is.Equal(len(effects), 2)
	is.Equal(effects[0].Rank, "")
	is.Equal(effects[1], RemovalEffect{Rank: "T", Expectation: 0, Delta: 0})

	effects, err = RemovalEffects(context.Background(), solverFor(mixed), mixed, 2)
	is.NoErr(err)
	is.Equal(len(effects), 11)
	for _, e := range effects[1:] {
		assert.InDelta(t, effects[0].Expectation+e.Delta, e.Expectation, 1e-12)
	}
	is.True(strings.Contains(effects.String(), "Delta"))
}

func TestStrategyChart(t *testing.T) {
	is := is.New(t)
	c, err := StrategyChart(solverFor(allTens), allTens)
	is.NoErr(err)
	is.Equal(len(c.Rows), 1)
	is.Equal(c.Rows[0].Hand, "00")
	is.Equal(c.Rows[0].Cells, []ChartCell{{Up: "T", Best: engine.Stand, Expectation: 0}})
	is.True(strings.Contains(c.String(), "00   .  .  .  .  .  .  .  .  .  S"))

	c, err = StrategyChart(solverFor(mixed), mixed)
	is.NoErr(err)
	for _, row := range c.Rows {
		for _, cell := range row.Cells {
			is.True(cell.Best != engine.Insurance && cell.Best != engine.Surrender)
		}
	}
}

func TestRender(t *testing.T) {
	is := is.New(t)
	c, err := StrategyChart(solverFor(allTens), allTens)
	is.NoErr(err)

	out, err := Render(c, FormatYAML)
	is.NoErr(err)
	var back Chart
	is.NoErr(yaml.Unmarshal([]byte(out), &back))
	is.Equal(back.Rows[0].Cells[0].Best, engine.Stand)
	is.True(strings.Contains(out, "best: Stand"))

	out, err = Render(c, FormatJSON)
	is.NoErr(err)
	is.True(json.Valid([]byte(out)))
	is.True(strings.Contains(out, `"best": "Stand"`))

	out, err = Render(c, FormatText)
	is.NoErr(err)
	is.Equal(out, c.String())

	_, err = Render(c, "xml")
	is.True(err != nil)
}

package bot

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
)

func testBot() *Bot {
	full, _ := shoe.ParseDeck("00000000020")
	return NewBot(engine.NewSolver(engine.WithFullShoe(full)), 2)
}

func ask(t *testing.T, b *Bot, req Request) *Response {
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return b.handle(context.Background(), data)
}

func TestHandRequest(t *testing.T) {
	is := is.New(t)
	resp := ask(t, testBot(), Request{Kind: KindHand, Deck: "00000000001", Player: "55", Dealer: "09"})
	is.Equal(resp.Error, "")
	is.Equal(resp.Best, "Double")
	is.Equal(resp.Expectation, 2.0)
	is.Equal(resp.Actions[0], engine.ActionValue{Action: engine.Stand, Value: -1})
}

func TestHandRequestRemoveDealt(t *testing.T) {
	is := is.New(t)
	// 20 against a dealer ten with every other card a ten
	resp := ask(t, testBot(), Request{Kind: KindHand, Deck: "00000000020", Player: "00", Dealer: "0", RemoveDealt: true})
	is.Equal(resp.Error, "")
	is.Equal(resp.Best, "Stand")
	is.Equal(resp.Expectation, 0.0)

	// the deck does not hold the dealt cards
	resp = ask(t, testBot(), Request{Kind: KindHand, Deck: "0000000002", Player: "00", Dealer: "0", RemoveDealt: true})
	is.True(strings.HasPrefix(resp.Error, "Bad hand"))
}

func TestHandRequestErrors(t *testing.T) {
	is := is.New(t)
	b := testBot()
	is.True(strings.HasPrefix(b.handle(context.Background(), []byte("{")).Error, "Could not parse request"))
	is.True(strings.HasPrefix(ask(t, b, Request{Kind: KindHand, Player: "55"}).Error, "Bad hand"))
	is.True(strings.HasPrefix(ask(t, b, Request{Kind: KindHand, Player: "5x", Dealer: "9"}).Error, "Bad hand"))
	is.True(strings.HasPrefix(ask(t, b, Request{Kind: KindHand, Player: "000", Dealer: "9"}).Error, "Could not evaluate"))
	is.Equal(ask(t, b, Request{Kind: "poker"}).Error, `Unknown request kind "poker"`)
}

func TestShoeRequests(t *testing.T) {
	is := is.New(t)
	b := testBot()
	resp := ask(t, b, Request{Kind: KindShoe})
	is.Equal(resp.Error, "")
	is.Equal(resp.Expectation, 0.0)
	is.Equal(len(resp.Hands), 1)

	resp = ask(t, b, Request{Kind: KindRemoval, Deck: "00000000018"})
	is.Equal(resp.Error, "")
	is.Equal(len(resp.Effects), 2)

	resp = ask(t, b, Request{Kind: KindChart})
	is.Equal(resp.Error, "")
	is.Equal(resp.Chart.Rows[0].Cells[0].Best, engine.Stand)

	is.True(strings.HasPrefix(ask(t, b, Request{Kind: KindShoe, Deck: "12"}).Error, "Bad deck"))
}

func TestResponseJSON(t *testing.T) {
	is := is.New(t)
	resp := ask(t, testBot(), Request{Kind: KindHand, Deck: "00000000001", Player: "55", Dealer: "09"})
	data, err := json.Marshal(resp)
	is.NoErr(err)
	is.True(strings.Contains(string(data), `"action":"Double","value":2`))
}

// Package bot answers blackjack queries sent over NATS.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/equity"
	"github.com/domino14/shoeval/shoe"
)

const (
	KindHand    = "hand"
	KindShoe    = "shoe"
	KindRemoval = "removal"
	KindChart   = "chart"
)

// Request is the JSON body of a query.
type Request struct {
	Kind string `json:"kind"`
	// Deck is the shoe in compact form. Empty means the full shoe.
	Deck   string `json:"deck,omitempty"`
	Player string `json:"player,omitempty"`
	Dealer string `json:"dealer,omitempty"`
	// RemoveDealt deals the player and dealer cards out of Deck first.
	RemoveDealt     bool `json:"remove_dealt,omitempty"`
	FailedInsurance bool `json:"failed_insurance,omitempty"`
	IsSplit         bool `json:"is_split,omitempty"`
	FirstSplitHand  bool `json:"first_split_hand,omitempty"`
}

// Response is the JSON reply. Error is set when the query failed.
type Response struct {
	Error       string                `json:"error,omitempty"`
	Expectation float64               `json:"expectation"`
	Best        string                `json:"best,omitempty"`
	Actions     []engine.ActionValue  `json:"actions,omitempty"`
	Hands       []equity.StartingHand `json:"hands,omitempty"`
	Effects     equity.Effects        `json:"effects,omitempty"`
	Chart       *equity.Chart         `json:"chart,omitempty"`
}

type Bot struct {
	solver  *engine.Solver
	threads int
}

func NewBot(solver *engine.Solver, threads int) *Bot {
	return &Bot{solver: solver, threads: threads}
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

func (bot *Bot) deck(req *Request) (shoe.Deck, error) {
	if req.Deck == "" {
		return bot.solver.FullShoe(), nil
	}
	return shoe.ParseDeck(req.Deck)
}

func (bot *Bot) state(req *Request) (engine.GameState, error) {
	deck, err := bot.deck(req)
	if err != nil {
		return engine.GameState{}, err
	}
	player, err := shoe.ParseHand(req.Player)
	if err != nil {
		return engine.GameState{}, err
	}
	dealer, err := shoe.ParseHand(req.Dealer)
	if err != nil {
		return engine.GameState{}, err
	}
	if player.Len() == 0 || dealer.Len() == 0 {
		return engine.GameState{}, errors.New("player and dealer hands are required")
	}
	st := engine.GameState{Player: player, Dealer: dealer, Deck: deck}
	if req.RemoveDealt {
		err = func() (err error) {
			defer engine.RecoverViolation(&err)
			st = engine.NewGameState(deck, player, dealer)
			return nil
		}()
		if err != nil {
			return engine.GameState{}, err
		}
	}
	st.FailedInsurance = req.FailedInsurance
	st.IsSplit = req.IsSplit
	st.FirstSplitHand = req.FirstSplitHand
	return st, nil
}

func (bot *Bot) handle(ctx context.Context, data []byte) *Response {
	req := &Request{}
	if err := json.Unmarshal(data, req); err != nil {
		return errorResponse("Could not parse request", err)
	}
	switch req.Kind {
	case KindHand:
		st, err := bot.state(req)
		if err != nil {
			return errorResponse("Bad hand", err)
		}
		adv, err := bot.solver.Advise(st)
		if err != nil {
			return errorResponse("Could not evaluate", err)
		}
		return &Response{Expectation: adv.Expectation, Best: adv.Best.String(), Actions: adv.Actions}
	case KindShoe:
		deck, err := bot.deck(req)
		if err != nil {
			return errorResponse("Bad deck", err)
		}
		rep, err := equity.Breakdown(ctx, bot.solver, deck, bot.threads)
		if err != nil {
			return errorResponse("Could not evaluate", err)
		}
		return &Response{Expectation: rep.Expectation, Hands: rep.Hands}
	case KindRemoval:
		deck, err := bot.deck(req)
		if err != nil {
			return errorResponse("Bad deck", err)
		}
		effects, err := equity.RemovalEffects(ctx, bot.solver, deck, bot.threads)
		if err != nil {
			return errorResponse("Could not evaluate", err)
		}
		return &Response{Expectation: effects[0].Expectation, Effects: effects}
	case KindChart:
		deck, err := bot.deck(req)
		if err != nil {
			return errorResponse("Bad deck", err)
		}
		chart, err := equity.StrategyChart(bot.solver, deck)
		if err != nil {
			return errorResponse("Could not evaluate", err)
		}
		return &Response{Chart: chart}
	}
	return errorResponse(fmt.Sprintf("Unknown request kind %q", req.Kind), nil)
}

func connect(url string, logger zerolog.Logger) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url)
			return err
		},
		retry.Attempts(5),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			logger.Err(err).Uint("n", n).Msg("could-not-connect-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	return nc, err
}

// Main answers requests on channel until ctx is done.
func Main(ctx context.Context, url, channel string, bot *Bot) error {
	logger := zerolog.Ctx(ctx)
	nc, err := connect(url, *logger)
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		resp := bot.handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// Should never happen, ideally, but we need to do something sensible here.
			m.Respond([]byte(err.Error()))
			return
		}
		m.Respond(data)
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	nc.Flush()

	if err := nc.LastError(); err != nil {
		return err
	}

	logger.Info().Msgf("Listening on [%s]", channel)
	<-ctx.Done()
	logger.Info().Msg("exiting")
	return nil
}

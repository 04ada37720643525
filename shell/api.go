package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/equity"
	"github.com/domino14/shoeval/shoe"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) dispatch(ctx context.Context, cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "deck":
		return sc.setDeck(cmd)
	case "full":
		sc.deck = sc.solver.FullShoe()
		sc.state = nil
		return msg(sc.stateDisplay()), nil
	case "remove":
		return sc.remove(cmd)
	case "hand":
		return sc.hand(cmd)
	case "best":
		return sc.best()
	case "actions":
		return sc.actions()
	case "shoe":
		return sc.shoe(ctx, cmd)
	case "removal":
		return sc.removal(ctx, cmd)
	case "chart":
		return sc.chart()
	case "set":
		return sc.set(cmd)
	case "s":
		return msg(sc.stateDisplay()), nil
	}
	return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
}

func (sc *ShellController) setDeck(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.stateDisplay()), nil
	}
	d, err := shoe.ParseDeck(strings.Join(cmd.args, ""))
	if err != nil {
		return nil, err
	}
	sc.deck = d
	sc.state = nil
	return msg(sc.stateDisplay()), nil
}

func (sc *ShellController) remove(cmd *shellcmd) (resp *Response, err error) {
	if len(cmd.args) != 1 {
		return nil, fmt.Errorf("usage: remove <cards>")
	}
	h, err := shoe.ParseHand(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer engine.RecoverViolation(&err)
	sc.deck = sc.deck.Without(h.Ranks()...)
	sc.state = nil
	return msg(sc.stateDisplay()), nil
}

// hand sets the position to query. The cards are dealt out of the current
// deck unless -dealt false says the deck no longer holds them.
func (sc *ShellController) hand(cmd *shellcmd) (resp *Response, err error) {
	if len(cmd.args) != 2 {
		return nil, fmt.Errorf("usage: hand <player> <dealer> [-dealt true|false] [-failed true] [-split true] [-first true]")
	}
	player, err := shoe.ParseHand(cmd.args[0])
	if err != nil {
		return nil, err
	}
	dealer, err := shoe.ParseHand(cmd.args[1])
	if err != nil {
		return nil, err
	}
	if player.Len() == 0 || dealer.Len() == 0 {
		return nil, fmt.Errorf("player and dealer need at least one card")
	}
	dealt := true
	var failed, split, first bool
	for k, p := range map[string]*bool{"dealt": &dealt, "failed": &failed, "split": &split, "first": &first} {
		if _, ok := cmd.options[k]; !ok {
			continue
		}
		v, err := strconv.ParseBool(cmd.options[k])
		if err != nil {
			return nil, fmt.Errorf("-%s: %w", k, err)
		}
		*p = v
	}

	defer engine.RecoverViolation(&err)
	st := engine.GameState{Player: player, Dealer: dealer, Deck: sc.deck}
	if dealt {
		st = engine.NewGameState(sc.deck, player, dealer)
	}
	st.FailedInsurance, st.IsSplit, st.FirstSplitHand = failed, split, first
	sc.state = &st
	return msg(sc.stateDisplay()), nil
}

func (sc *ShellController) best() (*Response, error) {
	if sc.state == nil {
		return nil, errNoHand
	}
	adv, err := sc.solver.Advise(*sc.state)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("Best: %v (%.6f)", adv.Best, sc.solver.Value(*sc.state, adv.Best))), nil
}

type actionList engine.Advice

func (a actionList) String() string {
	var sb strings.Builder
	for _, av := range a.Actions {
		marker := " "
		if av.Action == a.Best {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %-10s %+.6f\n", marker, av.Action, av.Value)
	}
	fmt.Fprintf(&sb, "Expectation: %+.6f\n", a.Expectation)
	return sb.String()
}

func (sc *ShellController) actions() (*Response, error) {
	if sc.state == nil {
		return nil, errNoHand
	}
	adv, err := sc.solver.Advise(*sc.state)
	if err != nil {
		return nil, err
	}
	if sc.outputFormat == equity.FormatText || sc.outputFormat == "" {
		return msg(actionList(adv).String()), nil
	}
	return sc.render(adv)
}

func (sc *ShellController) threadsOption(cmd *shellcmd) (int, error) {
	v, ok := cmd.options["threads"]
	if !ok {
		return sc.threads, nil
	}
	return strconv.Atoi(v)
}

func (sc *ShellController) shoe(ctx context.Context, cmd *shellcmd) (*Response, error) {
	threads, err := sc.threadsOption(cmd)
	if err != nil {
		return nil, err
	}
	rep, err := equity.Breakdown(ctx, sc.solver, sc.deck, threads)
	if err != nil {
		return nil, err
	}
	return sc.render(rep)
}

func (sc *ShellController) removal(ctx context.Context, cmd *shellcmd) (*Response, error) {
	threads, err := sc.threadsOption(cmd)
	if err != nil {
		return nil, err
	}
	effects, err := equity.RemovalEffects(ctx, sc.solver, sc.deck, threads)
	if err != nil {
		return nil, err
	}
	return sc.render(effects)
}

func (sc *ShellController) chart() (*Response, error) {
	c, err := equity.StrategyChart(sc.solver, sc.deck)
	if err != nil {
		return nil, err
	}
	return sc.render(c)
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, fmt.Errorf("usage: set <format|threads> <value>")
	}
	switch cmd.args[0] {
	case "format":
		if _, err := equity.Render(nil, cmd.args[1]); err != nil {
			return nil, err
		}
		sc.outputFormat = cmd.args[1]
	case "threads":
		n, err := strconv.Atoi(cmd.args[1])
		if err != nil {
			return nil, err
		}
		sc.threads = n
	default:
		return nil, fmt.Errorf("unknown setting %q", cmd.args[0])
	}
	return msg(fmt.Sprintf("%s set to %s", cmd.args[0], cmd.args[1])), nil
}

// Package shell is an interactive REPL for querying hands and shoes.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/config"
	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/equity"
	"github.com/domino14/shoeval/shoe"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoHand            = errors.New("please set a hand first with the `hand` command")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config *config.Config
	solver *engine.Solver

	deck  shoe.Deck
	state *engine.GameState

	threads      int
	outputFormat string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// newController builds a controller that writes to out and has no terminal.
func newController(cfg *config.Config, solver *engine.Solver, out io.Writer) *ShellController {
	return &ShellController{
		out:          out,
		config:       cfg,
		solver:       solver,
		deck:         solver.FullShoe(),
		threads:      cfg.GetInt(config.ConfigThreads),
		outputFormat: cfg.GetString(config.ConfigOutputFormat),
	}
}

func NewShellController(cfg *config.Config, solver *engine.Solver) *ShellController {
	sc := newController(cfg, solver, os.Stderr)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mshoeval>\033[0m ",
		HistoryFile:     "/tmp/shoeval-readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Execute runs one line. It returns errQuit when the shell should exit.
func (sc *ShellController) Execute(ctx context.Context, line string) error {
	cmd, err := extractFields(line)
	if err == errNoData {
		return nil
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	resp, err := sc.dispatch(ctx, cmd)
	if err == errQuit {
		return err
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(strings.TrimRight(resp.message, "\n"))
	}
	return nil
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.Execute(ctx, line); err == errQuit {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) render(v any) (*Response, error) {
	out, err := equity.Render(v, sc.outputFormat)
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) stateDisplay() string {
	if sc.state == nil {
		return fmt.Sprintf("Deck %v (%d cards)", sc.deck, sc.deck.Size())
	}
	return fmt.Sprintf("Deck %v (%d cards)\nHand %v", sc.deck, sc.deck.Size(), sc.state)
}

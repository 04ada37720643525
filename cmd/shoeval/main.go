package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/config"
	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shell"
	"github.com/domino14/shoeval/shoe"
)

var (
	GitVersion string
)

func newSolver(cfg *config.Config) *engine.Solver {
	opts := []engine.Option{engine.WithFullShoe(shoe.Standard(cfg.GetInt(config.ConfigDecks)))}
	if cfg.GetBool(config.ConfigMemo) {
		opts = append(opts, engine.WithTable(
			engine.NewTranspositionTable(cfg.GetFloat64(config.ConfigMemoMemoryFraction))))
	} else {
		opts = append(opts, engine.WithoutMemo())
	}
	return engine.NewSolver(opts...)
}

func main() {
	// Determine the directory of the executable. Relative data paths are
	// resolved against it.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	logger := cfg.SetupLogging(os.Stderr)
	logger.Info().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
		close(idleConnsClosed)
	}()

	sc := shell.NewShellController(cfg, newSolver(cfg))
	argsLine := strings.TrimSpace(strings.Join(args, " "))
	if argsLine == "" {
		go sc.Loop(ctx, sig)
	} else {
		sc.Execute(ctx, argsLine)
		sig <- syscall.SIGINT
	}

	<-idleConnsClosed
	log.Debug().Msg("shell exiting")
}

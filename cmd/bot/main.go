package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/bot"
	"github.com/domino14/shoeval/config"
	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if _, err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	logger := cfg.SetupLogging(os.Stderr)
	logger.Info().Msgf("Loaded config: %v, exPath: %v", cfg.SanitizedSettings(), exPath)

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	opts := []engine.Option{engine.WithFullShoe(shoe.Standard(cfg.GetInt(config.ConfigDecks)))}
	if cfg.GetBool(config.ConfigMemo) {
		opts = append(opts, engine.WithTable(
			engine.NewTranspositionTable(cfg.GetFloat64(config.ConfigMemoMemoryFraction))))
	} else {
		opts = append(opts, engine.WithoutMemo())
	}
	b := bot.NewBot(engine.NewSolver(opts...), cfg.GetInt(config.ConfigThreads))
	if err := bot.Main(ctx, cfg.GetString(config.ConfigNatsURL), cfg.GetString(config.ConfigNatsChannel), b); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("server gracefully shutting down")
}

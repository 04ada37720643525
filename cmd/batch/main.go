package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/automatic"
	"github.com/domino14/shoeval/config"
	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
	"github.com/domino14/shoeval/store"
)

const usage = `usage: batch [--key=value ...] <command>

commands:
    run [limit]                  evaluate sampled shoes until none are left (or limit are done)
    generate <n> <penetration>   write n random shoes, each with penetration cards dealt
    analyze                      summarize the advantages computed so far
`

func intArg(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	return strconv.Atoi(args[i])
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	limit, err := intArg(args, 1, 0)
	if err != nil {
		return err
	}
	samples, err := store.ReadSamples(cfg.GetString(config.ConfigSamplesPath))
	if err != nil {
		return err
	}
	storePath := cfg.GetString(config.ConfigDataPath)
	if cfg.GetString(config.ConfigStore) == store.KindSQLite {
		storePath = cfg.GetString(config.ConfigSQLitePath)
	}
	st, err := store.Open(cfg.GetString(config.ConfigStore), storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []engine.Option{engine.WithFullShoe(shoe.Standard(cfg.GetInt(config.ConfigDecks)))}
	if cfg.GetBool(config.ConfigMemo) {
		opts = append(opts, engine.WithTable(
			engine.NewTranspositionTable(cfg.GetFloat64(config.ConfigMemoMemoryFraction))))
	} else {
		opts = append(opts, engine.WithoutMemo())
	}
	r := &automatic.Runner{
		Solver:  engine.NewSolver(opts...),
		Store:   st,
		Samples: samples,
		Limit:   limit,
	}
	res, err := r.Run(ctx, cfg.GetInt(config.ConfigThreads))
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d shoes in %v\n%v\n", res.RunID, res.Evaluated, res.Elapsed, res.Stats.String())
	return nil
}

func generate(cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("generate needs <n> <penetration>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	pen, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	path := cfg.GetString(config.ConfigSamplesPath)
	if err := automatic.GenerateSamples(path, n, shoe.Standard(cfg.GetInt(config.ConfigDecks)), pen); err != nil {
		return err
	}
	log.Info().Int("n", n).Int("penetration", pen).Str("path", path).Msg("wrote-samples")
	return nil
}

func main() {
	os.Exit(batchMain())
}

// batchMain runs one batch command and returns the process exit code. Its
// deferred cleanup, including the CPU profile, runs before main exits.
func batchMain() int {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cfg.AdjustRelativePaths(exPath)
	logger := cfg.SetupLogging(os.Stderr)
	logger.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

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
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal, finishing shoes in progress...")
		cancel()
	}()

	cmd := "run"
	if len(args) > 0 {
		cmd = args[0]
	} else {
		args = []string{cmd}
	}
	switch cmd {
	case "run":
		err = run(ctx, cfg, args)
	case "generate":
		err = generate(cfg, args)
	case "analyze":
		var out string
		out, err = automatic.AnalyzeDataFile(cfg.GetString(config.ConfigDataPath))
		fmt.Print(out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("batch failed")
		return 1
	}
	return 0
}

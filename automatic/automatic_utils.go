// Package automatic is the batch driver: it works through a file of shoe
// samples, values each unevaluated shoe and persists the result.
package automatic

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/equity"
	"github.com/domino14/shoeval/shoe"
	"github.com/domino14/shoeval/stats"
	"github.com/domino14/shoeval/store"
)

var (
	ShoesEvaluated *expvar.Int
	IsEvaluating   *expvar.Int
)

func init() {
	ShoesEvaluated = expvar.NewInt("shoesEvaluated")
	IsEvaluating = expvar.NewInt("isEvaluating")
}

var ErrAlreadyRunning = errors.New("shoes are already being evaluated, please wait till complete")

// Runner values sampled shoes on several goroutines and appends every
// advantage to its store.
type Runner struct {
	Solver  *engine.Solver
	Store   store.AdvantageStore
	Samples []shoe.Deck
	// Limit caps the number of shoes evaluated by one Run. 0 means no cap.
	Limit int

	running  atomic.Bool
	mu       sync.Mutex
	done     map[shoe.Deck]float64
	claimed  int
	advStats stats.Statistic
}

// RunResult summarizes one Run.
type RunResult struct {
	RunID     string
	Evaluated int
	Stats     stats.Statistic
	Elapsed   time.Duration
}

// next claims a random shoe that has been neither stored nor claimed.
func (r *Runner) next() (shoe.Deck, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Limit > 0 && r.claimed >= r.Limit {
		return shoe.Deck{}, false
	}
	d, err := RandomUnevaluated(r.Samples, r.done)
	if err != nil {
		return shoe.Deck{}, false
	}
	// a claimed shoe counts as done so no other worker picks it
	r.done[d] = 0
	r.claimed++
	return d, true
}

func (r *Runner) record(d shoe.Deck, adv float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done[d] = adv
	r.advStats.Push(adv)
}

// Run evaluates shoes until the samples are exhausted, Limit is reached or
// ctx is cancelled. Cancellation is a normal stop and returns no error.
func (r *Runner) Run(ctx context.Context, threads int) (*RunResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer r.running.Store(false)
	if IsEvaluating.Value() > 0 {
		return nil, ErrAlreadyRunning
	}
	if threads < 1 {
		threads = 1
	}
	computed, err := r.Store.Computed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read computed advantages: %w", err)
	}
	r.done = computed
	r.claimed = 0
	r.advStats = stats.Statistic{}

	runID := uuid.New().String()
	logger := zerolog.Ctx(ctx).With().Str("run", runID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Int("samples", len(r.Samples)).Int("computed", len(computed)).
		Int("threads", threads).Msg("starting-batch")
	start := time.Now()

	g := errgroup.Group{}
	for t := 0; t < threads; t++ {
		t := t
		g.Go(func() error {
			IsEvaluating.Add(1)
			defer IsEvaluating.Add(-1)
			for ctx.Err() == nil {
				d, ok := r.next()
				if !ok {
					return nil
				}
				logger.Info().Int("thread", t).Str("deck", d.String()).Msg("computing-advantage")
				rep, err := equity.Breakdown(ctx, r.Solver, d, 1)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("deck %v: %w", d, err)
				}
				if err := r.Store.Append(ctx, d, rep.Expectation); err != nil {
					return err
				}
				r.record(d, rep.Expectation)
				ShoesEvaluated.Add(1)
				logger.Info().Int("thread", t).Str("deck", d.String()).
					Float64("advantage", rep.Expectation).Dur("elapsed", rep.Elapsed).
					Msg("computed-advantage")
			}
			logger.Info().Int("thread", t).Msg("got stop signal, exiting")
			return nil
		})
	}
	err = g.Wait()

	r.mu.Lock()
	res := &RunResult{RunID: runID, Evaluated: r.advStats.Count(), Stats: r.advStats, Elapsed: time.Since(start)}
	r.mu.Unlock()
	logger.Info().Int("evaluated", res.Evaluated).Str("stats", res.Stats.String()).
		Dur("elapsed", res.Elapsed).Msg("batch-finished")
	return res, err
}

package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/drops/config"
	"github.com/pthm-cable/drops/game"
	"github.com/pthm-cable/drops/telemetry"
)

// Fitness component weights.
const (
	weightDensity = 1.0
	weightEnergy  = 50.0

	// overflowPenalty is added once per run that dropped pairs or references.
	overflowPenalty = 1.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	windows   []telemetry.WindowStats // collected via StatsCallback each window
	rest      float64
	overflows int
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	pool       *seedPool

	mu          sync.Mutex
	bestFitness float64
	lastDensity float64 // density error from the most recent Evaluate call
	lastEnergy  float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	fe := &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
	fe.pool = newSeedPool(len(seeds), fe.runSimulation)
	return fe
}

// Close stops the worker pool.
func (fe *FitnessEvaluator) Close() {
	fe.pool.stop()
}

// LastComponents returns the density error and residual energy of the most
// recent evaluation.
func (fe *FitnessEvaluator) LastComponents() (density, energy float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDensity, fe.lastEnergy
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	results := fe.pool.runAll(cfg, fe.seeds)

	var total, density, energy float64
	for _, r := range results {
		d, e := settledError(r.windows, r.rest)
		density += d
		energy += e
		total += weightDensity*d + weightEnergy*e
		if r.overflows > 0 {
			total += overflowPenalty
		}
	}

	n := float64(len(results))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
	}
	fe.lastDensity = density / n
	fe.lastEnergy = energy / n
	fe.mu.Unlock()

	return avg
}

// runSimulation executes a single headless run for maxTicks.
// Safe to call concurrently: every call owns its game and kernel context.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runResult {
	result := runResult{rest: float64(cfg.Derived.RestDensity32)}

	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	result.overflows = g.Kernel().Overflows().Total()
	return result
}

// copyConfig returns a copy of the base config. Scene slices are shared and
// only read by the game. Overflows are always truncated so a bad candidate
// scores poorly instead of panicking a worker.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Kernel.Overflow = "truncate"
	return &cfg
}

// settledError scores the second half of a run: squared relative error of
// the median density against rest, and mean kinetic energy per particle.
// A run with no windows scores worst.
func settledError(windows []telemetry.WindowStats, rest float64) (density, energy float64) {
	if len(windows) == 0 || rest <= 0 {
		return 1, 1
	}
	settled := windows[len(windows)/2:]

	var n float64
	for _, w := range settled {
		if w.Particles == 0 {
			continue
		}
		rel := (w.DensityP50 - rest) / rest
		density += rel * rel
		energy += w.KineticEnergy / float64(w.Particles)
		n++
	}
	if n == 0 {
		return 1, 1
	}
	return density / n, energy / n
}

package evolution

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/tools"
)

// defaultAgentPrompt seeds agents created to pad the population.
const defaultAgentPrompt = "You are a helpful AI agent. Execute tasks efficiently using available tools when appropriate."

// RunnerConfig wires the collaborators a Runner needs to breed a population.
type RunnerConfig struct {
	// Generations is how many evaluation cycles to run; values below one are
	// treated as one.
	Generations int

	LLM   core.LLM
	Tools *tools.Registry
	Store agent.Store

	// Sleep overrides the retry backoff for padded agents; nil means real
	// sleeping.
	Sleep agent.SleepFunc

	// Concurrency bounds parallel fitness evaluation within a generation.
	// Values below two keep evaluation sequential. Parallel evaluation is
	// only sound when the completion service is stateless across calls.
	Concurrency int
}

// Runner drives an Engine across multiple generations and collects
// per-generation statistics.
type Runner struct {
	engine *Engine
	cfg    RunnerConfig
}

// Result is the outcome of one evolution run.
type Result struct {
	// Best is the fittest agent of the final population.
	Best *agent.Agent

	// Population is the final generation.
	Population []*agent.Agent

	// History holds one stats entry per generation, in order.
	History []GenerationStats

	// TotalEvaluated counts fitness evaluations across all generations.
	TotalEvaluated int

	// RunID keys the persisted evolution history rows.
	RunID string
}

// NewRunner builds a Runner around an engine.
func NewRunner(engine *Engine, cfg RunnerConfig) *Runner {
	if cfg.Generations <= 0 {
		cfg.Generations = 1
	}
	return &Runner{engine: engine, cfg: cfg}
}

// NewRunID generates a fresh evolution-run identifier.
func NewRunID() string {
	return "evo_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// Run evolves a population seeded from base (truncated or padded with fresh
// default agents to the engine's population size) against the given test
// tasks. Every generation is fully evaluated and its statistics recorded;
// evolution then replaces the population unless it was the final generation
// or the population is too small to breed.
func (r *Runner) Run(ctx context.Context, base []*agent.Agent, tasks []string) (*Result, error) {
	if len(tasks) == 0 {
		return nil, errors.New(errors.InvalidInput, "at least one test task is required")
	}

	logger := logging.GetLogger()
	runID := NewRunID()

	r.engine.Reset()
	population := r.seedPopulation(ctx, base)

	result := &Result{RunID: runID}

	for gen := 0; gen < r.cfg.Generations; gen++ {
		if err := errors.CheckContext(ctx, "evolution run"); err != nil {
			return nil, err
		}

		genCtx := logging.WithGeneration(ctx, gen+1)
		logger.Info(genCtx, "generation %d/%d", gen+1, r.cfg.Generations)

		r.evaluatePopulation(genCtx, population, tasks)
		result.TotalEvaluated += len(population)

		stats := summarize(gen+1, population)
		result.History = append(result.History, stats)
		r.recordStats(genCtx, runID, stats)

		if gen < r.cfg.Generations-1 && len(population) >= 2 {
			population = r.engine.Evolve(genCtx, population)
		}
	}

	result.Population = population
	result.Best = fittest(population)
	if result.Best != nil {
		logger.Info(ctx, "evolution completed, best agent: %s (fitness %.3f)",
			result.Best.ID(), result.Best.Fitness())
	}
	return result, nil
}

// seedPopulation truncates or pads the base population to the engine's
// population size. Padded agents get the default prompt and a random
// temperature in [0.3, 1.0).
func (r *Runner) seedPopulation(ctx context.Context, base []*agent.Agent) []*agent.Agent {
	size := r.engine.cfg.PopulationSize

	population := make([]*agent.Agent, 0, size)
	population = append(population, base...)
	if len(population) > size {
		population = population[:size]
	}

	for len(population) < size {
		population = append(population, agent.New(ctx, agent.Config{
			Name:         fmt.Sprintf("Random_Agent_%d", len(population)),
			SystemPrompt: defaultAgentPrompt,
			Temperature:  0.3 + r.engine.rng.Float64()*0.7,
			LLM:          r.cfg.LLM,
			Tools:        r.cfg.Tools,
			Store:        r.cfg.Store,
			Sleep:        r.cfg.Sleep,
		}))
	}
	return population
}

func (r *Runner) evaluatePopulation(ctx context.Context, population []*agent.Agent, tasks []string) {
	if r.cfg.Concurrency > 1 {
		p := pool.New().WithMaxGoroutines(r.cfg.Concurrency)
		for _, a := range population {
			a := a
			p.Go(func() {
				r.engine.EvaluateFitness(ctx, a, tasks)
			})
		}
		p.Wait()
		return
	}

	for _, a := range population {
		r.engine.EvaluateFitness(ctx, a, tasks)
	}
}

func (r *Runner) recordStats(ctx context.Context, runID string, stats GenerationStats) {
	if r.engine.stats == nil {
		return
	}
	if err := r.engine.stats.SaveEvolutionStats(ctx, runID, stats); err != nil {
		logging.GetLogger().Error(ctx, "failed to save evolution stats: %v", err)
	}
}

func summarize(generation int, population []*agent.Agent) GenerationStats {
	stats := GenerationStats{
		Generation:     generation,
		PopulationSize: len(population),
		Timestamp:      time.Now(),
	}
	if len(population) == 0 {
		return stats
	}

	best := population[0]
	total := 0.0
	stats.MaxFitness = population[0].Fitness()
	stats.MinFitness = population[0].Fitness()
	for _, a := range population {
		f := a.Fitness()
		total += f
		if f > stats.MaxFitness {
			stats.MaxFitness = f
		}
		if f < stats.MinFitness {
			stats.MinFitness = f
		}
		if f > best.Fitness() {
			best = a
		}
	}
	stats.AvgFitness = total / float64(len(population))
	stats.BestAgentID = best.ID()
	stats.BestAgentName = best.Name()
	return stats
}

func fittest(population []*agent.Agent) *agent.Agent {
	if len(population) == 0 {
		return nil
	}
	best := population[0]
	for _, a := range population[1:] {
		if a.Fitness() > best.Fitness() {
			best = a
		}
	}
	return best
}

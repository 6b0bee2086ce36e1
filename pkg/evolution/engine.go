// Package evolution implements the genetic algorithm over agent
// configurations: heuristic fitness evaluation, tournament selection,
// elitism, and generational replacement, plus a multi-generation Runner.
package evolution

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// Config holds the genetic-algorithm parameters.
type Config struct {
	// PopulationSize is the target population per generation.
	PopulationSize int

	// MutationRate is the per-trial probability of each mutation.
	MutationRate float64

	// CrossoverRate is the probability of breeding by crossover instead of
	// cloning parent 1.
	CrossoverRate float64

	// EliteSize is how many top agents carry over unchanged.
	EliteSize int

	// Seed seeds the engine's random source; 0 means time-based.
	Seed int64
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() *Config {
	return &Config{
		PopulationSize: 10,
		MutationRate:   0.15,
		CrossoverRate:  0.7,
		EliteSize:      2,
	}
}

// Engine runs selection, breeding, and replacement over a population.
// Engine methods are not safe for concurrent use; the Runner only
// parallelizes fitness evaluation, never evolution itself.
type Engine struct {
	cfg        Config
	stats      StatsStore
	generation int
	rng        *rand.Rand
}

// NewEngine builds an Engine. A nil cfg selects DefaultConfig. Non-positive
// sizes fall back to defaults; rates are used as given, so a zero rate
// disables that operator. stats may be nil to skip stats persistence.
func NewEngine(cfg *Config, stats StatsStore) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	resolved := *cfg
	defaults := DefaultConfig()
	if resolved.PopulationSize <= 0 {
		resolved.PopulationSize = defaults.PopulationSize
	}
	if resolved.EliteSize <= 0 {
		resolved.EliteSize = defaults.EliteSize
	}

	seed := resolved.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		cfg:   resolved,
		stats: stats,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Generation returns the number of completed evolution cycles.
func (e *Engine) Generation() int { return e.generation }

// Config returns the resolved engine parameters.
func (e *Engine) Config() Config { return e.cfg }

// Reset zeroes the generation counter for a fresh run.
func (e *Engine) Reset() { e.generation = 0 }

// EvaluateFitness runs the agent against each test task and scores the
// outputs with shallow heuristics, averaging over the task count:
//
//   - +0.4 when the output is non-empty, free of "Error", and longer than 5
//   - +0.3 when the length lands in [15, 1000], else +0.15 when longer than 5
//   - +0.3 when at least one tool step was extracted
//
// An empty task list or any execution failure scores 0.0; either way the
// fitness is written back to the agent and persisted.
func (e *Engine) EvaluateFitness(ctx context.Context, a *agent.Agent, tasks []string) float64 {
	if len(tasks) == 0 {
		a.SetFitness(0)
		a.Persist(ctx)
		return 0
	}

	total := 0.0
	for _, task := range tasks {
		record, err := a.Execute(ctx, task)
		if err != nil {
			logging.GetLogger().Error(ctx, "%v", errors.WithFields(
				errors.Wrap(err, errors.EvaluationFailed, "fitness evaluation failed"),
				errors.Fields{"agent_id": a.ID(), "task": task}))
			a.SetFitness(0)
			a.Persist(ctx)
			return 0
		}
		total += scoreExecution(record)
	}

	fitness := total / float64(len(tasks))
	a.SetFitness(fitness)
	a.Persist(ctx)
	return fitness
}

func scoreExecution(record *agent.ExecutionRecord) float64 {
	output := record.Result
	score := 0.0

	if output != "" && !strings.Contains(output, "Error") && len(output) > 5 {
		score += 0.4
	}

	if n := len(output); n >= 15 && n <= 1000 {
		score += 0.3
	} else if n > 5 {
		score += 0.15
	}

	if len(record.Steps) > 0 {
		score += 0.3
	}
	return score
}

// selectParents picks two parents by tournament. The first tournament samples
// min(4, n) agents without replacement; the second samples from the
// population excluding parent 1 by id. A single-agent population returns the
// same agent twice.
func (e *Engine) selectParents(population []*agent.Agent) (*agent.Agent, *agent.Agent) {
	if len(population) == 1 {
		return population[0], population[0]
	}

	size := min(4, len(population))
	parent1 := e.tournament(population, size)

	remaining := make([]*agent.Agent, 0, len(population)-1)
	for _, a := range population {
		if a.ID() != parent1.ID() {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == 0 {
		return parent1, parent1
	}

	parent2 := e.tournament(remaining, min(size, len(remaining)))
	return parent1, parent2
}

// tournament samples size agents without replacement and keeps the fittest.
// Ties go to the earlier sampled agent.
func (e *Engine) tournament(population []*agent.Agent, size int) *agent.Agent {
	picks := e.rng.Perm(len(population))[:size]
	best := population[picks[0]]
	for _, i := range picks[1:] {
		if population[i].Fitness() > best.Fitness() {
			best = population[i]
		}
	}
	return best
}

// Evolve produces the next generation: the fittest EliteSize agents carry
// over with a generation bump, and the remainder of the population is bred by
// tournament selection with crossover (or cloning, when the roll fails or the
// parents coincide) followed by mutation. Populations below two agents are
// returned unchanged.
func (e *Engine) Evolve(ctx context.Context, population []*agent.Agent) []*agent.Agent {
	if len(population) < 2 {
		return population
	}

	sorted := make([]*agent.Agent, len(population))
	copy(sorted, population)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness() > sorted[j].Fitness()
	})

	next := make([]*agent.Agent, 0, e.cfg.PopulationSize)

	eliteCount := min(e.cfg.EliteSize, len(sorted))
	for i := 0; i < eliteCount; i++ {
		elite := sorted[i]
		elite.SetGeneration(e.generation + 1)
		elite.Persist(ctx)
		next = append(next, elite)
	}

	for len(next) < e.cfg.PopulationSize {
		parent1, parent2 := e.selectParents(sorted)

		var child *agent.Agent
		if e.rng.Float64() < e.cfg.CrossoverRate && parent1.ID() != parent2.ID() {
			child = parent1.Crossover(ctx, parent2)
		} else {
			child = parent1.Clone(ctx)
		}

		child.Mutate(ctx, e.cfg.MutationRate, e.rng)
		child.SetGeneration(e.generation + 1)
		child.Persist(ctx)
		next = append(next, child)
	}

	e.generation++
	if len(next) > e.cfg.PopulationSize {
		next = next[:e.cfg.PopulationSize]
	}
	return next
}

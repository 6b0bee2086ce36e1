package evolution

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evolve-go/internal/testutil"
	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/tools"
)

// capturedLog collects entries written through the global logger.
type capturedLog struct {
	mu      sync.Mutex
	entries []logging.LogEntry
}

func (c *capturedLog) Write(e logging.LogEntry) error {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
	return nil
}

func (c *capturedLog) Sync() error  { return nil }
func (c *capturedLog) Close() error { return nil }

func (c *capturedLog) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]string, len(c.entries))
	for i, e := range c.entries {
		msgs[i] = e.Message
	}
	return msgs
}

func newEvalAgent(t *testing.T, store *testutil.MemStore, llm *testutil.ScriptedLLM, withTools bool) *agent.Agent {
	t.Helper()
	cfg := agent.Config{
		Name:         "Eval",
		SystemPrompt: "Solve math problems.",
		Temperature:  0.7,
		LLM:          llm,
		Store:        store,
		Sleep:        func(d time.Duration) {},
	}
	if withTools {
		cfg.Tools = tools.NewStandardRegistry()
	}
	return agent.New(context.Background(), cfg)
}

func TestEvaluateFitnessShortOutput(t *testing.T) {
	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("Result: 4"), false)
	engine := NewEngine(nil, nil)

	fitness := engine.EvaluateFitness(context.Background(), a, []string{"2+2"})

	// 0.4 for clean output over 5 chars, 0.15 for the short-length band,
	// nothing for tool steps.
	assert.InDelta(t, 0.55, fitness, 1e-9)
	assert.InDelta(t, 0.55, a.Fitness(), 1e-9)

	record, ok := store.StoredAgent(a.ID())
	require.True(t, ok)
	assert.InDelta(t, 0.55, record.Fitness, 1e-9)
}

func TestEvaluateFitnessFullScore(t *testing.T) {
	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("I would calculate 15 * 23 and report back."), true)
	engine := NewEngine(nil, nil)

	fitness := engine.EvaluateFitness(context.Background(), a, []string{"multiply 15 by 23"})

	assert.InDelta(t, 1.0, fitness, 1e-9)
}

func TestEvaluateFitnessAveragesOverTasks(t *testing.T) {
	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("Result: 4"), false)
	engine := NewEngine(nil, nil)

	fitness := engine.EvaluateFitness(context.Background(), a, []string{"2+2", "3+3", "4+4"})

	assert.InDelta(t, 0.55, fitness, 1e-9)
	assert.Equal(t, 3, a.TotalTasks())
}

func TestEvaluateFitnessEmptyTasks(t *testing.T) {
	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("whatever"), false)
	a.SetFitness(0.9)
	engine := NewEngine(nil, nil)

	fitness := engine.EvaluateFitness(context.Background(), a, nil)

	assert.Zero(t, fitness)
	assert.Zero(t, a.Fitness())
	record, ok := store.StoredAgent(a.ID())
	require.True(t, ok)
	assert.Zero(t, record.Fitness)
}

func TestEvaluateFitnessExecutionFailureScoresZero(t *testing.T) {
	log := &capturedLog{}
	logging.SetLogger(logging.NewLogger(logging.Config{Severity: logging.DEBUG, Outputs: []logging.Output{log}}))
	defer logging.SetLogger(nil)

	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("fine"), false)
	a.SetFitness(0.9)
	engine := NewEngine(nil, nil)

	// An empty task is the one input Execute rejects outright.
	fitness := engine.EvaluateFitness(context.Background(), a, []string{"   "})

	assert.Zero(t, fitness)
	assert.Zero(t, a.Fitness())

	var logged bool
	for _, msg := range log.messages() {
		if strings.Contains(msg, "fitness evaluation failed") {
			logged = true
		}
	}
	assert.True(t, logged, "the failure is logged, not returned")
}

func TestEvaluateFitnessErrorOutput(t *testing.T) {
	store := testutil.NewMemStore()
	a := newEvalAgent(t, store, testutil.Returning("Error: the service is unwell today"), false)
	engine := NewEngine(nil, nil)

	fitness := engine.EvaluateFitness(context.Background(), a, []string{"2+2"})

	// Only the length band applies to error-marked output.
	assert.InDelta(t, 0.3, fitness, 1e-9)
}

func TestScoreExecutionBands(t *testing.T) {
	cases := []struct {
		name   string
		record agent.ExecutionRecord
		want   float64
	}{
		{"empty output", agent.ExecutionRecord{Result: ""}, 0},
		{"tiny output", agent.ExecutionRecord{Result: "ok"}, 0},
		{"short clean output", agent.ExecutionRecord{Result: "Result: 4"}, 0.55},
		{"ideal length", agent.ExecutionRecord{Result: strings.Repeat("a", 100)}, 0.7},
		{"oversized output", agent.ExecutionRecord{Result: strings.Repeat("a", 1500)}, 0.55},
		{"with tool step", agent.ExecutionRecord{
			Result: strings.Repeat("a", 100),
			Steps:  []agent.ToolStep{{Tool: "Calculator"}},
		}, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, scoreExecution(&tc.record), 1e-9)
		})
	}
}

func fitnessLadder(t *testing.T, store *testutil.MemStore, scores ...float64) []*agent.Agent {
	t.Helper()
	population := make([]*agent.Agent, 0, len(scores))
	for _, score := range scores {
		a := newEvalAgent(t, store, testutil.Returning("ok"), false)
		a.SetFitness(score)
		population = append(population, a)
	}
	return population
}

func TestSelectParentsSingleAgent(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.5)
	engine := NewEngine(&Config{Seed: 1}, nil)

	p1, p2 := engine.selectParents(population)
	assert.Same(t, population[0], p1)
	assert.Same(t, population[0], p2)
}

func TestSelectParentsAreDistinct(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.1, 0.2, 0.9, 0.3)
	engine := NewEngine(&Config{Seed: 42}, nil)

	for i := 0; i < 20; i++ {
		p1, p2 := engine.selectParents(population)
		assert.NotEqual(t, p1.ID(), p2.ID())
	}
}

func TestSelectParentsPrefersFitness(t *testing.T) {
	store := testutil.NewMemStore()
	// Four agents: the tournament covers the whole population, so parent 1
	// is always the fittest and parent 2 the fittest of the rest.
	population := fitnessLadder(t, store, 0.1, 0.2, 0.9, 0.3)
	engine := NewEngine(&Config{Seed: 7}, nil)

	p1, p2 := engine.selectParents(population)
	assert.Equal(t, population[2].ID(), p1.ID())
	assert.Equal(t, population[3].ID(), p2.ID())
}

func TestEvolveSmallPopulationIsIdentity(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.5)
	engine := NewEngine(nil, nil)

	next := engine.Evolve(context.Background(), population)

	assert.Equal(t, population, next)
	assert.Zero(t, engine.Generation())
}

func TestEvolveCarriesElites(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.2, 0.8, 0.5, 0.9)
	engine := NewEngine(&Config{PopulationSize: 4, EliteSize: 2, CrossoverRate: 0.7, Seed: 3}, nil)

	next := engine.Evolve(context.Background(), population)

	require.Len(t, next, 4)
	assert.Equal(t, 1, engine.Generation())

	// Elites lead the next generation in fitness order.
	assert.Same(t, population[3], next[0])
	assert.Same(t, population[1], next[1])
	assert.Equal(t, 1, next[0].Generation())
	assert.Equal(t, 1, next[1].Generation())

	for _, child := range next[2:] {
		assert.Equal(t, 1, child.Generation())
		assert.Equal(t, 0, child.TotalTasks())
	}
}

func TestEvolveCloneWhenCrossoverRollFails(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.2, 0.8, 0.5, 0.9)
	engine := NewEngine(&Config{PopulationSize: 4, EliteSize: 2, Seed: 3}, nil)

	next := engine.Evolve(context.Background(), population)

	for _, child := range next[2:] {
		assert.True(t, strings.HasPrefix(child.Name(), "Clone_"),
			"child %s should be a clone", child.Name())
	}
}

func TestEvolveCrossoverChildren(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.2, 0.8, 0.5, 0.9)
	engine := NewEngine(&Config{PopulationSize: 4, EliteSize: 2, CrossoverRate: 1, Seed: 3}, nil)

	next := engine.Evolve(context.Background(), population)

	for _, child := range next[2:] {
		assert.True(t, strings.HasPrefix(child.Name(), "Evolved_"),
			"child %s should come from crossover", child.Name())
	}
}

func TestEvolveSameSeedSameOffspring(t *testing.T) {
	buildPopulation := func() []*agent.Agent {
		store := testutil.NewMemStore()
		members := []struct {
			prompt      string
			temperature float64
			fitness     float64
		}{
			{"Answer briefly and cite sources.", 0.4, 0.2},
			{"Reason out loud before answering.", 0.9, 0.8},
			{"Prefer tools over mental arithmetic.", 0.6, 0.5},
			{"Double-check every intermediate result.", 1.1, 0.9},
		}
		population := make([]*agent.Agent, 0, len(members))
		for _, m := range members {
			a := agent.New(context.Background(), agent.Config{
				Name:         "Member",
				SystemPrompt: m.prompt,
				Temperature:  m.temperature,
				LLM:          testutil.Returning("ok"),
				Store:        store,
				Sleep:        func(d time.Duration) {},
			})
			a.SetFitness(m.fitness)
			population = append(population, a)
		}
		return population
	}

	run := func() []*agent.Agent {
		engine := NewEngine(&Config{
			PopulationSize: 6,
			MutationRate:   1,
			CrossoverRate:  0.7,
			EliteSize:      2,
			Seed:           42,
		}, nil)
		return engine.Evolve(context.Background(), buildPopulation())
	}

	first := run()
	// The global rand stream must not influence evolution.
	for i := 0; i < 7; i++ {
		rand.Float64()
	}
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].SystemPrompt(), second[i].SystemPrompt(), "member %d prompt", i)
		assert.InDelta(t, first[i].Temperature(), second[i].Temperature(), 1e-12, "member %d temperature", i)
	}
}

func TestEvolveTruncatesToPopulationSize(t *testing.T) {
	store := testutil.NewMemStore()
	population := fitnessLadder(t, store, 0.1, 0.2, 0.3, 0.4, 0.5)
	engine := NewEngine(&Config{PopulationSize: 3, EliteSize: 2, MutationRate: 0.15, CrossoverRate: 0.7, Seed: 9}, nil)

	next := engine.Evolve(context.Background(), population)
	assert.Len(t, next, 3)
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(nil, nil)
	cfg := engine.Config()

	assert.Equal(t, 10, cfg.PopulationSize)
	assert.InDelta(t, 0.15, cfg.MutationRate, 1e-9)
	assert.InDelta(t, 0.7, cfg.CrossoverRate, 1e-9)
	assert.Equal(t, 2, cfg.EliteSize)

	partial := NewEngine(&Config{PopulationSize: 6}, nil)
	assert.Equal(t, 6, partial.Config().PopulationSize)
	assert.Equal(t, 2, partial.Config().EliteSize)
}

package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/tools"
)

const (
	// DefaultMaxRetries bounds completion-service attempts per Execute call.
	DefaultMaxRetries = 2

	// MaxSystemPromptLen caps prompts produced by crossover.
	MaxSystemPromptLen = 2000

	// memoryResultLimit caps the result prefix stored as agent memory.
	memoryResultLimit = 500

	// MinTemperature and MaxTemperature bound the sampling temperature.
	MinTemperature = 0.1
	MaxTemperature = 1.5
)

// SleepFunc suspends between retry attempts. Injectable so backoff logic can
// be tested without wall-clock delays.
type SleepFunc func(d time.Duration)

// Agent is an LLM-backed agent configuration bound to a persistent
// performance record. All counter and configuration updates are serialized
// through the agent's mutex, so a single Agent may be shared across
// goroutines as long as each Execute call runs to completion.
type Agent struct {
	mu sync.Mutex

	id           string
	name         string
	systemPrompt string
	temperature  float64
	generation   int

	totalTasks      int
	successfulTasks int
	fitness         float64

	llm   core.LLM
	tools *tools.Registry
	store Store
	sleep SleepFunc
}

// Config carries everything needed to construct an Agent.
type Config struct {
	// ID is optional; a fresh id is generated when empty.
	ID           string
	Name         string
	SystemPrompt string
	Temperature  float64

	LLM   core.LLM
	Tools *tools.Registry
	Store Store

	// Sleep overrides the retry backoff sleep; nil means time.Sleep.
	Sleep SleepFunc
}

// NewID generates a fresh agent identifier.
func NewID() string {
	return "agent_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// New constructs an Agent. If the store already holds a record for the id,
// the persisted counters, fitness and generation are restored; the agent is
// then (re)saved so a fresh configuration becomes durable immediately.
func New(ctx context.Context, cfg Config) *Agent {
	logger := logging.GetLogger()

	id := cfg.ID
	if id == "" {
		id = NewID()
	}

	a := &Agent{
		id:           id,
		name:         cfg.Name,
		systemPrompt: cfg.SystemPrompt,
		temperature:  clampTemperature(cfg.Temperature),
		llm:          cfg.LLM,
		tools:        cfg.Tools,
		store:        cfg.Store,
		sleep:        cfg.Sleep,
	}
	if a.sleep == nil {
		a.sleep = time.Sleep
	}

	if a.store != nil {
		if record, err := a.store.GetAgent(ctx, id); err == nil && record != nil {
			a.fitness = record.Fitness
			a.generation = record.Generation
			a.totalTasks = record.TotalTasks
			a.successfulTasks = record.SuccessfulTasks
			logger.Info(ctx, "Loaded agent %s from store", id)
		}
	}

	a.Persist(ctx)
	return a
}

func clampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// Accessors. Values are snapshots; counters move under execution.

func (a *Agent) ID() string { return a.id }

func (a *Agent) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

func (a *Agent) SystemPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.systemPrompt
}

func (a *Agent) Temperature() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.temperature
}

func (a *Agent) Generation() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

func (a *Agent) Fitness() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fitness
}

func (a *Agent) TotalTasks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalTasks
}

func (a *Agent) SuccessfulTasks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.successfulTasks
}

// SuccessRate returns the percentage of Execute calls classified successful.
func (a *Agent) SuccessRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.totalTasks == 0 {
		return 0
	}
	return float64(a.successfulTasks) / float64(a.totalTasks) * 100
}

// SetGeneration sets the generation counter; the caller persists.
func (a *Agent) SetGeneration(generation int) {
	a.mu.Lock()
	a.generation = generation
	a.mu.Unlock()
}

// SetFitness overwrites the fitness score; the caller persists. The score is
// only meaningful relative to the most recent evaluation.
func (a *Agent) SetFitness(fitness float64) {
	a.mu.Lock()
	a.fitness = fitness
	a.mu.Unlock()
}

// Record snapshots the agent's persisted form.
func (a *Agent) Record() Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Record{
		ID:              a.id,
		Name:            a.name,
		SystemPrompt:    a.systemPrompt,
		Temperature:     a.temperature,
		Fitness:         a.fitness,
		Generation:      a.generation,
		TotalTasks:      a.totalTasks,
		SuccessfulTasks: a.successfulTasks,
	}
}

// Persist writes the agent record to the store, best-effort.
func (a *Agent) Persist(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveAgent(ctx, a.Record()); err != nil {
		logging.GetLogger().Error(ctx, "failed to persist agent %s: %v", a.id, err)
	}
}

// ExecuteOption configures a single Execute call.
type ExecuteOption func(*executeOptions)

type executeOptions struct {
	context    string
	maxRetries int
}

// WithTaskContext prepends context text to the task.
func WithTaskContext(context string) ExecuteOption {
	return func(o *executeOptions) {
		o.context = context
	}
}

// WithMaxRetries overrides the completion-service attempt bound.
func WithMaxRetries(n int) ExecuteOption {
	return func(o *executeOptions) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// executionState drives the retry state machine inside Execute.
type executionState int

const (
	stateAttempting executionState = iota
	stateBackingOff
	stateResolved
	stateExhausted
)

// Execute runs one task through the completion service with retry.
//
// The total-attempt counter increments exactly once per call, not once per
// retry. Completion failures are retried up to the attempt bound with
// exponential backoff; exhaustion yields a failure-classified record, never
// an error. Only an empty task is rejected outright.
func (a *Agent) Execute(ctx context.Context, task string, opts ...ExecuteOption) (*ExecutionRecord, error) {
	if strings.TrimSpace(task) == "" {
		return nil, errors.New(errors.InvalidInput, "task must not be empty")
	}

	options := &executeOptions{maxRetries: DefaultMaxRetries}
	for _, opt := range opts {
		opt(options)
	}

	logger := logging.GetLogger()
	ctx = logging.WithAgentID(ctx, a.id)

	a.mu.Lock()
	a.totalTasks++
	a.mu.Unlock()

	fullTask := task
	if options.context != "" {
		fullTask = fmt.Sprintf("Context: %s\n\nTask: %s", options.context, task)
	}
	prompt := a.buildPrompt(fullTask)

	logger.Info(ctx, "executing task: %.100s", task)

	var (
		record  *ExecutionRecord
		lastErr error
		attempt int
	)

	state := stateAttempting
	for {
		switch state {
		case stateAttempting:
			resp, err := a.llm.Generate(ctx, prompt,
				core.WithTemperature(a.Temperature()))
			if err != nil {
				logger.Error(ctx, "execution error on attempt %d: %v", attempt+1, err)
				lastErr = err
				if attempt >= options.maxRetries-1 {
					state = stateExhausted
				} else {
					state = stateBackingOff
				}
				continue
			}

			output := resp.Content
			steps := a.extractToolUsage(ctx, output)
			success := !strings.Contains(output, "Error") && len(output) > 10
			if success {
				a.mu.Lock()
				a.successfulTasks++
				a.mu.Unlock()
			}

			record = &ExecutionRecord{
				Task:      task,
				Result:    output,
				Steps:     steps,
				Timestamp: time.Now(),
				Attempts:  attempt + 1,
				Success:   success,
			}
			state = stateResolved

		case stateBackingOff:
			a.sleep(time.Duration(1<<attempt) * time.Second)
			attempt++
			state = stateAttempting

		case stateResolved:
			a.recordOutcome(ctx, record)
			logger.Info(ctx, "completed task (success=%v, attempts=%d)", record.Success, record.Attempts)
			return record, nil

		case stateExhausted:
			record = &ExecutionRecord{
				Task:      task,
				Result:    fmt.Sprintf("Error after %d attempts: %v", options.maxRetries, lastErr),
				Steps:     nil,
				Timestamp: time.Now(),
				Attempts:  options.maxRetries,
				Success:   false,
			}
			a.recordOutcome(ctx, record)
			return record, nil
		}
	}
}

// recordOutcome debug-logs the task/output pair and applies the per-call
// persistence side effects: one execution entry, one memory entry, and the
// updated agent record. All best-effort.
func (a *Agent) recordOutcome(ctx context.Context, record *ExecutionRecord) {
	logger := logging.GetLogger()
	logger.TaskCompletion(ctx, record.Task, record.Result)

	if a.store == nil {
		return
	}

	if err := a.store.SaveExecution(ctx, a.id, *record); err != nil {
		logger.Error(ctx, "failed to save execution for %s: %v", a.id, err)
	}
	if err := a.store.SaveMemory(ctx, a.id, record.Task, truncate(record.Result, memoryResultLimit)); err != nil {
		logger.Error(ctx, "failed to save memory for %s: %v", a.id, err)
	}
	a.Persist(ctx)
}

func (a *Agent) buildPrompt(fullTask string) string {
	toolsDesc := ""
	if a.tools != nil {
		toolsDesc = a.tools.Describe()
	}

	return fmt.Sprintf(`%s

Available tools:
%s

Task: %s

Think step by step. If you need to use a tool, mention which tool you would use and what input you would give it. Then provide the final answer.

Now proceed with the task:`, a.SystemPrompt(), toolsDesc, fullTask)
}

// MemorySummary renders the most recent memory entries plus the success rate.
func (a *Agent) MemorySummary(ctx context.Context) string {
	if a.store == nil {
		return "No memory entries yet."
	}

	entries, err := a.store.AgentMemory(ctx, a.id, 5)
	if err != nil || len(entries) == 0 {
		return "No memory entries yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agent %s - Recent Memory (last 5):\n", a.Name())
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. Task: %s\n   Result: %s\n", i+1, preview(entry.Task, 40), preview(entry.Result, 40))
	}
	fmt.Fprintf(&b, "\nSuccess rate: %.1f%% (%d/%d)", a.SuccessRate(), a.SuccessfulTasks(), a.TotalTasks())
	return b.String()
}

func preview(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

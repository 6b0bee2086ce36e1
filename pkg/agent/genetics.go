package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

// mutationPhrases are the canned prompt suffixes a mutation may append.
var mutationPhrases = []string{
	" Be more concise in responses.",
	" Provide detailed, step-by-step explanations.",
	" Focus on accuracy and precision.",
	" Be creative and think outside the box.",
	" Use formal, professional language.",
}

// Mutate applies two independent Bernoulli trials at the given rate: append a
// random canned phrase to the system prompt, and perturb the temperature by a
// uniform delta in [-0.3, 0.3] clamped to the temperature bounds. All draws
// come from rng, so a caller holding a seeded source gets reproducible
// mutations. The agent is persisted only when at least one mutation fired.
// Returns human-readable descriptions of the applied changes.
func (a *Agent) Mutate(ctx context.Context, rate float64, rng *rand.Rand) []string {
	var applied []string

	a.mu.Lock()
	if rng.Float64() < rate {
		phrase := mutationPhrases[rng.Intn(len(mutationPhrases))]
		a.systemPrompt += phrase
		applied = append(applied, "Prompt:"+phrase)
	}

	if rng.Float64() < rate {
		oldTemp := a.temperature
		a.temperature = clampTemperature(a.temperature + (rng.Float64()*0.6 - 0.3))
		applied = append(applied, fmt.Sprintf("Temperature: %.2f -> %.2f", oldTemp, a.temperature))
	}
	a.mu.Unlock()

	if len(applied) > 0 {
		a.Persist(ctx)
	}

	return applied
}

// Crossover produces a brand-new offspring agent: the first half of this
// agent's system prompt concatenated with the second half of the other's
// (by character count, integer division, capped at MaxSystemPromptLen), at
// the mean of the parents' temperatures. Counters start at zero and the
// generation is left for the caller to set.
func (a *Agent) Crossover(ctx context.Context, other *Agent) *Agent {
	selfPrompt := a.SystemPrompt()
	otherPrompt := other.SystemPrompt()

	combined := selfPrompt[:len(selfPrompt)/2] + otherPrompt[len(otherPrompt)/2:]
	if len(combined) > MaxSystemPromptLen {
		combined = combined[:MaxSystemPromptLen]
	}

	newID := NewID()
	name := fmt.Sprintf("Evolved_%s_%s_%s",
		lastField(a.Name()), lastField(other.Name()), newID[len(newID)-4:])

	return New(ctx, Config{
		ID:           newID,
		Name:         name,
		SystemPrompt: combined,
		Temperature:  (a.Temperature() + other.Temperature()) / 2,
		LLM:          a.llm,
		Tools:        a.tools,
		Store:        a.store,
		Sleep:        a.sleep,
	})
}

// Clone copies this agent's configuration into a new agent with a fresh id,
// a "Clone_" name prefix, and zeroed counters.
func (a *Agent) Clone(ctx context.Context) *Agent {
	return New(ctx, Config{
		Name:         "Clone_" + a.Name(),
		SystemPrompt: a.SystemPrompt(),
		Temperature:  a.Temperature(),
		LLM:          a.llm,
		Tools:        a.tools,
		Store:        a.store,
		Sleep:        a.sleep,
	})
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[len(fields)-1]
}

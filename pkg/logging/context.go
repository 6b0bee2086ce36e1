package logging

import "context"

type contextKey string

const (
	agentIDKey    contextKey = "agent_id"
	generationKey contextKey = "generation"
)

// WithAgentID annotates the context with the agent currently executing.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey, agentID)
}

// GetAgentID extracts the executing agent id from the context.
func GetAgentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(agentIDKey).(string)
	return id, ok
}

// WithGeneration annotates the context with the current evolution generation.
func WithGeneration(ctx context.Context, generation int) context.Context {
	return context.WithValue(ctx, generationKey, generation)
}

// GetGeneration extracts the evolution generation from the context.
func GetGeneration(ctx context.Context) (int, bool) {
	gen, ok := ctx.Value(generationKey).(int)
	return gen, ok
}

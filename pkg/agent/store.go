package agent

import (
	"context"
	"time"
)

// Record is the persisted form of an agent's configuration and counters.
type Record struct {
	ID              string  `json:"agent_id"`
	Name            string  `json:"name"`
	SystemPrompt    string  `json:"system_prompt"`
	Temperature     float64 `json:"temperature"`
	Fitness         float64 `json:"fitness_score"`
	Generation      int     `json:"generation"`
	TotalTasks      int     `json:"total_tasks"`
	SuccessfulTasks int     `json:"successful_tasks"`
}

// ToolStep records one tool invocation extracted from agent output.
type ToolStep struct {
	Tool      string    `json:"tool"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionRecord is the terminal outcome of one Execute call.
//
// Success is a heuristic classification, not a correctness guarantee: it only
// reflects the absence of an error marker and a minimum output length.
type ExecutionRecord struct {
	Task      string     `json:"task"`
	Result    string     `json:"result"`
	Steps     []ToolStep `json:"steps"`
	Timestamp time.Time  `json:"timestamp"`
	Attempts  int        `json:"attempt"`
	Success   bool       `json:"success"`
}

// MemoryEntry is one task/result pair remembered for an agent.
type MemoryEntry struct {
	Task      string    `json:"task"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the durable record of agents, their memory, and their execution
// logs. Writes are best-effort from the agent's perspective: persistence
// failures are logged by callers and never abort in-memory operation.
type Store interface {
	SaveAgent(ctx context.Context, record Record) error
	GetAgent(ctx context.Context, id string) (*Record, error)
	ListAgents(ctx context.Context) ([]Record, error)
	DeleteAgent(ctx context.Context, id string) (bool, error)

	SaveExecution(ctx context.Context, agentID string, record ExecutionRecord) error
	ExecutionHistory(ctx context.Context, agentID string, limit int) ([]ExecutionRecord, error)

	SaveMemory(ctx context.Context, agentID, task, result string) error
	AgentMemory(ctx context.Context, agentID string, limit int) ([]MemoryEntry, error)
}

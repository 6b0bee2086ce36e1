package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func sampleRecord(id string) agent.Record {
	return agent.Record{
		ID:              id,
		Name:            "Test Agent",
		SystemPrompt:    "You are a test agent.",
		Temperature:     0.7,
		Fitness:         0.42,
		Generation:      1,
		TotalTasks:      10,
		SuccessfulTasks: 7,
	}
}

func TestSaveAndGetAgent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("agent_0001")
	require.NoError(t, store.SaveAgent(ctx, record))

	got, err := store.GetAgent(ctx, "agent_0001")
	require.NoError(t, err)
	assert.Equal(t, record, *got)
}

func TestGetAgentNotFound(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAgent(context.Background(), "agent_missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ResourceNotFound))
}

func TestSaveAgentUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("agent_0001")
	require.NoError(t, store.SaveAgent(ctx, record))

	record.Name = "Renamed"
	record.Fitness = 0.9
	record.TotalTasks = 11
	require.NoError(t, store.SaveAgent(ctx, record))

	got, err := store.GetAgent(ctx, "agent_0001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 0.9, got.Fitness)
	assert.Equal(t, 11, got.TotalTasks)

	records, err := store.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListAgents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0002")))
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0003")))

	records, err := store.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"agent_0001", "agent_0002", "agent_0003"}, ids)
}

func TestExecutionHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))

	record := agent.ExecutionRecord{
		Task:   "Calculate 2 + 2",
		Result: "Result: 4",
		Steps: []agent.ToolStep{
			{Tool: "Calculator", Input: "2 + 2", Output: "Result: 4", Timestamp: time.Now().UTC()},
		},
		Timestamp: time.Now().UTC(),
		Attempts:  1,
		Success:   true,
	}
	require.NoError(t, store.SaveExecution(ctx, "agent_0001", record))

	history, err := store.ExecutionHistory(ctx, "agent_0001", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	got := history[0]
	assert.Equal(t, "Calculate 2 + 2", got.Task)
	assert.Equal(t, "Result: 4", got.Result)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.Success)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "Calculator", got.Steps[0].Tool)
	assert.Equal(t, "2 + 2", got.Steps[0].Input)
}

func TestExecutionHistoryCapsResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))

	record := agent.ExecutionRecord{
		Task:      "long output",
		Result:    strings.Repeat("x", 1500),
		Timestamp: time.Now().UTC(),
		Attempts:  1,
		Success:   true,
	}
	require.NoError(t, store.SaveExecution(ctx, "agent_0001", record))

	history, err := store.ExecutionHistory(ctx, "agent_0001", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, history[0].Result, 1000)
}

func TestExecutionHistoryOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := agent.ExecutionRecord{
			Task:      "task",
			Result:    strings.Repeat("r", i+1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Attempts:  1,
			Success:   true,
		}
		require.NoError(t, store.SaveExecution(ctx, "agent_0001", record))
	}

	history, err := store.ExecutionHistory(ctx, "agent_0001", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Most recent first.
	assert.Equal(t, "rrrrr", history[0].Result)
	assert.Equal(t, "rrrr", history[1].Result)
}

func TestAgentMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))

	require.NoError(t, store.SaveMemory(ctx, "agent_0001", "first task", "first result"))
	require.NoError(t, store.SaveMemory(ctx, "agent_0001", "second task", "second result"))

	entries, err := store.AgentMemory(ctx, "agent_0001", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second task", entries[0].Task)
	assert.Equal(t, "first result", entries[1].Result)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestDeleteAgentCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, sampleRecord("agent_0001")))
	require.NoError(t, store.SaveMemory(ctx, "agent_0001", "task", "result"))
	require.NoError(t, store.SaveExecution(ctx, "agent_0001", agent.ExecutionRecord{
		Task: "task", Result: "result", Timestamp: time.Now().UTC(), Attempts: 1,
	}))

	deleted, err := store.DeleteAgent(ctx, "agent_0001")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetAgent(ctx, "agent_0001")
	assert.True(t, errors.HasCode(err, errors.ResourceNotFound))

	entries, err := store.AgentMemory(ctx, "agent_0001", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	history, err := store.ExecutionHistory(ctx, "agent_0001", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	deleted, err = store.DeleteAgent(ctx, "agent_0001")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")
}

func TestEvolutionHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for gen := 1; gen <= 3; gen++ {
		stats := evolution.GenerationStats{
			Generation:     gen,
			AvgFitness:     0.3 + float64(gen)*0.1,
			MaxFitness:     0.5 + float64(gen)*0.1,
			MinFitness:     0.1,
			BestAgentID:    "agent_best",
			BestAgentName:  "Champion",
			PopulationSize: 10,
		}
		require.NoError(t, store.SaveEvolutionStats(ctx, "run_001", stats))
	}
	require.NoError(t, store.SaveEvolutionStats(ctx, "run_002", evolution.GenerationStats{
		Generation: 1, BestAgentID: "agent_other",
	}))

	history, err := store.EvolutionHistory(ctx, "run_001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 1, history[0].Generation)
	assert.Equal(t, 3, history[2].Generation)
	assert.InDelta(t, 0.4, history[0].AvgFitness, 1e-9)
	assert.Equal(t, "Champion", history[0].BestAgentName)
	assert.Equal(t, 10, history[0].PopulationSize)
	assert.False(t, history[0].Timestamp.IsZero())

	other, err := store.EvolutionHistory(ctx, "run_002")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	empty, err := store.EvolutionHistory(ctx, "run_none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreBacksAgentExecution(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("agent_live")
	record.TotalTasks = 0
	record.SuccessfulTasks = 0
	require.NoError(t, store.SaveAgent(ctx, record))

	restored, err := store.GetAgent(ctx, "agent_live")
	require.NoError(t, err)
	assert.Equal(t, "Test Agent", restored.Name)
}

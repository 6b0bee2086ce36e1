// Package testutil provides shared fakes for agent and evolution tests.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
)

// MockLLM is a mock implementation of core.LLM.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	args := m.Called(ctx, prompt, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.LLMResponse), args.Error(1)
}

func (m *MockLLM) ProviderName() string { return "mock" }
func (m *MockLLM) ModelID() string      { return "mock-model" }

// ScriptedLLM returns canned outcomes in order, repeating the final outcome
// once the script is exhausted. Safe for concurrent use.
type ScriptedLLM struct {
	mu       sync.Mutex
	script   []ScriptedReply
	pos      int
	Prompts  []string // every prompt seen, in call order
	TempLog  []float64
	CallsErr int // count of calls answered with an error
}

// ScriptedReply is one step of a ScriptedLLM script.
type ScriptedReply struct {
	Content string
	Err     error
}

func NewScriptedLLM(replies ...ScriptedReply) *ScriptedLLM {
	return &ScriptedLLM{script: replies}
}

// Returning returns a ScriptedLLM that always yields the same content.
func Returning(content string) *ScriptedLLM {
	return NewScriptedLLM(ScriptedReply{Content: content})
}

// Failing returns a ScriptedLLM that always fails.
func Failing(msg string) *ScriptedLLM {
	return NewScriptedLLM(ScriptedReply{Err: errors.New(errors.CompletionFailed, msg)})
}

func (s *ScriptedLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	s.TempLog = append(s.TempLog, opts.Temperature)

	if len(s.script) == 0 {
		return &core.LLMResponse{Content: ""}, nil
	}
	reply := s.script[s.pos]
	if s.pos < len(s.script)-1 {
		s.pos++
	}
	if reply.Err != nil {
		s.CallsErr++
		return nil, reply.Err
	}
	return &core.LLMResponse{Content: reply.Content}, nil
}

func (s *ScriptedLLM) ProviderName() string { return "scripted" }
func (s *ScriptedLLM) ModelID() string      { return "scripted-model" }

// Calls returns the number of Generate calls seen.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

// MemStore is an in-memory agent.Store that records what was written.
type MemStore struct {
	mu         sync.Mutex
	agents     map[string]agent.Record
	executions map[string][]agent.ExecutionRecord
	memory     map[string][]agent.MemoryEntry

	SaveAgentCalls int
	FailSaves      bool // when set, every write returns an error
}

func NewMemStore() *MemStore {
	return &MemStore{
		agents:     make(map[string]agent.Record),
		executions: make(map[string][]agent.ExecutionRecord),
		memory:     make(map[string][]agent.MemoryEntry),
	}
}

func (s *MemStore) SaveAgent(ctx context.Context, record agent.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveAgentCalls++
	if s.FailSaves {
		return errors.New(errors.StorageFailed, "save refused")
	}
	s.agents[record.ID] = record
	return nil
}

func (s *MemStore) GetAgent(ctx context.Context, id string) (*agent.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.agents[id]
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "agent not found"),
			errors.Fields{"agent_id": id})
	}
	return &record, nil
}

func (s *MemStore) ListAgents(ctx context.Context) ([]agent.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]agent.Record, 0, len(s.agents))
	for _, record := range s.agents {
		list = append(list, record)
	}
	return list, nil
}

func (s *MemStore) DeleteAgent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.agents[id]
	delete(s.agents, id)
	delete(s.executions, id)
	delete(s.memory, id)
	return ok, nil
}

func (s *MemStore) SaveExecution(ctx context.Context, agentID string, record agent.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return errors.New(errors.StorageFailed, "save refused")
	}
	s.executions[agentID] = append(s.executions[agentID], record)
	return nil
}

func (s *MemStore) ExecutionHistory(ctx context.Context, agentID string, limit int) ([]agent.ExecutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.executions[agentID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]agent.ExecutionRecord, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemStore) SaveMemory(ctx context.Context, agentID, task, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return errors.New(errors.StorageFailed, "save refused")
	}
	s.memory[agentID] = append(s.memory[agentID], agent.MemoryEntry{Task: task, Result: result})
	return nil
}

func (s *MemStore) AgentMemory(ctx context.Context, agentID string, limit int) ([]agent.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.memory[agentID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]agent.MemoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// StoredAgent returns the persisted record for an id, if any.
func (s *MemStore) StoredAgent(id string) (agent.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.agents[id]
	return record, ok
}

// Executions returns every execution saved for an id.
func (s *MemStore) Executions(id string) []agent.ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agent.ExecutionRecord, len(s.executions[id]))
	copy(out, s.executions[id])
	return out
}

// Memories returns every memory entry saved for an id.
func (s *MemStore) Memories(id string) []agent.MemoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agent.MemoryEntry, len(s.memory[id]))
	copy(out, s.memory[id])
	return out
}

var (
	_ agent.Store = (*MemStore)(nil)
	_ core.LLM    = (*MockLLM)(nil)
	_ core.LLM    = (*ScriptedLLM)(nil)
)

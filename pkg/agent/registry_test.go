package agent_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evolve-go/internal/testutil"
	"github.com/XiaoConstantine/evolve-go/pkg/agent"
)

func TestRegistryAddGet(t *testing.T) {
	reg := agent.NewRegistry()
	a := newConfiguredAgent("Reg", "p", 0.7, testutil.NewMemStore())

	reg.Add(a)

	got, ok := reg.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Get("agent_missing")
	assert.False(t, ok)
}

func TestRegistryRemove(t *testing.T) {
	reg := agent.NewRegistry()
	a := newConfiguredAgent("Reg", "p", 0.7, testutil.NewMemStore())
	reg.Add(a)

	assert.True(t, reg.Remove(a.ID()))
	assert.False(t, reg.Remove(a.ID()), "second removal is a no-op")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryListAndClear(t *testing.T) {
	reg := agent.NewRegistry()
	store := testutil.NewMemStore()
	for i := 0; i < 3; i++ {
		reg.Add(newConfiguredAgent("Reg", "p", 0.7, store))
	}

	assert.Len(t, reg.List(), 3)

	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.List())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := agent.NewRegistry()
	store := testutil.NewMemStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := newConfiguredAgent("Par", "p", 0.7, store)
			reg.Add(a)
			reg.Get(a.ID())
			reg.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, reg.Len())
}

func TestRegistryAddReplacesSameID(t *testing.T) {
	reg := agent.NewRegistry()
	store := testutil.NewMemStore()
	a := agent.New(context.Background(), agent.Config{
		ID: "agent_fixed", Name: "First", SystemPrompt: "p", Temperature: 0.7,
		LLM: testutil.Returning("ok"), Store: store,
	})
	b := agent.New(context.Background(), agent.Config{
		ID: "agent_fixed", Name: "Second", SystemPrompt: "p", Temperature: 0.7,
		LLM: testutil.Returning("ok"), Store: store,
	})

	reg.Add(a)
	reg.Add(b)

	got, ok := reg.Get("agent_fixed")
	require.True(t, ok)
	assert.Equal(t, "Second", got.Name())
	assert.Equal(t, 1, reg.Len())
}

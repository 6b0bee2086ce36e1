package tools

import (
	"strings"
	"sync"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
)

// Registry holds the closed set of tools available to agents.
//
// Registration order is preserved: List and Describe iterate tools in the
// order they were registered, which keeps prompt tool blocks and extraction
// scans deterministic.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// NewStandardRegistry returns a registry with the four built-in tools.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, tool := range []Tool{
		NewCalculator(),
		NewKnowledgeSearch(),
		NewTextAnalyzer(),
		NewDataFormatter(),
	} {
		// Built-in names cannot collide
		_ = r.Register(tool)
	}
	return r
}

// Register adds a tool to the registry.
// It returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tool == nil {
		return errors.New(errors.InvalidInput, "cannot register a nil tool")
	}

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return errors.WithFields(errors.New(errors.InvalidInput, "tool already registered"), errors.Fields{
			"tool_name": name,
		})
	}

	r.order = append(r.order, name)
	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by its name.
// It returns an error if the tool is not found.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, errors.WithFields(errors.New(errors.ResourceNotFound, "tool not found"), errors.Fields{
			"tool_name": name,
		})
	}
	return tool, nil
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name])
	}
	return list
}

// Describe renders the "- name: description" block included in agent prompts.
// Returns the empty string for an empty registry.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		lines = append(lines, "- "+name+": "+r.tools[name].Description())
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

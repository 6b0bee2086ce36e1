package tools

import (
	"context"
	"fmt"
	"strings"
)

// KnowledgeSearch looks up a small fixed knowledge base by keyword.
type KnowledgeSearch struct {
	entries []knowledgeEntry
}

type knowledgeEntry struct {
	key   string
	value string
}

func NewKnowledgeSearch() *KnowledgeSearch {
	return &KnowledgeSearch{
		entries: []knowledgeEntry{
			{"python", "Python is a high-level, interpreted programming language known for its simplicity and readability."},
			{"ai", "Artificial Intelligence (AI) is the simulation of human intelligence processes by machines."},
			{"api", "API (Application Programming Interface) is a set of rules for software communication."},
			{"agent", "An AI agent is an autonomous entity that perceives its environment and acts to achieve goals."},
			{"machine learning", "Machine learning is a subset of AI that enables systems to learn from experience."},
			{"openai", "OpenAI is an AI research company that created models like GPT-4."},
			{"fastapi", "FastAPI is a modern web framework for building APIs with Python."},
			{"genetic algorithm", "Genetic algorithms are optimization algorithms inspired by natural selection."},
		},
	}
}

func (k *KnowledgeSearch) Name() string { return string(KindKnowledgeSearch) }
func (k *KnowledgeSearch) Kind() Kind   { return KindKnowledgeSearch }

func (k *KnowledgeSearch) Description() string {
	return "Search for information in the knowledge base. Input should be a search query about technology or AI."
}

func (k *KnowledgeSearch) Invoke(ctx context.Context, input string) (string, error) {
	query := strings.ToLower(strings.TrimSpace(input))

	for _, entry := range k.entries {
		if strings.Contains(query, entry.key) || matchesAnyWord(query, entry.key) {
			return fmt.Sprintf("%s: %s", capitalizeFirst(entry.key), entry.value), nil
		}
	}

	return fmt.Sprintf("No information found about '%s'. Try: python, ai, api, agent, etc.", input), nil
}

// matchesAnyWord reports whether any whitespace-separated word of key occurs
// in the query.
func matchesAnyWord(query, key string) bool {
	for _, word := range strings.Fields(key) {
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

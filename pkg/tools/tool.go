package tools

import "context"

// Kind tags the closed set of built-in tool variants.
type Kind string

const (
	KindCalculator      Kind = "Calculator"
	KindKnowledgeSearch Kind = "KnowledgeSearch"
	KindTextAnalyzer    Kind = "TextAnalyzer"
	KindDataFormatter   Kind = "DataFormatter"
)

// Tool is a deterministic text-to-text function an agent may invoke.
//
// Tools signal recoverable input problems by returning an "Error: ..." string
// rather than an error value; the error return is reserved for failures of the
// tool machinery itself. Callers that pattern-match agent output swallow both.
type Tool interface {
	// Name returns the tool's identifier
	Name() string

	// Description returns human-readable explanation of the tool's purpose
	Description() string

	// Kind returns the tool's variant tag
	Kind() Kind

	// Invoke executes the tool against the input text
	Invoke(ctx context.Context, input string) (string, error)
}

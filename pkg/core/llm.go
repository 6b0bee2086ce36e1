package core

import "context"

// TokenInfo tracks token usage reported by a provider.
type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMResponse encapsulates a completion from a language model.
type LLMResponse struct {
	Content string
	Usage   *TokenInfo
}

// ModelID identifies a provider model.
type ModelID string

// LLM represents an interface for text-completion services.
//
// Implementations must be safe for concurrent use: the evolution runner may
// issue many Generate calls in flight at once.
type LLM interface {
	// Generate produces a text completion based on the given prompt
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error)

	ProviderName() string
	ModelID() string
}

// GenerateOption represents an option for text generation.
type GenerateOption func(*GenerateOptions)

// GenerateOptions holds configuration for text generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
}

// NewGenerateOptions creates a new GenerateOptions with default values.
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   1024, // Default max tokens
		Temperature: 0.7,  // Default temperature
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// WithTopP sets the nucleus sampling probability.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = p
	}
}

// WithStop sets stop sequences for generation.
func WithStop(stop []string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Stop = stop
	}
}

// BaseLLM provides provider identity shared by LLM implementations.
type BaseLLM struct {
	providerName string
	modelID      ModelID
}

// NewBaseLLM creates a new BaseLLM.
func NewBaseLLM(providerName string, modelID ModelID) *BaseLLM {
	return &BaseLLM{
		providerName: providerName,
		modelID:      modelID,
	}
}

func (b *BaseLLM) ProviderName() string {
	return b.providerName
}

func (b *BaseLLM) ModelID() string {
	return string(b.modelID)
}

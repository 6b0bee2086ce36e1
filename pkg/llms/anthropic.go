package llms

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	errs "github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// AnthropicLLM implements the core.LLM interface for Anthropic's models.
type AnthropicLLM struct {
	client *anthropic.Client
	*core.BaseLLM
}

// Model name compatibility layer for configs written against older names.
var modelNameMapping = map[string]anthropic.Model{
	"claude-3-opus-20240229":     anthropic.ModelClaudeOpus4_1_20250805,
	"claude-3-sonnet-20240229":   anthropic.ModelClaudeSonnet4_5_20250929,
	"claude-3-haiku-20240307":    anthropic.ModelClaude_3_Haiku_20240307,
	"claude-3.5-sonnet-20241022": anthropic.ModelClaudeSonnet4_5_20250929,
	"claude-3-5-sonnet-20240620": anthropic.ModelClaudeSonnet4_5_20250929,
	"claude-3-opus":              anthropic.ModelClaudeOpus4_1_20250805,
	"claude-3-sonnet":            anthropic.ModelClaudeSonnet4_5_20250929,
	"claude-3-haiku":             anthropic.ModelClaude_3_Haiku_20240307,
}

// normalizeModelName maps old model names to new official ones.
func normalizeModelName(name string) anthropic.Model {
	if normalized, ok := modelNameMapping[name]; ok {
		return normalized
	}
	// Return as-is if not in mapping (allows new models to work automatically)
	return anthropic.Model(name)
}

// isValidAnthropicModel checks if the model is a valid Anthropic model.
func isValidAnthropicModel(model string) bool {
	validPrefixes := []string{
		"claude-3",
		"claude-4",
		"claude-haiku",
		"claude-sonnet",
		"claude-opus",
	}

	for _, prefix := range validPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// NewAnthropicLLM creates a new AnthropicLLM instance. An empty apiKey falls
// back to the ANTHROPIC_API_KEY environment variable.
func NewAnthropicLLM(apiKey string, model core.ModelID) (*AnthropicLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}

	normalized := normalizeModelName(string(model))
	if !isValidAnthropicModel(string(normalized)) {
		return nil, errs.WithFields(
			errs.New(errs.InvalidInput, "unsupported Anthropic model"),
			errs.Fields{"model": model})
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicLLM{
		client:  &client,
		BaseLLM: core.NewBaseLLM("anthropic", core.ModelID(normalized)),
	}, nil
}

// Generate implements the core.LLM interface.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	logger := logging.GetLogger()
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	normalizedModelID := normalizeModelName(a.ModelID())

	params := anthropic.MessageNewParams{
		Model: normalizedModelID,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	}
	if opts.TopP > 0 {
		params.TopP = anthropic.Float(opts.TopP)
	}
	if len(opts.Stop) > 0 {
		params.StopSequences = opts.Stop
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return nil, errs.WithFields(
			errs.Wrap(err, errs.CompletionFailed, "failed to generate response"),
			errs.Fields{
				"model":      string(normalizedModelID),
				"max_tokens": opts.MaxTokens,
			})
	}

	if message == nil {
		return nil, errs.New(errs.CompletionFailed, "Received nil response from Anthropic API")
	}

	if len(message.Content) == 0 {
		return nil, errs.New(errs.CompletionFailed, "Received empty content from Anthropic API")
	}

	// Extract text from response using union type methods
	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	usage := &core.TokenInfo{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
		TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens", message.Usage.InputTokens, message.Usage.OutputTokens)

	return &core.LLMResponse{Content: responseText, Usage: usage}, nil
}

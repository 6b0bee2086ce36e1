package llms

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
)

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected anthropic.Model
	}{
		{
			name:     "old opus name maps forward",
			input:    "claude-3-opus-20240229",
			expected: anthropic.ModelClaudeOpus4_1_20250805,
		},
		{
			name:     "old sonnet name maps forward",
			input:    "claude-3.5-sonnet-20241022",
			expected: anthropic.ModelClaudeSonnet4_5_20250929,
		},
		{
			name:     "unknown name passes through",
			input:    "claude-sonnet-9",
			expected: anthropic.Model("claude-sonnet-9"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeModelName(tt.input))
		})
	}
}

func TestIsValidAnthropicModel(t *testing.T) {
	assert.True(t, isValidAnthropicModel("claude-3-haiku-20240307"))
	assert.True(t, isValidAnthropicModel("claude-sonnet-4-5"))
	assert.True(t, isValidAnthropicModel("claude-opus-4-1"))
	assert.False(t, isValidAnthropicModel("gpt-4o-mini"))
	assert.False(t, isValidAnthropicModel(""))
}

func TestNewAnthropicLLM(t *testing.T) {
	t.Run("valid model", func(t *testing.T) {
		llm, err := NewAnthropicLLM("test-key", "claude-sonnet-4-5")
		require.NoError(t, err)
		assert.Equal(t, "anthropic", llm.ProviderName())
		assert.Equal(t, "claude-sonnet-4-5", llm.ModelID())
	})

	t.Run("unsupported model", func(t *testing.T) {
		_, err := NewAnthropicLLM("test-key", "gpt-4o-mini")
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		_, err := NewAnthropicLLM("", "claude-sonnet-4-5")
		assert.Error(t, err)
	})

	t.Run("API key from environment", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "env-key")
		llm, err := NewAnthropicLLM("", "claude-sonnet-4-5")
		require.NoError(t, err)
		assert.NotNil(t, llm)
	})
}

func TestNewLLMFactory(t *testing.T) {
	t.Run("anthropic provider", func(t *testing.T) {
		llm, err := NewLLM("anthropic", "test-key", core.ModelID("claude-sonnet-4-5"))
		require.NoError(t, err)
		assert.Equal(t, "anthropic", llm.ProviderName())
	})

	t.Run("empty provider defaults to anthropic", func(t *testing.T) {
		llm, err := NewLLM("", "test-key", core.ModelID("claude-sonnet-4-5"))
		require.NoError(t, err)
		assert.Equal(t, "anthropic", llm.ProviderName())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewLLM("openai", "test-key", core.ModelID("gpt-4o"))
		assert.Error(t, err)
	})
}

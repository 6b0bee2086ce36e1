package llms

import (
	"github.com/XiaoConstantine/evolve-go/pkg/core"
	errs "github.com/XiaoConstantine/evolve-go/pkg/errors"
)

// NewLLM constructs a completion service for the named provider.
func NewLLM(provider, apiKey string, model core.ModelID) (core.LLM, error) {
	switch provider {
	case "anthropic", "":
		return NewAnthropicLLM(apiKey, model)
	default:
		return nil, errs.WithFields(
			errs.New(errs.InvalidInput, "unsupported LLM provider"),
			errs.Fields{"provider": provider})
	}
}

// Package config loads and validates the YAML configuration for an
// evolution run: the completion-service provider, the genetic-algorithm
// parameters, storage, and logging.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
)

// apiKeyEnv is consulted when the config file carries no API key.
const apiKeyEnv = "ANTHROPIC_API_KEY"

// Config is the complete configuration for the evolve system.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" validate:"required"`
	Evolution EvolutionConfig `yaml:"evolution,omitempty"`
	Storage   StorageConfig   `yaml:"storage,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// LLMConfig selects and authenticates the completion-service provider.
type LLMConfig struct {
	// Provider name; only anthropic is currently supported.
	Provider string `yaml:"provider" validate:"required,oneof=anthropic"`

	// ModelID names the model, e.g. claude-sonnet-4-5.
	ModelID string `yaml:"model_id" validate:"required"`

	// APIKey authenticates against the provider. Falls back to the
	// ANTHROPIC_API_KEY environment variable when empty.
	APIKey string `yaml:"api_key,omitempty"`
}

// EvolutionConfig holds the genetic-algorithm parameters.
type EvolutionConfig struct {
	PopulationSize int     `yaml:"population_size" validate:"min=2,max=50"`
	Generations    int     `yaml:"generations" validate:"min=1,max=50"`
	MutationRate   float64 `yaml:"mutation_rate" validate:"min=0,max=1"`
	CrossoverRate  float64 `yaml:"crossover_rate" validate:"min=0,max=1"`
	EliteSize      int     `yaml:"elite_size" validate:"min=1"`

	// Concurrency bounds parallel fitness evaluation; 0 or 1 keeps it
	// sequential.
	Concurrency int `yaml:"concurrency" validate:"min=0"`

	// Seed fixes the random source for reproducible runs; 0 means time-based.
	Seed int64 `yaml:"seed,omitempty"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig controls log verbosity and an optional log file.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			ModelID:  "claude-sonnet-4-5",
		},
		Evolution: EvolutionConfig{
			PopulationSize: 10,
			Generations:    5,
			MutationRate:   0.15,
			CrossoverRate:  0.7,
			EliteSize:      2,
		},
		Storage: StorageConfig{
			Path: "agents.db",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Load reads a YAML config file over the defaults, applies the environment
// fallback for the API key, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path},
		)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path},
		)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(apiKeyEnv)
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := errors.Fields{}
			for _, verr := range verrs {
				fields[verr.Namespace()] = verr.Tag()
			}
			return errors.WithFields(
				errors.New(errors.ValidationFailed, "invalid configuration"),
				fields,
			)
		}
		return errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}
	return nil
}

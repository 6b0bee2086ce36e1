package evolution

import (
	"context"
	"time"
)

// GenerationStats summarizes the population at the end of one generation.
// Fitness aggregates are computed before evolution replaces the population,
// so they describe the agents that were actually evaluated.
type GenerationStats struct {
	Generation     int       `json:"generation"`
	AvgFitness     float64   `json:"avg_fitness"`
	MaxFitness     float64   `json:"max_fitness"`
	MinFitness     float64   `json:"min_fitness"`
	BestAgentID    string    `json:"best_agent_id"`
	BestAgentName  string    `json:"best_agent_name"`
	PopulationSize int       `json:"population_size"`
	Timestamp      time.Time `json:"timestamp"`
}

// StatsStore persists per-generation statistics keyed by an evolution run id.
// A nil StatsStore disables stats persistence; the Runner still reports stats
// in its Result.
type StatsStore interface {
	SaveEvolutionStats(ctx context.Context, runID string, stats GenerationStats) error
	EvolutionHistory(ctx context.Context, runID string) ([]GenerationStats, error)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evolve-go/cmd/evolve/internal/display"
	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/config"
	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
	"github.com/XiaoConstantine/evolve-go/pkg/llms"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/storage"
	"github.com/XiaoConstantine/evolve-go/pkg/tools"
)

func NewRunCommand() *cobra.Command {
	var (
		configPath  string
		taskPath    string
		generations int
		population  int
		concurrency int
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an evolution over a fresh population",
		Long: `Seed a population of agents, score each one against the test tasks, and
breed the population for the configured number of generations. Every agent,
execution, and generation statistic is persisted to the SQLite database.`,
		Example: `  # Run with defaults against a task file
  evolve run --tasks tasks.yaml

  # Ten generations of a larger population
  evolve run --tasks tasks.yaml --generations 10 --population 20

  # Fully configured
  evolve run --config evolve.yaml --tasks tasks.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if generations > 0 {
				cfg.Evolution.Generations = generations
			}
			if population > 0 {
				cfg.Evolution.PopulationSize = population
			}
			if concurrency > 0 {
				cfg.Evolution.Concurrency = concurrency
			}
			if seed != 0 {
				cfg.Evolution.Seed = seed
			}

			if err := setupLogging(cfg); err != nil {
				return err
			}

			tasks, err := config.LoadTasks(taskPath)
			if err != nil {
				return err
			}

			llm, err := llms.NewLLM(cfg.LLM.Provider, cfg.LLM.APIKey, core.ModelID(cfg.LLM.ModelID))
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := evolution.NewEngine(&evolution.Config{
				PopulationSize: cfg.Evolution.PopulationSize,
				MutationRate:   cfg.Evolution.MutationRate,
				CrossoverRate:  cfg.Evolution.CrossoverRate,
				EliteSize:      cfg.Evolution.EliteSize,
				Seed:           cfg.Evolution.Seed,
			}, store)

			runner := evolution.NewRunner(engine, evolution.RunnerConfig{
				Generations: cfg.Evolution.Generations,
				LLM:         llm,
				Tools:       tools.NewStandardRegistry(),
				Store:       store,
				Concurrency: cfg.Evolution.Concurrency,
			})

			result, err := runner.Run(cmd.Context(), nil, tasks)
			if err != nil {
				return err
			}

			// Keep the final generation addressable for the summary below.
			registry := agent.NewRegistry()
			for _, a := range result.Population {
				registry.Add(a)
			}
			defer registry.Clear()

			fmt.Print(display.FormatRunReport(result))
			if best, ok := registry.Get(result.Best.ID()); ok {
				fmt.Println()
				fmt.Println(best.MemorySummary(cmd.Context()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults apply when omitted)")
	cmd.Flags().StringVarP(&taskPath, "tasks", "t", "", "path to YAML task file (required)")
	cmd.Flags().IntVarP(&generations, "generations", "g", 0, "override the number of generations")
	cmd.Flags().IntVarP(&population, "population", "p", 0, "override the population size")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel fitness evaluations per generation")
	cmd.Flags().Int64Var(&seed, "seed", 0, "fix the random seed for a reproducible run")
	_ = cmd.MarkFlagRequired("tasks")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func setupLogging(cfg *config.Config) error {
	severity := logging.ParseSeverity(cfg.Logging.Level)

	outputs := []logging.Output{logging.NewConsoleOutput(false)}
	if cfg.Logging.File != "" {
		fileOutput, err := logging.NewFileOutput(cfg.Logging.File)
		if err != nil {
			return err
		}
		outputs = append(outputs, fileOutput)
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: severity,
		Outputs:  outputs,
	}))
	return nil
}

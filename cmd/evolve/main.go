package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evolve-go/cmd/evolve/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Breed LLM agent configurations with a genetic algorithm",
	Long: `evolve runs a genetic algorithm over LLM agent configurations: each agent
is a system prompt plus a sampling temperature, scored by executing test
tasks against a completion service. Tournament selection, prompt crossover,
and random mutation breed better-scoring configurations generation by
generation, with every agent persisted to SQLite along the way.`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(
		commands.NewRunCommand(),
		commands.NewAgentsCommand(),
		commands.NewShowCommand(),
		commands.NewDeleteCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

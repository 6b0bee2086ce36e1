// Package commands implements the evolve CLI subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evolve-go/cmd/evolve/internal/display"
	"github.com/XiaoConstantine/evolve-go/pkg/storage"
)

func NewAgentsCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agents in the database",
		Example: `  # List all stored agents
  evolve agents

  # Against a specific database
  evolve agents --db /var/lib/evolve/agents.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListAgents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(display.FormatAgentTable(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "agents.db", "path to the SQLite database")
	return cmd
}

func NewShowCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "show <agent-id>",
		Short: "Show one agent's record and recent executions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.GetAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n", record.Name, record.ID)
			fmt.Printf("  Fitness:      %.3f\n", record.Fitness)
			fmt.Printf("  Generation:   %d\n", record.Generation)
			fmt.Printf("  Temperature:  %.2f\n", record.Temperature)
			fmt.Printf("  Tasks:        %d (%d successful)\n", record.TotalTasks, record.SuccessfulTasks)
			fmt.Printf("  Prompt:       %s\n\n", record.SystemPrompt)

			history, err := store.ExecutionHistory(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			fmt.Print(display.FormatExecutionHistory(history))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "agents.db", "path to the SQLite database")
	cmd.Flags().IntVar(&limit, "limit", 10, "how many executions to show")
	return cmd
}

func NewDeleteCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "delete <agent-id>",
		Short: "Delete an agent and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.DeleteAgent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Printf("No agent with id %s\n", args[0])
				return nil
			}
			fmt.Printf("Deleted agent %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "agents.db", "path to the SQLite database")
	return cmd
}

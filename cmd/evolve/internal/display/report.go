// Package display renders evolution results and stored records for the
// terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/evolve-go/pkg/agent"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
)

const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// FormatRunReport renders the full report for a finished evolution run.
func FormatRunReport(result *evolution.Result) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s%sEvolution Report%s\n", ColorBold, ColorBlue, ColorReset))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	output.WriteString(fmt.Sprintf("Run ID:            %s\n", result.RunID))
	output.WriteString(fmt.Sprintf("Agents evaluated:  %d\n\n", result.TotalEvaluated))

	output.WriteString(formatHistory(result.History))
	output.WriteString("\n")
	output.WriteString(formatBest(result.Best))

	return output.String()
}

func formatHistory(history []evolution.GenerationStats) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%sGeneration history%s\n", ColorBold, ColorReset))
	output.WriteString(fmt.Sprintf("  %-4s %-8s %-8s %-8s %s\n", "Gen", "Avg", "Max", "Min", "Best agent"))
	for _, stats := range history {
		output.WriteString(fmt.Sprintf("  %-4d %-8.3f %-8.3f %-8.3f %s (%s)\n",
			stats.Generation, stats.AvgFitness, stats.MaxFitness, stats.MinFitness,
			stats.BestAgentName, stats.BestAgentID))
	}
	return output.String()
}

func formatBest(best *agent.Agent) string {
	if best == nil {
		return fmt.Sprintf("%sNo surviving agents.%s\n", ColorRed, ColorReset)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("%s%sBest agent%s\n", ColorBold, ColorGreen, ColorReset))
	output.WriteString(fmt.Sprintf("  ID:           %s\n", best.ID()))
	output.WriteString(fmt.Sprintf("  Name:         %s\n", best.Name()))
	output.WriteString(fmt.Sprintf("  Fitness:      %.3f\n", best.Fitness()))
	output.WriteString(fmt.Sprintf("  Generation:   %d\n", best.Generation()))
	output.WriteString(fmt.Sprintf("  Temperature:  %.2f\n", best.Temperature()))
	output.WriteString(fmt.Sprintf("  Success rate: %.1f%% (%d/%d)\n",
		best.SuccessRate(), best.SuccessfulTasks(), best.TotalTasks()))
	output.WriteString(fmt.Sprintf("  Prompt:       %s\n", truncate(best.SystemPrompt(), 120)))
	return output.String()
}

// FormatAgentTable renders stored agent records as a table.
func FormatAgentTable(records []agent.Record) string {
	if len(records) == 0 {
		return "No agents stored.\n"
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("%s%-16s %-24s %-8s %-4s %-6s %s%s\n",
		ColorBold, "ID", "Name", "Fitness", "Gen", "Tasks", "Temperature", ColorReset))
	for _, record := range records {
		output.WriteString(fmt.Sprintf("%-16s %-24s %-8.3f %-4d %-6d %.2f\n",
			record.ID, truncate(record.Name, 24), record.Fitness,
			record.Generation, record.TotalTasks, record.Temperature))
	}
	return output.String()
}

// FormatExecutionHistory renders an agent's recent executions.
func FormatExecutionHistory(records []agent.ExecutionRecord) string {
	if len(records) == 0 {
		return "No executions recorded.\n"
	}

	var output strings.Builder
	for i, record := range records {
		marker := ColorGreen + "ok" + ColorReset
		if !record.Success {
			marker = ColorRed + "fail" + ColorReset
		}
		output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, marker, truncate(record.Task, 80)))
		output.WriteString(fmt.Sprintf("   %s\n", truncate(record.Result, 120)))
		for _, step := range record.Steps {
			output.WriteString(fmt.Sprintf("   %s-> %s(%s) = %s%s\n",
				ColorCyan, step.Tool, truncate(step.Input, 40), truncate(step.Output, 60), ColorReset))
		}
	}
	return output.String()
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

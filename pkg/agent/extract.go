package agent

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/tools"
)

// toolPatterns maps each tool to the output patterns that count as an
// intention to use it. The slice fixes the scan order so extraction is
// deterministic.
var toolPatterns = []struct {
	kind     tools.Kind
	patterns []*regexp.Regexp
}{
	{
		kind: tools.KindCalculator,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)calculate\s+([\d\s\.\+\-\*\/\^\(\)]+)`),
			regexp.MustCompile(`(\d+\s*[\+\-\*\/]\s*\d+)`),
		},
	},
	{
		kind: tools.KindKnowledgeSearch,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)search.*for\s+"([^"]+)"`),
			regexp.MustCompile(`(?i)look up\s+([^\.]+)`),
		},
	},
	{
		kind: tools.KindTextAnalyzer,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)analyze.*text\s*[:"]\s*([^"\n]+)`),
		},
	},
	{
		kind: tools.KindDataFormatter,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)format.*["']([^"']+)["']\s+as\s+(\w+)`),
			regexp.MustCompile(`([^|]+)\|\s*(\w+)`),
		},
	},
}

// extractToolUsage scans model output for tool-usage mentions and invokes the
// matching tools. Tool failures are swallowed: a failing invocation simply
// produces no step.
func (a *Agent) extractToolUsage(ctx context.Context, output string) []ToolStep {
	if a.tools == nil || a.tools.Len() == 0 {
		return nil
	}

	logger := logging.GetLogger()
	var steps []ToolStep

	for _, tp := range toolPatterns {
		tool, err := a.tools.Get(string(tp.kind))
		if err != nil {
			continue
		}

		for _, pattern := range tp.patterns {
			for _, match := range pattern.FindAllStringSubmatch(output, -1) {
				input := strings.TrimSpace(joinGroups(match[1:]))
				if input == "" {
					continue
				}

				result, err := tool.Invoke(ctx, input)
				if err != nil {
					logger.Warn(ctx, "Tool %s execution failed: %v", tool.Name(),
						errors.Wrap(err, errors.ToolExecutionFailed, "tool invocation failed"))
					continue
				}

				steps = append(steps, ToolStep{
					Tool:      tool.Name(),
					Input:     input,
					Output:    result,
					Timestamp: time.Now(),
				})
			}
		}
	}

	return steps
}

// joinGroups merges capture groups into a single tool input, multi-group
// matches pipe-separated (the DataFormatter "text|format" convention).
func joinGroups(groups []string) string {
	if len(groups) == 1 {
		return groups[0]
	}
	return strings.Join(groups, "|")
}

// Package evolve is a Go toolkit for breeding LLM-backed agent configurations
// with a genetic algorithm.
//
// An agent is a system prompt plus a sampling temperature, bound to a
// persistent performance record. Agents execute tasks against a completion
// service with retry, and the evolution engine scores each agent's output
// with shallow heuristics to produce a fitness signal that drives tournament
// selection, single-point prompt crossover, and random mutation across
// generations.
//
// Key Components:
//
//   - Core: the LLM completion-service interface and generation options.
//
//   - LLMs: provider implementations of the completion service, currently
//     Anthropic Claude via the official SDK.
//
//   - Agent: the agent configuration, its execute/retry state machine,
//     tool-usage extraction, and the mutate/crossover genetic operators.
//
//   - Evolution: the generational engine (fitness evaluation, tournament
//     selection, elitism, replacement) and a multi-generation runner that
//     reports per-generation statistics.
//
//   - Tools: a closed set of deterministic text tools (calculator, knowledge
//     search, text analyzer, data formatter) agents may trigger from their
//     output.
//
//   - Storage: SQLite-backed persistence of agent records, memory, and
//     execution history.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/XiaoConstantine/evolve-go/pkg/agent"
//	    "github.com/XiaoConstantine/evolve-go/pkg/evolution"
//	    "github.com/XiaoConstantine/evolve-go/pkg/llms"
//	    "github.com/XiaoConstantine/evolve-go/pkg/storage"
//	    "github.com/XiaoConstantine/evolve-go/pkg/tools"
//	)
//
//	func main() {
//	    llm, err := llms.NewAnthropicLLM("your-api-key", "claude-sonnet-4-5")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    store, err := storage.Open("agents.db")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer store.Close()
//
//	    runner := evolution.NewRunner(evolution.NewEngine(nil, store), evolution.RunnerConfig{
//	        Generations: 5,
//	        LLM:         llm,
//	        Tools:       tools.NewStandardRegistry(),
//	        Store:       store,
//	    })
//
//	    result, err := runner.Run(context.Background(), []*agent.Agent{}, []string{
//	        "Calculate 15 * 23",
//	        "Search for information about genetic algorithms",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("Best agent: %s (fitness %.3f)\n", result.Best.Name(), result.Best.Fitness())
//	}
//
// evolve-go is released under the MIT License.
package evolve

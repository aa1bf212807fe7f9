package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inquestlab/inquest/internal/agent"
	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/genai"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/logging"
	"github.com/inquestlab/inquest/internal/orchestrator"
	"github.com/inquestlab/inquest/internal/websearch"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run the research pipeline for a query",
	Long: `Research runs the full pipeline for a single query and prints the
resulting report as Markdown.

With BRAVE_SEARCH_API_KEY or SERPER_API_KEY set (or configured), sources
come from live web search; otherwise placeholder sources are used. With
ANTHROPIC_API_KEY set, analysis and synthesis use the Anthropic API;
otherwise local heuristics produce a clearly marked degraded report.

Examples:
  # Research with live services
  inquest research "latest developments in fusion energy"

  # Write the report to a file
  inquest research "history of RISC-V adoption" -o report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

var (
	researchOutput  string
	researchVerbose bool
)

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "Write the report to this file instead of stdout")
	researchCmd.Flags().BoolVarP(&researchVerbose, "verbose", "v", false, "Print per-agent result summaries after the report")
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return errors.ErrInvalidInput
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Close()

	bus := event.NewBus()
	bus.Subscribe("pipeline.phase_changed", func(e event.Event) {
		if ev, ok := e.(event.PhaseChangedEvent); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "→ %s\n", ev.To)
		}
	})
	bus.Subscribe("agent.degraded", func(e event.Event) {
		if ev, ok := e.(event.AgentDegradedEvent); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s degraded (%s): %s\n", ev.Agent, ev.Unit, ev.Reason)
		}
	})

	search := buildSearch(cfg, log, cmd)
	gen := buildGenerator(cfg, log, cmd)

	store := knowledge.NewStore()
	gatherer := agent.NewGatherer(store, search, cfg.Gather, agent.WithLogger(log), agent.WithBus(bus))
	analyzer := agent.NewAnalyzer(store, gen, cfg.Analyze, agent.WithLogger(log), agent.WithBus(bus))
	validator := agent.NewValidator(store, gen, cfg.Validate, agent.WithLogger(log), agent.WithBus(bus))
	synthesizer := agent.NewSynthesizer(store, gen, cfg.Synthesize, agent.WithLogger(log), agent.WithBus(bus))

	o := orchestrator.New(store, gatherer, analyzer, validator, synthesizer,
		orchestrator.WithBus(bus), orchestrator.WithLogger(log))

	res := o.Execute(cmd.Context(), query)
	if res.Failed {
		return errors.NewPipelineError(res.Reason, nil).WithPhase(res.Phase.String())
	}

	if researchOutput != "" {
		if err := os.WriteFile(researchOutput, []byte(res.Report), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", researchOutput)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
	}

	if researchVerbose {
		printAgentSummaries(cmd, gatherer, analyzer, validator, synthesizer)
	}
	return nil
}

// buildSearch assembles the provider chain from the configured keys.
// Returns nil when no provider is available, which the gatherer treats as
// permanent placeholder mode.
func buildSearch(cfg *config.Config, log *logging.Logger, cmd *cobra.Command) *websearch.Client {
	var providers []websearch.Provider
	if key := firstNonEmpty(os.Getenv("BRAVE_SEARCH_API_KEY"), cfg.Search.BraveAPIKey); key != "" {
		providers = append(providers, websearch.NewBrave(key, cfg.Search.ResultCount, cfg.Search.Timeout()))
	}
	if key := firstNonEmpty(os.Getenv("SERPER_API_KEY"), cfg.Search.SerperAPIKey); key != "" {
		providers = append(providers, websearch.NewSerper(key, cfg.Search.ResultCount, cfg.Search.Timeout()))
	}
	if len(providers) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No search API key configured; using placeholder sources.")
		return nil
	}

	return websearch.NewClient(providers,
		websearch.WithFetcher(websearch.NewPageFetcher(cfg.Search.Timeout())),
		websearch.WithFetchConcurrency(cfg.Search.FetchConcurrency),
		websearch.WithLogger(log),
	)
}

// buildGenerator assembles the retrying Anthropic generator. Returns nil
// when no API key is available, which every agent treats as permanent
// local-fallback mode.
func buildGenerator(cfg *config.Config, log *logging.Logger, cmd *cobra.Command) genai.Generator {
	base, err := genai.NewAnthropic(cfg.Generation)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "No generation API key configured; the report will be assembled from local heuristics.")
		log.Warn("generation unavailable", "error", err)
		return nil
	}
	return genai.NewRetrying(base, cfg.Generation.Attempts, cfg.Generation.RetryWait())
}

func printAgentSummaries(cmd *cobra.Command, agents ...agent.Agent) {
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "\nAgent results:")
	for _, a := range agents {
		fmt.Fprintf(out, "  %-12s %d records\n", a.Name(), len(a.ReportResults()))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

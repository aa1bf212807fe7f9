package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/genai"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/logging"
	"github.com/inquestlab/inquest/internal/util"
)

const (
	reportSummaryRunes  = 300
	reportKeyPointsEach = 3
	templateFindingsMax = 5
	templatePointsEach  = 2
)

// Synthesizer assembles the final research report from the insights,
// validations, and sources accumulated by the earlier phases. It writes
// exactly one record to the report category.
type Synthesizer struct {
	store *knowledge.Store
	gen   genai.Generator // nil means template-only report assembly
	cfg   config.SynthesizeConfig
	opts  options

	mu      sync.Mutex
	reports []knowledge.Record
}

// NewSynthesizer creates a Synthesizer. gen may be nil.
func NewSynthesizer(store *knowledge.Store, gen genai.Generator, cfg config.SynthesizeConfig, opts ...Option) *Synthesizer {
	return &Synthesizer{
		store: store,
		gen:   gen,
		cfg:   cfg,
		opts:  newOptions(opts),
	}
}

// Name implements Agent.
func (s *Synthesizer) Name() string { return NameSynthesizer }

// Run implements Agent. It fails only when both the insights and the
// validations categories are empty.
func (s *Synthesizer) Run(ctx context.Context, task Task) error {
	log := s.opts.log.WithQuery(task.QueryID).WithAgent(NameSynthesizer)

	insights := collectInsights(s.store.Get(task.QueryID, knowledge.CategoryInsights))
	validations := collectValidations(s.store.Get(task.QueryID, knowledge.CategoryValidations))
	sources := collectSources(s.store.Get(task.QueryID, knowledge.CategorySources))

	if len(insights.perSource) == 0 && insights.overall == nil && len(validations.perInsight) == 0 && validations.overall == nil {
		return errors.NewAgentError(NameSynthesizer, "nothing to synthesize", errors.ErrNoInput).WithQueryID(task.QueryID)
	}

	report := s.buildReport(ctx, task, insights, validations, sources, log)
	s.store.Put(task.QueryID, knowledge.CategoryReport, report)

	s.mu.Lock()
	s.reports = append(s.reports, report)
	s.mu.Unlock()

	log.Info("report assembled", "degraded", report.Degraded, "bytes", len(report.Body))
	return nil
}

// ReportResults implements Agent.
func (s *Synthesizer) ReportResults() []knowledge.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]knowledge.Record, len(s.reports))
	copy(out, s.reports)
	return out
}

// insightSet splits the insights category into per-source records and the
// aggregate record.
type insightSet struct {
	perSource []knowledge.Insight
	overall   *knowledge.Insight
}

type validationSet struct {
	perInsight []knowledge.Validation
	overall    *knowledge.Validation
}

func collectInsights(records []knowledge.Record) insightSet {
	var set insightSet
	for _, rec := range records {
		ins, ok := rec.(knowledge.Insight)
		if !ok {
			continue
		}
		if ins.Overall {
			cp := ins
			set.overall = &cp
			continue
		}
		set.perSource = append(set.perSource, ins)
	}
	return set
}

func collectValidations(records []knowledge.Record) validationSet {
	var set validationSet
	for _, rec := range records {
		val, ok := rec.(knowledge.Validation)
		if !ok {
			continue
		}
		if val.Overall {
			cp := val
			set.overall = &cp
			continue
		}
		set.perInsight = append(set.perInsight, val)
	}
	return set
}

func collectSources(records []knowledge.Record) []knowledge.Source {
	var out []knowledge.Source
	for _, rec := range records {
		if src, ok := rec.(knowledge.Source); ok {
			out = append(out, src)
		}
	}
	return out
}

// buildReport prefers a generated report and falls back to the
// deterministic template on failure or when no generator is configured.
func (s *Synthesizer) buildReport(ctx context.Context, task Task, insights insightSet, validations validationSet, sources []knowledge.Source, log *logging.Logger) knowledge.Report {
	if s.gen != nil {
		reply, err := s.gen.Generate(ctx, s.reportPrompt(task.Query, insights, validations))
		if err == nil {
			return knowledge.Report{
				Query: task.Query,
				Body:  reply + s.sourcesSection(sources),
			}
		}
		log.Warn("report generation degraded", "error", err)
		s.opts.publish(event.NewAgentDegradedEvent(task.QueryID, NameSynthesizer, "report", err.Error()))
	}

	return knowledge.Report{
		Query:    task.Query,
		Body:     s.templateReport(task.Query, insights, validations, sources),
		Degraded: true,
	}
}

// reportPrompt assembles the report-writing prompt from the top insights
// and the overall validation.
func (s *Synthesizer) reportPrompt(query string, insights insightSet, validations validationSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a comprehensive research report answering the question: %q\n\n", query)
	b.WriteString("Base the report on the following research findings.\n\n")

	count := 0
	for _, ins := range insights.perSource {
		if count >= s.cfg.MaxInsights {
			break
		}
		count++
		fmt.Fprintf(&b, "Finding %d (%s):\n", count, ins.Title)
		fmt.Fprintf(&b, "%s\n", util.TruncateString(ins.Summary, reportSummaryRunes))
		for i, p := range ins.KeyPoints {
			if i >= reportKeyPointsEach {
				break
			}
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	if insights.overall != nil {
		fmt.Fprintf(&b, "Overall analysis: %s\n\n", insights.overall.Summary)
	}
	if validations.overall != nil {
		fmt.Fprintf(&b, "Validation summary: %s\n", validations.overall.Summary)
		if len(validations.overall.Gaps) > 0 {
			fmt.Fprintf(&b, "Identified gaps: %s\n", strings.Join(validations.overall.Gaps, "; "))
		}
		b.WriteString("\n")
	}

	b.WriteString("Structure the report in Markdown with these sections:\n")
	b.WriteString("# Research Report\n")
	b.WriteString("## Executive Summary\n")
	b.WriteString("## Key Findings\n")
	b.WriteString("## Important Details\n")
	b.WriteString("## Conclusions\n")
	b.WriteString("## Confidence Assessment\n\n")
	b.WriteString("Be factual and cite the findings. Do not invent information not present above.")
	return b.String()
}

// sourcesSection renders the appended sources list with credibility labels.
func (s *Synthesizer) sourcesSection(sources []knowledge.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n## Sources\n")
	for i, src := range sources {
		if i >= s.cfg.MaxSources {
			break
		}
		fmt.Fprintf(&b, "- %s ([Link](%s)) - %s Credibility\n", src.Title, src.URL, s.credibilityLabel(src.Credibility))
	}
	return b.String()
}

func (s *Synthesizer) credibilityLabel(score float64) string {
	switch {
	case score > s.cfg.HighCredibility:
		return "High"
	case score > s.cfg.MediumCredibility:
		return "Medium"
	default:
		return "Standard"
	}
}

// templateReport assembles a deterministic report from the accumulated
// records without any generation capability.
func (s *Synthesizer) templateReport(query string, insights insightSet, validations validationSet, sources []knowledge.Source) string {
	var b strings.Builder
	b.WriteString("# Research Report\n\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", query)

	b.WriteString("## Executive Summary\n\n")
	if insights.overall != nil && insights.overall.Summary != "" {
		b.WriteString(insights.overall.Summary + "\n\n")
	} else {
		fmt.Fprintf(&b, "Research completed across %d sources.\n\n", len(sources))
	}

	b.WriteString("## Key Findings\n\n")
	if len(insights.perSource) == 0 {
		b.WriteString("No per-source findings were produced.\n\n")
	}
	for i, ins := range insights.perSource {
		if i >= templateFindingsMax {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, ins.Title, util.TruncateString(ins.Summary, reportSummaryRunes))
		for j, p := range ins.KeyPoints {
			if j >= templatePointsEach {
				break
			}
			fmt.Fprintf(&b, "   - %s\n", p)
		}
		b.WriteString("\n")
	}

	if validations.overall != nil {
		b.WriteString("## Validation Summary\n\n")
		b.WriteString(validations.overall.Summary + "\n\n")
		if len(validations.overall.Gaps) > 0 {
			b.WriteString("Identified gaps:\n")
			for _, gap := range validations.overall.Gaps {
				fmt.Fprintf(&b, "- %s\n", gap)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Overall confidence: %.2f\n\n", validations.overall.OverallConfidence)
	}

	if len(sources) > 0 {
		b.WriteString("## Sources\n\n")
		for i, src := range sources {
			if i >= s.cfg.MaxSources {
				break
			}
			fmt.Fprintf(&b, "%d. %s - %s Credibility\n", i+1, src.Title, s.credibilityLabel(src.Credibility))
			fmt.Fprintf(&b, "   [Link](%s)\n", src.URL)
		}
	}

	return b.String()
}

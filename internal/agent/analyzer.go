package agent

import (
	"context"
	"fmt"
	"strconv"
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

// Overall-insight confidence defaults for each degradation path: reply
// parsed, generation failed, no generator configured.
const (
	parsedConfidenceDefault    = 0.75
	failedConfidenceDefault    = 0.5
	noGeneratorConfidence      = 0.3
	confidenceFloor            = 0.1
	confidenceCeil             = 1.0
	fallbackSummaryRunes       = 200
	fallbackKeyPointRunes      = 100
	noContradictionsSentinel   = "None detected"
	defaultOverallSynthesis    = "Overall analysis completed"
	defaultPerSourceSummaryMsg = "No summary available"
)

// Analyzer turns each gathered source into a structured insight and then
// produces a single overall insight across all of them. It consumes the
// sources category and writes the insights category.
type Analyzer struct {
	store *knowledge.Store
	gen   genai.Generator // nil means permanent local-fallback mode
	cfg   config.AnalyzeConfig
	opts  options

	mu       sync.Mutex
	insights []knowledge.Record
}

// NewAnalyzer creates an Analyzer. gen may be nil.
func NewAnalyzer(store *knowledge.Store, gen genai.Generator, cfg config.AnalyzeConfig, opts ...Option) *Analyzer {
	return &Analyzer{
		store: store,
		gen:   gen,
		cfg:   cfg,
		opts:  newOptions(opts),
	}
}

// Name implements Agent.
func (a *Analyzer) Name() string { return NameAnalyzer }

// Run implements Agent. It fails only when the sources category is empty.
func (a *Analyzer) Run(ctx context.Context, task Task) error {
	log := a.opts.log.WithQuery(task.QueryID).WithAgent(NameAnalyzer)

	sources := a.store.Get(task.QueryID, knowledge.CategorySources)
	if len(sources) == 0 {
		return errors.NewAgentError(NameAnalyzer, "no sources to analyze", errors.ErrNoInput).WithQueryID(task.QueryID)
	}

	var produced []knowledge.Insight
	for _, rec := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, ok := rec.(knowledge.Source)
		if !ok {
			continue
		}
		content := src.Content
		if content == "" {
			content = src.Snippet
		}
		if content == "" {
			log.Warn("source has no content to analyze", "url", src.URL)
			continue
		}

		ins := a.analyzeSource(ctx, task, src, content, log)
		a.store.Put(task.QueryID, knowledge.CategoryInsights, ins)
		produced = append(produced, ins)
	}

	overall := a.overallInsight(ctx, task, produced, log)
	a.store.Put(task.QueryID, knowledge.CategoryInsights, overall)
	a.remember(produced, overall)

	log.Info("analysis complete", "insights", len(produced)+1)
	return nil
}

// ReportResults implements Agent.
func (a *Analyzer) ReportResults() []knowledge.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]knowledge.Record, len(a.insights))
	copy(out, a.insights)
	return out
}

func (a *Analyzer) remember(produced []knowledge.Insight, overall knowledge.Insight) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ins := range produced {
		a.insights = append(a.insights, ins)
	}
	a.insights = append(a.insights, overall)
}

// analyzeSource produces one per-source insight, degrading to a locally
// derived summary when generation fails or is not configured.
func (a *Analyzer) analyzeSource(ctx context.Context, task Task, src knowledge.Source, content string, log *logging.Logger) knowledge.Insight {
	if a.gen == nil {
		return knowledge.Insight{
			SourceURL: src.URL,
			Title:     src.Title,
			Summary:   fmt.Sprintf("Summary of %q: %s", src.Title, util.TruncateString(content, fallbackSummaryRunes)),
			KeyPoints: []string{util.TruncateString(content, fallbackKeyPointRunes)},
			Degraded:  true,
		}
	}

	prompt := perSourcePrompt(src, util.TruncateRunes(content, a.cfg.ContentCap))
	reply, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn("per-source analysis degraded", "url", src.URL, "error", err)
		a.opts.publish(event.NewAgentDegradedEvent(task.QueryID, NameAnalyzer, src.URL, err.Error()))
		return knowledge.Insight{
			SourceURL: src.URL,
			Title:     src.Title,
			Summary:   fmt.Sprintf("Analysis unavailable for %q. Content preview: %s", src.Title, util.TruncateString(content, 150)),
			KeyPoints: []string{"Content analysis degraded: " + util.TruncateString(err.Error(), fallbackKeyPointRunes)},
			Degraded:  true,
		}
	}

	ins := parseInsightReply(reply)
	ins.SourceURL = src.URL
	ins.Title = src.Title
	return ins
}

// overallInsight synthesizes one aggregate insight across the per-source
// insights, with a lower confidence default on each degradation path.
func (a *Analyzer) overallInsight(ctx context.Context, task Task, produced []knowledge.Insight, log *logging.Logger) knowledge.Insight {
	if a.gen == nil || len(produced) == 0 {
		return knowledge.Insight{
			Overall:        true,
			Summary:        fmt.Sprintf("Overall analysis of %d sources completed (no generation capability)", len(produced)),
			Contradictions: noContradictionsSentinel,
			Confidence:     noGeneratorConfidence,
			Degraded:       true,
		}
	}

	reply, err := a.gen.Generate(ctx, overallPrompt(produced, a.cfg.MaxSummaries, a.cfg.MaxKeyPoints))
	if err != nil {
		log.Warn("overall analysis degraded", "error", err)
		a.opts.publish(event.NewAgentDegradedEvent(task.QueryID, NameAnalyzer, "overall", err.Error()))
		return knowledge.Insight{
			Overall:        true,
			Summary:        fmt.Sprintf("Overall analysis of %d sources completed; generation failed: %s", len(produced), util.TruncateString(err.Error(), fallbackKeyPointRunes)),
			Contradictions: noContradictionsSentinel,
			Confidence:     failedConfidenceDefault,
			Degraded:       true,
		}
	}

	return parseOverallReply(reply)
}

// perSourcePrompt asks for a structured analysis of one source, bounded to
// the content cap.
func perSourcePrompt(src knowledge.Source, content string) string {
	var b strings.Builder
	b.WriteString("Analyze the following content and provide a structured response.\n")
	fmt.Fprintf(&b, "Source: %s\n", src.Title)
	fmt.Fprintf(&b, "URL: %s\n\n", src.URL)
	b.WriteString("Please provide:\n")
	b.WriteString("1. A concise 2-3 sentence summary of the main topic\n")
	b.WriteString("2. 3-5 key insights or facts (as bullet points)\n")
	b.WriteString("3. Any important dates, numbers, or statistics mentioned\n\n")
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	b.WriteString("Format your response as:\n")
	b.WriteString("SUMMARY: [your summary here]\n")
	b.WriteString("KEY_INSIGHTS:\n- [insight 1]\n- [insight 2]\n- [etc.]\n")
	b.WriteString("STATISTICS: [any relevant numbers/dates]")
	return b.String()
}

// overallPrompt asks for one synthesis across the per-source insights.
func overallPrompt(produced []knowledge.Insight, maxSummaries, maxPoints int) string {
	var summaries []string
	var points []string
	for _, ins := range produced {
		if ins.Summary != "" && len(summaries) < maxSummaries {
			summaries = append(summaries, ins.Summary)
		}
		for _, p := range ins.KeyPoints {
			if len(points) >= maxPoints {
				break
			}
			points = append(points, "- "+p)
		}
	}

	var b strings.Builder
	b.WriteString("Analyze the following research summaries and key points to provide an overall assessment.\n\n")
	fmt.Fprintf(&b, "SUMMARIES:\n%s\n\n", strings.Join(summaries, "\n"))
	fmt.Fprintf(&b, "KEY POINTS:\n%s\n\n", strings.Join(points, "\n"))
	b.WriteString("Please provide:\n")
	b.WriteString("1. An overall synthesis of the main themes (2-3 sentences)\n")
	b.WriteString("2. Any contradictions or conflicting information found\n")
	b.WriteString("3. Confidence level in the information (0.1-1.0)\n\n")
	b.WriteString("Format as:\n")
	b.WriteString("SYNTHESIS: [your synthesis]\n")
	b.WriteString("CONTRADICTIONS: [any contradictions found or 'None detected']\n")
	b.WriteString("CONFIDENCE: [0.1-1.0]")
	return b.String()
}

// parseInsightReply extracts summary, key points, and statistics from a
// structured reply. When the reply does not follow the requested format,
// the first line becomes the summary and any bullet-prefixed lines become
// key points.
func parseInsightReply(reply string) knowledge.Insight {
	var (
		summary    string
		keyPoints  []string
		statistics string
		section    string
	)

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
			section = "summary"
		case strings.HasPrefix(line, "KEY_INSIGHTS:"):
			section = "insights"
		case strings.HasPrefix(line, "STATISTICS:"):
			statistics = strings.TrimSpace(strings.TrimPrefix(line, "STATISTICS:"))
			section = "stats"
		case strings.HasPrefix(line, "- ") && section == "insights":
			keyPoints = append(keyPoints, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
		case section == "summary" && line != "":
			summary += " " + line
		}
	}

	// Fallback parse for replies that ignored the requested structure.
	if summary == "" {
		first, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
		summary = util.TruncateString(first, fallbackSummaryRunes)
	}
	if summary == "" {
		summary = defaultPerSourceSummaryMsg
	}
	if len(keyPoints) == 0 {
		for _, line := range strings.Split(reply, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "- ") {
				keyPoints = append(keyPoints, strings.TrimSpace(strings.TrimPrefix(line, "- ")))
			}
		}
	}
	if len(keyPoints) == 0 {
		keyPoints = []string{util.TruncateString(summary, fallbackKeyPointRunes)}
	}

	return knowledge.Insight{
		Summary:    summary,
		KeyPoints:  keyPoints,
		Statistics: statistics,
	}
}

// parseOverallReply extracts the synthesis, contradictions, and confidence
// from an overall-analysis reply, applying defaults when a field is
// missing or malformed.
func parseOverallReply(reply string) knowledge.Insight {
	synthesis := defaultOverallSynthesis
	contradictions := noContradictionsSentinel
	confidence := parsedConfidenceDefault

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SYNTHESIS:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "SYNTHESIS:")); v != "" {
				synthesis = v
			}
		case strings.HasPrefix(line, "CONTRADICTIONS:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "CONTRADICTIONS:")); v != "" {
				contradictions = v
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")), 64); err == nil {
				confidence = util.Clamp(v, confidenceFloor, confidenceCeil)
			}
		}
	}

	return knowledge.Insight{
		Overall:                true,
		Summary:                synthesis,
		Contradictions:         contradictions,
		ContradictionsDetected: contradictions != noContradictionsSentinel,
		Confidence:             confidence,
	}
}

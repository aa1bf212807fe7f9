package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/genai"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/logging"
	"github.com/inquestlab/inquest/internal/util"
)

// Heuristic credibility scoring applied when no generator is available.
const (
	heuristicBaseCredibility  = 0.6
	heuristicBonus            = 0.1
	heuristicShortPenalty     = 0.1
	heuristicLongThreshold    = 100
	heuristicShortThreshold   = 50
	heuristicConfidenceRatio  = 0.8
	generationConfidenceRatio = 0.9
	fallbackCredibility       = 0.5
	fallbackConfidence        = 0.4
	defaultReliability        = 0.75
)

// citationTerms mark summaries that reference verifiable research.
var citationTerms = []string{"study", "research", "according to", "reported"}

// Validator fact-checks each per-source insight and aggregates the results
// into one overall validation with identified gaps. It consumes the
// insights category and writes the validations category.
type Validator struct {
	store *knowledge.Store
	gen   genai.Generator // nil means heuristic-only validation
	cfg   config.ValidateConfig
	opts  options

	mu          sync.Mutex
	validations []knowledge.Record
}

// NewValidator creates a Validator. gen may be nil.
func NewValidator(store *knowledge.Store, gen genai.Generator, cfg config.ValidateConfig, opts ...Option) *Validator {
	return &Validator{
		store: store,
		gen:   gen,
		cfg:   cfg,
		opts:  newOptions(opts),
	}
}

// Name implements Agent.
func (v *Validator) Name() string { return NameValidator }

// Run implements Agent. It fails only when the insights category is empty.
func (v *Validator) Run(ctx context.Context, task Task) error {
	log := v.opts.log.WithQuery(task.QueryID).WithAgent(NameValidator)

	records := v.store.Get(task.QueryID, knowledge.CategoryInsights)
	if len(records) == 0 {
		return errors.NewAgentError(NameValidator, "no insights to validate", errors.ErrNoInput).WithQueryID(task.QueryID)
	}

	var produced []knowledge.Validation
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		ins, ok := rec.(knowledge.Insight)
		if !ok || ins.Overall {
			continue
		}

		val := v.validateInsight(ctx, task, ins, log)
		v.store.Put(task.QueryID, knowledge.CategoryValidations, val)
		produced = append(produced, val)
	}

	overall := v.overallValidation(produced)
	v.store.Put(task.QueryID, knowledge.CategoryValidations, overall)
	v.remember(produced, overall)

	log.Info("validation complete", "validations", len(produced)+1, "gaps", len(overall.Gaps))
	return nil
}

// ReportResults implements Agent.
func (v *Validator) ReportResults() []knowledge.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]knowledge.Record, len(v.validations))
	copy(out, v.validations)
	return out
}

func (v *Validator) remember(produced []knowledge.Validation, overall knowledge.Validation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, val := range produced {
		v.validations = append(v.validations, val)
	}
	v.validations = append(v.validations, overall)
}

// validateInsight checks one insight, degrading from generation to a
// fallback record on failure and to the local heuristic when no generator
// is configured.
func (v *Validator) validateInsight(ctx context.Context, task Task, ins knowledge.Insight, log *logging.Logger) knowledge.Validation {
	if v.gen == nil {
		return heuristicValidation(ins)
	}

	reply, err := v.gen.Generate(ctx, validationPrompt(ins))
	if err != nil {
		log.Warn("insight validation degraded", "source", ins.SourceURL, "error", err)
		v.opts.publish(event.NewAgentDegradedEvent(task.QueryID, NameValidator, ins.SourceURL, err.Error()))
		return knowledge.Validation{
			InsightSummary: util.TruncateString(ins.Summary, 100),
			FactChecked:    false,
			AccuracyLevel:  "Unknown",
			Credibility:    fallbackCredibility,
			Confidence:     fallbackConfidence,
			Issues:         "Validation unavailable: " + util.TruncateString(err.Error(), 100),
			Method:         "fallback",
		}
	}

	return parseValidationReply(reply, ins)
}

// validationPrompt asks for a structured accuracy and bias assessment of
// one insight.
func validationPrompt(ins knowledge.Insight) string {
	var b strings.Builder
	b.WriteString("Assess the following research finding for accuracy and potential bias.\n\n")
	fmt.Fprintf(&b, "Finding: %s\n", ins.Summary)
	if len(ins.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points:\n- %s\n", strings.Join(ins.KeyPoints, "\n- "))
	}
	b.WriteString("\nPlease assess:\n")
	b.WriteString("1. Accuracy level of the claims (High/Medium/Low)\n")
	b.WriteString("2. Presence of bias (None/Low/Medium/High)\n")
	b.WriteString("3. Overall reliability score (0.1-1.0)\n")
	b.WriteString("4. Any specific issues found\n\n")
	b.WriteString("Format as:\n")
	b.WriteString("ACCURACY: [High/Medium/Low]\n")
	b.WriteString("BIAS: [None/Low/Medium/High]\n")
	b.WriteString("RELIABILITY: [0.1-1.0]\n")
	b.WriteString("ISSUES: [specific issues or 'None identified']")
	return b.String()
}

// parseValidationReply extracts the assessment fields, applying defaults
// when fields are missing. Only the first token of the accuracy and bias
// values is considered so trailing explanations do not break matching.
func parseValidationReply(reply string, ins knowledge.Insight) knowledge.Validation {
	accuracy := "Medium"
	bias := "None"
	reliability := defaultReliability
	issues := "None identified"

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ACCURACY:"):
			if v := firstToken(strings.TrimPrefix(line, "ACCURACY:")); v != "" {
				accuracy = v
			}
		case strings.HasPrefix(line, "BIAS:"):
			if v := firstToken(strings.TrimPrefix(line, "BIAS:")); v != "" {
				bias = v
			}
		case strings.HasPrefix(line, "RELIABILITY:"):
			if f, err := strconv.ParseFloat(firstToken(strings.TrimPrefix(line, "RELIABILITY:")), 64); err == nil {
				reliability = util.Clamp(f, confidenceFloor, confidenceCeil)
			}
		case strings.HasPrefix(line, "ISSUES:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "ISSUES:")); v != "" {
				issues = v
			}
		}
	}

	lowerAccuracy := strings.ToLower(accuracy)
	lowerBias := strings.ToLower(bias)

	return knowledge.Validation{
		InsightSummary: util.TruncateString(ins.Summary, 100),
		FactChecked:    lowerAccuracy == "high" || lowerAccuracy == "medium",
		AccuracyLevel:  accuracy,
		BiasDetected:   lowerBias != "none" && lowerBias != "low",
		BiasLevel:      bias,
		Credibility:    reliability,
		Confidence:     reliability * generationConfidenceRatio,
		Issues:         issues,
		Method:         "generation",
	}
}

// heuristicValidation scores an insight from surface signals: presence of
// numbers, citation language, and summary length.
func heuristicValidation(ins knowledge.Insight) knowledge.Validation {
	cred := heuristicBaseCredibility
	lower := strings.ToLower(ins.Summary)

	if strings.IndexFunc(ins.Summary, unicode.IsDigit) >= 0 {
		cred += heuristicBonus
	}
	if util.ContainsAny(lower, citationTerms) {
		cred += heuristicBonus
	}
	switch n := len(ins.Summary); {
	case n > heuristicLongThreshold:
		cred += heuristicBonus
	case n < heuristicShortThreshold:
		cred -= heuristicShortPenalty
	}
	cred = util.Clamp(cred, confidenceFloor, confidenceCeil)

	return knowledge.Validation{
		InsightSummary: util.TruncateString(ins.Summary, 100),
		FactChecked:    true,
		AccuracyLevel:  "Medium",
		BiasDetected:   false,
		BiasLevel:      "None",
		Credibility:    cred,
		Confidence:     cred * heuristicConfidenceRatio,
		Issues:         "None identified",
		Method:         "heuristic",
	}
}

// overallValidation aggregates the per-insight validations and derives the
// research gaps from the configured thresholds.
func (v *Validator) overallValidation(produced []knowledge.Validation) knowledge.Validation {
	stats := knowledge.ValidationStats{TotalInsights: len(produced)}

	var confSum float64
	for _, val := range produced {
		confSum += val.Confidence
		if val.FactChecked {
			stats.FactChecked++
		}
		if val.BiasDetected {
			stats.BiasDetected++
		}
		if val.Credibility > v.cfg.HighCredibilityScore {
			stats.HighCredibility++
		}
	}

	avgConfidence := 0.0
	if len(produced) > 0 {
		avgConfidence = confSum / float64(len(produced))
	}

	gaps := v.identifyGaps(stats, avgConfidence)
	var issuesFound []string
	for _, val := range produced {
		if val.Issues != "" && val.Issues != "None identified" {
			issuesFound = append(issuesFound, val.Issues)
		}
	}

	return knowledge.Validation{
		Overall:           true,
		Summary:           fmt.Sprintf("Validated %d insights: %d fact-checked, %d with bias concerns", stats.TotalInsights, stats.FactChecked, stats.BiasDetected),
		Gaps:              gaps,
		IssuesFound:       issuesFound,
		OverallConfidence: avgConfidence,
		Stats:             stats,
	}
}

// identifyGaps applies the configured thresholds against the aggregate
// statistics. An empty gap list is replaced by the no-gaps marker so the
// synthesizer always has something to report.
func (v *Validator) identifyGaps(stats knowledge.ValidationStats, avgConfidence float64) []string {
	var gaps []string
	if stats.TotalInsights > 0 {
		total := float64(stats.TotalInsights)
		if float64(stats.FactChecked)/total < v.cfg.FactCheckedMinFraction {
			gaps = append(gaps, "Insufficient fact verification")
		}
		if avgConfidence < v.cfg.ConfidenceMin {
			gaps = append(gaps, "Low overall confidence in sources")
		}
		if float64(stats.BiasDetected)/total > v.cfg.BiasMaxFraction {
			gaps = append(gaps, "Potential bias detected in multiple sources")
		}
		if float64(stats.HighCredibility)/total < v.cfg.HighCredibilityMinFraction {
			gaps = append(gaps, "Limited high-credibility sources")
		}
	}
	if len(gaps) == 0 {
		gaps = []string{"No significant gaps identified"}
	}
	return gaps
}

// firstToken returns the first whitespace-delimited word of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

package knowledge

// Category names an ordered, append-only record sequence within one
// query's scope.
type Category string

// Categories written by the fixed pipeline. Each category has exactly one
// writing phase; later phases only read.
const (
	// CategorySources holds Source records written by the gatherer.
	CategorySources Category = "raw_sources"
	// CategoryInsights holds Insight records written by the analyzer.
	CategoryInsights Category = "analyzed_data"
	// CategoryValidations holds Validation records written by the validator.
	CategoryValidations Category = "validated_data"
	// CategoryReport holds the single Report record written by the synthesizer.
	CategoryReport Category = "final_response"
)

// Record is one immutable unit of phase output. Concrete record types are
// Source, Insight, Validation, and Report; readers type-assert on the
// category they consume.
type Record interface {
	record()
}

// Source is one gathered web source, scored for credibility.
type Source struct {
	Title       string
	URL         string
	Snippet     string
	Content     string
	Credibility float64
	// Degraded marks placeholder content produced when search was
	// unavailable or returned nothing usable.
	Degraded bool
}

func (Source) record() {}

// Insight is the analyzer's output for one source. When Overall is set it
// is the single aggregate insight synthesized across all sources.
type Insight struct {
	// Overall discriminates the terminal aggregate record from per-source
	// records within CategoryInsights.
	Overall bool

	// Per-source fields.
	SourceURL  string
	Title      string
	Summary    string
	KeyPoints  []string
	Statistics string

	// Overall-only fields.
	Contradictions         string
	ContradictionsDetected bool
	Confidence             float64

	// Degraded marks insights produced by the local fallback rather than
	// the generation capability.
	Degraded bool
}

func (Insight) record() {}

// Validation is the validator's assessment of one insight. When Overall is
// set it is the aggregate validation across all insights.
type Validation struct {
	// Overall discriminates the terminal aggregate record from per-insight
	// records within CategoryValidations.
	Overall bool

	// Per-insight fields.
	InsightSummary string
	FactChecked    bool
	AccuracyLevel  string
	BiasDetected   bool
	BiasLevel      string
	Credibility    float64
	Confidence     float64
	Issues         string
	// Method records how the assessment was produced: "generation",
	// "heuristic", or "fallback".
	Method string

	// Overall-only fields.
	Summary           string
	Gaps              []string
	IssuesFound       []string
	OverallConfidence float64
	Stats             ValidationStats
}

func (Validation) record() {}

// ValidationStats aggregates per-insight validation outcomes.
type ValidationStats struct {
	TotalInsights   int
	FactChecked     int
	BiasDetected    int
	HighCredibility int
}

// Report is the synthesizer's terminal artifact: the rendered research
// report returned to the caller.
type Report struct {
	Query string
	Body  string
	// Degraded marks a report assembled by template substitution rather
	// than the generation capability.
	Degraded bool
}

func (Report) record() {}

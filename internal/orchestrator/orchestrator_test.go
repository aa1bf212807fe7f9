package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/inquestlab/inquest/internal/agent"
	"github.com/inquestlab/inquest/internal/config"
	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/genai"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/websearch"
)

// fakeAgent counts calls and runs an injectable body.
type fakeAgent struct {
	name  string
	calls int
	run   func(ctx context.Context, task agent.Task) error
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) Run(ctx context.Context, task agent.Task) error {
	f.calls++
	if f.run != nil {
		return f.run(ctx, task)
	}
	return nil
}

func (f *fakeAgent) ReportResults() []knowledge.Record { return nil }

// reportWriter is a passing synthesizer stand-in that writes a report.
func reportWriter(store *knowledge.Store, body string) *fakeAgent {
	return &fakeAgent{
		name: agent.NameSynthesizer,
		run: func(ctx context.Context, task agent.Task) error {
			store.Put(task.QueryID, knowledge.CategoryReport, knowledge.Report{
				Query: task.Query,
				Body:  body,
			})
			return nil
		},
	}
}

func passingAgent(name string) *fakeAgent { return &fakeAgent{name: name} }

type stubProvider struct {
	results []websearch.Result
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	return p.results, nil
}

type stubFetcher struct {
	content map[string]string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) string {
	return f.content[url]
}

func TestExecuteHappyPath(t *testing.T) {
	store := knowledge.NewStore()
	o := New(store,
		passingAgent(agent.NameGatherer),
		passingAgent(agent.NameAnalyzer),
		passingAgent(agent.NameValidator),
		reportWriter(store, "the report body"),
	)

	res := o.Execute(context.Background(), "some question")
	if res.Failed {
		t.Fatalf("Execute failed: %s", res.Reason)
	}
	if res.Phase != PhaseDone {
		t.Errorf("phase = %s, want done", res.Phase)
	}
	if res.Report != "the report body" {
		t.Errorf("report = %q", res.Report)
	}
	if res.String() != "the report body" {
		t.Errorf("String() = %q, want the report body", res.String())
	}
}

func TestExecutePurgesStoreAlways(t *testing.T) {
	tests := []struct {
		name     string
		analyzer *fakeAgent
	}{
		{
			name:     "successful run",
			analyzer: passingAgent(agent.NameAnalyzer),
		},
		{
			name: "structural failure",
			analyzer: &fakeAgent{
				name: agent.NameAnalyzer,
				run: func(ctx context.Context, task agent.Task) error {
					return errors.NewAgentError(agent.NameAnalyzer, "no sources to analyze", errors.ErrNoInput)
				},
			},
		},
		{
			name: "panicking agent",
			analyzer: &fakeAgent{
				name: agent.NameAnalyzer,
				run: func(ctx context.Context, task agent.Task) error {
					panic("agent bug")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := knowledge.NewStore()
			gatherer := &fakeAgent{
				name: agent.NameGatherer,
				run: func(ctx context.Context, task agent.Task) error {
					store.Put(task.QueryID, knowledge.CategorySources, knowledge.Source{URL: "https://a.test/1"})
					return nil
				},
			}
			o := New(store, gatherer, tt.analyzer,
				passingAgent(agent.NameValidator),
				reportWriter(store, "body"),
			)

			res := o.Execute(context.Background(), "q")
			if got := store.All(res.QueryID); len(got) != 0 {
				t.Errorf("store not purged after %s: %v", tt.name, got)
			}
		})
	}
}

func TestExecuteStructuralAbort(t *testing.T) {
	store := knowledge.NewStore()
	analyzer := &fakeAgent{
		name: agent.NameAnalyzer,
		run: func(ctx context.Context, task agent.Task) error {
			return errors.NewAgentError(agent.NameAnalyzer, "no sources to analyze", errors.ErrNoInput).WithQueryID(task.QueryID)
		},
	}
	validator := passingAgent(agent.NameValidator)
	synthesizer := reportWriter(store, "body")

	bus := event.NewBus()
	var completed []event.PipelineCompletedEvent
	bus.Subscribe("pipeline.completed", func(e event.Event) {
		if ev, ok := e.(event.PipelineCompletedEvent); ok {
			completed = append(completed, ev)
		}
	})

	o := New(store, passingAgent(agent.NameGatherer), analyzer, validator, synthesizer, WithBus(bus))
	res := o.Execute(context.Background(), "q")

	if !res.Failed {
		t.Fatal("Execute must report failure")
	}
	if res.Phase != PhaseAnalyzing {
		t.Errorf("failed phase = %s, want analyzing", res.Phase)
	}
	if !strings.Contains(res.Reason, "required input was missing") {
		t.Errorf("reason = %q", res.Reason)
	}
	if validator.calls != 0 || synthesizer.calls != 0 {
		t.Errorf("downstream agents ran after abort: validator=%d synthesizer=%d", validator.calls, synthesizer.calls)
	}
	if res.String() == "" || strings.Contains(res.String(), "%!") {
		t.Errorf("String() not caller-safe: %q", res.String())
	}
	if len(completed) != 1 || completed[0].Succeeded || completed[0].FailedPhase != "analyzing" {
		t.Errorf("completion events = %+v", completed)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	store := knowledge.NewStore()
	o := New(store,
		passingAgent(agent.NameGatherer),
		passingAgent(agent.NameAnalyzer),
		&fakeAgent{
			name: agent.NameValidator,
			run: func(ctx context.Context, task agent.Task) error {
				panic("validator bug")
			},
		},
		reportWriter(store, "body"),
	)

	res := o.Execute(context.Background(), "q")
	if !res.Failed {
		t.Fatal("panic must surface as a failed result")
	}
	if res.Phase != PhaseValidating {
		t.Errorf("failed phase = %s, want validating", res.Phase)
	}
	if !strings.Contains(res.Reason, "agent panicked") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestExecuteCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := knowledge.NewStore()
	o := New(store,
		passingAgent(agent.NameGatherer),
		passingAgent(agent.NameAnalyzer),
		passingAgent(agent.NameValidator),
		reportWriter(store, "body"),
	)

	res := o.Execute(ctx, "q")
	if !res.Failed {
		t.Fatal("canceled context must fail the pipeline")
	}
	if res.Phase != PhaseGathering {
		t.Errorf("failed phase = %s, want gathering", res.Phase)
	}
	if res.Reason != "research was canceled" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestExecuteConcurrentQueriesIsolated(t *testing.T) {
	store := knowledge.NewStore()
	gatherer := &fakeAgent{
		name: agent.NameGatherer,
		run: func(ctx context.Context, task agent.Task) error {
			store.Put(task.QueryID, knowledge.CategorySources, knowledge.Source{URL: "https://" + task.Query})
			return nil
		},
	}
	synthesizer := &fakeAgent{
		name: agent.NameSynthesizer,
		run: func(ctx context.Context, task agent.Task) error {
			srcs := store.Get(task.QueryID, knowledge.CategorySources)
			if len(srcs) != 1 {
				t.Errorf("query %s sees %d sources, want its own 1", task.Query, len(srcs))
			}
			store.Put(task.QueryID, knowledge.CategoryReport, knowledge.Report{Body: task.Query})
			return nil
		},
	}
	o := New(store, gatherer, passingAgent(agent.NameAnalyzer), passingAgent(agent.NameValidator), synthesizer)

	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		query := string(rune('a' + i))
		go func() { done <- o.Execute(context.Background(), query) }()
	}
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		res := <-done
		if res.Failed {
			t.Errorf("concurrent run failed: %s", res.Reason)
		}
		if seen[res.QueryID] {
			t.Errorf("duplicate query ID %s", res.QueryID)
		}
		seen[res.QueryID] = true
	}
}

// TestPipelineEndToEnd wires the real agents with stubbed search and
// generation: two gathered sources must yield three insights (two
// per-source plus the aggregate), three validations, and one report that
// lists both source URLs.
func TestPipelineEndToEnd(t *testing.T) {
	provider := &stubProvider{results: []websearch.Result{
		{Title: "Deep dive", URL: "https://nature.com/a", Snippet: "sa"},
		{Title: "Overview piece", URL: "https://example.com/b", Snippet: "sb"},
	}}
	body := "according to a recent study, the findings were published. " + strings.Repeat("detail ", 200)
	fetcher := &stubFetcher{content: map[string]string{
		"https://nature.com/a":  body,
		"https://example.com/b": body,
	}}
	search := websearch.NewClient([]websearch.Provider{provider}, websearch.WithFetcher(fetcher))

	var insightsSeen, validationsSeen int
	gen := genai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "SUMMARY:"):
			insightsSeen++
			return "SUMMARY: A finding.\nKEY_INSIGHTS:\n- one point\nSTATISTICS: none", nil
		case strings.Contains(prompt, "SUMMARIES:"):
			return "SYNTHESIS: Combined view.\nCONTRADICTIONS: None detected\nCONFIDENCE: 0.8", nil
		case strings.Contains(prompt, "ACCURACY:"):
			validationsSeen++
			return "ACCURACY: High\nBIAS: None\nRELIABILITY: 0.85\nISSUES: None identified", nil
		default:
			return "# Research Report\n\n## Executive Summary\n\nGenerated findings.", nil
		}
	})

	store := knowledge.NewStore()
	cfg := config.Default()
	cfg.Gather.QueryDelayMs = 0

	o := New(store,
		agent.NewGatherer(store, search, cfg.Gather),
		agent.NewAnalyzer(store, gen, cfg.Analyze),
		agent.NewValidator(store, gen, cfg.Validate),
		agent.NewSynthesizer(store, gen, cfg.Synthesize),
	)

	res := o.Execute(context.Background(), "research question")
	if res.Failed {
		t.Fatalf("Execute failed: %s", res.Reason)
	}
	if insightsSeen != 2 {
		t.Errorf("per-source analyses = %d, want 2", insightsSeen)
	}
	if validationsSeen != 2 {
		t.Errorf("per-insight validations = %d, want 2", validationsSeen)
	}
	if !strings.Contains(res.Report, "Generated findings.") {
		t.Error("report missing the generated body")
	}
	for _, url := range []string{"https://nature.com/a", "https://example.com/b"} {
		if !strings.Contains(res.Report, url) {
			t.Errorf("report missing source %s", url)
		}
	}
	if got := store.All(res.QueryID); len(got) != 0 {
		t.Errorf("store not purged: %v", got)
	}
}

// TestPipelineRecordCounts drives the real analyzer, validator, and
// synthesizer from two fixed sources and checks the per-category record
// counts via each agent's accumulated results: two per-source insights
// plus one aggregate, two validations plus one aggregate, one report.
func TestPipelineRecordCounts(t *testing.T) {
	store := knowledge.NewStore()
	gatherer := &fakeAgent{
		name: agent.NameGatherer,
		run: func(ctx context.Context, task agent.Task) error {
			store.Put(task.QueryID, knowledge.CategorySources, knowledge.Source{
				Title: "Labor market study", URL: "https://nature.com/jobs", Content: "study content", Credibility: 0.9,
			})
			store.Put(task.QueryID, knowledge.CategorySources, knowledge.Source{
				Title: "Industry survey", URL: "https://example.com/survey", Content: "survey content", Credibility: 0.6,
			})
			return nil
		},
	}

	gen := genai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "SUMMARY:"):
			return "SUMMARY: Automation shifts demand.\nKEY_INSIGHTS:\n- roles change", nil
		case strings.Contains(prompt, "SUMMARIES:"):
			return "SYNTHESIS: Mixed impact.\nCONTRADICTIONS: None detected\nCONFIDENCE: 0.7", nil
		case strings.Contains(prompt, "ACCURACY:"):
			return "ACCURACY: Medium\nBIAS: None\nRELIABILITY: 0.7\nISSUES: None identified", nil
		default:
			return "# Research Report\n\nImpact analysis.", nil
		}
	})

	cfg := config.Default()
	analyzer := agent.NewAnalyzer(store, gen, cfg.Analyze)
	validator := agent.NewValidator(store, gen, cfg.Validate)
	synthesizer := agent.NewSynthesizer(store, gen, cfg.Synthesize)

	o := New(store, gatherer, analyzer, validator, synthesizer)
	res := o.Execute(context.Background(), "impact of AI on job markets")
	if res.Failed {
		t.Fatalf("Execute failed: %s", res.Reason)
	}

	if got := len(analyzer.ReportResults()); got != 3 {
		t.Errorf("insight records = %d, want 2 per-source + 1 overall", got)
	}
	if got := len(validator.ReportResults()); got != 3 {
		t.Errorf("validation records = %d, want 2 per-insight + 1 overall", got)
	}
	if got := len(synthesizer.ReportResults()); got != 1 {
		t.Errorf("report records = %d, want exactly 1", got)
	}
	for _, url := range []string{"https://nature.com/jobs", "https://example.com/survey"} {
		if !strings.Contains(res.Report, url) {
			t.Errorf("sources section missing %s", url)
		}
	}
}

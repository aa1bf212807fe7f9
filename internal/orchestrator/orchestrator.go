package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inquestlab/inquest/internal/agent"
	"github.com/inquestlab/inquest/internal/errors"
	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/logging"
)

// Result is the caller-facing outcome of one pipeline run. It is always
// safe to print: a failed run carries the phase and reason instead of a
// report body.
type Result struct {
	QueryID string
	Report  string
	Failed  bool
	Phase   Phase
	Reason  string
}

// String renders the result for direct display.
func (r Result) String() string {
	if r.Failed {
		return fmt.Sprintf("Research failed during %s: %s", r.Phase, r.Reason)
	}
	return r.Report
}

// Orchestrator runs the research pipeline. It owns the knowledge store and
// one agent per role; agents are injected so tests can substitute any role.
type Orchestrator struct {
	store       *knowledge.Store
	gatherer    agent.Agent
	analyzer    agent.Agent
	validator   agent.Agent
	synthesizer agent.Agent
	bus         *event.Bus
	log         *logging.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBus sets the event bus for pipeline lifecycle events.
func WithBus(bus *event.Bus) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithLogger sets the orchestrator's logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an Orchestrator over the given store and agents.
func New(store *knowledge.Store, gatherer, analyzer, validator, synthesizer agent.Agent, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		gatherer:    gatherer,
		analyzer:    analyzer,
		validator:   validator,
		synthesizer: synthesizer,
		log:         logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs the full pipeline for one query. It is safe to call from
// multiple goroutines; each call works under a fresh query ID and the
// store isolates queries from each other.
//
// Execute never returns an error: every failure is folded into the Result,
// and the query's records are purged before it returns.
func (o *Orchestrator) Execute(ctx context.Context, query string) Result {
	queryID := uuid.NewString()
	log := o.log.WithQuery(queryID)
	task := agent.Task{QueryID: queryID, Query: query}

	defer o.store.Purge(queryID)

	o.publish(event.NewPipelineStartedEvent(queryID, query))
	log.Info("pipeline started", "query", query)

	phases := []struct {
		phase Phase
		agent agent.Agent
	}{
		{PhaseGathering, o.gatherer},
		{PhaseAnalyzing, o.analyzer},
		{PhaseValidating, o.validator},
		{PhaseSynthesizing, o.synthesizer},
	}

	prev := "start"
	for i, p := range phases {
		o.publish(event.NewPhaseChangedEvent(queryID, prev, p.phase.String()))
		prev = p.phase.String()

		if err := o.runPhase(ctx, p.phase, p.agent, task); err != nil {
			reason := failureReason(err)
			log.Error("pipeline failed", "phase", p.phase.String(), "error", err)
			o.publish(event.NewPipelineCompletedEvent(queryID, false, p.phase.String(), i))
			return Result{
				QueryID: queryID,
				Failed:  true,
				Phase:   p.phase,
				Reason:  reason,
			}
		}
		log.Info("phase complete", "phase", p.phase.String())
	}

	report := o.extractReport(queryID)
	o.publish(event.NewPhaseChangedEvent(queryID, prev, PhaseDone.String()))
	o.publish(event.NewPipelineCompletedEvent(queryID, true, "", len(phases)))
	log.Info("pipeline complete", "report_bytes", len(report))

	return Result{
		QueryID: queryID,
		Report:  report,
		Phase:   PhaseDone,
	}
}

// runPhase executes one agent, converting a panic into an error so a
// misbehaving agent can never take down the pipeline.
func (o *Orchestrator) runPhase(ctx context.Context, phase Phase, a agent.Agent, task agent.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewPipelineError(fmt.Sprintf("agent panicked: %v", r), nil).
				WithPhase(phase.String()).
				WithQueryID(task.QueryID)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return a.Run(ctx, task)
}

// extractReport pulls the report body written by the synthesizer. A
// missing report after a successful synthesis phase indicates an agent
// contract violation, reported rather than panicked on.
func (o *Orchestrator) extractReport(queryID string) string {
	records := o.store.Get(queryID, knowledge.CategoryReport)
	for i := len(records) - 1; i >= 0; i-- {
		if rep, ok := records[i].(knowledge.Report); ok {
			return rep.Body
		}
	}
	return "No report was produced."
}

func (o *Orchestrator) publish(ev event.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

// failureReason produces display text for a phase failure.
func failureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrNoInput):
		return "required input was missing: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "research was canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "research timed out"
	default:
		return err.Error()
	}
}

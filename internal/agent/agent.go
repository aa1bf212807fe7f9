package agent

import (
	"context"

	"github.com/inquestlab/inquest/internal/event"
	"github.com/inquestlab/inquest/internal/knowledge"
	"github.com/inquestlab/inquest/internal/logging"
)

// Agent role names, used in logs, events, and error context.
const (
	NameGatherer    = "gatherer"
	NameAnalyzer    = "analyzer"
	NameValidator   = "validator"
	NameSynthesizer = "synthesizer"
)

// Task identifies one unit of pipeline work handed to an agent.
type Task struct {
	// QueryID scopes the agent's reads and writes in the knowledge store.
	QueryID string
	// Query is the caller-submitted query text.
	Query string
}

// Agent is the capability interface every pipeline role implements.
// Run returns nil on success; the only structural failure is an empty
// required input category, reported as an *errors.AgentError wrapping
// errors.ErrNoInput. Unit-level external failures never escalate out of
// Run; they are absorbed into degraded output.
type Agent interface {
	// Name returns the agent's role name.
	Name() string

	// Run executes the agent's phase for the given task. On success the
	// agent has written at least its terminal "overall" record to its
	// output category.
	Run(ctx context.Context, task Task) error

	// ReportResults returns the agent's locally accumulated view of what
	// it produced across runs. Purely informational; the orchestrator
	// never consults it for control flow.
	ReportResults() []knowledge.Record
}

// options carries the cross-cutting collaborators shared by all roles.
type options struct {
	log *logging.Logger
	bus *event.Bus
}

// Option configures an agent.
type Option func(*options)

// WithLogger sets the agent's logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithBus sets the event bus for degraded-unit notifications.
func WithBus(bus *event.Bus) Option {
	return func(o *options) { o.bus = bus }
}

func newOptions(opts []Option) options {
	o := options{log: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// publish sends ev to the bus if one is configured.
func (o options) publish(ev event.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

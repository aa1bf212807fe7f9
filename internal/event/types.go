package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "pipeline.phase_changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Pipeline Lifecycle Events
// -----------------------------------------------------------------------------

// PipelineStartedEvent is emitted when a pipeline run begins.
type PipelineStartedEvent struct {
	baseEvent
	QueryID string // Identifier allocated for this run
	Query   string // Caller-submitted query text
}

// NewPipelineStartedEvent creates a PipelineStartedEvent.
func NewPipelineStartedEvent(queryID, query string) PipelineStartedEvent {
	return PipelineStartedEvent{
		baseEvent: newBaseEvent("pipeline.started"),
		QueryID:   queryID,
		Query:     query,
	}
}

// PhaseChangedEvent is emitted when the pipeline transitions between phases.
type PhaseChangedEvent struct {
	baseEvent
	QueryID string
	From    string // Previous phase name, empty for the first phase
	To      string // New phase name
}

// NewPhaseChangedEvent creates a PhaseChangedEvent.
func NewPhaseChangedEvent(queryID, from, to string) PhaseChangedEvent {
	return PhaseChangedEvent{
		baseEvent: newBaseEvent("pipeline.phase_changed"),
		QueryID:   queryID,
		From:      from,
		To:        to,
	}
}

// PipelineCompletedEvent is emitted when a pipeline run ends, successfully
// or not. FailedPhase is empty on success.
type PipelineCompletedEvent struct {
	baseEvent
	QueryID     string
	Succeeded   bool
	FailedPhase string
	PhasesRun   int
}

// NewPipelineCompletedEvent creates a PipelineCompletedEvent.
func NewPipelineCompletedEvent(queryID string, succeeded bool, failedPhase string, phasesRun int) PipelineCompletedEvent {
	return PipelineCompletedEvent{
		baseEvent:   newBaseEvent("pipeline.completed"),
		QueryID:     queryID,
		Succeeded:   succeeded,
		FailedPhase: failedPhase,
		PhasesRun:   phasesRun,
	}
}

// -----------------------------------------------------------------------------
// Agent Events
// -----------------------------------------------------------------------------

// AgentDegradedEvent is emitted when a unit of agent work exhausts its
// external retries and falls back to locally-computed output.
type AgentDegradedEvent struct {
	baseEvent
	QueryID string
	Agent   string // Agent that degraded (gatherer, analyzer, ...)
	Unit    string // Identifier of the degraded unit (source URL, insight, ...)
	Reason  string
}

// NewAgentDegradedEvent creates an AgentDegradedEvent.
func NewAgentDegradedEvent(queryID, agent, unit, reason string) AgentDegradedEvent {
	return AgentDegradedEvent{
		baseEvent: newBaseEvent("agent.degraded"),
		QueryID:   queryID,
		Agent:     agent,
		Unit:      unit,
		Reason:    reason,
	}
}

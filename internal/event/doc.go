// Package event defines event types for observing pipeline execution.
// The orchestrator and agents publish events to a synchronous bus so that
// surrounding surfaces (CLI progress output, future APIs) can observe a run
// without the pipeline core depending on them. Events are informational
// only: no component consults the bus for control flow.
package event

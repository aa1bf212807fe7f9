// Package orchestrator drives the four research phases for a query:
// gathering, analysis, validation, and synthesis. Each phase runs to
// completion before the next starts, reading and writing the shared
// knowledge store under the query's ID.
//
// Execute never returns an error and never panics outward. Every failure
// mode, including a panicking agent, collapses into a caller-safe Result,
// and the query's slice of the store is purged no matter how the run ends.
package orchestrator

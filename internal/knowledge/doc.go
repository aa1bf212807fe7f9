// Package knowledge provides the shared per-query knowledge store that the
// pipeline agents read from and write to.
//
// The store maps (query ID, category) to an ordered, append-only sequence
// of records. Each query ID owns its own sub-table and its own mutex, so
// unrelated pipeline runs never contend and purging a run releases both its
// data and its lock in one step. Records are immutable after insertion;
// corrections are made by appending new records, and deletion happens only
// at whole-query granularity via Purge.
package knowledge

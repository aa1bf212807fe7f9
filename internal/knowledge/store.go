package knowledge

import "sync"

// Store is a keyed, append-only, concurrency-safe container mapping
// (query ID, category) to an ordered sequence of records.
//
// Each query ID owns an explicit sub-table guarded by its own mutex, so
// operations on unrelated queries never contend. Within one pipeline run
// the phases are strictly sequential and the per-query lock is never
// actually contended; it exists for safety against overlapping access
// patterns such as a future concurrent retry.
type Store struct {
	mu      sync.Mutex // guards the queries table itself
	queries map[string]*queryEntry
}

// queryEntry is one query's sub-table. Its mutex funnels every read and
// write of the category sequences beneath it.
type queryEntry struct {
	mu         sync.Mutex
	categories map[Category][]Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		queries: make(map[string]*queryEntry),
	}
}

// entry returns the sub-table for queryID, creating it if absent.
func (s *Store) entry(queryID string) *queryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.queries[queryID]
	if !ok {
		e = &queryEntry{categories: make(map[Category][]Record)}
		s.queries[queryID] = e
	}
	return e
}

// lookup returns the sub-table for queryID without creating it.
func (s *Store) lookup(queryID string) (*queryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.queries[queryID]
	return e, ok
}

// Put appends rec to the sequence at (queryID, category), creating the
// sequence if absent. Records are never mutated or removed individually
// after insertion.
func (s *Store) Put(queryID string, category Category, rec Record) {
	e := s.entry(queryID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories[category] = append(e.categories[category], rec)
}

// Get returns the current sequence for (queryID, category) in insertion
// order, or an empty sequence if none exists yet. The returned slice is a
// copy; callers never alias the store's backing array.
func (s *Store) Get(queryID string, category Category) []Record {
	e, ok := s.lookup(queryID)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.categories[category]
	if len(seq) == 0 {
		return nil
	}
	out := make([]Record, len(seq))
	copy(out, seq)
	return out
}

// All returns the full mapping of category to sequence for queryID, used
// for bulk inspection at the end of a run. The mapping and its sequences
// are copies. An unknown queryID yields an empty mapping.
func (s *Store) All(queryID string) map[Category][]Record {
	out := make(map[Category][]Record)

	e, ok := s.lookup(queryID)
	if !ok {
		return out
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for cat, seq := range e.categories {
		cp := make([]Record, len(seq))
		copy(cp, seq)
		out[cat] = cp
	}
	return out
}

// Purge atomically removes all categories and the backing lock for
// queryID. Callers must guarantee no agent is still active for that
// queryID; the orchestrator enforces this by purging only after the whole
// pipeline has terminated.
func (s *Store) Purge(queryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queries, queryID)
}

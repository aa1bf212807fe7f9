package knowledge

import (
	"fmt"
	"sync"
	"testing"
)

func TestStore_PutGetOrdering(t *testing.T) {
	s := NewStore()

	a := Source{Title: "A", URL: "http://a.example.com"}
	b := Source{Title: "B", URL: "http://b.example.com"}
	s.Put("q-1", CategorySources, a)
	s.Put("q-1", CategorySources, b)

	got := s.Get("q-1", CategorySources)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].(Source).Title != "A" || got[1].(Source).Title != "B" {
		t.Errorf("insertion order not preserved: %v then %v", got[0], got[1])
	}
}

func TestStore_GetUnknownKeysAreEmpty(t *testing.T) {
	s := NewStore()

	if got := s.Get("missing", CategorySources); len(got) != 0 {
		t.Errorf("unknown query should yield empty sequence, got %d", len(got))
	}

	s.Put("q-1", CategorySources, Source{Title: "A"})
	if got := s.Get("q-1", CategoryInsights); len(got) != 0 {
		t.Errorf("unknown category should yield empty sequence, got %d", len(got))
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Put("q-1", CategorySources, Source{Title: "A"})

	got := s.Get("q-1", CategorySources)
	got[0] = Source{Title: "mutated"}

	again := s.Get("q-1", CategorySources)
	if again[0].(Source).Title != "A" {
		t.Error("mutating a returned slice must not affect the store")
	}
}

func TestStore_All(t *testing.T) {
	s := NewStore()
	s.Put("q-1", CategorySources, Source{Title: "A"})
	s.Put("q-1", CategoryInsights, Insight{Summary: "s1"})
	s.Put("q-1", CategoryInsights, Insight{Overall: true})

	all := s.All("q-1")
	if len(all) != 2 {
		t.Fatalf("got %d categories, want 2", len(all))
	}
	if len(all[CategoryInsights]) != 2 {
		t.Errorf("insights = %d, want 2", len(all[CategoryInsights]))
	}

	if got := s.All("missing"); len(got) != 0 {
		t.Errorf("unknown query should yield empty mapping, got %d entries", len(got))
	}
}

func TestStore_Purge(t *testing.T) {
	s := NewStore()
	s.Put("q-1", CategorySources, Source{Title: "A"})
	s.Put("q-2", CategorySources, Source{Title: "B"})

	s.Purge("q-1")

	if got := s.Get("q-1", CategorySources); len(got) != 0 {
		t.Errorf("purged query should be empty, got %d records", len(got))
	}
	if got := s.All("q-1"); len(got) != 0 {
		t.Errorf("purged query should have no categories, got %d", len(got))
	}
	// Other queries are untouched.
	if got := s.Get("q-2", CategorySources); len(got) != 1 {
		t.Errorf("q-2 should survive q-1's purge, got %d records", len(got))
	}
}

// Two concurrently written query IDs must never see each other's records.
func TestStore_IsolationAcrossQueries(t *testing.T) {
	s := NewStore()

	const perQuery = 100
	var wg sync.WaitGroup
	for _, q := range []string{"q-left", "q-right"} {
		wg.Add(1)
		go func(queryID string) {
			defer wg.Done()
			for i := 0; i < perQuery; i++ {
				s.Put(queryID, CategorySources, Source{
					Title: fmt.Sprintf("%s-%d", queryID, i),
				})
			}
		}(q)
	}
	wg.Wait()

	for _, q := range []string{"q-left", "q-right"} {
		recs := s.Get(q, CategorySources)
		if len(recs) != perQuery {
			t.Fatalf("%s: got %d records, want %d", q, len(recs), perQuery)
		}
		for i, r := range recs {
			want := fmt.Sprintf("%s-%d", q, i)
			if r.(Source).Title != want {
				t.Fatalf("%s[%d] = %q, cross-contamination or reordering", q, i, r.(Source).Title)
			}
		}
	}
}

// Concurrent writers to different categories of the same query must not
// corrupt either sequence or break per-category insertion order.
func TestStore_OrderingUnderConcurrentCategoryWriters(t *testing.T) {
	s := NewStore()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Put("q-1", CategorySources, Source{Title: fmt.Sprintf("src-%d", i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Put("q-1", CategoryInsights, Insight{Summary: fmt.Sprintf("ins-%d", i)})
		}
	}()
	wg.Wait()

	sources := s.Get("q-1", CategorySources)
	insights := s.Get("q-1", CategoryInsights)
	if len(sources) != n || len(insights) != n {
		t.Fatalf("got %d sources and %d insights, want %d each", len(sources), len(insights), n)
	}
	for i := 0; i < n; i++ {
		if sources[i].(Source).Title != fmt.Sprintf("src-%d", i) {
			t.Fatalf("sources[%d] out of order: %q", i, sources[i].(Source).Title)
		}
		if insights[i].(Insight).Summary != fmt.Sprintf("ins-%d", i) {
			t.Fatalf("insights[%d] out of order: %q", i, insights[i].(Insight).Summary)
		}
	}
}

func TestStore_ConcurrentReadersDuringWrites(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Put("q-1", CategorySources, Source{Title: "x"})
		}
	}()
	go func() {
		defer wg.Done()
		var last int
		for i := 0; i < 100; i++ {
			n := len(s.Get("q-1", CategorySources))
			if n < last {
				t.Errorf("sequence shrank from %d to %d", last, n)
				return
			}
			last = n
		}
	}()
	wg.Wait()
}

package event

import (
	"sync"
	"testing"
)

func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe("pipeline.started", func(e Event) {
		got = e
	})

	bus.Publish(NewPipelineStartedEvent("q-1", "test query"))

	started, ok := got.(PipelineStartedEvent)
	if !ok {
		t.Fatalf("expected PipelineStartedEvent, got %T", got)
	}
	if started.QueryID != "q-1" {
		t.Errorf("QueryID = %q, want q-1", started.QueryID)
	}
	if started.Query != "test query" {
		t.Errorf("Query = %q, want %q", started.Query, "test query")
	}
}

func TestBus_WildcardReceivesAllTypes(t *testing.T) {
	bus := NewBus()

	var types []string
	bus.SubscribeAll(func(e Event) {
		types = append(types, e.EventType())
	})

	bus.Publish(NewPhaseChangedEvent("q-1", "", "gathering"))
	bus.Publish(NewAgentDegradedEvent("q-1", "analyzer", "http://example.com", "retries exhausted"))
	bus.Publish(NewPipelineCompletedEvent("q-1", true, "", 4))

	want := []string{"pipeline.phase_changed", "agent.degraded", "pipeline.completed"}
	if len(types) != len(want) {
		t.Fatalf("got %d events, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe("pipeline.completed", func(Event) { calls++ })

	bus.Publish(NewPipelineCompletedEvent("q-1", true, "", 4))
	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	bus.Publish(NewPipelineCompletedEvent("q-2", true, "", 4))

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should return false")
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("pipeline.started", func(Event) {
		panic("handler bug")
	})
	called := false
	bus.Subscribe("pipeline.started", func(Event) {
		called = true
	})

	bus.Publish(NewPipelineStartedEvent("q-1", "q"))

	if !called {
		t.Error("second handler should run despite first handler panic")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				bus.Publish(NewPhaseChangedEvent("q", "a", "b"))
			}
		}()
	}
	wg.Wait()

	if count != 100 {
		t.Errorf("handler called %d times, want 100", count)
	}
}

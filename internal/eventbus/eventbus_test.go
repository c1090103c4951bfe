package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New(zerolog.Nop())

	var received Event
	b.Subscribe("ws", TopicMessageSent, func(e Event) {
		received = e
	})

	b.Publish(TopicMessageSent, "u1", map[string]interface{}{"circle_id": "2"})

	if received.Topic != TopicMessageSent {
		t.Fatalf("expected topic %s, got %s", TopicMessageSent, received.Topic)
	}
	if received.UserID != "u1" {
		t.Fatalf("expected user u1, got %s", received.UserID)
	}
	payload := received.Payload.(map[string]interface{})
	if payload["circle_id"] != "2" {
		t.Fatalf("expected circle_id 2, got %v", payload["circle_id"])
	}
}

func TestBus_WildcardReceivesEverything(t *testing.T) {
	b := New(zerolog.Nop())

	var topics []string
	b.Subscribe("metrics", TopicAll, func(e Event) {
		topics = append(topics, e.Topic)
	})

	b.Publish(TopicEventCreated, "u1", nil)
	b.Publish(TopicEventJoined, "u2", nil)

	if len(topics) != 2 || topics[0] != TopicEventCreated || topics[1] != TopicEventJoined {
		t.Fatalf("unexpected topics %v", topics)
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	b := New(zerolog.Nop())

	var count int
	var mu sync.Mutex

	handler := func(_ Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	b.Subscribe("a", TopicEventJoined, handler)
	b.Subscribe("b", TopicEventJoined, handler)
	b.Subscribe("c", TopicEventJoined, handler)

	b.Publish(TopicEventJoined, "u1", nil)

	if count != 3 {
		t.Fatalf("expected 3 handlers called, got %d", count)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New(zerolog.Nop())

	var called bool
	b.Subscribe("a", TopicEventLeft, func(_ Event) {
		called = true
	})
	b.Unsubscribe("a")

	b.Publish(TopicEventLeft, "u1", nil)

	if called {
		t.Fatal("handler should not be called after unsubscribe")
	}
	if len(b.GetSubscriptions()) != 0 {
		t.Fatalf("expected no subscriptions, got %v", b.GetSubscriptions())
	}
}

func TestBus_PanicIsolated(t *testing.T) {
	b := New(zerolog.Nop())

	var secondCalled bool
	b.Subscribe("bad", TopicCircleSelected, func(_ Event) {
		panic("boom")
	})
	b.Subscribe("good", TopicCircleSelected, func(_ Event) {
		secondCalled = true
	})

	b.Publish(TopicCircleSelected, "u1", nil)

	if !secondCalled {
		t.Fatal("second handler should run after first panics")
	}
}

func TestBus_PublishAsync(t *testing.T) {
	b := New(zerolog.Nop())

	done := make(chan Event, 1)
	b.Subscribe("a", TopicRewardGranted, func(e Event) {
		done <- e
	})

	b.PublishAsync(TopicRewardGranted, "u1", 5)

	select {
	case e := <-done:
		if e.Payload != 5 {
			t.Fatalf("expected payload 5, got %v", e.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("async handler not called")
	}
}

func TestBus_NilSafe(t *testing.T) {
	var b *Bus
	b.Publish(TopicMessageSent, "u1", nil)
}

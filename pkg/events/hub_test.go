package events

import (
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	h.Publish(TipChanged, TipChangedEvent{Title: "Use Dark Mode", Reason: ReasonRequested, Ts: 1})

	ev := <-ch
	if ev.Name != TipChanged {
		t.Fatalf("event name = %s, want %s", ev.Name, TipChanged)
	}
	payload, err := DecodeAs[TipChangedEvent](ev)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Title != "Use Dark Mode" || payload.Reason != ReasonRequested {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	for i := 0; i < subscriberBuffer*2; i++ {
		h.Publish(FullCharge, FullChargeEvent{Ts: int64(i)})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered %d events, want %d", len(ch), subscriberBuffer)
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	h := NewEventHub()
	a := h.Subscribe()
	b := h.Subscribe()
	if h.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}

	h.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Fatalf("unsubscribed channel should be closed")
	}
	// Unsubscribing twice is a no-op.
	h.Unsubscribe(a)

	h.Close()
	if _, ok := <-b; ok {
		t.Fatalf("channel should be closed after Close")
	}
	if _, ok := <-h.Subscribe(); ok {
		t.Fatalf("subscribing to a closed hub should return a closed channel")
	}
}

func TestNilHubPublish(t *testing.T) {
	var h *EventHub
	h.Publish(TipPulse, nil)
}

func TestDecodeAsEmpty(t *testing.T) {
	got, err := DecodeAs[FullChargeEvent](Event{Name: FullCharge})
	if err != nil || got.Ts != 0 {
		t.Fatalf("DecodeAs on empty data = %+v, %v", got, err)
	}
}

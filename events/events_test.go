package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct {
	N int
}

func TestBusesDoNotShareSubscriptions(t *testing.T) {
	a, b := NewBus(), NewBus()

	gotA := make(chan ping, 1)
	gotB := make(chan ping, 1)
	SubscribeTo(a, func(evt ping) { gotA <- evt })
	SubscribeTo(b, func(evt ping) { gotB <- evt })

	EmitOn(a, ping{N: 1})

	select {
	case evt := <-gotA:
		assert.Equal(t, 1, evt.N)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber on the emitting bus never notified")
	}
	select {
	case <-gotB:
		t.Fatal("event leaked onto an unrelated bus")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus()
	got := make(chan ping, 2)
	sub := SubscribeTo(b, func(evt ping) { got <- evt })

	EmitOn(b, ping{N: 1})
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never notified")
	}

	sub.Cancel()
	EmitOn(b, ping{N: 2})
	select {
	case evt := <-got:
		t.Fatalf("canceled subscription still delivered %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDefaultBusRoundTrip(t *testing.T) {
	got := make(chan ping, 1)
	sub := Subscribe(func(evt ping) { got <- evt })
	defer Unsubscribe(sub)

	Emit(ping{N: 7})
	select {
	case evt := <-got:
		require.Equal(t, 7, evt.N)
	case <-time.After(2 * time.Second):
		t.Fatal("default bus never delivered")
	}
}

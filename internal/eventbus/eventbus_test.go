package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	assert.Equal(t, Event("hello"), <-ch)
	bus.Unsubscribe(ch)
	assert.Zero(t, bus.Subscribers())
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok, "expected ch1 closed")
	_, ok = <-ch2
	assert.False(t, ok, "expected ch2 closed")

	late := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after close yields a closed channel")
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewWithBuffer(2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	require.Len(t, ch, 2)
	assert.Equal(t, Event(0), <-ch)
	assert.Equal(t, Event(1), <-ch)
}

func TestBusSatisfiesInterface(t *testing.T) {
	var _ EventBus = New()
}

package events_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/veldt-engine/veldt/events"
)

func TestEventsAreQueuedUntilFlush(t *testing.T) {
	hub := events.NewEventHub()
	defer hub.Shutdown()

	assert.NilError(t, hub.EmitEvent("component_added", 1, map[string]any{"entity": 5}))
	assert.NilError(t, hub.EmitEvent("component_removed", 1, map[string]any{"entity": 5}))
	assert.Equal(t, 2, hub.EventQueueLength())

	// With no registered connections a flush simply drops the queue.
	hub.FlushEvents()
	assert.Equal(t, 0, hub.EventQueueLength())
}

func TestEmitEventRejectsUnserializablePayload(t *testing.T) {
	hub := events.NewEventHub()
	defer hub.Shutdown()

	err := hub.EmitEvent("bad", 0, make(chan int))
	assert.Check(t, err != nil)
}

func TestConnectionAmountStartsAtZero(t *testing.T) {
	hub := events.NewEventHub()
	defer hub.Shutdown()

	assert.Equal(t, 0, hub.ConnectionAmount())
}

/*
Package events provides the in-memory broadcast channel for scheduler
change notifications.

The Scheduler publishes an event for every observable state change: workload
placements and rescheduling moves, node lifecycle transitions, and scaling
actions. Subscribers receive events on buffered channels; a slow or absent
subscriber never blocks the publisher. When a subscriber's buffer is full the
event is silently dropped for that subscriber. Events are diagnostic, not
authoritative state, so dropped events are an accepted loss.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	broker.Publish(events.New(events.EventNodeAdded, "node joined", map[string]string{
		"node_id": "node-1",
	}))

	evt := <-sub // evt.Type == events.EventNodeAdded

# Delivery Semantics

Publish enqueues onto a bounded backlog (100 events) drained by a single
distribution goroutine; each subscriber has its own 50-event buffer. Delivery
is at-most-once with no replay.
*/
package events

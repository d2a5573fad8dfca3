package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// VehicleEventKind identifies vehicle event types.
type VehicleEventKind string

const (
	VehicleEventLanded    VehicleEventKind = "landed"
	VehicleEventAirborne  VehicleEventKind = "airborne"
	VehicleEventRespawned VehicleEventKind = "respawned"
)

// VehicleEventType is the Event.Type of every VehicleEvent.
const VehicleEventType = "vehicle"

// VehicleEvent is emitted when a vehicle changes groundedness or is rebuilt.
type VehicleEvent struct {
	Entity Entity
	Kind   VehicleEventKind
}

// EventQueue is a simple FIFO queue. Events live until the end of the frame
// they were pushed in.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Pending returns the events pushed so far this frame without clearing them.
func (q *EventQueue) Pending() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

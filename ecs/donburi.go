package ecs

import (
	"github.com/phanxgames/aspen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EventType is the Donburi event type for every event the scene routes.
var EventType = events.NewEventType[aspen.Event]()

// Pointer pairs a pointer message with the entity it was routed to.
type Pointer struct {
	aspen.PointerEvent
	Target aspen.Entity
}

// PointerEventType receives only pointer input, already unwrapped.
var PointerEventType = events.NewEventType[Pointer]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued on the world and delivered by ProcessEvents or
// events.ProcessAllEvents.
func NewDonburiStore(world donburi.World) aspen.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(ev aspen.Event) {
	EventType.Publish(s.world, ev)
	if pe, ok := aspen.As[aspen.PointerEvent](&ev); ok {
		PointerEventType.Publish(s.world, Pointer{PointerEvent: pe, Target: ev.Target})
	}
}

package ecs

import (
	"github.com/phanxgames/tempo"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AnimationEvent is a tempo lifecycle event as seen by ECS systems.
type AnimationEvent struct {
	Type      tempo.EventType
	ID        string
	Animation tempo.Animation
	// Scope is the value given with tempo.CallbackScope.
	Scope     any
	TotalTime float64
	Iteration int
}

// Entity returns the entity passed as the animation's callback scope.
func (e AnimationEvent) Entity() (donburi.Entity, bool) {
	ent, ok := e.Scope.(donburi.Entity)
	return ent, ok
}

// AnimationEventType carries lifecycle events into the world. Events queue
// on publish and are delivered by ProcessEvents.
var AnimationEventType = events.NewEventType[AnimationEvent]()

type donburiSink struct {
	world donburi.World
	only  map[tempo.EventType]bool
}

// NewDonburiSink creates an EventSink that publishes to AnimationEventType
// in world. When types are given, only those event types are published.
func NewDonburiSink(world donburi.World, types ...tempo.EventType) tempo.EventSink {
	s := &donburiSink{world: world}
	if len(types) > 0 {
		s.only = make(map[tempo.EventType]bool, len(types))
		for _, t := range types {
			s.only[t] = true
		}
	}
	return s
}

func (s *donburiSink) EmitEvent(event tempo.Event) {
	if s.only != nil && !s.only[event.Type] {
		return
	}
	ev := AnimationEvent{
		Type:      event.Type,
		Animation: event.Animation,
		Scope:     event.Scope,
		TotalTime: event.TotalTime,
		Iteration: event.Iteration,
	}
	if event.Animation != nil {
		ev.ID = event.Animation.ID()
	}
	AnimationEventType.Publish(s.world, ev)
}

// Package ecs bridges tempo lifecycle events into a [Donburi] world.
//
// Pass the entity an animation drives as its callback scope and systems can
// react to it once the world processes events:
//
//	engine := tempo.New(tempo.WithEventSink(ecs.NewDonburiSink(world, tempo.EventComplete)))
//	engine.To(pos, tempo.Props{"X": 100}, 1, tempo.CallbackScope(entity))
//
//	ecs.AnimationEventType.Subscribe(world, func(w donburi.World, e ecs.AnimationEvent) {
//		if ent, ok := e.Entity(); ok {
//			w.Remove(ent)
//		}
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

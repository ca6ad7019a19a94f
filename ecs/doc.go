// Package ecs provides ECS adapters for aspen's event dispatcher.
//
// The primary adapter is [NewDonburiStore], which forwards every routed
// aspen event into a [Donburi] world. Subscribe to [EventType] for all
// events, or to [PointerEventType] for pointer input only.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

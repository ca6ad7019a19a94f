// Package aspen is the core of a retained-mode UI runtime for [Ebitengine]:
// an entity hierarchy, an event dispatcher that routes messages through it,
// and per-entity property stores with transitions and keyframe animations.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := aspen.NewScene()
//	// ... create entities, set bounds and styles ...
//	aspen.Run(scene, aspen.RunConfig{
//		Title: "My App", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Entities and the hierarchy
//
// An [Entity] is a generational handle. Destroyed entities keep their
// index for reuse but bump the generation, so stale handles are ignored
// everywhere instead of aliasing a new entity. [Hierarchy] stores the tree
// as parallel arrays with O(1) reparenting and sibling moves. Traversals
// return iterators:
//
//	for e := range scene.Tree().Walk() { ... }
//	for a := range scene.Tree().Ancestors(e) { ... }
//
// # Events
//
// [Scene.Emit] queues an [Event] with a [Propagation] mode. [Scene.Flush]
// dispatches the queue in passes: handlers registered with [Scene.On] run
// in tree order, may [Event.Consume] the event, and may emit more events,
// which are dispatched in the next pass. [Scene.Listen] registers a
// listener that sees every event before it is routed.
//
//	scene.On(button, func(cx *aspen.Context, ev *aspen.Event) {
//		if pe, ok := aspen.As[aspen.PointerEvent](ev); ok && pe.Kind == aspen.PointerClick {
//			cx.EmitTo(panel, Toggle{})
//		}
//	})
//
// Restyle, relayout and redraw requests ([Control]) are coalesced so each
// runs at most once per pass.
//
// # Properties and animation
//
// A [PropertyStore] holds one property for every entity. Values resolve
// from the active animation, then the entity's inline value, then the
// shared value of the rule it is linked to. Linking an entity to a rule
// with a registered [Transition] animates from the old value to the new
// one; relinking mid-transition reverses it in place. Keyframe animations
// are registered as templates and played per entity; curves come from
// [gween]'s ease package. [Style] bundles the built-in visual properties,
// and [Scene.Tick] advances them all once per frame.
//
// Animation sets and run configuration can be loaded from YAML or TOML
// files with [LoadAnimations] and [LoadRunConfig], and reloaded on change
// with [WatchFile].
//
// # Input
//
// Pointer input from Ebitengine (mouse and touch) or from [Scene.InjectClick]
// and friends is hit tested against the bounds set with [Scene.SetBounds]
// and dispatched as [PointerEvent] messages, including enter/leave, click
// and drag detection. JSON test scripts ([LoadTestScript]) drive injected
// input across frames for automated UI tests.
//
// The aspen/inspect package serves the live tree and frame stats over
// HTTP, and the aspen/ecs module forwards dispatched events into a
// [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package aspen

package aspen

import (
	"fmt"
	"reflect"
	"slices"
)

// DefaultMaxPasses bounds the number of dispatch passes a single Flush runs.
const DefaultMaxPasses = 16

// Handler reacts to an event delivered to an entity.
type Handler func(cx *Context, ev *Event)

// Context is passed to handlers during dispatch.
type Context struct {
	scene   *Scene
	current Entity
}

// Scene returns the scene dispatching the event.
func (cx *Context) Scene() *Scene { return cx.scene }

// Current returns the entity whose handler is running.
func (cx *Context) Current() Entity { return cx.current }

// Emit queues ev for the next dispatch pass. A Null origin is filled in
// with the current entity.
func (cx *Context) Emit(ev Event) {
	if ev.Origin.IsNull() {
		ev.Origin = cx.current
	}
	cx.scene.Emit(ev)
}

// EmitTo queues msg for target with Direct propagation.
func (cx *Context) EmitTo(target Entity, msg any) {
	cx.scene.Emit(Event{Message: msg, Target: target, Origin: cx.current})
}

type callback struct {
	id     uint32
	entity Entity
	fn     Handler
}

// CallbackHandle allows removing a registered handler or listener.
type CallbackHandle struct {
	id       uint32
	entity   Entity
	scene    *Scene
	listener bool
}

// Remove unregisters the callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.scene == nil {
		return
	}
	match := func(c callback) bool { return c.id == h.id }
	if h.listener {
		h.scene.listeners = slices.DeleteFunc(h.scene.listeners, match)
		return
	}
	hs := slices.DeleteFunc(h.scene.handlers[h.entity], match)
	if len(hs) == 0 {
		delete(h.scene.handlers, h.entity)
		return
	}
	h.scene.handlers[h.entity] = hs
}

// On registers fn to receive events routed to e. Handlers on the same
// entity run in registration order.
func (s *Scene) On(e Entity, fn Handler) CallbackHandle {
	s.nextCallbackID++
	id := s.nextCallbackID
	s.handlers[e] = append(s.handlers[e], callback{id: id, entity: e, fn: fn})
	return CallbackHandle{id: id, entity: e, scene: s}
}

// Listen registers fn as a global listener owned by e. Listeners see every
// event before it is routed, in registration order, and may consume it.
func (s *Scene) Listen(e Entity, fn Handler) CallbackHandle {
	s.nextCallbackID++
	id := s.nextCallbackID
	s.listeners = append(s.listeners, callback{id: id, entity: e, fn: fn})
	return CallbackHandle{id: id, entity: e, scene: s, listener: true}
}

// Emit queues ev for the next Flush. A unique event replaces an equal
// event that is already queued.
func (s *Scene) Emit(ev Event) {
	ev.consumed = false
	if ev.Unique {
		s.queue = slices.DeleteFunc(s.queue, func(q Event) bool { return sameEvent(q, ev) })
	}
	s.queue = append(s.queue, ev)
}

// Pending returns the number of queued events.
func (s *Scene) Pending() int {
	return len(s.queue)
}

func sameEvent(a, b Event) bool {
	return a.Target == b.Target &&
		a.Origin == b.Origin &&
		a.Propagation == b.Propagation &&
		reflect.DeepEqual(a.Message, b.Message)
}

// Request queues a control request. Requests coalesce within a pass.
func (s *Scene) Request(c Control) {
	s.Emit(Event{Message: c, Target: s.root, Origin: s.root, Propagation: Direct})
}

// controlFlags are the sticky requests collected during one pass.
type controlFlags struct {
	restyle, relayout, redraw bool
}

func (f *controlFlags) set(c Control) {
	switch c {
	case ControlRestyle:
		f.restyle = true
	case ControlRelayout:
		f.relayout = true
	case ControlRedraw:
		f.redraw = true
	}
}

// Flush dispatches queued events. Events emitted by handlers are
// dispatched in a following pass of the same flush, up to the scene's
// pass limit; anything left stays queued for the next frame.
func (s *Scene) Flush() {
	for pass := 0; len(s.queue) > 0; pass++ {
		if pass >= s.maxPasses {
			logger().Warn("event flush stopped at pass limit",
				"passes", pass, "pending", len(s.queue))
			return
		}
		s.refreshSnapshot()

		batch := s.queue
		s.queue = s.spare[:0]
		s.flags = controlFlags{}
		for i := range batch {
			s.dispatch(&batch[i])
		}
		s.dispatchControls()

		clear(batch)
		s.spare = batch[:0]
		s.stats.Passes++
	}
}

func (s *Scene) refreshSnapshot() {
	if s.snapshot != nil && s.snapshotVersion == s.tree.Version() {
		return
	}
	s.snapshot = s.tree.Clone()
	s.snapshotVersion = s.tree.Version()
}

func (s *Scene) dispatch(ev *Event) {
	s.stats.Events++
	listeners := s.listeners
	for _, l := range listeners {
		if !s.registry.Alive(l.entity) {
			continue
		}
		s.invoke(l.entity, l.fn, ev)
		if ev.consumed {
			return
		}
	}

	if ev.Target.IsNull() && ev.Propagation != All {
		return
	}
	if c, ok := ev.Message.(Control); ok {
		s.flags.set(c)
		return
	}
	if s.store != nil {
		s.store.EmitEvent(*ev)
	}
	s.walk(ev)
}

// walk routes ev through the snapshot per its propagation.
func (s *Scene) walk(ev *Event) {
	h := s.snapshot
	target := ev.Target
	switch ev.Propagation {
	case Direct:
		s.deliver(target, ev)
	case Up:
		s.walkUp(h, ev)
	case Down:
		s.walkDown(h, ev)
	case DownUp:
		// Consuming ends only the phase it happens in.
		s.walkDown(h, ev)
		consumed := ev.consumed
		ev.consumed = false
		s.deliver(target, ev)
		consumed = consumed || ev.consumed
		ev.consumed = false
		s.walkUp(h, ev)
		ev.consumed = ev.consumed || consumed
	case Fall:
		for e := range h.Branch(target) {
			if e == target {
				continue
			}
			if !s.deliver(e, ev) {
				return
			}
		}
	case All:
		for e := range h.Walk() {
			if !s.deliver(e, ev) {
				return
			}
		}
	}
}

func (s *Scene) walkUp(h *Hierarchy, ev *Event) {
	for e := range h.Ancestors(ev.Target) {
		if !s.deliver(e, ev) {
			return
		}
	}
}

func (s *Scene) walkDown(h *Hierarchy, ev *Event) {
	path := s.pathBuf[:0]
	for e := range h.Ancestors(ev.Target) {
		path = append(path, e)
	}
	s.pathBuf = path
	for i := len(path) - 1; i >= 0; i-- {
		if !s.deliver(path[i], ev) {
			return
		}
	}
}

// deliver runs e's handlers. It returns false once the event is consumed.
// Entities without handlers, or destroyed mid-pass, are skipped.
func (s *Scene) deliver(e Entity, ev *Event) bool {
	hs := s.handlers[e]
	if len(hs) == 0 {
		return true
	}
	if !s.registry.Alive(e) {
		logger().Debug("skipping destroyed event target", "entity", e)
		return true
	}
	for _, h := range hs {
		s.invoke(e, h.fn, ev)
		if ev.consumed {
			return false
		}
	}
	return true
}

// invoke calls fn, recovering from a panic. A panicking handler does not
// consume the event.
func (s *Scene) invoke(e Entity, fn Handler, ev *Event) {
	consumed := ev.consumed
	defer func() {
		if r := recover(); r != nil {
			ev.consumed = consumed
			logger().Error("event handler panicked",
				"entity", e, "message", fmt.Sprintf("%T", ev.Message), "panic", r)
		}
	}()
	s.stats.Handlers++
	cx := Context{scene: s, current: e}
	fn(&cx, ev)
}

// dispatchControls sends one Direct event per requested control to the
// root, in restyle, relayout, redraw order.
func (s *Scene) dispatchControls() {
	f := s.flags
	s.flags = controlFlags{}
	for _, c := range [...]struct {
		set  bool
		kind Control
	}{
		{f.restyle, ControlRestyle},
		{f.relayout, ControlRelayout},
		{f.redraw, ControlRedraw},
	} {
		if !c.set {
			continue
		}
		s.sendControl(c.kind)
	}
}

// sendControl delivers c to the root's handlers outside the queue.
func (s *Scene) sendControl(c Control) {
	ev := Event{Message: c, Target: s.root, Origin: s.root, Propagation: Direct}
	s.deliver(s.root, &ev)
	s.onControl(c)
}

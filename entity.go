package aspen

import "fmt"

// Entity is an opaque, recyclable handle identifying one UI element. It
// combines a slot index with a generation counter so that handles to a
// destroyed element can be told apart from the element that later reuses
// the same slot. Entities are plain values and carry no ownership.
type Entity struct {
	Index      uint32
	Generation uint32
}

// Null is the "no entity" sentinel. Generation 0 is never handed out, so
// Null never refers to a live element.
var Null = Entity{}

// IsNull reports whether e is the Null sentinel.
func (e Entity) IsNull() bool {
	return e == Null
}

func (e Entity) String() string {
	if e.IsNull() {
		return "entity(null)"
	}
	return fmt.Sprintf("entity(%d:%d)", e.Index, e.Generation)
}

// maxEntityIndex keeps indices inside 31 bits.
const maxEntityIndex = 1<<31 - 1

type entitySlot struct {
	generation uint32
	alive      bool
}

// EntityRegistry allocates and recycles entity handles. Destroyed slots go
// on a free list and come back with a bumped generation.
type EntityRegistry struct {
	slots []entitySlot
	free  []uint32 // stack of recycled indices
	live  int
	limit uint32
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{limit: maxEntityIndex}
}

// Create allocates a new entity. It returns Null only when the index space
// is exhausted.
func (r *EntityRegistry) Create() Entity {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		if uint32(len(r.slots)) >= r.limit {
			logger().Warn("entity index space exhausted", "limit", r.limit)
			return Null
		}
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, entitySlot{generation: 1})
	}
	slot := &r.slots[idx]
	slot.alive = true
	r.live++
	return Entity{Index: idx, Generation: slot.generation}
}

// Destroy frees e's slot for reuse. Returns false if e is stale or was never
// created.
func (r *EntityRegistry) Destroy(e Entity) bool {
	if !r.Alive(e) {
		return false
	}
	slot := &r.slots[e.Index]
	slot.alive = false
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	r.free = append(r.free, e.Index)
	r.live--
	return true
}

// Alive reports whether e refers to a currently allocated slot with a
// matching generation.
func (r *EntityRegistry) Alive(e Entity) bool {
	if e.IsNull() || int(e.Index) >= len(r.slots) {
		return false
	}
	slot := r.slots[e.Index]
	return slot.alive && slot.generation == e.Generation
}

// Len returns the number of live entities.
func (r *EntityRegistry) Len() int {
	return r.live
}

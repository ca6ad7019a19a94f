package aspen

import (
	"fmt"
	"slices"
)

// Hierarchy is the parent/child/sibling tree over entities, stored as
// parallel slices indexed by entity index. Entities without a parent form
// the top-level sibling list (the "roots").
//
// Every lookup checks the handle's generation, so stale handles behave as
// if they were never added.
type Hierarchy struct {
	owner       []Entity // handle occupying each slot, Null when empty
	parent      []Entity
	firstChild  []Entity
	nextSibling []Entity
	prevSibling []Entity

	firstRoot Entity
	count     int
	version   uint64
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{}
}

// Len returns the number of entities in the hierarchy.
func (h *Hierarchy) Len() int {
	return h.count
}

// Version is bumped on every structural mutation. Callers holding a
// snapshot compare versions to decide whether it is still current.
func (h *Hierarchy) Version() uint64 {
	return h.version
}

// Contains reports whether e (with its exact generation) is in the tree.
func (h *Hierarchy) Contains(e Entity) bool {
	return !e.IsNull() && int(e.Index) < len(h.owner) && h.owner[e.Index] == e
}

// --- Lookups ---

// Parent returns e's parent. The bool is false for roots and for entities
// not in the hierarchy.
func (h *Hierarchy) Parent(e Entity) (Entity, bool) {
	if !h.Contains(e) {
		return Null, false
	}
	p := h.parent[e.Index]
	return p, !p.IsNull()
}

// FirstChild returns e's first child.
func (h *Hierarchy) FirstChild(e Entity) (Entity, bool) {
	if !h.Contains(e) {
		return Null, false
	}
	c := h.firstChild[e.Index]
	return c, !c.IsNull()
}

// NextSibling returns the sibling after e.
func (h *Hierarchy) NextSibling(e Entity) (Entity, bool) {
	if !h.Contains(e) {
		return Null, false
	}
	s := h.nextSibling[e.Index]
	return s, !s.IsNull()
}

// PrevSibling returns the sibling before e.
func (h *Hierarchy) PrevSibling(e Entity) (Entity, bool) {
	if !h.Contains(e) {
		return Null, false
	}
	s := h.prevSibling[e.Index]
	return s, !s.IsNull()
}

// LastChild returns e's last child by walking the sibling list.
func (h *Hierarchy) LastChild(e Entity) (Entity, bool) {
	if !h.Contains(e) {
		return Null, false
	}
	last := h.lastOf(e)
	return last, !last.IsNull()
}

// Child returns e's n-th child (zero based).
func (h *Hierarchy) Child(e Entity, n int) (Entity, bool) {
	if !h.Contains(e) || n < 0 {
		return Null, false
	}
	c := h.firstChild[e.Index]
	for ; n > 0 && !c.IsNull(); n-- {
		c = h.nextSibling[c.Index]
	}
	return c, !c.IsNull()
}

// NumChildren returns the number of direct children of e.
func (h *Hierarchy) NumChildren(e Entity) int {
	if !h.Contains(e) {
		return 0
	}
	n := 0
	for c := h.firstChild[e.Index]; !c.IsNull(); c = h.nextSibling[c.Index] {
		n++
	}
	return n
}

// FirstRoot returns the first top-level entity.
func (h *Hierarchy) FirstRoot() (Entity, bool) {
	return h.firstRoot, !h.firstRoot.IsNull()
}

// Depth returns the number of ancestors of e, or -1 if e is not present.
func (h *Hierarchy) Depth(e Entity) int {
	if !h.Contains(e) {
		return -1
	}
	d := 0
	for p := h.parent[e.Index]; !p.IsNull(); p = h.parent[p.Index] {
		d++
	}
	return d
}

// IsDescendant reports whether e lies strictly below ancestor.
func (h *Hierarchy) IsDescendant(e, ancestor Entity) bool {
	if !h.Contains(e) || !h.Contains(ancestor) {
		return false
	}
	for p := h.parent[e.Index]; !p.IsNull(); p = h.parent[p.Index] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// --- Mutation ---

// Add inserts e as the last child of parent. A Null parent makes e a
// top-level entity.
func (h *Hierarchy) Add(e, parent Entity) error {
	if e.IsNull() {
		return hierarchyErr("Add", e, parent, ErrNotPresent)
	}
	if int(e.Index) < len(h.owner) && !h.owner[e.Index].IsNull() {
		return hierarchyErr("Add", e, h.owner[e.Index], ErrAlreadyPresent)
	}
	if !parent.IsNull() && !h.Contains(parent) {
		return hierarchyErr("Add", e, parent, ErrNotPresent)
	}
	h.grow(e.Index)
	h.owner[e.Index] = e
	h.appendChild(parent, e)
	h.count++
	h.version++
	if globalDebug {
		debugCheckTreeDepth(h, e)
	}
	return nil
}

// Remove takes e and its entire subtree out of the hierarchy and returns
// the removed entities in pre-order (e first). Returns nil if e is not
// present.
func (h *Hierarchy) Remove(e Entity) []Entity {
	if !h.Contains(e) {
		return nil
	}
	removed := slices.Collect(h.Branch(e))
	h.unlink(e)
	for _, r := range removed {
		i := r.Index
		h.owner[i] = Null
		h.parent[i] = Null
		h.firstChild[i] = Null
		h.nextSibling[i] = Null
		h.prevSibling[i] = Null
	}
	h.count -= len(removed)
	h.version++
	return removed
}

// SetParent moves e (with its subtree) to the end of parent's children. A
// Null parent moves e to the top level. Moving e under its current parent
// is a no-op.
func (h *Hierarchy) SetParent(e, parent Entity) error {
	const op = "SetParent"
	if !h.Contains(e) {
		return hierarchyErr(op, e, parent, ErrNotPresent)
	}
	if !parent.IsNull() && !h.Contains(parent) {
		return hierarchyErr(op, e, parent, ErrNotPresent)
	}
	if e == parent {
		return hierarchyErr(op, e, parent, ErrSelfLink)
	}
	if h.IsDescendant(parent, e) {
		return hierarchyErr(op, e, parent, ErrCycle)
	}
	if h.parent[e.Index] == parent {
		return nil
	}
	h.unlink(e)
	h.appendChild(parent, e)
	h.version++
	return nil
}

// SetFirstChild moves child, which must already be a child of parent, to
// the front of parent's children.
func (h *Hierarchy) SetFirstChild(parent, child Entity) error {
	const op = "SetFirstChild"
	if !h.Contains(parent) || !h.Contains(child) {
		return hierarchyErr(op, parent, child, ErrNotPresent)
	}
	if parent == child {
		return hierarchyErr(op, parent, child, ErrSelfLink)
	}
	if h.parent[child.Index] != parent {
		return hierarchyErr(op, parent, child, ErrNotSibling)
	}
	first := h.firstChild[parent.Index]
	if first == child {
		return nil
	}
	h.unlink(child)
	h.insertBefore(first, child)
	h.version++
	return nil
}

// SetNextSibling moves sibling so that it directly follows e. Both must
// share the same parent.
func (h *Hierarchy) SetNextSibling(e, sibling Entity) error {
	const op = "SetNextSibling"
	if err := h.checkSiblings(op, e, sibling); err != nil {
		return err
	}
	if h.nextSibling[e.Index] == sibling {
		return nil
	}
	h.unlink(sibling)
	h.insertAfter(e, sibling)
	h.version++
	return nil
}

// SetPrevSibling moves sibling so that it directly precedes e. Both must
// share the same parent.
func (h *Hierarchy) SetPrevSibling(e, sibling Entity) error {
	const op = "SetPrevSibling"
	if err := h.checkSiblings(op, e, sibling); err != nil {
		return err
	}
	if h.prevSibling[e.Index] == sibling {
		return nil
	}
	h.unlink(sibling)
	h.insertBefore(e, sibling)
	h.version++
	return nil
}

func (h *Hierarchy) checkSiblings(op string, e, sibling Entity) error {
	if !h.Contains(e) || !h.Contains(sibling) {
		return hierarchyErr(op, e, sibling, ErrNotPresent)
	}
	if e == sibling {
		return hierarchyErr(op, e, sibling, ErrSelfLink)
	}
	if h.parent[e.Index] != h.parent[sibling.Index] {
		return hierarchyErr(op, e, sibling, ErrNotSibling)
	}
	return nil
}

// Clone returns an independent copy of the hierarchy.
func (h *Hierarchy) Clone() *Hierarchy {
	return &Hierarchy{
		owner:       slices.Clone(h.owner),
		parent:      slices.Clone(h.parent),
		firstChild:  slices.Clone(h.firstChild),
		nextSibling: slices.Clone(h.nextSibling),
		prevSibling: slices.Clone(h.prevSibling),
		firstRoot:   h.firstRoot,
		count:       h.count,
		version:     h.version,
	}
}

// Validate checks every structural invariant and returns an error wrapping
// ErrCorrupt describing the first violation found.
func (h *Hierarchy) Validate() error {
	seen := 0
	for i, e := range h.owner {
		if e.IsNull() {
			continue
		}
		seen++
		if e.Index != uint32(i) {
			return fmt.Errorf("%w: slot %d owned by %v", ErrCorrupt, i, e)
		}
		p := h.parent[i]
		if !p.IsNull() && !h.Contains(p) {
			return fmt.Errorf("%w: %v has missing parent %v", ErrCorrupt, e, p)
		}
		if next := h.nextSibling[i]; !next.IsNull() {
			if !h.Contains(next) || h.prevSibling[next.Index] != e {
				return fmt.Errorf("%w: %v next %v is not linked back", ErrCorrupt, e, next)
			}
			if h.parent[next.Index] != p {
				return fmt.Errorf("%w: siblings %v and %v have different parents", ErrCorrupt, e, next)
			}
		}
		if prev := h.prevSibling[i]; prev.IsNull() {
			if h.firstOf(p) != e {
				return fmt.Errorf("%w: %v has no previous sibling but is not first child of %v", ErrCorrupt, e, p)
			}
		} else if !h.Contains(prev) || h.nextSibling[prev.Index] != e {
			return fmt.Errorf("%w: %v prev %v is not linked forward", ErrCorrupt, e, prev)
		}
		if fc := h.firstChild[i]; !fc.IsNull() {
			if !h.Contains(fc) || h.parent[fc.Index] != e {
				return fmt.Errorf("%w: first child %v of %v has another parent", ErrCorrupt, fc, e)
			}
		}
		steps := 0
		for a := p; !a.IsNull(); a = h.parent[a.Index] {
			steps++
			if steps > h.count {
				return fmt.Errorf("%w: cycle above %v", ErrCorrupt, e)
			}
		}
	}
	if seen != h.count {
		return fmt.Errorf("%w: count %d but %d occupied slots", ErrCorrupt, h.count, seen)
	}
	if reached := len(slices.Collect(h.Walk())); reached != h.count {
		return fmt.Errorf("%w: walk reached %d of %d entities", ErrCorrupt, reached, h.count)
	}
	return nil
}

// --- Internal linking ---

func (h *Hierarchy) grow(idx uint32) {
	for uint32(len(h.owner)) <= idx {
		h.owner = append(h.owner, Null)
		h.parent = append(h.parent, Null)
		h.firstChild = append(h.firstChild, Null)
		h.nextSibling = append(h.nextSibling, Null)
		h.prevSibling = append(h.prevSibling, Null)
	}
}

// firstOf returns the first child of p, treating Null as the virtual root.
func (h *Hierarchy) firstOf(p Entity) Entity {
	if p.IsNull() {
		return h.firstRoot
	}
	return h.firstChild[p.Index]
}

func (h *Hierarchy) setFirst(p, c Entity) {
	if p.IsNull() {
		h.firstRoot = c
		return
	}
	h.firstChild[p.Index] = c
}

func (h *Hierarchy) lastOf(p Entity) Entity {
	last := Null
	for c := h.firstOf(p); !c.IsNull(); c = h.nextSibling[c.Index] {
		last = c
	}
	return last
}

// unlink splices e out of its sibling list and clears its parent and
// sibling pointers. e's own children stay attached to e. Callers must
// relink e before returning.
func (h *Hierarchy) unlink(e Entity) {
	i := e.Index
	p, prev, next := h.parent[i], h.prevSibling[i], h.nextSibling[i]
	if prev.IsNull() {
		h.setFirst(p, next)
	} else {
		h.nextSibling[prev.Index] = next
	}
	if !next.IsNull() {
		h.prevSibling[next.Index] = prev
	}
	h.parent[i] = Null
	h.prevSibling[i] = Null
	h.nextSibling[i] = Null
}

func (h *Hierarchy) appendChild(p, e Entity) {
	last := h.lastOf(p)
	if last.IsNull() {
		h.setFirst(p, e)
		h.parent[e.Index] = p
		h.prevSibling[e.Index] = Null
		h.nextSibling[e.Index] = Null
		return
	}
	h.insertAfter(last, e)
}

// insertAfter links a detached e directly after anchor, under anchor's parent.
func (h *Hierarchy) insertAfter(anchor, e Entity) {
	next := h.nextSibling[anchor.Index]
	h.parent[e.Index] = h.parent[anchor.Index]
	h.prevSibling[e.Index] = anchor
	h.nextSibling[e.Index] = next
	h.nextSibling[anchor.Index] = e
	if !next.IsNull() {
		h.prevSibling[next.Index] = e
	}
}

// insertBefore links a detached e directly before anchor, under anchor's parent.
func (h *Hierarchy) insertBefore(anchor, e Entity) {
	p := h.parent[anchor.Index]
	prev := h.prevSibling[anchor.Index]
	h.parent[e.Index] = p
	h.nextSibling[e.Index] = anchor
	h.prevSibling[e.Index] = prev
	h.prevSibling[anchor.Index] = e
	if prev.IsNull() {
		h.setFirst(p, e)
	} else {
		h.nextSibling[prev.Index] = e
	}
}

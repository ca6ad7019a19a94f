package aspen

import "iter"

// Walk yields every entity in depth-first pre-order: an entity, then its
// children, then its next sibling. Top-level entities are visited in the
// order they were added. This is the painter's order.
func (h *Hierarchy) Walk() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for e := h.firstRoot; !e.IsNull(); e = h.nextPreOrder(e, Null) {
			if !yield(e) {
				return
			}
		}
	}
}

// Branch yields root and then all of its descendants in pre-order. Nothing
// is yielded if root is not in the hierarchy.
func (h *Hierarchy) Branch(root Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !h.Contains(root) {
			return
		}
		for e := root; !e.IsNull(); e = h.nextPreOrder(e, root) {
			if !yield(e) {
				return
			}
		}
	}
}

// Ancestors yields the parent chain of e, closest ancestor first. e itself
// is not yielded.
func (h *Hierarchy) Ancestors(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !h.Contains(e) {
			return
		}
		for p := h.parent[e.Index]; !p.IsNull(); p = h.parent[p.Index] {
			if !yield(p) {
				return
			}
		}
	}
}

// Children yields e's direct children front to back.
func (h *Hierarchy) Children(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !h.Contains(e) {
			return
		}
		for c := h.firstChild[e.Index]; !c.IsNull(); c = h.nextSibling[c.Index] {
			if !yield(c) {
				return
			}
		}
	}
}

// ChildrenReverse yields e's direct children back to front.
func (h *Hierarchy) ChildrenReverse(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		last, ok := h.LastChild(e)
		if !ok {
			return
		}
		for c := last; !c.IsNull(); c = h.prevSibling[c.Index] {
			if !yield(c) {
				return
			}
		}
	}
}

// Roots yields the top-level entities in order.
func (h *Hierarchy) Roots() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for e := h.firstRoot; !e.IsNull(); e = h.nextSibling[e.Index] {
			if !yield(e) {
				return
			}
		}
	}
}

// nextPreOrder returns the entity after e in pre-order, without leaving
// the subtree rooted at bound. A Null bound walks the whole tree.
func (h *Hierarchy) nextPreOrder(e, bound Entity) Entity {
	if fc := h.firstChild[e.Index]; !fc.IsNull() {
		return fc
	}
	for cur := e; !cur.IsNull() && cur != bound; cur = h.parent[cur.Index] {
		if next := h.nextSibling[cur.Index]; !next.IsNull() {
			return next
		}
	}
	return Null
}

// ChildIter walks a child list from both ends. The two ends advance
// independently and stop once they meet, so every child is returned once.
type ChildIter struct {
	h           *Hierarchy
	front, back Entity
	done        bool
}

// ChildIter returns a double-ended iterator over e's children.
func (h *Hierarchy) ChildIter(e Entity) *ChildIter {
	it := &ChildIter{h: h}
	it.front, _ = h.FirstChild(e)
	it.back, _ = h.LastChild(e)
	it.done = it.front.IsNull()
	return it
}

// Next returns the next child from the front.
func (it *ChildIter) Next() (Entity, bool) {
	if it.done {
		return Null, false
	}
	e := it.front
	if e == it.back {
		it.done = true
	} else {
		it.front = it.h.nextSibling[e.Index]
	}
	return e, true
}

// NextBack returns the next child from the back.
func (it *ChildIter) NextBack() (Entity, bool) {
	if it.done {
		return Null, false
	}
	e := it.back
	if e == it.front {
		it.done = true
	} else {
		it.back = it.h.prevSibling[e.Index]
	}
	return e, true
}

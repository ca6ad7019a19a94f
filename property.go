package aspen

import (
	"slices"
	"time"
)

// RuleID identifies a matched style rule. NoRule is reserved.
type RuleID uint32

// NoRule means "not linked to any rule".
const NoRule RuleID = 0

type dataKind uint8

const (
	dataNone dataKind = iota
	dataInline
	dataShared
)

// dataIndex says where an entity's value lives.
type dataIndex struct {
	kind dataKind
	slot uint32
}

type propEntry struct {
	entity Entity
	// data is the resolved layer. Inline wins over shared.
	data dataIndex
	// shared is the rule link, kept underneath an inline override.
	shared dataIndex
	rule   RuleID
	anim   int
}

type sharedSlot[T any] struct {
	rule  RuleID
	value T
	live  bool
}

// PropertyStore holds one visual property for many entities. A value comes
// from, in order of precedence: a running animation, an inline value set on
// the entity, or the value of the rule the entity is linked to.
type PropertyStore[T comparable] struct {
	lerp Lerp[T]

	entries []propEntry

	inline      []T
	inlineOwner []Entity

	shared     []sharedSlot[T]
	sharedFree []uint32
	rules      map[RuleID]uint32

	transitions map[RuleID]Transition
	animations  map[AnimationID]AnimationDescription[T]
	active      []AnimationState[T]
}

// NewPropertyStore returns an empty store. lerp blends two values during
// animations; it may be nil for properties that only step.
func NewPropertyStore[T comparable](lerp Lerp[T]) *PropertyStore[T] {
	return &PropertyStore[T]{
		lerp:        lerp,
		rules:       make(map[RuleID]uint32),
		transitions: make(map[RuleID]Transition),
		animations:  make(map[AnimationID]AnimationDescription[T]),
	}
}

func (s *PropertyStore[T]) entry(e Entity) *propEntry {
	if e.IsNull() || int(e.Index) >= len(s.entries) {
		return nil
	}
	en := &s.entries[e.Index]
	if en.entity != e {
		return nil
	}
	return en
}

// ensureEntry returns e's entry, taking over the slot from an older
// generation. It returns nil for a handle older than the slot's owner.
func (s *PropertyStore[T]) ensureEntry(e Entity) *propEntry {
	if int(e.Index) >= len(s.entries) {
		s.entries = slices.Grow(s.entries, int(e.Index)+1-len(s.entries))
		s.entries = s.entries[:int(e.Index)+1]
	}
	if old := s.entries[e.Index].entity; old != e {
		if !old.IsNull() {
			if e.Generation < old.Generation {
				return nil
			}
			s.Forget(old)
		}
		s.entries[e.Index] = propEntry{entity: e, anim: -1}
	}
	return &s.entries[e.Index]
}

// Insert sets an inline value on e, overriding any shared value.
func (s *PropertyStore[T]) Insert(e Entity, v T) {
	if e.IsNull() {
		return
	}
	en := s.ensureEntry(e)
	if en == nil {
		return
	}
	if en.data.kind == dataInline {
		s.inline[en.data.slot] = v
		return
	}
	s.inline = append(s.inline, v)
	s.inlineOwner = append(s.inlineOwner, e)
	en.data = dataIndex{kind: dataInline, slot: uint32(len(s.inline) - 1)}
}

// Remove deletes e's inline value and returns it. A rule link underneath
// the inline value becomes visible again.
func (s *PropertyStore[T]) Remove(e Entity) (T, bool) {
	var zero T
	en := s.entry(e)
	if en == nil || en.data.kind != dataInline {
		return zero, false
	}
	v := s.removeInline(en.data.slot)
	en.data = en.shared
	return v, true
}

// removeInline swap-removes an inline slot and patches the moved owner.
func (s *PropertyStore[T]) removeInline(slot uint32) T {
	v := s.inline[slot]
	last := uint32(len(s.inline) - 1)
	if slot != last {
		s.inline[slot] = s.inline[last]
		moved := s.inlineOwner[last]
		s.inlineOwner[slot] = moved
		s.entries[moved.Index].data.slot = slot
	}
	var zero T
	s.inline[last] = zero
	s.inline = s.inline[:last]
	s.inlineOwner = s.inlineOwner[:last]
	return v
}

// InsertRule sets the value shared by every entity linked to rule.
func (s *PropertyStore[T]) InsertRule(rule RuleID, v T) {
	if slot, ok := s.rules[rule]; ok {
		s.shared[slot].value = v
		return
	}
	var slot uint32
	if n := len(s.sharedFree); n > 0 {
		slot = s.sharedFree[n-1]
		s.sharedFree = s.sharedFree[:n-1]
		s.shared[slot] = sharedSlot[T]{rule: rule, value: v, live: true}
	} else {
		slot = uint32(len(s.shared))
		s.shared = append(s.shared, sharedSlot[T]{rule: rule, value: v, live: true})
	}
	s.rules[rule] = slot
}

// RemoveRule deletes a rule value. Entities still linked to it resolve to
// absent until they are relinked.
func (s *PropertyStore[T]) RemoveRule(rule RuleID) {
	slot, ok := s.rules[rule]
	if !ok {
		return
	}
	delete(s.rules, rule)
	s.shared[slot] = sharedSlot[T]{}
	s.sharedFree = append(s.sharedFree, slot)
}

// InsertTransition makes linking to rule animate from the previous value.
func (s *PropertyStore[T]) InsertTransition(rule RuleID, tr Transition) {
	s.transitions[rule] = tr
}

// RemoveTransition stops linking to rule from animating.
func (s *PropertyStore[T]) RemoveTransition(rule RuleID) {
	delete(s.transitions, rule)
}

// InsertAnimation registers a template under id, replacing any previous
// one. Keyframes are copied and sorted by time.
func (s *PropertyStore[T]) InsertAnimation(id AnimationID, desc AnimationDescription[T]) {
	desc.Keyframes = slices.Clone(desc.Keyframes)
	slices.SortStableFunc(desc.Keyframes, func(a, b Keyframe[T]) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	s.animations[id] = desc
}

// RemoveAnimation deletes a template. Animations already playing continue.
func (s *PropertyStore[T]) RemoveAnimation(id AnimationID) {
	delete(s.animations, id)
}

// Link links e to the first rule in rules that has a value in the store.
// It returns true if the link changed. Entities with an inline value are
// never linked. If no candidate exists, any existing link is dropped.
func (s *PropertyStore[T]) Link(e Entity, rules []RuleID) bool {
	if e.IsNull() {
		return false
	}
	if en := s.entry(e); en != nil && en.data.kind == dataInline {
		return false
	}
	for _, rule := range rules {
		slot, ok := s.rules[rule]
		if !ok {
			continue
		}
		en := s.ensureEntry(e)
		if en == nil {
			return false
		}
		if en.shared.kind == dataShared && en.shared.slot == slot && en.rule == rule {
			return false
		}
		prev, hadPrev := s.Get(e)
		from := en.rule
		en.shared = dataIndex{kind: dataShared, slot: slot}
		en.rule = rule
		en.data = en.shared
		if tr, ok := s.transitions[rule]; ok {
			s.startTransition(e, prev, hadPrev, from, rule, tr)
		} else {
			s.dropTransition(en)
		}
		return true
	}
	en := s.entry(e)
	if en == nil || en.shared.kind != dataShared {
		return false
	}
	s.dropTransition(en)
	en.shared = dataIndex{}
	en.rule = NoRule
	if en.data.kind == dataShared {
		en.data = dataIndex{}
	}
	return true
}

func (s *PropertyStore[T]) startTransition(e Entity, prev T, hadPrev bool, from, to RuleID, tr Transition) {
	now := Now()
	en := s.entry(e)
	if en.anim >= 0 {
		a := &s.active[en.anim]
		if a.active && a.transition && a.FromRule == to {
			a.reverse(now)
			return
		}
	}
	target := s.shared[s.rules[to]].value
	if !hadPrev || prev == target {
		s.dropTransition(en)
		return
	}
	state := AnimationState[T]{
		Keyframes:  []Keyframe[T]{{Time: 0, Value: prev}, {Time: 1, Value: target}},
		Duration:   tr.Duration,
		Delay:      delayPhase(tr.Delay, tr.Duration),
		Start:      now,
		Ease:       tr.Ease,
		FromRule:   from,
		ToRule:     to,
		active:     true,
		transition: true,
		output:     prev,
	}
	s.play(e, state)
}

// PlayAnimation starts the template id on e. Playing the animation e is
// already running restarts it from phase 0. It returns false if id is not
// registered.
func (s *PropertyStore[T]) PlayAnimation(e Entity, id AnimationID) bool {
	desc, ok := s.animations[id]
	if !ok || e.IsNull() {
		logger().Debug("play animation skipped", "entity", e, "animation", id)
		return false
	}
	now := Now()
	en := s.ensureEntry(e)
	if en == nil {
		logger().Debug("play animation on stale entity", "entity", e, "animation", id)
		return false
	}
	if en.anim >= 0 {
		a := &s.active[en.anim]
		if a.ID == id && !a.transition {
			a.restart(now, delayPhase(desc.Delay, desc.Duration))
			return true
		}
	}
	s.play(e, newAnimationState(id, desc, now))
	return true
}

func (s *PropertyStore[T]) play(e Entity, state AnimationState[T]) {
	en := s.entry(e)
	s.unlinkAnimation(en)
	state.entities = []Entity{e}
	s.active = append(s.active, state)
	en.anim = len(s.active) - 1
}

// dropTransition stops a rule transition still running on en. Keyframe
// animations are left alone.
func (s *PropertyStore[T]) dropTransition(en *propEntry) {
	if en.anim >= 0 && en.anim < len(s.active) && s.active[en.anim].transition {
		s.unlinkAnimation(en)
	}
}

func (s *PropertyStore[T]) unlinkAnimation(en *propEntry) {
	if en.anim < 0 {
		return
	}
	if en.anim < len(s.active) {
		s.active[en.anim].unlinkEntity(en.entity)
	}
	en.anim = -1
}

// Tick advances every active animation to now. It returns true if any
// animated value changed.
func (s *PropertyStore[T]) Tick(now time.Time) bool {
	changed := false
	for i := range s.active {
		if s.active[i].advance(now, s.lerp) {
			changed = true
		}
	}
	return changed
}

// RemoveInactiveAnimations drops finished animations from the pool and
// re-points the entities of the survivors.
func (s *PropertyStore[T]) RemoveInactiveAnimations() {
	n := 0
	for i := range s.active {
		a := s.active[i]
		if !a.active || len(a.entities) == 0 {
			for _, e := range a.entities {
				if en := s.entry(e); en != nil && en.anim == i {
					en.anim = -1
				}
			}
			continue
		}
		for _, e := range a.entities {
			if en := s.entry(e); en != nil {
				en.anim = n
			}
		}
		s.active[n] = a
		n++
	}
	clear(s.active[n:])
	s.active = s.active[:n]
}

// Get returns e's effective value.
func (s *PropertyStore[T]) Get(e Entity) (T, bool) {
	var zero T
	en := s.entry(e)
	if en == nil {
		return zero, false
	}
	if en.anim >= 0 && en.anim < len(s.active) {
		if a := &s.active[en.anim]; a.active {
			return a.output, true
		}
	}
	switch en.data.kind {
	case dataInline:
		return s.inline[en.data.slot], true
	case dataShared:
		if sl := s.shared[en.data.slot]; sl.live && sl.rule == en.rule {
			return sl.value, true
		}
	}
	return zero, false
}

// HasAnimations reports whether any animation has yet to reach its end.
func (s *PropertyStore[T]) HasAnimations() bool {
	for i := range s.active {
		if s.active[i].active && s.active[i].t0 < 1 {
			return true
		}
	}
	return false
}

// Forget drops every layer held for e.
func (s *PropertyStore[T]) Forget(e Entity) {
	en := s.entry(e)
	if en == nil {
		return
	}
	s.unlinkAnimation(en)
	if en.data.kind == dataInline {
		s.removeInline(en.data.slot)
	}
	*en = propEntry{anim: -1}
}

// Len returns the number of entities with an inline value or rule link.
func (s *PropertyStore[T]) Len() int {
	n := 0
	for i := range s.entries {
		en := &s.entries[i]
		if !en.entity.IsNull() && (en.data.kind != dataNone || en.shared.kind != dataNone) {
			n++
		}
	}
	return n
}

// ActiveAnimations returns the size of the animation pool, finished
// entries included until the next compaction.
func (s *PropertyStore[T]) ActiveAnimations() int {
	return len(s.active)
}

// AnimationOf returns a copy of the animation currently bound to e.
func (s *PropertyStore[T]) AnimationOf(e Entity) (AnimationState[T], bool) {
	en := s.entry(e)
	if en == nil || en.anim < 0 || en.anim >= len(s.active) {
		return AnimationState[T]{}, false
	}
	return s.active[en.anim], true
}

// RuleOf returns the rule e is linked to.
func (s *PropertyStore[T]) RuleOf(e Entity) (RuleID, bool) {
	en := s.entry(e)
	if en == nil || en.shared.kind != dataShared {
		return NoRule, false
	}
	return en.rule, true
}
